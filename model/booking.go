package model

const AttendanceStatusAttending = "attending"

// Attendance is one held seat: a (user, event) pair with attending status.
// Cancellation removes the row, which is what frees the seat.
type Attendance struct {
	AttendeeID int64  `json:"attendee_id,omitempty"`
	UserID     int64  `json:"user_id,omitempty"`
	EventID    int64  `json:"event_id,omitempty"`
	UserRating *int64 `json:"user_rating,omitempty"`
	Status     string `json:"status,omitempty"`
}

type CheckoutRequest struct {
	EventID int64 `json:"event_id"`
}

type RatingRequest struct {
	EventID int64 `json:"event_id"`
	Rating  int64 `json:"rating"`
}
