package booking

import (
	"context"
	"database/sql"
	"fmt"
	"ventro-backend/store"
)

// Rate records an attendee's 1-5 rating for an event. Decoupled from the
// checkout workflow; only existing attendees may rate, and re-rating
// overwrites the previous value.
func (b *Booking) Rate(ctx context.Context, db *sql.DB, userID, eventID, rating int64) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("rate: error begining db transaction: %s", err)
	}

	var attendeeID int64
	err = tx.QueryRow(
		`SELECT attendee_id FROM Event_Attendee WHERE user_id = ? AND event_id = ? FOR UPDATE`,
		userID, eventID,
	).Scan(&attendeeID)
	if err == sql.ErrNoRows {
		tx.Rollback()
		return ErrNotAttendee
	}
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("rate: error fetching attendance for user: %d, event: %d: %w", userID, eventID, err)
	}

	// rows-affected is not checked: re-rating with the same value reports
	// zero changed rows, which is not a failure
	_, err = store.Update(tx, attendanceTable,
		[]string{"user_rating"}, []interface{}{rating},
		[]string{"attendee_id"}, []interface{}{attendeeID},
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("rate: error updating rating for attendance: %d: %w", attendeeID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("rate: error commiting rating: %w", err)
	}

	return nil
}
