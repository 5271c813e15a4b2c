// Package booking orchestrates checkout: duplicate and capacity checks, the
// free/paid branch, and deferred finalization of paid bookings.
package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"ventro-backend/logger"
	"ventro-backend/mailer"
	"ventro-backend/model"
	"ventro-backend/payment"
	"ventro-backend/store"
	"ventro-backend/ticket"
)

const attendanceTable = "Event_Attendee"

var attendanceCols = []string{"user_id", "event_id", "status"}

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrAlreadyRegistered = errors.New("already registered for this event")
	ErrSoldOut           = errors.New("event is sold out")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrNotOwner          = errors.New("booking belongs to another user")
	ErrPaidBooking       = errors.New("paid bookings cannot be cancelled")
	ErrNotAttendee       = errors.New("user did not attend this event")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
)

// NewBooking returns a new booking orchestrator. mail may be nil.
func NewBooking(gateway payment.Gateway, tickets *ticket.Ticket, mail mailer.Sender, successURL string) *Booking {
	return &Booking{
		gateway:    gateway,
		tickets:    tickets,
		mail:       mail,
		successURL: successURL,
	}
}

// Booking decides the free vs. paid path for a checkout request.
type Booking struct {
	gateway    payment.Gateway
	tickets    *ticket.Ticket
	mail       mailer.Sender
	successURL string
}

// Checkout books a seat for userID at eventID and returns the URL the client
// should be redirected to.
//
// Free events are finalized synchronously: attendance and ticket are created
// in one transaction, so a failed issuance rolls the seat back. Paid events
// persist nothing — the gateway session's redirect URL is returned and
// finalization waits for the asynchronous confirmation.
//
// The capacity count and the attendance insert share one transaction holding
// a row lock on the event, so concurrent requests for the last seat cannot
// both succeed.
func (b *Booking) Checkout(ctx context.Context, db *sql.DB, userID int64, userEmail string, eventID int64) (string, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("checkout: error begining db transaction: %s", err)
	}

	ev, ok, err := fetchEventForUpdate(tx, eventID)
	if err != nil {
		tx.Rollback()
		return "", fmt.Errorf("checkout: error fetching event: %d: %w", eventID, err)
	}
	if !ok {
		tx.Rollback()
		return "", ErrEventNotFound
	}

	registered, err := isRegistered(tx, userID, eventID)
	if err != nil {
		tx.Rollback()
		return "", fmt.Errorf("checkout: error checking registration: %w", err)
	}
	if registered {
		tx.Rollback()
		return "", ErrAlreadyRegistered
	}

	seatFree, err := hasAvailableSeat(tx, ev)
	if err != nil {
		tx.Rollback()
		return "", fmt.Errorf("checkout: error checking capacity: %w", err)
	}
	if !seatFree {
		tx.Rollback()
		return "", ErrSoldOut
	}

	if ev.Price == 0 {
		return b.bookFree(ctx, tx, userID, userEmail, eventID)
	}

	// paid path holds no state until the gateway confirms; release the
	// event lock before calling out
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("checkout: error commiting checks: %w", err)
	}

	session, err := b.gateway.CreateSession(ctx, payment.SessionInput{
		EventID:    ev.EventID,
		EventTitle: ev.Title,
		Price:      ev.Price,
		UserID:     userID,
		UserEmail:  userEmail,
	})
	if err != nil {
		return "", fmt.Errorf("checkout: error creating gateway session for event: %d: %w", eventID, err)
	}

	return session.URL, nil
}

func (b *Booking) bookFree(ctx context.Context, tx *sql.Tx, userID int64, userEmail string, eventID int64) (string, error) {
	values := []interface{}{userID, eventID, model.AttendanceStatusAttending}
	if _, err := store.Create(tx, attendanceTable, attendanceCols, values); err != nil {
		tx.Rollback()
		if store.IsDuplicate(err) {
			return "", ErrAlreadyRegistered
		}
		return "", fmt.Errorf("bookFree: error inserting attendance: %w", err)
	}

	_, tk, err := b.tickets.Issue(ctx, tx, userID, eventID)
	if err != nil {
		tx.Rollback()
		return "", fmt.Errorf("bookFree: error issuing ticket, attendance rolled back: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("bookFree: error commiting booking: %w", err)
	}

	if b.mail != nil && userEmail != "" {
		go b.notify(ctx, userEmail, tk)
	}

	return b.successURL, nil
}

func (b *Booking) notify(ctx context.Context, email string, tk *model.Ticket) {
	id, err := b.mail.Send(email, "Your Ventro ticket", fmt.Sprintf("Show this code at the entrance: %s", tk.Token))
	if err != nil {
		logger.Errorf(ctx, "notify: unable to send ticket mail to: %s: %+v", email, err)
		return
	}
	logger.Infof(ctx, "notify: ticket mail sent to: %s, id: %s", email, id)
}

// hasAvailableSeat compares the active attendee count against the event's
// capacity. The caller holds a row lock on the event, which is what makes the
// count-then-insert safe.
func hasAvailableSeat(tx *sql.Tx, ev *model.Event) (bool, error) {
	if ev.Capacity == nil {
		return true, nil
	}

	count, err := activeAttendeeCount(tx, ev.EventID)
	if err != nil {
		return false, err
	}

	return count < *ev.Capacity, nil
}

func activeAttendeeCount(tx *sql.Tx, eventID int64) (int64, error) {
	var count int64
	err := tx.QueryRow(
		`SELECT COUNT(*) FROM Event_Attendee WHERE event_id = ? AND status = ?`,
		eventID, model.AttendanceStatusAttending,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("activeAttendeeCount: error counting attendees: %w", err)
	}
	return count, nil
}

// isRegistered reports whether the pair already holds a paid payment or an
// active attendance.
func isRegistered(tx *sql.Tx, userID, eventID int64) (bool, error) {
	var count int64
	err := tx.QueryRow(
		`SELECT (SELECT COUNT(*) FROM Payment WHERE user_id = ? AND event_id = ? AND status = ?)
				+ (SELECT COUNT(*) FROM Event_Attendee WHERE user_id = ? AND event_id = ? AND status = ?)`,
		userID, eventID, model.PaymentStatusPaid,
		userID, eventID, model.AttendanceStatusAttending,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("isRegistered: error counting registrations: %w", err)
	}
	return count > 0, nil
}

func fetchEventForUpdate(tx *sql.Tx, eventID int64) (*model.Event, bool, error) {
	query := `SELECT event_id, title, capacity, price, organizer_id FROM Event WHERE event_id = ? FOR UPDATE`

	var ev model.Event
	err := tx.QueryRow(query, eventID).Scan(
		&ev.EventID,
		&ev.Title,
		&ev.Capacity,
		&ev.Price,
		&ev.OrganizerID,
	)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("fetchEventForUpdate: error scanning event row: %w", err)
	}

	return &ev, true, nil
}
