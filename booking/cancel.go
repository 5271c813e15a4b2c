package booking

import (
	"context"
	"database/sql"
	"fmt"
	"ventro-backend/model"
)

// Cancel removes an active booking owned by userID, freeing the seat. The
// ticket, if one was issued, is voided in the same transaction so the freed
// seat cannot be entered with a stale credential. Bookings backed by a paid
// payment are refused; refunds are coordinated elsewhere.
func (b *Booking) Cancel(ctx context.Context, db *sql.DB, userID, bookingID int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("cancel: error begining db transaction: %s", err)
	}

	var ownerID, eventID int64
	err = tx.QueryRow(
		`SELECT user_id, event_id FROM Event_Attendee WHERE attendee_id = ? FOR UPDATE`,
		bookingID,
	).Scan(&ownerID, &eventID)
	if err == sql.ErrNoRows {
		tx.Rollback()
		return ErrBookingNotFound
	}
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("cancel: error fetching booking: %d: %w", bookingID, err)
	}

	if ownerID != userID {
		tx.Rollback()
		return ErrNotOwner
	}

	paid, err := hasPaidPayment(tx, ownerID, eventID)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("cancel: error checking payment: %w", err)
	}
	if paid {
		tx.Rollback()
		return ErrPaidBooking
	}

	if _, err := tx.Exec(`DELETE FROM Event_Attendee WHERE attendee_id = ?`, bookingID); err != nil {
		tx.Rollback()
		return fmt.Errorf("cancel: error deleting booking: %d: %w", bookingID, err)
	}

	if _, err := tx.Exec(`DELETE FROM Ticket WHERE user_id = ? AND event_id = ?`, ownerID, eventID); err != nil {
		tx.Rollback()
		return fmt.Errorf("cancel: error voiding ticket for user: %d, event: %d: %w", ownerID, eventID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("cancel: error commiting cancellation: %w", err)
	}

	return nil
}

func hasPaidPayment(tx *sql.Tx, userID, eventID int64) (bool, error) {
	var count int64
	err := tx.QueryRow(
		`SELECT COUNT(*) FROM Payment WHERE user_id = ? AND event_id = ? AND status = ?`,
		userID, eventID, model.PaymentStatusPaid,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("hasPaidPayment: error counting payments: %w", err)
	}
	return count > 0, nil
}
