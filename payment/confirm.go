package payment

import (
	"context"
	"database/sql"
	"fmt"
	"ventro-backend/logger"
	"ventro-backend/mailer"
	"ventro-backend/model"
	"ventro-backend/store"
	"ventro-backend/ticket"
)

const (
	paymentTable    = "Payment"
	attendanceTable = "Event_Attendee"
)

var (
	paymentCols    = []string{"user_id", "event_id", "amount", "currency", "status", "gateway_session_id"}
	attendanceCols = []string{"user_id", "event_id", "status"}
)

// NewProcessor returns the confirmation processor. mail may be nil, in which
// case no notification goes out.
func NewProcessor(tickets *ticket.Ticket, mail mailer.Sender) *Processor {
	return &Processor{
		tickets: tickets,
		mail:    mail,
	}
}

// Processor finalizes paid bookings from verified gateway confirmations. The
// gateway delivers at least once, so every step is guarded to collapse
// redeliveries into a single Payment/Attendance/Ticket outcome.
type Processor struct {
	tickets *ticket.Ticket
	mail    mailer.Sender
}

// Confirm records the settled payment, ensures the attendance exists, and
// issues the ticket — all in one transaction. A confirmation whose (user,
// event) pair already holds a paid Payment is a no-op.
func (p *Processor) Confirm(ctx context.Context, db *sql.DB, c *Confirmation) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("confirm: error begining db transaction: %s", err)
	}

	paid, err := hasPaidPayment(tx, c.UserID, c.EventID)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("confirm: error checking existing payment: %w", err)
	}
	if paid {
		tx.Rollback()
		logger.Infof(ctx, "confirm: payment already recorded for user: %d, event: %d, session: %s", c.UserID, c.EventID, c.SessionID)
		return nil
	}

	values := []interface{}{c.UserID, c.EventID, c.Amount, c.Currency, model.PaymentStatusPaid, c.SessionID}
	if _, err := store.Create(tx, paymentTable, paymentCols, values); err != nil {
		tx.Rollback()
		if store.IsDuplicate(err) {
			// a concurrent delivery of the same confirmation got there first
			logger.Infof(ctx, "confirm: concurrent delivery already recorded payment for user: %d, event: %d", c.UserID, c.EventID)
			return nil
		}
		return fmt.Errorf("confirm: error inserting payment: %w", err)
	}

	attending, err := hasActiveAttendance(tx, c.UserID, c.EventID)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("confirm: error checking attendance: %w", err)
	}

	if !attending {
		values := []interface{}{c.UserID, c.EventID, model.AttendanceStatusAttending}
		if _, err := store.Create(tx, attendanceTable, attendanceCols, values); err != nil && !store.IsDuplicate(err) {
			tx.Rollback()
			return fmt.Errorf("confirm: error inserting attendance: %w", err)
		}
	}

	_, tk, err := p.tickets.Issue(ctx, tx, c.UserID, c.EventID)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("confirm: error issuing ticket: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("confirm: error commiting confirmation: %w", err)
	}

	if p.mail != nil && c.UserEmail != "" {
		go p.notify(ctx, c.UserEmail, tk)
	}

	return nil
}

func (p *Processor) notify(ctx context.Context, email string, tk *model.Ticket) {
	id, err := p.mail.Send(email, "Your Ventro ticket", fmt.Sprintf("Show this code at the entrance: %s", tk.Token))
	if err != nil {
		logger.Errorf(ctx, "notify: unable to send ticket mail to: %s: %+v", email, err)
		return
	}
	logger.Infof(ctx, "notify: ticket mail sent to: %s, id: %s", email, id)
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

func hasActiveAttendance(tx *sql.Tx, userID, eventID int64) (bool, error) {
	var count int64
	err := tx.QueryRow(
		`SELECT COUNT(*) FROM Event_Attendee WHERE user_id = ? AND event_id = ? AND status = ?`,
		userID, eventID, model.AttendanceStatusAttending,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("hasActiveAttendance: error counting attendances: %w", err)
	}
	return count > 0, nil
}
