// Package ticket owns the redeemable credential: at-most-once issuance per
// (user, event), QR rendering, and the one-way valid -> used redemption.
package ticket

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
	"ventro-backend/model"
	"ventro-backend/store"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	ticketTable = "Ticket"

	tokenBytes = 32
	qrSize     = 256
)

var ticketCols = []string{"user_id", "event_id", "token", "qr_code", "status", "created_at"}

var (
	ErrTicketNotFound = errors.New("ticket not found")
	ErrTicketUsed     = errors.New("ticket already used")
	ErrNotOrganizer   = errors.New("ticket belongs to another organizer's event")
)

// Outcome tags the result of an issuance attempt so callers can branch
// without string matching.
type Outcome int

const (
	Created Outcome = iota
	AlreadyExists
)

// NewTicket returns a new ticket service instance.
func NewTicket() *Ticket {
	return &Ticket{}
}

// Ticket represents the client for the Ticket table.
type Ticket struct {
}

// Issue creates the single ticket for (userID, eventID) inside the caller's
// transaction. The token and its QR rendering are produced before the row is
// written, so a consumer can never observe a ticket without its code. A second
// call for the same pair reports AlreadyExists with the original ticket.
func (t *Ticket) Issue(ctx context.Context, tx *sql.Tx, userID, eventID int64) (Outcome, *model.Ticket, error) {
	existing, ok, err := fetchForUpdate(tx, userID, eventID)
	if err != nil {
		return AlreadyExists, nil, fmt.Errorf("issue: error checking existing ticket: %w", err)
	}
	if ok {
		return AlreadyExists, existing, nil
	}

	token, err := generateToken()
	if err != nil {
		return AlreadyExists, nil, fmt.Errorf("issue: error generating token: %w", err)
	}

	code, err := renderCode(token)
	if err != nil {
		return AlreadyExists, nil, fmt.Errorf("issue: error rendering qr code: %w", err)
	}

	now := time.Now().UTC()
	values := []interface{}{userID, eventID, token, code, model.TicketStatusValid, now}

	id, err := store.Create(tx, ticketTable, ticketCols, values)
	if err != nil {
		if store.IsDuplicate(err) {
			existing, ok, ferr := fetch(tx, userID, eventID)
			if ferr == nil && ok {
				return AlreadyExists, existing, nil
			}
		}
		return AlreadyExists, nil, fmt.Errorf("issue: error inserting ticket for user: %d, event: %d: %w", userID, eventID, err)
	}

	return Created, &model.Ticket{
		TicketID:  id,
		UserID:    userID,
		EventID:   eventID,
		Token:     token,
		QRCode:    code,
		Status:    model.TicketStatusValid,
		CreatedAt: &now,
	}, nil
}

// MyTicket returns the caller's ticket for an event, if any.
func (t *Ticket) MyTicket(ctx context.Context, db *sql.DB, userID, eventID int64) (*model.Ticket, bool, error) {
	query := `SELECT ticket_id, user_id, event_id, token, qr_code, status, used_at, created_at
				FROM Ticket WHERE user_id = ? AND event_id = ?`

	row := db.QueryRowContext(ctx, query, userID, eventID)

	tk, err := scanTicket(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("myTicket: error fetching ticket: %w", err)
	}

	return tk, true, nil
}

// Scan redeems a presented token on behalf of an organizer. The valid -> used
// transition is a conditional update so a concurrent scan of the same token
// succeeds exactly once.
func (t *Ticket) Scan(ctx context.Context, db *sql.DB, organizerID, eventID int64, token string) (*model.ScanResult, error) {
	query := `SELECT t.ticket_id, t.user_id, t.event_id, t.token, t.status, t.used_at,
				e.title, e.organizer_id, u.user_name, u.email
				FROM Ticket t
				JOIN Event e ON e.event_id = t.event_id
				JOIN User u ON u.user_id = t.user_id
				WHERE t.token = ?`

	var res model.ScanResult
	err := db.QueryRowContext(ctx, query, token).Scan(
		&res.Ticket.TicketID,
		&res.Ticket.UserID,
		&res.Ticket.EventID,
		&res.Ticket.Token,
		&res.Ticket.Status,
		&res.Ticket.UsedAt,
		&res.Event.Title,
		&res.Event.OrganizerID,
		&res.Attendee.UserName,
		&res.Attendee.Email,
	)
	if err == sql.ErrNoRows {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan: error fetching ticket by token: %w", err)
	}

	if res.Ticket.EventID != eventID {
		return nil, ErrTicketNotFound
	}

	if res.Event.OrganizerID != organizerID {
		return nil, ErrNotOrganizer
	}

	if res.Ticket.Status == model.TicketStatusUsed {
		return nil, ErrTicketUsed
	}

	usedAt := time.Now().UTC()
	result, err := db.ExecContext(ctx,
		`UPDATE Ticket SET status = ?, used_at = ? WHERE ticket_id = ? AND status = ?`,
		model.TicketStatusUsed, usedAt, res.Ticket.TicketID, model.TicketStatusValid,
	)
	if err != nil {
		return nil, fmt.Errorf("scan: error redeeming ticket: %d: %w", res.Ticket.TicketID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("scan: error reading affected rows: %w", err)
	}
	if affected == 0 {
		// a concurrent scan won the conditional update
		return nil, ErrTicketUsed
	}

	res.Ticket.Status = model.TicketStatusUsed
	res.Ticket.UsedAt = &usedAt
	res.Event.EventID = res.Ticket.EventID
	res.Attendee.UserID = res.Ticket.UserID
	return &res, nil
}

func fetch(tx *sql.Tx, userID, eventID int64) (*model.Ticket, bool, error) {
	return fetchWhere(tx, userID, eventID, "")
}

func fetchForUpdate(tx *sql.Tx, userID, eventID int64) (*model.Ticket, bool, error) {
	return fetchWhere(tx, userID, eventID, " FOR UPDATE")
}

func fetchWhere(tx *sql.Tx, userID, eventID int64, suffix string) (*model.Ticket, bool, error) {
	query := `SELECT ticket_id, user_id, event_id, token, qr_code, status, used_at, created_at
				FROM Ticket WHERE user_id = ? AND event_id = ?` + suffix

	row := tx.QueryRow(query, userID, eventID)

	tk, err := scanTicket(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("fetchWhere: error scanning ticket row: %w", err)
	}

	return tk, true, nil
}

func scanTicket(row *sql.Row) (*model.Ticket, error) {
	var tk model.Ticket
	err := row.Scan(
		&tk.TicketID,
		&tk.UserID,
		&tk.EventID,
		&tk.Token,
		&tk.QRCode,
		&tk.Status,
		&tk.UsedAt,
		&tk.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tk, nil
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generateToken: error reading random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func renderCode(token string) (string, error) {
	png, err := qrcode.Encode(token, qrcode.Medium, qrSize)
	if err != nil {
		return "", fmt.Errorf("renderCode: error encoding qr png: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
