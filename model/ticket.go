package model

import (
	"time"
)

const (
	TicketStatusValid = "valid"
	TicketStatusUsed  = "used"
)

// Ticket is the redeemable credential for one (user, event) pair. The token
// is the opaque secret the QR code encodes; status moves valid -> used once.
type Ticket struct {
	TicketID  int64      `json:"ticket_id,omitempty"`
	UserID    int64      `json:"user_id,omitempty"`
	EventID   int64      `json:"event_id,omitempty"`
	Token     string     `json:"token,omitempty"`
	QRCode    string     `json:"qr_code,omitempty"`
	Status    string     `json:"status,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// ScanResult is what the organizer's scanning client gets back on a
// successful redemption.
type ScanResult struct {
	Ticket   Ticket `json:"ticket"`
	Event    Event  `json:"event"`
	Attendee User   `json:"attendee"`
}
