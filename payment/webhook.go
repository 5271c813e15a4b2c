package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

const (
	metadataEventID   = "event_id"
	metadataUserID    = "user_id"
	metadataUserEmail = "user_email"

	eventCheckoutCompleted = "checkout.session.completed"
)

// ErrInvalidSignature marks a confirmation whose signature did not verify.
// It is the only webhook failure the gateway is told about.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Confirmation is a verified, settled payment as reported by the gateway.
type Confirmation struct {
	SessionID string
	Amount    float64
	Currency  string
	UserID    int64
	EventID   int64
	UserEmail string
}

// ParseConfirmation verifies the signed webhook payload and extracts the
// settled checkout session. A (nil, nil) return means the payload verified
// but carries an event type this workflow does not care about.
func ParseConfirmation(payload []byte, sigHeader, secret string) (*Confirmation, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, secret)
	if err != nil {
		return nil, fmt.Errorf("parseConfirmation: %w: %s", ErrInvalidSignature, err)
	}

	if event.Type != eventCheckoutCompleted {
		return nil, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("parseConfirmation: error unmarshalling session: %w", err)
	}

	userID, err := strconv.ParseInt(session.Metadata[metadataUserID], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parseConfirmation: invalid user id in metadata: %q: %w", session.Metadata[metadataUserID], err)
	}

	eventID, err := strconv.ParseInt(session.Metadata[metadataEventID], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parseConfirmation: invalid event id in metadata: %q: %w", session.Metadata[metadataEventID], err)
	}

	return &Confirmation{
		SessionID: session.ID,
		Amount:    float64(session.AmountTotal) / 100,
		Currency:  string(session.Currency),
		UserID:    userID,
		EventID:   eventID,
		UserEmail: session.Metadata[metadataUserEmail],
	}, nil
}
