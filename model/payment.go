package model

const PaymentStatusPaid = "paid"

type Payment struct {
	PaymentID        int64   `json:"payment_id,omitempty"`
	UserID           int64   `json:"user_id,omitempty"`
	EventID          int64   `json:"event_id,omitempty"`
	Amount           float64 `json:"amount,omitempty"`
	Currency         string  `json:"currency,omitempty"`
	Status           string  `json:"status,omitempty"`
	GatewaySessionID string  `json:"gateway_session_id,omitempty"`
}
