package response

import (
	"encoding/json"
	"net/http"
	"ventro-backend/model"
)

type SuccessResponse struct {
	Data       *Data `json:"data"`
	StatusCode int   `json:"-"`
}

type Data struct {
	CheckoutURL string            `json:"checkout_url,omitempty"`
	Ticket      *model.Ticket     `json:"ticket,omitempty"`
	Scan        *model.ScanResult `json:"scan,omitempty"`
	Received    bool              `json:"received,omitempty"`
	Message     string            `json:"message,omitempty"`
}

func (r SuccessResponse) Send(w http.ResponseWriter) {
	w.WriteHeader(r.StatusCode)
	json.NewEncoder(w).Encode(r)
}
