package model

import (
	"time"
)

type Event struct {
	EventID     int64      `json:"event_id,omitempty"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	City        *string    `json:"city,omitempty"`
	Street      *string    `json:"street,omitempty"`
	IsOnline    bool       `json:"is_online,omitempty"`
	OnlineLink  *string    `json:"online_link,omitempty"`
	Image       *string    `json:"image,omitempty"`
	// Capacity nil means unlimited seats.
	Capacity    *int64 `json:"capacity,omitempty"`
	Price       int64  `json:"price,omitempty"`
	OrganizerID int64  `json:"organizer_id,omitempty"`
	EventType   string `json:"event_type,omitempty"`
}
