package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

type EventStatus string

const (
	EventActive   EventStatus = "active"
	EventInactive EventStatus = "inactive"
)

// ParseEventStatus defaults to active; only an explicit "inactive" hides an
// event from the storefront.
func ParseEventStatus(text string) EventStatus {
	if strings.EqualFold(strings.TrimSpace(text), string(EventInactive)) {
		return EventInactive
	}
	return EventActive
}

// Event is one sellable occasion as read from the events sheet. Date and
// Hour are free text exactly as typed by the admin who created the event.
type Event struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Date        string          `json:"date"`
	Hour        string          `json:"hour"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
	Image       string          `json:"image"`
	TicketPrice decimal.Decimal `json:"ticket_price"`
	VipPrice    decimal.Decimal `json:"vip_price"`
	Capacity    int             `json:"capacity"`
	CreatedBy   string          `json:"created_by"`
	CreatedAt   string          `json:"created_at"`
	Status      EventStatus     `json:"status"`
}
