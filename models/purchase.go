package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Status is the delivery state of a purchase. It is derived from free text
// in the spreadsheet, so unknown values always fall back to StatusPending.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusSent      Status = "sent"
)

// ParseStatus matches known keywords anywhere in the cell text,
// case-insensitive. "sent" wins over "confirmed"; everything else is pending.
// The sheet is filled in Spanish, so the Spanish keywords are matched too.
func ParseStatus(text string) Status {
	s := strings.ToLower(text)
	switch {
	case strings.Contains(s, "enviado"), strings.Contains(s, "sent"):
		return StatusSent
	case strings.Contains(s, "confirmado"), strings.Contains(s, "confirmed"):
		return StatusConfirmed
	default:
		return StatusPending
	}
}

// Purchase is one ticket order as read from the purchases sheet. All fields
// are spreadsheet-supplied and trusted as-is; Total in particular is not
// recomputed from unit prices.
type Purchase struct {
	// ID is derived from the row position and row content, so it is stable
	// within one load but not across reloads if rows are inserted above.
	ID            string          `json:"id"`
	Timestamp     string          `json:"timestamp"`
	FirstName     string          `json:"first_name"`
	LastName      string          `json:"last_name"`
	Phone         string          `json:"phone"`
	Email         string          `json:"email"`
	TicketQty     int             `json:"ticket_qty"`
	CoolerQty     int             `json:"cooler_qty"`
	PaymentMethod string          `json:"payment_method"`
	Total         decimal.Decimal `json:"total"`
	Status        Status          `json:"status"`
	EventID       string          `json:"event_id"`
	EventName     string          `json:"event_name"`
}
