package models

// QRCode is one generated entry code: the payload text plus the image URL
// served by the external QR renderer. One code is minted per ticket.
type QRCode struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	TicketIndex int    `json:"ticket_index"`
}
