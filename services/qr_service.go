package services

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"tiketnow/config"
	"tiketnow/models"
	"tiketnow/utils"
)

// QRService builds entry codes as links to an external image renderer. No
// image is generated locally: the payload text is URL-encoded into the
// renderer's query string and the resulting URL is shared as-is.
type QRService struct {
	baseURL string
	size    int
}

func NewQRService(cfg *config.Config) *QRService {
	return &QRService{
		baseURL: cfg.QRBaseURL,
		size:    cfg.QRSize,
	}
}

// TicketQRs mints one QR per ticket of the purchase, each with its own
// random code so doormen can tell the tickets of one order apart.
func (s *QRService) TicketQRs(p models.Purchase) []models.QRCode {
	qrs := make([]models.QRCode, 0, p.TicketQty)
	for i := 1; i <= p.TicketQty; i++ {
		code, err := utils.GenerateCode(4)
		if err != nil {
			code = fmt.Sprintf("T%d", i)
		}
		content := s.ticketContent(p, i, code)
		qrs = append(qrs, models.QRCode{
			ID:          fmt.Sprintf("%s-ticket-%d", p.ID, i),
			Content:     content,
			URL:         s.QRURL(content),
			TicketIndex: i,
		})
	}
	return qrs
}

func (s *QRService) QRURL(content string) string {
	params := url.Values{}
	params.Set("text", content)
	params.Set("size", strconv.Itoa(s.size))
	params.Set("margin", "10")
	params.Set("format", "png")
	return s.baseURL + "?" + params.Encode()
}

func (s *QRService) ticketContent(p models.Purchase, ticketIndex int, code string) string {
	cooler := "No incluida"
	if p.CoolerQty > 0 {
		cooler = "Incluida"
	}
	lines := []string{
		"🎫 TIKET NOW",
		"",
		fmt.Sprintf("👤 %s %s", p.FirstName, p.LastName),
		fmt.Sprintf("📱 %s", p.Phone),
		fmt.Sprintf("📧 %s", p.Email),
		"",
		fmt.Sprintf("🎟️ Entrada: %d/%d", ticketIndex, p.TicketQty),
		fmt.Sprintf("🔑 Código: %s", code),
		fmt.Sprintf("🧊 Conservadora: %s", cooler),
		fmt.Sprintf("💰 Total: $%s", p.Total.String()),
		"",
		"🎉 ¡Válido para el evento!",
	}
	return strings.Join(lines, "\n")
}
