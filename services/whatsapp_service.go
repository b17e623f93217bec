package services

import (
	"fmt"
	"net/url"
	"strings"

	"tiketnow/config"
	"tiketnow/models"
)

// WhatsAppService formats notification messages and packs them into
// click-to-chat links. Nothing is sent from here: the caller opens the link
// and delivery is whatever the chat app does with it.
type WhatsAppService struct {
	countryCode string
	adminPhone  string
}

func NewWhatsAppService(cfg *config.Config) *WhatsAppService {
	return &WhatsAppService{
		countryCode: cfg.CountryCode,
		adminPhone:  cfg.AdminPhone,
	}
}

// FormatPhoneNumber normalizes a free-text phone cell to E.164 digits.
// Non-digits are stripped, one trunk-prefix zero is dropped and the mobile
// country code is prepended unless already present. With the default "549"
// this follows the Argentinian convention: "011 1234-5678" becomes
// "5491112345678".
func (s *WhatsAppService) FormatPhoneNumber(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if strings.HasPrefix(digits, "0") {
		digits = digits[1:]
	}

	cc := s.countryCode
	if cc == "" || strings.HasPrefix(digits, cc) {
		return digits
	}
	// country code without the mobile marker, e.g. "54" for "549"
	if trunk := strings.TrimSuffix(cc, "9"); trunk != cc && strings.HasPrefix(digits, trunk) {
		return cc + digits[len(trunk):]
	}
	return cc + digits
}

// DeliveryLink builds the wa.me link that sends the buyer their QR codes.
func (s *WhatsAppService) DeliveryLink(p models.Purchase, qrs []models.QRCode) string {
	return chatLink(s.FormatPhoneNumber(p.Phone), s.deliveryMessage(p, qrs))
}

// PurchaseAlertLink builds the wa.me link that notifies the organizer of a
// new storefront order. Empty when no admin phone is configured.
func (s *WhatsAppService) PurchaseAlertLink(p models.Purchase) string {
	if s.adminPhone == "" {
		return ""
	}
	return chatLink(s.FormatPhoneNumber(s.adminPhone), s.alertMessage(p))
}

func chatLink(phone, message string) string {
	return "https://wa.me/" + phone + "?text=" + url.QueryEscape(message)
}

func (s *WhatsAppService) deliveryMessage(p models.Purchase, qrs []models.QRCode) string {
	lines := []string{
		fmt.Sprintf("🎉 ¡Hola %s!", p.FirstName),
		"",
		"🎫 Aquí están tus códigos QR de entrada:",
		"",
	}
	for _, qr := range qrs {
		lines = append(lines, fmt.Sprintf("🎟️ *Entrada %d:* %s", qr.TicketIndex, qr.URL))
	}
	lines = append(lines,
		"",
		"📱 *Instrucciones:*",
		"• Guarda estos códigos en tu teléfono",
		"• Presenta cada QR en la entrada del evento",
		"• Un QR = Una persona",
	)
	if p.CoolerQty > 0 {
		lines = append(lines, "", fmt.Sprintf("🧊 *Conservadora incluida:* %d unidad(es)", p.CoolerQty))
	}
	lines = append(lines, "", "🎪 Tiket Now - Tu entrada al mejor evento")
	return strings.Join(lines, "\n")
}

func (s *WhatsAppService) alertMessage(p models.Purchase) string {
	lines := []string{
		"🎉 *NUEVA COMPRA - TIKET NOW* 🎉",
		"",
		fmt.Sprintf("👤 *Cliente:* %s %s", p.FirstName, p.LastName),
		fmt.Sprintf("📱 *Teléfono:* %s", p.Phone),
		fmt.Sprintf("📧 *Email:* %s", p.Email),
		fmt.Sprintf("🎫 *Entradas:* %d", p.TicketQty),
		fmt.Sprintf("🧊 *Conservadoras:* %d", p.CoolerQty),
		fmt.Sprintf("💳 *Método de Pago:* %s", p.PaymentMethod),
		fmt.Sprintf("💰 *TOTAL:* $%s", p.Total.String()),
	}
	if p.EventName != "" {
		lines = append(lines, fmt.Sprintf("📅 *Evento:* %s", p.EventName))
	}
	lines = append(lines, "", "_Por favor, enviar comprobante de pago_")
	return strings.Join(lines, "\n")
}
