package services

import (
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tiketnow/config"
	"tiketnow/models"
)

func newWhatsAppFixture(adminPhone string) *WhatsAppService {
	return NewWhatsAppService(&config.Config{
		CountryCode: "549",
		AdminPhone:  adminPhone,
	})
}

func TestFormatPhoneNumber(t *testing.T) {
	svc := newWhatsAppFixture("")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"local with trunk zero", "011 1234-5678", "5491112345678"},
		{"already normalized", "5491112345678", "5491112345678"},
		{"plus and country code", "+54 9 11 1234 5678", "5491112345678"},
		{"country code without mobile marker", "54 11 1234 5678", "5491112345678"},
		{"bare local digits", "11 1234 5678", "5491112345678"},
		{"single trunk zero dropped", "00111234", "5490111234"},
		{"empty", "", "549"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.FormatPhoneNumber(tt.in))
		})
	}
}

func TestFormatPhoneNumberWithoutCountryCode(t *testing.T) {
	svc := NewWhatsAppService(&config.Config{})
	assert.Equal(t, "1112345678", svc.FormatPhoneNumber("011 1234-5678"))
}

func TestDeliveryLink(t *testing.T) {
	svc := newWhatsAppFixture("")
	purchase := models.Purchase{
		FirstName: "Ana",
		Phone:     "011 1234-5678",
		TicketQty: 2,
		CoolerQty: 1,
		Total:     decimal.NewFromInt(3000),
	}
	qrs := []models.QRCode{
		{TicketIndex: 1, URL: "https://quickchart.io/qr?text=uno"},
		{TicketIndex: 2, URL: "https://quickchart.io/qr?text=dos"},
	}

	link := svc.DeliveryLink(purchase, qrs)
	require.True(t, strings.HasPrefix(link, "https://wa.me/5491112345678?text="))

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	msg := parsed.Query().Get("text")
	assert.Contains(t, msg, "¡Hola Ana!")
	assert.Contains(t, msg, "*Entrada 1:* https://quickchart.io/qr?text=uno")
	assert.Contains(t, msg, "*Entrada 2:* https://quickchart.io/qr?text=dos")
	assert.Contains(t, msg, "Conservadora incluida")
}

func TestDeliveryLinkWithoutCooler(t *testing.T) {
	svc := newWhatsAppFixture("")
	link := svc.DeliveryLink(models.Purchase{FirstName: "Ana", Phone: "111"}, nil)

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.NotContains(t, parsed.Query().Get("text"), "Conservadora")
}

func TestPurchaseAlertLink(t *testing.T) {
	svc := newWhatsAppFixture("011 9876-5432")
	purchase := models.Purchase{
		FirstName:     "Ana",
		LastName:      "Pérez",
		Phone:         "111",
		TicketQty:     2,
		PaymentMethod: "Transferencia",
		Total:         decimal.NewFromInt(3000),
		EventName:     "Fiesta de Verano",
	}

	link := svc.PurchaseAlertLink(purchase)
	require.True(t, strings.HasPrefix(link, "https://wa.me/5491198765432?text="))

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	msg := parsed.Query().Get("text")
	assert.Contains(t, msg, "NUEVA COMPRA")
	assert.Contains(t, msg, "Ana Pérez")
	assert.Contains(t, msg, "*TOTAL:* $3000")
	assert.Contains(t, msg, "Fiesta de Verano")
}

func TestPurchaseAlertLinkWithoutAdminPhone(t *testing.T) {
	svc := newWhatsAppFixture("")
	assert.Empty(t, svc.PurchaseAlertLink(models.Purchase{FirstName: "Ana"}))
}
