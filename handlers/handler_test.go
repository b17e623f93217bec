package handlers

import (
	"context"
	"errors"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v5"

	"tiketnow/config"
	"tiketnow/models"
	"tiketnow/services"
	"tiketnow/utils"
)

const testEventsCSV = `id,name,date,hour,description,location,image,ticketPrice,vipPrice,capacity,createdBy,createdAt,status
e1,Fiesta de Verano,2025-01-10,21:00,Una noche,Club Norte,fiesta.png,1500,3000,200,admin,2024-12-01T00:00:00Z,active
e2,Noche Cerrada,2025-02-05,22:00,Privada,Club Sur,noche.png,2000,4000,100,otro,2024-12-05T00:00:00Z,active
e3,Evento Pasado,2024-06-01,20:00,Viejo,Club Norte,old.png,1000,2000,50,admin,2024-05-01T00:00:00Z,inactive
`

const testPurchasesCSV = `timestamp,firstName,lastName,phone,email,ticketQty,coolerQty,paymentMethod,total,status,eventId,eventName
1/1 10:00,Ana,Pérez,1134567890,ana@mail.com,2,1,Transferencia,3000,pendiente,e1,Fiesta de Verano
2/1 11:30,Bruno,Gómez,1145678901,bruno@mail.com,1,0,Efectivo,2000,Confirmado,e2,Noche Cerrada
3/1 12:00,Carla,López,1156789012,carla@mail.com,3,0,Transferencia,4500,pendiente,e1,Fiesta de Verano
`

type submission struct {
	action string
	params url.Values
}

type fakeSource struct {
	csv       map[string]string
	fetchErr  error
	fetchErrs map[string]error
	submitErr error
	submits   []submission
}

func (s *fakeSource) FetchCSV(_ context.Context, sheetName string) (string, error) {
	if s.fetchErr != nil {
		return "", s.fetchErr
	}
	if err := s.fetchErrs[sheetName]; err != nil {
		return "", err
	}
	text, ok := s.csv[sheetName]
	if !ok {
		return "", errors.New("unknown sheet")
	}
	return text, nil
}

func (s *fakeSource) Submit(_ context.Context, action string, params url.Values) error {
	s.submits = append(s.submits, submission{action: action, params: params})
	return s.submitErr
}

type fixture struct {
	source *fakeSource
	auth   *services.AuthService

	authHandler      *AuthHandler
	eventHandler     *EventHandler
	purchaseHandler  *PurchaseHandler
	dashboardHandler *DashboardHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{
		SheetID:        "sheet-123",
		PurchasesSheet: "Hoja 1",
		EventsSheet:    "Hoja 2",
		QRBaseURL:      "https://quickchart.io/qr",
		QRSize:         512,
		CountryCode:    "549",
		AdminPhone:     "011 9876-5432",
		CacheTTL:       30 * time.Second,
		SessionTTL:     time.Hour,
		Credentials: []config.Credential{
			{Username: "admin", Password: "admin123", Role: "admin"},
			{Username: "super", Password: "super123", Role: "super-admin"},
		},
	}

	source := &fakeSource{csv: map[string]string{
		"Hoja 1": testPurchasesCSV,
		"Hoja 2": testEventsCSV,
	}}
	cache := utils.NewMemoryStore()

	eventService := services.NewEventService(cfg, source, cache)
	purchaseService := services.NewPurchaseService(cfg, source, cache)
	statsService := services.NewStatsService()
	authService := services.NewAuthService(cfg)
	qrService := services.NewQRService(cfg)
	whatsappService := services.NewWhatsAppService(cfg)

	return &fixture{
		source:           source,
		auth:             authService,
		authHandler:      NewAuthHandler(authService),
		eventHandler:     NewEventHandler(eventService, statsService),
		purchaseHandler:  NewPurchaseHandler(purchaseService, eventService, statsService, qrService, whatsappService),
		dashboardHandler: NewDashboardHandler(purchaseService, eventService, statsService),
	}
}

// jsonContext builds an echo context for a handler invoked directly.
func jsonContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func asUser(c echo.Context, user models.User) {
	c.Set("user", user)
}

var (
	adminUser = models.User{Username: "admin", Role: models.RoleAdmin}
	superUser = models.User{Username: "super", Role: models.RoleSuperAdmin}
)

// serve runs a request through a real router so path parameters resolve.
func serve(method, target, body string, user models.User, register func(e *echo.Group)) *httptest.ResponseRecorder {
	e := echo.New()
	group := e.Group("", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("user", user)
			return next(c)
		}
	})
	register(group)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}
