package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/shopspring/decimal"

	"tiketnow/internal/status"
	"tiketnow/models"
	"tiketnow/services"
)

type PurchaseHandler struct {
	purchases *services.PurchaseService
	events    *services.EventService
	stats     *services.StatsService
	qr        *services.QRService
	whatsapp  *services.WhatsAppService
}

func NewPurchaseHandler(
	purchases *services.PurchaseService,
	events *services.EventService,
	stats *services.StatsService,
	qr *services.QRService,
	whatsapp *services.WhatsAppService,
) *PurchaseHandler {
	return &PurchaseHandler{
		purchases: purchases,
		events:    events,
		stats:     stats,
		qr:        qr,
		whatsapp:  whatsapp,
	}
}

type submitPurchaseRequest struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	TicketQty     int    `json:"ticket_qty"`
	CoolerQty     int    `json:"cooler_qty"`
	PaymentMethod string `json:"payment_method"`
	Vip           bool   `json:"vip"`
	EventID       string `json:"event_id"`
}

// Submit takes a storefront order. The total is always recomputed from the
// event's listed prices; whatever the client claims to owe is ignored.
func (h *PurchaseHandler) Submit(c echo.Context) error {
	var req submitPurchaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}
	if req.FirstName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "First name is required")
	}
	if req.TicketQty < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "At least one ticket is required")
	}

	ctx := c.Request().Context()
	event, err := h.events.FindEvent(ctx, req.EventID)
	if errors.Is(err, status.ErrEventNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Event not found")
	}
	if err != nil {
		return sheetError(c, err)
	}
	if event.Status != models.EventActive {
		return echo.NewHTTPError(http.StatusConflict, "Event is no longer on sale")
	}

	price := event.TicketPrice
	if req.Vip {
		price = event.VipPrice
	}
	purchase := models.Purchase{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Phone:         req.Phone,
		Email:         req.Email,
		TicketQty:     req.TicketQty,
		CoolerQty:     req.CoolerQty,
		PaymentMethod: req.PaymentMethod,
		Total:         price.Mul(decimal.NewFromInt(int64(req.TicketQty))),
		Status:        models.StatusPending,
		EventID:       event.ID,
		EventName:     event.Name,
	}

	if err := h.purchases.SubmitPurchase(ctx, purchase); err != nil {
		return sheetError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"purchase":   purchase,
		"alert_link": h.whatsapp.PurchaseAlertLink(purchase),
	})
}

// AdminList shows the signed-in organizer their purchases, optionally
// narrowed to one event via ?event_id=.
func (h *PurchaseHandler) AdminList(c echo.Context) error {
	ctx := c.Request().Context()
	purchases, err := h.purchases.GetAllPurchases(ctx)
	if err != nil {
		return sheetError(c, err)
	}
	events, err := h.events.GetAllEvents(ctx)
	if err != nil {
		return sheetError(c, err)
	}

	scoped := h.stats.ScopePurchases(purchases, events, currentUser(c).Scope())
	return c.JSON(http.StatusOK, h.stats.FilterByEvent(scoped, c.QueryParam("event_id")))
}

type confirmPurchaseRequest struct {
	ID string `json:"id"`
}

// Confirm marks a purchase paid: it mints one QR per ticket, builds the
// wa.me delivery link and records the confirmation on the sheet. The sheet
// write is fire-and-forget, so the QRs are returned even when it fails.
func (h *PurchaseHandler) Confirm(c echo.Context) error {
	var req confirmPurchaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	ctx := c.Request().Context()
	purchase, err := h.purchases.FindPurchase(ctx, req.ID)
	if errors.Is(err, status.ErrPurchaseNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Purchase not found")
	}
	if err != nil {
		return sheetError(c, err)
	}
	if purchase.EventID != "" {
		if _, err := h.lookupOwnedEvent(c, purchase.EventID); err != nil {
			return sheetError(c, err)
		}
	}

	qrs := h.qr.TicketQRs(purchase)
	codes := make([]string, 0, len(qrs))
	for _, qr := range qrs {
		codes = append(codes, qr.URL)
	}

	if err := h.purchases.ConfirmPurchase(ctx, purchase.ID, codes); err != nil {
		slog.Warn("purchases: confirmation write failed", "id", purchase.ID, "error", err)
	}
	purchase.Status = models.StatusConfirmed

	return c.JSON(http.StatusOK, map[string]any{
		"purchase":      purchase,
		"qr_codes":      qrs,
		"delivery_link": h.whatsapp.DeliveryLink(purchase, qrs),
	})
}

func (h *PurchaseHandler) lookupOwnedEvent(c echo.Context, id string) (models.Event, error) {
	scope := currentUser(c).Scope()
	event, err := h.events.FindEvent(c.Request().Context(), id)
	if errors.Is(err, status.ErrEventNotFound) {
		// orphan purchases are only visible unscoped, so treat them the same here
		if scope != "" {
			return models.Event{}, echo.NewHTTPError(http.StatusForbidden, "Purchase belongs to another organizer")
		}
		return models.Event{}, nil
	}
	if err != nil {
		return models.Event{}, err
	}
	if scope != "" && event.CreatedBy != scope {
		return models.Event{}, echo.NewHTTPError(http.StatusForbidden, "Purchase belongs to another organizer")
	}
	return event, nil
}
