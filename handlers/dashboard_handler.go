package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"tiketnow/services"
)

type DashboardHandler struct {
	purchases *services.PurchaseService
	events    *services.EventService
	stats     *services.StatsService
}

func NewDashboardHandler(purchases *services.PurchaseService, events *services.EventService, stats *services.StatsService) *DashboardHandler {
	return &DashboardHandler{purchases: purchases, events: events, stats: stats}
}

// Get returns the organizer dashboard: totals over the visible purchases plus
// the per-event sold-versus-capacity breakdown. ?event_id= narrows the totals
// to one event; the breakdown always covers every visible event.
func (h *DashboardHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	purchases, err := h.purchases.GetAllPurchases(ctx)
	if err != nil {
		return sheetError(c, err)
	}
	events, err := h.events.GetAllEvents(ctx)
	if err != nil {
		return sheetError(c, err)
	}

	scope := currentUser(c).Scope()
	scopedEvents := h.stats.ScopeEvents(events, scope)
	scopedPurchases := h.stats.ScopePurchases(purchases, events, scope)

	return c.JSON(http.StatusOK, map[string]any{
		"summary":     h.stats.Summarize(h.stats.FilterByEvent(scopedPurchases, c.QueryParam("event_id"))),
		"event_sales": h.stats.EventSales(scopedPurchases, scopedEvents),
	})
}
