package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"

	"tiketnow/internal/status"
	"tiketnow/models"
	"tiketnow/services"
)

type EventHandler struct {
	events *services.EventService
	stats  *services.StatsService
}

func NewEventHandler(events *services.EventService, stats *services.StatsService) *EventHandler {
	return &EventHandler{events: events, stats: stats}
}

// List is the public storefront listing: active events only, optionally
// re-sorted by ?sort=date|capacity&order=asc|desc.
func (h *EventHandler) List(c echo.Context) error {
	events, err := h.events.ActiveEvents(c.Request().Context())
	if err != nil {
		return sheetError(c, err)
	}

	if sortBy := c.QueryParam("sort"); sortBy != "" {
		ascending := c.QueryParam("order") != "desc"
		events = h.stats.SortEvents(events, sortBy, ascending)
	}
	return c.JSON(http.StatusOK, events)
}

// AdminList returns every event the signed-in user can manage, inactive ones
// included.
func (h *EventHandler) AdminList(c echo.Context) error {
	events, err := h.events.GetAllEvents(c.Request().Context())
	if err != nil {
		return sheetError(c, err)
	}
	return c.JSON(http.StatusOK, h.stats.ScopeEvents(events, currentUser(c).Scope()))
}

func (h *EventHandler) Create(c echo.Context) error {
	var event models.Event
	if err := c.Bind(&event); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}
	if event.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Event name is required")
	}

	event.CreatedBy = currentUser(c).Username
	created, err := h.events.CreateEvent(c.Request().Context(), event)
	if err != nil {
		return sheetError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *EventHandler) Update(c echo.Context) error {
	var event models.Event
	if err := c.Bind(&event); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}
	event.ID = c.PathParam("id")

	existing, err := h.lookupOwned(c, event.ID)
	if err != nil {
		return sheetError(c, err)
	}
	event.CreatedBy = existing.CreatedBy
	event.CreatedAt = existing.CreatedAt

	if err := h.events.UpdateEvent(c.Request().Context(), event); err != nil {
		return sheetError(c, err)
	}
	return c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Delete(c echo.Context) error {
	id := c.PathParam("id")
	if _, err := h.lookupOwned(c, id); err != nil {
		return sheetError(c, err)
	}
	if err := h.events.DeleteEvent(c.Request().Context(), id); err != nil {
		return sheetError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// lookupOwned loads an event and checks the signed-in user may touch it.
// Load failures come back unwrapped so callers abort before writing anything;
// only the top-level handler translates them into a response.
func (h *EventHandler) lookupOwned(c echo.Context, id string) (models.Event, error) {
	event, err := h.events.FindEvent(c.Request().Context(), id)
	if errors.Is(err, status.ErrEventNotFound) {
		return models.Event{}, echo.NewHTTPError(http.StatusNotFound, "Event not found")
	}
	if err != nil {
		return models.Event{}, err
	}
	if scope := currentUser(c).Scope(); scope != "" && event.CreatedBy != scope {
		return models.Event{}, echo.NewHTTPError(http.StatusForbidden, "Event belongs to another organizer")
	}
	return event, nil
}

// sheetError translates load failures into a retryable 503 the frontend can
// show as-is; anything else bubbles up unchanged. It commits the response on
// the sheet path, so it must be the handler's final word.
func sheetError(c echo.Context, err error) error {
	if errors.Is(err, status.ErrSheetUnavailable) {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{
			"error": "No se pudieron cargar los datos. Verifica que el Sheet sea público.",
			"retry": true,
		})
	}
	return err
}
