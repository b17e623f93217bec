package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tiketnow/models"
)

func decodeEvents(t *testing.T, body []byte) []models.Event {
	t.Helper()
	var events []models.Event
	require.NoError(t, json.Unmarshal(body, &events))
	return events
}

func TestPublicListShowsActiveOnly(t *testing.T) {
	f := newFixture(t)
	c, rec := jsonContext(http.MethodGet, "/api/v1/events", "")

	require.NoError(t, f.eventHandler.List(c))
	require.Equal(t, http.StatusOK, rec.Code)

	events := decodeEvents(t, rec.Body.Bytes())
	require.Len(t, events, 2)
	for _, e := range events {
		assert.Equal(t, models.EventActive, e.Status)
	}
}

func TestPublicListSortsByCapacity(t *testing.T) {
	f := newFixture(t)
	c, rec := jsonContext(http.MethodGet, "/api/v1/events?sort=capacity&order=asc", "")

	require.NoError(t, f.eventHandler.List(c))
	events := decodeEvents(t, rec.Body.Bytes())
	require.Len(t, events, 2)
	assert.Equal(t, "e2", events[0].ID)
	assert.Equal(t, "e1", events[1].ID)
}

func TestPublicListSheetUnavailable(t *testing.T) {
	f := newFixture(t)
	f.source.fetchErr = errors.New("connection refused")
	c, rec := jsonContext(http.MethodGet, "/api/v1/events", "")

	require.NoError(t, f.eventHandler.List(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sheet sea público")
	assert.Contains(t, rec.Body.String(), `"retry":true`)
}

func TestAdminListScopesByOwner(t *testing.T) {
	f := newFixture(t)
	c, rec := jsonContext(http.MethodGet, "/api/v1/admin/events", "")
	asUser(c, adminUser)

	require.NoError(t, f.eventHandler.AdminList(c))
	events := decodeEvents(t, rec.Body.Bytes())
	require.Len(t, events, 2)
	for _, e := range events {
		assert.Equal(t, "admin", e.CreatedBy)
	}
}

func TestAdminListSuperAdminSeesEverything(t *testing.T) {
	f := newFixture(t)
	c, rec := jsonContext(http.MethodGet, "/api/v1/admin/events", "")
	asUser(c, superUser)

	require.NoError(t, f.eventHandler.AdminList(c))
	assert.Len(t, decodeEvents(t, rec.Body.Bytes()), 3)
}

func TestCreateEventStampsOwner(t *testing.T) {
	f := newFixture(t)
	c, rec := jsonContext(http.MethodPost, "/api/v1/admin/events",
		`{"name":"Festival","date":"2025-06-01","capacity":300}`)
	asUser(c, adminUser)

	require.NoError(t, f.eventHandler.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "admin", created.CreatedBy)
	assert.Equal(t, models.EventActive, created.Status)

	require.Len(t, f.source.submits, 1)
	assert.Equal(t, "create", f.source.submits[0].action)
	assert.Equal(t, "Festival", f.source.submits[0].params.Get("name"))
}

func TestCreateEventRequiresName(t *testing.T) {
	f := newFixture(t)
	c, _ := jsonContext(http.MethodPost, "/api/v1/admin/events", `{"capacity":300}`)
	asUser(c, adminUser)

	err := f.eventHandler.Create(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestUpdateEventKeepsOwnership(t *testing.T) {
	f := newFixture(t)
	rec := serve(http.MethodPut, "/events/e1", `{"name":"Fiesta Renombrada"}`, adminUser,
		func(g *echo.Group) { g.PUT("/events/:id", f.eventHandler.Update) })

	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Fiesta Renombrada", updated.Name)
	assert.Equal(t, "admin", updated.CreatedBy)

	require.Len(t, f.source.submits, 1)
	assert.Equal(t, "update", f.source.submits[0].action)
}

func TestUpdateEventForbiddenForOtherOwner(t *testing.T) {
	f := newFixture(t)
	rec := serve(http.MethodPut, "/events/e2", `{"name":"Robada"}`, adminUser,
		func(g *echo.Group) { g.PUT("/events/:id", f.eventHandler.Update) })

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, f.source.submits)
}

func TestUpdateEventSuperAdminCrossesScopes(t *testing.T) {
	f := newFixture(t)
	rec := serve(http.MethodPut, "/events/e2", `{"name":"Ajena"}`, superUser,
		func(g *echo.Group) { g.PUT("/events/:id", f.eventHandler.Update) })

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.source.submits, 1)
}

func TestDeleteEvent(t *testing.T) {
	f := newFixture(t)
	rec := serve(http.MethodDelete, "/events/e1", "", adminUser,
		func(g *echo.Group) { g.DELETE("/events/:id", f.eventHandler.Delete) })

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, f.source.submits, 1)
	assert.Equal(t, "delete", f.source.submits[0].action)
	assert.Equal(t, "e1", f.source.submits[0].params.Get("id"))
}

func TestUpdateEventNoWriteWhenSheetUnavailable(t *testing.T) {
	f := newFixture(t)
	f.source.fetchErr = errors.New("connection refused")
	rec := serve(http.MethodPut, "/events/e1", `{"name":"Fantasma"}`, adminUser,
		func(g *echo.Group) { g.PUT("/events/:id", f.eventHandler.Update) })

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	// ownership could not be verified, so nothing may reach the sheet
	assert.Empty(t, f.source.submits)
}

func TestDeleteEventNoWriteWhenSheetUnavailable(t *testing.T) {
	f := newFixture(t)
	f.source.fetchErr = errors.New("connection refused")
	rec := serve(http.MethodDelete, "/events/e1", "", adminUser,
		func(g *echo.Group) { g.DELETE("/events/:id", f.eventHandler.Delete) })

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Empty(t, f.source.submits)
}

func TestDeleteEventNotFound(t *testing.T) {
	f := newFixture(t)
	rec := serve(http.MethodDelete, "/events/missing", "", adminUser,
		func(g *echo.Group) { g.DELETE("/events/:id", f.eventHandler.Delete) })

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, f.source.submits)
}
