package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"tiketnow/config"
	"tiketnow/internal/sheetcsv"
	"tiketnow/internal/status"
	"tiketnow/models"
	"tiketnow/monitoring"
	"tiketnow/utils"
)

const eventsCacheKey = "events"

// EventService owns the events sheet: reads go through the time-boxed cache
// and the fetch→decode→map pipeline, writes go to the script endpoint and
// optimistically patch the cached copy. The spreadsheet stays authoritative;
// local state can drift until the next full reload.
type EventService struct {
	cfg    *config.Config
	source SheetSource
	cache  utils.Store
}

func NewEventService(cfg *config.Config, source SheetSource, cache utils.Store) *EventService {
	return &EventService{
		cfg:    cfg,
		source: source,
		cache:  cache,
	}
}

func (s *EventService) GetAllEvents(ctx context.Context) ([]models.Event, error) {
	if events, ok := s.cachedEvents(ctx, false); ok {
		monitoring.TrackCache(eventsCacheKey, true)
		return events, nil
	}
	monitoring.TrackCache(eventsCacheKey, false)

	text, err := s.source.FetchCSV(ctx, s.cfg.EventsSheet)
	if errors.Is(err, status.ErrNotConfigured) {
		return []models.Event{}, nil
	}
	if err != nil {
		if events, ok := s.cachedEvents(ctx, true); ok {
			slog.Warn("events: serving stale cache after fetch failure", "error", err)
			return events, nil
		}
		return nil, fmt.Errorf("%w: %v", status.ErrSheetUnavailable, err)
	}

	rows := sheetcsv.Decode(text)
	monitoring.TrackRowsDecoded(s.cfg.EventsSheet, len(rows))
	events := sheetcsv.MapEvents(rows)

	s.storeCache(ctx, events)
	return events, nil
}

// ActiveEvents is the storefront listing: inactive events never appear.
func (s *EventService) ActiveEvents(ctx context.Context) ([]models.Event, error) {
	events, err := s.GetAllEvents(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]models.Event, 0, len(events))
	for _, e := range events {
		if e.Status == models.EventActive {
			active = append(active, e)
		}
	}
	return active, nil
}

func (s *EventService) FindEvent(ctx context.Context, id string) (models.Event, error) {
	events, err := s.GetAllEvents(ctx)
	if err != nil {
		return models.Event{}, err
	}
	for _, e := range events {
		if e.ID == id {
			return e, nil
		}
	}
	return models.Event{}, status.ErrEventNotFound
}

func (s *EventService) CreateEvent(ctx context.Context, e models.Event) (models.Event, error) {
	e.ID = strconv.FormatInt(time.Now().UnixMilli(), 10)
	e.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	if e.Status == "" {
		e.Status = models.EventActive
	}

	if err := s.source.Submit(ctx, "create", eventParams(e)); err != nil {
		return models.Event{}, err
	}

	s.patchCache(ctx, func(events []models.Event) []models.Event {
		return append([]models.Event{e}, events...)
	})
	return e, nil
}

func (s *EventService) UpdateEvent(ctx context.Context, e models.Event) error {
	if err := s.source.Submit(ctx, "update", eventParams(e)); err != nil {
		return err
	}

	s.patchCache(ctx, func(events []models.Event) []models.Event {
		for i := range events {
			if events[i].ID == e.ID {
				events[i] = e
			}
		}
		return events
	})
	return nil
}

func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	if err := s.source.Submit(ctx, "delete", url.Values{"id": {id}}); err != nil {
		return err
	}

	s.patchCache(ctx, func(events []models.Event) []models.Event {
		kept := events[:0]
		for _, e := range events {
			if e.ID != id {
				kept = append(kept, e)
			}
		}
		return kept
	})
	return nil
}

func (s *EventService) cachedEvents(ctx context.Context, stale bool) ([]models.Event, bool) {
	var (
		data []byte
		ok   bool
	)
	if stale {
		data, ok = s.cache.GetStale(ctx, eventsCacheKey)
	} else {
		data, ok = s.cache.Get(ctx, eventsCacheKey)
	}
	if !ok {
		return nil, false
	}
	var events []models.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, false
	}
	return events, true
}

func (s *EventService) storeCache(ctx context.Context, events []models.Event) {
	data, err := json.Marshal(events)
	if err != nil {
		return
	}
	s.cache.Set(ctx, eventsCacheKey, data, s.cfg.CacheTTL)
}

// patchCache applies an optimistic local edit to the cached event list. Only
// a still-fresh entry is patched; re-storing an expired one would hand it a
// new TTL and serve stale rows as fresh, so those are left for the next
// reload to replace. Nothing is rolled back if the remote write was silently
// dropped; the reload past the TTL converges on whatever the sheet holds.
func (s *EventService) patchCache(ctx context.Context, apply func([]models.Event) []models.Event) {
	events, ok := s.cachedEvents(ctx, false)
	if !ok {
		return
	}
	s.storeCache(ctx, apply(events))
}

// eventParams mirrors the parameter names of the deployed script, one per
// sheet column.
func eventParams(e models.Event) url.Values {
	return url.Values{
		"id":          {e.ID},
		"name":        {e.Name},
		"date":        {e.Date},
		"hour":        {e.Hour},
		"description": {e.Description},
		"location":    {e.Location},
		"image":       {e.Image},
		"ticketPrice": {e.TicketPrice.String()},
		"vipPrice":    {e.VipPrice.String()},
		"capacity":    {strconv.Itoa(e.Capacity)},
		"createdBy":   {e.CreatedBy},
		"status":      {string(e.Status)},
	}
}
