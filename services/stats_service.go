package services

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tiketnow/models"
)

// StatsService joins purchases to events and derives the dashboard figures.
// All methods are pure: inputs are never mutated and equal inputs produce
// equal outputs, so repeated aggregation over one load is idempotent.
type StatsService struct{}

func NewStatsService() *StatsService {
	return &StatsService{}
}

// Summary is the aggregate view over a purchase subset.
type Summary struct {
	TotalRevenue   decimal.Decimal       `json:"total_revenue"`
	TotalTickets   int                   `json:"total_tickets"`
	TotalCoolers   int                   `json:"total_coolers"`
	PurchaseCount  int                   `json:"purchase_count"`
	StatusCounts   map[models.Status]int `json:"status_counts"`
	PaymentMethods map[string]int        `json:"payment_methods"`
}

// EventSales is the per-event reconciliation of purchases against capacity.
// CapacityUsed is display-only; nothing enforces it as a hard cap.
type EventSales struct {
	EventID      string          `json:"event_id"`
	EventName    string          `json:"event_name"`
	TicketsSold  int             `json:"tickets_sold"`
	Capacity     int             `json:"capacity"`
	CapacityUsed float64         `json:"capacity_used"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// ScopeEvents keeps the events created by owner. An empty owner disables
// scoping and returns everything.
func (s *StatsService) ScopeEvents(events []models.Event, owner string) []models.Event {
	if owner == "" {
		return append([]models.Event(nil), events...)
	}
	scoped := make([]models.Event, 0, len(events))
	for _, e := range events {
		if e.CreatedBy == owner {
			scoped = append(scoped, e)
		}
	}
	return scoped
}

// ScopePurchases keeps the purchases whose event belongs to owner. With
// scoping active, purchases referencing no event or an event owned by
// someone else are excluded; an empty owner returns everything, including
// purchases that reference nonexistent events.
func (s *StatsService) ScopePurchases(purchases []models.Purchase, events []models.Event, owner string) []models.Purchase {
	if owner == "" {
		return append([]models.Purchase(nil), purchases...)
	}
	owned := make(map[string]bool, len(events))
	for _, e := range events {
		if e.CreatedBy == owner {
			owned[e.ID] = true
		}
	}
	scoped := make([]models.Purchase, 0, len(purchases))
	for _, p := range purchases {
		if owned[p.EventID] {
			scoped = append(scoped, p)
		}
	}
	return scoped
}

// FilterByEvent narrows a purchase subset to one selected event.
func (s *StatsService) FilterByEvent(purchases []models.Purchase, eventID string) []models.Purchase {
	if eventID == "" {
		return append([]models.Purchase(nil), purchases...)
	}
	filtered := make([]models.Purchase, 0, len(purchases))
	for _, p := range purchases {
		if p.EventID == eventID {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func (s *StatsService) Summarize(purchases []models.Purchase) Summary {
	summary := Summary{
		TotalRevenue:   decimal.Zero,
		PurchaseCount:  len(purchases),
		StatusCounts:   map[models.Status]int{},
		PaymentMethods: map[string]int{},
	}
	for _, p := range purchases {
		summary.TotalRevenue = summary.TotalRevenue.Add(p.Total)
		summary.TotalTickets += p.TicketQty
		summary.TotalCoolers += p.CoolerQty
		summary.StatusCounts[p.Status]++
		summary.PaymentMethods[strings.ToLower(strings.TrimSpace(p.PaymentMethod))]++
	}
	return summary
}

// EventSales reconciles purchases against each listed event by identifier.
func (s *StatsService) EventSales(purchases []models.Purchase, events []models.Event) []EventSales {
	sales := make([]EventSales, 0, len(events))
	for _, e := range events {
		entry := EventSales{
			EventID:   e.ID,
			EventName: e.Name,
			Capacity:  e.Capacity,
			Revenue:   decimal.Zero,
		}
		for _, p := range purchases {
			if p.EventID != e.ID {
				continue
			}
			entry.TicketsSold += p.TicketQty
			entry.Revenue = entry.Revenue.Add(p.Total)
		}
		if e.Capacity > 0 {
			entry.CapacityUsed = float64(entry.TicketsSold) / float64(e.Capacity)
		}
		sales = append(sales, entry)
	}
	return sales
}

// SortEvents orders a copy of events by date or capacity. The sort is stable
// so ties keep their original (most-recent-first) order.
func (s *StatsService) SortEvents(events []models.Event, by string, ascending bool) []models.Event {
	sorted := append([]models.Event(nil), events...)

	var less func(a, b models.Event) bool
	switch by {
	case "capacity":
		less = func(a, b models.Event) bool { return a.Capacity < b.Capacity }
	default:
		less = func(a, b models.Event) bool { return dateLess(a.Date, b.Date) }
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		if ascending {
			return less(sorted[i], sorted[j])
		}
		return less(sorted[j], sorted[i])
	})
	return sorted
}

// dateLess compares the free-text date cells. Cells that parse with a known
// layout compare as dates; everything else falls back to a lexicographic
// compare so the ordering stays deterministic.
func dateLess(a, b string) bool {
	ta, aok := parseEventDate(a)
	tb, bok := parseEventDate(b)
	if aok && bok {
		return ta.Before(tb)
	}
	return a < b
}

var eventDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
}

func parseEventDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
