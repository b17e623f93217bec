package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"tiketnow/config"
	"tiketnow/internal/sheetcsv"
	"tiketnow/internal/status"
	"tiketnow/models"
	"tiketnow/monitoring"
	"tiketnow/utils"
)

const purchasesCacheKey = "purchases"

// PurchaseService reads ticket orders from the purchases sheet. Orders are
// created by the storefront and only ever appended; the one write path this
// side owns is the confirmation marker.
type PurchaseService struct {
	cfg    *config.Config
	source SheetSource
	cache  utils.Store
}

func NewPurchaseService(cfg *config.Config, source SheetSource, cache utils.Store) *PurchaseService {
	return &PurchaseService{
		cfg:    cfg,
		source: source,
		cache:  cache,
	}
}

func (s *PurchaseService) GetAllPurchases(ctx context.Context) ([]models.Purchase, error) {
	if purchases, ok := s.cachedPurchases(ctx, false); ok {
		monitoring.TrackCache(purchasesCacheKey, true)
		return purchases, nil
	}
	monitoring.TrackCache(purchasesCacheKey, false)

	text, err := s.source.FetchCSV(ctx, s.cfg.PurchasesSheet)
	if errors.Is(err, status.ErrNotConfigured) {
		return []models.Purchase{}, nil
	}
	if err != nil {
		if purchases, ok := s.cachedPurchases(ctx, true); ok {
			slog.Warn("purchases: serving stale cache after fetch failure", "error", err)
			return purchases, nil
		}
		return nil, fmt.Errorf("%w: %v", status.ErrSheetUnavailable, err)
	}

	rows := sheetcsv.Decode(text)
	monitoring.TrackRowsDecoded(s.cfg.PurchasesSheet, len(rows))
	purchases := sheetcsv.MapPurchases(rows)

	s.storeCache(ctx, purchases)
	return purchases, nil
}

func (s *PurchaseService) FindPurchase(ctx context.Context, id string) (models.Purchase, error) {
	purchases, err := s.GetAllPurchases(ctx)
	if err != nil {
		return models.Purchase{}, err
	}
	for _, p := range purchases {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Purchase{}, status.ErrPurchaseNotFound
}

// SubmitPurchase appends a storefront order to the sheet. The script
// endpoint stamps the timestamp column itself.
func (s *PurchaseService) SubmitPurchase(ctx context.Context, p models.Purchase) error {
	params := url.Values{
		"firstName":     {p.FirstName},
		"lastName":      {p.LastName},
		"phone":         {p.Phone},
		"email":         {p.Email},
		"ticketQty":     {strconv.Itoa(p.TicketQty)},
		"coolerQty":     {strconv.Itoa(p.CoolerQty)},
		"paymentMethod": {p.PaymentMethod},
		"total":         {p.Total.String()},
		"status":        {"pendiente"},
		"eventId":       {p.EventID},
		"eventName":     {p.EventName},
	}
	if err := s.source.Submit(ctx, "", params); err != nil {
		return err
	}
	s.cache.Delete(ctx, purchasesCacheKey)
	return nil
}

// ConfirmPurchase records the confirmation and the generated QR links on the
// purchase row. Like every write it is fire-and-forget; the local cache is
// just invalidated so the next read refetches.
func (s *PurchaseService) ConfirmPurchase(ctx context.Context, id string, codes []string) error {
	payload, err := json.Marshal(codes)
	if err != nil {
		return fmt.Errorf("purchases: encode codes: %w", err)
	}
	params := url.Values{
		"id":    {id},
		"codes": {string(payload)},
	}
	if err := s.source.Submit(ctx, "confirm", params); err != nil {
		return err
	}
	s.cache.Delete(ctx, purchasesCacheKey)
	return nil
}

func (s *PurchaseService) cachedPurchases(ctx context.Context, stale bool) ([]models.Purchase, bool) {
	var (
		data []byte
		ok   bool
	)
	if stale {
		data, ok = s.cache.GetStale(ctx, purchasesCacheKey)
	} else {
		data, ok = s.cache.Get(ctx, purchasesCacheKey)
	}
	if !ok {
		return nil, false
	}
	var purchases []models.Purchase
	if err := json.Unmarshal(data, &purchases); err != nil {
		return nil, false
	}
	return purchases, true
}

func (s *PurchaseService) storeCache(ctx context.Context, purchases []models.Purchase) {
	data, err := json.Marshal(purchases)
	if err != nil {
		return
	}
	s.cache.Set(ctx, purchasesCacheKey, data, s.cfg.CacheTTL)
}
