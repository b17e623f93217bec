package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sheetFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sheet_fetch_total",
			Help: "CSV export fetches per sheet and outcome",
		},
		[]string{"sheet", "status"},
	)

	sheetFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sheet_fetch_duration_seconds",
			Help:    "Duration of CSV export fetches",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 8),
		},
		[]string{"sheet"},
	)

	rowsDecoded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sheet_rows_decoded_total",
			Help: "Decoded CSV rows per sheet",
		},
		[]string{"sheet"},
	)

	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups per key and result",
		},
		[]string{"key", "result"},
	)

	sheetWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sheet_write_total",
			Help: "Fire-and-forget writes to the script endpoint per action",
		},
		[]string{"action", "status"},
	)
)

func TrackFetch(sheet, status string, duration time.Duration) {
	sheetFetches.WithLabelValues(sheet, status).Inc()
	sheetFetchDuration.WithLabelValues(sheet).Observe(duration.Seconds())
}

func TrackRowsDecoded(sheet string, rows int) {
	rowsDecoded.WithLabelValues(sheet).Add(float64(rows))
}

func TrackCache(key string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(key, result).Inc()
}

func TrackWrite(action, status string) {
	sheetWrites.WithLabelValues(action, status).Inc()
}
