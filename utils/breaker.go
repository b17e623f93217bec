package utils

import (
	"errors"
	"sync"
	"time"
)

var ErrBreakerOpen = errors.New("breaker: too many consecutive failures, backing off")

// Breaker guards calls to the spreadsheet endpoints. After threshold
// consecutive failures it opens and rejects calls until the cooldown has
// passed; the next attempt after the cooldown closes it again on success.
type Breaker struct {
	threshold int
	cooldown  time.Duration

	mu        sync.Mutex
	failures  int
	openUntil time.Time
}

func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	return &Breaker{threshold: threshold, cooldown: cooldown}
}

func (b *Breaker) Do(fn func() error) error {
	b.mu.Lock()
	if !b.openUntil.IsZero() && time.Now().Before(b.openUntil) {
		b.mu.Unlock()
		return ErrBreakerOpen
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.failures++
		if b.failures >= b.threshold {
			b.openUntil = time.Now().Add(b.cooldown)
			b.failures = 0
		}
		return err
	}
	b.failures = 0
	b.openUntil = time.Time{}
	return nil
}
