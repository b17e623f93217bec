package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(t *testing.T, limiter *RateLimiter, ip string) int {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/purchases", nil)
	req.Header.Set("X-Real-IP", ip)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := limiter.Middleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec.Code
}

func TestMemoryWindowBlocksOverLimit(t *testing.T) {
	limiter := NewRateLimiter(nil, 3)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(t, limiter, "10.0.0.1"))
	}
	assert.Equal(t, http.StatusTooManyRequests, doRequest(t, limiter, "10.0.0.1"))

	// other clients keep their own window
	assert.Equal(t, http.StatusOK, doRequest(t, limiter, "10.0.0.2"))
}

func TestZeroLimitDisablesThrottling(t *testing.T) {
	limiter := NewRateLimiter(nil, 0)
	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, doRequest(t, limiter, "10.0.0.1"))
	}
}

func TestMemoryWindowPrunesExpiredEntries(t *testing.T) {
	limiter := NewRateLimiter(nil, 3)
	limiter.windows["10.0.0.8"] = &window{count: 3, resetAt: time.Now().Add(-time.Minute)}
	limiter.windows["10.0.0.9"] = &window{count: 1, resetAt: time.Now().Add(time.Minute)}

	// opening a new window sweeps the expired ones
	assert.Equal(t, http.StatusOK, doRequest(t, limiter, "10.0.0.1"))

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.NotContains(t, limiter.windows, "10.0.0.8")
	assert.Contains(t, limiter.windows, "10.0.0.9")
	assert.Contains(t, limiter.windows, "10.0.0.1")
}

func TestRedisWindow(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(client, 2)

	mock.ExpectIncr("ratelimit:10.0.0.1").SetVal(1)
	mock.ExpectExpire("ratelimit:10.0.0.1", time.Minute).SetVal(true)
	assert.Equal(t, http.StatusOK, doRequest(t, limiter, "10.0.0.1"))

	mock.ExpectIncr("ratelimit:10.0.0.1").SetVal(2)
	assert.Equal(t, http.StatusOK, doRequest(t, limiter, "10.0.0.1"))

	mock.ExpectIncr("ratelimit:10.0.0.1").SetVal(3)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(t, limiter, "10.0.0.1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisFailureFailsOpen(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(client, 1)

	mock.ExpectIncr("ratelimit:10.0.0.1").SetErr(assert.AnError)
	assert.Equal(t, http.StatusOK, doRequest(t, limiter, "10.0.0.1"))
}
