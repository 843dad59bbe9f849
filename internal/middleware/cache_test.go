package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundrail/distro/internal/config"
)

func newCachedEcho(t *testing.T, maxBody int, body string) func() *httptest.ResponseRecorder {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := config.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: "cache", MaxBodyBytes: maxBody}
	e := echo.New()
	e.GET("/v1/earnings", func(c echo.Context) error {
		return c.JSONBlob(http.StatusOK, []byte(body))
	}, NewRedisCache(cfg, rdb))

	return func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/earnings", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}
}

func TestRedisCacheHitServesFullBody(t *testing.T) {
	body := `{"earnings":[{"release_id":1,"attributed":4.2}]}`
	get := newCachedEcho(t, 1<<20, body)

	first := get()
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, body, first.Body.String())

	second := get()
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, body, second.Body.String())
}

func TestRedisCacheSkipsOversizedBody(t *testing.T) {
	// body well over the 100-byte cap: it must be served intact on
	// every request and never land in the cache in truncated form
	body := `{"earnings":"` + strings.Repeat("x", 500) + `"}`
	get := newCachedEcho(t, 100, body)

	first := get()
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Len(t, first.Body.String(), len(body))

	second := get()
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "MISS", second.Header().Get("X-Cache"), "oversized responses must not be cached")
	assert.Equal(t, body, second.Body.String(), "client must receive the complete body, not the capped buffer")
}

func TestRedisCacheIgnoresNon200(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := config.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: "cache", MaxBodyBytes: 1 << 20}
	e := echo.New()
	e.GET("/v1/earnings", func(c echo.Context) error {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}, NewRedisCache(cfg, rdb))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/earnings", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	}
}
