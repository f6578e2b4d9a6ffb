package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bookstore/internal/config"
)

func cacheTestConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:     true,
		Methods:     map[string]bool{http.MethodGet: true},
		TTL:         30 * time.Second,
		KeyStrategy: "route_query",
		Prefix:      "cache",
	}
}

func TestCacheKeySeparatesUsers(t *testing.T) {
	cfg := cacheTestConfig()

	e := echo.New()
	newCtx := func(uid interface{}) echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/v1/cart", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath("/v1/cart")
		if uid != nil {
			c.Set("user_id", uid)
		}
		return c
	}

	keyA := cacheKeyFrom(cfg, newCtx(float64(1)))
	keyB := cacheKeyFrom(cfg, newCtx(float64(2)))
	anon1 := cacheKeyFrom(cfg, newCtx(nil))
	anon2 := cacheKeyFrom(cfg, newCtx(nil))

	// One customer's payload must never be stored under another's key.
	assert.NotEqual(t, keyA, keyB)
	assert.NotEqual(t, keyA, anon1)
	assert.Equal(t, anon1, anon2)
}

func TestCacheBypassesAuthenticatedRequests(t *testing.T) {
	// An unreachable broker address: the no-op and bypass paths must
	// not depend on Redis answering.
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
	})
	mw := NewRedisCache(cacheTestConfig(), rdb)

	e := echo.New()
	calls := 0
	h := mw(func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "personal payload")
	})

	// Authorized request: handler runs, nothing touches the cache.
	req := httptest.NewRequest(http.MethodGet, "/v1/cart", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/cart")
	require.NoError(t, h(c))
	assert.Equal(t, 1, calls)
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Equal(t, "personal payload", rec.Body.String())

	// Anonymous request: the middleware fails open when Redis is
	// down and still serves the origin response.
	req = httptest.NewRequest(http.MethodGet, "/v1/books", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetPath("/v1/books")
	require.NoError(t, h(c))
	assert.Equal(t, 2, calls)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
}
