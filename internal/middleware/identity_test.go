package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/bookstore/internal/config"
)

func testContext(t *testing.T, target string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestCurrentUserIDHandlesClaimTypes(t *testing.T) {
	// JWTAuth stores the raw subject claim, which arrives as
	// float64 after JSON decoding.
	cases := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"float64 claim", float64(42), "42"},
		{"uint64", uint64(7), "7"},
		{"int64", int64(9), "9"},
		{"int", 3, "3"},
		{"string", "15", "15"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := testContext(t, "/v1/cart")
			c.Set("user_id", tc.value)
			assert.Equal(t, tc.want, currentUserID(c))
		})
	}

	assert.Equal(t, "anon", currentUserID(testContext(t, "/v1/books")))
}

func TestRateKeySeparatesUsers(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}

	a := testContext(t, "/v1/cart")
	a.Set("user_id", float64(1))
	b := testContext(t, "/v1/cart")
	b.Set("user_id", float64(2))

	keyA := buildRateKey(cfg, a)
	keyB := buildRateKey(cfg, b)
	assert.NotEqual(t, keyA, keyB)
	assert.NotContains(t, keyA, "anon")
	assert.NotContains(t, keyB, "anon")

	// Same subject always lands in the same bucket.
	a2 := testContext(t, "/v1/orders")
	a2.Set("user_id", float64(1))
	assert.Equal(t, keyA, buildRateKey(cfg, a2))
}
