package middleware

// identity.go provides a helper shared across middleware files that
// derives a stable user identifier for cache and rate-limit keys.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID returns the authenticated user's id from the
// context as a string, or "anon" when no user is authenticated.
// JWTAuth stores the JWT subject claim under "user_id"; JSON
// numbers decode as float64, so numeric claim types are formatted
// here rather than expecting a string.
func currentUserID(c echo.Context) string {
	for _, key := range []string{"user_id", "userID"} {
		switch t := c.Get(key).(type) {
		case string:
			if t != "" {
				return t
			}
		case float64:
			return strconv.FormatUint(uint64(t), 10)
		case uint64:
			return strconv.FormatUint(t, 10)
		case int64:
			return strconv.FormatInt(t, 10)
		case int:
			return strconv.Itoa(t)
		}
	}
	return "anon"
}
