package middleware

// identity.go defines helper functions shared across middleware files.
// The rate limiter keys staff requests by the subject claim of their
// access token; anonymous registrants all share the "guest" identity
// and are keyed by client IP instead.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// userID extracts a staff identifier from the request context.  JWTAuth
// stores the raw "sub" claim, which is a float64 after JSON decoding;
// string subjects from older tokens are passed through.  It returns
// "guest" when no user is authenticated.
func userID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return "guest"
}
