package middleware

// identity.go exposes the caller identity stored by JWTAuth to handlers and
// to the rate limiter.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// UserID returns the authenticated backend user id.
func UserID(c echo.Context) (int64, bool) {
	id, ok := c.Get(CtxUserID).(int64)
	return id, ok && id > 0
}

// Role returns the authenticated user's role, or "" for anonymous callers.
func Role(c echo.Context) string {
	r, _ := c.Get(CtxRole).(string)
	return r
}

// Token returns the raw access token of the request.
func Token(c echo.Context) string {
	t, _ := c.Get(CtxToken).(string)
	return t
}

// identityKey is the user part of rate limit keys: the user id, or "anon".
func identityKey(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatInt(id, 10)
	}
	return "anon"
}
