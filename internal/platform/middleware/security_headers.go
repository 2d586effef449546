package middleware

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
)

// HSTSMaxAge is the Strict-Transport-Security lifetime used outside development.
const HSTSMaxAge = 365 * 24 * time.Hour

// SecurityHeaders sets the response headers a JSON-only API needs. Assessment
// payloads carry casualty details, so nothing is cached. HSTS is only sent when
// hsts is positive; development servers run over plain HTTP.
func SecurityHeaders(hsts time.Duration) echo.MiddlewareFunc {
	sts := ""
	if hsts > 0 {
		sts = fmt.Sprintf("max-age=%d; includeSubDomains", int64(hsts/time.Second))
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Cache-Control", "no-store")
			if sts != "" {
				h.Set("Strict-Transport-Security", sts)
			}
			return next(c)
		}
	}
}
