// Package csrf guards cookie-authenticated requests with a double-submit token.
package csrf

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	CookieName = "XSRF-TOKEN"
	HeaderName = "X-CSRF-Token"
	FormField  = "csrf_token"
)

type Config struct {
	// SessionCookie limits enforcement to requests carrying this cookie.
	// Requests authenticated only by an Authorization header pass through.
	SessionCookie string
	Secure        bool
	SkipPaths     []string
}

func Middleware(cfg Config) echo.MiddlewareFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return middleware.CSRFWithConfig(middleware.CSRFConfig{
		Skipper: func(c echo.Context) bool {
			if _, ok := skip[c.Request().URL.Path]; ok {
				return true
			}
			if cfg.SessionCookie == "" {
				return false
			}
			ck, err := c.Cookie(cfg.SessionCookie)
			return err != nil || ck.Value == ""
		},
		TokenLookup:    "header:" + HeaderName + ",form:" + FormField,
		CookieName:     CookieName,
		CookiePath:     "/",
		CookieSecure:   cfg.Secure,
		CookieSameSite: http.SameSiteLaxMode,
		CookieMaxAge:   int((24 * time.Hour).Seconds()),
	})
}
