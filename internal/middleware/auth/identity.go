// Package auth resolves the calling principal from the access token.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/videotube/internal/apperr"
	"github.com/Skotchmaster/videotube/internal/authz"
	"github.com/Skotchmaster/videotube/internal/logging"
	"github.com/Skotchmaster/videotube/internal/tokens"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"

	principalKey = "principal"
)

type TokenVerifier interface {
	Verify(token string, kind tokens.Kind) (tokens.Verified, error)
}

// PrincipalResolver loads the public identity of a user id.
type PrincipalResolver interface {
	Principal(ctx context.Context, id uuid.UUID) (authz.Principal, error)
}

type Identity struct {
	Tokens     TokenVerifier
	Principals PrincipalResolver
}

// Require rejects the request unless a valid access token names an existing user.
func (m *Identity) Require(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := m.resolve(c)
		if err != nil {
			return err
		}
		attach(c, p)
		return next(c)
	}
}

// Optional attaches a principal when the token resolves and continues
// anonymously otherwise.
func (m *Identity) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if AccessToken(c) == "" {
			return next(c)
		}
		p, err := m.resolve(c)
		switch {
		case err == nil:
			attach(c, p)
		case !errors.Is(err, apperr.ErrUnauthenticated):
			return err
		}
		return next(c)
	}
}

func (m *Identity) resolve(c echo.Context) (authz.Principal, error) {
	raw := AccessToken(c)
	if raw == "" {
		return authz.Principal{}, apperr.Unauthenticated("unauthorized request")
	}
	v, err := m.Tokens.Verify(raw, tokens.KindAccess)
	if err != nil {
		return authz.Principal{}, apperr.Wrap(apperr.ErrUnauthenticated, "invalid access token", err)
	}
	p, err := m.Principals.Principal(c.Request().Context(), v.PrincipalID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return authz.Principal{}, apperr.Wrap(apperr.ErrUnauthenticated, "invalid access token", err)
		}
		return authz.Principal{}, err
	}
	return p, nil
}

func attach(c echo.Context, p authz.Principal) {
	c.Set(principalKey, p)
	req := c.Request()
	l := logging.FromContext(req.Context()).With("user_id", p.ID.String())
	c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))
}

// AccessToken reads the access token from its cookie, falling back to a
// bearer Authorization header.
func AccessToken(c echo.Context) string {
	if ck, err := c.Cookie(AccessCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// PrincipalFrom returns the attached principal, or the zero principal for
// anonymous requests.
func PrincipalFrom(c echo.Context) authz.Principal {
	p, _ := c.Get(principalKey).(authz.Principal)
	return p
}
