// Package service implements the API operations on top of the store, the
// token service, the toggle engine, the view composer and the asset
// orchestrator. Every operation takes the caller as an explicit principal.
package service

import (
	"errors"
	"strings"

	"github.com/Skotchmaster/videotube/internal/apperr"
	"github.com/Skotchmaster/videotube/internal/authz"
	"github.com/Skotchmaster/videotube/internal/tokens"
	"github.com/Skotchmaster/videotube/internal/util"
)

// PageRequest is a 1-based page and its size as sent by clients.
type PageRequest struct {
	Page  int
	Limit int
}

func (p PageRequest) window() (skip, limit int) {
	return util.Calculate(p.Page, p.Limit)
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

func requireAuth(p authz.Principal) error {
	if !p.Authenticated() {
		return apperr.Unauthenticated("unauthorized request")
	}
	return nil
}

// tokenError hides which token check failed.
func tokenError(err error, msg string) error {
	if errors.Is(err, tokens.ErrTokenInvalid) || errors.Is(err, tokens.ErrTokenExpired) {
		return apperr.Wrap(apperr.ErrUnauthenticated, msg, err)
	}
	return err
}
