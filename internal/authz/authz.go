// Package authz decides whether a principal may mutate a resource.
package authz

import (
	"github.com/google/uuid"

	"github.com/Skotchmaster/videotube/internal/apperr"
)

// Principal is the authenticated caller, passed explicitly into every
// operation that needs it. It never carries credential material.
type Principal struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage"`
}

func (p Principal) Authenticated() bool { return p.ID != uuid.Nil }

type Owned interface {
	Owner() uuid.UUID
}

func CanMutate(p Principal, r Owned) bool {
	return p.Authenticated() && r.Owner() == p.ID
}

// Authorize checks existence first and ownership second: a failed lookup is
// returned unchanged so an absent resource reads as not found, never forbidden.
func Authorize[R Owned](p Principal, r R, lookupErr error, what string) (R, error) {
	if lookupErr != nil {
		return r, lookupErr
	}
	if !CanMutate(p, r) {
		return r, apperr.Forbidden("you are not the owner of this " + what)
	}
	return r, nil
}
