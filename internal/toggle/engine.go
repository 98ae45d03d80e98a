// Package toggle flips relationship edges (likes, subscriptions) between present and absent.
package toggle

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/videotube/internal/apperr"
	"github.com/Skotchmaster/videotube/internal/logging"
)

type Kind string

const (
	VideoLike    Kind = "video"
	CommentLike  Kind = "comment"
	TweetLike    Kind = "tweet"
	Subscription Kind = "subscription"
)

func (k Kind) target() string {
	switch k {
	case Subscription:
		return "channel"
	default:
		return string(k)
	}
}

type State string

const (
	Added   State = "added"
	Removed State = "removed"
)

type Edge struct {
	Actor  uuid.UUID
	Target uuid.UUID
	Kind   Kind
}

// EdgeStore is backed by a table with a unique index on (actor, target, kind).
type EdgeStore interface {
	Has(ctx context.Context, e Edge) (bool, error)
	// Insert reports false when the unique index rejected the row.
	Insert(ctx context.Context, e Edge) (bool, error)
	Remove(ctx context.Context, e Edge) (bool, error)
}

type Resolver interface {
	ActorExists(ctx context.Context, id uuid.UUID) (bool, error)
	TargetExists(ctx context.Context, kind Kind, id uuid.UUID) (bool, error)
}

type Engine struct {
	Edges    EdgeStore
	Resolver Resolver
}

func New(edges EdgeStore, resolver Resolver) *Engine {
	return &Engine{Edges: edges, Resolver: resolver}
}

// Toggle removes the edge when present and creates it otherwise. The lookup
// only picks the branch; the unique index decides concurrent races, and a
// lost insert race is resolved once as a removal.
func (e *Engine) Toggle(ctx context.Context, actor, target uuid.UUID, kind Kind) (State, error) {
	l := logging.FromContext(ctx).With("svc", "toggle", "kind", string(kind))

	if err := e.validate(ctx, actor, target, kind); err != nil {
		return "", err
	}

	edge := Edge{Actor: actor, Target: target, Kind: kind}
	found, err := e.Edges.Has(ctx, edge)
	if err != nil {
		return "", fmt.Errorf("lookup edge: %w", err)
	}
	if found {
		if _, err := e.Edges.Remove(ctx, edge); err != nil {
			return "", fmt.Errorf("remove edge: %w", err)
		}
		return Removed, nil
	}

	inserted, err := e.Edges.Insert(ctx, edge)
	if err != nil {
		return "", fmt.Errorf("insert edge: %w", err)
	}
	if inserted {
		return Added, nil
	}

	l.Info("toggle_race_resolved", "actor", actor, "target", target)
	if _, err := e.Edges.Remove(ctx, edge); err != nil {
		return "", fmt.Errorf("remove edge after race: %w", err)
	}
	return Removed, nil
}

func (e *Engine) validate(ctx context.Context, actor, target uuid.UUID, kind Kind) error {
	switch kind {
	case VideoLike, CommentLike, TweetLike, Subscription:
	default:
		return apperr.Validation("unknown relationship kind")
	}
	if actor == uuid.Nil || target == uuid.Nil {
		return apperr.Validation("invalid " + kind.target() + " id")
	}
	if kind == Subscription && actor == target {
		return apperr.Validation("cannot subscribe to your own channel")
	}

	ok, err := e.Resolver.ActorExists(ctx, actor)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("user not found")
	}
	ok, err = e.Resolver.TargetExists(ctx, kind, target)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound(kind.target() + " not found")
	}
	return nil
}
