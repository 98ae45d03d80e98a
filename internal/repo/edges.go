package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Skotchmaster/videotube/internal/models"
	"github.com/Skotchmaster/videotube/internal/toggle"
)

// Edges stores likes and subscriptions for the toggle engine.
type Edges struct {
	r *GormRepo
}

func NewEdges(r *GormRepo) *Edges { return &Edges{r: r} }

func (e *Edges) filter(edge toggle.Edge) (any, Filter) {
	if edge.Kind == toggle.Subscription {
		return &models.Subscription{}, Filter{"subscriber_id": edge.Actor, "channel_id": edge.Target}
	}
	return &models.Like{}, Filter{"actor_id": edge.Actor, "target_id": edge.Target, "kind": string(edge.Kind)}
}

func (e *Edges) Has(ctx context.Context, edge toggle.Edge) (bool, error) {
	db, cancel := e.r.conn(ctx)
	defer cancel()

	model, f := e.filter(edge)
	var n int64
	if err := db.Model(model).Where(map[string]any(f)).Count(&n).Error; err != nil {
		return false, translate(err, "edge")
	}
	return n > 0, nil
}

func (e *Edges) Insert(ctx context.Context, edge toggle.Edge) (bool, error) {
	db, cancel := e.r.conn(ctx)
	defer cancel()

	var err error
	if edge.Kind == toggle.Subscription {
		err = db.Create(&models.Subscription{SubscriberID: edge.Actor, ChannelID: edge.Target}).Error
	} else {
		err = db.Create(&models.Like{ActorID: edge.Actor, TargetID: edge.Target, Kind: string(edge.Kind)}).Error
	}
	if err != nil {
		if isDuplicate(err) {
			return false, nil
		}
		return false, translate(err, "edge")
	}
	return true, nil
}

func (e *Edges) Remove(ctx context.Context, edge toggle.Edge) (bool, error) {
	db, cancel := e.r.conn(ctx)
	defer cancel()

	model, f := e.filter(edge)
	res := db.Where(map[string]any(f)).Delete(model)
	if res.Error != nil {
		return false, translate(res.Error, "edge")
	}
	return res.RowsAffected > 0, nil
}

func (e *Edges) ActorExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return Of[models.User](e.r, "user").Exists(ctx, id)
}

func (e *Edges) TargetExists(ctx context.Context, kind toggle.Kind, id uuid.UUID) (bool, error) {
	switch kind {
	case toggle.VideoLike:
		return Of[models.Video](e.r, "video").Exists(ctx, id)
	case toggle.CommentLike:
		return Of[models.Comment](e.r, "comment").Exists(ctx, id)
	case toggle.TweetLike:
		return Of[models.Tweet](e.r, "tweet").Exists(ctx, id)
	case toggle.Subscription:
		return Of[models.User](e.r, "channel").Exists(ctx, id)
	}
	return false, errors.New("unknown edge kind")
}

// DeleteTargetEdges drops likes pointing at a removed resource.
func (e *Edges) DeleteTargetEdges(ctx context.Context, kind toggle.Kind, target uuid.UUID) error {
	_, err := Of[models.Like](e.r, "like").DeleteWhere(ctx, Filter{"target_id": target, "kind": string(kind)})
	return err
}

// DeleteWithLikes removes a liked document (comment or tweet) and its likes in one transaction.
func DeleteWithLikes[T any](ctx context.Context, r *GormRepo, kind toggle.Kind, id uuid.UUID, what string) error {
	return r.Transaction(ctx, func(tx *GormRepo) error {
		if err := NewEdges(tx).DeleteTargetEdges(ctx, kind, id); err != nil {
			return err
		}
		return Of[T](tx, what).DeleteByID(ctx, id)
	})
}
