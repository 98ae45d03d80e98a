package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Filter is an equality filter keyed by column name.
type Filter map[string]any

// Collection gives typed CRUD over one model table.
type Collection[T any] struct {
	r    *GormRepo
	what string
}

func Of[T any](r *GormRepo, what string) Collection[T] {
	return Collection[T]{r: r, what: what}
}

func (c Collection[T]) FindByID(ctx context.Context, id uuid.UUID, omit ...string) (*T, error) {
	db, cancel := c.r.conn(ctx)
	defer cancel()

	var out T
	q := db.Model(new(T))
	if len(omit) > 0 {
		q = q.Omit(omit...)
	}
	if err := q.Where("id = ?", id).Take(&out).Error; err != nil {
		return nil, translate(err, c.what)
	}
	return &out, nil
}

func (c Collection[T]) FindOne(ctx context.Context, f Filter) (*T, error) {
	db, cancel := c.r.conn(ctx)
	defer cancel()

	var out T
	if err := db.Model(new(T)).Where(map[string]any(f)).Take(&out).Error; err != nil {
		return nil, translate(err, c.what)
	}
	return &out, nil
}

func (c Collection[T]) Create(ctx context.Context, doc *T) error {
	db, cancel := c.r.conn(ctx)
	defer cancel()
	return translate(db.Create(doc).Error, c.what)
}

// UpdateByID applies patch and returns the updated document.
func (c Collection[T]) UpdateByID(ctx context.Context, id uuid.UUID, patch map[string]any) (*T, error) {
	if err := c.updateWhere(ctx, Filter{"id": id}, patch); err != nil {
		return nil, err
	}
	return c.FindByID(ctx, id)
}

func (c Collection[T]) updateWhere(ctx context.Context, f Filter, patch map[string]any) error {
	db, cancel := c.r.conn(ctx)
	defer cancel()

	res := db.Model(new(T)).Where(map[string]any(f)).Updates(patch)
	if res.Error != nil {
		return translate(res.Error, c.what)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, c.what)
	}
	return nil
}

func (c Collection[T]) DeleteByID(ctx context.Context, id uuid.UUID) error {
	db, cancel := c.r.conn(ctx)
	defer cancel()

	res := db.Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return translate(res.Error, c.what)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, c.what)
	}
	return nil
}

func (c Collection[T]) DeleteWhere(ctx context.Context, f Filter) (int64, error) {
	db, cancel := c.r.conn(ctx)
	defer cancel()

	res := db.Where(map[string]any(f)).Delete(new(T))
	return res.RowsAffected, translate(res.Error, c.what)
}

func (c Collection[T]) Count(ctx context.Context, f Filter) (int64, error) {
	db, cancel := c.r.conn(ctx)
	defer cancel()

	var n int64
	q := db.Model(new(T))
	if len(f) > 0 {
		q = q.Where(map[string]any(f))
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, translate(err, c.what)
	}
	return n, nil
}

func (c Collection[T]) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := c.Count(ctx, Filter{"id": id})
	return n > 0, err
}
