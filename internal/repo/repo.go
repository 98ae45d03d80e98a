package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/Skotchmaster/videotube/internal/apperr"
)

const DefaultTimeout = 5 * time.Second

// ErrDuplicate marks a write rejected by a unique index.
var ErrDuplicate = apperr.New(apperr.ErrConflict, "already exists")

// GormRepo is the document-store contract over a gorm connection. Every call
// runs under Timeout unless the caller's context expires first.
type GormRepo struct {
	DB      *gorm.DB
	Timeout time.Duration
}

func New(db *gorm.DB, timeout time.Duration) *GormRepo {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GormRepo{DB: db, Timeout: timeout}
}

func (r *GormRepo) conn(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	return r.DB.WithContext(ctx), cancel
}

// Transaction runs fn in one transaction bounded by the repo timeout.
func (r *GormRepo) Transaction(ctx context.Context, fn func(tx *GormRepo) error) error {
	db, cancel := r.conn(ctx)
	defer cancel()
	err := db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx, Timeout: r.Timeout})
	})
	return err
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// translate maps driver errors onto the shared kinds; what names the entity.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.Wrap(apperr.ErrNotFound, what+" not found", err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperr.Wrap(apperr.ErrTransient, what+": store timeout", err)
	case isDuplicate(err):
		return &apperr.Error{Kind: ErrDuplicate, Msg: what + " already exists", Cause: err}
	default:
		return apperr.Wrap(apperr.ErrInternal, what, err)
	}
}
