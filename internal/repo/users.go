package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/videotube/internal/models"
)

// credentialColumns never leave the store through principal lookups.
var credentialColumns = []string{"password_hash", "refresh_token_hash"}

type Users struct {
	Collection[models.User]
	r *GormRepo
}

func NewUsers(r *GormRepo) *Users {
	return &Users{Collection: Of[models.User](r, "user"), r: r}
}

// PublicByID loads a user without credential fields.
func (u *Users) PublicByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return u.FindByID(ctx, id, credentialColumns...)
}

// ByLogin finds a user by username or email, credentials included.
func (u *Users) ByLogin(ctx context.Context, login string) (*models.User, error) {
	db, cancel := u.r.conn(ctx)
	defer cancel()

	login = strings.ToLower(strings.TrimSpace(login))
	var out models.User
	if err := db.Where("username = ? OR email = ?", login, login).Take(&out).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &out, nil
}

// Taken reports whether username or email is already used.
func (u *Users) Taken(ctx context.Context, username, email string) (bool, error) {
	db, cancel := u.r.conn(ctx)
	defer cancel()

	var n int64
	err := db.Model(&models.User{}).Where("username = ? OR email = ?", username, email).Count(&n).Error
	return n > 0, translate(err, "user")
}

func (u *Users) SetRefreshHash(ctx context.Context, id uuid.UUID, hash string) error {
	return u.updateWhere(ctx, Filter{"id": id}, map[string]any{"refresh_token_hash": hash})
}

// SwapRefreshHash is a compare-and-swap on the refresh slot.
func (u *Users) SwapRefreshHash(ctx context.Context, id uuid.UUID, expected, next string) (bool, error) {
	if expected == "" {
		return false, nil
	}
	db, cancel := u.r.conn(ctx)
	defer cancel()

	res := db.Model(&models.User{}).
		Where("id = ? AND refresh_token_hash = ?", id, expected).
		Update("refresh_token_hash", next)
	if res.Error != nil {
		return false, translate(res.Error, "user")
	}
	return res.RowsAffected == 1, nil
}

func (u *Users) ClearRefreshHash(ctx context.Context, id uuid.UUID) error {
	db, cancel := u.r.conn(ctx)
	defer cancel()

	err := db.Model(&models.User{}).Where("id = ?", id).Update("refresh_token_hash", "").Error
	return translate(err, "user")
}
