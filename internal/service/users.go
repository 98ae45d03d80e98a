package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/videotube/internal/apperr"
	"github.com/Skotchmaster/videotube/internal/assets"
	"github.com/Skotchmaster/videotube/internal/authz"
	"github.com/Skotchmaster/videotube/internal/events"
	"github.com/Skotchmaster/videotube/internal/hash"
	"github.com/Skotchmaster/videotube/internal/logging"
	"github.com/Skotchmaster/videotube/internal/models"
	"github.com/Skotchmaster/videotube/internal/repo"
	"github.com/Skotchmaster/videotube/internal/tokens"
	"github.com/Skotchmaster/videotube/internal/views"
)

const (
	FieldAvatar     = "avatar"
	FieldCoverImage = "coverImage"
)

type UserService struct {
	Users  *repo.Users
	Tokens *tokens.Service
	Assets *assets.Orchestrator
	Views  *views.Composer
	Events events.Publisher
}

type RegisterInput struct {
	Username string
	Email    string
	FullName string
	Password string
	Avatar   assets.Staged
	Cover    assets.Staged
}

// Register creates an account with its avatar and optional cover image.
// Staged files are consumed in every outcome.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "users.register")

	if blank(in.Username, in.Email, in.FullName, in.Password) {
		assets.Discard(in.Avatar, in.Cover)
		return nil, apperr.Validation("all fields are required")
	}
	if in.Avatar.Path == "" {
		assets.Discard(in.Cover)
		return nil, apperr.Validation("avatar file is required")
	}
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))

	taken, err := s.Users.Taken(ctx, username, email)
	if err != nil {
		assets.Discard(in.Avatar, in.Cover)
		return nil, err
	}
	if taken {
		assets.Discard(in.Avatar, in.Cover)
		return nil, apperr.Conflict("user with email or username already exists")
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		assets.Discard(in.Avatar, in.Cover)
		return nil, apperr.Wrap(apperr.ErrInternal, "hash password", err)
	}

	staged := []assets.Staged{{Field: FieldAvatar, Path: in.Avatar.Path}}
	if in.Cover.Path != "" {
		staged = append(staged, assets.Staged{Field: FieldCoverImage, Path: in.Cover.Path})
	}

	var user models.User
	_, err = s.Assets.CreateWithAssets(ctx, staged, func(ctx context.Context, up assets.Uploaded) error {
		user = models.User{
			Username:     username,
			Email:        email,
			FullName:     strings.TrimSpace(in.FullName),
			Avatar:       up[FieldAvatar].URL,
			CoverImage:   up[FieldCoverImage].URL,
			PasswordHash: pwHash,
		}
		if err := s.Users.Create(ctx, &user); err != nil {
			if errors.Is(err, apperr.ErrConflict) {
				return apperr.Wrap(apperr.ErrConflict, "user with email or username already exists", err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.Users.PublicByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	l.Info("user_registered", "user_id", created.ID)
	events.Emit(ctx, s.Events, events.TopicUsers, created.ID.String(), "user_registered", map[string]any{
		"user_id":  created.ID,
		"username": created.Username,
	})
	return created, nil
}

// Login accepts a username or an email. Unknown users and wrong passwords
// fail identically.
func (s *UserService) Login(ctx context.Context, login, password string) (*models.User, tokens.Pair, error) {
	if blank(login) {
		return nil, tokens.Pair{}, apperr.Validation("username or email is required")
	}
	user, err := s.Users.ByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, tokens.Pair{}, apperr.Unauthenticated("invalid user credentials")
		}
		return nil, tokens.Pair{}, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, tokens.Pair{}, apperr.Unauthenticated("invalid user credentials")
	}

	pair, err := s.Tokens.Rotate(ctx, user.ID)
	if err != nil {
		return nil, tokens.Pair{}, err
	}
	public, err := s.Users.PublicByID(ctx, user.ID)
	if err != nil {
		return nil, tokens.Pair{}, err
	}
	events.Emit(ctx, s.Events, events.TopicUsers, user.ID.String(), "user_logged_in", map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
	})
	return public, pair, nil
}

func (s *UserService) Logout(ctx context.Context, p authz.Principal) error {
	if err := requireAuth(p); err != nil {
		return err
	}
	return s.Tokens.Revoke(ctx, p.ID)
}

// Refresh trades the presented refresh token for a new pair.
func (s *UserService) Refresh(ctx context.Context, presented string) (tokens.Pair, error) {
	if blank(presented) {
		return tokens.Pair{}, apperr.Unauthenticated("unauthorized request")
	}
	pair, v, err := s.Tokens.Refresh(ctx, presented)
	if err != nil {
		return tokens.Pair{}, tokenError(err, "refresh token is expired or used")
	}
	logging.FromContext(ctx).Debug("token_refreshed", "user_id", v.PrincipalID)
	return pair, nil
}

func (s *UserService) CurrentUser(ctx context.Context, p authz.Principal) (*models.User, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	return s.Users.PublicByID(ctx, p.ID)
}

func (s *UserService) UpdateAccount(ctx context.Context, p authz.Principal, fullName, email string) (*models.User, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	if blank(fullName, email) {
		return nil, apperr.Validation("all fields are required")
	}
	_, err := s.Users.UpdateByID(ctx, p.ID, map[string]any{
		"full_name": strings.TrimSpace(fullName),
		"email":     strings.ToLower(strings.TrimSpace(email)),
	})
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, apperr.Wrap(apperr.ErrConflict, "email is already in use", err)
		}
		return nil, err
	}
	return s.Users.PublicByID(ctx, p.ID)
}

func (s *UserService) ChangePassword(ctx context.Context, p authz.Principal, oldPassword, newPassword string) error {
	if err := requireAuth(p); err != nil {
		return err
	}
	if blank(oldPassword, newPassword) {
		return apperr.Validation("old and new password are required")
	}
	user, err := s.Users.FindByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if !hash.CheckPassword(user.PasswordHash, oldPassword) {
		return apperr.Validation("invalid old password")
	}
	pwHash, err := hash.HashPassword(newPassword)
	if err != nil {
		return apperr.Wrap(apperr.ErrInternal, "hash password", err)
	}
	if _, err := s.Users.UpdateByID(ctx, p.ID, map[string]any{"password_hash": pwHash}); err != nil {
		return err
	}
	return s.Tokens.Revoke(ctx, p.ID)
}

func (s *UserService) UpdateAvatar(ctx context.Context, p authz.Principal, staged assets.Staged) (*models.User, error) {
	return s.replaceImage(ctx, p, staged, FieldAvatar, "avatar", func(u *models.User) string { return u.Avatar })
}

func (s *UserService) UpdateCoverImage(ctx context.Context, p authz.Principal, staged assets.Staged) (*models.User, error) {
	return s.replaceImage(ctx, p, staged, FieldCoverImage, "cover_image", func(u *models.User) string { return u.CoverImage })
}

func (s *UserService) replaceImage(ctx context.Context, p authz.Principal, staged assets.Staged, field, column string, current func(*models.User) string) (*models.User, error) {
	if err := requireAuth(p); err != nil {
		assets.Discard(staged)
		return nil, err
	}
	user, err := s.Users.PublicByID(ctx, p.ID)
	if err != nil {
		assets.Discard(staged)
		return nil, err
	}
	staged.Field = field
	_, err = s.Assets.ReplaceAsset(ctx, staged, current(user), func(ctx context.Context, a assets.Asset) error {
		_, err := s.Users.UpdateByID(ctx, p.ID, map[string]any{column: a.URL})
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.Users.PublicByID(ctx, p.ID)
}

// ChannelProfile is the public profile of username as seen by viewer.
func (s *UserService) ChannelProfile(ctx context.Context, username string, viewer authz.Principal) (*views.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, apperr.Validation("username is missing")
	}
	return s.Views.ChannelProfile(ctx, username, viewer.ID)
}

// Principal resolves an identity for the auth middleware. A deleted user
// is reported as not found.
func (s *UserService) Principal(ctx context.Context, id uuid.UUID) (authz.Principal, error) {
	u, err := s.Users.PublicByID(ctx, id)
	if err != nil {
		return authz.Principal{}, err
	}
	return authz.Principal{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		Avatar:     u.Avatar,
		CoverImage: u.CoverImage,
	}, nil
}
