package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// RefreshSlots persists the single valid refresh token of a principal as a hash.
type RefreshSlots interface {
	SetRefreshHash(ctx context.Context, principalID uuid.UUID, hash string) error
	// SwapRefreshHash replaces expected with next and reports whether a row matched.
	SwapRefreshHash(ctx context.Context, principalID uuid.UUID, expected, next string) (bool, error)
	ClearRefreshHash(ctx context.Context, principalID uuid.UUID) error
}

type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type Service struct {
	cfg   Config
	slots RefreshSlots
	Now   func() time.Time
}

type Pair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

type Verified struct {
	PrincipalID uuid.UUID
	ExpiresAt   time.Time
	JTI         string
}

func NewService(cfg Config, slots RefreshSlots) *Service {
	return &Service{cfg: cfg, slots: slots, Now: time.Now}
}

func (s *Service) secret(kind Kind) []byte {
	if kind == KindRefresh {
		return s.cfg.RefreshSecret
	}
	return s.cfg.AccessSecret
}

func (s *Service) ttl(kind Kind) time.Duration {
	if kind == KindRefresh {
		return s.cfg.RefreshTTL
	}
	return s.cfg.AccessTTL
}

func (s *Service) issue(kind Kind, principalID uuid.UUID) (string, time.Time, error) {
	now := s.Now()
	exp := now.Add(s.ttl(kind))
	claims := Claims{
		Type: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID.String(),
			ID:        NewJTI(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret(kind))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, exp, nil
}

func (s *Service) IssueAccessToken(principalID uuid.UUID) (string, time.Time, error) {
	return s.issue(KindAccess, principalID)
}

func (s *Service) IssueRefreshToken(principalID uuid.UUID) (string, time.Time, error) {
	return s.issue(KindRefresh, principalID)
}

// Verify checks signature, algorithm, token kind and expiry.
func (s *Service) Verify(token string, kind Kind) (Verified, error) {
	if token == "" {
		return Verified{}, ErrTokenInvalid
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret(kind), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Verified{}, ErrTokenExpired
		}
		return Verified{}, ErrTokenInvalid
	}
	if claims.Type != kind {
		return Verified{}, ErrTokenInvalid
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Verified{}, ErrTokenInvalid
	}
	return Verified{PrincipalID: id, ExpiresAt: claims.ExpiresAt.Time, JTI: claims.ID}, nil
}

func (s *Service) pair(principalID uuid.UUID) (Pair, error) {
	access, accessExp, err := s.IssueAccessToken(principalID)
	if err != nil {
		return Pair{}, err
	}
	refresh, refreshExp, err := s.IssueRefreshToken(principalID)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh, AccessExp: accessExp, RefreshExp: refreshExp}, nil
}

// Rotate issues a fresh pair and makes its refresh token the only valid one.
func (s *Service) Rotate(ctx context.Context, principalID uuid.UUID) (Pair, error) {
	p, err := s.pair(principalID)
	if err != nil {
		return Pair{}, err
	}
	if err := s.slots.SetRefreshHash(ctx, principalID, Sha256Hex(p.RefreshToken)); err != nil {
		return Pair{}, fmt.Errorf("store refresh token: %w", err)
	}
	return p, nil
}

// Refresh exchanges a presented refresh token for a new pair. The stored hash is
// swapped only if it still equals the presented one, so a replayed or
// superseded token loses the race and is reported invalid.
func (s *Service) Refresh(ctx context.Context, presented string) (Pair, Verified, error) {
	v, err := s.Verify(presented, KindRefresh)
	if err != nil {
		return Pair{}, Verified{}, err
	}
	p, err := s.pair(v.PrincipalID)
	if err != nil {
		return Pair{}, Verified{}, err
	}
	ok, err := s.slots.SwapRefreshHash(ctx, v.PrincipalID, Sha256Hex(presented), Sha256Hex(p.RefreshToken))
	if err != nil {
		return Pair{}, Verified{}, fmt.Errorf("swap refresh token: %w", err)
	}
	if !ok {
		return Pair{}, Verified{}, ErrTokenInvalid
	}
	return p, v, nil
}

func (s *Service) Revoke(ctx context.Context, principalID uuid.UUID) error {
	return s.slots.ClearRefreshHash(ctx, principalID)
}
