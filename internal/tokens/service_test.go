package tokens

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSlots struct {
	mu     sync.Mutex
	hashes map[uuid.UUID]string
	writes int
}

func newMemSlots() *memSlots { return &memSlots{hashes: map[uuid.UUID]string{}} }

func (m *memSlots) SetRefreshHash(_ context.Context, id uuid.UUID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.hashes[id] = hash
	return nil
}

func (m *memSlots) SwapRefreshHash(_ context.Context, id uuid.UUID, expected, next string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.hashes[id] != expected || expected == "" {
		return false, nil
	}
	m.hashes[id] = next
	return true, nil
}

func (m *memSlots) ClearRefreshHash(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	delete(m.hashes, id)
	return nil
}

func newTestService(slots RefreshSlots) *Service {
	return NewService(Config{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}, slots)
}

func TestService_IssueAndVerify(t *testing.T) {
	t.Parallel()

	svc := newTestService(newMemSlots())
	id := uuid.New()

	access, exp, err := svc.IssueAccessToken(id)
	require.NoError(t, err)

	v, err := svc.Verify(access, KindAccess)
	require.NoError(t, err)
	assert.Equal(t, id, v.PrincipalID)
	assert.WithinDuration(t, exp, v.ExpiresAt, time.Second)
	assert.NotEmpty(t, v.JTI)
}

func TestService_Verify_WrongKindOrSecret(t *testing.T) {
	t.Parallel()

	svc := newTestService(newMemSlots())
	id := uuid.New()

	access, _, err := svc.IssueAccessToken(id)
	require.NoError(t, err)
	refresh, _, err := svc.IssueRefreshToken(id)
	require.NoError(t, err)

	_, err = svc.Verify(access, KindRefresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = svc.Verify(refresh, KindAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestService_Verify_Tampered(t *testing.T) {
	t.Parallel()

	svc := newTestService(newMemSlots())
	access, _, err := svc.IssueAccessToken(uuid.New())
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.jwt"},
		{name: "flipped signature", token: access[:len(access)-2] + "xx"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Verify(tt.token, KindAccess)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}

func TestService_Verify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	svc := newTestService(newMemSlots())
	claims := Claims{
		Type: KindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-access-secret"))
	require.NoError(t, err)

	_, err = svc.Verify(signed, KindAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestService_Verify_Expired(t *testing.T) {
	t.Parallel()

	svc := newTestService(newMemSlots())
	issuedAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return issuedAt }

	access, _, err := svc.IssueAccessToken(uuid.New())
	require.NoError(t, err)

	svc.Now = func() time.Time { return issuedAt.Add(16 * time.Minute) }
	_, err = svc.Verify(access, KindAccess)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestService_Rotate_SingleWrite(t *testing.T) {
	t.Parallel()

	slots := newMemSlots()
	svc := newTestService(slots)
	id := uuid.New()

	p, err := svc.Rotate(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, slots.writes)
	assert.Equal(t, Sha256Hex(p.RefreshToken), slots.hashes[id])

	v, err := svc.Verify(p.AccessToken, KindAccess)
	require.NoError(t, err)
	assert.Equal(t, id, v.PrincipalID)
}

func TestService_Refresh_InvalidatesPrevious(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(newMemSlots())
	id := uuid.New()

	first, err := svc.Rotate(ctx, id)
	require.NoError(t, err)

	second, v, err := svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, id, v.PrincipalID)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, _, err = svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, _, err = svc.Refresh(ctx, second.RefreshToken)
	assert.NoError(t, err)
}

func TestService_Refresh_AfterLoginRotation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(newMemSlots())
	id := uuid.New()

	older, err := svc.Rotate(ctx, id)
	require.NoError(t, err)
	_, err = svc.Rotate(ctx, id)
	require.NoError(t, err)

	_, _, err = svc.Refresh(ctx, older.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestService_Refresh_ConcurrentOnlyOneWins(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(newMemSlots())
	p, err := svc.Rotate(ctx, uuid.New())
	require.NoError(t, err)

	const n = 8
	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.Refresh(ctx, p.RefreshToken)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.True(t, errors.Is(err, ErrTokenInvalid))
	}
	assert.Equal(t, 1, wins)
}

func TestService_Revoke(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(newMemSlots())
	id := uuid.New()

	p, err := svc.Rotate(ctx, id)
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, id))

	_, _, err = svc.Refresh(ctx, p.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
