package toggle_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/videotube/internal/apperr"
	"github.com/Skotchmaster/videotube/internal/models"
	"github.com/Skotchmaster/videotube/internal/repo"
	"github.com/Skotchmaster/videotube/internal/testdb"
	"github.com/Skotchmaster/videotube/internal/toggle"
)

func seed(t *testing.T, r *repo.GormRepo) (models.User, models.User, models.Video) {
	t.Helper()
	ctx := context.Background()

	alice := models.User{Username: "alice", Email: "alice@x.com", FullName: "Alice", Avatar: "a.png", PasswordHash: "h"}
	bob := models.User{Username: "bob", Email: "bob@x.com", FullName: "Bob", Avatar: "b.png", PasswordHash: "h"}
	require.NoError(t, repo.Of[models.User](r, "user").Create(ctx, &alice))
	require.NoError(t, repo.Of[models.User](r, "user").Create(ctx, &bob))

	v := models.Video{OwnerID: bob.ID, VideoFile: "v.mp4", Thumbnail: "t.png", Title: "t", Description: "d", IsPublished: true}
	require.NoError(t, repo.Of[models.Video](r, "video").Create(ctx, &v))
	return alice, bob, v
}

func TestEngine_ToggleAlternates(t *testing.T) {
	t.Parallel()

	r := repo.New(testdb.New(t), 0)
	alice, _, video := seed(t, r)
	engine := toggle.New(repo.NewEdges(r), repo.NewEdges(r))
	ctx := context.Background()

	for n := 1; n <= 5; n++ {
		state, err := engine.Toggle(ctx, alice.ID, video.ID, toggle.VideoLike)
		require.NoError(t, err)

		count, err := repo.Of[models.Like](r, "like").Count(ctx, repo.Filter{"actor_id": alice.ID, "target_id": video.ID})
		require.NoError(t, err)

		if n%2 == 1 {
			assert.Equal(t, toggle.Added, state)
			assert.EqualValues(t, 1, count)
		} else {
			assert.Equal(t, toggle.Removed, state)
			assert.EqualValues(t, 0, count)
		}
	}
}

func TestEngine_Subscription(t *testing.T) {
	t.Parallel()

	r := repo.New(testdb.New(t), 0)
	alice, bob, _ := seed(t, r)
	engine := toggle.New(repo.NewEdges(r), repo.NewEdges(r))
	ctx := context.Background()

	state, err := engine.Toggle(ctx, alice.ID, bob.ID, toggle.Subscription)
	require.NoError(t, err)
	assert.Equal(t, toggle.Added, state)

	n, err := repo.Of[models.Subscription](r, "subscription").Count(ctx, repo.Filter{"channel_id": bob.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = engine.Toggle(ctx, alice.ID, alice.ID, toggle.Subscription)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestEngine_MissingReferences(t *testing.T) {
	t.Parallel()

	r := repo.New(testdb.New(t), 0)
	alice, _, video := seed(t, r)
	engine := toggle.New(repo.NewEdges(r), repo.NewEdges(r))
	ctx := context.Background()

	tests := []struct {
		name   string
		actor  uuid.UUID
		target uuid.UUID
		kind   toggle.Kind
		want   error
	}{
		{name: "unknown video", actor: alice.ID, target: uuid.New(), kind: toggle.VideoLike, want: apperr.ErrNotFound},
		{name: "unknown comment", actor: alice.ID, target: uuid.New(), kind: toggle.CommentLike, want: apperr.ErrNotFound},
		{name: "unknown tweet", actor: alice.ID, target: uuid.New(), kind: toggle.TweetLike, want: apperr.ErrNotFound},
		{name: "unknown channel", actor: alice.ID, target: uuid.New(), kind: toggle.Subscription, want: apperr.ErrNotFound},
		{name: "unknown actor", actor: uuid.New(), target: video.ID, kind: toggle.VideoLike, want: apperr.ErrNotFound},
		{name: "nil target", actor: alice.ID, target: uuid.Nil, kind: toggle.VideoLike, want: apperr.ErrValidation},
		{name: "bad kind", actor: alice.ID, target: video.ID, kind: toggle.Kind("dislike"), want: apperr.ErrValidation},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Toggle(ctx, tt.actor, tt.target, tt.kind)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

// racingStore simulates a concurrent toggler inserting between lookup and insert.
type racingStore struct {
	mu      sync.Mutex
	present bool
	removes int
}

func (s *racingStore) Has(context.Context, toggle.Edge) (bool, error) { return false, nil }

func (s *racingStore) Insert(context.Context, toggle.Edge) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.present = true
	return false, nil
}

func (s *racingStore) Remove(context.Context, toggle.Edge) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removes++
	was := s.present
	s.present = false
	return was, nil
}

type allExist struct{}

func (allExist) ActorExists(context.Context, uuid.UUID) (bool, error)                { return true, nil }
func (allExist) TargetExists(context.Context, toggle.Kind, uuid.UUID) (bool, error) { return true, nil }

func TestEngine_DuplicateInsertBecomesRemoval(t *testing.T) {
	t.Parallel()

	store := &racingStore{}
	engine := toggle.New(store, allExist{})

	state, err := engine.Toggle(context.Background(), uuid.New(), uuid.New(), toggle.TweetLike)
	require.NoError(t, err)
	assert.Equal(t, toggle.Removed, state)
	assert.Equal(t, 1, store.removes)
	assert.False(t, store.present)
}
