package views_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/videotube/internal/apperr"
	"github.com/Skotchmaster/videotube/internal/models"
	"github.com/Skotchmaster/videotube/internal/repo"
	"github.com/Skotchmaster/videotube/internal/testdb"
	"github.com/Skotchmaster/videotube/internal/toggle"
	"github.com/Skotchmaster/videotube/internal/views"
)

type fixture struct {
	r          *repo.GormRepo
	c          *views.Composer
	alice, bob models.User
	goVideo    models.Video
	cooking    models.Video
	draft      models.Video
	comment    models.Comment
	tweet      models.Tweet
	playlist   models.Playlist
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	r := repo.New(testdb.New(t), 0)
	f := &fixture{r: r, c: views.NewComposer(r)}

	f.alice = models.User{Username: "alice", Email: "alice@x.com", FullName: "Alice", Avatar: "a.png", PasswordHash: "h"}
	f.bob = models.User{Username: "bob", Email: "bob@x.com", FullName: "Bob", Avatar: "b.png", PasswordHash: "h"}
	require.NoError(t, repo.Of[models.User](r, "user").Create(ctx, &f.alice))
	require.NoError(t, repo.Of[models.User](r, "user").Create(ctx, &f.bob))

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	f.goVideo = models.Video{OwnerID: f.bob.ID, VideoFile: "1.mp4", Thumbnail: "1.png", Title: "Go tutorial", Description: "learn go", Views: 10, Duration: 60, IsPublished: true, CreatedAt: base}
	f.cooking = models.Video{OwnerID: f.bob.ID, VideoFile: "2.mp4", Thumbnail: "2.png", Title: "Cooking", Description: "go to the kitchen", Views: 5, Duration: 30, IsPublished: true, CreatedAt: base.Add(time.Hour)}
	f.draft = models.Video{OwnerID: f.bob.ID, VideoFile: "3.mp4", Thumbnail: "3.png", Title: "Go secrets", Description: "draft", Views: 1, Duration: 10, IsPublished: false, CreatedAt: base.Add(2 * time.Hour)}
	for _, v := range []*models.Video{&f.goVideo, &f.cooking, &f.draft} {
		require.NoError(t, repo.Of[models.Video](r, "video").Create(ctx, v))
	}

	f.comment = models.Comment{VideoID: f.goVideo.ID, OwnerID: f.alice.ID, Content: "nice"}
	require.NoError(t, repo.Of[models.Comment](r, "comment").Create(ctx, &f.comment))
	f.tweet = models.Tweet{OwnerID: f.bob.ID, Content: "new video out"}
	require.NoError(t, repo.Of[models.Tweet](r, "tweet").Create(ctx, &f.tweet))

	edges := repo.NewEdges(r)
	for _, e := range []toggle.Edge{
		{Actor: f.alice.ID, Target: f.goVideo.ID, Kind: toggle.VideoLike},
		{Actor: f.alice.ID, Target: f.bob.ID, Kind: toggle.Subscription},
		{Actor: f.bob.ID, Target: f.comment.ID, Kind: toggle.CommentLike},
		{Actor: f.alice.ID, Target: f.tweet.ID, Kind: toggle.TweetLike},
	} {
		ok, err := edges.Insert(ctx, e)
		require.NoError(t, err)
		require.True(t, ok)
	}

	f.playlist = models.Playlist{OwnerID: f.alice.ID, Name: "watch later", Description: "mixed"}
	require.NoError(t, repo.Of[models.Playlist](r, "playlist").Create(ctx, &f.playlist))
	for i, v := range []models.Video{f.cooking, f.goVideo, f.draft} {
		pv := models.PlaylistVideo{PlaylistID: f.playlist.ID, VideoID: v.ID, Position: int64(i + 1)}
		require.NoError(t, repo.Of[models.PlaylistVideo](r, "playlist video").Create(ctx, &pv))
	}
	return f
}

func cardIDs(cards []views.VideoCard) []uuid.UUID {
	out := make([]uuid.UUID, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

func TestSearchVideos_RanksByRelevance(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	page, err := f.c.SearchVideos(context.Background(), views.SearchParams{Query: "Go", Limit: 10})
	require.NoError(t, err)

	assert.EqualValues(t, 2, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, []uuid.UUID{f.goVideo.ID, f.cooking.ID}, cardIDs(page.Items))
	assert.EqualValues(t, 3, page.Items[0].Score)
	assert.EqualValues(t, 1, page.Items[1].Score)
	assert.Equal(t, "bob", page.Items[0].Owner.Username)
}

func TestSearchVideos_SortAndWindow(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	page, err := f.c.SearchVideos(ctx, views.SearchParams{SortBy: "views", Asc: true, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.cooking.ID, f.goVideo.ID}, cardIDs(page.Items))

	page, err = f.c.SearchVideos(ctx, views.SearchParams{Offset: 1, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, []uuid.UUID{f.cooking.ID}, cardIDs(page.Items))

	page, err = f.c.SearchVideos(ctx, views.SearchParams{Query: "100%", Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	page, err = f.c.SearchVideos(ctx, views.SearchParams{OwnerID: f.alice.ID, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestSearchVideos_EqualScoresFallBackToViews(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	popular := models.Video{
		OwnerID: f.alice.ID, VideoFile: "4.mp4", Thumbnail: "4.png", Title: "Go tips", Description: "short",
		Views: 50, Duration: 20, IsPublished: true, CreatedAt: f.goVideo.CreatedAt.Add(-time.Hour),
	}
	require.NoError(t, repo.Of[models.Video](f.r, "video").Create(ctx, &popular))

	page, err := f.c.SearchVideos(ctx, views.SearchParams{Query: "tips tutorial", Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, page.Items[0].Score, page.Items[1].Score)
	assert.Equal(t, []uuid.UUID{popular.ID, f.goVideo.ID}, cardIDs(page.Items))

	page, err = f.c.SearchVideos(ctx, views.SearchParams{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{popular.ID, f.goVideo.ID, f.cooking.ID}, cardIDs(page.Items))
}

func TestVideoCardsByIDs_KeepsOrder(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	cards, err := f.c.VideoCardsByIDs(context.Background(), []uuid.UUID{f.cooking.ID, f.draft.ID, uuid.New(), f.goVideo.ID})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.cooking.ID, f.goVideo.ID}, cardIDs(cards))
}

func TestVideoDetail(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	d, err := f.c.VideoDetail(ctx, f.goVideo.ID, f.alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, d.LikesCount)
	assert.True(t, d.IsLiked)
	assert.EqualValues(t, 1, d.OwnerSubscribersCount)
	assert.True(t, d.IsSubscribed)
	assert.Equal(t, f.bob.ID, d.Owner.ID)

	anon, err := f.c.VideoDetail(ctx, f.goVideo.ID, uuid.Nil)
	require.NoError(t, err)
	assert.False(t, anon.IsLiked)
	assert.False(t, anon.IsSubscribed)

	_, err = f.c.VideoDetail(ctx, uuid.New(), uuid.Nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestChannelProfile(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	bob, err := f.c.ChannelProfile(ctx, "bob", f.alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, bob.SubscribersCount)
	assert.EqualValues(t, 0, bob.ChannelsSubscribedToCount)
	assert.True(t, bob.IsSubscribed)

	alice, err := f.c.ChannelProfile(ctx, "alice", uuid.Nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, alice.ChannelsSubscribedToCount)
	assert.False(t, alice.IsSubscribed)

	_, err = f.c.ChannelProfile(ctx, "nobody", uuid.Nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestOwnerStats(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	stats, err := f.c.OwnerStats(context.Background(), f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, views.ChannelStats{TotalVideos: 3, TotalViews: 16, TotalLikes: 1, TotalSubscribers: 1}, stats)

	empty, err := f.c.OwnerStats(context.Background(), f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, views.ChannelStats{}, empty)
}

func TestLikedVideosAndChannelLists(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	liked, err := f.c.LikedVideos(ctx, f.alice.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, liked.Items, 1)
	assert.Equal(t, f.goVideo.ID, liked.Items[0].VideoID)
	assert.Equal(t, "bob", liked.Items[0].Owner.Username)

	subs, err := f.c.ChannelSubscribers(ctx, f.bob.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, subs.Items, 1)
	assert.Equal(t, f.alice.ID, subs.Items[0].ID)

	chans, err := f.c.SubscribedChannels(ctx, f.alice.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, chans.Items, 1)
	assert.Equal(t, "bob", chans.Items[0].Username)
	assert.EqualValues(t, 1, chans.Items[0].SubscribersCount)

	vids, err := f.c.ChannelVideos(ctx, f.bob.ID, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, vids.Total)
	require.Len(t, vids.Items, 3)
	assert.Equal(t, f.draft.ID, vids.Items[0].ID)
	assert.EqualValues(t, 1, vids.Items[2].LikesCount)
}

func TestPlaylists(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	cards, err := f.c.PlaylistVideos(ctx, f.playlist.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.cooking.ID, f.goVideo.ID}, cardIDs(cards))

	lists, err := f.c.UserPlaylists(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.EqualValues(t, 3, lists[0].TotalVideos)
	assert.Equal(t, "watch later", lists[0].Name)
}

func TestCommentsAndTweets(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	comments, err := f.c.VideoComments(ctx, f.goVideo.ID, f.bob.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, comments.Items, 1)
	assert.EqualValues(t, 1, comments.Items[0].LikesCount)
	assert.True(t, comments.Items[0].IsLiked)
	assert.Equal(t, "alice", comments.Items[0].Owner.Username)

	tweets, err := f.c.UserTweets(ctx, f.bob.ID, f.bob.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, tweets.Items, 1)
	assert.EqualValues(t, 1, tweets.Items[0].LikesCount)
	assert.False(t, tweets.Items[0].IsLiked)
}

func TestLikedVideos_HidesOthersDrafts(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	edges := repo.NewEdges(f.r)

	for _, actor := range []uuid.UUID{f.alice.ID, f.bob.ID} {
		_, err := edges.Insert(ctx, toggle.Edge{Actor: actor, Target: f.draft.ID, Kind: toggle.VideoLike})
		require.NoError(t, err)
	}

	liked, err := f.c.LikedVideos(ctx, f.alice.ID, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, liked.Total)
	require.Len(t, liked.Items, 1)
	assert.Equal(t, f.goVideo.ID, liked.Items[0].VideoID)

	own, err := f.c.LikedVideos(ctx, f.bob.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, own.Items, 1)
	assert.Equal(t, f.draft.ID, own.Items[0].VideoID)
}
