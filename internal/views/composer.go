// Package views builds the read models served by the API. Every view is
// computed from the current rows at read time and never written back.
package views

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/videotube/internal/models"
	"github.com/Skotchmaster/videotube/internal/query"
	"github.com/Skotchmaster/videotube/internal/repo"
	"github.com/Skotchmaster/videotube/internal/toggle"
)

type Composer struct {
	r *repo.GormRepo
}

func NewComposer(r *repo.GormRepo) *Composer { return &Composer{r: r} }

func ownerJoin(local string) query.Lookup {
	return query.Lookup{From: "users", As: "owner", ForeignField: "id", LocalField: local}
}

var ownerFields = []string{
	"owner.id as owner_id",
	"owner.username as owner_username",
	"owner.full_name as owner_full_name",
	"owner.avatar as owner_avatar",
}

func videoFields(alias string) []string {
	out := make([]string, 0, 9)
	for _, c := range []string{"id", "title", "description", "thumbnail", "video_file", "duration", "views", "is_published", "created_at"} {
		out = append(out, alias+"."+c)
	}
	return out
}

func fields(groups ...[]string) []query.Field {
	var all []string
	for _, g := range groups {
		all = append(all, g...)
	}
	return query.F(all...)
}

func likesOf(kind toggle.Kind, local, as string) query.CountOf {
	return query.CountOf{
		From: "likes", ForeignField: "target_id", LocalField: local,
		Where: []query.Cond{query.Eq("kind", string(kind))},
		As:    as,
	}
}

func likedBy(kind toggle.Kind, viewer uuid.UUID, local string) query.Exists {
	return query.Exists{
		From: "likes", ForeignField: "target_id", LocalField: local,
		Where: []query.Cond{query.Eq("kind", string(kind)), query.Eq("actor_id", viewer)},
		As:    "is_liked",
	}
}

// OwnerStats totals a channel's videos, views, likes received and subscribers.
func (c *Composer) OwnerStats(ctx context.Context, owner uuid.UUID) (ChannelStats, error) {
	type totals struct {
		TotalVideos int64
		TotalViews  int64
	}
	t, err := repo.AggregateOne[totals](ctx, c.r, query.From("videos").
		Match(query.Eq("videos.owner_id", owner)).
		Group(query.Count("total_videos"), query.Sum("videos.views", "total_views")), "channel")
	if err != nil {
		return ChannelStats{}, err
	}

	type perVideo struct {
		ID         uuid.UUID
		LikesCount int64
	}
	rows, err := repo.Aggregate[perVideo](ctx, c.r, query.From("videos").
		Match(query.Eq("videos.owner_id", owner)).
		CountOf(likesOf(toggle.VideoLike, "videos.id", "likes_count")).
		Project(query.F("videos.id")...))
	if err != nil {
		return ChannelStats{}, err
	}
	var likes int64
	for _, r := range rows {
		likes += r.LikesCount
	}

	subs, err := repo.Of[models.Subscription](c.r, "subscription").Count(ctx, repo.Filter{"channel_id": owner})
	if err != nil {
		return ChannelStats{}, err
	}

	return ChannelStats{
		TotalVideos:      t.TotalVideos,
		TotalViews:       t.TotalViews,
		TotalLikes:       likes,
		TotalSubscribers: subs,
	}, nil
}

// ChannelProfile counts the channel's edges in both directions and whether
// viewer is among its subscribers. viewer may be uuid.Nil.
func (c *Composer) ChannelProfile(ctx context.Context, username string, viewer uuid.UUID) (*ChannelProfile, error) {
	p := query.From("users").
		Match(query.Eq("users.username", username)).
		CountOf(query.CountOf{From: "subscriptions", ForeignField: "channel_id", LocalField: "users.id", As: "subscribers_count"}).
		CountOf(query.CountOf{From: "subscriptions", ForeignField: "subscriber_id", LocalField: "users.id", As: "channels_subscribed_to_count"}).
		Exists(query.Exists{
			From: "subscriptions", ForeignField: "channel_id", LocalField: "users.id",
			Where: []query.Cond{query.Eq("subscriber_id", viewer)},
			As:    "is_subscribed",
		}).
		Project(query.F(
			"users.id", "users.username", "users.full_name", "users.email",
			"users.avatar", "users.cover_image", "users.created_at",
		)...).
		Page(0, 1)
	return repo.AggregateOne[ChannelProfile](ctx, c.r, p, "channel")
}

// LikedVideos lists the videos actor liked, newest like first. Unpublished
// videos show only to their owner.
func (c *Composer) LikedVideos(ctx context.Context, actor uuid.UUID, skip, limit int) (Page[LikedVideo], error) {
	base := func() *query.Pipeline {
		return query.From("likes").
			Match(query.Eq("likes.actor_id", actor), query.Eq("likes.kind", string(toggle.VideoLike))).
			Lookup(query.Lookup{From: "videos", As: "video", ForeignField: "id", LocalField: "likes.target_id"}).
			MatchAny(query.Eq("video.is_published", true), query.Eq("video.owner_id", actor)).
			Lookup(ownerJoin("video.owner_id"))
	}
	p := base().
		Project(fields([]string{
			"video.id as video_id", "video.title as title", "video.thumbnail as thumbnail",
			"video.duration as duration", "video.views as views",
			"video.created_at as video_created_at", "likes.created_at as liked_at",
		}, ownerFields)...).
		Sort(query.Desc("likes.created_at")).
		Page(skip, limit)
	return collect[LikedVideo](ctx, c.r, base(), p)
}

// ChannelSubscribers lists who subscribes to channel, newest first.
func (c *Composer) ChannelSubscribers(ctx context.Context, channel uuid.UUID, skip, limit int) (Page[ChannelSummary], error) {
	return c.edgeList(ctx, "subscriptions.channel_id", channel, "subscriptions.subscriber_id", skip, limit)
}

// SubscribedChannels lists the channels subscriber follows, newest first.
func (c *Composer) SubscribedChannels(ctx context.Context, subscriber uuid.UUID, skip, limit int) (Page[ChannelSummary], error) {
	return c.edgeList(ctx, "subscriptions.subscriber_id", subscriber, "subscriptions.channel_id", skip, limit)
}

func (c *Composer) edgeList(ctx context.Context, matchField string, id uuid.UUID, joinField string, skip, limit int) (Page[ChannelSummary], error) {
	base := func() *query.Pipeline {
		return query.From("subscriptions").
			Match(query.Eq(matchField, id)).
			Lookup(query.Lookup{From: "users", As: "peer", ForeignField: "id", LocalField: joinField})
	}
	p := base().
		CountOf(query.CountOf{From: "subscriptions", ForeignField: "channel_id", LocalField: "peer.id", As: "subscribers_count"}).
		Project(query.F(
			"peer.id as id", "peer.username as username", "peer.full_name as full_name",
			"peer.avatar as avatar", "subscriptions.created_at as subscribed_at",
		)...).
		Sort(query.Desc("subscriptions.created_at")).
		Page(skip, limit)
	return collect[ChannelSummary](ctx, c.r, base(), p)
}

// ChannelVideos lists every video of owner, published or not, with like counts.
func (c *Composer) ChannelVideos(ctx context.Context, owner uuid.UUID, skip, limit int) (Page[ChannelVideo], error) {
	base := func() *query.Pipeline {
		return query.From("videos").Match(query.Eq("videos.owner_id", owner))
	}
	p := base().
		CountOf(likesOf(toggle.VideoLike, "videos.id", "likes_count")).
		Project(fields(videoFields("videos"))...).
		Sort(query.Desc("videos.created_at")).
		Page(skip, limit)
	return collect[ChannelVideo](ctx, c.r, base(), p)
}

// collect runs p for the window and countP for the total over all matches.
func collect[T any](ctx context.Context, r *repo.GormRepo, countP, p *query.Pipeline) (Page[T], error) {
	items, err := repo.Aggregate[T](ctx, r, p)
	if err != nil {
		return Page[T]{}, err
	}
	total, err := r.CountPipeline(ctx, countP)
	if err != nil {
		return Page[T]{}, err
	}
	return Page[T]{Items: items, Total: total}, nil
}

// SearchParams selects published videos. Query is matched term by term
// against title and description; SortBy is one of views, createdAt,
// duration or title and falls back to views. Ties go to the newest video.
type SearchParams struct {
	Query   string
	OwnerID uuid.UUID
	SortBy  string
	Asc     bool
	Offset  int
	Limit   int
}

var videoSortable = map[string]string{
	"views":     "videos.views",
	"createdAt": "videos.created_at",
	"duration":  "videos.duration",
	"title":     "videos.title",
}

// DefaultSortColumn orders results after relevance when no sort is asked for.
const DefaultSortColumn = "videos.views"

// SortColumn maps an API sort name to its column, reporting whether it is known.
func SortColumn(name string) (string, bool) {
	col, ok := videoSortable[name]
	return col, ok
}

func (c *Composer) SearchVideos(ctx context.Context, sp SearchParams) (Page[VideoCard], error) {
	base := func() *query.Pipeline {
		p := query.From("videos").Match(query.Eq("videos.is_published", true))
		if sp.OwnerID != uuid.Nil {
			p.Match(query.Eq("videos.owner_id", sp.OwnerID))
		}
		return p.Search(sp.Query,
			query.Weighted{Field: "videos.title", Weight: 2},
			query.Weighted{Field: "videos.description", Weight: 1},
		).Lookup(ownerJoin("videos.owner_id"))
	}

	var keys []query.SortKey
	if len(query.Terms(sp.Query)) > 0 {
		keys = append(keys, query.Desc("score"))
	}
	col, ok := SortColumn(sp.SortBy)
	if !ok {
		col = DefaultSortColumn
	}
	if sp.Asc {
		keys = append(keys, query.Asc(col))
	} else {
		keys = append(keys, query.Desc(col))
	}
	if col != "videos.created_at" {
		keys = append(keys, query.Desc("videos.created_at"))
	}

	p := base().
		Project(fields(videoFields("videos"), ownerFields)...).
		Sort(keys...).
		Page(sp.Offset, sp.Limit)
	return collect[VideoCard](ctx, c.r, base(), p)
}

// VideoCardsByIDs loads published cards for ids and returns them in ids order,
// skipping any that no longer qualify.
func (c *Composer) VideoCardsByIDs(ctx context.Context, ids []uuid.UUID) ([]VideoCard, error) {
	if len(ids) == 0 {
		return []VideoCard{}, nil
	}
	rows, err := repo.Aggregate[VideoCard](ctx, c.r, query.From("videos").
		Match(query.In("videos.id", ids), query.Eq("videos.is_published", true)).
		Lookup(ownerJoin("videos.owner_id")).
		Project(fields(videoFields("videos"), ownerFields)...))
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]VideoCard, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}
	out := make([]VideoCard, 0, len(rows))
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// VideoDetail is one video with its like and owner subscription figures as
// seen by viewer (uuid.Nil for anonymous). Publication is not checked here.
func (c *Composer) VideoDetail(ctx context.Context, id, viewer uuid.UUID) (*VideoDetail, error) {
	p := query.From("videos").
		Match(query.Eq("videos.id", id)).
		Lookup(ownerJoin("videos.owner_id")).
		CountOf(likesOf(toggle.VideoLike, "videos.id", "likes_count")).
		Exists(likedBy(toggle.VideoLike, viewer, "videos.id")).
		CountOf(query.CountOf{From: "subscriptions", ForeignField: "channel_id", LocalField: "owner.id", As: "owner_subscribers_count"}).
		Exists(query.Exists{
			From: "subscriptions", ForeignField: "channel_id", LocalField: "owner.id",
			Where: []query.Cond{query.Eq("subscriber_id", viewer)},
			As:    "is_subscribed",
		}).
		Project(fields(videoFields("videos"), ownerFields)...)
	return repo.AggregateOne[VideoDetail](ctx, c.r, p, "video")
}

// PlaylistVideos lists the published videos of a playlist in insertion order.
func (c *Composer) PlaylistVideos(ctx context.Context, playlist uuid.UUID) ([]VideoCard, error) {
	p := query.From("playlist_videos").
		KeyedBy("playlist_videos.video_id").
		Match(query.Eq("playlist_videos.playlist_id", playlist)).
		Lookup(query.Lookup{From: "videos", As: "video", ForeignField: "id", LocalField: "playlist_videos.video_id"}).
		Match(query.Eq("video.is_published", true)).
		Lookup(ownerJoin("video.owner_id")).
		Project(fields(videoFields("video"), ownerFields)...).
		Sort(query.Asc("playlist_videos.position"))
	return repo.Aggregate[VideoCard](ctx, c.r, p)
}

func (c *Composer) UserPlaylists(ctx context.Context, owner uuid.UUID) ([]PlaylistSummary, error) {
	p := query.From("playlists").
		Match(query.Eq("playlists.owner_id", owner)).
		CountOf(query.CountOf{From: "playlist_videos", ForeignField: "playlist_id", LocalField: "playlists.id", As: "total_videos"}).
		Project(query.F("playlists.id", "playlists.name", "playlists.description", "playlists.created_at", "playlists.updated_at")...).
		Sort(query.Desc("playlists.updated_at"))
	return repo.Aggregate[PlaylistSummary](ctx, c.r, p)
}

func (c *Composer) VideoComments(ctx context.Context, video, viewer uuid.UUID, skip, limit int) (Page[CommentView], error) {
	base := func() *query.Pipeline {
		return query.From("comments").
			Match(query.Eq("comments.video_id", video)).
			Lookup(ownerJoin("comments.owner_id"))
	}
	p := base().
		CountOf(likesOf(toggle.CommentLike, "comments.id", "likes_count")).
		Exists(likedBy(toggle.CommentLike, viewer, "comments.id")).
		Project(fields([]string{"comments.id", "comments.content", "comments.created_at", "comments.updated_at"}, ownerFields)...).
		Sort(query.Desc("comments.created_at")).
		Page(skip, limit)
	return collect[CommentView](ctx, c.r, base(), p)
}

func (c *Composer) UserTweets(ctx context.Context, owner, viewer uuid.UUID, skip, limit int) (Page[TweetView], error) {
	base := func() *query.Pipeline {
		return query.From("tweets").
			Match(query.Eq("tweets.owner_id", owner)).
			Lookup(ownerJoin("tweets.owner_id"))
	}
	p := base().
		CountOf(likesOf(toggle.TweetLike, "tweets.id", "likes_count")).
		Exists(likedBy(toggle.TweetLike, viewer, "tweets.id")).
		Project(fields([]string{"tweets.id", "tweets.content", "tweets.created_at", "tweets.updated_at"}, ownerFields)...).
		Sort(query.Desc("tweets.created_at")).
		Page(skip, limit)
	return collect[TweetView](ctx, c.r, base(), p)
}
