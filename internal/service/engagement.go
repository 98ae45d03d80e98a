package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/videotube/internal/apperr"
	"github.com/Skotchmaster/videotube/internal/authz"
	"github.com/Skotchmaster/videotube/internal/events"
	"github.com/Skotchmaster/videotube/internal/logging"
	"github.com/Skotchmaster/videotube/internal/repo"
	"github.com/Skotchmaster/videotube/internal/toggle"
	"github.com/Skotchmaster/videotube/internal/views"
)

// EngagementService toggles likes and subscriptions and lists their results.
type EngagementService struct {
	Toggle *toggle.Engine
	Users  *repo.Users
	Views  *views.Composer
	Events events.Publisher
}

func (s *EngagementService) ToggleVideoLike(ctx context.Context, p authz.Principal, videoID uuid.UUID) (toggle.State, error) {
	return s.toggle(ctx, p, videoID, toggle.VideoLike)
}

func (s *EngagementService) ToggleCommentLike(ctx context.Context, p authz.Principal, commentID uuid.UUID) (toggle.State, error) {
	return s.toggle(ctx, p, commentID, toggle.CommentLike)
}

func (s *EngagementService) ToggleTweetLike(ctx context.Context, p authz.Principal, tweetID uuid.UUID) (toggle.State, error) {
	return s.toggle(ctx, p, tweetID, toggle.TweetLike)
}

func (s *EngagementService) ToggleSubscription(ctx context.Context, p authz.Principal, channelID uuid.UUID) (toggle.State, error) {
	return s.toggle(ctx, p, channelID, toggle.Subscription)
}

func (s *EngagementService) toggle(ctx context.Context, p authz.Principal, target uuid.UUID, kind toggle.Kind) (toggle.State, error) {
	if err := requireAuth(p); err != nil {
		return "", err
	}
	state, err := s.Toggle.Toggle(ctx, p.ID, target, kind)
	if err != nil {
		logging.FromContext(ctx).Warn("toggle_error", "kind", kind, "target", target, "error", err)
		return "", err
	}
	events.Emit(ctx, s.Events, events.TopicEngagement, target.String(), string(kind)+"_toggled", map[string]any{
		"actor_id":  p.ID,
		"target_id": target,
		"state":     state,
	})
	return state, nil
}

func (s *EngagementService) LikedVideos(ctx context.Context, p authz.Principal, page PageRequest) (views.Page[views.LikedVideo], error) {
	if err := requireAuth(p); err != nil {
		return views.Page[views.LikedVideo]{}, err
	}
	skip, limit := page.window()
	return s.Views.LikedVideos(ctx, p.ID, skip, limit)
}

func (s *EngagementService) ChannelSubscribers(ctx context.Context, channelID uuid.UUID, page PageRequest) (views.Page[views.ChannelSummary], error) {
	if err := s.userExists(ctx, channelID, "channel not found"); err != nil {
		return views.Page[views.ChannelSummary]{}, err
	}
	skip, limit := page.window()
	return s.Views.ChannelSubscribers(ctx, channelID, skip, limit)
}

func (s *EngagementService) SubscribedChannels(ctx context.Context, subscriberID uuid.UUID, page PageRequest) (views.Page[views.ChannelSummary], error) {
	if err := s.userExists(ctx, subscriberID, "subscriber not found"); err != nil {
		return views.Page[views.ChannelSummary]{}, err
	}
	skip, limit := page.window()
	return s.Views.SubscribedChannels(ctx, subscriberID, skip, limit)
}

func (s *EngagementService) userExists(ctx context.Context, id uuid.UUID, msg string) error {
	ok, err := s.Users.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound(msg)
	}
	return nil
}

// DashboardService serves the signed-in channel's own figures.
type DashboardService struct {
	Views *views.Composer
}

func (s *DashboardService) Stats(ctx context.Context, p authz.Principal) (views.ChannelStats, error) {
	if err := requireAuth(p); err != nil {
		return views.ChannelStats{}, err
	}
	return s.Views.OwnerStats(ctx, p.ID)
}

func (s *DashboardService) Videos(ctx context.Context, p authz.Principal, page PageRequest) (views.Page[views.ChannelVideo], error) {
	if err := requireAuth(p); err != nil {
		return views.Page[views.ChannelVideo]{}, err
	}
	skip, limit := page.window()
	return s.Views.ChannelVideos(ctx, p.ID, skip, limit)
}
