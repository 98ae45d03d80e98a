package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/videotube/internal/apperr"
	"github.com/Skotchmaster/videotube/internal/authz"
	"github.com/Skotchmaster/videotube/internal/models"
	"github.com/Skotchmaster/videotube/internal/repo"
	"github.com/Skotchmaster/videotube/internal/toggle"
	"github.com/Skotchmaster/videotube/internal/views"
)

// PostService manages tweets and video comments.
type PostService struct {
	R      *repo.GormRepo
	Users  *repo.Users
	Videos *repo.Videos
	Views  *views.Composer
}

func (s *PostService) tweets() repo.Collection[models.Tweet] { return repo.Of[models.Tweet](s.R, "tweet") }

func (s *PostService) comments() repo.Collection[models.Comment] {
	return repo.Of[models.Comment](s.R, "comment")
}

func (s *PostService) CreateTweet(ctx context.Context, p authz.Principal, content string) (*models.Tweet, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	if blank(content) {
		return nil, apperr.Validation("content is required")
	}
	t := models.Tweet{OwnerID: p.ID, Content: strings.TrimSpace(content)}
	if err := s.tweets().Create(ctx, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *PostService) UserTweets(ctx context.Context, userID uuid.UUID, viewer authz.Principal, page PageRequest) (views.Page[views.TweetView], error) {
	ok, err := s.Users.Exists(ctx, userID)
	if err != nil {
		return views.Page[views.TweetView]{}, err
	}
	if !ok {
		return views.Page[views.TweetView]{}, apperr.NotFound("user not found")
	}
	skip, limit := page.window()
	return s.Views.UserTweets(ctx, userID, viewer.ID, skip, limit)
}

func (s *PostService) UpdateTweet(ctx context.Context, p authz.Principal, id uuid.UUID, content string) (*models.Tweet, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	if blank(content) {
		return nil, apperr.Validation("content is required")
	}
	t, err := s.tweets().FindByID(ctx, id)
	if _, err := authz.Authorize(p, t, err, "tweet"); err != nil {
		return nil, err
	}
	return s.tweets().UpdateByID(ctx, id, map[string]any{"content": strings.TrimSpace(content)})
}

func (s *PostService) DeleteTweet(ctx context.Context, p authz.Principal, id uuid.UUID) error {
	if err := requireAuth(p); err != nil {
		return err
	}
	t, err := s.tweets().FindByID(ctx, id)
	if _, err := authz.Authorize(p, t, err, "tweet"); err != nil {
		return err
	}
	return repo.DeleteWithLikes[models.Tweet](ctx, s.R, toggle.TweetLike, id, "tweet")
}

func (s *PostService) VideoComments(ctx context.Context, videoID uuid.UUID, viewer authz.Principal, page PageRequest) (views.Page[views.CommentView], error) {
	if err := s.videoExists(ctx, videoID); err != nil {
		return views.Page[views.CommentView]{}, err
	}
	skip, limit := page.window()
	return s.Views.VideoComments(ctx, videoID, viewer.ID, skip, limit)
}

func (s *PostService) AddComment(ctx context.Context, p authz.Principal, videoID uuid.UUID, content string) (*models.Comment, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	if blank(content) {
		return nil, apperr.Validation("content is required")
	}
	if err := s.videoExists(ctx, videoID); err != nil {
		return nil, err
	}
	c := models.Comment{VideoID: videoID, OwnerID: p.ID, Content: strings.TrimSpace(content)}
	if err := s.comments().Create(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostService) UpdateComment(ctx context.Context, p authz.Principal, id uuid.UUID, content string) (*models.Comment, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	if blank(content) {
		return nil, apperr.Validation("content is required")
	}
	c, err := s.comments().FindByID(ctx, id)
	if _, err := authz.Authorize(p, c, err, "comment"); err != nil {
		return nil, err
	}
	return s.comments().UpdateByID(ctx, id, map[string]any{"content": strings.TrimSpace(content)})
}

func (s *PostService) DeleteComment(ctx context.Context, p authz.Principal, id uuid.UUID) error {
	if err := requireAuth(p); err != nil {
		return err
	}
	c, err := s.comments().FindByID(ctx, id)
	if _, err := authz.Authorize(p, c, err, "comment"); err != nil {
		return err
	}
	return repo.DeleteWithLikes[models.Comment](ctx, s.R, toggle.CommentLike, id, "comment")
}

func (s *PostService) videoExists(ctx context.Context, id uuid.UUID) error {
	ok, err := s.Videos.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("video not found")
	}
	return nil
}
