package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/videotube/internal/apperr"
	"github.com/Skotchmaster/videotube/internal/assets"
	"github.com/Skotchmaster/videotube/internal/authz"
	"github.com/Skotchmaster/videotube/internal/events"
	"github.com/Skotchmaster/videotube/internal/logging"
	"github.com/Skotchmaster/videotube/internal/models"
	"github.com/Skotchmaster/videotube/internal/repo"
	"github.com/Skotchmaster/videotube/internal/search"
	"github.com/Skotchmaster/videotube/internal/views"
)

const (
	FieldVideoFile = "videoFile"
	FieldThumbnail = "thumbnail"
)

// VideoIndex is the optional search index. A nil index sends every search to the store.
type VideoIndex interface {
	Put(ctx context.Context, doc search.VideoDoc) error
	Delete(ctx context.Context, id uuid.UUID) error
	SearchIDs(ctx context.Context, q search.Query) (int64, []uuid.UUID, error)
}

type VideoService struct {
	Videos *repo.Videos
	Views  *views.Composer
	Assets *assets.Orchestrator
	Index  VideoIndex
	Events events.Publisher
}

type SearchInput struct {
	PageRequest
	Query    string
	SortBy   string
	SortType string
	UserID   uuid.UUID
}

var indexSortable = map[string]bool{"": true, "views": true, "createdAt": true, "duration": true}

// Search lists published videos. Text queries go to the index when one is
// configured and fall back to the store if it fails.
func (s *VideoService) Search(ctx context.Context, in SearchInput) (views.Page[views.VideoCard], error) {
	if in.SortBy != "" {
		if _, ok := views.SortColumn(in.SortBy); !ok {
			return views.Page[views.VideoCard]{}, apperr.Validation("unsupported sortBy " + in.SortBy)
		}
	}
	sortType := strings.ToLower(in.SortType)
	if sortType != "" && sortType != "asc" && sortType != "desc" {
		return views.Page[views.VideoCard]{}, apperr.Validation("sortType must be asc or desc")
	}
	skip, limit := in.window()

	if s.Index != nil && strings.TrimSpace(in.Query) != "" && indexSortable[in.SortBy] {
		total, ids, err := s.Index.SearchIDs(ctx, search.Query{
			Text:    in.Query,
			OwnerID: in.UserID,
			SortBy:  in.SortBy,
			Asc:     sortType == "asc",
			From:    skip,
			Size:    limit,
		})
		if err == nil {
			cards, err := s.Views.VideoCardsByIDs(ctx, ids)
			if err != nil {
				return views.Page[views.VideoCard]{}, err
			}
			return views.Page[views.VideoCard]{Items: cards, Total: total}, nil
		}
		logging.FromContext(ctx).Warn("search_index_fallback", "error", err)
	}

	return s.Views.SearchVideos(ctx, views.SearchParams{
		Query:   in.Query,
		OwnerID: in.UserID,
		SortBy:  in.SortBy,
		Asc:     sortType == "asc",
		Offset:  skip,
		Limit:   limit,
	})
}

type PublishInput struct {
	Title       string
	Description string
	VideoFile   assets.Staged
	Thumbnail   assets.Staged
}

// Publish uploads the video file and thumbnail, then creates the published
// video. Nothing is created unless both uploads succeed.
func (s *VideoService) Publish(ctx context.Context, p authz.Principal, in PublishInput) (*models.Video, error) {
	staged := []assets.Staged{
		{Field: FieldVideoFile, Path: in.VideoFile.Path},
		{Field: FieldThumbnail, Path: in.Thumbnail.Path},
	}
	if err := requireAuth(p); err != nil {
		assets.Discard(staged...)
		return nil, err
	}
	if blank(in.Title, in.Description) {
		assets.Discard(staged...)
		return nil, apperr.Validation("title and description are required")
	}

	var video models.Video
	_, err := s.Assets.CreateWithAssets(ctx, staged, func(ctx context.Context, up assets.Uploaded) error {
		video = models.Video{
			OwnerID:     p.ID,
			VideoFile:   up[FieldVideoFile].URL,
			Thumbnail:   up[FieldThumbnail].URL,
			Title:       strings.TrimSpace(in.Title),
			Description: strings.TrimSpace(in.Description),
			Duration:    up[FieldVideoFile].Duration,
			IsPublished: true,
		}
		return s.Videos.Create(ctx, &video)
	})
	if err != nil {
		return nil, err
	}

	s.index(ctx, &video)
	events.Emit(ctx, s.Events, events.TopicVideos, video.ID.String(), "video_published", map[string]any{
		"video_id": video.ID,
		"owner_id": video.OwnerID,
	})
	return &video, nil
}

// Get returns a video with its engagement figures and counts the view.
// Unpublished videos exist only for their owner.
func (s *VideoService) Get(ctx context.Context, viewer authz.Principal, id uuid.UUID) (*views.VideoDetail, error) {
	d, err := s.Views.VideoDetail(ctx, id, viewer.ID)
	if err != nil {
		return nil, err
	}
	if !d.IsPublished && d.Owner.ID != viewer.ID {
		return nil, apperr.NotFound("video not found")
	}
	if err := s.Videos.IncrementViews(ctx, id); err != nil {
		return nil, err
	}
	d.Views++
	return d, nil
}

type UpdateVideoInput struct {
	Title       string
	Description string
	Thumbnail   assets.Staged
}

// Update changes title, description and optionally the thumbnail of an owned video.
func (s *VideoService) Update(ctx context.Context, p authz.Principal, id uuid.UUID, in UpdateVideoInput) (*models.Video, error) {
	video, err := s.owned(ctx, p, id)
	if err != nil {
		assets.Discard(in.Thumbnail)
		return nil, err
	}

	patch := map[string]any{}
	if t := strings.TrimSpace(in.Title); t != "" {
		patch["title"] = t
	}
	if d := strings.TrimSpace(in.Description); d != "" {
		patch["description"] = d
	}
	if len(patch) == 0 && in.Thumbnail.Path == "" {
		return nil, apperr.Validation("nothing to update")
	}

	var updated *models.Video
	if in.Thumbnail.Path != "" {
		staged := assets.Staged{Field: FieldThumbnail, Path: in.Thumbnail.Path}
		_, err = s.Assets.ReplaceAsset(ctx, staged, video.Thumbnail, func(ctx context.Context, a assets.Asset) error {
			patch["thumbnail"] = a.URL
			v, err := s.Videos.UpdateByID(ctx, id, patch)
			updated = v
			return err
		})
	} else {
		updated, err = s.Videos.UpdateByID(ctx, id, patch)
	}
	if err != nil {
		return nil, err
	}

	s.index(ctx, updated)
	events.Emit(ctx, s.Events, events.TopicVideos, id.String(), "video_updated", map[string]any{
		"video_id": id,
		"owner_id": updated.OwnerID,
	})
	return updated, nil
}

// Delete removes the stored assets first; the video is deleted only if all
// of them are gone.
func (s *VideoService) Delete(ctx context.Context, p authz.Principal, id uuid.UUID) error {
	video, err := s.owned(ctx, p, id)
	if err != nil {
		return err
	}
	err = s.Assets.DeleteWithAssets(ctx, []string{video.VideoFile, video.Thumbnail}, func(ctx context.Context) error {
		return s.Videos.DeleteCascade(ctx, id)
	})
	if err != nil {
		return err
	}

	if s.Index != nil {
		if err := s.Index.Delete(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_index_failed", "video_id", id, "error", err)
		}
	}
	events.Emit(ctx, s.Events, events.TopicVideos, id.String(), "video_deleted", map[string]any{
		"video_id": id,
		"owner_id": video.OwnerID,
	})
	return nil
}

func (s *VideoService) TogglePublish(ctx context.Context, p authz.Principal, id uuid.UUID) (*models.Video, error) {
	video, err := s.owned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.Videos.UpdateByID(ctx, id, map[string]any{"is_published": !video.IsPublished})
	if err != nil {
		return nil, err
	}
	s.index(ctx, updated)
	events.Emit(ctx, s.Events, events.TopicVideos, id.String(), "video_publish_toggled", map[string]any{
		"video_id":     id,
		"is_published": updated.IsPublished,
	})
	return updated, nil
}

func (s *VideoService) owned(ctx context.Context, p authz.Principal, id uuid.UUID) (*models.Video, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	v, err := s.Videos.FindByID(ctx, id)
	return authz.Authorize(p, v, err, "video")
}

func (s *VideoService) index(ctx context.Context, v *models.Video) {
	if s.Index == nil || v == nil {
		return
	}
	err := s.Index.Put(ctx, search.VideoDoc{
		ID:          v.ID.String(),
		OwnerID:     v.OwnerID.String(),
		Title:       v.Title,
		Description: v.Description,
		Views:       v.Views,
		Duration:    v.Duration,
		IsPublished: v.IsPublished,
		CreatedAt:   v.CreatedAt,
	})
	if err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "video_id", v.ID, "error", err)
	}
}
