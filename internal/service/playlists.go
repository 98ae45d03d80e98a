package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/videotube/internal/apperr"
	"github.com/Skotchmaster/videotube/internal/authz"
	"github.com/Skotchmaster/videotube/internal/models"
	"github.com/Skotchmaster/videotube/internal/repo"
	"github.com/Skotchmaster/videotube/internal/views"
)

type PlaylistService struct {
	Playlists *repo.Playlists
	Videos    *repo.Videos
	Users     *repo.Users
	Views     *views.Composer
}

type PlaylistDetail struct {
	models.Playlist
	Videos []views.VideoCard `json:"videos"`
}

func (s *PlaylistService) Create(ctx context.Context, p authz.Principal, name, description string) (*models.Playlist, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	if blank(name) {
		return nil, apperr.Validation("name is required")
	}
	pl := models.Playlist{OwnerID: p.ID, Name: strings.TrimSpace(name), Description: strings.TrimSpace(description)}
	if err := s.Playlists.Create(ctx, &pl); err != nil {
		return nil, err
	}
	return &pl, nil
}

func (s *PlaylistService) Get(ctx context.Context, id uuid.UUID) (*PlaylistDetail, error) {
	pl, err := s.Playlists.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cards, err := s.Views.PlaylistVideos(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PlaylistDetail{Playlist: *pl, Videos: cards}, nil
}

func (s *PlaylistService) UserPlaylists(ctx context.Context, userID uuid.UUID) ([]views.PlaylistSummary, error) {
	ok, err := s.Users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return s.Views.UserPlaylists(ctx, userID)
}

func (s *PlaylistService) Update(ctx context.Context, p authz.Principal, id uuid.UUID, name, description string) (*models.Playlist, error) {
	if _, err := s.owned(ctx, p, id); err != nil {
		return nil, err
	}
	patch := map[string]any{}
	if n := strings.TrimSpace(name); n != "" {
		patch["name"] = n
	}
	if d := strings.TrimSpace(description); d != "" {
		patch["description"] = d
	}
	if len(patch) == 0 {
		return nil, apperr.Validation("name or description is required")
	}
	return s.Playlists.UpdateByID(ctx, id, patch)
}

func (s *PlaylistService) Delete(ctx context.Context, p authz.Principal, id uuid.UUID) error {
	if _, err := s.owned(ctx, p, id); err != nil {
		return err
	}
	return s.Playlists.DeleteCascade(ctx, id)
}

// AddVideo is idempotent: adding a member again leaves the playlist unchanged.
func (s *PlaylistService) AddVideo(ctx context.Context, p authz.Principal, playlistID, videoID uuid.UUID) (*PlaylistDetail, error) {
	if _, err := s.owned(ctx, p, playlistID); err != nil {
		return nil, err
	}
	ok, err := s.Videos.Exists(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("video not found")
	}
	if _, err := s.Playlists.AddVideo(ctx, playlistID, videoID); err != nil {
		return nil, err
	}
	return s.Get(ctx, playlistID)
}

func (s *PlaylistService) RemoveVideo(ctx context.Context, p authz.Principal, playlistID, videoID uuid.UUID) (*PlaylistDetail, error) {
	if _, err := s.owned(ctx, p, playlistID); err != nil {
		return nil, err
	}
	removed, err := s.Playlists.RemoveVideo(ctx, playlistID, videoID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, apperr.NotFound("video is not in this playlist")
	}
	return s.Get(ctx, playlistID)
}

func (s *PlaylistService) owned(ctx context.Context, p authz.Principal, id uuid.UUID) (*models.Playlist, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	pl, err := s.Playlists.FindByID(ctx, id)
	return authz.Authorize(p, pl, err, "playlist")
}
