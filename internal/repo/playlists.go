package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/videotube/internal/models"
)

type Playlists struct {
	Collection[models.Playlist]
	r *GormRepo
}

func NewPlaylists(r *GormRepo) *Playlists {
	return &Playlists{Collection: Of[models.Playlist](r, "playlist"), r: r}
}

// AddVideo appends videoID at the end of the playlist. It reports false when
// the video was already a member.
func (p *Playlists) AddVideo(ctx context.Context, playlistID, videoID uuid.UUID) (bool, error) {
	added := false
	err := p.r.Transaction(ctx, func(tx *GormRepo) error {
		db := tx.DB
		var last int64
		if err := db.Model(&models.PlaylistVideo{}).
			Where("playlist_id = ?", playlistID).
			Select("COALESCE(MAX(position), 0)").
			Scan(&last).Error; err != nil {
			return translate(err, "playlist")
		}
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.PlaylistVideo{
			PlaylistID: playlistID,
			VideoID:    videoID,
			Position:   last + 1,
		})
		if res.Error != nil {
			return translate(res.Error, "playlist video")
		}
		added = res.RowsAffected == 1
		return touch(db, playlistID)
	})
	return added, err
}

// RemoveVideo reports false when videoID was not in the playlist.
func (p *Playlists) RemoveVideo(ctx context.Context, playlistID, videoID uuid.UUID) (bool, error) {
	removed := false
	err := p.r.Transaction(ctx, func(tx *GormRepo) error {
		res := tx.DB.Where("playlist_id = ? AND video_id = ?", playlistID, videoID).Delete(&models.PlaylistVideo{})
		if res.Error != nil {
			return translate(res.Error, "playlist video")
		}
		removed = res.RowsAffected > 0
		if !removed {
			return nil
		}
		return touch(tx.DB, playlistID)
	})
	return removed, err
}

func (p *Playlists) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return p.r.Transaction(ctx, func(tx *GormRepo) error {
		if err := tx.DB.Where("playlist_id = ?", id).Delete(&models.PlaylistVideo{}).Error; err != nil {
			return translate(err, "playlist video")
		}
		return Of[models.Playlist](tx, "playlist").DeleteByID(ctx, id)
	})
}

func touch(db *gorm.DB, playlistID uuid.UUID) error {
	err := db.Model(&models.Playlist{}).Where("id = ?", playlistID).Update("updated_at", db.NowFunc()).Error
	return translate(err, "playlist")
}
