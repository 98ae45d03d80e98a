package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/videotube/internal/models"
	"github.com/Skotchmaster/videotube/internal/toggle"
)

type Videos struct {
	Collection[models.Video]
	r *GormRepo
}

func NewVideos(r *GormRepo) *Videos {
	return &Videos{Collection: Of[models.Video](r, "video"), r: r}
}

func (v *Videos) IncrementViews(ctx context.Context, id uuid.UUID) error {
	db, cancel := v.r.conn(ctx)
	defer cancel()

	res := db.Model(&models.Video{}).Where("id = ?", id).UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return translate(res.Error, "video")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "video")
	}
	return nil
}

// DeleteCascade removes a video with its comments, every like on the video or
// its comments, and its playlist memberships.
func (v *Videos) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return v.r.Transaction(ctx, func(tx *GormRepo) error {
		db := tx.DB
		comments := db.Model(&models.Comment{}).Select("id").Where("video_id = ?", id)
		if err := db.Where("kind = ? AND target_id IN (?)", string(toggle.CommentLike), comments).
			Delete(&models.Like{}).Error; err != nil {
			return translate(err, "like")
		}
		if err := db.Where("kind = ? AND target_id = ?", string(toggle.VideoLike), id).
			Delete(&models.Like{}).Error; err != nil {
			return translate(err, "like")
		}
		if err := db.Where("video_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return translate(err, "comment")
		}
		if err := db.Where("video_id = ?", id).Delete(&models.PlaylistVideo{}).Error; err != nil {
			return translate(err, "playlist video")
		}
		return Of[models.Video](tx, "video").DeleteByID(ctx, id)
	})
}
