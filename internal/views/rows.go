package views

import (
	"time"

	"github.com/google/uuid"
)

type Owner struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	FullName string    `json:"fullName"`
	Avatar   string    `json:"avatar"`
}

type VideoCard struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Thumbnail   string    `json:"thumbnail"`
	VideoFile   string    `json:"videoFile"`
	Duration    float64   `json:"duration"`
	Views       int64     `json:"views"`
	IsPublished bool      `json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
	Score       int64     `json:"score"`
	Owner       Owner     `gorm:"embedded;embeddedPrefix:owner_" json:"owner"`
}

type VideoDetail struct {
	ID                    uuid.UUID `json:"id"`
	Title                 string    `json:"title"`
	Description           string    `json:"description"`
	Thumbnail             string    `json:"thumbnail"`
	VideoFile             string    `json:"videoFile"`
	Duration              float64   `json:"duration"`
	Views                 int64     `json:"views"`
	IsPublished           bool      `json:"isPublished"`
	CreatedAt             time.Time `json:"createdAt"`
	LikesCount            int64     `json:"likesCount"`
	IsLiked               bool      `json:"isLiked"`
	OwnerSubscribersCount int64     `json:"ownerSubscribersCount"`
	IsSubscribed          bool      `json:"isSubscribed"`
	Owner                 Owner     `gorm:"embedded;embeddedPrefix:owner_" json:"owner"`
}

type LikedVideo struct {
	VideoID        uuid.UUID `json:"videoId"`
	Title          string    `json:"title"`
	Thumbnail      string    `json:"thumbnail"`
	Duration       float64   `json:"duration"`
	Views          int64     `json:"views"`
	VideoCreatedAt time.Time `json:"videoCreatedAt"`
	LikedAt        time.Time `json:"likedAt"`
	Owner          Owner     `gorm:"embedded;embeddedPrefix:owner_" json:"owner"`
}

type ChannelProfile struct {
	ID                        uuid.UUID `json:"id"`
	Username                  string    `json:"username"`
	FullName                  string    `json:"fullName"`
	Email                     string    `json:"email"`
	Avatar                    string    `json:"avatar"`
	CoverImage                string    `json:"coverImage"`
	CreatedAt                 time.Time `json:"createdAt"`
	SubscribersCount          int64     `json:"subscribersCount"`
	ChannelsSubscribedToCount int64     `json:"channelsSubscribedToCount"`
	IsSubscribed              bool      `json:"isSubscribed"`
}

type ChannelSummary struct {
	ID               uuid.UUID `json:"id"`
	Username         string    `json:"username"`
	FullName         string    `json:"fullName"`
	Avatar           string    `json:"avatar"`
	SubscribersCount int64     `json:"subscribersCount"`
	SubscribedAt     time.Time `json:"subscribedAt"`
}

type ChannelStats struct {
	TotalVideos      int64 `json:"totalVideos"`
	TotalViews       int64 `json:"totalViews"`
	TotalLikes       int64 `json:"totalLikes"`
	TotalSubscribers int64 `json:"totalSubscribers"`
}

type ChannelVideo struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Thumbnail   string    `json:"thumbnail"`
	VideoFile   string    `json:"videoFile"`
	Duration    float64   `json:"duration"`
	Views       int64     `json:"views"`
	IsPublished bool      `json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
	LikesCount  int64     `json:"likesCount"`
}

type PlaylistSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	TotalVideos int64     `json:"totalVideos"`
}

type CommentView struct {
	ID         uuid.UUID `json:"id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	LikesCount int64     `json:"likesCount"`
	IsLiked    bool      `json:"isLiked"`
	Owner      Owner     `gorm:"embedded;embeddedPrefix:owner_" json:"owner"`
}

type TweetView struct {
	ID         uuid.UUID `json:"id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	LikesCount int64     `json:"likesCount"`
	IsLiked    bool      `json:"isLiked"`
	Owner      Owner     `gorm:"embedded;embeddedPrefix:owner_" json:"owner"`
}

// Page is one window of a larger result.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}
