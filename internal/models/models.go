package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"          json:"id"`
	Username         string    `gorm:"uniqueIndex;not null"          json:"username"`
	Email            string    `gorm:"uniqueIndex;not null"          json:"email"`
	FullName         string    `gorm:"not null"                      json:"fullName"`
	Avatar           string    `gorm:"not null"                      json:"avatar"`
	CoverImage       string    `                                     json:"coverImage"`
	PasswordHash     string    `gorm:"not null"                      json:"-"`
	RefreshTokenHash string    `gorm:"not null;default:''"           json:"-"`
	CreatedAt        time.Time `                                     json:"createdAt"`
	UpdatedAt        time.Time `                                     json:"updatedAt"`
}

type Video struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"          json:"id"`
	OwnerID     uuid.UUID `gorm:"type:uuid;index;not null"      json:"owner"`
	VideoFile   string    `gorm:"not null"                      json:"videoFile"`
	Thumbnail   string    `gorm:"not null"                      json:"thumbnail"`
	Title       string    `gorm:"not null"                      json:"title"`
	Description string    `gorm:"not null"                      json:"description"`
	Duration    float64   `gorm:"not null;default:0"            json:"duration"`
	Views       int64     `gorm:"not null;default:0"            json:"views"`
	IsPublished bool      `gorm:"not null;index"                json:"isPublished"`
	CreatedAt   time.Time `                                     json:"createdAt"`
	UpdatedAt   time.Time `                                     json:"updatedAt"`
}

type Comment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"          json:"id"`
	VideoID   uuid.UUID `gorm:"type:uuid;index;not null"      json:"video"`
	OwnerID   uuid.UUID `gorm:"type:uuid;index;not null"      json:"owner"`
	Content   string    `gorm:"not null"                      json:"content"`
	CreatedAt time.Time `                                     json:"createdAt"`
	UpdatedAt time.Time `                                     json:"updatedAt"`
}

type Tweet struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"          json:"id"`
	OwnerID   uuid.UUID `gorm:"type:uuid;index;not null"      json:"owner"`
	Content   string    `gorm:"not null"                      json:"content"`
	CreatedAt time.Time `                                     json:"createdAt"`
	UpdatedAt time.Time `                                     json:"updatedAt"`
}

type Playlist struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"          json:"id"`
	OwnerID     uuid.UUID `gorm:"type:uuid;index;not null"      json:"owner"`
	Name        string    `gorm:"not null"                      json:"name"`
	Description string    `gorm:"not null"                      json:"description"`
	CreatedAt   time.Time `                                     json:"createdAt"`
	UpdatedAt   time.Time `                                     json:"updatedAt"`
}

// PlaylistVideo is one membership row; the composite key keeps a video unique per playlist.
type PlaylistVideo struct {
	PlaylistID uuid.UUID `gorm:"type:uuid;primaryKey"          json:"playlist"`
	VideoID    uuid.UUID `gorm:"type:uuid;primaryKey;index"    json:"video"`
	Position   int64     `gorm:"not null"                      json:"position"`
	CreatedAt  time.Time `                                     json:"createdAt"`
}

type Like struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                          json:"id"`
	ActorID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_like_edge"  json:"likedBy"`
	TargetID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_like_edge;index" json:"target"`
	Kind      string    `gorm:"not null;uniqueIndex:idx_like_edge"            json:"kind"`
	CreatedAt time.Time `                                                     json:"createdAt"`
}

type Subscription struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"                                  json:"id"`
	SubscriberID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_subscription_edge"  json:"subscriber"`
	ChannelID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_subscription_edge;index" json:"channel"`
	CreatedAt    time.Time `                                                             json:"createdAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error         { u.ID = ensureID(u.ID); return nil }
func (v *Video) BeforeCreate(tx *gorm.DB) error        { v.ID = ensureID(v.ID); return nil }
func (c *Comment) BeforeCreate(tx *gorm.DB) error      { c.ID = ensureID(c.ID); return nil }
func (t *Tweet) BeforeCreate(tx *gorm.DB) error        { t.ID = ensureID(t.ID); return nil }
func (p *Playlist) BeforeCreate(tx *gorm.DB) error     { p.ID = ensureID(p.ID); return nil }
func (l *Like) BeforeCreate(tx *gorm.DB) error         { l.ID = ensureID(l.ID); return nil }
func (s *Subscription) BeforeCreate(tx *gorm.DB) error { s.ID = ensureID(s.ID); return nil }

func ensureID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}

func (v Video) Owner() uuid.UUID    { return v.OwnerID }
func (c Comment) Owner() uuid.UUID  { return c.OwnerID }
func (t Tweet) Owner() uuid.UUID    { return t.OwnerID }
func (p Playlist) Owner() uuid.UUID { return p.OwnerID }

// All lists every model for migrations.
func All() []any {
	return []any{
		&User{}, &Video{}, &Comment{}, &Tweet{}, &Playlist{}, &PlaylistVideo{}, &Like{}, &Subscription{},
	}
}
