package models

import "time"

// MediaField names the game field an uploaded image is attached to.
type MediaField string

const (
	MediaCover   MediaField = "cover"
	MediaGallery MediaField = "gallery"
)

// Media is an image attached to a game.
type Media struct {
	ID        int        `db:"id" json:"id"`
	GameID    int        `db:"game_id" json:"gameId"`
	Field     MediaField `db:"field" json:"field"`
	Filename  string     `db:"filename" json:"filename"`
	URL       string     `db:"url" json:"url"`
	Size      int        `db:"size" json:"size"`
	CreatedAt time.Time  `db:"created_at" json:"-"`
}

// MediaUpload is a downloaded image ready to be handed to a media backend.
type MediaUpload struct {
	Ref         string
	RefID       int
	Field       MediaField
	Filename    string
	ContentType string
	Data        []byte
}
