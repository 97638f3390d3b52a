package models

import (
	"time"

	"gorm.io/gorm"
)

// QuizQuestion is one quiz prompt with its correct answer. Decoy options
// are drawn at play time from other answers in the same category, so a
// question row never hardcodes its wrong choices.
type QuizQuestion struct {
	ID        string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Category  string    `gorm:"index;not null" json:"category"`
	Prompt    string    `gorm:"not null" json:"prompt"`
	Answer    string    `gorm:"not null" json:"answer"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// DrawingArchive records where a finished drawing game's stroke log was
// stored, so club pages can link back to the artwork.
type DrawingArchive struct {
	ID        string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	RoomID    string    `gorm:"index;not null" json:"room_id"`
	RoomName  string    `json:"room_name"`
	URL       string    `gorm:"not null" json:"url"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
