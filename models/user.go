package models

import (
	"time"

	"gorm.io/gorm"
)

// GameUser is a local snapshot of user data needed for game rooms.
// Owned and managed solely by the club games service.
// Populated via sync worker from the profile service.
type GameUser struct {
	ID                string     `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID    string     `gorm:"uniqueIndex;not null" json:"external_user_id"` // The profile service's UUID
	Username          string     `gorm:"index;not null" json:"username"`
	DisplayName       string     `json:"display_name"`
	ProfilePictureURL *string    `json:"profile_picture_url,omitempty"`
	CreatedAt         time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	LastSeen          *time.Time `json:"last_seen,omitempty"`
	IsBanned          bool       `json:"is_banned" gorm:"default:false"` // local game ban

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ClubMembership mirrors which clubs a user belongs to, synced alongside
// the user record. Scoped room visibility and hosting checks read this.
type ClubMembership struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ExternalUserID string    `gorm:"index:idx_membership_user_club,unique;not null" json:"external_user_id"`
	ClubID         string    `gorm:"index:idx_membership_user_club,unique;index;not null" json:"club_id"`
	Role           string    `gorm:"default:member" json:"role"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
