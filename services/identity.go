package services

import (
	"fmt"
	"log"
	"time"

	"club-games-system/game"
	"club-games-system/models"

	"gorm.io/gorm"
)

// IdentityService resolves the gateway's user id into the participant
// context the game core works with: display name plus club memberships
// from the locally synced mirror.
type IdentityService struct {
	DB *gorm.DB
}

func NewIdentityService(db *gorm.DB) *IdentityService {
	return &IdentityService{DB: db}
}

func (s *IdentityService) Resolve(externalUserID string) (game.Identity, error) {
	var user models.GameUser
	if err := s.DB.Where("external_user_id = ?", externalUserID).First(&user).Error; err != nil {
		return game.Identity{}, fmt.Errorf("unknown user %s: %w", externalUserID, err)
	}
	if user.IsBanned {
		return game.Identity{}, fmt.Errorf("user %s is banned from games", externalUserID)
	}

	var clubs []string
	if err := s.DB.Model(&models.ClubMembership{}).
		Where("external_user_id = ?", externalUserID).
		Pluck("club_id", &clubs).Error; err != nil {
		return game.Identity{}, fmt.Errorf("failed to load memberships for %s: %w", externalUserID, err)
	}

	name := user.DisplayName
	if name == "" {
		name = user.Username
	}

	now := time.Now()
	if err := s.DB.Model(&user).Update("last_seen", &now).Error; err != nil {
		log.Printf("[IDENTITY] failed to touch last_seen for %s: %v", externalUserID, err)
	}

	return game.Identity{UserID: externalUserID, Name: name, Clubs: clubs}, nil
}
