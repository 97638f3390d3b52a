package services

import (
	"fmt"
	"log"

	"club-games-system/game"
	"club-games-system/models"
	"club-games-system/utils"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// DrawingArchiveService stores the per-turn canvases of finished drawing
// games in R2 and records the location locally. Implements
// game.DrawingArchiver; calls are fire-and-forget.
type DrawingArchiveService struct {
	DB *gorm.DB
}

func NewDrawingArchiveService(db *gorm.DB) *DrawingArchiveService {
	return &DrawingArchiveService{DB: db}
}

func (s *DrawingArchiveService) SaveDrawing(roomID, roomName string, turns []game.TurnDrawing) {
	key := fmt.Sprintf("drawings/%s-%s.json", slug.Make(roomName), roomID)

	url, err := utils.UploadJSONToR2(key, map[string]interface{}{
		"room_id":   roomID,
		"room_name": roomName,
		"turns":     turns,
	})
	if err != nil {
		log.Printf("[ARCHIVE] failed to upload drawing for room %s: %v", roomID, err)
		return
	}

	rec := models.DrawingArchive{RoomID: roomID, RoomName: roomName, URL: url}
	if err := s.DB.Create(&rec).Error; err != nil {
		log.Printf("[ARCHIVE] failed to record drawing for room %s: %v", roomID, err)
		return
	}
	log.Printf("🖼️ Archived drawing for room %s: %s", roomID, url)
}
