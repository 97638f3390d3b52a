package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"club-games-system/game"
)

// ClubNotifyClient tells the club service that a member is hosting a
// room, so the club feed can surface it. Implements game.NotificationSink;
// every call is fire-and-forget and failures only log.
type ClubNotifyClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewClubNotifyClient(baseURL, token string) *ClubNotifyClient {
	return &ClubNotifyClient{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *ClubNotifyClient) NotifyRoomHosted(clubID, hostName, roomID string, gameType game.GameType) {
	url := fmt.Sprintf("%s/clubs/%s/notifications", c.BaseURL, clubID)

	reqBody := map[string]interface{}{
		"kind":      "room_hosted",
		"room_id":   roomID,
		"game_type": gameType,
		"message":   fmt.Sprintf("%s is hosting a %s room", hostName, gameType),
	}
	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		log.Printf("[NOTIFY] failed to build request for club %s: %v", clubID, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		log.Printf("[NOTIFY] club %s notification failed: %v", clubID, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("[NOTIFY] club service returned %d for club %s: %s", resp.StatusCode, clubID, string(body))
		return
	}
	log.Printf("✅ [NOTIFY] club %s notified: room %s hosted by %s", clubID, roomID, hostName)
}
