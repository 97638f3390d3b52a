// workers/user_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"club-games-system/models"
	"club-games-system/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MirroredUserFromProfile matches the JSON response from the sync service.
type MirroredUserFromProfile struct {
	ExternalID        string    `json:"external_id"`
	Username          string    `json:"username"`
	DisplayName       string    `json:"display_name"`
	ProfilePictureURL *string   `json:"profile_picture_url,omitempty"`
	Clubs             []string  `json:"clubs"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// GetUserChangesResponse is the top-level structure of the sync service response.
type GetUserChangesResponse struct {
	Users []MirroredUserFromProfile `json:"users"`
}

// UserSyncWorker mirrors users and their club memberships from the
// profile service into game_users / club_memberships. Room visibility and
// hosting checks run against this local copy only.
type UserSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string // e.g. "http://localhost:8500"
	endpointPath string // e.g. "/api/v1/public/profiles"
	serviceToken string
	httpClient   *http.Client
}

func NewUserSyncWorker(db *gorm.DB, syncServiceBaseURL, endpointPath, serviceToken string) *UserSyncWorker {
	return &UserSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      syncServiceBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient:   utils.HTTPClient,
	}
}

func (w *UserSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting User Sync Worker (sync-service → game_users)…")
	go w.run(ctx)
}

func (w *UserSyncWorker) run(ctx context.Context) {
	// Initial backfill from the beginning of time.
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.getLastSyncTime()); err != nil {
				log.Printf("❌ Sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ User Sync Worker stopped")
			return
		}
	}
}

// getLastSyncTime finds the most recent UpdatedAt in the local mirror.
func (w *UserSyncWorker) getLastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM game_users WHERE deleted_at IS NULL").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

// syncBatch fetches user changes since the given time and upserts the
// local mirror, replacing each user's membership rows wholesale.
func (w *UserSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	sinceStr := since.UTC().Format(time.RFC3339)

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid base sync service URL '%s': %w", w.baseURL, err)
	}
	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", sinceStr)
	endpointURL.RawQuery = q.Encode()
	finalURL := endpointURL.String()

	req, err := http.NewRequestWithContext(ctx, "GET", finalURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request to %s: %w", finalURL, err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request to sync service failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("sync service non-200 response: %d — %s", resp.StatusCode, string(body))
	}

	var response GetUserChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode sync service response: %w", err)
	}

	if len(response.Users) == 0 {
		log.Printf("[SYNC] ✅ No user changes received since %s", sinceStr)
		return nil
	}

	var upsertCount, errorCount int
	for _, remote := range response.Users {
		localUser := models.GameUser{
			ExternalUserID:    remote.ExternalID,
			Username:          remote.Username,
			DisplayName:       remote.DisplayName,
			ProfilePictureURL: remote.ProfilePictureURL,
			CreatedAt:         remote.CreatedAt,
			UpdatedAt:         remote.UpdatedAt,
		}

		if err := w.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "external_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"username", "display_name", "profile_picture_url", "created_at", "updated_at",
			}),
		}).Create(&localUser).Error; err != nil {
			errorCount++
			log.Printf("[SYNC] ⚠️ Failed to upsert game_user (external_id=%q, username=%q): %v",
				remote.ExternalID, remote.Username, err)
			continue
		}

		if err := w.replaceMemberships(remote.ExternalID, remote.Clubs); err != nil {
			errorCount++
			log.Printf("[SYNC] ⚠️ Failed to sync memberships for %q: %v", remote.ExternalID, err)
			continue
		}
		upsertCount++
	}

	log.Printf("[SYNC] ✅ Synced %d user(s) (%d upserted, %d errors)", len(response.Users), upsertCount, errorCount)
	return nil
}

func (w *UserSyncWorker) replaceMemberships(externalUserID string, clubs []string) error {
	return w.db.Transaction(func(tx *gorm.DB) error {
		del := tx.Where("external_user_id = ?", externalUserID)
		if len(clubs) > 0 {
			del = del.Where("club_id NOT IN ?", clubs)
		}
		if err := del.Delete(&models.ClubMembership{}).Error; err != nil {
			return err
		}

		for _, clubID := range clubs {
			m := models.ClubMembership{ExternalUserID: externalUserID, ClubID: clubID}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "external_user_id"}, {Name: "club_id"}},
				DoNothing: true,
			}).Create(&m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
