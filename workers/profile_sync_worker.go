package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gbonee/hustle-vibes-africa-sub000/logger"
	"github.com/gbonee/hustle-vibes-africa-sub000/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RemoteProfile matches one item of the profile service's change feed.
type RemoteProfile struct {
	ExternalID        string    `json:"external_id"`
	Username          string    `json:"username"`
	FirstName         *string   `json:"first_name,omitempty"`
	LastName          *string   `json:"last_name,omitempty"`
	ProfilePictureURL *string   `json:"profile_picture_url,omitempty"`
	PreferredLanguage *string   `json:"preferred_language,omitempty"`
	AccountStatus     string    `json:"account_status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type ProfileChangesResponse struct {
	Profiles []RemoteProfile `json:"profiles"`
}

// DisplayName prefers the real name and falls back to the username.
func (p RemoteProfile) DisplayName() string {
	name := ""
	if p.FirstName != nil {
		name = *p.FirstName
	}
	if p.LastName != nil && *p.LastName != "" {
		if name != "" {
			name += " "
		}
		name += *p.LastName
	}
	if name == "" {
		return p.Username
	}
	return name
}

// ProfileSyncWorker mirrors display data used by the leaderboard.
type ProfileSyncWorker struct {
	db           *gorm.DB
	log          *logger.Logger
	interval     time.Duration
	baseURL      string // e.g., "http://localhost:8500"
	endpointPath string // e.g., "/api/v1/public/profiles"
	serviceToken string
	httpClient   *http.Client
}

func NewProfileSyncWorker(db *gorm.DB, baseURL, endpointPath, serviceToken string, log *logger.Logger) *ProfileSyncWorker {
	return &ProfileSyncWorker{
		db:           db,
		log:          log.With("worker", "ProfileSync"),
		interval:     1 * time.Minute,
		baseURL:      baseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *ProfileSyncWorker) Start(ctx context.Context) {
	w.log.Info("[SYNC] starting profile sync worker", "interval", w.interval.String())
	go w.run(ctx)
}

func (w *ProfileSyncWorker) run(ctx context.Context) {
	// initial backfill
	if _, err := w.SyncOnce(ctx, time.Time{}); err != nil {
		w.log.Warn("[SYNC] initial sync failed", "error", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.SyncOnce(ctx, w.lastSyncTime()); err != nil {
				w.log.Error("[SYNC] sync batch failed", "error", err)
			}
		case <-ctx.Done():
			w.log.Info("[SYNC] profile sync worker stopped")
			return
		}
	}
}

// lastSyncTime is the newest mirrored updated_at, or the epoch.
func (w *ProfileSyncWorker) lastSyncTime() time.Time {
	var latest models.Profile
	err := w.db.Unscoped().Select("updated_at").Order("updated_at DESC").Limit(1).Find(&latest).Error
	if err != nil || latest.UpdatedAt.IsZero() {
		return time.Unix(0, 0)
	}
	return latest.UpdatedAt
}

// SyncOnce pulls profile changes since the given time and upserts them.
// Returns how many profiles were written.
func (w *ProfileSyncWorker) SyncOnce(ctx context.Context, since time.Time) (int, error) {
	base, err := url.Parse(w.baseURL)
	if err != nil {
		return 0, fmt.Errorf("invalid profile service URL %q: %w", w.baseURL, err)
	}
	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", since.UTC().Format(time.RFC3339))
	endpointURL.RawQuery = q.Encode()
	finalURL := endpointURL.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, nil)
	if err != nil {
		return 0, fmt.Errorf("build request to %s: %w", finalURL, err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request to profile service failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, fmt.Errorf("profile service returned %d: %s", resp.StatusCode, string(body))
	}

	var response ProfileChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return 0, fmt.Errorf("decode profile changes: %w", err)
	}
	if len(response.Profiles) == 0 {
		w.log.Debug("[SYNC] no profile changes", "since", since)
		return 0, nil
	}

	upserted, failed := 0, 0
	for _, remote := range response.Profiles {
		if remote.ExternalID == "" {
			failed++
			continue
		}
		local := models.Profile{
			ID:                uuid.NewString(),
			ExternalUserID:    remote.ExternalID,
			DisplayName:       remote.DisplayName(),
			AvatarURL:         remote.ProfilePictureURL,
			PreferredLanguage: remote.PreferredLanguage,
			CreatedAt:         remote.CreatedAt,
			UpdatedAt:         remote.UpdatedAt,
		}
		// suspended or deleted accounts drop off the leaderboard
		if remote.AccountStatus == "deactivated" || remote.AccountStatus == "suspended" {
			local.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
		}

		if err := w.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "external_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"display_name", "avatar_url", "preferred_language", "updated_at", "deleted_at",
			}),
		}).Create(&local).Error; err != nil {
			failed++
			w.log.Warn("[SYNC] failed to upsert profile", "external_id", remote.ExternalID, "error", err)
			continue
		}
		upserted++
	}

	w.log.Info("[SYNC] profiles synced", "received", len(response.Profiles), "upserted", upserted, "errors", failed)
	return upserted, nil
}
