package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gbonee/hustle-vibes-africa-sub000/logger"
	"github.com/gbonee/hustle-vibes-africa-sub000/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

type LeaderboardService struct {
	DB             *gorm.DB
	StreamInterval time.Duration
	log            *logger.Logger
}

func NewLeaderboardService(db *gorm.DB, log *logger.Logger) *LeaderboardService {
	return &LeaderboardService{
		DB:             db,
		StreamInterval: 3 * time.Second,
		log:            log.With("service", "LeaderboardService"),
	}
}

type AwardInput struct {
	UserID string
	Points int64
	Reason string
	// IdempotencyKey identifies the triggering event. Empty means every call accrues.
	IdempotencyKey string
}

type AwardResult struct {
	Entry   *models.LeaderboardEntry `json:"entry"`
	Awarded bool                     `json:"awarded"`
}

// ModuleAwardKey is the idempotency key for completing a module.
func ModuleAwardKey(userID, courseID string, moduleID int) string {
	return fmt.Sprintf("module:%s:%s:%d", userID, courseID, moduleID)
}

// SubmissionAwardKey is the idempotency key for an approved challenge submission.
func SubmissionAwardKey(submissionID string) string {
	return "submission:" + submissionID
}

// AwardPoints adds points and one completed challenge to the user's entry,
// creating it on first accrual.
func (s *LeaderboardService) AwardPoints(ctx context.Context, in AwardInput) (*AwardResult, error) {
	var res *AwardResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = awardPointsTx(tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	if res.Awarded {
		s.log.Info("[LEADERBOARD] points awarded",
			"user_id", in.UserID, "points", in.Points, "total", res.Entry.Points, "reason", in.Reason)
	}
	return res, nil
}

// awardPointsTx runs inside the caller's transaction so accrual commits
// together with whatever triggered it.
func awardPointsTx(tx *gorm.DB, in AwardInput) (*AwardResult, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if in.Points <= 0 {
		return nil, fmt.Errorf("%w: points must be positive", ErrInvalidInput)
	}

	award := models.PointAward{
		ID:     uuid.NewString(),
		UserID: in.UserID,
		Points: in.Points,
		Reason: in.Reason,
	}
	if in.IdempotencyKey != "" {
		key := in.IdempotencyKey
		award.IdempotencyKey = &key
	}
	created := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "idempotency_key"}},
		DoNothing: true,
	}).Create(&award)
	if created.Error != nil {
		return nil, fmt.Errorf("record point award: %w", created.Error)
	}

	if created.RowsAffected == 0 {
		var entry models.LeaderboardEntry
		if err := tx.Where("user_id = ?", in.UserID).First(&entry).Error; err != nil {
			return nil, fmt.Errorf("load leaderboard entry: %w", notFound(err))
		}
		return &AwardResult{Entry: &entry, Awarded: false}, nil
	}

	entry := models.LeaderboardEntry{
		ID:                  uuid.NewString(),
		UserID:              in.UserID,
		Points:              in.Points,
		CompletedChallenges: 1,
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"points":               gorm.Expr("leaderboard_entries.points + ?", in.Points),
			"completed_challenges": gorm.Expr("leaderboard_entries.completed_challenges + 1"),
			"updated_at":           time.Now(),
		}),
	}).Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("upsert leaderboard entry: %w", err)
	}

	var saved models.LeaderboardEntry
	if err := tx.Where("user_id = ?", in.UserID).First(&saved).Error; err != nil {
		return nil, fmt.Errorf("reload leaderboard entry: %w", err)
	}
	return &AwardResult{Entry: &saved, Awarded: true}, nil
}

func standingsQuery(db *gorm.DB) *gorm.DB {
	return db.Table("leaderboard_entries AS le").
		Select("le.user_id, COALESCE(p.display_name, '') AS display_name, p.avatar_url, " +
			"le.points, le.completed_challenges, le.rank, le.updated_at").
		Joins("LEFT JOIN profiles p ON p.external_user_id = le.user_id AND p.deleted_at IS NULL")
}

// clampLimit maps a non-positive limit to the default page and caps the rest.
// The HTTP layer rejects limit < 1 before it gets here.
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		return MaxLeaderboardLimit
	}
	return limit
}

// GetTopEntries returns the highest point totals first. Rank is the stored
// value, which may lag behind this ordering until the ranking job runs.
func (s *LeaderboardService) GetTopEntries(ctx context.Context, limit int) ([]models.LeaderboardStanding, error) {
	var out []models.LeaderboardStanding
	err := standingsQuery(s.DB.WithContext(ctx)).
		Order("le.points DESC").
		Order("le.updated_at ASC").
		Order("le.user_id ASC").
		Limit(clampLimit(limit)).
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("fetch top entries: %w", err)
	}
	return out, nil
}

func (s *LeaderboardService) GetEntryFor(ctx context.Context, userID string) (*models.LeaderboardStanding, error) {
	var rows []models.LeaderboardStanding
	err := standingsQuery(s.DB.WithContext(ctx)).
		Where("le.user_id = ?", userID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetch entry for %s: %w", userID, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// RecomputeRanks assigns standard competition ranks (1, 2, 2, 4) by points.
// Returns how many rows changed.
func (s *LeaderboardService) RecomputeRanks(ctx context.Context) (int, error) {
	changed := 0
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entries []models.LeaderboardEntry
		if err := tx.Select("id", "points", "rank").
			Order("points DESC").
			Order("updated_at ASC").
			Order("user_id ASC").
			Find(&entries).Error; err != nil {
			return err
		}

		rank := 0
		for i, e := range entries {
			if i == 0 || e.Points != entries[i-1].Points {
				rank = i + 1
			}
			if e.Rank != nil && *e.Rank == rank {
				continue
			}
			// UpdateColumn keeps updated_at, which is the tie-break above
			if err := tx.Model(&models.LeaderboardEntry{}).
				Where("id = ?", e.ID).
				UpdateColumn("rank", rank).Error; err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("recompute ranks: %w", err)
	}
	if changed > 0 {
		s.log.Info("[LEADERBOARD] ranks updated", "changed", changed)
	}
	return changed, nil
}
