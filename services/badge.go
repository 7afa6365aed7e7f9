package services

import (
	"context"
	"fmt"

	"github.com/gbonee/hustle-vibes-africa-sub000/logger"
	"github.com/gbonee/hustle-vibes-africa-sub000/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeService struct {
	DB  *gorm.DB
	log *logger.Logger
}

func NewBadgeService(db *gorm.DB, log *logger.Logger) *BadgeService {
	return &BadgeService{DB: db, log: log.With("service", "BadgeService")}
}

// SeedBadgeTypes upserts the static badge catalog.
func (s *BadgeService) SeedBadgeTypes(ctx context.Context) error {
	for _, bt := range models.BadgeTriggers {
		bt := bt
		if err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "icon_url", "rarity", "threshold"}),
		}).Create(&bt).Error; err != nil {
			return fmt.Errorf("seed badge %s: %w", bt.Code, err)
		}
	}
	return nil
}

// Stats gathers the counters badge thresholds are evaluated against.
func (s *BadgeService) Stats(ctx context.Context, userID string) (models.BadgeStats, error) {
	var st models.BadgeStats
	db := s.DB.WithContext(ctx)

	var entry models.LeaderboardEntry
	if err := db.Where("user_id = ?", userID).Limit(1).Find(&entry).Error; err != nil {
		return st, err
	}
	st.Points = entry.Points
	st.CompletedChallenges = int64(entry.CompletedChallenges)

	if err := db.Model(&models.ModuleCompletion{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&st.ModulesCompleted).Error; err != nil {
		return st, err
	}
	if err := db.Model(&models.CourseProgress{}).
		Where("user_id = ? AND progress_percentage >= ?", userID, 100).
		Count(&st.CoursesCompleted).Error; err != nil {
		return st, err
	}
	if err := db.Model(&models.ChallengeSubmission{}).
		Where("user_id = ? AND is_approved = ?", userID, true).
		Count(&st.ApprovedChallenges).Error; err != nil {
		return st, err
	}
	return st, nil
}

// AutoAwardBadges checks all badge triggers for a user after a progress update
// and returns the badges newly awarded.
func (s *BadgeService) AutoAwardBadges(ctx context.Context, userID string) ([]models.BadgeType, error) {
	stats, err := s.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}

	var awarded []models.BadgeType
	for _, trigger := range models.BadgeTriggers {
		if !meetsThreshold(stats, trigger.Threshold) {
			continue
		}
		ub := models.UserBadge{
			ID:             uuid.NewString(),
			ExternalUserID: userID,
			BadgeCode:      trigger.Code,
		}
		res := s.DB.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_user_id"}, {Name: "badge_code"}},
			DoNothing: true,
		}).Create(&ub)
		if res.Error != nil {
			return awarded, res.Error
		}
		if res.RowsAffected > 0 {
			awarded = append(awarded, trigger)
			s.log.Info("[BADGE] awarded", "user_id", userID, "badge", trigger.Code)
		}
	}
	return awarded, nil
}

func (s *BadgeService) ListUserBadges(ctx context.Context, userID string) ([]models.UserBadge, error) {
	var badges []models.UserBadge
	err := s.DB.WithContext(ctx).
		Preload("Badge").
		Where("external_user_id = ?", userID).
		Order("awarded_at ASC").
		Find(&badges).Error
	return badges, err
}

func meetsThreshold(st models.BadgeStats, req map[string]int64) bool {
	if len(req) == 0 {
		return false
	}
	for key, required := range req {
		var have int64
		switch key {
		case models.ThresholdPoints:
			have = st.Points
		case models.ThresholdCompletedChallenges:
			have = st.CompletedChallenges
		case models.ThresholdModulesCompleted:
			have = st.ModulesCompleted
		case models.ThresholdCoursesCompleted:
			have = st.CoursesCompleted
		case models.ThresholdApprovedChallenges:
			have = st.ApprovedChallenges
		default:
			return false
		}
		if have < required {
			return false
		}
	}
	return true
}
