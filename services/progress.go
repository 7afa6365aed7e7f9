package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/gbonee/hustle-vibes-africa-sub000/logger"
	"github.com/gbonee/hustle-vibes-africa-sub000/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const DefaultPointsPerModule = 100

type ProgressService struct {
	DB              *gorm.DB
	Badges          *BadgeService
	PointsPerModule int64
	log             *logger.Logger
}

func NewProgressService(db *gorm.DB, badges *BadgeService, pointsPerModule int64, log *logger.Logger) *ProgressService {
	if pointsPerModule <= 0 {
		pointsPerModule = DefaultPointsPerModule
	}
	return &ProgressService{
		DB:              db,
		Badges:          badges,
		PointsPerModule: pointsPerModule,
		log:             log.With("service", "ProgressService"),
	}
}

type ModuleProgressInput struct {
	UserID    string
	CourseID  string
	ModuleID  int
	Completed bool
	Progress  int // 0–100
}

type ProgressResult struct {
	Completion *models.ModuleCompletion `json:"completion"`
	Course     *models.CourseProgress   `json:"course,omitempty"`
	Award      *AwardResult             `json:"award,omitempty"`
}

// ProgressPercentage is round(100 * completed / total), clamped to [0, 100].
func ProgressPercentage(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	pct := int(math.Round(float64(completed) / float64(total) * 100))
	if pct > 100 {
		return 100
	}
	return pct
}

func (in ModuleProgressInput) validate() error {
	switch {
	case strings.TrimSpace(in.UserID) == "":
		return fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	case strings.TrimSpace(in.CourseID) == "":
		return fmt.Errorf("%w: course_id is required", ErrInvalidInput)
	case in.ModuleID <= 0:
		return fmt.Errorf("%w: module_id must be positive", ErrInvalidInput)
	case in.Progress < 0 || in.Progress > 100:
		return fmt.Errorf("%w: progress must be between 0 and 100", ErrInvalidInput)
	}
	return nil
}

// RecordModuleProgress overwrites the completion row for (user, course, module).
// A completed module also recomputes the course aggregate and accrues points
// once per module; all of it commits or none of it does.
func (s *ProgressService) RecordModuleProgress(ctx context.Context, in ModuleProgressInput) (*ProgressResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	result := &ProgressResult{}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkModule(tx, in.CourseID, in.ModuleID); err != nil {
			return err
		}

		row := models.ModuleCompletion{
			ID:        uuid.NewString(),
			UserID:    in.UserID,
			CourseID:  in.CourseID,
			ModuleID:  in.ModuleID,
			Completed: in.Completed,
			Progress:  in.Progress,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}, {Name: "module_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"completed", "progress", "updated_at"}),
		}).Create(&row).Error; err != nil {
			return fmt.Errorf("upsert module completion: %w", err)
		}
		// row still carries the generated id, which is not stored when the upsert updated
		var saved models.ModuleCompletion
		if err := tx.Where("user_id = ? AND course_id = ? AND module_id = ?", in.UserID, in.CourseID, in.ModuleID).
			First(&saved).Error; err != nil {
			return fmt.Errorf("reload module completion: %w", err)
		}
		result.Completion = &saved

		if !in.Completed {
			return nil
		}

		course, err := recomputeCourseProgressTx(tx, in.UserID, in.CourseID)
		if err != nil {
			return err
		}
		result.Course = course

		award, err := awardPointsTx(tx, AwardInput{
			UserID:         in.UserID,
			Points:         s.PointsPerModule,
			Reason:         fmt.Sprintf("module_completed:%s:%d", in.CourseID, in.ModuleID),
			IdempotencyKey: ModuleAwardKey(in.UserID, in.CourseID, in.ModuleID),
		})
		if err != nil {
			return err
		}
		result.Award = award
		return nil
	})
	if err != nil {
		s.log.Error("[PROGRESS] failed to record module progress",
			"user_id", in.UserID, "course_id", in.CourseID, "module_id", in.ModuleID, "error", err)
		return nil, err
	}

	s.log.Info("[PROGRESS] module recorded",
		"user_id", in.UserID, "course_id", in.CourseID, "module_id", in.ModuleID,
		"completed", in.Completed, "progress", in.Progress)

	if result.Award != nil && result.Award.Awarded && s.Badges != nil {
		if _, err := s.Badges.AutoAwardBadges(ctx, in.UserID); err != nil {
			s.log.Warn("[PROGRESS] badge evaluation failed", "user_id", in.UserID, "error", err)
		}
	}
	return result, nil
}

// RecomputeCourseProgress rebuilds the course aggregate from completion rows.
func (s *ProgressService) RecomputeCourseProgress(ctx context.Context, userID, courseID string) (*models.CourseProgress, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(courseID) == "" {
		return nil, fmt.Errorf("%w: user_id and course_id are required", ErrInvalidInput)
	}
	var out *models.CourseProgress
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = recomputeCourseProgressTx(tx, userID, courseID)
		return err
	})
	return out, err
}

func recomputeCourseProgressTx(tx *gorm.DB, userID, courseID string) (*models.CourseProgress, error) {
	var completedIDs []int
	if err := tx.Model(&models.ModuleCompletion{}).
		Where("user_id = ? AND course_id = ? AND completed = ?", userID, courseID, true).
		Pluck("module_id", &completedIDs).Error; err != nil {
		return nil, fmt.Errorf("load completed modules: %w", err)
	}

	total, err := totalModules(tx, courseID)
	if err != nil {
		return nil, fmt.Errorf("load course total: %w", err)
	}

	var last *int
	for _, id := range completedIDs {
		if last == nil || id > *last {
			v := id
			last = &v
		}
	}

	cp := models.CourseProgress{
		ID:                  uuid.NewString(),
		UserID:              userID,
		CourseID:            courseID,
		ModulesCompleted:    len(completedIDs),
		TotalModules:        total,
		ProgressPercentage:  ProgressPercentage(len(completedIDs), total),
		LastModuleCompleted: last,
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"modules_completed", "total_modules", "progress_percentage", "last_module_completed", "updated_at",
		}),
	}).Create(&cp).Error; err != nil {
		return nil, fmt.Errorf("upsert course progress: %w", err)
	}
	var saved models.CourseProgress
	if err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&saved).Error; err != nil {
		return nil, fmt.Errorf("reload course progress: %w", err)
	}
	return &saved, nil
}

func (s *ProgressService) GetCourseProgress(ctx context.Context, userID, courseID string) (*models.CourseProgress, error) {
	var cp models.CourseProgress
	if err := s.DB.WithContext(ctx).Where("user_id = ? AND course_id = ?", userID, courseID).First(&cp).Error; err != nil {
		return nil, notFound(err)
	}
	return &cp, nil
}

func (s *ProgressService) ListCourseProgress(ctx context.Context, userID string) ([]models.CourseProgress, error) {
	var rows []models.CourseProgress
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("updated_at DESC").Find(&rows).Error
	return rows, err
}

func (s *ProgressService) ListModuleCompletions(ctx context.Context, userID, courseID string) ([]models.ModuleCompletion, error) {
	var rows []models.ModuleCompletion
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Order("module_id ASC").
		Find(&rows).Error
	return rows, err
}
