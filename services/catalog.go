package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/gbonee/hustle-vibes-africa-sub000/logger"
	"github.com/gbonee/hustle-vibes-africa-sub000/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CatalogService struct {
	DB  *gorm.DB
	log *logger.Logger
}

func NewCatalogService(db *gorm.DB, log *logger.Logger) *CatalogService {
	return &CatalogService{DB: db, log: log.With("service", "CatalogService")}
}

// Seed upserts courses and their modules. Module video URLs are never overwritten.
func (s *CatalogService) Seed(ctx context.Context, courses []models.Course) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range courses {
			course := models.Course{ID: c.ID, Title: c.Title, TotalModules: c.TotalModules}
			if course.TotalModules <= 0 {
				course.TotalModules = len(c.Modules)
			}
			if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"title", "total_modules", "updated_at"}),
			}).Create(&course).Error; err != nil {
				return fmt.Errorf("seed course %s: %w", c.ID, err)
			}

			for _, m := range c.Modules {
				module := models.CourseModule{ID: m.ID, CourseID: c.ID, Title: m.Title, Position: m.Position}
				if err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "id"}},
					DoUpdates: clause.AssignmentColumns([]string{"course_id", "title", "position", "updated_at"}),
				}).Create(&module).Error; err != nil {
					return fmt.Errorf("seed module %d: %w", m.ID, err)
				}
			}
		}
		s.log.Info("[CATALOG] courses seeded", "count", len(courses))
		return nil
	})
}

func (s *CatalogService) ListCourses(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	err := s.DB.WithContext(ctx).
		Preload("Modules", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("id ASC").
		Find(&courses).Error
	return courses, err
}

func (s *CatalogService) GetCourse(ctx context.Context, courseID string) (*models.Course, error) {
	var course models.Course
	err := s.DB.WithContext(ctx).
		Preload("Modules", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", courseID).
		First(&course).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &course, nil
}

// CourseTitle falls back to the id for unknown courses.
func (s *CatalogService) CourseTitle(ctx context.Context, courseID string) string {
	var course models.Course
	if err := s.DB.WithContext(ctx).Select("title").Where("id = ?", courseID).First(&course).Error; err != nil {
		return courseID
	}
	return course.Title
}

// totalModules returns the catalog divisor for a course, or DefaultTotalModules
// when the course is unknown.
func totalModules(db *gorm.DB, courseID string) (int, error) {
	var course models.Course
	err := db.Select("total_modules").Where("id = ?", courseID).First(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && course.TotalModules <= 0) {
		return models.DefaultTotalModules, nil
	}
	if err != nil {
		return 0, err
	}
	return course.TotalModules, nil
}

// checkModule rejects module ids that the catalog assigns to another course.
// Courses without catalog modules accept any id.
func checkModule(db *gorm.DB, courseID string, moduleID int) error {
	var count int64
	if err := db.Model(&models.CourseModule{}).Where("course_id = ?", courseID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	var module models.CourseModule
	err := db.Select("id").Where("id = ? AND course_id = ?", moduleID, courseID).First(&module).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: module %d, course %s", ErrUnknownModule, moduleID, courseID)
	}
	return err
}
