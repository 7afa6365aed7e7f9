package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gbonee/hustle-vibes-africa-sub000/logger"
	"github.com/gbonee/hustle-vibes-africa-sub000/models"
	"github.com/gbonee/hustle-vibes-africa-sub000/utils"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

const videoRoot = "videos/"

// VideoService manages per-module course videos in object storage.
type VideoService struct {
	DB    *gorm.DB
	Store ObjectStore
	log   *logger.Logger
	now   func() time.Time
}

func NewVideoService(db *gorm.DB, store ObjectStore, log *logger.Logger) *VideoService {
	return &VideoService{DB: db, Store: store, log: log.With("service", "VideoService"), now: time.Now}
}

func VideoPrefix(courseID string, moduleID int) string {
	return fmt.Sprintf("%s%s/%d", videoRoot, slug.Make(courseID), moduleID)
}

func (s *VideoService) loadModule(ctx context.Context, courseID string, moduleID int) (*models.CourseModule, error) {
	var module models.CourseModule
	if err := s.DB.WithContext(ctx).Where("id = ?", moduleID).First(&module).Error; err != nil {
		return nil, notFound(err)
	}
	if module.CourseID != courseID {
		return nil, fmt.Errorf("%w: module %d, course %s", ErrUnknownModule, moduleID, courseID)
	}
	return &module, nil
}

// UploadModuleVideo stores the video and points the module at it.
func (s *VideoService) UploadModuleVideo(ctx context.Context, courseID string, moduleID int, file FileUpload) (*models.CourseModule, error) {
	module, err := s.loadModule(ctx, courseID, moduleID)
	if err != nil {
		return nil, err
	}
	contentType := utils.DetectContentType(file.ContentType, file.Filename)
	if err := utils.ValidateUpload(file.Size, contentType, utils.MaxVideoSize, utils.VideoTypes); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUploadRejected, err)
	}

	key := utils.ObjectKey(VideoPrefix(courseID, moduleID), file.Filename, s.now())
	url, err := s.Store.Upload(ctx, key, file.Body, contentType, file.Filename)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(module).Update("video_url", url).Error; err != nil {
		if rmErr := s.Store.Remove(ctx, key); rmErr != nil {
			s.log.Warn("[VIDEO] failed to remove orphaned object", "key", key, "error", rmErr)
		}
		return nil, fmt.Errorf("save video url: %w", err)
	}
	module.VideoURL = url

	s.log.Info("[VIDEO] module video uploaded", "course_id", courseID, "module_id", moduleID, "key", key)
	return module, nil
}

func (s *VideoService) ListModuleVideos(ctx context.Context, courseID string, moduleID int) ([]utils.StoredObject, error) {
	if _, err := s.loadModule(ctx, courseID, moduleID); err != nil {
		return nil, err
	}
	return s.Store.List(ctx, VideoPrefix(courseID, moduleID)+"/")
}

// RemoveVideo deletes the object and clears any module still pointing at it.
func (s *VideoService) RemoveVideo(ctx context.Context, key string) error {
	if !strings.HasPrefix(key, videoRoot) || strings.Contains(key, "..") {
		return fmt.Errorf("%w: key must be under %s", ErrInvalidInput, videoRoot)
	}
	if err := s.Store.Remove(ctx, key); err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Model(&models.CourseModule{}).
		Where("video_url = ?", s.Store.PublicURL(key)).
		Update("video_url", "").Error; err != nil {
		return fmt.Errorf("clear video url: %w", err)
	}
	s.log.Info("[VIDEO] video removed", "key", key)
	return nil
}
