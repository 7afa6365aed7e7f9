package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gbonee/hustle-vibes-africa-sub000/logger"
	"github.com/gbonee/hustle-vibes-africa-sub000/models"
	"github.com/gbonee/hustle-vibes-africa-sub000/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const DefaultChallengeBonusPoints = 1000

type ChallengeService struct {
	DB          *gorm.DB
	Store       ObjectStore
	Badges      *BadgeService
	BonusPoints int64
	log         *logger.Logger
	now         func() time.Time
}

func NewChallengeService(db *gorm.DB, store ObjectStore, badges *BadgeService, bonusPoints int64, log *logger.Logger) *ChallengeService {
	if bonusPoints <= 0 {
		bonusPoints = DefaultChallengeBonusPoints
	}
	return &ChallengeService{
		DB:          db,
		Store:       store,
		Badges:      badges,
		BonusPoints: bonusPoints,
		log:         log.With("service", "ChallengeService"),
		now:         time.Now,
	}
}

type SubmissionStatus struct {
	HasSubmitted bool                        `json:"has_submitted"`
	IsApproved   bool                        `json:"is_approved"`
	Submission   *models.ChallengeSubmission `json:"submission,omitempty"`
}

type ApprovalResult struct {
	Submission *models.ChallengeSubmission `json:"submission"`
	Award      *AwardResult                `json:"award"`
}

type SubmissionFilter struct {
	Status      string // "", pending, approved
	ChallengeID string
	Limit       int
	Offset      int
}

// Submit uploads the file and creates or overwrites the user's submission for
// the challenge, putting it back to pending. Approved submissions are final.
func (s *ChallengeService) Submit(ctx context.Context, userID, challengeID string, file FileUpload) (*models.ChallengeSubmission, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(challengeID) == "" {
		return nil, fmt.Errorf("%w: user_id and challenge_id are required", ErrInvalidInput)
	}
	contentType := utils.DetectContentType(file.ContentType, file.Filename)
	if err := utils.ValidateUpload(file.Size, contentType, utils.MaxSubmissionSize, utils.SubmissionTypes); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUploadRejected, err)
	}

	var prev models.ChallengeSubmission
	err := s.DB.WithContext(ctx).Where("user_id = ? AND challenge_id = ?", userID, challengeID).First(&prev).Error
	hasPrev := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load submission: %w", err)
	}
	if hasPrev && prev.Status() == models.SubmissionStatusApproved {
		return nil, ErrAlreadyApproved
	}

	now := s.now()
	key := utils.ObjectKey("challenges/"+userID, file.Filename, now)
	url, err := s.Store.Upload(ctx, key, file.Body, contentType, file.Filename)
	if err != nil {
		s.log.Error("[CHALLENGE] upload failed", "user_id", userID, "challenge_id", challengeID, "error", err)
		return nil, err
	}

	pending := false
	row := models.ChallengeSubmission{
		ID:             uuid.NewString(),
		UserID:         userID,
		ChallengeID:    challengeID,
		SubmissionURL:  url,
		SubmissionKey:  key,
		SubmissionType: contentType,
		SubmittedAt:    now,
		IsApproved:     &pending,
	}
	res := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "challenge_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"submission_url", "submission_key", "submission_type", "submitted_at", "is_approved",
		}),
		// an approval that lands between the check above and this write wins
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "challenge_submissions.is_approved IS NULL OR challenge_submissions.is_approved = ?", Vars: []interface{}{false}},
		}},
	}).Create(&row)
	if res.Error != nil || res.RowsAffected == 0 {
		s.discard(ctx, key)
		if res.Error != nil {
			return nil, fmt.Errorf("save submission: %w", res.Error)
		}
		return nil, ErrAlreadyApproved
	}

	var saved models.ChallengeSubmission
	if err := s.DB.WithContext(ctx).Where("user_id = ? AND challenge_id = ?", userID, challengeID).First(&saved).Error; err != nil {
		return nil, fmt.Errorf("reload submission: %w", err)
	}
	if hasPrev && prev.SubmissionKey != "" && prev.SubmissionKey != key {
		s.discard(ctx, prev.SubmissionKey)
	}

	s.log.Info("[CHALLENGE] submission saved",
		"user_id", userID, "challenge_id", challengeID, "submission_id", saved.ID, "resubmission", hasPrev)
	return &saved, nil
}

// discard removes an object we no longer reference; failures only get logged.
func (s *ChallengeService) discard(ctx context.Context, key string) {
	if err := s.Store.Remove(ctx, key); err != nil {
		s.log.Warn("[CHALLENGE] failed to remove object", "key", key, "error", err)
	}
}

func (s *ChallengeService) GetStatus(ctx context.Context, userID, challengeID string) (*SubmissionStatus, error) {
	var sub models.ChallengeSubmission
	err := s.DB.WithContext(ctx).Where("user_id = ? AND challenge_id = ?", userID, challengeID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &SubmissionStatus{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load submission: %w", err)
	}
	return &SubmissionStatus{
		HasSubmitted: true,
		IsApproved:   sub.Status() == models.SubmissionStatusApproved,
		Submission:   &sub,
	}, nil
}

// Approve marks the submission approved and pays the bonus in one transaction.
// Approving again never pays twice; it does pay a submission that was
// approved without being paid.
func (s *ChallengeService) Approve(ctx context.Context, submissionID, adminID string) (*ApprovalResult, error) {
	result := &ApprovalResult{}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sub models.ChallengeSubmission
		if err := tx.Where("id = ?", submissionID).First(&sub).Error; err != nil {
			return notFound(err)
		}

		if sub.Status() != models.SubmissionStatusApproved {
			if err := tx.Model(&sub).Updates(map[string]interface{}{
				"is_approved": true,
				"approved_at": s.now(),
				"approved_by": adminID,
			}).Error; err != nil {
				return fmt.Errorf("approve submission: %w", err)
			}
			if err := tx.Where("id = ?", submissionID).First(&sub).Error; err != nil {
				return err
			}
		}
		result.Submission = &sub

		award, err := awardPointsTx(tx, AwardInput{
			UserID:         sub.UserID,
			Points:         s.BonusPoints,
			Reason:         "challenge_approved:" + sub.ChallengeID,
			IdempotencyKey: SubmissionAwardKey(sub.ID),
		})
		if err != nil {
			return err
		}
		result.Award = award
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("[CHALLENGE] submission approved",
		"submission_id", submissionID, "user_id", result.Submission.UserID,
		"admin_id", adminID, "paid", result.Award.Awarded)

	if result.Award.Awarded && s.Badges != nil {
		if _, err := s.Badges.AutoAwardBadges(ctx, result.Submission.UserID); err != nil {
			s.log.Warn("[CHALLENGE] badge evaluation failed", "user_id", result.Submission.UserID, "error", err)
		}
	}
	return result, nil
}

func (s *ChallengeService) List(ctx context.Context, f SubmissionFilter) ([]models.ChallengeSubmission, error) {
	q := s.DB.WithContext(ctx).Model(&models.ChallengeSubmission{})
	switch f.Status {
	case "":
	case models.SubmissionStatusApproved:
		q = q.Where("is_approved = ?", true)
	case models.SubmissionStatusPending:
		q = q.Where("is_approved IS NULL OR is_approved = ?", false)
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, f.Status)
	}
	if f.ChallengeID != "" {
		q = q.Where("challenge_id = ?", f.ChallengeID)
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var subs []models.ChallengeSubmission
	err := q.Order("submitted_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&subs).Error
	return subs, err
}
