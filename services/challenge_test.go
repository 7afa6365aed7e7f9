package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gbonee/hustle-vibes-africa-sub000/models"
	"github.com/gbonee/hustle-vibes-africa-sub000/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// steppedClock returns a strictly increasing time on every call.
func steppedClock() func() time.Time {
	t := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestSubmitCreatesPendingSubmission(t *testing.T) {
	f := newFixture(t)
	f.challenges.now = steppedClock()

	sub, err := f.challenges.Submit(context.Background(), "u1", "week-1", upload("My Flyer.png", "image/png", []byte("png")))
	require.NoError(t, err)

	assert.Equal(t, models.SubmissionStatusPending, sub.Status())
	require.NotNil(t, sub.IsApproved)
	assert.False(t, *sub.IsApproved)
	assert.Equal(t, "image/png", sub.SubmissionType)
	assert.Contains(t, sub.SubmissionKey, "challenges/u1/")
	assert.Contains(t, sub.SubmissionKey, "-my-flyer.png")
	assert.Equal(t, f.store.PublicURL(sub.SubmissionKey), sub.SubmissionURL)
	assert.True(t, f.store.Has(sub.SubmissionKey))
}

func TestResubmitOverwritesSingleRow(t *testing.T) {
	f := newFixture(t)
	f.challenges.now = steppedClock()
	ctx := context.Background()

	first, err := f.challenges.Submit(ctx, "u1", "week-1", upload("a.mp4", "video/mp4", []byte("one")))
	require.NoError(t, err)
	second, err := f.challenges.Submit(ctx, "u1", "week-1", upload("b.pdf", "application/pdf", []byte("two")))
	require.NoError(t, err)

	var count int64
	require.NoError(t, f.db.Model(&models.ChallengeSubmission{}).
		Where("user_id = ? AND challenge_id = ?", "u1", "week-1").Count(&count).Error)
	assert.EqualValues(t, 1, count)

	assert.Equal(t, first.ID, second.ID)
	assert.NotEqual(t, first.SubmissionURL, second.SubmissionURL)
	assert.Equal(t, "application/pdf", second.SubmissionType)
	assert.True(t, second.SubmittedAt.After(first.SubmittedAt))
	assert.Equal(t, models.SubmissionStatusPending, second.Status())

	assert.False(t, f.store.Has(first.SubmissionKey), "previous object removed")
	assert.True(t, f.store.Has(second.SubmissionKey))
}

func TestSubmitRejectsBeforeUpload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	big := FileUpload{Filename: "huge.mp4", ContentType: "video/mp4", Size: utils.MaxSubmissionSize + 1, Body: bytes.NewReader(nil)}
	_, err := f.challenges.Submit(ctx, "u1", "week-1", big)
	assert.ErrorIs(t, err, ErrUploadRejected)
	assert.ErrorIs(t, err, utils.ErrFileTooLarge)

	_, err = f.challenges.Submit(ctx, "u1", "week-1", upload("run.exe", "application/x-msdownload", []byte("MZ")))
	assert.ErrorIs(t, err, utils.ErrUnsupportedType)

	assert.Zero(t, f.store.Uploads)
}

func TestSubmitUploadFailureLeavesNoRow(t *testing.T) {
	f := newFixture(t)
	f.store.FailUpload = errors.New("bucket unavailable")

	_, err := f.challenges.Submit(context.Background(), "u1", "week-1", upload("a.png", "image/png", []byte("x")))
	require.Error(t, err)

	status, err := f.challenges.GetStatus(context.Background(), "u1", "week-1")
	require.NoError(t, err)
	assert.False(t, status.HasSubmitted)
}

func TestApproveAwardsBonusOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sub, err := f.challenges.Submit(ctx, "u1", "week-1", upload("a.png", "image/png", []byte("x")))
	require.NoError(t, err)

	res, err := f.challenges.Approve(ctx, sub.ID, "admin-1")
	require.NoError(t, err)
	assert.True(t, res.Award.Awarded)
	assert.EqualValues(t, DefaultChallengeBonusPoints, res.Award.Entry.Points)
	assert.Equal(t, models.SubmissionStatusApproved, res.Submission.Status())
	assert.Equal(t, "admin-1", res.Submission.ApprovedBy)
	require.NotNil(t, res.Submission.ApprovedAt)

	again, err := f.challenges.Approve(ctx, sub.ID, "admin-2")
	require.NoError(t, err)
	assert.False(t, again.Award.Awarded)
	assert.EqualValues(t, DefaultChallengeBonusPoints, again.Award.Entry.Points)
	assert.Equal(t, "admin-1", again.Submission.ApprovedBy)

	status, err := f.challenges.GetStatus(ctx, "u1", "week-1")
	require.NoError(t, err)
	assert.True(t, status.HasSubmitted)
	assert.True(t, status.IsApproved)

	badges, err := f.badges.ListUserBadges(ctx, "u1")
	require.NoError(t, err)
	codes := make([]string, 0, len(badges))
	for _, b := range badges {
		codes = append(codes, b.BadgeCode)
	}
	assert.Contains(t, codes, "CHALLENGE_CHAMP")
}

func TestSubmitSaveFailureRemovesUpload(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register("test:fail_submission", func(tx *gorm.DB) {
		if tx.Statement.Table == "challenge_submissions" {
			_ = tx.AddError(errors.New("disk full"))
		}
	}))

	_, err := f.challenges.Submit(context.Background(), "u1", "week-1", upload("a.png", "image/png", []byte("x")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	assert.Equal(t, 1, f.store.Uploads)
	assert.Zero(t, f.store.Len(), "uploaded object removed")

	status, err := f.challenges.GetStatus(context.Background(), "u1", "week-1")
	require.NoError(t, err)
	assert.False(t, status.HasSubmitted)
}

func TestApprovePaysUserWithExistingEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.complete(t, "u1", "digital-marketing", 1)
	sub, err := f.challenges.Submit(ctx, "u1", "week-1", upload("a.png", "image/png", []byte("x")))
	require.NoError(t, err)

	res, err := f.challenges.Approve(ctx, sub.ID, "admin-1")
	require.NoError(t, err)
	assert.True(t, res.Award.Awarded)
	assert.EqualValues(t, DefaultPointsPerModule+DefaultChallengeBonusPoints, res.Award.Entry.Points)
	assert.Equal(t, 2, res.Award.Entry.CompletedChallenges)

	status, err := f.challenges.GetStatus(ctx, "u1", "week-1")
	require.NoError(t, err)
	assert.True(t, status.IsApproved)
}

func TestApproveUnknownSubmission(t *testing.T) {
	f := newFixture(t)
	_, err := f.challenges.Approve(context.Background(), "missing", "admin")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitAfterApprovalIsRejected(t *testing.T) {
	f := newFixture(t)
	f.challenges.now = steppedClock()
	ctx := context.Background()

	sub, err := f.challenges.Submit(ctx, "u1", "week-1", upload("a.png", "image/png", []byte("x")))
	require.NoError(t, err)
	_, err = f.challenges.Approve(ctx, sub.ID, "admin")
	require.NoError(t, err)

	_, err = f.challenges.Submit(ctx, "u1", "week-1", upload("b.png", "image/png", []byte("y")))
	assert.ErrorIs(t, err, ErrAlreadyApproved)
	assert.Equal(t, 1, f.store.Len())
	assert.True(t, f.store.Has(sub.SubmissionKey))
}

func TestListSubmissionsByStatus(t *testing.T) {
	f := newFixture(t)
	f.challenges.now = steppedClock()
	ctx := context.Background()

	a, err := f.challenges.Submit(ctx, "u1", "week-1", upload("a.png", "image/png", []byte("x")))
	require.NoError(t, err)
	_, err = f.challenges.Submit(ctx, "u2", "week-1", upload("b.png", "image/png", []byte("x")))
	require.NoError(t, err)
	_, err = f.challenges.Submit(ctx, "u2", "week-2", upload("c.png", "image/png", []byte("x")))
	require.NoError(t, err)
	_, err = f.challenges.Approve(ctx, a.ID, "admin")
	require.NoError(t, err)

	approved, err := f.challenges.List(ctx, SubmissionFilter{Status: models.SubmissionStatusApproved})
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, a.ID, approved[0].ID)

	pending, err := f.challenges.List(ctx, SubmissionFilter{Status: models.SubmissionStatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "week-2", pending[0].ChallengeID, "newest first")

	week1, err := f.challenges.List(ctx, SubmissionFilter{ChallengeID: "week-1"})
	require.NoError(t, err)
	assert.Len(t, week1, 2)

	_, err = f.challenges.List(ctx, SubmissionFilter{Status: "rejected"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
