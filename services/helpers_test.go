package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/gbonee/hustle-vibes-africa-sub000/logger"
	"github.com/gbonee/hustle-vibes-africa-sub000/models"
	"github.com/gbonee/hustle-vibes-africa-sub000/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db          *gorm.DB
	store       *testutil.MemStore
	catalog     *CatalogService
	badges      *BadgeService
	leaderboard *LeaderboardService
	progress    *ProgressService
	challenges  *ChallengeService
	videos      *VideoService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	log := logger.Nop()
	store := testutil.NewMemStore()
	badges := NewBadgeService(db, log)

	f := &fixture{
		db:          db,
		store:       store,
		catalog:     NewCatalogService(db, log),
		badges:      badges,
		leaderboard: NewLeaderboardService(db, log),
		progress:    NewProgressService(db, badges, DefaultPointsPerModule, log),
		challenges:  NewChallengeService(db, store, badges, DefaultChallengeBonusPoints, log),
		videos:      NewVideoService(db, store, log),
	}
	require.NoError(t, f.catalog.Seed(context.Background(), models.DefaultCourses))
	require.NoError(t, badges.SeedBadgeTypes(context.Background()))
	return f
}

func upload(name, contentType string, body []byte) FileUpload {
	return FileUpload{
		Filename:    name,
		ContentType: contentType,
		Size:        int64(len(body)),
		Body:        bytes.NewReader(body),
	}
}

func (f *fixture) complete(t *testing.T, userID, courseID string, moduleID int) *ProgressResult {
	t.Helper()
	res, err := f.progress.RecordModuleProgress(context.Background(), ModuleProgressInput{
		UserID: userID, CourseID: courseID, ModuleID: moduleID, Completed: true, Progress: 100,
	})
	require.NoError(t, err)
	return res
}
