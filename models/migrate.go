package models

import "gorm.io/gorm"

// Migrate creates or updates every table owned by this service.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Course{},
		&CourseModule{},
		&ModuleCompletion{},
		&CourseProgress{},
		&LeaderboardEntry{},
		&PointAward{},
		&ChallengeSubmission{},
		&Profile{},
		&BadgeType{},
		&UserBadge{},
	)
}
