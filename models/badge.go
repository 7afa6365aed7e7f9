package models

import (
	"time"
)

// BadgeType is static config; thresholds are keyed by BadgeStats fields.
type BadgeType struct {
	Code        string           `gorm:"primaryKey;type:varchar(64)" json:"code"` // e.g., "FIRST_MODULE"
	Name        string           `gorm:"not null" json:"name"`
	Description string           `json:"description"`
	IconURL     string           `gorm:"type:text" json:"icon_url"`
	Rarity      string           `gorm:"type:varchar(16);default:'common'" json:"rarity"` // common, rare, epic, legendary
	Threshold   map[string]int64 `gorm:"serializer:json" json:"threshold"`                // e.g., {"points": 1000}
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

// UserBadge: awarded instance
type UserBadge struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ExternalUserID string    `gorm:"not null;uniqueIndex:idx_user_badge,priority:1" json:"user_id"`
	BadgeCode      string    `gorm:"not null;uniqueIndex:idx_user_badge,priority:2;type:varchar(64)" json:"badge_code"`
	AwardedAt      time.Time `gorm:"autoCreateTime" json:"awarded_at"`

	Badge BadgeType `gorm:"foreignKey:BadgeCode;references:Code" json:"badge"`
}

// BadgeStats is what thresholds are evaluated against.
type BadgeStats struct {
	Points              int64
	CompletedChallenges int64
	ModulesCompleted    int64
	CoursesCompleted    int64
	ApprovedChallenges  int64
}

// Threshold keys
const (
	ThresholdPoints              = "points"
	ThresholdCompletedChallenges = "completed_challenges"
	ThresholdModulesCompleted    = "modules_completed"
	ThresholdCoursesCompleted    = "courses_completed"
	ThresholdApprovedChallenges  = "approved_challenges"
)

var BadgeTriggers = []BadgeType{
	{
		Code:        "FIRST_MODULE",
		Name:        "First Step",
		Description: "Finished your first module",
		Rarity:      "common",
		Threshold:   map[string]int64{ThresholdModulesCompleted: 1},
	},
	{
		Code:        "COURSE_GRADUATE",
		Name:        "Graduate",
		Description: "Finished every module of a course",
		Rarity:      "rare",
		Threshold:   map[string]int64{ThresholdCoursesCompleted: 1},
	},
	{
		Code:        "CHALLENGE_CHAMP",
		Name:        "Challenge Champ",
		Description: "Had a challenge submission approved",
		Rarity:      "epic",
		Threshold:   map[string]int64{ThresholdApprovedChallenges: 1},
	},
	{
		Code:        "POINTS_5000",
		Name:        "Hustler",
		Description: "Earned 5,000 points",
		Rarity:      "legendary",
		Threshold:   map[string]int64{ThresholdPoints: 5000},
	},
}
