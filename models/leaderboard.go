package models

import "time"

// LeaderboardEntry is a user's global point total. Rank is written by the
// ranking job only; accrual never touches it.
type LeaderboardEntry struct {
	ID                  string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID              string `gorm:"uniqueIndex;not null" json:"user_id"`
	Points              int64  `gorm:"not null;index" json:"points"`
	CompletedChallenges int    `gorm:"not null" json:"completed_challenges"`
	Rank                *int   `json:"rank"`

	Timestamps
}

func (LeaderboardEntry) TableName() string { return "leaderboard_entries" }

// PointAward is the accrual ledger. A non-nil IdempotencyKey can only be
// recorded once, which is what makes repeated triggers no-ops.
type PointAward struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID         string    `gorm:"index;not null" json:"user_id"`
	Points         int64     `gorm:"not null" json:"points"`
	Reason         string    `gorm:"type:varchar(255)" json:"reason"`
	IdempotencyKey *string   `gorm:"uniqueIndex;type:varchar(255)" json:"idempotency_key,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// LeaderboardStanding is an entry joined with mirrored profile data.
type LeaderboardStanding struct {
	UserID              string    `json:"user_id"`
	DisplayName         string    `json:"display_name"`
	AvatarURL           *string   `json:"avatar_url,omitempty"`
	Points              int64     `json:"points"`
	CompletedChallenges int       `json:"completed_challenges"`
	Rank                *int      `json:"rank"`
	UpdatedAt           time.Time `json:"updated_at"`
}
