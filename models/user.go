package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile is a local snapshot of the display data owned by the auth/profile
// platform. Populated by the profile sync worker; joined into leaderboard reads.
type Profile struct {
	ID                string  `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ExternalUserID    string  `gorm:"uniqueIndex;not null" json:"external_user_id"`
	DisplayName       string  `gorm:"index;not null" json:"display_name"`
	AvatarURL         *string `json:"avatar_url,omitempty"`
	PreferredLanguage *string `json:"preferred_language,omitempty"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
