package models

import (
	"time"
)

// DefaultTotalModules is used for courses missing from the catalog.
const DefaultTotalModules = 5

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// ModuleCompletion is a user's state for a single module of a course.
// Unique per (user_id, course_id, module_id) and overwritten in place.
type ModuleCompletion struct {
	ID        string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    string `gorm:"not null;uniqueIndex:idx_module_completion_key,priority:1" json:"user_id"`
	CourseID  string `gorm:"not null;uniqueIndex:idx_module_completion_key,priority:2;index" json:"course_id"`
	ModuleID  int    `gorm:"not null;uniqueIndex:idx_module_completion_key,priority:3" json:"module_id"`
	Completed bool   `gorm:"not null" json:"completed"`
	Progress  int    `gorm:"not null" json:"progress"` // 0–100

	Timestamps
}

func (ModuleCompletion) TableName() string { return "module_completion" }

// CourseProgress is the materialized per-course aggregate of ModuleCompletion rows.
type CourseProgress struct {
	ID                  string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID              string `gorm:"not null;uniqueIndex:idx_course_progress_key,priority:1" json:"user_id"`
	CourseID            string `gorm:"not null;uniqueIndex:idx_course_progress_key,priority:2" json:"course_id"`
	ModulesCompleted    int    `gorm:"not null" json:"modules_completed"`
	TotalModules        int    `gorm:"not null" json:"total_modules"`
	ProgressPercentage  int    `gorm:"not null" json:"progress_percentage"`
	LastModuleCompleted *int   `json:"last_module_completed"`

	Timestamps
}

func (CourseProgress) TableName() string { return "course_progress" }
