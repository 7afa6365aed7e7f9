package models

import "time"

// ChallengeSubmission holds the single live submission of a user for a
// challenge. Re-submission overwrites the row.
//
// IsApproved: nil = never reviewed, false = pending, true = approved.
type ChallengeSubmission struct {
	ID             string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID         string     `gorm:"not null;uniqueIndex:idx_submission_key,priority:1" json:"user_id"`
	ChallengeID    string     `gorm:"not null;uniqueIndex:idx_submission_key,priority:2;index" json:"challenge_id"`
	SubmissionURL  string     `gorm:"type:text;not null" json:"submission_url"`
	SubmissionKey  string     `gorm:"type:text" json:"-"` // object key in storage
	SubmissionType string     `gorm:"type:varchar(128)" json:"submission_type"`
	SubmittedAt    time.Time  `gorm:"not null" json:"submitted_at"`
	IsApproved     *bool      `gorm:"index" json:"is_approved"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`
	ApprovedBy     string     `gorm:"type:varchar(64)" json:"approved_by,omitempty"`
}

func (ChallengeSubmission) TableName() string { return "challenge_submissions" }

// Submission states exposed to admins.
const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusApproved = "approved"
)

// Status maps the approval flag onto the submission state machine.
func (s *ChallengeSubmission) Status() string {
	if s.IsApproved != nil && *s.IsApproved {
		return SubmissionStatusApproved
	}
	return SubmissionStatusPending
}
