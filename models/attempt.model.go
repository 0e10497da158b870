package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Attempt statuses
const (
	AttemptInProgress = "IN_PROGRESS"
	AttemptSubmitted  = "SUBMITTED"
	AttemptExpired    = "EXPIRED"
)

// QuizAttempt is one student run through a quiz. TokenJTI ties the row
// to the signed attempt token issued at start; submission must present
// a token with the same jti.
type QuizAttempt struct {
	gorm.Model
	UserID      uint       `json:"user_id" gorm:"index;not null"`
	QuizID      uint       `json:"quiz_id" gorm:"index;not null"`
	TokenJTI    string     `json:"-" gorm:"uniqueIndex;not null"`
	Status      string     `json:"status" gorm:"default:'IN_PROGRESS'"` // IN_PROGRESS, SUBMITTED, EXPIRED
	StartedAt   time.Time  `json:"started_at"`
	SubmittedAt *time.Time `json:"submitted_at"`
	Score       int        `json:"score" gorm:"default:0"`
	MaxScore    int        `json:"max_score" gorm:"default:0"`
	Passed      bool       `json:"passed" gorm:"default:false"`
}

// Answer is a student's recorded response to one question of an attempt.
type Answer struct {
	gorm.Model
	AttemptID       uint           `json:"attempt_id" gorm:"index;not null"`
	QuestionID      uint           `json:"question_id" gorm:"index;not null"`
	SelectedOptions datatypes.JSON `json:"selected_options"` // JSON array of option IDs
	Correct         bool           `json:"correct" gorm:"default:false"`
	Points          int            `json:"points" gorm:"default:0"`
}
