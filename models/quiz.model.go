package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Question kinds
const (
	QuestionSingle = "SINGLE"
	QuestionMulti  = "MULTI"
)

// Quiz is a timed assessment attached to a topic.
type Quiz struct {
	gorm.Model
	TopicID     uint              `json:"topic_id" gorm:"index;not null"`
	Title       string            `json:"title" gorm:"not null"`
	Description string            `json:"description" gorm:"type:text"`
	TitleCache  datatypes.JSONMap `json:"title_cache"`
	DescCache   datatypes.JSONMap `json:"desc_cache"`
	DurationSec int               `json:"duration_sec" gorm:"default:600"`
	PassPercent int               `json:"pass_percent" gorm:"default:60"`
	XPReward    uint              `json:"xp_reward" gorm:"default:0"`
	IsPublished bool              `json:"is_published" gorm:"default:false"`

	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
}

// Question belongs to a quiz and carries at least two options,
// at least one of them correct. The invariant is enforced by the
// admin controllers inside a transaction.
type Question struct {
	gorm.Model
	QuizID     uint              `json:"quiz_id" gorm:"index;not null"`
	Text       string            `json:"text" gorm:"type:text;not null"`
	TextCache  datatypes.JSONMap `json:"text_cache"`
	Kind       string            `json:"kind" gorm:"default:'SINGLE'"` // SINGLE, MULTI
	Points     int               `json:"points" gorm:"default:1"`
	OrderIndex int               `json:"order_index" gorm:"default:0"`

	Options []Option `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
}

// Option is one answer choice of a question.
type Option struct {
	gorm.Model
	QuestionID uint              `json:"question_id" gorm:"index;not null"`
	Text       string            `json:"text" gorm:"not null"`
	TextCache  datatypes.JSONMap `json:"text_cache"`
	IsCorrect  bool              `json:"is_correct" gorm:"default:false"`
	OrderIndex int               `json:"order_index" gorm:"default:0"`
}
