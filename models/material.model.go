package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Material kinds
const (
	MaterialVideo = "VIDEO"
	MaterialPDF   = "PDF"
	MaterialText  = "TEXT"
	MaterialLink  = "LINK"
)

// Material is a piece of learning content attached to a topic.
type Material struct {
	gorm.Model
	TopicID     uint              `json:"topic_id" gorm:"index;not null"`
	Kind        string            `json:"kind" gorm:"default:'TEXT'"` // VIDEO, PDF, TEXT, LINK
	Title       string            `json:"title" gorm:"not null"`
	Body        string            `json:"body" gorm:"type:text"` // for TEXT kind
	URL         string            `json:"url"`                   // for LINK kind
	FileID      *uint             `json:"file_id" gorm:"index"`  // for VIDEO/PDF kinds
	TitleCache  datatypes.JSONMap `json:"title_cache"`
	BodyCache   datatypes.JSONMap `json:"body_cache"`
	OrderIndex  int               `json:"order_index" gorm:"default:0"`
	XPReward    uint              `json:"xp_reward" gorm:"default:0"`
	IsPublished bool              `json:"is_published" gorm:"default:false"`
}

// MaterialView tracks a student's "viewed" state for a material.
// One row per user+material; the first view awards the material's XP.
type MaterialView struct {
	gorm.Model
	UserID     uint      `json:"user_id" gorm:"index:idx_material_view,unique;not null"`
	MaterialID uint      `json:"material_id" gorm:"index:idx_material_view,unique;not null"`
	ViewedAt   time.Time `json:"viewed_at"`
}
