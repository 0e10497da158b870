package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Topic is a hierarchical content category. The tree is built through
// ParentID; root topics have ParentID nil.
type Topic struct {
	gorm.Model
	ParentID    *uint             `json:"parent_id" gorm:"index"`
	Slug        string            `json:"slug" gorm:"uniqueIndex;not null"`
	Title       string            `json:"title" gorm:"not null"`
	Description string            `json:"description" gorm:"type:text"`
	TitleCache  datatypes.JSONMap `json:"title_cache"` // language code -> localized title
	DescCache   datatypes.JSONMap `json:"desc_cache"`
	OrderIndex  int               `json:"order_index" gorm:"default:0"`
	IsPublished bool              `json:"is_published" gorm:"default:false"`

	Children []Topic `json:"children,omitempty" gorm:"foreignKey:ParentID"`
}
