package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog records every editor/admin mutation: who did what to which row.
type AuditLog struct {
	gorm.Model
	ActorID  uint           `json:"actor_id" gorm:"index;not null"`
	Action   string         `json:"action" gorm:"not null"` // CREATE, UPDATE, DELETE, RESTORE, ROLE_CHANGE, ...
	Entity   string         `json:"entity" gorm:"index;not null"`
	EntityID uint           `json:"entity_id" gorm:"index"`
	Meta     datatypes.JSON `json:"meta"`
}
