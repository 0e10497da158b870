package utils

import (
	"encoding/json"
	"log"

	"osvita/database"
	"osvita/models"

	"gorm.io/datatypes"
)

// RecordAudit writes an audit-log row for an editor/admin mutation.
// Failures are logged, never surfaced to the request.
func RecordAudit(actorID uint, action, entity string, entityID uint, meta map[string]interface{}) {
	var metaJSON datatypes.JSON
	if meta != nil {
		raw, err := json.Marshal(meta)
		if err != nil {
			log.Printf("Error marshalling audit meta: %v", err)
		} else {
			metaJSON = datatypes.JSON(raw)
		}
	}

	entry := models.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Meta:     metaJSON,
	}

	if err := database.Database.Db.Create(&entry).Error; err != nil {
		log.Printf("Error saving audit log (%s %s/%d): %v", action, entity, entityID, err)
	}
}
