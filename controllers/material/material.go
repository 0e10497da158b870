package materialController

import (
	"log"
	"time"

	"osvita/database"
	"osvita/middleware"
	"osvita/models"
	"osvita/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// materialDTO is the localized public shape of a material
type materialDTO struct {
	ID         uint   `json:"id"`
	TopicID    uint   `json:"topic_id"`
	Kind       string `json:"kind"`
	Title      string `json:"title"`
	Body       string `json:"body,omitempty"`
	URL        string `json:"url,omitempty"`
	FileID     *uint  `json:"file_id,omitempty"`
	OrderIndex int    `json:"order_index"`
	XPReward   uint   `json:"xp_reward"`
	Viewed     bool   `json:"viewed"`
}

func localizeMaterial(m *models.Material, lang string, viewed bool) materialDTO {
	return materialDTO{
		ID:         m.ID,
		TopicID:    m.TopicID,
		Kind:       m.Kind,
		Title:      utils.Localize(m.Title, m.TitleCache, lang),
		Body:       utils.Localize(m.Body, m.BodyCache, lang),
		URL:        m.URL,
		FileID:     m.FileID,
		OrderIndex: m.OrderIndex,
		XPReward:   m.XPReward,
		Viewed:     viewed,
	}
}

// ListByTopic returns the published materials of a topic with the
// student's viewed flags merged in
func ListByTopic(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	topicID := c.Locals("topicID").(uint)
	lang := utils.NormalizeLang(c.Query("lang"))

	db := database.Database.Db

	if err := db.Where("id = ? AND is_published = ?", topicID, true).First(&models.Topic{}).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Topic not found!", nil)
	}

	var materials []models.Material
	if err := db.Where("topic_id = ? AND is_published = ?", topicID, true).
		Order("order_index asc, id asc").
		Find(&materials).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch materials!", nil)
	}

	var views []models.MaterialView
	db.Where("user_id = ?", userID).Find(&views)
	viewed := make(map[uint]bool, len(views))
	for _, v := range views {
		viewed[v.MaterialID] = true
	}

	dtos := make([]materialDTO, len(materials))
	for i := range materials {
		dtos[i] = localizeMaterial(&materials[i], lang, viewed[materials[i].ID])
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Materials fetched successfully!", dtos)
}

// GetMaterial returns one published material
func GetMaterial(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	materialID := c.Locals("materialID").(uint)
	lang := utils.NormalizeLang(c.Query("lang"))

	db := database.Database.Db

	var material models.Material
	if err := db.Where("id = ? AND is_published = ?", materialID, true).First(&material).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Material not found!", nil)
	}

	var view models.MaterialView
	viewed := db.Where("user_id = ? AND material_id = ?", userID, materialID).First(&view).Error == nil

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Material fetched successfully!", localizeMaterial(&material, lang, viewed))
}

// MarkViewed records that the student viewed a material. Idempotent;
// the first view awards the material's XP.
func MarkViewed(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	materialID := c.Locals("materialID").(uint)

	db := database.Database.Db

	var material models.Material
	if err := db.Where("id = ? AND is_published = ?", materialID, true).First(&material).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Material not found!", nil)
	}

	var existing models.MaterialView
	if err := db.Where("user_id = ? AND material_id = ?", userID, materialID).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Material already marked as viewed.", existing)
	}

	view := models.MaterialView{
		UserID:     userID,
		MaterialID: materialID,
		ViewedAt:   time.Now(),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&view).Error; err != nil {
			return err
		}
		if material.XPReward > 0 {
			return tx.Model(&models.User{}).Where("id = ?", userID).
				Update("xp", gorm.Expr("xp + ?", material.XPReward)).Error
		}
		return nil
	})
	if err != nil {
		log.Printf("Error marking material viewed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark material as viewed!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Material marked as viewed.", view)
}

// CreateMaterial creates a material (editor/admin)
func CreateMaterial(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)

	reqData, ok := c.Locals("validatedMaterial").(*struct {
		TopicID    uint   `json:"topic_id"`
		Kind       string `json:"kind"`
		Title      string `json:"title"`
		Body       string `json:"body"`
		URL        string `json:"url"`
		FileID     *uint  `json:"file_id"`
		OrderIndex int    `json:"order_index"`
		XPReward   uint   `json:"xp_reward"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	if err := db.First(&models.Topic{}, reqData.TopicID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Topic not found!", nil)
	}

	if reqData.FileID != nil {
		var file models.File
		if err := db.First(&file, *reqData.FileID).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "File not found!", nil)
		}
		if file.Status != models.FileUploaded {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "File upload is not confirmed yet!", nil)
		}
	}

	material := models.Material{
		TopicID:    reqData.TopicID,
		Kind:       reqData.Kind,
		Title:      reqData.Title,
		Body:       reqData.Body,
		URL:        reqData.URL,
		FileID:     reqData.FileID,
		OrderIndex: reqData.OrderIndex,
		XPReward:   reqData.XPReward,
	}

	if err := db.Create(&material).Error; err != nil {
		log.Printf("Error creating material: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create material!", nil)
	}

	utils.RecordAudit(userID, "CREATE", "material", material.ID, map[string]interface{}{"kind": material.Kind})
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Material created successfully!", material)
}

// UpdateMaterial updates a material's fields (editor/admin)
func UpdateMaterial(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	materialID := c.Locals("materialID").(uint)

	reqData, ok := c.Locals("validatedMaterialUpdate").(*struct {
		Kind        *string `json:"kind"`
		Title       *string `json:"title"`
		Body        *string `json:"body"`
		URL         *string `json:"url"`
		FileID      *uint   `json:"file_id"`
		OrderIndex  *int    `json:"order_index"`
		XPReward    *uint   `json:"xp_reward"`
		IsPublished *bool   `json:"is_published"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var material models.Material
	if err := db.First(&material, materialID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Material not found!", nil)
	}

	if reqData.Kind != nil {
		material.Kind = *reqData.Kind
	}
	if reqData.Title != nil {
		material.Title = *reqData.Title
	}
	if reqData.Body != nil {
		material.Body = *reqData.Body
	}
	if reqData.URL != nil {
		material.URL = *reqData.URL
	}
	if reqData.FileID != nil {
		var file models.File
		if err := db.First(&file, *reqData.FileID).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "File not found!", nil)
		}
		material.FileID = reqData.FileID
	}
	if reqData.OrderIndex != nil {
		material.OrderIndex = *reqData.OrderIndex
	}
	if reqData.XPReward != nil {
		material.XPReward = *reqData.XPReward
	}
	if reqData.IsPublished != nil {
		material.IsPublished = *reqData.IsPublished
	}

	if err := db.Save(&material).Error; err != nil {
		log.Printf("Error updating material: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update material!", nil)
	}

	utils.RecordAudit(userID, "UPDATE", "material", material.ID, nil)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Material updated successfully!", material)
}

// SetMaterialCache upserts one language entry of the material's caches
func SetMaterialCache(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	materialID := c.Locals("materialID").(uint)

	reqData, ok := c.Locals("validatedCache").(*struct {
		Lang  string  `json:"lang"`
		Title *string `json:"title"`
		Body  *string `json:"body"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var material models.Material
	if err := db.First(&material, materialID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Material not found!", nil)
	}

	if material.TitleCache == nil {
		material.TitleCache = map[string]interface{}{}
	}
	if material.BodyCache == nil {
		material.BodyCache = map[string]interface{}{}
	}
	if reqData.Title != nil {
		material.TitleCache[reqData.Lang] = *reqData.Title
	}
	if reqData.Body != nil {
		material.BodyCache[reqData.Lang] = *reqData.Body
	}

	if err := db.Save(&material).Error; err != nil {
		log.Printf("Error saving material cache: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update material!", nil)
	}

	utils.RecordAudit(userID, "UPDATE", "material", material.ID, map[string]interface{}{"cache_lang": reqData.Lang})
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Material cache updated successfully!", material)
}

// DeleteMaterial soft-deletes a material (editor/admin)
func DeleteMaterial(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	materialID := c.Locals("materialID").(uint)

	db := database.Database.Db

	var material models.Material
	if err := db.First(&material, materialID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Material not found!", nil)
	}

	if err := db.Delete(&material).Error; err != nil {
		log.Printf("Error deleting material: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete material!", nil)
	}

	utils.RecordAudit(userID, "DELETE", "material", material.ID, nil)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Material deleted successfully!", nil)
}

// ListByTopicAdmin returns all materials of a topic including
// unpublished ones (editor/admin)
func ListByTopicAdmin(c *fiber.Ctx) error {
	topicID := c.Locals("topicID").(uint)

	var materials []models.Material
	if err := database.Database.Db.Where("topic_id = ?", topicID).
		Order("order_index asc, id asc").
		Find(&materials).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch materials!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Materials fetched successfully!", materials)
}
