package topicController

import (
	"errors"
	"log"

	"osvita/database"
	"osvita/middleware"
	"osvita/models"
	"osvita/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// topicDTO is the localized public shape of a topic
type topicDTO struct {
	ID          uint       `json:"id"`
	ParentID    *uint      `json:"parent_id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	OrderIndex  int        `json:"order_index"`
	Children    []topicDTO `json:"children,omitempty"`
}

func localizeTopic(t *models.Topic, lang string) topicDTO {
	return topicDTO{
		ID:          t.ID,
		ParentID:    t.ParentID,
		Slug:        t.Slug,
		Title:       utils.Localize(t.Title, t.TitleCache, lang),
		Description: utils.Localize(t.Description, t.DescCache, lang),
		OrderIndex:  t.OrderIndex,
	}
}

// buildTree assembles the nested topic tree from a flat published list
func buildTree(topics []models.Topic, parentID *uint, lang string) []topicDTO {
	var nodes []topicDTO
	for i := range topics {
		t := &topics[i]
		match := (t.ParentID == nil && parentID == nil) ||
			(t.ParentID != nil && parentID != nil && *t.ParentID == *parentID)
		if !match {
			continue
		}
		node := localizeTopic(t, lang)
		node.Children = buildTree(topics, &t.ID, lang)
		nodes = append(nodes, node)
	}
	return nodes
}

// GetTopicTree returns the published topic tree localized for ?lang=
func GetTopicTree(c *fiber.Ctx) error {
	lang := utils.NormalizeLang(c.Query("lang"))

	var topics []models.Topic
	if err := database.Database.Db.
		Where("is_published = ?", true).
		Order("order_index asc, id asc").
		Find(&topics).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch topics!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Topics fetched successfully!", buildTree(topics, nil, lang))
}

// GetTopicBySlug returns one published topic with its direct children
func GetTopicBySlug(c *fiber.Ctx) error {
	lang := utils.NormalizeLang(c.Query("lang"))
	slug := c.Params("slug")

	var topic models.Topic
	if err := database.Database.Db.
		Where("slug = ? AND is_published = ?", slug, true).
		First(&topic).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Topic not found!", nil)
	}

	dto := localizeTopic(&topic, lang)

	var children []models.Topic
	database.Database.Db.
		Where("parent_id = ? AND is_published = ?", topic.ID, true).
		Order("order_index asc, id asc").
		Find(&children)
	for i := range children {
		dto.Children = append(dto.Children, localizeTopic(&children[i], lang))
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Topic fetched successfully!", dto)
}

// CreateTopic creates a topic (editor/admin)
func CreateTopic(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)

	reqData, ok := c.Locals("validatedTopic").(*struct {
		ParentID    *uint  `json:"parent_id"`
		Slug        string `json:"slug"`
		Title       string `json:"title"`
		Description string `json:"description"`
		OrderIndex  int    `json:"order_index"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	// Duplicate slug -> 409
	if err := db.Where("slug = ?", reqData.Slug).First(&models.Topic{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Slug is already in use!", nil)
	}

	if reqData.ParentID != nil {
		if err := db.First(&models.Topic{}, *reqData.ParentID).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Parent topic not found!", nil)
		}
	}

	topic := models.Topic{
		ParentID:    reqData.ParentID,
		Slug:        reqData.Slug,
		Title:       reqData.Title,
		Description: reqData.Description,
		OrderIndex:  reqData.OrderIndex,
	}

	if err := db.Create(&topic).Error; err != nil {
		log.Printf("Error creating topic: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create topic!", nil)
	}

	utils.RecordAudit(userID, "CREATE", "topic", topic.ID, map[string]interface{}{"slug": topic.Slug})
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Topic created successfully!", topic)
}

// wouldCycle reports whether making newParentID the parent of topicID
// creates a cycle in the tree
func wouldCycle(db *gorm.DB, topicID uint, newParentID uint) (bool, error) {
	current := newParentID
	for current != 0 {
		if current == topicID {
			return true, nil
		}
		var parent models.Topic
		if err := db.Select("id, parent_id").First(&parent, current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, err
		}
		if parent.ParentID == nil {
			return false, nil
		}
		current = *parent.ParentID
	}
	return false, nil
}

// UpdateTopic updates a topic's fields, including re-parenting
func UpdateTopic(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	topicID := c.Locals("topicID").(uint)

	reqData, ok := c.Locals("validatedTopicUpdate").(*struct {
		ParentID    *uint   `json:"parent_id"`
		Slug        *string `json:"slug"`
		Title       *string `json:"title"`
		Description *string `json:"description"`
		OrderIndex  *int    `json:"order_index"`
		IsPublished *bool   `json:"is_published"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var topic models.Topic
	if err := db.First(&topic, topicID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Topic not found!", nil)
	}

	if reqData.Slug != nil && *reqData.Slug != topic.Slug {
		if err := db.Where("slug = ? AND id <> ?", *reqData.Slug, topic.ID).First(&models.Topic{}).Error; err == nil {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Slug is already in use!", nil)
		}
		topic.Slug = *reqData.Slug
	}
	if reqData.ParentID != nil {
		if *reqData.ParentID == topic.ID {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "A topic cannot be its own parent!", nil)
		}
		cycle, err := wouldCycle(db, topic.ID, *reqData.ParentID)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update topic!", nil)
		}
		if cycle {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Re-parenting would create a cycle!", nil)
		}
		topic.ParentID = reqData.ParentID
	}
	if reqData.Title != nil {
		topic.Title = *reqData.Title
	}
	if reqData.Description != nil {
		topic.Description = *reqData.Description
	}
	if reqData.OrderIndex != nil {
		topic.OrderIndex = *reqData.OrderIndex
	}
	if reqData.IsPublished != nil {
		topic.IsPublished = *reqData.IsPublished
	}

	if err := db.Save(&topic).Error; err != nil {
		log.Printf("Error updating topic: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update topic!", nil)
	}

	utils.RecordAudit(userID, "UPDATE", "topic", topic.ID, nil)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Topic updated successfully!", topic)
}

// SetTopicCache upserts one language entry of the topic's localized caches
func SetTopicCache(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	topicID := c.Locals("topicID").(uint)

	reqData, ok := c.Locals("validatedCache").(*struct {
		Lang        string  `json:"lang"`
		Title       *string `json:"title"`
		Description *string `json:"description"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var topic models.Topic
	if err := db.First(&topic, topicID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Topic not found!", nil)
	}

	if topic.TitleCache == nil {
		topic.TitleCache = map[string]interface{}{}
	}
	if topic.DescCache == nil {
		topic.DescCache = map[string]interface{}{}
	}
	if reqData.Title != nil {
		topic.TitleCache[reqData.Lang] = *reqData.Title
	}
	if reqData.Description != nil {
		topic.DescCache[reqData.Lang] = *reqData.Description
	}

	if err := db.Save(&topic).Error; err != nil {
		log.Printf("Error saving topic cache: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update topic!", nil)
	}

	utils.RecordAudit(userID, "UPDATE", "topic", topic.ID, map[string]interface{}{"cache_lang": reqData.Lang})
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Topic cache updated successfully!", topic)
}

// DeleteTopic soft-deletes a topic and everything under it in one
// transaction: descendant topics, their materials and quizzes with
// questions and options.
func DeleteTopic(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	topicID := c.Locals("topicID").(uint)

	db := database.Database.Db

	var topic models.Topic
	if err := db.First(&topic, topicID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Topic not found!", nil)
	}

	// Collect the subtree ids, breadth first
	ids := []uint{topic.ID}
	frontier := []uint{topic.ID}
	for len(frontier) > 0 {
		var children []models.Topic
		if err := db.Select("id").Where("parent_id IN ?", frontier).Find(&children).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete topic!", nil)
		}
		frontier = frontier[:0]
		for _, child := range children {
			ids = append(ids, child.ID)
			frontier = append(frontier, child.ID)
		}
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var quizIDs []uint
		if err := tx.Model(&models.Quiz{}).Where("topic_id IN ?", ids).Pluck("id", &quizIDs).Error; err != nil {
			return err
		}
		if len(quizIDs) > 0 {
			var questionIDs []uint
			if err := tx.Model(&models.Question{}).Where("quiz_id IN ?", quizIDs).Pluck("id", &questionIDs).Error; err != nil {
				return err
			}
			if len(questionIDs) > 0 {
				if err := tx.Where("question_id IN ?", questionIDs).Delete(&models.Option{}).Error; err != nil {
					return err
				}
				if err := tx.Where("id IN ?", questionIDs).Delete(&models.Question{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("id IN ?", quizIDs).Delete(&models.Quiz{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("topic_id IN ?", ids).Delete(&models.Material{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.Topic{}).Error
	})
	if err != nil {
		log.Printf("Error deleting topic subtree: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete topic!", nil)
	}

	utils.RecordAudit(userID, "DELETE", "topic", topic.ID, map[string]interface{}{"subtree_size": len(ids)})
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Topic deleted successfully!", nil)
}

// ListTopicsAdmin returns all topics including unpublished, flat (editor/admin)
func ListTopicsAdmin(c *fiber.Ctx) error {
	var topics []models.Topic
	if err := database.Database.Db.Order("order_index asc, id asc").Find(&topics).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch topics!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Topics fetched successfully!", topics)
}
