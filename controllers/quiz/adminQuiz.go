package quizController

import (
	"log"

	"osvita/database"
	"osvita/middleware"
	"osvita/models"
	"osvita/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type optionInput struct {
	Text       string `json:"text"`
	IsCorrect  bool   `json:"is_correct"`
	OrderIndex int    `json:"order_index"`
}

// checkOptionSet enforces the question invariant: at least two options,
// at least one of them correct. SINGLE questions allow exactly one
// correct option.
func checkOptionSet(kind string, options []optionInput) string {
	if len(options) < 2 {
		return "A question needs at least two options!"
	}
	correct := 0
	for _, opt := range options {
		if opt.IsCorrect {
			correct++
		}
	}
	if correct == 0 {
		return "A question needs at least one correct option!"
	}
	if kind == models.QuestionSingle && correct > 1 {
		return "A single-choice question can have only one correct option!"
	}
	return ""
}

// CreateQuiz creates a quiz under a topic (editor/admin)
func CreateQuiz(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)

	reqData, ok := c.Locals("validatedQuiz").(*struct {
		TopicID     uint   `json:"topic_id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		DurationSec int    `json:"duration_sec"`
		PassPercent int    `json:"pass_percent"`
		XPReward    uint   `json:"xp_reward"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	if err := db.First(&models.Topic{}, reqData.TopicID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Topic not found!", nil)
	}

	quiz := models.Quiz{
		TopicID:     reqData.TopicID,
		Title:       reqData.Title,
		Description: reqData.Description,
		DurationSec: reqData.DurationSec,
		PassPercent: reqData.PassPercent,
		XPReward:    reqData.XPReward,
	}

	if err := db.Create(&quiz).Error; err != nil {
		log.Printf("Error creating quiz: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create quiz!", nil)
	}

	utils.RecordAudit(userID, "CREATE", "quiz", quiz.ID, nil)
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz created successfully!", quiz)
}

// UpdateQuiz updates quiz fields; publishing requires at least one question
func UpdateQuiz(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	quizID := c.Locals("quizID").(uint)

	reqData, ok := c.Locals("validatedQuizUpdate").(*struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		DurationSec *int    `json:"duration_sec"`
		PassPercent *int    `json:"pass_percent"`
		XPReward    *uint   `json:"xp_reward"`
		IsPublished *bool   `json:"is_published"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var quiz models.Quiz
	if err := db.First(&quiz, quizID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	if reqData.Title != nil {
		quiz.Title = *reqData.Title
	}
	if reqData.Description != nil {
		quiz.Description = *reqData.Description
	}
	if reqData.DurationSec != nil {
		quiz.DurationSec = *reqData.DurationSec
	}
	if reqData.PassPercent != nil {
		quiz.PassPercent = *reqData.PassPercent
	}
	if reqData.XPReward != nil {
		quiz.XPReward = *reqData.XPReward
	}
	if reqData.IsPublished != nil {
		if *reqData.IsPublished {
			var questionCount int64
			db.Model(&models.Question{}).Where("quiz_id = ?", quiz.ID).Count(&questionCount)
			if questionCount == 0 {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Cannot publish a quiz without questions!", nil)
			}
		}
		quiz.IsPublished = *reqData.IsPublished
	}

	if err := db.Save(&quiz).Error; err != nil {
		log.Printf("Error updating quiz: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update quiz!", nil)
	}

	utils.RecordAudit(userID, "UPDATE", "quiz", quiz.ID, nil)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz updated successfully!", quiz)
}

// SetQuizCache upserts one language entry of the quiz's localized caches
func SetQuizCache(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	quizID := c.Locals("quizID").(uint)

	reqData, ok := c.Locals("validatedCache").(*struct {
		Lang        string  `json:"lang"`
		Title       *string `json:"title"`
		Description *string `json:"description"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var quiz models.Quiz
	if err := db.First(&quiz, quizID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	if quiz.TitleCache == nil {
		quiz.TitleCache = map[string]interface{}{}
	}
	if quiz.DescCache == nil {
		quiz.DescCache = map[string]interface{}{}
	}
	if reqData.Title != nil {
		quiz.TitleCache[reqData.Lang] = *reqData.Title
	}
	if reqData.Description != nil {
		quiz.DescCache[reqData.Lang] = *reqData.Description
	}

	if err := db.Save(&quiz).Error; err != nil {
		log.Printf("Error saving quiz cache: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update quiz!", nil)
	}

	utils.RecordAudit(userID, "UPDATE", "quiz", quiz.ID, map[string]interface{}{"cache_lang": reqData.Lang})
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz cache updated successfully!", quiz)
}

// DeleteQuiz soft-deletes a quiz with its questions and options in one
// transaction
func DeleteQuiz(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	quizID := c.Locals("quizID").(uint)

	db := database.Database.Db

	var quiz models.Quiz
	if err := db.First(&quiz, quizID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var questionIDs []uint
		if err := tx.Model(&models.Question{}).Where("quiz_id = ?", quiz.ID).Pluck("id", &questionIDs).Error; err != nil {
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
		return tx.Delete(&quiz).Error
	})
	if err != nil {
		log.Printf("Error deleting quiz: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete quiz!", nil)
	}

	utils.RecordAudit(userID, "DELETE", "quiz", quiz.ID, nil)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz deleted successfully!", nil)
}

// ListByTopicAdmin returns all quizzes of a topic including unpublished
// (editor/admin)
func ListByTopicAdmin(c *fiber.Ctx) error {
	topicID := c.Locals("topicID").(uint)

	var quizzes []models.Quiz
	if err := database.Database.Db.Where("topic_id = ?", topicID).
		Order("id asc").
		Find(&quizzes).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch quizzes!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quizzes fetched successfully!", quizzes)
}

// GetQuizAdmin returns a quiz with questions and options, correct flags
// included (editor/admin)
func GetQuizAdmin(c *fiber.Ctx) error {
	quizID := c.Locals("quizID").(uint)

	var quiz models.Quiz
	if err := database.Database.Db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("order_index asc, id asc") }).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB { return db.Order("order_index asc, id asc") }).
		First(&quiz, quizID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched successfully!", quiz)
}

// CreateQuestion adds a question with its options in one transaction
func CreateQuestion(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	quizID := c.Locals("quizID").(uint)

	reqData := new(struct {
		Text       string        `json:"text"`
		Kind       string        `json:"kind"`
		Points     int           `json:"points"`
		OrderIndex int           `json:"order_index"`
		Options    []optionInput `json:"options"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	if reqData.Text == "" {
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Question text is required!", nil)
	}
	if reqData.Kind == "" {
		reqData.Kind = models.QuestionSingle
	}
	if reqData.Kind != models.QuestionSingle && reqData.Kind != models.QuestionMulti {
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Unknown question kind!", nil)
	}
	if reqData.Points <= 0 {
		reqData.Points = 1
	}
	if msg := checkOptionSet(reqData.Kind, reqData.Options); msg != "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, msg, nil)
	}

	db := database.Database.Db

	if err := db.First(&models.Quiz{}, quizID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	question := models.Question{
		QuizID:     quizID,
		Text:       reqData.Text,
		Kind:       reqData.Kind,
		Points:     reqData.Points,
		OrderIndex: reqData.OrderIndex,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&question).Error; err != nil {
			return err
		}
		for _, opt := range reqData.Options {
			option := models.Option{
				QuestionID: question.ID,
				Text:       opt.Text,
				IsCorrect:  opt.IsCorrect,
				OrderIndex: opt.OrderIndex,
			}
			if err := tx.Create(&option).Error; err != nil {
				return err
			}
			question.Options = append(question.Options, option)
		}
		return nil
	})
	if err != nil {
		log.Printf("Error creating question: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create question!", nil)
	}

	utils.RecordAudit(userID, "CREATE", "question", question.ID, map[string]interface{}{"quiz_id": quizID})
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question created successfully!", question)
}

// UpdateQuestion replaces a question's fields and full option set in one
// transaction, keeping the option invariant
func UpdateQuestion(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	questionID := c.Locals("questionID").(uint)

	reqData := new(struct {
		Text       *string       `json:"text"`
		Kind       *string       `json:"kind"`
		Points     *int          `json:"points"`
		OrderIndex *int          `json:"order_index"`
		Options    []optionInput `json:"options"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	if reqData.Kind != nil && *reqData.Kind != models.QuestionSingle && *reqData.Kind != models.QuestionMulti {
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Unknown question kind!", nil)
	}

	db := database.Database.Db

	var question models.Question
	if err := db.First(&question, questionID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}

	if reqData.Text != nil {
		question.Text = *reqData.Text
	}
	if reqData.Kind != nil {
		question.Kind = *reqData.Kind
	}
	if reqData.Points != nil {
		question.Points = *reqData.Points
	}
	if reqData.OrderIndex != nil {
		question.OrderIndex = *reqData.OrderIndex
	}

	// A kind change without a new option set must still satisfy the
	// option rules against the stored options
	optionSet := reqData.Options
	if optionSet == nil && reqData.Kind != nil {
		var existing []models.Option
		if err := db.Where("question_id = ?", question.ID).Find(&existing).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update question!", nil)
		}
		optionSet = make([]optionInput, len(existing))
		for i, opt := range existing {
			optionSet[i] = optionInput{Text: opt.Text, IsCorrect: opt.IsCorrect, OrderIndex: opt.OrderIndex}
		}
	}
	if optionSet != nil {
		if msg := checkOptionSet(question.Kind, optionSet); msg != "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, msg, nil)
		}
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&question).Error; err != nil {
			return err
		}
		if reqData.Options == nil {
			return nil
		}
		if err := tx.Where("question_id = ?", question.ID).Delete(&models.Option{}).Error; err != nil {
			return err
		}
		for _, opt := range reqData.Options {
			option := models.Option{
				QuestionID: question.ID,
				Text:       opt.Text,
				IsCorrect:  opt.IsCorrect,
				OrderIndex: opt.OrderIndex,
			}
			if err := tx.Create(&option).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("Error updating question: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update question!", nil)
	}

	utils.RecordAudit(userID, "UPDATE", "question", question.ID, nil)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question updated successfully!", question)
}

// DeleteQuestion soft-deletes a question with its options, refusing to
// shrink a published quiz below one question
func DeleteQuestion(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	questionID := c.Locals("questionID").(uint)

	db := database.Database.Db

	var question models.Question
	if err := db.First(&question, questionID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}

	var quiz models.Quiz
	if err := db.First(&quiz, question.QuizID).Error; err == nil && quiz.IsPublished {
		var questionCount int64
		db.Model(&models.Question{}).Where("quiz_id = ?", quiz.ID).Count(&questionCount)
		if questionCount <= 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Cannot remove the last question of a published quiz!", nil)
		}
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", question.ID).Delete(&models.Option{}).Error; err != nil {
			return err
		}
		return tx.Delete(&question).Error
	})
	if err != nil {
		log.Printf("Error deleting question: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete question!", nil)
	}

	utils.RecordAudit(userID, "DELETE", "question", question.ID, nil)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question deleted successfully!", nil)
}
