package quizController

import (
	"encoding/json"
	"log"
	"math/rand"
	"time"

	"osvita/database"
	"osvita/middleware"
	"osvita/models"
	"osvita/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// attemptOptionDTO never exposes the correct flag
type attemptOptionDTO struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

type attemptQuestionDTO struct {
	ID      uint               `json:"id"`
	Text    string             `json:"text"`
	Kind    string             `json:"kind"`
	Points  int                `json:"points"`
	Options []attemptOptionDTO `json:"options"`
}

type answerInput struct {
	QuestionID        uint   `json:"question_id"`
	SelectedOptionIDs []uint `json:"selected_option_ids"`
}

// StartAttempt opens a quiz attempt: creates the attempt row and returns
// the questions (correct flags stripped, options shuffled) together with
// the signed attempt token the client must present on submit.
func StartAttempt(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	quizID := c.Locals("quizID").(uint)
	lang := utils.NormalizeLang(c.Query("lang"))

	db := database.Database.Db

	var quiz models.Quiz
	if err := db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("order_index asc, id asc") }).
		Preload("Questions.Options").
		Where("id = ? AND is_published = ?", quizID, true).
		First(&quiz).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	if len(quiz.Questions) == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Quiz has no questions!", nil)
	}

	// An unfinished attempt for the same quiz is superseded
	now := time.Now()
	db.Model(&models.QuizAttempt{}).
		Where("user_id = ? AND quiz_id = ? AND status = ?", userID, quiz.ID, models.AttemptInProgress).
		Update("status", models.AttemptExpired)

	attempt := models.QuizAttempt{
		UserID:    userID,
		QuizID:    quiz.ID,
		TokenJTI:  uuid.NewString(),
		Status:    models.AttemptInProgress,
		StartedAt: now,
	}
	if err := db.Create(&attempt).Error; err != nil {
		log.Printf("Error creating quiz attempt: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to start attempt!", nil)
	}

	token, err := utils.SignAttemptToken(quiz.ID, attempt.ID, attempt.TokenJTI, quiz.DurationSec)
	if err != nil {
		log.Printf("Error signing attempt token: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to start attempt!", nil)
	}

	questions := make([]attemptQuestionDTO, len(quiz.Questions))
	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		dto := attemptQuestionDTO{
			ID:     q.ID,
			Text:   utils.Localize(q.Text, q.TextCache, lang),
			Kind:   q.Kind,
			Points: q.Points,
		}
		for j := range q.Options {
			opt := &q.Options[j]
			dto.Options = append(dto.Options, attemptOptionDTO{
				ID:   opt.ID,
				Text: utils.Localize(opt.Text, opt.TextCache, lang),
			})
		}
		rand.Shuffle(len(dto.Options), func(a, b int) {
			dto.Options[a], dto.Options[b] = dto.Options[b], dto.Options[a]
		})
		questions[i] = dto
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempt started.", fiber.Map{
		"attempt_id":    attempt.ID,
		"attempt_token": token,
		"duration_sec":  quiz.DurationSec,
		"questions":     questions,
	})
}

// scoreQuestion awards full points for an exact match of the correct
// option set, zero otherwise. SINGLE questions must have exactly one
// selection.
func scoreQuestion(q *models.Question, selected []uint) (bool, int) {
	correctSet := make(map[uint]bool)
	for _, opt := range q.Options {
		if opt.IsCorrect {
			correctSet[opt.ID] = true
		}
	}

	if q.Kind == models.QuestionSingle && len(selected) != 1 {
		return false, 0
	}
	if len(selected) != len(correctSet) {
		return false, 0
	}

	seen := make(map[uint]bool, len(selected))
	for _, id := range selected {
		if seen[id] || !correctSet[id] {
			return false, 0
		}
		seen[id] = true
	}
	return true, q.Points
}

// SubmitAttempt verifies the attempt token, time-boxes the attempt,
// scores the answers and persists everything in one transaction.
func SubmitAttempt(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	quizID := c.Locals("quizID").(uint)

	reqData := new(struct {
		Token   string        `json:"token"`
		Answers []answerInput `json:"answers"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	if reqData.Token == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Missing attempt token!", nil)
	}

	db := database.Database.Db
	now := time.Now()

	claims, err := utils.ParseAttemptToken(reqData.Token)
	if err != nil {
		// Expired token: close the dangling attempt so it cannot be retried
		db.Model(&models.QuizAttempt{}).
			Where("user_id = ? AND quiz_id = ? AND status = ?", userID, quizID, models.AttemptInProgress).
			Update("status", models.AttemptExpired)
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Attempt token expired or invalid!", nil)
	}

	var attempt models.QuizAttempt
	if err := db.First(&attempt, claims.AttemptID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Attempt not found!", nil)
	}

	if attempt.UserID != userID || attempt.QuizID != quizID || attempt.TokenJTI != claims.JTI || claims.QuizID != quizID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Attempt token mismatch!", nil)
	}

	if attempt.Status == models.AttemptSubmitted {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Attempt already submitted!", nil)
	}
	if attempt.Status == models.AttemptExpired {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Attempt has expired!", nil)
	}

	var quiz models.Quiz
	if err := db.
		Preload("Questions").
		Preload("Questions.Options").
		First(&quiz, attempt.QuizID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	// Belt and braces next to the token exp: the elapsed wall time must
	// also fit the quiz duration
	if now.Sub(attempt.StartedAt) > time.Duration(quiz.DurationSec)*time.Second {
		attempt.Status = models.AttemptExpired
		db.Save(&attempt)
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Attempt time is over!", nil)
	}

	selectedByQuestion := make(map[uint][]uint, len(reqData.Answers))
	for _, ans := range reqData.Answers {
		selectedByQuestion[ans.QuestionID] = ans.SelectedOptionIDs
	}

	score := 0
	maxScore := 0
	answers := make([]models.Answer, 0, len(quiz.Questions))
	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		maxScore += q.Points

		selected := selectedByQuestion[q.ID]
		correct, points := scoreQuestion(q, selected)
		score += points

		selectedJSON, _ := json.Marshal(selected)
		answers = append(answers, models.Answer{
			AttemptID:       attempt.ID,
			QuestionID:      q.ID,
			SelectedOptions: datatypes.JSON(selectedJSON),
			Correct:         correct,
			Points:          points,
		})
	}

	passed := maxScore > 0 && score*100 >= quiz.PassPercent*maxScore

	err = db.Transaction(func(tx *gorm.DB) error {
		for i := range answers {
			if err := tx.Create(&answers[i]).Error; err != nil {
				return err
			}
		}
		attempt.Status = models.AttemptSubmitted
		attempt.SubmittedAt = &now
		attempt.Score = score
		attempt.MaxScore = maxScore
		attempt.Passed = passed
		if err := tx.Save(&attempt).Error; err != nil {
			return err
		}
		if passed && quiz.XPReward > 0 {
			return tx.Model(&models.User{}).Where("id = ?", userID).
				Update("xp", gorm.Expr("xp + ?", quiz.XPReward)).Error
		}
		return nil
	})
	if err != nil {
		log.Printf("Error persisting attempt submission: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit attempt!", nil)
	}

	if passed {
		go func(uID uint, title string, s, m int, xp uint) {
			var user models.User
			if err := database.Database.Db.First(&user, uID).Error; err == nil && user.Email != "" {
				if err := utils.SendQuizPassedEmail(user.Email, user.Name, title, s, m, xp); err != nil {
					log.Printf("Error sending quiz-passed email: %v", err)
				}
			}
		}(userID, quiz.Title, score, maxScore, quiz.XPReward)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempt submitted!", fiber.Map{
		"attempt":   attempt,
		"score":     score,
		"max_score": maxScore,
		"passed":    passed,
	})
}

// MyAttempts lists the student's submitted attempts, newest first
func MyAttempts(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)

	var attempts []models.QuizAttempt
	if err := database.Database.Db.
		Where("user_id = ? AND status <> ?", userID, models.AttemptInProgress).
		Order("id desc").
		Find(&attempts).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch attempts!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempts fetched successfully!", attempts)
}

// ListQuizzesByTopic lists the published quizzes of a topic for students
func ListQuizzesByTopic(c *fiber.Ctx) error {
	topicID := c.Locals("topicID").(uint)
	lang := utils.NormalizeLang(c.Query("lang"))

	var quizzes []models.Quiz
	if err := database.Database.Db.
		Where("topic_id = ? AND is_published = ?", topicID, true).
		Order("id asc").
		Find(&quizzes).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch quizzes!", nil)
	}

	type quizDTO struct {
		ID          uint   `json:"id"`
		TopicID     uint   `json:"topic_id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		DurationSec int    `json:"duration_sec"`
		PassPercent int    `json:"pass_percent"`
		XPReward    uint   `json:"xp_reward"`
	}

	dtos := make([]quizDTO, len(quizzes))
	for i := range quizzes {
		q := &quizzes[i]
		dtos[i] = quizDTO{
			ID:          q.ID,
			TopicID:     q.TopicID,
			Title:       utils.Localize(q.Title, q.TitleCache, lang),
			Description: utils.Localize(q.Description, q.DescCache, lang),
			DurationSec: q.DurationSec,
			PassPercent: q.PassPercent,
			XPReward:    q.XPReward,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quizzes fetched successfully!", dtos)
}
