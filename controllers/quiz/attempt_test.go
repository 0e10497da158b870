package quizController

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"osvita/config"
	"osvita/database"
	"osvita/models"
	validators "osvita/validators/quiz"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	config.AppConfig = &config.Config{JWTKey: "test-secret", SaltRound: 4, DefaultLang: "en"}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	database.RunMigrations(db)
	database.Database = database.DbInstance{Db: db}
	return db
}

func stubAuth(userID uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userId", userID)
		return c.Next()
	}
}

func testApp(userID uint) *fiber.App {
	app := fiber.New()
	app.Post("/quizzes/:id/attempt", stubAuth(userID), validators.QuizID(), StartAttempt)
	app.Post("/quizzes/:id/submit", stubAuth(userID), validators.QuizID(), SubmitAttempt)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &payload))
	}
	return resp, payload
}

// seedQuiz creates a published quiz with one SINGLE and one MULTI
// question and returns it fully loaded
func seedQuiz(t *testing.T, db *gorm.DB, durationSec int) models.Quiz {
	t.Helper()

	topic := models.Topic{Slug: "math", Title: "Math", IsPublished: true}
	require.NoError(t, db.Create(&topic).Error)

	quiz := models.Quiz{
		TopicID:     topic.ID,
		Title:       "Arithmetic",
		DurationSec: durationSec,
		PassPercent: 50,
		XPReward:    10,
		IsPublished: true,
	}
	require.NoError(t, db.Create(&quiz).Error)

	single := models.Question{QuizID: quiz.ID, Text: "2+2?", Kind: models.QuestionSingle, Points: 1}
	require.NoError(t, db.Create(&single).Error)
	require.NoError(t, db.Create(&models.Option{QuestionID: single.ID, Text: "4", IsCorrect: true}).Error)
	require.NoError(t, db.Create(&models.Option{QuestionID: single.ID, Text: "5"}).Error)

	multi := models.Question{QuizID: quiz.ID, Text: "Even numbers?", Kind: models.QuestionMulti, Points: 2}
	require.NoError(t, db.Create(&multi).Error)
	require.NoError(t, db.Create(&models.Option{QuestionID: multi.ID, Text: "2", IsCorrect: true}).Error)
	require.NoError(t, db.Create(&models.Option{QuestionID: multi.ID, Text: "3"}).Error)
	require.NoError(t, db.Create(&models.Option{QuestionID: multi.ID, Text: "4", IsCorrect: true}).Error)

	require.NoError(t, db.Preload("Questions").Preload("Questions.Options").First(&quiz, quiz.ID).Error)
	return quiz
}

func seedStudent(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{Name: "Olena", Email: "olena@example.com", Password: "x", Role: models.RoleStudent}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func correctOptionIDs(q *models.Question) []uint {
	var ids []uint
	for _, opt := range q.Options {
		if opt.IsCorrect {
			ids = append(ids, opt.ID)
		}
	}
	return ids
}

func TestScoreQuestionExactSetMatch(t *testing.T) {
	q := &models.Question{
		Kind:   models.QuestionMulti,
		Points: 2,
		Options: []models.Option{
			{Model: gorm.Model{ID: 1}, IsCorrect: true},
			{Model: gorm.Model{ID: 2}},
			{Model: gorm.Model{ID: 3}, IsCorrect: true},
		},
	}

	correct, points := scoreQuestion(q, []uint{1, 3})
	assert.True(t, correct)
	assert.Equal(t, 2, points)

	// Partial selection earns nothing
	correct, points = scoreQuestion(q, []uint{1})
	assert.False(t, correct)
	assert.Equal(t, 0, points)

	// Superset earns nothing
	correct, _ = scoreQuestion(q, []uint{1, 2, 3})
	assert.False(t, correct)

	// Duplicate ids don't fake a full set
	correct, _ = scoreQuestion(q, []uint{1, 1})
	assert.False(t, correct)
}

func TestScoreQuestionSingleNeedsExactlyOne(t *testing.T) {
	q := &models.Question{
		Kind:   models.QuestionSingle,
		Points: 1,
		Options: []models.Option{
			{Model: gorm.Model{ID: 1}, IsCorrect: true},
			{Model: gorm.Model{ID: 2}},
		},
	}

	correct, points := scoreQuestion(q, []uint{1})
	assert.True(t, correct)
	assert.Equal(t, 1, points)

	correct, _ = scoreQuestion(q, []uint{1, 2})
	assert.False(t, correct)

	correct, _ = scoreQuestion(q, nil)
	assert.False(t, correct)
}

func TestAttemptFlowFullMarks(t *testing.T) {
	db := setupTestDB(t)
	user := seedStudent(t, db)
	quiz := seedQuiz(t, db, 600)
	app := testApp(user.ID)

	resp, payload := doJSON(t, app, "POST", fmt.Sprintf("/quizzes/%d/attempt", quiz.ID), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := payload["data"].(map[string]interface{})
	token := data["attempt_token"].(string)
	require.NotEmpty(t, token)

	questions := data["questions"].([]interface{})
	require.Len(t, questions, 2)
	// Correct flags must never reach the student
	for _, qi := range questions {
		for _, oi := range qi.(map[string]interface{})["options"].([]interface{}) {
			_, leaked := oi.(map[string]interface{})["is_correct"]
			assert.False(t, leaked)
		}
	}

	answers := make([]map[string]interface{}, 0, len(quiz.Questions))
	for i := range quiz.Questions {
		answers = append(answers, map[string]interface{}{
			"question_id":         quiz.Questions[i].ID,
			"selected_option_ids": correctOptionIDs(&quiz.Questions[i]),
		})
	}
	body, _ := json.Marshal(map[string]interface{}{"token": token, "answers": answers})

	resp, payload = doJSON(t, app, "POST", fmt.Sprintf("/quizzes/%d/submit", quiz.ID), string(body))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data = payload["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["score"])
	assert.Equal(t, float64(3), data["max_score"])
	assert.Equal(t, true, data["passed"])

	// XP was awarded
	var refreshed models.User
	require.NoError(t, db.First(&refreshed, user.ID).Error)
	assert.Equal(t, uint(10), refreshed.XP)

	// Answers persisted, one per question
	var answerCount int64
	db.Model(&models.Answer{}).Count(&answerCount)
	assert.Equal(t, int64(2), answerCount)

	// Duplicate submit is a conflict
	resp, _ = doJSON(t, app, "POST", fmt.Sprintf("/quizzes/%d/submit", quiz.ID), string(body))
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestAttemptSubmitAfterDurationRejected(t *testing.T) {
	db := setupTestDB(t)
	user := seedStudent(t, db)
	quiz := seedQuiz(t, db, 1)
	app := testApp(user.ID)

	resp, payload := doJSON(t, app, "POST", fmt.Sprintf("/quizzes/%d/attempt", quiz.ID), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	token := payload["data"].(map[string]interface{})["attempt_token"].(string)

	// Let the one-second duration lapse
	time.Sleep(1500 * time.Millisecond)

	body, _ := json.Marshal(map[string]interface{}{"token": token, "answers": []interface{}{}})
	resp, _ = doJSON(t, app, "POST", fmt.Sprintf("/quizzes/%d/submit", quiz.ID), string(body))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// The dangling attempt was closed
	var attempt models.QuizAttempt
	require.NoError(t, db.Where("quiz_id = ?", quiz.ID).First(&attempt).Error)
	assert.Equal(t, models.AttemptExpired, attempt.Status)
}

func TestAttemptTokenForWrongQuizRejected(t *testing.T) {
	db := setupTestDB(t)
	user := seedStudent(t, db)
	quiz := seedQuiz(t, db, 600)
	other := models.Quiz{TopicID: quiz.TopicID, Title: "Other", DurationSec: 600, PassPercent: 50, IsPublished: true}
	require.NoError(t, db.Create(&other).Error)
	q := models.Question{QuizID: other.ID, Text: "?", Kind: models.QuestionSingle, Points: 1}
	require.NoError(t, db.Create(&q).Error)
	require.NoError(t, db.Create(&models.Option{QuestionID: q.ID, Text: "a", IsCorrect: true}).Error)
	require.NoError(t, db.Create(&models.Option{QuestionID: q.ID, Text: "b"}).Error)

	app := testApp(user.ID)

	resp, payload := doJSON(t, app, "POST", fmt.Sprintf("/quizzes/%d/attempt", quiz.ID), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	token := payload["data"].(map[string]interface{})["attempt_token"].(string)

	body, _ := json.Marshal(map[string]interface{}{"token": token, "answers": []interface{}{}})
	resp, _ = doJSON(t, app, "POST", fmt.Sprintf("/quizzes/%d/submit", other.ID), string(body))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestStartAttemptUnpublishedQuiz(t *testing.T) {
	db := setupTestDB(t)
	user := seedStudent(t, db)
	quiz := seedQuiz(t, db, 600)
	require.NoError(t, db.Model(&models.Quiz{}).Where("id = ?", quiz.ID).Update("is_published", false).Error)

	app := testApp(user.ID)
	resp, _ := doJSON(t, app, "POST", fmt.Sprintf("/quizzes/%d/attempt", quiz.ID), "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
