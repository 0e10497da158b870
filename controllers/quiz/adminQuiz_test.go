package quizController

import (
	"fmt"
	"testing"

	"osvita/models"
	validators "osvita/validators/quiz"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckOptionSet(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		options []optionInput
		wantOK  bool
	}{
		{
			name:   "too few options",
			kind:   models.QuestionSingle,
			options: []optionInput{
				{Text: "A", IsCorrect: true},
			},
			wantOK: false,
		},
		{
			name: "no correct option",
			kind: models.QuestionMulti,
			options: []optionInput{
				{Text: "A"}, {Text: "B"},
			},
			wantOK: false,
		},
		{
			name: "single with two correct",
			kind: models.QuestionSingle,
			options: []optionInput{
				{Text: "A", IsCorrect: true}, {Text: "B", IsCorrect: true},
			},
			wantOK: false,
		},
		{
			name: "valid single",
			kind: models.QuestionSingle,
			options: []optionInput{
				{Text: "A", IsCorrect: true}, {Text: "B"},
			},
			wantOK: true,
		},
		{
			name: "valid multi with two correct",
			kind: models.QuestionMulti,
			options: []optionInput{
				{Text: "A", IsCorrect: true}, {Text: "B", IsCorrect: true}, {Text: "C"},
			},
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := checkOptionSet(tt.kind, tt.options)
			if tt.wantOK {
				assert.Empty(t, msg)
			} else {
				assert.NotEmpty(t, msg)
			}
		})
	}
}

func TestUpdateQuestionKindChangeKeepsOptionRules(t *testing.T) {
	db := setupTestDB(t)
	quiz := seedQuiz(t, db, 600)

	editor := models.User{Name: "Ed", Email: "ed@example.com", Password: "x", Role: models.RoleEditor}
	require.NoError(t, db.Create(&editor).Error)

	var multi models.Question
	require.NoError(t, db.Where("quiz_id = ? AND kind = ?", quiz.ID, models.QuestionMulti).First(&multi).Error)

	app := fiber.New()
	app.Put("/questions/:questionId", stubAuth(editor.ID), validators.QuestionID(), UpdateQuestion)

	// Two correct options stored: flipping to SINGLE without a new
	// option set must be refused
	resp, _ := doJSON(t, app, "PUT", fmt.Sprintf("/questions/%d", multi.ID), `{"kind":"SINGLE"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var reloaded models.Question
	require.NoError(t, db.First(&reloaded, multi.ID).Error)
	assert.Equal(t, models.QuestionMulti, reloaded.Kind)

	// Same change with a conforming option set goes through
	body := `{"kind":"SINGLE","options":[{"text":"2","is_correct":true},{"text":"3"}]}`
	resp, _ = doJSON(t, app, "PUT", fmt.Sprintf("/questions/%d", multi.ID), body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, db.First(&reloaded, multi.ID).Error)
	assert.Equal(t, models.QuestionSingle, reloaded.Kind)

	var correct int64
	db.Model(&models.Option{}).Where("question_id = ? AND is_correct = ?", multi.ID, true).Count(&correct)
	assert.Equal(t, int64(1), correct)
}
