package topicController

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"osvita/config"
	"osvita/database"
	"osvita/models"
	validators "osvita/validators/topic"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
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

// stubAuth injects an authenticated editor user id
func stubAuth(userID uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userId", userID)
		return c.Next()
	}
}

func testApp(userID uint) *fiber.App {
	app := fiber.New()
	app.Get("/topics", GetTopicTree)
	app.Get("/topics/slug/:slug", GetTopicBySlug)
	app.Post("/topics", stubAuth(userID), validators.CreateTopic(), CreateTopic)
	app.Put("/topics/:id", stubAuth(userID), validators.TopicID(), validators.UpdateTopic(), UpdateTopic)
	app.Delete("/topics/:id", stubAuth(userID), validators.TopicID(), DeleteTopic)
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

func TestCreateTopicDuplicateSlugConflicts(t *testing.T) {
	setupTestDB(t)
	app := testApp(1)

	resp, _ := doJSON(t, app, "POST", "/topics", `{"slug":"algebra","title":"Algebra"}`)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, payload := doJSON(t, app, "POST", "/topics", `{"slug":"algebra","title":"Algebra again"}`)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, false, payload["success"])
}

func TestCreateTopicRejectsBadSlug(t *testing.T) {
	setupTestDB(t)
	app := testApp(1)

	resp, _ := doJSON(t, app, "POST", "/topics", `{"slug":"Bad Slug!","title":"Algebra"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestTopicTreeShowsOnlyPublished(t *testing.T) {
	db := setupTestDB(t)
	app := testApp(1)

	root := models.Topic{Slug: "math", Title: "Math", IsPublished: true}
	require.NoError(t, db.Create(&root).Error)
	child := models.Topic{Slug: "algebra", Title: "Algebra", ParentID: &root.ID, IsPublished: true}
	require.NoError(t, db.Create(&child).Error)
	hidden := models.Topic{Slug: "draft", Title: "Draft", IsPublished: false}
	require.NoError(t, db.Create(&hidden).Error)

	resp, payload := doJSON(t, app, "GET", "/topics", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := payload["data"].([]interface{})
	require.Len(t, data, 1)
	node := data[0].(map[string]interface{})
	assert.Equal(t, "math", node["slug"])
	children := node["children"].([]interface{})
	require.Len(t, children, 1)
}

func TestTopicLocalizationFallback(t *testing.T) {
	db := setupTestDB(t)
	app := testApp(1)

	topic := models.Topic{
		Slug:        "history",
		Title:       "History base",
		TitleCache:  datatypes.JSONMap{"en": "History", "ua": "Історія"},
		IsPublished: true,
	}
	require.NoError(t, db.Create(&topic).Error)

	resp, payload := doJSON(t, app, "GET", "/topics/slug/history?lang=ua", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Історія", payload["data"].(map[string]interface{})["title"])

	// pl is absent from the cache: falls back to en
	_, payload = doJSON(t, app, "GET", "/topics/slug/history?lang=pl", "")
	assert.Equal(t, "History", payload["data"].(map[string]interface{})["title"])
}

func TestUpdateTopicRejectsCycle(t *testing.T) {
	db := setupTestDB(t)
	app := testApp(1)

	parent := models.Topic{Slug: "parent", Title: "Parent"}
	require.NoError(t, db.Create(&parent).Error)
	child := models.Topic{Slug: "child", Title: "Child", ParentID: &parent.ID}
	require.NoError(t, db.Create(&child).Error)

	body := fmt.Sprintf(`{"parent_id":%d}`, child.ID)
	resp, _ := doJSON(t, app, "PUT", fmt.Sprintf("/topics/%d", parent.ID), body)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDeleteTopicCascadesSoftDelete(t *testing.T) {
	db := setupTestDB(t)
	app := testApp(1)

	topic := models.Topic{Slug: "physics", Title: "Physics", IsPublished: true}
	require.NoError(t, db.Create(&topic).Error)
	material := models.Material{TopicID: topic.ID, Title: "Optics", IsPublished: true}
	require.NoError(t, db.Create(&material).Error)
	quiz := models.Quiz{TopicID: topic.ID, Title: "Optics quiz"}
	require.NoError(t, db.Create(&quiz).Error)
	question := models.Question{QuizID: quiz.ID, Text: "Q1"}
	require.NoError(t, db.Create(&question).Error)

	resp, _ := doJSON(t, app, "DELETE", fmt.Sprintf("/topics/%d", topic.ID), "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Soft-deleted rows are invisible to default queries
	assert.ErrorIs(t, db.First(&models.Topic{}, topic.ID).Error, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, db.First(&models.Material{}, material.ID).Error, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, db.First(&models.Quiz{}, quiz.ID).Error, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, db.First(&models.Question{}, question.ID).Error, gorm.ErrRecordNotFound)

	// But still present for Unscoped admin queries
	assert.NoError(t, db.Unscoped().First(&models.Topic{}, topic.ID).Error)
}
