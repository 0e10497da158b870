package authController

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
	"osvita/middleware"
	"osvita/models"
	validators "osvita/validators/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	config.AppConfig = &config.Config{
		JWTKey:             "test-secret",
		SaltRound:          4,
		AccessTokenTTLMin:  15,
		RefreshTokenTTLDay: 30,
		DefaultLang:        "en",
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	database.RunMigrations(db)
	database.Database = database.DbInstance{Db: db}
	return db
}

func testApp() *fiber.App {
	app := fiber.New()
	app.Post("/auth/signup", validators.Signup(), Signup)
	app.Post("/auth/login", validators.Login(), Login)
	app.Post("/auth/refresh", Refresh)
	app.Post("/auth/logout", Logout)
	app.Get("/auth/verify", VerifyEmail)
	app.Get("/auth/me", middleware.JWTMiddleware, Me)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string, cookies []*http.Cookie) *http.Response {
	t.Helper()

	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func TestSignupAndDuplicateEmail(t *testing.T) {
	setupTestDB(t)
	app := testApp()

	body := `{"name":"Olena","email":"olena@example.com","password":"secret-pass","lang":"ua"}`
	resp := postJSON(t, app, "/auth/signup", body, nil)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = postJSON(t, app, "/auth/signup", body, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestSignupConstraintCollisionMapsToConflict(t *testing.T) {
	db := setupTestDB(t)
	app := testApp()

	// A soft-deleted user slips past the email pre-check but still
	// occupies the unique index, so the insert itself collides
	user := models.User{Name: "Old", Email: "olena@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Delete(&user).Error)

	body := `{"name":"Olena","email":"olena@example.com","password":"secret-pass"}`
	resp := postJSON(t, app, "/auth/signup", body, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestSignupRejectsWeakPassword(t *testing.T) {
	setupTestDB(t)
	app := testApp()

	resp := postJSON(t, app, "/auth/signup", `{"name":"A","email":"a@example.com","password":"short"}`, nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestVerifyEmailFlow(t *testing.T) {
	db := setupTestDB(t)
	app := testApp()

	user := models.User{Name: "Olena", Email: "olena@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	require.False(t, user.IsEmailVerified)

	token, err := middleware.GenerateEmailVerifyToken(user.ID)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/auth/verify?token="+token, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var refreshed models.User
	require.NoError(t, db.First(&refreshed, user.ID).Error)
	assert.True(t, refreshed.IsEmailVerified)
}

func TestVerifyEmailRejectsWrongTokenType(t *testing.T) {
	db := setupTestDB(t)
	app := testApp()

	user := models.User{Name: "Olena", Email: "olena@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)

	// A refresh token must not pass as a verification token
	refresh, _, err := middleware.GenerateRefreshToken(user.ID, "some-jti")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/auth/verify?token="+refresh, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var refreshed models.User
	require.NoError(t, db.First(&refreshed, user.ID).Error)
	assert.False(t, refreshed.IsEmailVerified)
}

func TestLoginSetsSessionCookies(t *testing.T) {
	setupTestDB(t)
	app := testApp()

	signup := `{"name":"Olena","email":"olena@example.com","password":"secret-pass"}`
	require.Equal(t, fiber.StatusCreated, postJSON(t, app, "/auth/signup", signup, nil).StatusCode)

	resp := postJSON(t, app, "/auth/login", `{"email":"olena@example.com","password":"secret-pass"}`, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	access := findCookie(resp, middleware.AccessCookie)
	refresh := findCookie(resp, middleware.RefreshCookie)
	csrf := findCookie(resp, middleware.CSRFCookie)

	require.NotNil(t, access)
	require.NotNil(t, refresh)
	require.NotNil(t, csrf)
	assert.True(t, access.HttpOnly)
	assert.True(t, refresh.HttpOnly)
	assert.False(t, csrf.HttpOnly)
}

func TestLoginWrongPassword(t *testing.T) {
	setupTestDB(t)
	app := testApp()

	signup := `{"name":"Olena","email":"olena@example.com","password":"secret-pass"}`
	require.Equal(t, fiber.StatusCreated, postJSON(t, app, "/auth/signup", signup, nil).StatusCode)

	resp := postJSON(t, app, "/auth/login", `{"email":"olena@example.com","password":"wrong-pass"}`, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLoginBlocksAfterRepeatedFailures(t *testing.T) {
	setupTestDB(t)
	app := testApp()

	signup := `{"name":"Olena","email":"olena@example.com","password":"secret-pass"}`
	require.Equal(t, fiber.StatusCreated, postJSON(t, app, "/auth/signup", signup, nil).StatusCode)

	for i := 0; i < 3; i++ {
		postJSON(t, app, "/auth/login", `{"email":"olena@example.com","password":"wrong-pass"}`, nil)
	}

	// Even the right password is rejected while blocked
	resp := postJSON(t, app, "/auth/login", `{"email":"olena@example.com","password":"secret-pass"}`, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRefreshRotationAndReuseDetection(t *testing.T) {
	db := setupTestDB(t)
	app := testApp()

	signup := `{"name":"Olena","email":"olena@example.com","password":"secret-pass"}`
	require.Equal(t, fiber.StatusCreated, postJSON(t, app, "/auth/signup", signup, nil).StatusCode)

	login := postJSON(t, app, "/auth/login", `{"email":"olena@example.com","password":"secret-pass"}`, nil)
	require.Equal(t, fiber.StatusOK, login.StatusCode)
	oldRefresh := findCookie(login, middleware.RefreshCookie)
	require.NotNil(t, oldRefresh)

	// First refresh rotates the token
	resp := postJSON(t, app, "/auth/refresh", "", []*http.Cookie{oldRefresh})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	newRefresh := findCookie(resp, middleware.RefreshCookie)
	require.NotNil(t, newRefresh)
	assert.NotEqual(t, oldRefresh.Value, newRefresh.Value)

	// Replaying the rotated-out token fails and kills the chain
	resp = postJSON(t, app, "/auth/refresh", "", []*http.Cookie{oldRefresh})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	var live int64
	db.Model(&models.RefreshToken{}).Where("revoked_at IS NULL").Count(&live)
	assert.Equal(t, int64(0), live)

	// The freshly rotated token is dead too
	resp = postJSON(t, app, "/auth/refresh", "", []*http.Cookie{newRefresh})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMeRequiresAuth(t *testing.T) {
	setupTestDB(t)
	app := testApp()

	req := httptest.NewRequest("GET", "/auth/me", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRefreshTokenRejectedAsBearerCredential(t *testing.T) {
	db := setupTestDB(t)
	app := testApp()

	user := models.User{Name: "Olena", Email: "olena@example.com", Password: "x", Role: models.RoleStudent}
	require.NoError(t, db.Create(&user).Error)

	refresh, _, err := middleware.GenerateRefreshToken(user.ID, "some-jti")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// Same token in the access cookie slot must be rejected too
	req = httptest.NewRequest("GET", "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AccessCookie, Value: refresh})
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMeWithAccessCookie(t *testing.T) {
	setupTestDB(t)
	app := testApp()

	signup := `{"name":"Olena","email":"olena@example.com","password":"secret-pass"}`
	require.Equal(t, fiber.StatusCreated, postJSON(t, app, "/auth/signup", signup, nil).StatusCode)
	login := postJSON(t, app, "/auth/login", `{"email":"olena@example.com","password":"secret-pass"}`, nil)
	access := findCookie(login, middleware.AccessCookie)
	require.NotNil(t, access)

	req := httptest.NewRequest("GET", "/auth/me", nil)
	req.AddCookie(access)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, _ := io.ReadAll(resp.Body)
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &payload))
	data := payload["data"].(map[string]interface{})
	assert.Equal(t, "olena@example.com", data["email"])
	_, leaked := data["password"]
	assert.False(t, leaked)
}
