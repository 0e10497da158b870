package authController

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"time"

	"osvita/config"
	"osvita/database"
	"osvita/middleware"
	"osvita/models"
	"osvita/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// issueSession creates a refresh-token row for the user and sets the
// access/refresh/CSRF cookie triple on the response.
func issueSession(c *fiber.Ctx, user *models.User) error {
	accessToken, err := middleware.GenerateAccessToken(user.ID, user.Role, user.Email)
	if err != nil {
		return err
	}

	jti := uuid.NewString()
	refreshToken, expiresAt, err := middleware.GenerateRefreshToken(user.ID, jti)
	if err != nil {
		return err
	}

	row := models.RefreshToken{
		UserID:    user.ID,
		JTI:       jti,
		TokenHash: hashToken(refreshToken),
		ExpiresAt: expiresAt,
	}
	if err := database.Database.Db.Create(&row).Error; err != nil {
		return err
	}

	csrfToken, err := middleware.GenerateCSRFToken()
	if err != nil {
		return err
	}

	secure := config.AppConfig.CookieSecure
	domain := config.AppConfig.CookieDomain

	c.Cookie(&fiber.Cookie{
		Name:     middleware.AccessCookie,
		Value:    accessToken,
		Expires:  time.Now().Add(time.Duration(config.AppConfig.AccessTokenTTLMin) * time.Minute),
		HTTPOnly: true,
		Secure:   secure,
		Domain:   domain,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	c.Cookie(&fiber.Cookie{
		Name:     middleware.RefreshCookie,
		Value:    refreshToken,
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   secure,
		Domain:   domain,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/api/auth",
	})
	// Readable by the frontend for the double-submit header
	c.Cookie(&fiber.Cookie{
		Name:     middleware.CSRFCookie,
		Value:    csrfToken,
		Expires:  expiresAt,
		HTTPOnly: false,
		Secure:   secure,
		Domain:   domain,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})

	return nil
}

func clearSessionCookies(c *fiber.Ctx) {
	expired := time.Now().Add(-time.Hour)
	for _, name := range []string{middleware.AccessCookie, middleware.CSRFCookie} {
		c.Cookie(&fiber.Cookie{Name: name, Value: "", Expires: expired, HTTPOnly: name != middleware.CSRFCookie, Path: "/"})
	}
	c.Cookie(&fiber.Cookie{Name: middleware.RefreshCookie, Value: "", Expires: expired, HTTPOnly: true, Path: "/api/auth"})
}

func Signup(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedSignup").(*struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Lang     string `json:"lang"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	// Check if email already exists
	if err := db.Where("email = ?", reqData.Email).First(&models.User{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	newUser := models.User{
		Name:     reqData.Name,
		Email:    reqData.Email,
		Password: string(hashedPassword),
		Role:     models.RoleStudent,
		Lang:     utils.NormalizeLang(reqData.Lang),
	}

	if err := db.Create(&newUser).Error; err != nil {
		// A concurrent signup can slip past the pre-check and land on
		// the unique constraint instead
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
		}
		log.Printf("Error saving user to database: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to sign up user!", nil)
	}

	verifyLink := ""
	if verifyToken, err := middleware.GenerateEmailVerifyToken(newUser.ID); err == nil {
		verifyLink = c.BaseURL() + "/api/auth/verify?token=" + verifyToken
	}

	go func(email, name, link string) {
		if err := utils.SendWelcomeEmail(email, name, link); err != nil {
			log.Printf("Error sending welcome email: %v", err)
		}
	}(newUser.Email, newUser.Name, verifyLink)

	newUser.Password = ""
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully.", newUser)
}

// VerifyEmail confirms the address from the link in the welcome email
func VerifyEmail(c *fiber.Ctx) error {
	tokenString := c.Query("token")
	if tokenString == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Missing verification token!", nil)
	}

	claims, err := middleware.ParseToken(tokenString)
	if err != nil || claims["typ"] != "verify" || claims["userId"] == nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid or expired verification token!", nil)
	}

	userID := uint(claims["userId"].(float64))
	db := database.Database.Db

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	if !user.IsEmailVerified {
		if err := db.Model(&user).Update("is_email_verified", true).Error; err != nil {
			log.Printf("Error verifying email for user %d: %v", user.ID, err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to verify email!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Email verified.", nil)
}

func Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var user models.User
	if err := db.Where("email = ?", reqData.Email).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	// Check if the user is blocked
	if user.IsBlocked && user.BlockedUntil != nil && user.BlockedUntil.After(time.Now()) {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Your account is temporarily blocked. Try again later.", nil)
	}

	if user.LastFailedLogin != nil && time.Since(*user.LastFailedLogin) > 15*time.Minute {
		user.FailedLoginAttempts = 0
		user.LastFailedLogin = nil
		db.Save(&user)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		user.FailedLoginAttempts++
		now := time.Now()
		user.LastFailedLogin = &now

		// Block user after 3 failed attempts
		if user.FailedLoginAttempts >= 3 {
			user.IsBlocked = true
			unblockTime := now.Add(15 * time.Minute)
			user.BlockedUntil = &unblockTime
		}

		if err := db.Save(&user).Error; err != nil {
			log.Printf("Error saving failed login state: %v", err)
		}

		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	now := time.Now()
	user.LastLogin = &now
	user.FailedLoginAttempts = 0
	user.IsBlocked = false
	user.BlockedUntil = nil
	if err := db.Save(&user).Error; err != nil {
		log.Printf("Error saving last login time: %v", err)
	}

	if err := issueSession(c, &user); err != nil {
		log.Printf("Error issuing session: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create session!", nil)
	}

	user.Password = ""
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", user)
}

// Refresh rotates the refresh token. Presenting a token whose row is
// already revoked means the token leaked: the whole chain for that user
// is revoked and the client must log in again.
func Refresh(c *fiber.Ctx) error {
	refreshToken := c.Cookies(middleware.RefreshCookie)
	if refreshToken == "" {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Missing refresh token!", nil)
	}

	claims, err := middleware.ParseToken(refreshToken)
	if err != nil || claims["typ"] != "refresh" || claims["jti"] == nil {
		clearSessionCookies(c)
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid or expired refresh token!", nil)
	}

	jti := claims["jti"].(string)
	db := database.Database.Db

	var row models.RefreshToken
	if err := db.Where("jti = ?", jti).First(&row).Error; err != nil {
		clearSessionCookies(c)
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unknown refresh token!", nil)
	}

	if row.TokenHash != hashToken(refreshToken) {
		clearSessionCookies(c)
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid refresh token!", nil)
	}

	now := time.Now()
	if !row.Active(now) {
		// Reuse of a rotated token: kill every live token of this user
		if row.RevokedAt != nil {
			log.Printf("Refresh token reuse detected for user %d, revoking chain", row.UserID)
			db.Model(&models.RefreshToken{}).
				Where("user_id = ? AND revoked_at IS NULL", row.UserID).
				Update("revoked_at", now)
		}
		clearSessionCookies(c)
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Refresh token no longer valid!", nil)
	}

	var user models.User
	if err := db.First(&user, row.UserID).Error; err != nil {
		clearSessionCookies(c)
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	// Rotate: revoke the old row, then issue a fresh pair
	newJTI := uuid.NewString()
	err = db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&row).Updates(map[string]interface{}{
			"revoked_at":      now,
			"replaced_by_jti": newJTI,
		}).Error
	})
	if err != nil {
		log.Printf("Error revoking refresh token: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to refresh session!", nil)
	}

	accessToken, err := middleware.GenerateAccessToken(user.ID, user.Role, user.Email)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to refresh session!", nil)
	}
	newRefresh, expiresAt, err := middleware.GenerateRefreshToken(user.ID, newJTI)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to refresh session!", nil)
	}

	newRow := models.RefreshToken{
		UserID:    user.ID,
		JTI:       newJTI,
		TokenHash: hashToken(newRefresh),
		ExpiresAt: expiresAt,
	}
	if err := db.Create(&newRow).Error; err != nil {
		log.Printf("Error saving rotated refresh token: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to refresh session!", nil)
	}

	secure := config.AppConfig.CookieSecure
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AccessCookie,
		Value:    accessToken,
		Expires:  time.Now().Add(time.Duration(config.AppConfig.AccessTokenTTLMin) * time.Minute),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	c.Cookie(&fiber.Cookie{
		Name:     middleware.RefreshCookie,
		Value:    newRefresh,
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/api/auth",
	})

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Session refreshed.", nil)
}

func Logout(c *fiber.Ctx) error {
	refreshToken := c.Cookies(middleware.RefreshCookie)
	if refreshToken != "" {
		if claims, err := middleware.ParseToken(refreshToken); err == nil {
			if jti, ok := claims["jti"].(string); ok {
				now := time.Now()
				database.Database.Db.Model(&models.RefreshToken{}).
					Where("jti = ? AND revoked_at IS NULL", jti).
					Update("revoked_at", now)
			}
		}
	}

	clearSessionCookies(c)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Logged out.", nil)
}

func Me(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.First(&user, userID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	user.Password = ""
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched.", user)
}
