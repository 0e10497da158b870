package middleware

import (
	"fmt"
	"strings"
	"time"

	"osvita/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// Cookie names shared with the frontend
const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
	CSRFCookie    = "csrf_token"
)

// GenerateAccessToken generates a short-lived access JWT for the user
func GenerateAccessToken(userID uint, role, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": userID,
		"role":   role,
		"email":  email,
		"typ":    "access",
		"iat":    now.Unix(),
		"exp":    now.Add(time.Duration(config.AppConfig.AccessTokenTTLMin) * time.Minute).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.JWTKey))
}

// GenerateRefreshToken generates a long-lived refresh JWT carrying the
// rotation jti. Expiry is returned so the caller can persist it.
func GenerateRefreshToken(userID uint, jti string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(time.Duration(config.AppConfig.RefreshTokenTTLDay) * 24 * time.Hour)
	claims := jwt.MapClaims{
		"userId": userID,
		"jti":    jti,
		"typ":    "refresh",
		"iat":    now.Unix(),
		"exp":    expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(config.AppConfig.JWTKey))
	return signed, expiresAt, err
}

// GenerateEmailVerifyToken signs the token embedded in the signup
// verification link
func GenerateEmailVerifyToken(userID uint) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": userID,
		"typ":    "verify",
		"iat":    now.Unix(),
		"exp":    now.Add(48 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.JWTKey))
}

// ParseToken parses and validates any HS256 token issued by this service
func ParseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTKey), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token payload")
	}
	return claims, nil
}

// JWTMiddleware is a middleware to check for a valid access token in the
// request. The token is read from the HttpOnly access cookie; a Bearer
// Authorization header is accepted as a fallback for non-browser clients.
func JWTMiddleware(c *fiber.Ctx) error {
	tokenString := c.Cookies(AccessCookie)

	if tokenString == "" {
		authHeader := c.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = authHeader[len("Bearer "):]
		}
	}

	if tokenString == "" {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Missing access token!", nil)
	}

	claims, err := ParseToken(tokenString)
	if err != nil {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid or expired token!", nil)
	}

	// Only access tokens authenticate requests; refresh tokens carry a
	// different typ and are honored by the refresh endpoint alone.
	if claims["typ"] != "access" || claims["userId"] == nil {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid token payload!", nil)
	}

	// JWT numbers decode as float64
	userID := claims["userId"].(float64)
	c.Locals("userId", uint(userID))

	if role, ok := claims["role"].(string); ok {
		c.Locals("role", role)
	}

	return c.Next()
}
