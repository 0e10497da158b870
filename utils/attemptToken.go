package utils

import (
	"fmt"
	"time"

	"osvita/config"

	"github.com/golang-jwt/jwt/v4"
)

// AttemptClaims is what a signed attempt token carries. The token is
// opaque to the client; on submit its jti must match the attempt row and
// the elapsed time must still be inside the quiz duration.
type AttemptClaims struct {
	QuizID    uint
	AttemptID uint
	JTI       string
	IssuedAt  time.Time
}

// SignAttemptToken issues the HS256 token returned when a quiz attempt
// starts. exp is iat + durationSec, so an expired token alone proves the
// attempt ran out of time.
func SignAttemptToken(quizID, attemptID uint, jti string, durationSec int) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"quizId":    quizID,
		"attemptId": attemptID,
		"jti":       jti,
		"typ":       "attempt",
		"iat":       now.Unix(),
		"exp":       now.Add(time.Duration(durationSec) * time.Second).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.JWTKey))
}

// ParseAttemptToken verifies an attempt token and extracts its claims.
// Expired tokens are rejected by the jwt library itself.
func ParseAttemptToken(tokenString string) (*AttemptClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTKey), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired attempt token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["typ"] != "attempt" {
		return nil, fmt.Errorf("invalid attempt token payload")
	}

	quizID, ok1 := claims["quizId"].(float64)
	attemptID, ok2 := claims["attemptId"].(float64)
	jti, ok3 := claims["jti"].(string)
	iat, ok4 := claims["iat"].(float64)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil, fmt.Errorf("invalid attempt token payload")
	}

	return &AttemptClaims{
		QuizID:    uint(quizID),
		AttemptID: uint(attemptID),
		JTI:       jti,
		IssuedAt:  time.Unix(int64(iat), 0),
	}, nil
}
