package utils

import (
	"log"
	"strconv"
	"time"

	"osvita/database"
	"osvita/models"

	"github.com/robfig/cron/v3"
)

// PurgeRetentionDays is how long soft-deleted rows are kept before the
// daily job removes them for good
const PurgeRetentionDays = 30

func logScheduler(message string) {
	log.Printf("[SCHEDULER %s] %s", time.Now().Format(time.RFC3339), message)
}

// expireStaleAttempts marks IN_PROGRESS attempts whose quiz duration has
// elapsed as EXPIRED, so abandoned attempts don't linger forever.
func expireStaleAttempts() {
	db := database.Database.Db
	now := time.Now()

	var attempts []models.QuizAttempt
	if err := db.Where("status = ?", models.AttemptInProgress).Find(&attempts).Error; err != nil {
		logScheduler("Error fetching in-progress attempts: " + err.Error())
		return
	}

	for _, attempt := range attempts {
		var quiz models.Quiz
		if err := db.First(&quiz, attempt.QuizID).Error; err != nil {
			continue
		}
		if now.After(attempt.StartedAt.Add(time.Duration(quiz.DurationSec) * time.Second)) {
			attempt.Status = models.AttemptExpired
			if err := db.Save(&attempt).Error; err != nil {
				logScheduler("Error expiring attempt: " + err.Error())
			}
		}
	}
}

// cleanupRefreshTokens drops refresh tokens that can never be redeemed again
func cleanupRefreshTokens() {
	db := database.Database.Db
	now := time.Now()

	result := db.Unscoped().
		Where("expires_at < ? OR revoked_at IS NOT NULL", now).
		Delete(&models.RefreshToken{})
	if result.Error != nil {
		logScheduler("Error cleaning refresh tokens: " + result.Error.Error())
		return
	}
	if result.RowsAffected > 0 {
		logScheduler("Removed " + strconv.FormatInt(result.RowsAffected, 10) + " dead refresh tokens")
	}
}

// purgeSoftDeleted hard-deletes rows soft-deleted longer ago than the
// retention window.
func purgeSoftDeleted() {
	db := database.Database.Db
	cutoff := time.Now().AddDate(0, 0, -PurgeRetentionDays)

	targets := []interface{}{
		&models.Material{},
		&models.Quiz{},
		&models.Question{},
		&models.Option{},
		&models.Topic{},
		&models.File{},
	}

	for _, target := range targets {
		result := db.Unscoped().
			Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
			Delete(target)
		if result.Error != nil {
			logScheduler("Error purging soft-deleted rows: " + result.Error.Error())
		}
	}
}

// StartSchedulers registers and starts the background cron jobs
func StartSchedulers() *cron.Cron {
	c := cron.New()

	// Every minute: time-box abandoned quiz attempts
	c.AddFunc("* * * * *", expireStaleAttempts)

	// Hourly: refresh token cleanup
	c.AddFunc("0 * * * *", cleanupRefreshTokens)

	// Daily at 03:00: purge old soft-deleted rows
	c.AddFunc("0 3 * * *", purgeSoftDeleted)

	c.Start()
	logScheduler("Background jobs started")
	return c
}
