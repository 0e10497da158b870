package adminController

import (
	"log"
	"time"

	"osvita/database"
	"osvita/middleware"
	"osvita/models"
	"osvita/utils"

	"github.com/gofiber/fiber/v2"
)

// ListUsers returns a paginated user list
func ListUsers(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedList").(*struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	page := *reqData.Page
	limit := *reqData.Limit
	offset := (page - 1) * limit

	db := database.Database.Db

	var total int64
	db.Model(&models.User{}).Count(&total)

	var users []models.User
	if err := db.Order("id asc").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch users!", nil)
	}
	for i := range users {
		users[i].Password = ""
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Users fetched successfully!", fiber.Map{
		"users": users,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// ChangeUserRole sets a user's role
func ChangeUserRole(c *fiber.Ctx) error {
	actorID := c.Locals("userId").(uint)
	targetID := c.Locals("targetUserID").(uint)

	reqData, ok := c.Locals("validatedRole").(*struct {
		Role string `json:"role"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var user models.User
	if err := db.First(&user, targetID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	oldRole := user.Role
	user.Role = reqData.Role
	if err := db.Save(&user).Error; err != nil {
		log.Printf("Error changing user role: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to change role!", nil)
	}

	utils.RecordAudit(actorID, "ROLE_CHANGE", "user", user.ID, map[string]interface{}{
		"from": oldRole,
		"to":   user.Role,
	})

	user.Password = ""
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Role changed successfully!", user)
}

// BlockUser blocks or unblocks a user
func BlockUser(c *fiber.Ctx) error {
	actorID := c.Locals("userId").(uint)
	targetID := c.Locals("targetUserID").(uint)

	reqData, ok := c.Locals("validatedBlock").(*struct {
		Blocked bool `json:"blocked"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var user models.User
	if err := db.First(&user, targetID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	user.IsBlocked = reqData.Blocked
	user.BlockedUntil = nil
	user.FailedLoginAttempts = 0
	if err := db.Save(&user).Error; err != nil {
		log.Printf("Error blocking user: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update user!", nil)
	}

	// A blocked user loses every live session
	if reqData.Blocked {
		now := time.Now()
		db.Model(&models.RefreshToken{}).
			Where("user_id = ? AND revoked_at IS NULL", user.ID).
			Update("revoked_at", now)
	}

	action := "UNBLOCK"
	if reqData.Blocked {
		action = "BLOCK"
	}
	utils.RecordAudit(actorID, action, "user", user.ID, nil)

	user.Password = ""
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User updated successfully!", user)
}

// DeleteUser soft-deletes a user and revokes their sessions
func DeleteUser(c *fiber.Ctx) error {
	actorID := c.Locals("userId").(uint)
	targetID := c.Locals("targetUserID").(uint)

	if actorID == targetID {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "You cannot delete your own account!", nil)
	}

	db := database.Database.Db

	var user models.User
	if err := db.First(&user, targetID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	if err := db.Delete(&user).Error; err != nil {
		log.Printf("Error deleting user: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete user!", nil)
	}

	now := time.Now()
	db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", user.ID).
		Update("revoked_at", now)

	utils.RecordAudit(actorID, "DELETE", "user", user.ID, nil)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User deleted successfully!", nil)
}

// RestoreUser brings back a soft-deleted user
func RestoreUser(c *fiber.Ctx) error {
	actorID := c.Locals("userId").(uint)
	targetID := c.Locals("targetUserID").(uint)

	db := database.Database.Db

	var user models.User
	if err := db.Unscoped().First(&user, targetID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}
	if !user.DeletedAt.Valid {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "User is not deleted!", nil)
	}

	if err := db.Unscoped().Model(&user).Update("deleted_at", nil).Error; err != nil {
		log.Printf("Error restoring user: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to restore user!", nil)
	}

	utils.RecordAudit(actorID, "RESTORE", "user", user.ID, nil)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User restored successfully!", nil)
}

// RestoreMaterial brings back a soft-deleted material
func RestoreMaterial(c *fiber.Ctx) error {
	actorID := c.Locals("userId").(uint)
	materialID := c.Locals("materialID").(uint)

	db := database.Database.Db

	var material models.Material
	if err := db.Unscoped().First(&material, materialID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Material not found!", nil)
	}
	if !material.DeletedAt.Valid {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Material is not deleted!", nil)
	}

	if err := db.Unscoped().Model(&material).Update("deleted_at", nil).Error; err != nil {
		log.Printf("Error restoring material: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to restore material!", nil)
	}

	utils.RecordAudit(actorID, "RESTORE", "material", material.ID, nil)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Material restored successfully!", material)
}

// ListAuditLogs returns audit entries, optionally filtered by entity or actor
func ListAuditLogs(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedList").(*struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	page := *reqData.Page
	limit := *reqData.Limit
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&models.AuditLog{})
	if entity := c.Query("entity"); entity != "" {
		db = db.Where("entity = ?", entity)
	}
	if actor := c.QueryInt("actor_id"); actor > 0 {
		db = db.Where("actor_id = ?", actor)
	}

	var total int64
	db.Count(&total)

	var logs []models.AuditLog
	if err := db.Order("id desc").Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch audit logs!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Audit logs fetched successfully!", fiber.Map{
		"logs":  logs,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// Dashboard returns platform-wide counters
func Dashboard(c *fiber.Ctx) error {
	db := database.Database.Db

	var users, topics, materials, quizzes, attempts int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.Topic{}).Count(&topics)
	db.Model(&models.Material{}).Count(&materials)
	db.Model(&models.Quiz{}).Count(&quizzes)
	db.Model(&models.QuizAttempt{}).Where("status = ?", models.AttemptSubmitted).Count(&attempts)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully!", fiber.Map{
		"users":              users,
		"topics":             topics,
		"materials":          materials,
		"quizzes":            quizzes,
		"submitted_attempts": attempts,
	})
}
