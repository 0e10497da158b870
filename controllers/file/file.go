package fileController

import (
	"log"

	"osvita/config"
	"osvita/database"
	"osvita/middleware"
	"osvita/models"
	"osvita/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestUpload creates a PENDING file row and returns a presigned PUT
// URL from the storage gateway. Without a gateway the client is told to
// POST the bytes to the direct-upload endpoint instead.
func RequestUpload(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)

	reqData, ok := c.Locals("validatedUpload").(*struct {
		Name string `json:"name"`
		Mime string `json:"mime"`
		Size int64  `json:"size"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	file := models.File{
		UploaderID: userID,
		ObjectKey:  uuid.NewString(),
		Name:       reqData.Name,
		Mime:       reqData.Mime,
		Size:       reqData.Size,
		Status:     models.FilePending,
	}

	if err := database.Database.Db.Create(&file).Error; err != nil {
		log.Printf("Error creating file row: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to register upload!", nil)
	}

	if !utils.StorageConfigured() {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Upload registered. Use direct upload.", fiber.Map{
			"file":       file,
			"upload_url": "/api/files/" + file.ObjectKey + "/upload",
		})
	}

	presigned, err := utils.RequestPresignedUpload(file.ObjectKey, file.Mime, file.Size)
	if err != nil {
		log.Printf("Error requesting presigned upload: %v", err)
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Storage gateway unavailable!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Upload registered.", fiber.Map{
		"file":       file,
		"upload_url": presigned.UploadURL,
		"public_url": presigned.PublicURL,
		"expires_in": presigned.ExpiresIn,
	})
}

// DirectUpload receives the multipart body for local-disk storage
func DirectUpload(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	objectKey := c.Params("key")

	db := database.Database.Db

	var file models.File
	if err := db.Where("object_key = ?", objectKey).First(&file).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "File not found!", nil)
	}
	if file.UploaderID != userID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Not your upload!", nil)
	}
	if file.Status == models.FileUploaded {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "File already uploaded!", nil)
	}

	header, err := c.FormFile("file")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Missing file part!", nil)
	}

	path, err := utils.SaveUploadedFile(header, config.AppConfig.UploadDir, file.ObjectKey)
	if err != nil {
		log.Printf("Error saving uploaded file: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to store file!", nil)
	}

	file.Status = models.FileUploaded
	file.Size = header.Size
	file.URL = utils.LocalFileURL(path)
	if err := db.Save(&file).Error; err != nil {
		log.Printf("Error updating file row: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to store file!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "File uploaded.", file)
}

// ConfirmUpload marks a gateway upload as completed
func ConfirmUpload(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	objectKey := c.Params("key")

	reqData, ok := c.Locals("validatedConfirm").(*struct {
		URL  string `json:"url"`
		Size int64  `json:"size"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var file models.File
	if err := db.Where("object_key = ?", objectKey).First(&file).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "File not found!", nil)
	}
	if file.UploaderID != userID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Not your upload!", nil)
	}

	file.Status = models.FileUploaded
	file.URL = reqData.URL
	if reqData.Size > 0 {
		file.Size = reqData.Size
	}
	if err := db.Save(&file).Error; err != nil {
		log.Printf("Error confirming upload: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to confirm upload!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Upload confirmed.", file)
}

// DeleteFile soft-deletes a file row and asks the gateway to drop the
// object (editor/admin)
func DeleteFile(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	fileID := c.Locals("fileID").(uint)

	db := database.Database.Db

	var file models.File
	if err := db.First(&file, fileID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "File not found!", nil)
	}

	if err := db.Delete(&file).Error; err != nil {
		log.Printf("Error deleting file: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete file!", nil)
	}

	if utils.StorageConfigured() {
		go func(key string) {
			if err := utils.DeleteStoredObject(key); err != nil {
				log.Printf("Error deleting stored object %s: %v", key, err)
			}
		}(file.ObjectKey)
	}

	utils.RecordAudit(userID, "DELETE", "file", file.ID, map[string]interface{}{"object_key": file.ObjectKey})
	return middleware.JsonResponse(c, fiber.StatusOK, true, "File deleted successfully!", nil)
}
