package controller

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"collabhub/config"
	"collabhub/models"
	"collabhub/store"
	"collabhub/utils"
)

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".xlsx": true,
	".pptx": true,
	".txt":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

type DeleteFileRequest struct {
	TeamID uint `json:"teamId" validate:"required"`
}

func UploadFile(c *fiber.Ctx) error {
	teamID := utils.ParseUint(c.Params("teamId"))
	if teamID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid team id")
	}
	userID := actorID(c)

	if err := store.NewMembershipStore(config.DB).RequireMember(userID, teamID); err != nil {
		return utils.StoreError(c, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "No file uploaded")
	}

	maxSize := int64(config.AppConfig.MaxUploadMB) << 20
	if maxSize > 0 && fileHeader.Size > maxSize {
		return utils.ErrorResponse(c, fiber.StatusBadRequest,
			fmt.Sprintf("File exceeds the %d MB limit", config.AppConfig.MaxUploadMB))
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedExtensions[ext] {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid file type")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to read upload")
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	objectKey := fmt.Sprintf("%d/uploads/%d-%s", teamID, time.Now().UnixMilli(), fileHeader.Filename)

	if err := Storage.Save(c.Context(), objectKey, src, fileHeader.Size, contentType); err != nil {
		logrus.WithError(err).WithField("object_key", objectKey).Error("object upload failed")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store file")
	}

	file := models.File{
		TeamID:       teamID,
		UserID:       userID,
		OriginalName: fileHeader.Filename,
		Extension:    ext,
		Size:         fileHeader.Size,
		ContentType:  contentType,
		Bucket:       config.AppConfig.Minio.Bucket,
		ObjectKey:    objectKey,
	}
	if err := config.DB.Create(&file).Error; err != nil {
		// Keep the store consistent with the table.
		if derr := Storage.Delete(c.Context(), objectKey); derr != nil {
			logrus.WithError(derr).WithField("object_key", objectKey).Warn("failed to delete stored object")
		}
		return utils.StoreError(c, err)
	}

	notifyTeamUpload(&file, userID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "File uploaded successfully",
		"file":    file,
	})
}

// notifyTeamUpload fans an upload notice out to every other team member.
// Failures are logged, not surfaced; the upload itself already succeeded.
func notifyTeamUpload(file *models.File, uploaderID uint) {
	var recipientIDs []uint
	err := config.DB.Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id != ?", file.TeamID, uploaderID).
		Pluck("user_id", &recipientIDs).Error
	if err != nil {
		logrus.WithError(err).Warn("failed to resolve notification recipients")
		return
	}
	if len(recipientIDs) == 0 {
		return
	}

	var team models.Team
	if err := config.DB.First(&team, file.TeamID).Error; err != nil {
		logrus.WithError(err).Warn("failed to load team for notification")
		return
	}

	_, err = store.NewNotificationStore(config.DB).Create(
		file.TeamID,
		"file_upload",
		fmt.Sprintf("%s uploaded to team %s", file.OriginalName, team.Name),
		fmt.Sprintf("/teams/%d/files/%d", file.TeamID, file.ID),
		recipientIDs,
	)
	if err != nil {
		logrus.WithError(err).Warn("failed to create upload notification")
	}
}

func ListFiles(c *fiber.Ctx) error {
	teamID := utils.ParseUint(c.Params("teamId"))
	if teamID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid team id")
	}

	if err := store.NewMembershipStore(config.DB).RequireMember(actorID(c), teamID); err != nil {
		return utils.StoreError(c, err)
	}

	var files []models.File
	err := config.DB.Where("team_id = ?", teamID).
		Order("created_at DESC").
		Find(&files).Error
	if err != nil {
		return utils.StoreError(c, err)
	}
	return c.JSON(fiber.Map{"files": files})
}

func DownloadFile(c *fiber.Ctx) error {
	fileID := utils.ParseUint(c.Params("fileId"))
	if fileID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid file id")
	}

	var file models.File
	if err := config.DB.First(&file, fileID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "File not found")
	}

	if err := store.NewMembershipStore(config.DB).RequireMember(actorID(c), file.TeamID); err != nil {
		return utils.StoreError(c, err)
	}

	obj, err := Storage.Load(c.Context(), file.ObjectKey)
	if err != nil {
		logrus.WithError(err).WithField("object_key", file.ObjectKey).Error("object download failed")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to download file")
	}

	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.OriginalName))
	return c.SendStream(obj, int(file.Size))
}

func DeleteFile(c *fiber.Ctx) error {
	fileID := utils.ParseUint(c.Params("fileId"))
	if fileID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid file id")
	}

	var file models.File
	if err := config.DB.First(&file, fileID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "File not found")
	}

	// Only team admins may delete stored files.
	if err := store.NewMembershipStore(config.DB).RequireAdmin(actorID(c), file.TeamID); err != nil {
		return utils.StoreError(c, err)
	}

	if err := config.DB.Delete(&models.File{}, file.ID).Error; err != nil {
		return utils.StoreError(c, err)
	}

	if err := Storage.Delete(c.Context(), file.ObjectKey); err != nil {
		logrus.WithError(err).WithField("object_key", file.ObjectKey).Warn("failed to delete stored object")
	}

	return c.JSON(fiber.Map{"message": "File deleted successfully"})
}
