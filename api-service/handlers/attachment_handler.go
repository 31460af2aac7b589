package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"taskhive-backend/shared/database"
	"taskhive-backend/shared/database/models"

	"taskhive-backend/api-service/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	attachmentService     *services.AttachmentService
	attachmentServiceOnce sync.Once
	attachmentServiceErr  error
)

// getAttachmentService initializes the MinIO-backed store on first use so the
// API keeps serving when no object store is configured.
func getAttachmentService() (*services.AttachmentService, error) {
	attachmentServiceOnce.Do(func() {
		attachmentService, attachmentServiceErr = services.NewAttachmentService()
	})
	return attachmentService, attachmentServiceErr
}

// UploadTodoAttachment uploads a file and appends its URL to the todo's attachments
// @Summary Upload a todo attachment
// @Description Upload a file to object storage and append its URL to the todo's attachment list
// @Tags todos
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Todo ID"
// @Param file formData file true "Attachment file"
// @Success 200 {object} TodoResponse
// @Failure 404 {object} map[string]string
// @Router /todos/{id}/attachments [post]
func UploadTodoAttachment(ctx *gin.Context) {
	id := strings.TrimSpace(ctx.Param("id"))
	if id == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Valid todo ID is required", "code": "INVALID_ID"})
		return
	}

	db := database.DB

	var todo models.Todo
	if err := db.Where("id = ?", id).First(&todo).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Todo not found", "code": "TODO_NOT_FOUND"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "File is required", "code": "MISSING_FILE"})
		return
	}

	service, err := getAttachmentService()
	if err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "Attachment storage is not available", "code": "STORAGE_UNAVAILABLE"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	defer file.Close()

	objectURL, err := service.UploadAttachment(
		ctx.Request.Context(),
		todo.ID,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
		fileHeader.Size,
	)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	attachments := decodeAttachmentList(todo.Attachments)
	attachments = append(attachments, objectURL)

	encoded, err := json.Marshal(attachments)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	stored := string(encoded)

	if err := db.Model(&todo).Update("attachments", stored).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	todo.Attachments = &stored

	ctx.JSON(http.StatusOK, todoToResponse(todo))
}

// decodeAttachmentList returns the stored attachments as a string slice,
// tolerating legacy non-array payloads.
func decodeAttachmentList(stored *string) []string {
	if stored == nil || *stored == "" {
		return []string{}
	}

	var list []string
	if err := json.Unmarshal([]byte(*stored), &list); err == nil {
		return list
	}

	var anyList []interface{}
	if err := json.Unmarshal([]byte(*stored), &anyList); err == nil {
		result := make([]string, 0, len(anyList))
		for _, item := range anyList {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		return result
	}

	return []string{*stored}
}
