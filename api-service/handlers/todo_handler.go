package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"taskhive-backend/shared/database"
	"taskhive-backend/shared/database/models"
	"taskhive-backend/shared/utils/query"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TodoResponse represents a todo node for API responses. Attachments is the
// deserialized form of the stored JSON string.
type TodoResponse struct {
	ID          string      `json:"id"`
	Text        string      `json:"text"`
	Completed   bool        `json:"completed"`
	ProjectID   string      `json:"projectId"`
	ParentID    *string     `json:"parentId"`
	CreatedBy   *string     `json:"createdBy"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	Description *string     `json:"description"`
	Attachments interface{} `json:"attachments"`
}

// TodoWithSubtasksResponse annotates a todo with its direct children.
type TodoWithSubtasksResponse struct {
	TodoResponse
	Subtasks []TodoResponse `json:"subtasks"`
}

// CreateTodoRequest represents request body for creating a todo
type CreateTodoRequest struct {
	Text        string          `json:"text"`
	ProjectID   string          `json:"projectId"`
	Completed   *bool           `json:"completed"`
	ParentID    *string         `json:"parentId"`
	CreatedBy   *string         `json:"createdBy"`
	Description *string         `json:"description"`
	Attachments json.RawMessage `json:"attachments"`
}

// UpdateTodoRequest represents request body for updating a todo.
// RawMessage fields distinguish "absent" from "null" from a value.
type UpdateTodoRequest struct {
	Text        json.RawMessage `json:"text"`
	Completed   *bool           `json:"completed"`
	Description json.RawMessage `json:"description"`
	Attachments json.RawMessage `json:"attachments"`
	ParentID    json.RawMessage `json:"parentId"`
}

func todoToResponse(todo models.Todo) TodoResponse {
	return TodoResponse{
		ID:          todo.ID,
		Text:        todo.Text,
		Completed:   todo.Completed,
		ProjectID:   todo.ProjectID,
		ParentID:    todo.ParentID,
		CreatedBy:   todo.CreatedBy,
		CreatedAt:   todo.CreatedAt,
		UpdatedAt:   todo.UpdatedAt,
		Description: todo.Description,
		Attachments: decodeAttachments(todo.Attachments),
	}
}

// decodeAttachments parses the stored attachment string back to structured
// form; an unparseable value is returned as the raw string.
func decodeAttachments(stored *string) interface{} {
	if stored == nil {
		return nil
	}
	var value interface{}
	if err := json.Unmarshal([]byte(*stored), &value); err != nil {
		return *stored
	}
	return value
}

// encodeAttachments normalizes an incoming attachments payload to the stored
// string form. Arrays and objects are stored as their JSON text; a JSON
// string is stored as-is. Returns (nil, false) for other value kinds.
func encodeAttachments(raw json.RawMessage) (*string, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, false
	}
	switch trimmed[0] {
	case '[', '{':
		return &trimmed, true
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, false
		}
		return &s, true
	}
	return nil, false
}

func attachSubtasks(db *gorm.DB, todo models.Todo) (TodoWithSubtasksResponse, error) {
	var children []models.Todo
	if err := db.Where("parent_id = ?", todo.ID).Find(&children).Error; err != nil {
		return TodoWithSubtasksResponse{}, err
	}

	subtasks := make([]TodoResponse, 0, len(children))
	for _, child := range children {
		subtasks = append(subtasks, todoToResponse(child))
	}

	return TodoWithSubtasksResponse{
		TodoResponse: todoToResponse(todo),
		Subtasks:     subtasks,
	}, nil
}

// GetTodos retrieves a single todo by id or a filtered list
// @Summary Get todos
// @Description Get a single todo by id, or list todos filtered by project and user membership
// @Tags todos
// @Accept json
// @Produce json
// @Param id query string false "Todo ID (single fetch)"
// @Param projectId query string false "Filter by project"
// @Param userId query string false "Restrict to projects the user is a member of"
// @Param includeSubtasks query bool false "Attach direct children (default true)"
// @Param limit query int false "Page size (max 100, default 10)"
// @Param offset query int false "Offset (default 0)"
// @Success 200 {array} handlers.TodoWithSubtasksResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /todos [get]
func GetTodos(ctx *gin.Context) {
	db := database.DB
	includeSubtasks := ctx.DefaultQuery("includeSubtasks", "true") != "false"

	// Single todo by ID
	if id, ok := ctx.GetQuery("id"); ok {
		if strings.TrimSpace(id) == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Valid ID is required", "code": "INVALID_ID"})
			return
		}

		var todo models.Todo
		if err := db.Where("id = ?", id).First(&todo).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "Todo not found", "code": "TODO_NOT_FOUND"})
				return
			}
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		if !includeSubtasks {
			ctx.JSON(http.StatusOK, todoToResponse(todo))
			return
		}

		// One level of direct children only; deeper levels are fetched on demand.
		response, err := attachSubtasks(db, todo)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		ctx.JSON(http.StatusOK, response)
		return
	}

	params := query.ParseListParams(ctx)

	projectID, hasProjectID := ctx.GetQuery("projectId")
	if hasProjectID && strings.TrimSpace(projectID) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Valid project ID is required", "code": "INVALID_PROJECT_ID"})
		return
	}

	dbQuery := db.Model(&models.Todo{})

	// Filter by userId - show only todos from projects where user is a member
	if userID, ok := ctx.GetQuery("userId"); ok {
		if strings.TrimSpace(userID) == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Valid userId is required", "code": "INVALID_USER_ID"})
			return
		}

		var userProjectIDs []string
		if err := db.Model(&models.ProjectMember{}).
			Where("user_id = ?", userID).
			Pluck("project_id", &userProjectIDs).Error; err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		if len(userProjectIDs) == 0 {
			ctx.JSON(http.StatusOK, []TodoResponse{})
			return
		}

		dbQuery = dbQuery.Where("project_id IN ?", userProjectIDs)
	}

	if hasProjectID {
		dbQuery = dbQuery.Where("project_id = ?", projectID)
	}

	// Top-level results only when subtasks are attached
	if includeSubtasks {
		dbQuery = dbQuery.Where("parent_id IS NULL")
	}

	var todos []models.Todo
	if err := query.ApplyPagination(dbQuery, params).Find(&todos).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if !includeSubtasks {
		responses := make([]TodoResponse, 0, len(todos))
		for _, todo := range todos {
			responses = append(responses, todoToResponse(todo))
		}
		ctx.JSON(http.StatusOK, responses)
		return
	}

	responses := make([]TodoWithSubtasksResponse, 0, len(todos))
	for _, todo := range todos {
		response, err := attachSubtasks(db, todo)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		responses = append(responses, response)
	}
	ctx.JSON(http.StatusOK, responses)
}

// CreateTodo creates a new todo, optionally as a subtask
// @Summary Create a todo
// @Description Create a todo; a parent, when given, must exist and belong to the same project
// @Tags todos
// @Accept json
// @Produce json
// @Param todo body CreateTodoRequest true "Todo"
// @Success 201 {object} handlers.TodoWithSubtasksResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /todos [post]
func CreateTodo(ctx *gin.Context) {
	var req CreateTodoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "INVALID_BODY"})
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Text is required and must be a non-empty string", "code": "MISSING_TEXT"})
		return
	}

	if strings.TrimSpace(req.ProjectID) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Valid project ID is required", "code": "MISSING_PROJECT_ID"})
		return
	}

	db := database.DB
	projectID := strings.TrimSpace(req.ProjectID)

	var parentID *string
	if req.ParentID != nil {
		trimmed := strings.TrimSpace(*req.ParentID)
		if trimmed == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Valid parent ID is required when provided", "code": "INVALID_PARENT_ID"})
			return
		}

		var parent models.Todo
		if err := db.Where("id = ?", trimmed).First(&parent).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "Parent todo not found", "code": "PARENT_TODO_NOT_FOUND"})
				return
			}
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		if parent.ProjectID != projectID {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Parent todo must be in the same project", "code": "PARENT_PROJECT_MISMATCH"})
			return
		}

		parentID = &trimmed
	}

	now := time.Now().UTC()
	todo := models.Todo{
		Text:      strings.TrimSpace(req.Text),
		ProjectID: projectID,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if req.Completed != nil {
		todo.Completed = *req.Completed
	}
	if req.CreatedBy != nil && strings.TrimSpace(*req.CreatedBy) != "" {
		createdBy := strings.TrimSpace(*req.CreatedBy)
		todo.CreatedBy = &createdBy
	}
	if req.Description != nil && strings.TrimSpace(*req.Description) != "" {
		description := strings.TrimSpace(*req.Description)
		todo.Description = &description
	}
	if stored, ok := encodeAttachments(req.Attachments); ok {
		todo.Attachments = stored
	}

	if err := db.Create(&todo).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, TodoWithSubtasksResponse{
		TodoResponse: todoToResponse(todo),
		Subtasks:     []TodoResponse{},
	})
}

// UpdateTodo updates a todo, including reparenting with cycle detection
// @Summary Update a todo
// @Description Update todo fields; reparenting is rejected when it would create a cycle
// @Tags todos
// @Accept json
// @Produce json
// @Param id query string true "Todo ID"
// @Param todo body UpdateTodoRequest true "Fields to update"
// @Success 200 {object} handlers.TodoResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /todos [put]
func UpdateTodo(ctx *gin.Context) {
	id := strings.TrimSpace(ctx.Query("id"))
	if id == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Valid ID is required", "code": "INVALID_ID"})
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

	var req UpdateTodoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "INVALID_BODY"})
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}

	if req.Text != nil {
		var text string
		if err := json.Unmarshal(req.Text, &text); err != nil || strings.TrimSpace(text) == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Text must be a non-empty string", "code": "INVALID_TEXT"})
			return
		}
		updates["text"] = strings.TrimSpace(text)
	}

	if req.Completed != nil {
		updates["completed"] = *req.Completed
	}

	if req.Description != nil {
		if string(req.Description) == "null" {
			updates["description"] = nil
		} else {
			var description string
			if err := json.Unmarshal(req.Description, &description); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Description must be a string or null", "code": "INVALID_DESCRIPTION"})
				return
			}
			if strings.TrimSpace(description) == "" {
				updates["description"] = nil
			} else {
				updates["description"] = strings.TrimSpace(description)
			}
		}
	}

	if req.Attachments != nil {
		if string(req.Attachments) == "null" {
			updates["attachments"] = nil
		} else if stored, ok := encodeAttachments(req.Attachments); ok {
			updates["attachments"] = *stored
		}
	}

	if req.ParentID != nil {
		if code, message := resolveParentUpdate(db, &todo, req.ParentID, updates); code != "" {
			status := http.StatusBadRequest
			if code == "PARENT_TODO_NOT_FOUND" {
				status = http.StatusNotFound
			}
			ctx.JSON(status, gin.H{"error": message, "code": code})
			return
		}
	}

	if err := db.Model(&todo).Updates(updates).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// Re-read so the response reflects cleared columns as well.
	if err := db.Where("id = ?", id).First(&todo).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, todoToResponse(todo))
}

// resolveParentUpdate validates a parentId transition and records it in
// updates. It returns a non-empty error code on rejection.
func resolveParentUpdate(db *gorm.DB, todo *models.Todo, raw json.RawMessage, updates map[string]interface{}) (code, message string) {
	if string(raw) == "null" {
		updates["parent_id"] = nil
		return "", ""
	}

	var parentID string
	if err := json.Unmarshal(raw, &parentID); err != nil {
		return "INVALID_PARENT_ID", "Parent ID must be a valid string or null"
	}

	parentID = strings.TrimSpace(parentID)
	if parentID == "" {
		// Remove parent (make it a top-level task)
		updates["parent_id"] = nil
		return "", ""
	}

	if parentID == todo.ID {
		return "CIRCULAR_REFERENCE", "Task cannot be its own parent"
	}

	var parent models.Todo
	if err := db.Where("id = ?", parentID).First(&parent).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "PARENT_TODO_NOT_FOUND", "Parent todo not found"
		}
		return "INTERNAL", "Internal server error"
	}

	if parent.ProjectID != todo.ProjectID {
		return "PARENT_PROJECT_MISMATCH", "Parent todo must be in the same project"
	}

	circular, err := wouldCreateCycle(db, todo.ID, parentID)
	if err != nil {
		return "INTERNAL", "Internal server error"
	}
	if circular {
		return "CIRCULAR_REFERENCE", "Cannot create circular task relationship"
	}

	updates["parent_id"] = parentID
	return "", ""
}

// wouldCreateCycle walks the ancestor chain of the proposed parent. The walk
// is iterative with a visited set, so it terminates even on corrupt data.
func wouldCreateCycle(db *gorm.DB, todoID, newParentID string) (bool, error) {
	visited := make(map[string]bool)
	current := newParentID

	for current != "" && !visited[current] {
		if current == todoID {
			return true, nil
		}
		visited[current] = true

		var node models.Todo
		err := db.Select("id", "parent_id").Where("id = ?", current).First(&node).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return false, nil
			}
			return false, err
		}
		if node.ParentID == nil {
			return false, nil
		}
		current = *node.ParentID
	}

	return false, nil
}

// DeleteTodo deletes a todo and its entire descendant subtree
// @Summary Delete a todo
// @Description Delete a todo and all of its descendants in one transaction
// @Tags todos
// @Accept json
// @Produce json
// @Param id query string true "Todo ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /todos [delete]
func DeleteTodo(ctx *gin.Context) {
	id := strings.TrimSpace(ctx.Query("id"))
	if id == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Valid ID is required", "code": "INVALID_ID"})
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

	descendantIDs, err := collectDescendants(db, id)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// Subtree removal is atomic: descendants and target go in one transaction.
	err = db.Transaction(func(tx *gorm.DB) error {
		if len(descendantIDs) > 0 {
			if err := tx.Where("id IN ?", descendantIDs).Delete(&models.Todo{}).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(&models.Todo{}).Error
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":              "Todo deleted successfully",
		"deletedTodo":          todoToResponse(todo),
		"deletedSubtasksCount": len(descendantIDs),
	})
}

// collectDescendants gathers the full descendant set breadth-first with
// batched parent_id lookups and a visited set.
func collectDescendants(db *gorm.DB, rootID string) ([]string, error) {
	visited := map[string]bool{rootID: true}
	var all []string

	frontier := []string{rootID}
	for len(frontier) > 0 {
		var childIDs []string
		if err := db.Model(&models.Todo{}).
			Where("parent_id IN ?", frontier).
			Pluck("id", &childIDs).Error; err != nil {
			return nil, err
		}

		frontier = frontier[:0]
		for _, childID := range childIDs {
			if visited[childID] {
				continue
			}
			visited[childID] = true
			all = append(all, childID)
			frontier = append(frontier, childID)
		}
	}

	return all, nil
}
