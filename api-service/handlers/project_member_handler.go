package handlers

import (
	"net/http"
	"strings"

	"taskhive-backend/shared/database"
	"taskhive-backend/shared/database/models"
	"taskhive-backend/shared/utils/membership"
	"taskhive-backend/shared/utils/query"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateProjectMemberRequest represents request body for adding a project member
type CreateProjectMemberRequest struct {
	ProjectID string `json:"projectId"`
	UserID    string `json:"userId"`
	Role      string `json:"role"`
}

// GetProjectMembers lists project memberships
// @Summary List project members
// @Tags project-members
// @Accept json
// @Produce json
// @Param projectId query string false "Filter by project"
// @Param userId query string false "Filter by user"
// @Param limit query int false "Page size (max 100, default 10)"
// @Param offset query int false "Offset (default 0)"
// @Success 200 {array} models.ProjectMember
// @Router /project-members [get]
func GetProjectMembers(ctx *gin.Context) {
	db := database.DB
	params := query.ParseListParams(ctx)

	dbQuery := db.Model(&models.ProjectMember{})

	if projectID, ok := ctx.GetQuery("projectId"); ok {
		if strings.TrimSpace(projectID) == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Valid projectId is required", "code": "INVALID_PROJECT_ID"})
			return
		}
		dbQuery = dbQuery.Where("project_id = ?", projectID)
	}

	if userID, ok := ctx.GetQuery("userId"); ok {
		if strings.TrimSpace(userID) == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Valid userId is required", "code": "INVALID_USER_ID"})
			return
		}
		dbQuery = dbQuery.Where("user_id = ?", userID)
	}

	var members []models.ProjectMember
	if err := query.ApplyPagination(dbQuery, params).Find(&members).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if members == nil {
		members = []models.ProjectMember{}
	}
	ctx.JSON(http.StatusOK, members)
}

// CreateProjectMember adds a user to a project
// @Summary Add a project member
// @Tags project-members
// @Accept json
// @Produce json
// @Param member body CreateProjectMemberRequest true "Membership"
// @Success 201 {object} models.ProjectMember
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /project-members [post]
func CreateProjectMember(ctx *gin.Context) {
	var req CreateProjectMemberRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "INVALID_BODY"})
		return
	}

	if strings.TrimSpace(req.ProjectID) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "projectId is required", "code": "MISSING_PROJECT_ID"})
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "userId is required", "code": "MISSING_USER_ID"})
		return
	}
	if strings.TrimSpace(req.Role) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Role is required", "code": "MISSING_ROLE"})
		return
	}
	role := strings.TrimSpace(req.Role)
	if !models.IsValidRole(role) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Role must be one of: owner, admin, member", "code": "INVALID_ROLE"})
		return
	}

	db := database.DB
	projectID := strings.TrimSpace(req.ProjectID)
	userID := strings.TrimSpace(req.UserID)

	var existing models.ProjectMember
	err := db.Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&existing).Error
	if err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": "User is already a member of this project", "code": "ALREADY_MEMBER"})
		return
	}
	if err != gorm.ErrRecordNotFound {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	member := models.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
	}
	if err := db.Create(&member).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	membership.InvalidateProjectRole(projectID, userID)
	ctx.JSON(http.StatusCreated, member)
}

// UpdateProjectMember changes a project member's role
// @Summary Update a project member's role
// @Tags project-members
// @Accept json
// @Produce json
// @Param id query string true "Membership ID"
// @Param member body UpdateMemberRequest true "New role"
// @Success 200 {object} models.ProjectMember
// @Failure 404 {object} map[string]string
// @Router /project-members [put]
func UpdateProjectMember(ctx *gin.Context) {
	id := strings.TrimSpace(ctx.Query("id"))
	if id == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Valid membership ID is required", "code": "INVALID_ID"})
		return
	}

	var req UpdateMemberRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "INVALID_BODY"})
		return
	}
	role := strings.TrimSpace(req.Role)
	if !models.IsValidRole(role) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Role must be one of: owner, admin, member", "code": "INVALID_ROLE"})
		return
	}

	db := database.DB

	var member models.ProjectMember
	if err := db.Where("id = ?", id).First(&member).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Member not found", "code": "MEMBER_NOT_FOUND"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := db.Model(&member).Update("role", role).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	member.Role = role

	membership.InvalidateProjectRole(member.ProjectID, member.UserID)
	ctx.JSON(http.StatusOK, member)
}

// DeleteProjectMember removes a user from a project
// @Summary Remove a project member
// @Tags project-members
// @Accept json
// @Produce json
// @Param id query string true "Membership ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /project-members [delete]
func DeleteProjectMember(ctx *gin.Context) {
	id := strings.TrimSpace(ctx.Query("id"))
	if id == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Valid membership ID is required", "code": "INVALID_ID"})
		return
	}

	db := database.DB

	var member models.ProjectMember
	if err := db.Where("id = ?", id).First(&member).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Member not found", "code": "MEMBER_NOT_FOUND"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := db.Delete(&member).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	membership.InvalidateProjectRole(member.ProjectID, member.UserID)
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
		"member":  member,
	})
}

// GetProjectRole resolves a user's role in a project
// @Summary Resolve project role
// @Description Returns the user's role in the project, or an empty role when not a member
// @Tags project-members
// @Accept json
// @Produce json
// @Param projectId query string true "Project ID"
// @Param userId query string true "User ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /project-members/role [get]
func GetProjectRole(ctx *gin.Context) {
	projectID := strings.TrimSpace(ctx.Query("projectId"))
	userID := strings.TrimSpace(ctx.Query("userId"))
	if projectID == "" || userID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "projectId and userId are required", "code": "MISSING_PARAMS"})
		return
	}

	role, err := membership.ResolveProjectRole(database.DB, projectID, userID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"role": role})
}
