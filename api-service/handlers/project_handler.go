package handlers

import (
	"net/http"
	"strings"

	"taskhive-backend/shared/database"
	"taskhive-backend/shared/database/models"
	"taskhive-backend/shared/utils/query"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateProjectRequest represents request body for creating a project
type CreateProjectRequest struct {
	Name           string  `json:"name"`
	OrganizationID string  `json:"organizationId"`
	LogoURL        *string `json:"logoUrl"`
	CreatedBy      *string `json:"createdBy"`
}

// UpdateProjectRequest represents request body for updating a project
type UpdateProjectRequest struct {
	Name    *string `json:"name"`
	LogoURL *string `json:"logoUrl"`
}

// GetProjects retrieves projects by ID, organization or member
// @Summary List projects or fetch one by ID
// @Description With id returns one project; organizationId or userId filter the list
// @Tags projects
// @Accept json
// @Produce json
// @Param id query string false "Project ID (single fetch)"
// @Param organizationId query string false "Filter by organization"
// @Param userId query string false "Filter by member user ID"
// @Param limit query int false "Page size (max 100, default 10)"
// @Param offset query int false "Offset (default 0)"
// @Success 200 {array} models.Project
// @Failure 404 {object} map[string]string
// @Router /projects [get]
func GetProjects(ctx *gin.Context) {
	db := database.DB

	if id, ok := ctx.GetQuery("id"); ok {
		if strings.TrimSpace(id) == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Valid project ID is required", "code": "INVALID_ID"})
			return
		}

		var project models.Project
		if err := db.Where("id = ?", id).First(&project).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found", "code": "PROJECT_NOT_FOUND"})
				return
			}
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		ctx.JSON(http.StatusOK, project)
		return
	}

	params := query.ParseListParams(ctx)
	dbQuery := db.Model(&models.Project{})

	if organizationID, ok := ctx.GetQuery("organizationId"); ok {
		if strings.TrimSpace(organizationID) == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Valid organizationId is required", "code": "INVALID_ORGANIZATION_ID"})
			return
		}
		dbQuery = dbQuery.Where("organization_id = ?", organizationID)
	}

	if userID, ok := ctx.GetQuery("userId"); ok {
		if strings.TrimSpace(userID) == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Valid userId is required", "code": "INVALID_USER_ID"})
			return
		}

		var projectIDs []string
		if err := db.Model(&models.ProjectMember{}).
			Where("user_id = ?", userID).
			Pluck("project_id", &projectIDs).Error; err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if len(projectIDs) == 0 {
			ctx.JSON(http.StatusOK, []models.Project{})
			return
		}
		dbQuery = dbQuery.Where("id IN ?", projectIDs)
	}

	var projects []models.Project
	if err := query.ApplyPagination(dbQuery, params).Find(&projects).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if projects == nil {
		projects = []models.Project{}
	}
	ctx.JSON(http.StatusOK, projects)
}

// CreateProject creates a new project in an organization
// @Summary Create a project
// @Tags projects
// @Accept json
// @Produce json
// @Param project body CreateProjectRequest true "Project"
// @Success 201 {object} models.Project
// @Failure 400 {object} map[string]string
// @Router /projects [post]
func CreateProject(ctx *gin.Context) {
	var req CreateProjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "INVALID_BODY"})
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Name is required", "code": "MISSING_NAME"})
		return
	}

	if strings.TrimSpace(req.OrganizationID) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "organizationId is required", "code": "MISSING_ORGANIZATION_ID"})
		return
	}

	project := models.Project{
		Name:           strings.TrimSpace(req.Name),
		OrganizationID: strings.TrimSpace(req.OrganizationID),
		LogoURL:        req.LogoURL,
		CreatedBy:      req.CreatedBy,
	}

	if err := database.DB.Create(&project).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, project)
}

// UpdateProject updates a project's fields
// @Summary Update a project
// @Tags projects
// @Accept json
// @Produce json
// @Param id query string true "Project ID"
// @Param project body UpdateProjectRequest true "Fields to update"
// @Success 200 {object} models.Project
// @Failure 404 {object} map[string]string
// @Router /projects [put]
func UpdateProject(ctx *gin.Context) {
	id := strings.TrimSpace(ctx.Query("id"))
	if id == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Valid project ID is required", "code": "INVALID_ID"})
		return
	}

	db := database.DB

	var project models.Project
	if err := db.Where("id = ?", id).First(&project).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found", "code": "PROJECT_NOT_FOUND"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var req UpdateProjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "INVALID_BODY"})
		return
	}

	updates := map[string]interface{}{}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Name must be a non-empty string", "code": "INVALID_NAME"})
			return
		}
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.LogoURL != nil {
		updates["logo_url"] = *req.LogoURL
	}

	if len(updates) > 0 {
		if err := db.Model(&project).Updates(updates).Error; err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
	}

	if err := db.Where("id = ?", id).First(&project).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, project)
}

// DeleteProject deletes a project with its todos and memberships
// @Summary Delete a project
// @Description Delete a project, its todos and its memberships in one transaction
// @Tags projects
// @Accept json
// @Produce json
// @Param id query string true "Project ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /projects [delete]
func DeleteProject(ctx *gin.Context) {
	id := strings.TrimSpace(ctx.Query("id"))
	if id == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Valid project ID is required", "code": "INVALID_ID"})
		return
	}

	db := database.DB

	var project models.Project
	if err := db.Where("id = ?", id).First(&project).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found", "code": "PROJECT_NOT_FOUND"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Todo{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&project).Error
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully",
		"project": project,
	})
}
