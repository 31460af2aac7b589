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

// CreateOrganizationRequest represents request body for creating an organization
type CreateOrganizationRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	LogoURL     *string `json:"logoUrl"`
	CreatedBy   *string `json:"createdBy"`
}

// UpdateOrganizationRequest represents request body for updating an organization
type UpdateOrganizationRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	LogoURL     *string `json:"logoUrl"`
}

// GetOrganizations lists organizations, optionally scoped to a member
// @Summary List organizations
// @Description List organizations; userId restricts to organizations the user belongs to
// @Tags organizations
// @Accept json
// @Produce json
// @Param userId query string false "Filter by member user ID"
// @Param limit query int false "Page size (max 100, default 10)"
// @Param offset query int false "Offset (default 0)"
// @Success 200 {array} models.Organization
// @Router /organizations [get]
func GetOrganizations(ctx *gin.Context) {
	db := database.DB
	params := query.ParseListParams(ctx)

	dbQuery := db.Model(&models.Organization{})

	if userID, ok := ctx.GetQuery("userId"); ok {
		if strings.TrimSpace(userID) == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Valid userId is required", "code": "INVALID_USER_ID"})
			return
		}

		var orgIDs []string
		if err := db.Model(&models.OrganizationMember{}).
			Where("user_id = ?", userID).
			Pluck("organization_id", &orgIDs).Error; err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if len(orgIDs) == 0 {
			ctx.JSON(http.StatusOK, []models.Organization{})
			return
		}
		dbQuery = dbQuery.Where("id IN ?", orgIDs)
	}

	var organizations []models.Organization
	if err := query.ApplyPagination(dbQuery, params).Find(&organizations).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if organizations == nil {
		organizations = []models.Organization{}
	}
	ctx.JSON(http.StatusOK, organizations)
}

// GetOrganization retrieves a single organization by ID
// @Summary Get organization by ID
// @Tags organizations
// @Accept json
// @Produce json
// @Param id path string true "Organization ID"
// @Success 200 {object} models.Organization
// @Failure 404 {object} map[string]string
// @Router /organizations/{id} [get]
func GetOrganization(ctx *gin.Context) {
	id := strings.TrimSpace(ctx.Param("id"))
	if id == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Valid organization ID is required", "code": "INVALID_ID"})
		return
	}

	var organization models.Organization
	if err := database.DB.Where("id = ?", id).First(&organization).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Organization not found", "code": "ORGANIZATION_NOT_FOUND"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, organization)
}

// CreateOrganization creates a new organization
// @Summary Create an organization
// @Tags organizations
// @Accept json
// @Produce json
// @Param organization body CreateOrganizationRequest true "Organization"
// @Success 201 {object} models.Organization
// @Failure 400 {object} map[string]string
// @Router /organizations [post]
func CreateOrganization(ctx *gin.Context) {
	var req CreateOrganizationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "INVALID_BODY"})
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Name is required", "code": "MISSING_NAME"})
		return
	}

	organization := models.Organization{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		LogoURL:     req.LogoURL,
		CreatedBy:   req.CreatedBy,
	}

	if err := database.DB.Create(&organization).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, organization)
}

// UpdateOrganization updates an organization's fields
// @Summary Update an organization
// @Tags organizations
// @Accept json
// @Produce json
// @Param id path string true "Organization ID"
// @Param organization body UpdateOrganizationRequest true "Fields to update"
// @Success 200 {object} models.Organization
// @Failure 404 {object} map[string]string
// @Router /organizations/{id} [put]
func UpdateOrganization(ctx *gin.Context) {
	id := strings.TrimSpace(ctx.Param("id"))
	if id == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Valid organization ID is required", "code": "INVALID_ID"})
		return
	}

	db := database.DB

	var organization models.Organization
	if err := db.Where("id = ?", id).First(&organization).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Organization not found", "code": "ORGANIZATION_NOT_FOUND"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var req UpdateOrganizationRequest
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
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.LogoURL != nil {
		updates["logo_url"] = *req.LogoURL
	}

	if len(updates) > 0 {
		if err := db.Model(&organization).Updates(updates).Error; err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
	}

	if err := db.Where("id = ?", id).First(&organization).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, organization)
}

// DeleteOrganization deletes an organization and everything under it
// @Summary Delete an organization
// @Description Delete an organization with its projects, todos, members and invitations in one transaction
// @Tags organizations
// @Accept json
// @Produce json
// @Param id path string true "Organization ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /organizations/{id} [delete]
func DeleteOrganization(ctx *gin.Context) {
	id := strings.TrimSpace(ctx.Param("id"))
	if id == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Valid organization ID is required", "code": "INVALID_ID"})
		return
	}

	db := database.DB

	var organization models.Organization
	if err := db.Where("id = ?", id).First(&organization).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Organization not found", "code": "ORGANIZATION_NOT_FOUND"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var projectIDs []string
		if err := tx.Model(&models.Project{}).
			Where("organization_id = ?", id).
			Pluck("id", &projectIDs).Error; err != nil {
			return err
		}

		if len(projectIDs) > 0 {
			if err := tx.Where("project_id IN ?", projectIDs).Delete(&models.Todo{}).Error; err != nil {
				return err
			}
			if err := tx.Where("project_id IN ?", projectIDs).Delete(&models.ProjectMember{}).Error; err != nil {
				return err
			}
			if err := tx.Where("organization_id = ?", id).Delete(&models.Project{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("organization_id = ?", id).Delete(&models.OrganizationMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("organization_id = ?", id).Delete(&models.Invitation{}).Error; err != nil {
			return err
		}

		return tx.Delete(&organization).Error
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":      "Organization deleted successfully",
		"organization": organization,
	})
}
