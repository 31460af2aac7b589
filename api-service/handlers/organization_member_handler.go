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

// CreateOrganizationMemberRequest represents request body for adding a member
type CreateOrganizationMemberRequest struct {
	OrganizationID string `json:"organizationId"`
	UserID         string `json:"userId"`
	Role           string `json:"role"`
}

// UpdateMemberRequest represents request body for changing a member's role
type UpdateMemberRequest struct {
	Role string `json:"role"`
}

// GetOrganizationMembers lists organization memberships
// @Summary List organization members
// @Tags organization-members
// @Accept json
// @Produce json
// @Param organizationId query string false "Filter by organization"
// @Param userId query string false "Filter by user"
// @Param limit query int false "Page size (max 100, default 10)"
// @Param offset query int false "Offset (default 0)"
// @Success 200 {array} models.OrganizationMember
// @Router /organization-members [get]
func GetOrganizationMembers(ctx *gin.Context) {
	db := database.DB
	params := query.ParseListParams(ctx)

	dbQuery := db.Model(&models.OrganizationMember{})

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
		dbQuery = dbQuery.Where("user_id = ?", userID)
	}

	var members []models.OrganizationMember
	if err := query.ApplyPagination(dbQuery, params).Find(&members).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if members == nil {
		members = []models.OrganizationMember{}
	}
	ctx.JSON(http.StatusOK, members)
}

// CreateOrganizationMember adds a user to an organization
// @Summary Add an organization member
// @Tags organization-members
// @Accept json
// @Produce json
// @Param member body CreateOrganizationMemberRequest true "Membership"
// @Success 201 {object} models.OrganizationMember
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /organization-members [post]
func CreateOrganizationMember(ctx *gin.Context) {
	var req CreateOrganizationMemberRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "INVALID_BODY"})
		return
	}

	if strings.TrimSpace(req.OrganizationID) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "organizationId is required", "code": "MISSING_ORGANIZATION_ID"})
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
	organizationID := strings.TrimSpace(req.OrganizationID)
	userID := strings.TrimSpace(req.UserID)

	var existing models.OrganizationMember
	err := db.Where("organization_id = ? AND user_id = ?", organizationID, userID).
		First(&existing).Error
	if err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": "User is already a member of this organization", "code": "ALREADY_MEMBER"})
		return
	}
	if err != gorm.ErrRecordNotFound {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	member := models.OrganizationMember{
		OrganizationID: organizationID,
		UserID:         userID,
		Role:           role,
	}
	if err := db.Create(&member).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	membership.InvalidateOrganizationRole(organizationID, userID)
	ctx.JSON(http.StatusCreated, member)
}

// UpdateOrganizationMember changes a member's role
// @Summary Update an organization member's role
// @Tags organization-members
// @Accept json
// @Produce json
// @Param id query string true "Membership ID"
// @Param member body UpdateMemberRequest true "New role"
// @Success 200 {object} models.OrganizationMember
// @Failure 404 {object} map[string]string
// @Router /organization-members [put]
func UpdateOrganizationMember(ctx *gin.Context) {
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

	var member models.OrganizationMember
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

	membership.InvalidateOrganizationRole(member.OrganizationID, member.UserID)
	ctx.JSON(http.StatusOK, member)
}

// DeleteOrganizationMember removes a user from an organization
// @Summary Remove an organization member
// @Tags organization-members
// @Accept json
// @Produce json
// @Param id query string true "Membership ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /organization-members [delete]
func DeleteOrganizationMember(ctx *gin.Context) {
	id := strings.TrimSpace(ctx.Query("id"))
	if id == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Valid membership ID is required", "code": "INVALID_ID"})
		return
	}

	db := database.DB

	var member models.OrganizationMember
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

	membership.InvalidateOrganizationRole(member.OrganizationID, member.UserID)
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
		"member":  member,
	})
}

// GetOrganizationRole resolves a user's role in an organization
// @Summary Resolve organization role
// @Description Returns the user's role in the organization, or an empty role when not a member
// @Tags organization-members
// @Accept json
// @Produce json
// @Param organizationId query string true "Organization ID"
// @Param userId query string true "User ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /organization-members/role [get]
func GetOrganizationRole(ctx *gin.Context) {
	organizationID := strings.TrimSpace(ctx.Query("organizationId"))
	userID := strings.TrimSpace(ctx.Query("userId"))
	if organizationID == "" || userID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "organizationId and userId are required", "code": "MISSING_PARAMS"})
		return
	}

	role, err := membership.ResolveOrganizationRole(database.DB, organizationID, userID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"role": role})
}
