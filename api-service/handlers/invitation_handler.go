package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"taskhive-backend/shared/clients"
	"taskhive-backend/shared/database"
	"taskhive-backend/shared/database/models"
	"taskhive-backend/shared/utils/membership"
	"taskhive-backend/shared/utils/query"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateInvitationRequest represents request body for creating an invitation
type CreateInvitationRequest struct {
	Email          string  `json:"email"`
	OrganizationID string  `json:"organizationId"`
	Role           string  `json:"role"`
	ProjectID      *string `json:"projectId"`
	InvitedBy      *string `json:"invitedBy"`
}

// AcceptInvitationRequest represents request body for accepting or rejecting
type AcceptInvitationRequest struct {
	UserID string `json:"userId"`
	Reject bool   `json:"reject"`
}

var notificationClient = clients.NewNotificationClient()

// GetInvitations lists invitations with conjunctive filters
// @Summary List invitations
// @Description List invitations filtered by organization, project, email and status (default pending)
// @Tags invitations
// @Accept json
// @Produce json
// @Param organizationId query string false "Filter by organization"
// @Param projectId query string false "Filter by project"
// @Param email query string false "Filter by invitee email"
// @Param status query string false "Filter by status (default pending)"
// @Param limit query int false "Page size (max 100, default 10)"
// @Param offset query int false "Offset (default 0)"
// @Success 200 {array} models.Invitation
// @Failure 400 {object} map[string]string
// @Router /invitations [get]
func GetInvitations(ctx *gin.Context) {
	db := database.DB
	params := query.ParseListParams(ctx)

	dbQuery := db.Model(&models.Invitation{})

	if organizationID, ok := ctx.GetQuery("organizationId"); ok {
		if strings.TrimSpace(organizationID) == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Valid organizationId is required", "code": "INVALID_ORGANIZATION_ID"})
			return
		}
		dbQuery = dbQuery.Where("organization_id = ?", organizationID)
	}

	if projectID, ok := ctx.GetQuery("projectId"); ok {
		if strings.TrimSpace(projectID) == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Valid projectId is required", "code": "INVALID_PROJECT_ID"})
			return
		}
		dbQuery = dbQuery.Where("project_id = ?", projectID)
	}

	if email := ctx.Query("email"); email != "" {
		dbQuery = dbQuery.Where("email = ?", strings.ToLower(strings.TrimSpace(email)))
	}

	status := ctx.DefaultQuery("status", models.InvitationStatusPending)
	dbQuery = dbQuery.Where("status = ?", status)

	var invitations []models.Invitation
	if err := query.ApplyPagination(dbQuery, params).Find(&invitations).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if invitations == nil {
		invitations = []models.Invitation{}
	}
	ctx.JSON(http.StatusOK, invitations)
}

// GetInvitation retrieves a single invitation by ID
// @Summary Get invitation by ID
// @Tags invitations
// @Accept json
// @Produce json
// @Param id path string true "Invitation ID"
// @Success 200 {object} models.Invitation
// @Failure 404 {object} map[string]string
// @Router /invitations/{id} [get]
func GetInvitation(ctx *gin.Context) {
	id := strings.TrimSpace(ctx.Param("id"))
	if id == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Valid invitation ID is required", "code": "INVALID_ID"})
		return
	}

	var invitation models.Invitation
	if err := database.DB.Where("id = ?", id).First(&invitation).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found", "code": "INVITATION_NOT_FOUND"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, invitation)
}

// CreateInvitation creates an invitation with a fixed 7-day expiry
// @Summary Create an invitation
// @Description Create an invitation; a nil projectId grants access to all projects of the organization
// @Tags invitations
// @Accept json
// @Produce json
// @Param invitation body CreateInvitationRequest true "Invitation"
// @Success 201 {object} models.Invitation
// @Failure 400 {object} map[string]string
// @Router /invitations [post]
func CreateInvitation(ctx *gin.Context) {
	var req CreateInvitationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "INVALID_BODY"})
		return
	}

	if strings.TrimSpace(req.Email) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Email is required", "code": "MISSING_EMAIL"})
		return
	}

	if strings.TrimSpace(req.OrganizationID) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "organizationId is required", "code": "MISSING_ORGANIZATION_ID"})
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

	invitation := models.Invitation{
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		OrganizationID: strings.TrimSpace(req.OrganizationID),
		Role:           role,
		Status:         models.InvitationStatusPending,
	}

	if req.ProjectID != nil {
		trimmed := strings.TrimSpace(*req.ProjectID)
		if trimmed == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Valid projectId is required when provided", "code": "INVALID_PROJECT_ID"})
			return
		}
		invitation.ProjectID = &trimmed
	}

	if req.InvitedBy != nil {
		trimmed := strings.TrimSpace(*req.InvitedBy)
		if trimmed == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Valid invitedBy is required when provided", "code": "INVALID_INVITED_BY"})
			return
		}
		invitation.InvitedBy = &trimmed
	}

	// Fixed 7-day validity window, anchored to the creation instant.
	invitation.CreatedAt = time.Now().UTC()
	invitation.ExpiresAt = invitation.CreatedAt.Add(models.InvitationTTL)

	if err := database.DB.Create(&invitation).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// The invitation row is committed; email delivery failure never reverses it.
	go sendInvitationEmail(invitation)

	ctx.JSON(http.StatusCreated, invitation)
}

// sendInvitationEmail resolves display names and asks the notification
// service to email the invitee. Failures are logged only.
func sendInvitationEmail(invitation models.Invitation) {
	db := database.DB

	var org models.Organization
	if err := db.Where("id = ?", invitation.OrganizationID).First(&org).Error; err != nil {
		log.Printf("Skipping invitation email %s: organization lookup failed: %v", invitation.ID, err)
		return
	}

	inviterName := "Someone"
	if invitation.InvitedBy != nil {
		var inviter models.User
		if err := db.Where("id = ?", *invitation.InvitedBy).First(&inviter).Error; err == nil {
			inviterName = inviter.Name
			if inviterName == "" {
				inviterName = inviter.Email
			}
		}
	}

	projectName := ""
	if invitation.ProjectID != nil {
		var project models.Project
		if err := db.Where("id = ?", *invitation.ProjectID).First(&project).Error; err == nil {
			projectName = project.Name
		}
	}

	err := notificationClient.SendInvitationEmail(clients.InvitationEmailRequest{
		Email:            invitation.Email,
		InvitationID:     invitation.ID,
		OrganizationName: org.Name,
		ProjectName:      projectName,
		InviterName:      inviterName,
		Role:             invitation.Role,
	})
	if err != nil {
		log.Printf("Failed to send invitation email for %s: %v", invitation.ID, err)
	}
}

// ProcessInvitation accepts or rejects a pending invitation
// @Summary Accept or reject an invitation
// @Description Accept ({userId}) or reject ({reject:true}) a pending, unexpired invitation. Acceptance creates the organization membership and the project memberships the invitation grants, atomically.
// @Tags invitations
// @Accept json
// @Produce json
// @Param id path string true "Invitation ID"
// @Param body body AcceptInvitationRequest true "Accept or reject"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /invitations/{id}/accept [post]
func ProcessInvitation(ctx *gin.Context) {
	id := strings.TrimSpace(ctx.Param("id"))
	if id == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Valid invitation ID is required", "code": "INVALID_ID"})
		return
	}

	var req AcceptInvitationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "INVALID_BODY"})
		return
	}

	db := database.DB

	var invitation models.Invitation
	if err := db.Where("id = ?", id).First(&invitation).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found", "code": "INVITATION_NOT_FOUND"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if invitation.Status != models.InvitationStatusPending {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": "Invitation has already been " + invitation.Status,
			"code":  "INVITATION_ALREADY_PROCESSED",
		})
		return
	}

	if invitation.Expired(time.Now().UTC()) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invitation has expired", "code": "INVITATION_EXPIRED"})
		return
	}

	if req.Reject {
		invitation.Status = models.InvitationStatusRejected
		if err := db.Model(&invitation).Update("status", models.InvitationStatusRejected).Error; err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{
			"message":    "Invitation declined",
			"invitation": invitation,
		})
		return
	}

	if strings.TrimSpace(req.UserID) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "User ID is required", "code": "MISSING_USER_ID"})
		return
	}
	userID := strings.TrimSpace(req.UserID)

	var orgMember models.OrganizationMember
	var projectMembers []models.ProjectMember

	// Membership fan-out and the status flip are one atomic unit.
	err := db.Transaction(func(tx *gorm.DB) error {
		joinedAt := time.Now().UTC()

		orgMember = models.OrganizationMember{
			OrganizationID: invitation.OrganizationID,
			UserID:         userID,
			Role:           invitation.Role,
			JoinedAt:       joinedAt,
		}
		if err := firstOrCreateOrgMember(tx, &orgMember); err != nil {
			return err
		}

		var projectIDs []string
		if invitation.ProjectID != nil {
			projectIDs = []string{*invitation.ProjectID}
		} else {
			// Snapshot of the organization's projects at acceptance time;
			// projects created later are not granted retroactively.
			if err := tx.Model(&models.Project{}).
				Where("organization_id = ?", invitation.OrganizationID).
				Pluck("id", &projectIDs).Error; err != nil {
				return err
			}
		}

		for _, projectID := range projectIDs {
			member := models.ProjectMember{
				ProjectID: projectID,
				UserID:    userID,
				Role:      invitation.Role,
				JoinedAt:  joinedAt,
			}
			if err := firstOrCreateProjectMember(tx, &member); err != nil {
				return err
			}
			projectMembers = append(projectMembers, member)
		}

		invitation.Status = models.InvitationStatusAccepted
		return tx.Model(&models.Invitation{}).
			Where("id = ?", invitation.ID).
			Update("status", models.InvitationStatusAccepted).Error
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	membership.InvalidateOrganizationRole(invitation.OrganizationID, userID)
	for _, member := range projectMembers {
		membership.InvalidateProjectRole(member.ProjectID, userID)
	}

	if projectMembers == nil {
		projectMembers = []models.ProjectMember{}
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message":            "Invitation accepted successfully",
		"invitation":         invitation,
		"organizationMember": orgMember,
		"projectMembers":     projectMembers,
	})
}

// firstOrCreateOrgMember creates the membership unless the (org, user) pair
// already exists; the unique index backs this up under concurrency.
func firstOrCreateOrgMember(tx *gorm.DB, member *models.OrganizationMember) error {
	var existing models.OrganizationMember
	err := tx.Where("organization_id = ? AND user_id = ?", member.OrganizationID, member.UserID).
		First(&existing).Error
	if err == nil {
		*member = existing
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return tx.Create(member).Error
}

func firstOrCreateProjectMember(tx *gorm.DB, member *models.ProjectMember) error {
	var existing models.ProjectMember
	err := tx.Where("project_id = ? AND user_id = ?", member.ProjectID, member.UserID).
		First(&existing).Error
	if err == nil {
		*member = existing
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return tx.Create(member).Error
}

// DeleteInvitation revokes an invitation unconditionally
// @Summary Delete an invitation
// @Description Delete an invitation regardless of its status
// @Tags invitations
// @Accept json
// @Produce json
// @Param id query string true "Invitation ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /invitations [delete]
func DeleteInvitation(ctx *gin.Context) {
	id := strings.TrimSpace(ctx.Query("id"))
	if id == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Valid ID is required", "code": "INVALID_ID"})
		return
	}

	db := database.DB

	var invitation models.Invitation
	if err := db.Where("id = ?", id).First(&invitation).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found", "code": "NOT_FOUND"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := db.Delete(&invitation).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":    "Invitation deleted successfully",
		"invitation": invitation,
	})
}
