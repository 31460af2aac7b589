package handlers

import (
	"net/http"
	"testing"
	"time"

	"taskhive-backend/shared/database/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateInvitationValidation(t *testing.T) {
	setupTestDB(t)
	router := newTestRouter()

	recorder := performRequest(router, http.MethodPost, "/api/invitations", gin.H{
		"organizationId": "org", "role": "member",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "MISSING_EMAIL", errorCode(t, recorder))

	recorder = performRequest(router, http.MethodPost, "/api/invitations", gin.H{
		"email": "a@b.com", "role": "member",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "MISSING_ORGANIZATION_ID", errorCode(t, recorder))

	recorder = performRequest(router, http.MethodPost, "/api/invitations", gin.H{
		"email": "a@b.com", "organizationId": "org",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "MISSING_ROLE", errorCode(t, recorder))

	recorder = performRequest(router, http.MethodPost, "/api/invitations", gin.H{
		"email": "a@b.com", "organizationId": "org", "role": "superuser",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "INVALID_ROLE", errorCode(t, recorder))
}

func TestCreateInvitationNormalizesAndExpires(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	org := createTestOrg(t, db, "Acme")

	before := time.Now().UTC()
	recorder := performRequest(router, http.MethodPost, "/api/invitations", gin.H{
		"email":          "  Jane@Example.COM ",
		"organizationId": org.ID,
		"role":           "admin",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	var invitation models.Invitation
	decodeBody(t, recorder, &invitation)
	assert.Equal(t, "jane@example.com", invitation.Email)
	assert.Equal(t, models.InvitationStatusPending, invitation.Status)
	assert.Nil(t, invitation.ProjectID)

	// expiresAt is exactly createdAt + 7 days
	assert.Equal(t, invitation.CreatedAt.Add(models.InvitationTTL), invitation.ExpiresAt)
	assert.False(t, invitation.CreatedAt.Before(before.Truncate(time.Second)))
}

func TestListInvitationsDefaultsToPending(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	org := createTestOrg(t, db, "Acme")
	now := time.Now().UTC()

	pending := models.Invitation{
		Email: "a@b.com", OrganizationID: org.ID, Role: models.RoleMember,
		Status: models.InvitationStatusPending, CreatedAt: now, ExpiresAt: now.Add(models.InvitationTTL),
	}
	accepted := models.Invitation{
		Email: "a@b.com", OrganizationID: org.ID, Role: models.RoleMember,
		Status: models.InvitationStatusAccepted, CreatedAt: now, ExpiresAt: now.Add(models.InvitationTTL),
	}
	require.NoError(t, db.Create(&pending).Error)
	require.NoError(t, db.Create(&accepted).Error)

	recorder := performRequest(router, http.MethodGet, "/api/invitations?email=A@B.com", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var list []models.Invitation
	decodeBody(t, recorder, &list)
	require.Len(t, list, 1)
	assert.Equal(t, pending.ID, list[0].ID)

	recorder = performRequest(router, http.MethodGet, "/api/invitations?email=a@b.com&status=accepted", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	decodeBody(t, recorder, &list)
	require.Len(t, list, 1)
	assert.Equal(t, accepted.ID, list[0].ID)
}

func TestProcessInvitationGuards(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	org := createTestOrg(t, db, "Acme")
	user := createTestUser(t, db, "Jane", "jane@example.com")
	now := time.Now().UTC()

	recorder := performRequest(router, http.MethodPost, "/api/invitations/missing/accept", gin.H{"userId": user.ID})
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "INVITATION_NOT_FOUND", errorCode(t, recorder))

	processed := models.Invitation{
		Email: "jane@example.com", OrganizationID: org.ID, Role: models.RoleMember,
		Status: models.InvitationStatusRejected, CreatedAt: now, ExpiresAt: now.Add(models.InvitationTTL),
	}
	require.NoError(t, db.Create(&processed).Error)

	recorder = performRequest(router, http.MethodPost, "/api/invitations/"+processed.ID+"/accept", gin.H{"userId": user.ID})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "INVITATION_ALREADY_PROCESSED", errorCode(t, recorder))

	expired := models.Invitation{
		Email: "jane@example.com", OrganizationID: org.ID, Role: models.RoleMember,
		Status: models.InvitationStatusPending, CreatedAt: now.Add(-8 * 24 * time.Hour),
		ExpiresAt: now.Add(-24 * time.Hour),
	}
	require.NoError(t, db.Create(&expired).Error)

	recorder = performRequest(router, http.MethodPost, "/api/invitations/"+expired.ID+"/accept", gin.H{"userId": user.ID})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "INVITATION_EXPIRED", errorCode(t, recorder))

	pending := models.Invitation{
		Email: "jane@example.com", OrganizationID: org.ID, Role: models.RoleMember,
		Status: models.InvitationStatusPending, CreatedAt: now, ExpiresAt: now.Add(models.InvitationTTL),
	}
	require.NoError(t, db.Create(&pending).Error)

	recorder = performRequest(router, http.MethodPost, "/api/invitations/"+pending.ID+"/accept", gin.H{})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "MISSING_USER_ID", errorCode(t, recorder))
}

func TestAcceptProjectInvitation(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	org := createTestOrg(t, db, "Acme")
	project := createTestProject(t, db, org.ID, "Website")
	createTestProject(t, db, org.ID, "Mobile")
	user := createTestUser(t, db, "Jane", "jane@example.com")
	now := time.Now().UTC()

	invitation := models.Invitation{
		Email: "jane@example.com", OrganizationID: org.ID, ProjectID: &project.ID,
		Role: models.RoleAdmin, Status: models.InvitationStatusPending,
		CreatedAt: now, ExpiresAt: now.Add(models.InvitationTTL),
	}
	require.NoError(t, db.Create(&invitation).Error)

	recorder := performRequest(router, http.MethodPost, "/api/invitations/"+invitation.ID+"/accept", gin.H{"userId": user.ID})
	require.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		Invitation         models.Invitation         `json:"invitation"`
		OrganizationMember models.OrganizationMember `json:"organizationMember"`
		ProjectMembers     []models.ProjectMember    `json:"projectMembers"`
	}
	decodeBody(t, recorder, &response)
	assert.Equal(t, models.InvitationStatusAccepted, response.Invitation.Status)
	assert.Equal(t, models.RoleAdmin, response.OrganizationMember.Role)
	require.Len(t, response.ProjectMembers, 1)
	assert.Equal(t, project.ID, response.ProjectMembers[0].ProjectID)

	var stored models.Invitation
	require.NoError(t, db.Where("id = ?", invitation.ID).First(&stored).Error)
	assert.Equal(t, models.InvitationStatusAccepted, stored.Status)
}

func TestAcceptAllProjectsInvitation(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	org := createTestOrg(t, db, "Acme")
	createTestProject(t, db, org.ID, "Website")
	createTestProject(t, db, org.ID, "Mobile")
	user := createTestUser(t, db, "Jane", "jane@example.com")
	now := time.Now().UTC()

	invitation := models.Invitation{
		Email: "jane@example.com", OrganizationID: org.ID, Role: models.RoleMember,
		Status: models.InvitationStatusPending, CreatedAt: now, ExpiresAt: now.Add(models.InvitationTTL),
	}
	require.NoError(t, db.Create(&invitation).Error)

	recorder := performRequest(router, http.MethodPost, "/api/invitations/"+invitation.ID+"/accept", gin.H{"userId": user.ID})
	require.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		ProjectMembers []models.ProjectMember `json:"projectMembers"`
	}
	decodeBody(t, recorder, &response)
	assert.Len(t, response.ProjectMembers, 2)

	var orgMembers int64
	require.NoError(t, db.Model(&models.OrganizationMember{}).
		Where("user_id = ?", user.ID).Count(&orgMembers).Error)
	assert.Equal(t, int64(1), orgMembers)
}

func TestAcceptInvitationIdempotentMembership(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	org := createTestOrg(t, db, "Acme")
	project := createTestProject(t, db, org.ID, "Website")
	user := createTestUser(t, db, "Jane", "jane@example.com")
	now := time.Now().UTC()

	// User already belongs to the organization and the project
	require.NoError(t, db.Create(&models.OrganizationMember{
		OrganizationID: org.ID, UserID: user.ID, Role: models.RoleMember,
	}).Error)
	require.NoError(t, db.Create(&models.ProjectMember{
		ProjectID: project.ID, UserID: user.ID, Role: models.RoleMember,
	}).Error)

	invitation := models.Invitation{
		Email: "jane@example.com", OrganizationID: org.ID, ProjectID: &project.ID,
		Role: models.RoleAdmin, Status: models.InvitationStatusPending,
		CreatedAt: now, ExpiresAt: now.Add(models.InvitationTTL),
	}
	require.NoError(t, db.Create(&invitation).Error)

	recorder := performRequest(router, http.MethodPost, "/api/invitations/"+invitation.ID+"/accept", gin.H{"userId": user.ID})
	require.Equal(t, http.StatusOK, recorder.Code)

	var orgMembers, projectMembers int64
	require.NoError(t, db.Model(&models.OrganizationMember{}).
		Where("organization_id = ? AND user_id = ?", org.ID, user.ID).Count(&orgMembers).Error)
	require.NoError(t, db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", project.ID, user.ID).Count(&projectMembers).Error)
	assert.Equal(t, int64(1), orgMembers)
	assert.Equal(t, int64(1), projectMembers)
}

func TestRejectInvitation(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	org := createTestOrg(t, db, "Acme")
	now := time.Now().UTC()

	invitation := models.Invitation{
		Email: "jane@example.com", OrganizationID: org.ID, Role: models.RoleMember,
		Status: models.InvitationStatusPending, CreatedAt: now, ExpiresAt: now.Add(models.InvitationTTL),
	}
	require.NoError(t, db.Create(&invitation).Error)

	recorder := performRequest(router, http.MethodPost, "/api/invitations/"+invitation.ID+"/accept", gin.H{"reject": true})
	require.Equal(t, http.StatusOK, recorder.Code)

	var stored models.Invitation
	require.NoError(t, db.Where("id = ?", invitation.ID).First(&stored).Error)
	assert.Equal(t, models.InvitationStatusRejected, stored.Status)

	// No memberships were written
	var orgMembers int64
	require.NoError(t, db.Model(&models.OrganizationMember{}).Count(&orgMembers).Error)
	assert.Equal(t, int64(0), orgMembers)
}

func TestDeleteInvitation(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	org := createTestOrg(t, db, "Acme")
	now := time.Now().UTC()

	invitation := models.Invitation{
		Email: "jane@example.com", OrganizationID: org.ID, Role: models.RoleMember,
		Status: models.InvitationStatusAccepted, CreatedAt: now, ExpiresAt: now.Add(models.InvitationTTL),
	}
	require.NoError(t, db.Create(&invitation).Error)

	// Revocation works regardless of status
	recorder := performRequest(router, http.MethodDelete, "/api/invitations?id="+invitation.ID, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var count int64
	require.NoError(t, db.Model(&models.Invitation{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	recorder = performRequest(router, http.MethodDelete, "/api/invitations?id="+invitation.ID, nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, recorder))
}
