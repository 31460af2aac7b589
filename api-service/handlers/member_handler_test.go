package handlers

import (
	"net/http"
	"testing"

	"taskhive-backend/shared/database/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrganizationMemberRejectsDuplicates(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	org := createTestOrg(t, db, "Acme")
	user := createTestUser(t, db, "Jane", "jane@example.com")

	body := gin.H{"organizationId": org.ID, "userId": user.ID, "role": "member"}

	recorder := performRequest(router, http.MethodPost, "/api/organization-members", body)
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder = performRequest(router, http.MethodPost, "/api/organization-members", body)
	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Equal(t, "ALREADY_MEMBER", errorCode(t, recorder))

	var count int64
	require.NoError(t, db.Model(&models.OrganizationMember{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateOrganizationMemberValidation(t *testing.T) {
	setupTestDB(t)
	router := newTestRouter()

	recorder := performRequest(router, http.MethodPost, "/api/organization-members", gin.H{
		"userId": "u", "role": "member",
	})
	assert.Equal(t, "MISSING_ORGANIZATION_ID", errorCode(t, recorder))

	recorder = performRequest(router, http.MethodPost, "/api/organization-members", gin.H{
		"organizationId": "o", "role": "member",
	})
	assert.Equal(t, "MISSING_USER_ID", errorCode(t, recorder))

	recorder = performRequest(router, http.MethodPost, "/api/organization-members", gin.H{
		"organizationId": "o", "userId": "u", "role": "emperor",
	})
	assert.Equal(t, "INVALID_ROLE", errorCode(t, recorder))
}

func TestUpdateAndDeleteOrganizationMember(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	org := createTestOrg(t, db, "Acme")
	user := createTestUser(t, db, "Jane", "jane@example.com")
	member := models.OrganizationMember{OrganizationID: org.ID, UserID: user.ID, Role: models.RoleMember}
	require.NoError(t, db.Create(&member).Error)

	recorder := performRequest(router, http.MethodPut, "/api/organization-members?id="+member.ID, gin.H{"role": "admin"})
	require.Equal(t, http.StatusOK, recorder.Code)

	var updated models.OrganizationMember
	decodeBody(t, recorder, &updated)
	assert.Equal(t, models.RoleAdmin, updated.Role)

	recorder = performRequest(router, http.MethodDelete, "/api/organization-members?id="+member.ID, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = performRequest(router, http.MethodDelete, "/api/organization-members?id="+member.ID, nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "MEMBER_NOT_FOUND", errorCode(t, recorder))
}

func TestProjectMemberDuplicateAndRoleEndpoint(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	org := createTestOrg(t, db, "Acme")
	project := createTestProject(t, db, org.ID, "Website")
	user := createTestUser(t, db, "Jane", "jane@example.com")

	body := gin.H{"projectId": project.ID, "userId": user.ID, "role": "admin"}

	recorder := performRequest(router, http.MethodPost, "/api/project-members", body)
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder = performRequest(router, http.MethodPost, "/api/project-members", body)
	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Equal(t, "ALREADY_MEMBER", errorCode(t, recorder))

	// Role resolver endpoint reads through the resolver
	recorder = performRequest(router, http.MethodGet,
		"/api/project-members/role?projectId="+project.ID+"&userId="+user.ID, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var roleBody map[string]string
	decodeBody(t, recorder, &roleBody)
	assert.Equal(t, models.RoleAdmin, roleBody["role"])

	// Non-member resolves to an empty role, not an error
	recorder = performRequest(router, http.MethodGet,
		"/api/project-members/role?projectId="+project.ID+"&userId=stranger", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	decodeBody(t, recorder, &roleBody)
	assert.Equal(t, "", roleBody["role"])
}

func TestOrganizationRoleEndpoint(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	org := createTestOrg(t, db, "Acme")
	user := createTestUser(t, db, "Jane", "jane@example.com")
	require.NoError(t, db.Create(&models.OrganizationMember{
		OrganizationID: org.ID, UserID: user.ID, Role: models.RoleOwner,
	}).Error)

	recorder := performRequest(router, http.MethodGet,
		"/api/organization-members/role?organizationId="+org.ID+"&userId="+user.ID, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var roleBody map[string]string
	decodeBody(t, recorder, &roleBody)
	assert.Equal(t, models.RoleOwner, roleBody["role"])

	recorder = performRequest(router, http.MethodGet, "/api/organization-members/role?userId="+user.ID, nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "MISSING_PARAMS", errorCode(t, recorder))
}
