package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"taskhive-backend/shared/database"
	"taskhive-backend/shared/database/models"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter int

// setupTestDB points the package-level database handle at a fresh in-memory
// SQLite database for the duration of a test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testDBCounter++
	dsn := fmt.Sprintf("file:handlers_test_%d?mode=memory&cache=shared", testDBCounter)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	database.DB = db
	return db
}

// newTestRouter wires the API routes without auth enforcement.
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.GET("/api/todos", GetTodos)
	router.POST("/api/todos", CreateTodo)
	router.PUT("/api/todos", UpdateTodo)
	router.DELETE("/api/todos", DeleteTodo)

	router.GET("/api/invitations", GetInvitations)
	router.GET("/api/invitations/:id", GetInvitation)
	router.POST("/api/invitations", CreateInvitation)
	router.POST("/api/invitations/:id/accept", ProcessInvitation)
	router.DELETE("/api/invitations", DeleteInvitation)

	router.GET("/api/organizations", GetOrganizations)
	router.GET("/api/organizations/:id", GetOrganization)
	router.POST("/api/organizations", CreateOrganization)
	router.PUT("/api/organizations/:id", UpdateOrganization)
	router.DELETE("/api/organizations/:id", DeleteOrganization)

	router.GET("/api/projects", GetProjects)
	router.POST("/api/projects", CreateProject)
	router.PUT("/api/projects", UpdateProject)
	router.DELETE("/api/projects", DeleteProject)

	router.GET("/api/organization-members", GetOrganizationMembers)
	router.GET("/api/organization-members/role", GetOrganizationRole)
	router.POST("/api/organization-members", CreateOrganizationMember)
	router.PUT("/api/organization-members", UpdateOrganizationMember)
	router.DELETE("/api/organization-members", DeleteOrganizationMember)

	router.GET("/api/project-members", GetProjectMembers)
	router.GET("/api/project-members/role", GetProjectRole)
	router.POST("/api/project-members", CreateProjectMember)
	router.PUT("/api/project-members", UpdateProjectMember)
	router.DELETE("/api/project-members", DeleteProjectMember)

	router.GET("/api/users", GetUsers)
	router.GET("/api/users/:id", GetUser)

	return router
}

// performRequest runs one request through the router and returns the recorder.
func performRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), target))
}

func errorCode(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	decodeBody(t, recorder, &body)
	code, _ := body["code"].(string)
	return code
}

// Fixture helpers

func createTestUser(t *testing.T, db *gorm.DB, name, email string) models.User {
	t.Helper()
	user := models.User{Name: name, Email: email}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createTestOrg(t *testing.T, db *gorm.DB, name string) models.Organization {
	t.Helper()
	org := models.Organization{Name: name}
	require.NoError(t, db.Create(&org).Error)
	return org
}

func createTestProject(t *testing.T, db *gorm.DB, orgID, name string) models.Project {
	t.Helper()
	project := models.Project{Name: name, OrganizationID: orgID}
	require.NoError(t, db.Create(&project).Error)
	return project
}

func createTestTodo(t *testing.T, db *gorm.DB, projectID, text string, parentID *string) models.Todo {
	t.Helper()
	todo := models.Todo{Text: text, ProjectID: projectID, ParentID: parentID}
	require.NoError(t, db.Create(&todo).Error)
	return todo
}
