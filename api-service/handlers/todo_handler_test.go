package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"taskhive-backend/shared/database/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTodoValidation(t *testing.T) {
	setupTestDB(t)
	router := newTestRouter()

	recorder := performRequest(router, http.MethodPost, "/api/todos", gin.H{"projectId": "p1"})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "MISSING_TEXT", errorCode(t, recorder))

	recorder = performRequest(router, http.MethodPost, "/api/todos", gin.H{"text": "buy milk"})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "MISSING_PROJECT_ID", errorCode(t, recorder))

	recorder = performRequest(router, http.MethodPost, "/api/todos", gin.H{"text": "   ", "projectId": "p1"})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "MISSING_TEXT", errorCode(t, recorder))
}

func TestCreateTodoWithParent(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	org := createTestOrg(t, db, "Acme")
	project := createTestProject(t, db, org.ID, "Website")
	other := createTestProject(t, db, org.ID, "Mobile")
	parent := createTestTodo(t, db, project.ID, "parent", nil)

	// Nonexistent parent
	recorder := performRequest(router, http.MethodPost, "/api/todos", gin.H{
		"text": "child", "projectId": project.ID, "parentId": "missing",
	})
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "PARENT_TODO_NOT_FOUND", errorCode(t, recorder))

	// Parent in a different project
	recorder = performRequest(router, http.MethodPost, "/api/todos", gin.H{
		"text": "child", "projectId": other.ID, "parentId": parent.ID,
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "PARENT_PROJECT_MISMATCH", errorCode(t, recorder))

	// Valid subtask
	recorder = performRequest(router, http.MethodPost, "/api/todos", gin.H{
		"text": "child", "projectId": project.ID, "parentId": parent.ID,
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	var created TodoWithSubtasksResponse
	decodeBody(t, recorder, &created)
	require.NotNil(t, created.ParentID)
	assert.Equal(t, parent.ID, *created.ParentID)
	assert.Empty(t, created.Subtasks)
}

func TestGetTodoAttachesOneLevelOfSubtasks(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	org := createTestOrg(t, db, "Acme")
	project := createTestProject(t, db, org.ID, "Website")
	root := createTestTodo(t, db, project.ID, "root", nil)
	child := createTestTodo(t, db, project.ID, "child", &root.ID)
	createTestTodo(t, db, project.ID, "grandchild", &child.ID)

	recorder := performRequest(router, http.MethodGet, "/api/todos?id="+root.ID, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var response TodoWithSubtasksResponse
	decodeBody(t, recorder, &response)
	require.Len(t, response.Subtasks, 1)
	assert.Equal(t, child.ID, response.Subtasks[0].ID)

	// includeSubtasks=false returns the bare record
	recorder = performRequest(router, http.MethodGet, "/api/todos?id="+root.ID+"&includeSubtasks=false", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "subtasks")

	recorder = performRequest(router, http.MethodGet, "/api/todos?id=missing", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "TODO_NOT_FOUND", errorCode(t, recorder))
}

func TestListTodosLimitsTopLevelToParentless(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	org := createTestOrg(t, db, "Acme")
	project := createTestProject(t, db, org.ID, "Website")
	root := createTestTodo(t, db, project.ID, "root", nil)
	createTestTodo(t, db, project.ID, "child", &root.ID)

	recorder := performRequest(router, http.MethodGet, "/api/todos?projectId="+project.ID, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var list []TodoWithSubtasksResponse
	decodeBody(t, recorder, &list)
	require.Len(t, list, 1)
	assert.Equal(t, root.ID, list[0].ID)
	assert.Len(t, list[0].Subtasks, 1)

	// Without subtask annotation every row comes back flat
	recorder = performRequest(router, http.MethodGet, "/api/todos?projectId="+project.ID+"&includeSubtasks=false", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var flat []TodoResponse
	decodeBody(t, recorder, &flat)
	assert.Len(t, flat, 2)
}

func TestListTodosByUserMembership(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	org := createTestOrg(t, db, "Acme")
	project := createTestProject(t, db, org.ID, "Website")
	user := createTestUser(t, db, "John", "john@example.com")
	createTestTodo(t, db, project.ID, "task", nil)

	// No memberships: empty array, not an error
	recorder := performRequest(router, http.MethodGet, "/api/todos?userId="+user.ID, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "[]", recorder.Body.String())

	require.NoError(t, db.Create(&models.ProjectMember{
		ProjectID: project.ID, UserID: user.ID, Role: models.RoleMember,
	}).Error)

	recorder = performRequest(router, http.MethodGet, "/api/todos?userId="+user.ID, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var list []TodoWithSubtasksResponse
	decodeBody(t, recorder, &list)
	assert.Len(t, list, 1)
}

func TestTodoAttachmentsRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	org := createTestOrg(t, db, "Acme")
	project := createTestProject(t, db, org.ID, "Website")

	recorder := performRequest(router, http.MethodPost, "/api/todos", gin.H{
		"text":        "with files",
		"projectId":   project.ID,
		"attachments": []string{"data:image/png;base64,AAAA", "data:image/png;base64,BBBB"},
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	var created TodoWithSubtasksResponse
	decodeBody(t, recorder, &created)

	// Stored as a serialized string, returned as a structured list
	var stored models.Todo
	require.NoError(t, db.Where("id = ?", created.ID).First(&stored).Error)
	require.NotNil(t, stored.Attachments)
	assert.Contains(t, *stored.Attachments, "BBBB")

	recorder = performRequest(router, http.MethodGet, "/api/todos?id="+created.ID, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var fetched TodoWithSubtasksResponse
	decodeBody(t, recorder, &fetched)
	list, ok := fetched.Attachments.([]interface{})
	require.True(t, ok)
	assert.Len(t, list, 2)
}

func TestUpdateTodo(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	org := createTestOrg(t, db, "Acme")
	project := createTestProject(t, db, org.ID, "Website")
	todo := createTestTodo(t, db, project.ID, "before", nil)

	recorder := performRequest(router, http.MethodPut, "/api/todos?id="+todo.ID, gin.H{
		"text": "after", "completed": true, "description": "details",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var updated TodoResponse
	decodeBody(t, recorder, &updated)
	assert.Equal(t, "after", updated.Text)
	assert.True(t, updated.Completed)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "details", *updated.Description)

	// Clearing the description with null
	recorder = performRequest(router, http.MethodPut, "/api/todos?id="+todo.ID, map[string]interface{}{
		"description": nil,
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	decodeBody(t, recorder, &updated)
	assert.Nil(t, updated.Description)

	// Empty text is rejected
	recorder = performRequest(router, http.MethodPut, "/api/todos?id="+todo.ID, gin.H{"text": ""})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "INVALID_TEXT", errorCode(t, recorder))

	recorder = performRequest(router, http.MethodPut, "/api/todos?id=missing", gin.H{"text": "x"})
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "TODO_NOT_FOUND", errorCode(t, recorder))
}

func TestUpdateTodoReparenting(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	org := createTestOrg(t, db, "Acme")
	project := createTestProject(t, db, org.ID, "Website")
	a := createTestTodo(t, db, project.ID, "a", nil)
	b := createTestTodo(t, db, project.ID, "b", &a.ID)
	c := createTestTodo(t, db, project.ID, "c", &b.ID)

	// Self-parent
	recorder := performRequest(router, http.MethodPut, "/api/todos?id="+a.ID, gin.H{"parentId": a.ID})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "CIRCULAR_REFERENCE", errorCode(t, recorder))

	// a -> c would close the chain a -> b -> c -> a
	recorder = performRequest(router, http.MethodPut, "/api/todos?id="+a.ID, gin.H{"parentId": c.ID})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "CIRCULAR_REFERENCE", errorCode(t, recorder))

	// Nonexistent parent
	recorder = performRequest(router, http.MethodPut, "/api/todos?id="+c.ID, gin.H{"parentId": "missing"})
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "PARENT_TODO_NOT_FOUND", errorCode(t, recorder))

	// Detach with null
	recorder = performRequest(router, http.MethodPut, "/api/todos?id="+c.ID, map[string]interface{}{"parentId": nil})
	require.Equal(t, http.StatusOK, recorder.Code)

	var updated TodoResponse
	decodeBody(t, recorder, &updated)
	assert.Nil(t, updated.ParentID)

	// Reattach under a sibling subtree is fine
	recorder = performRequest(router, http.MethodPut, "/api/todos?id="+c.ID, gin.H{"parentId": b.ID})
	require.Equal(t, http.StatusOK, recorder.Code)
}

func TestDeleteTodoRemovesDescendants(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	org := createTestOrg(t, db, "Acme")
	project := createTestProject(t, db, org.ID, "Website")
	root := createTestTodo(t, db, project.ID, "root", nil)
	child1 := createTestTodo(t, db, project.ID, "child1", &root.ID)
	createTestTodo(t, db, project.ID, "child2", &root.ID)
	createTestTodo(t, db, project.ID, "grandchild", &child1.ID)
	survivor := createTestTodo(t, db, project.ID, "survivor", nil)

	recorder := performRequest(router, http.MethodDelete, "/api/todos?id="+root.ID, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		Message              string       `json:"message"`
		DeletedTodo          TodoResponse `json:"deletedTodo"`
		DeletedSubtasksCount int          `json:"deletedSubtasksCount"`
	}
	decodeBody(t, recorder, &response)
	assert.Equal(t, root.ID, response.DeletedTodo.ID)
	assert.Equal(t, 3, response.DeletedSubtasksCount)

	var remaining int64
	require.NoError(t, db.Model(&models.Todo{}).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)

	var left models.Todo
	require.NoError(t, db.First(&left).Error)
	assert.Equal(t, survivor.ID, left.ID)

	recorder = performRequest(router, http.MethodDelete, "/api/todos?id="+root.ID, nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "TODO_NOT_FOUND", errorCode(t, recorder))
}

func TestListTodosPaginationClamp(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	org := createTestOrg(t, db, "Acme")
	project := createTestProject(t, db, org.ID, "Website")
	for i := 0; i < 15; i++ {
		createTestTodo(t, db, project.ID, fmt.Sprintf("task %d", i), nil)
	}

	// Default limit is 10
	recorder := performRequest(router, http.MethodGet, "/api/todos?projectId="+project.ID+"&includeSubtasks=false", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var page []TodoResponse
	decodeBody(t, recorder, &page)
	assert.Len(t, page, 10)

	// An oversized limit is clamped, not rejected
	recorder = performRequest(router, http.MethodGet, "/api/todos?projectId="+project.ID+"&includeSubtasks=false&limit=5000", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	decodeBody(t, recorder, &page)
	assert.Len(t, page, 15)
}
