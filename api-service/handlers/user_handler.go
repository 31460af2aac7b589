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

// GetUsers lists users, optionally filtered by email
// @Summary List users
// @Tags users
// @Accept json
// @Produce json
// @Param email query string false "Filter by email"
// @Param limit query int false "Page size (max 100, default 10)"
// @Param offset query int false "Offset (default 0)"
// @Success 200 {array} models.User
// @Router /users [get]
func GetUsers(ctx *gin.Context) {
	db := database.DB
	params := query.ParseListParams(ctx)

	dbQuery := db.Model(&models.User{})

	if email := ctx.Query("email"); email != "" {
		dbQuery = dbQuery.Where("email = ?", strings.ToLower(strings.TrimSpace(email)))
	}

	var users []models.User
	if err := query.ApplyPagination(dbQuery, params).Find(&users).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if users == nil {
		users = []models.User{}
	}
	ctx.JSON(http.StatusOK, users)
}

// GetUser retrieves a single user by ID
// @Summary Get user by ID
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} map[string]string
// @Router /users/{id} [get]
func GetUser(ctx *gin.Context) {
	id := strings.TrimSpace(ctx.Param("id"))
	if id == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Valid user ID is required", "code": "INVALID_ID"})
		return
	}

	var user models.User
	if err := database.DB.Where("id = ?", id).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found", "code": "USER_NOT_FOUND"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, user)
}
