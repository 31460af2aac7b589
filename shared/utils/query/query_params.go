package query

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Pagination defaults. Limit is clamped to MaxLimit on every list endpoint.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListParams represents limit/offset pagination parameters
type ListParams struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ParseListParams extracts pagination parameters from Gin context
func ParseListParams(c *gin.Context) ListParams {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))
	if err != nil || limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	return ListParams{Limit: limit, Offset: offset}
}

// ApplyPagination applies limit/offset pagination to a GORM query
func ApplyPagination(dbQuery *gorm.DB, params ListParams) *gorm.DB {
	return dbQuery.Limit(params.Limit).Offset(params.Offset)
}
