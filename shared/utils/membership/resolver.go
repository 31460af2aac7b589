package membership

import (
	"errors"

	"gorm.io/gorm"

	"taskhive-backend/shared/database/models"
	"taskhive-backend/shared/utils/cache"
)

// ResolveOrganizationRole returns the caller's role in an organization, or ""
// when the user is not a member. Results are served from the role cache when
// Redis is available; membership mutations invalidate.
func ResolveOrganizationRole(db *gorm.DB, organizationID, userID string) (string, error) {
	key := cache.OrgRoleKey(organizationID, userID)
	if role, ok := cache.GetCacheManager().GetRole(key); ok {
		return role, nil
	}

	var member models.OrganizationMember
	err := db.Where("organization_id = ? AND user_id = ?", organizationID, userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			cache.GetCacheManager().SetRole(key, "")
			return "", nil
		}
		return "", err
	}

	cache.GetCacheManager().SetRole(key, member.Role)
	return member.Role, nil
}

// ResolveProjectRole returns the caller's role in a project, or "" when the
// user is not a member.
func ResolveProjectRole(db *gorm.DB, projectID, userID string) (string, error) {
	key := cache.ProjectRoleKey(projectID, userID)
	if role, ok := cache.GetCacheManager().GetRole(key); ok {
		return role, nil
	}

	var member models.ProjectMember
	err := db.Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			cache.GetCacheManager().SetRole(key, "")
			return "", nil
		}
		return "", err
	}

	cache.GetCacheManager().SetRole(key, member.Role)
	return member.Role, nil
}

// InvalidateOrganizationRole drops the cached organization role for a user.
func InvalidateOrganizationRole(organizationID, userID string) {
	cache.GetCacheManager().InvalidateRoles(cache.OrgRoleKey(organizationID, userID))
}

// InvalidateProjectRole drops the cached project role for a user.
func InvalidateProjectRole(projectID, userID string) {
	cache.GetCacheManager().InvalidateRoles(cache.ProjectRoleKey(projectID, userID))
}
