package client

import (
	"net/url"

	"fitmeal/platform/internal/domain"
)

// RecipePath picks the recipe endpoint for the caller's role: admins read
// through the admin API, which also returns unapproved recipes.
func RecipePath(role domain.Role, id string) string {
	if role == domain.RoleAdmin {
		return "/api/admin/recipes/" + url.PathEscape(id)
	}
	return "/api/recipes/" + url.PathEscape(id)
}
