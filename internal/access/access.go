// Package access decides who may open and modify a project.
package access

import "elca-web/internal/models"

type Level int

const (
	None Level = iota
	Read
	Edit
	Owner
)

// ProjectLevel returns the access level of u on p. token is the user's
// access token for the project, or nil. Unconfirmed tokens grant nothing.
func ProjectLevel(u models.User, p models.Project, token *models.ProjectAccessToken) Level {
	switch {
	case u.ID == 0:
		return None
	case u.IsAdmin(), p.OwnerID == u.ID:
		return Owner
	case token == nil || !token.IsConfirmed || token.ProjectID != p.ID:
		return None
	case token.CanEdit:
		return Edit
	default:
		return Read
	}
}

// NeedsPassword reports whether u has to enter the project password before
// opening p. Owners and admins never do.
func NeedsPassword(level Level, p models.Project) bool {
	return p.IsPasswordProtected() && level < Owner
}
