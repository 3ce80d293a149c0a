package access

import (
	"testing"

	"elca-web/internal/models"

	"github.com/stretchr/testify/assert"
)

func user(id uint, role models.UserRole) models.User {
	u := models.User{Role: role}
	u.ID = id
	return u
}

func TestProjectLevel(t *testing.T) {
	p := models.Project{OwnerID: 1}
	p.ID = 10

	confirmed := &models.ProjectAccessToken{ProjectID: 10, IsConfirmed: true}
	editor := &models.ProjectAccessToken{ProjectID: 10, IsConfirmed: true, CanEdit: true}
	pending := &models.ProjectAccessToken{ProjectID: 10, CanEdit: true}
	foreign := &models.ProjectAccessToken{ProjectID: 11, IsConfirmed: true}

	tests := []struct {
		name  string
		user  models.User
		token *models.ProjectAccessToken
		want  Level
	}{
		{"anonymous", models.User{}, nil, None},
		{"owner", user(1, models.RoleUser), nil, Owner},
		{"admin", user(2, models.RoleAdmin), nil, Owner},
		{"stranger", user(3, models.RoleUser), nil, None},
		{"reader", user(3, models.RoleUser), confirmed, Read},
		{"editor", user(3, models.RoleUser), editor, Edit},
		{"unconfirmed token", user(3, models.RoleUser), pending, None},
		{"token of other project", user(3, models.RoleUser), foreign, None},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProjectLevel(tt.user, p, tt.token))
		})
	}
}

func TestNeedsPassword(t *testing.T) {
	open := models.Project{}
	locked := models.Project{PasswordHash: "$2a$10$x"}

	assert.False(t, NeedsPassword(Read, open))
	assert.True(t, NeedsPassword(Read, locked))
	assert.True(t, NeedsPassword(Edit, locked))
	assert.False(t, NeedsPassword(Owner, locked))
}
