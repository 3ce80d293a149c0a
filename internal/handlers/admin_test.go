package handlers_test

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"elca-web/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userForm(u models.User, role models.UserRole, status models.UserStatus) url.Values {
	return url.Values{
		"email":     {u.Email},
		"firstname": {"Erika"},
		"lastname":  {"Muster"},
		"role":      {string(role)},
		"status":    {string(status)},
	}
}

func TestAdmin_RequiresAdminRole(t *testing.T) {
	a := newApp(t)
	u := a.user("alice", models.RoleUser)
	b := a.login(u)

	w := b.get("/admin/users")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/noaccess", w.Header().Get("Location"))
	assert.Equal(t, http.StatusFound, b.get("/admin/audit").Code)

	w = a.browser().get("/admin/users")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?origin=%2Fadmin%2Fusers", w.Header().Get("Location"))
}

func TestAdmin_ListUsers(t *testing.T) {
	a := newApp(t)
	admin := a.user("root", models.RoleAdmin)
	a.user("alice", models.RoleUser)
	a.user("bob", models.RoleUser)
	b := a.login(admin)

	w := b.get("/admin/users")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice@example.org")
	assert.Contains(t, w.Body.String(), "bob@example.org")

	w = b.get("/admin/users?q=ALI")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice@example.org")
	assert.NotContains(t, w.Body.String(), "bob@example.org")

	assert.Equal(t, http.StatusNotFound, b.get("/admin/users/999").Code)
	assert.Equal(t, http.StatusBadRequest, b.get("/admin/users/abc").Code)
}

func TestAdmin_UpdateUser(t *testing.T) {
	a := newApp(t)
	admin := a.user("root", models.RoleAdmin)
	alice := a.user("alice", models.RoleUser)
	b := a.login(admin)
	path := fmt.Sprintf("/admin/users/%d", alice.ID)

	require.Equal(t, http.StatusOK, b.get(path).Code)

	w := b.post(path, userForm(alice, models.RoleAdmin, models.UserLocked))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, b.follow(w).Body.String(), "User alice saved.")

	var got models.User
	require.NoError(t, a.db.First(&got, alice.ID).Error)
	assert.Equal(t, models.RoleAdmin, got.Role)
	assert.Equal(t, models.UserLocked, got.Status)
	assert.Equal(t, "Erika", got.Firstname)

	var entry models.AuditLog
	require.NoError(t, a.db.Where("entity = ? AND action = ?", "user", "update").First(&entry).Error)
	assert.Equal(t, admin.ID, entry.UserID)
	assert.Equal(t, alice.ID, entry.EntityID)

	w = a.browser().post("/login", url.Values{"auth_name": {"alice"}, "password": {testPassword}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Your account is locked.")
}

func TestAdmin_UpdateUser_Validation(t *testing.T) {
	a := newApp(t)
	admin := a.user("root", models.RoleAdmin)
	alice := a.user("alice", models.RoleUser)
	b := a.login(admin)

	w := b.post(fmt.Sprintf("/admin/users/%d", admin.ID), userForm(admin, models.RoleUser, models.UserConfirmed))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "You cannot remove your own admin rights.")

	w = b.post(fmt.Sprintf("/admin/users/%d", admin.ID), userForm(admin, models.RoleAdmin, models.UserLocked))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "You cannot lock your own account.")

	form := userForm(alice, models.RoleUser, models.UserConfirmed)
	form.Set("email", admin.Email)
	w = b.post(fmt.Sprintf("/admin/users/%d", alice.ID), form)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "This e-mail address is already registered.")

	form = userForm(alice, "owner", models.UserConfirmed)
	assert.Equal(t, http.StatusBadRequest, b.post(fmt.Sprintf("/admin/users/%d", alice.ID), form).Code)

	var got models.User
	require.NoError(t, a.db.First(&got, admin.ID).Error)
	assert.Equal(t, models.RoleAdmin, got.Role)
}

func TestAdmin_DeleteUser(t *testing.T) {
	a := newApp(t)
	admin := a.user("root", models.RoleAdmin)
	alice := a.user("alice", models.RoleUser)
	bob := a.user("bob", models.RoleUser)
	p := a.project(alice, "Schule")
	other := a.project(bob, "Kita")
	a.share(other, alice, true)
	b := a.login(admin)

	w := b.post(fmt.Sprintf("/admin/users/%d/delete", alice.ID), nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, b.follow(w).Body.String(), "User alice deleted. 1 project(s) were assigned to you.")

	var got models.Project
	require.NoError(t, a.db.First(&got, p.ID).Error)
	assert.Equal(t, admin.ID, got.OwnerID)

	var count int64
	require.NoError(t, a.db.Model(&models.ProjectAccessToken{}).Where("project_id = ?", other.ID).Count(&count).Error)
	assert.Zero(t, count)

	assert.Error(t, a.db.First(&models.User{}, alice.ID).Error)
	require.NoError(t, a.db.Unscoped().First(&models.User{}, alice.ID).Error)

	w = b.get("/admin/audit?entity=user")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Deleted user alice, 1 project(s) reassigned")

	w = b.get("/admin/audit?entity=project")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Deleted user alice")
}

func TestAdmin_DeleteSelf(t *testing.T) {
	a := newApp(t)
	admin := a.user("root", models.RoleAdmin)
	b := a.login(admin)

	w := b.post(fmt.Sprintf("/admin/users/%d/delete", admin.ID), nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, b.follow(w).Body.String(), "You cannot delete your own account.")
	require.NoError(t, a.db.First(&models.User{}, admin.ID).Error)
}
