package handlers_test

import (
	"net/http"
	"net/url"
	"regexp"
	"testing"

	"elca-web/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keyRe = regexp.MustCompile(`key=([0-9a-f]+)`)

func TestLogin(t *testing.T) {
	a := newApp(t)
	u := a.user("erika", models.RoleUser)
	b := a.browser()

	w := b.get("/projects")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?origin=%2Fprojects", w.Header().Get("Location"))

	w = b.post("/login", url.Values{"auth_name": {"erika"}, "password": {"wrong1234"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password.")

	w = b.post("/login", url.Values{"auth_name": {"erika"}, "password": {testPassword}, "origin": {"/projects"}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/projects", w.Header().Get("Location"))

	w = b.get("/projects")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Logout")

	var stored models.User
	require.NoError(t, a.db.First(&stored, u.ID).Error)
	assert.NotNil(t, stored.LastLoginAt)

	w = b.get("/logout")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, http.StatusFound, b.get("/projects").Code)
}

func TestLogin_RejectsForeignOrigin(t *testing.T) {
	a := newApp(t)
	a.user("erika", models.RoleUser)

	w := a.browser().post("/login", url.Values{
		"auth_name": {"erika"}, "password": {testPassword}, "origin": {"//evil.example/x"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/projects", w.Header().Get("Location"))
}

func TestLogin_StatusChecks(t *testing.T) {
	a := newApp(t)
	locked := a.user("locked", models.RoleUser)
	pending := a.user("pending", models.RoleUser)
	require.NoError(t, a.db.Model(&locked).Update("status", models.UserLocked).Error)
	require.NoError(t, a.db.Model(&pending).Update("status", models.UserRequested).Error)

	w := a.browser().post("/login", url.Values{"auth_name": {"locked"}, "password": {testPassword}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Your account is locked.")

	w = a.browser().post("/login", url.Values{"auth_name": {"pending"}, "password": {testPassword}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Please confirm your e-mail address first.")
}

func TestRegister_AndConfirm(t *testing.T) {
	a := newApp(t)
	b := a.browser()

	w := b.post("/register", url.Values{
		"auth_name": {"max.muster"},
		"email":     {"Max@Example.org"},
		"firstname": {"Max"},
		"lastname":  {"Muster"},
		"password":  {"Passwort1"},
		"confirm":   {"Passwort1"},
	})
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	assert.Contains(t, b.follow(w).Body.String(), "Please confirm your e-mail address")

	var user models.User
	require.NoError(t, a.db.Where("auth_name = ?", "max.muster").First(&user).Error)
	assert.Equal(t, models.UserRequested, user.Status)
	assert.Equal(t, "max@example.org", user.Email)

	msg := a.mailer.last(t)
	assert.Equal(t, []string{"max@example.org"}, msg.To)
	m := keyRe.FindStringSubmatch(msg.HTML)
	require.Len(t, m, 2)
	assert.Equal(t, user.ConfirmationKey, m[1])

	w = b.post("/login", url.Values{"auth_name": {"max.muster"}, "password": {"Passwort1"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = b.get("/register/confirm?key=" + m[1])
	require.Equal(t, http.StatusFound, w.Code)
	require.NoError(t, a.db.First(&user, user.ID).Error)
	assert.Equal(t, models.UserConfirmed, user.Status)
	assert.Empty(t, user.ConfirmationKey)

	var audits int64
	a.db.Model(&models.AuditLog{}).Where("entity = ? AND entity_id = ?", "user", user.ID).Count(&audits)
	assert.Equal(t, int64(2), audits)

	w = b.get("/register/confirm?key=" + m[1])
	assert.Contains(t, b.follow(w).Body.String(), "Invalid or expired confirmation link.")

	w = b.post("/login", url.Values{"auth_name": {"max.muster"}, "password": {"Passwort1"}})
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestRegister_Validation(t *testing.T) {
	a := newApp(t)
	a.user("erika", models.RoleUser)

	w := a.browser().post("/register", url.Values{
		"auth_name": {"erika"},
		"email":     {"erika@example.org"},
		"password":  {"short"},
		"confirm":   {"other"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "This username is already taken.")
	assert.Contains(t, body, "This e-mail address is already registered.")
	assert.Contains(t, body, "Password must have at least 8 characters")
	assert.Contains(t, body, "Confirm does not match.")
	assert.Empty(t, a.mailer.sent)

	var count int64
	a.db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestPasswordReset(t *testing.T) {
	a := newApp(t)
	u := a.user("erika", models.RoleUser)
	b := a.browser()

	w := b.post("/password/forgot", url.Values{"email": {"nobody@example.org"}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Empty(t, a.mailer.sent)

	w = b.post("/password/forgot", url.Values{"email": {u.Email}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, b.follow(w).Body.String(), "If the address is registered")

	m := keyRe.FindStringSubmatch(a.mailer.last(t).HTML)
	require.Len(t, m, 2)

	assert.Equal(t, http.StatusOK, b.get("/password/reset?key="+m[1]).Code)
	assert.Equal(t, http.StatusFound, b.get("/password/reset?key=unknown").Code)

	w = b.post("/password/reset", url.Values{"key": {m[1]}, "password": {"NewPass99"}, "confirm": {"nope"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = b.post("/password/reset", url.Values{"key": {m[1]}, "password": {"NewPass99"}, "confirm": {"NewPass99"}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = a.browser().post("/login", url.Values{"auth_name": {"erika"}, "password": {"NewPass99"}})
	assert.Equal(t, http.StatusFound, w.Code)

	// the key is used up
	w = b.post("/password/reset", url.Values{"key": {m[1]}, "password": {"Other1234"}, "confirm": {"Other1234"}})
	assert.Equal(t, "/password/forgot", w.Header().Get("Location"))
}

func TestPublicPages(t *testing.T) {
	a := newApp(t)
	b := a.browser()

	assert.Equal(t, http.StatusOK, b.get("/").Code)
	assert.Equal(t, http.StatusOK, b.get("/login").Code)
	assert.Equal(t, http.StatusOK, b.get("/register").Code)
	assert.Equal(t, http.StatusForbidden, b.get("/noaccess").Code)
	assert.Equal(t, http.StatusNotFound, b.get("/does-not-exist").Code)
	assert.Equal(t, http.StatusOK, b.get("/health").Code)
	assert.Equal(t, http.StatusOK, b.get("/static/app.css").Code)
}
