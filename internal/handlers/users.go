package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"elca-web/internal/apperr"
	"elca-web/internal/database"
	"elca-web/internal/models"
	"elca-web/internal/osit"
	"elca-web/internal/session"
	"elca-web/internal/validate"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	userRoles    = []models.UserRole{models.RoleUser, models.RoleAdmin}
	userStatuses = []models.UserStatus{models.UserRequested, models.UserConfirmed, models.UserLocked}
)

func usersTrail() *osit.Trail {
	return osit.New("Users", "/admin/users")
}

func ListUsers(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))

	dbq := database.DB.Order("auth_name asc")
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		dbq = dbq.Where("LOWER(auth_name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var users []models.User
	if err := dbq.Find(&users).Error; err != nil {
		fail(c, apperr.Wrap(err, apperr.ErrDatabase, ""))
		return
	}

	render(c, http.StatusOK, "admin_users.html", gin.H{
		"Users": users,
		"Query": q,
		"Osit":  usersTrail(),
	})
}

func loadUser(c *gin.Context) (models.User, bool) {
	var user models.User
	id, ok := paramID(c, "id")
	if !ok {
		c.String(http.StatusBadRequest, "Invalid user id")
		return user, false
	}
	err := database.DB.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, apperr.ErrNotFound)
		return user, false
	}
	if err != nil {
		fail(c, apperr.Wrap(err, apperr.ErrDatabase, ""))
		return user, false
	}
	return user, true
}

func ShowEditUser(c *gin.Context) {
	user, ok := loadUser(c)
	if !ok {
		return
	}
	renderUserForm(c, http.StatusOK, user)
}

func renderUserForm(c *gin.Context, status int, user models.User) {
	render(c, status, "admin_user_edit.html", gin.H{
		"User":     user,
		"Roles":    userRoles,
		"Statuses": userStatuses,
		"Osit":     usersTrail().Add(user.AuthName, fmt.Sprintf("/admin/users/%d", user.ID)),
	})
}

type userForm struct {
	Email     string `form:"email" validate:"required,email,max=255"`
	Firstname string `form:"firstname" validate:"max=100"`
	Lastname  string `form:"lastname" validate:"max=100"`
	Company   string `form:"company" validate:"max=255"`
	Role      string `form:"role" validate:"required,oneof=admin user"`
	Status    string `form:"status" validate:"required,oneof=requested confirmed locked"`
	Password  string `form:"password" validate:"omitempty,password"`
}

func UpdateUser(c *gin.Context) {
	user, ok := loadUser(c)
	if !ok {
		return
	}
	actor := currentUser(c)

	var form userForm
	_ = c.ShouldBind(&form)
	form.Email = strings.ToLower(strings.TrimSpace(form.Email))

	v := validate.New()
	v.Struct(form)
	if !v.HasError("email") && form.Email != user.Email {
		v.Check(!userExists("email = ?", form.Email), "email", "This e-mail address is already registered.")
	}
	if user.ID == actor.ID {
		v.Check(form.Role == string(models.RoleAdmin), "role", "You cannot remove your own admin rights.")
		v.Check(form.Status != string(models.UserLocked), "status", "You cannot lock your own account.")
	}

	user.Email = form.Email
	user.Firstname = strings.TrimSpace(form.Firstname)
	user.Lastname = strings.TrimSpace(form.Lastname)
	user.Company = strings.TrimSpace(form.Company)
	user.Role = models.UserRole(form.Role)
	user.Status = models.UserStatus(form.Status)

	if !v.Valid() {
		v.Flash(sessions.Default(c))
		renderUserForm(c, http.StatusBadRequest, user)
		return
	}

	if form.Password != "" {
		hash, err := hashPassword(form.Password)
		if err != nil {
			fail(c, err)
			return
		}
		user.PasswordHash = hash
	}
	if user.Status != models.UserRequested {
		user.ConfirmationKey = ""
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		details := fmt.Sprintf("Updated user %s (role %s, status %s)", user.AuthName, user.Role, user.Status)
		if form.Password != "" {
			details += ", password changed"
		}
		return database.AuditTx(tx, actor.ID, "user", user.ID, "update", details)
	})
	if err != nil {
		fail(c, apperr.Wrap(err, apperr.ErrDatabase, "The user could not be saved."))
		return
	}

	flash(c, session.FlashNotice, "User "+user.AuthName+" saved.")
	redirect(c, "/admin/users")
}

// DeleteUser removes a user and hands their projects over to the acting
// admin in one transaction.
func DeleteUser(c *gin.Context) {
	user, ok := loadUser(c)
	if !ok {
		return
	}
	actor := currentUser(c)
	if user.ID == actor.ID {
		flash(c, session.FlashError, "You cannot delete your own account.")
		redirect(c, fmt.Sprintf("/admin/users/%d", user.ID))
		return
	}

	var moved int64
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Project{}).Where("owner_id = ?", user.ID).Update("owner_id", actor.ID)
		if res.Error != nil {
			return res.Error
		}
		moved = res.RowsAffected
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.ProjectAccessToken{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&user).Error; err != nil {
			return err
		}
		return database.AuditTx(tx, actor.ID, "user", user.ID, "delete",
			fmt.Sprintf("Deleted user %s, %d project(s) reassigned", user.AuthName, moved))
	})
	if err != nil {
		fail(c, apperr.Wrap(err, apperr.ErrDatabase, "The user could not be deleted."))
		return
	}

	flash(c, session.FlashNotice, fmt.Sprintf("User %s deleted. %d project(s) were assigned to you.", user.AuthName, moved))
	redirect(c, "/admin/users")
}
