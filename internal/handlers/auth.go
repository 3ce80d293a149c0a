package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"elca-web/internal/apperr"
	"elca-web/internal/database"
	"elca-web/internal/logging"
	"elca-web/internal/mail"
	"elca-web/internal/metrics"
	"elca-web/internal/models"
	"elca-web/internal/osit"
	"elca-web/internal/session"
	"elca-web/internal/validate"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// newKey returns a random key for confirmation links and access tokens.
func newKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func hashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", apperr.Wrap(err, apperr.ErrInternal, "")
	}
	return string(hash), nil
}

//
// LOGIN
//

type loginForm struct {
	AuthName string `form:"auth_name" validate:"required"`
	Password string `form:"password" validate:"required"`
	Origin   string `form:"origin"`
}

func ShowLogin(c *gin.Context) {
	if _, ok := currentUserOK(c); ok {
		redirect(c, "/projects")
		return
	}
	render(c, http.StatusOK, "login.html", gin.H{
		"Origin": c.Query("origin"),
		"Osit":   osit.New("Login", "/login"),
	})
}

func Login(c *gin.Context) {
	var form loginForm
	_ = c.ShouldBind(&form)
	form.AuthName = strings.TrimSpace(form.AuthName)

	sess := sessions.Default(c)
	v := validate.New()
	if !v.Struct(form) {
		v.Flash(sess)
		renderLogin(c, form)
		return
	}

	var user models.User
	err := database.DB.Where("auth_name = ?", form.AuthName).First(&user).Error
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(form.Password)) != nil {
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			logging.Log.WithError(err).Error("failed to load user")
		}
		metrics.Logins.WithLabelValues("failed").Inc()
		session.AddFlash(sess, session.FlashError, "Invalid username or password.")
		renderLogin(c, form)
		return
	}

	switch user.Status {
	case models.UserLocked:
		metrics.Logins.WithLabelValues("locked").Inc()
		session.AddFlash(sess, session.FlashError, "Your account is locked.")
		renderLogin(c, form)
		return
	case models.UserRequested:
		metrics.Logins.WithLabelValues("unconfirmed").Inc()
		session.AddFlash(sess, session.FlashError, "Please confirm your e-mail address first.")
		renderLogin(c, form)
		return
	}

	now := time.Now()
	if err := database.DB.Model(&user).Update("last_login_at", &now).Error; err != nil {
		logging.Log.WithError(err).WithField("user_id", user.ID).Warn("failed to update last login")
	}

	sess.Clear()
	sess.Set("user_id", user.ID)
	sess.Set("role", string(user.Role))
	metrics.Logins.WithLabelValues("success").Inc()

	redirect(c, safeOrigin(form.Origin, "/projects"))
}

func renderLogin(c *gin.Context, form loginForm) {
	render(c, http.StatusBadRequest, "login.html", gin.H{
		"AuthName": form.AuthName,
		"Origin":   form.Origin,
		"Osit":     osit.New("Login", "/login"),
	})
}

func Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	_ = sess.Save()
	c.Redirect(http.StatusFound, "/login")
}

func currentUserOK(c *gin.Context) (models.User, bool) {
	u := currentUser(c)
	return u, u.ID != 0
}

//
// REGISTRATION
//

type registerForm struct {
	AuthName  string `form:"auth_name" validate:"required,authname"`
	Email     string `form:"email" validate:"required,email,max=255"`
	Firstname string `form:"firstname" validate:"max=100"`
	Lastname  string `form:"lastname" validate:"max=100"`
	Company   string `form:"company" validate:"max=255"`
	Password  string `form:"password" validate:"required,password"`
	Confirm   string `form:"confirm" validate:"eqfield=Password"`
}

func ShowRegister(c *gin.Context) {
	render(c, http.StatusOK, "register.html", gin.H{
		"Form": registerForm{},
		"Osit": osit.New("Register", "/register"),
	})
}

func Register(c *gin.Context) {
	var form registerForm
	_ = c.ShouldBind(&form)
	form.AuthName = strings.TrimSpace(form.AuthName)
	form.Email = strings.ToLower(strings.TrimSpace(form.Email))

	v := validate.New()
	v.Struct(form)
	if !v.HasError("auth_name") {
		v.Check(!userExists("auth_name = ?", form.AuthName), "auth_name", "This username is already taken.")
	}
	if !v.HasError("email") {
		v.Check(!userExists("email = ?", form.Email), "email", "This e-mail address is already registered.")
	}
	if !v.Valid() {
		v.Flash(sessions.Default(c))
		render(c, http.StatusBadRequest, "register.html", gin.H{
			"Form": form,
			"Osit": osit.New("Register", "/register"),
		})
		return
	}

	hash, err := hashPassword(form.Password)
	if err != nil {
		fail(c, err)
		return
	}
	user := models.User{
		AuthName:        form.AuthName,
		Email:           form.Email,
		PasswordHash:    hash,
		Role:            models.RoleUser,
		Status:          models.UserRequested,
		ConfirmationKey: newKey(),
		Firstname:       strings.TrimSpace(form.Firstname),
		Lastname:        strings.TrimSpace(form.Lastname),
		Company:         strings.TrimSpace(form.Company),
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return database.AuditTx(tx, user.ID, "user", user.ID, "register", "Registered user "+user.AuthName)
	})
	if err != nil {
		fail(c, apperr.Wrap(err, apperr.ErrDatabase, "Your account could not be created."))
		return
	}

	link := env.Config.BaseURL + "/register/confirm?key=" + user.ConfirmationKey
	if err := sendMail(c, mail.Confirmation(user.Email, user.FullName(), link)); err != nil {
		flash(c, session.FlashError, "The confirmation e-mail could not be sent. Please contact the administrator.")
	} else {
		flash(c, session.FlashNotice, "Thank you for registering. Please confirm your e-mail address with the link we sent you.")
	}
	redirect(c, "/login")
}

func userExists(cond string, value string) bool {
	var count int64
	// soft deleted users still hold their unique name and address
	database.DB.Unscoped().Model(&models.User{}).Where(cond, value).Count(&count)
	return count > 0
}

func ConfirmRegistration(c *gin.Context) {
	key := strings.TrimSpace(c.Query("key"))
	if key == "" {
		flash(c, session.FlashError, "Invalid confirmation link.")
		redirect(c, "/login")
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("confirmation_key = ? AND status = ?", key, models.UserRequested).First(&user).Error; err != nil {
			return err
		}
		if err := tx.Model(&user).Updates(map[string]any{
			"status":           models.UserConfirmed,
			"confirmation_key": "",
		}).Error; err != nil {
			return err
		}
		return database.AuditTx(tx, user.ID, "user", user.ID, "confirm", "Confirmed e-mail "+user.Email)
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		flash(c, session.FlashError, "Invalid or expired confirmation link.")
	case err != nil:
		fail(c, apperr.Wrap(err, apperr.ErrDatabase, ""))
		return
	default:
		flash(c, session.FlashNotice, "Your account is confirmed. You can log in now.")
	}
	redirect(c, "/login")
}

//
// PASSWORD RESET
//

type forgotForm struct {
	Email string `form:"email" validate:"required,email"`
}

func ShowForgotPassword(c *gin.Context) {
	render(c, http.StatusOK, "password_forgot.html", gin.H{
		"Osit": osit.New("Login", "/login").Add("Forgot password", "/password/forgot"),
	})
}

// ForgotPassword answers the same way whether or not the address is known.
func ForgotPassword(c *gin.Context) {
	var form forgotForm
	_ = c.ShouldBind(&form)
	form.Email = strings.ToLower(strings.TrimSpace(form.Email))

	v := validate.New()
	if !v.Struct(form) {
		v.Flash(sessions.Default(c))
		render(c, http.StatusBadRequest, "password_forgot.html", gin.H{
			"Email": form.Email,
			"Osit":  osit.New("Login", "/login").Add("Forgot password", "/password/forgot"),
		})
		return
	}

	var user models.User
	err := database.DB.Where("email = ? AND status <> ?", form.Email, models.UserLocked).First(&user).Error
	if err == nil {
		key := newKey()
		if err := database.DB.Model(&user).Update("confirmation_key", key).Error; err != nil {
			fail(c, apperr.Wrap(err, apperr.ErrDatabase, ""))
			return
		}
		_ = sendMail(c, mail.PasswordReset(user.Email, user.FullName(), env.Config.BaseURL+"/password/reset?key="+key))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logging.Log.WithError(err).Error("failed to look up user for password reset")
	}

	flash(c, session.FlashNotice, "If the address is registered, we have sent you a link to set a new password.")
	redirect(c, "/login")
}

type resetForm struct {
	Key      string `form:"key" validate:"required"`
	Password string `form:"password" validate:"required,password"`
	Confirm  string `form:"confirm" validate:"eqfield=Password"`
}

func ShowResetPassword(c *gin.Context) {
	key := strings.TrimSpace(c.Query("key"))
	if key == "" || !userExists("confirmation_key = ? AND deleted_at IS NULL", key) {
		flash(c, session.FlashError, "Invalid or expired link.")
		redirect(c, "/password/forgot")
		return
	}
	render(c, http.StatusOK, "password_reset.html", gin.H{
		"Key":  key,
		"Osit": osit.New("Login", "/login").Add("New password", ""),
	})
}

func ResetPassword(c *gin.Context) {
	var form resetForm
	_ = c.ShouldBind(&form)

	v := validate.New()
	if !v.Struct(form) {
		v.Flash(sessions.Default(c))
		render(c, http.StatusBadRequest, "password_reset.html", gin.H{
			"Key":  form.Key,
			"Osit": osit.New("Login", "/login").Add("New password", ""),
		})
		return
	}

	hash, err := hashPassword(form.Password)
	if err != nil {
		fail(c, err)
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("confirmation_key = ? AND status <> ?", form.Key, models.UserLocked).First(&user).Error; err != nil {
			return err
		}
		// the mailed link proves the address, so pending accounts get confirmed too
		if err := tx.Model(&user).Updates(map[string]any{
			"password_hash":    hash,
			"confirmation_key": "",
			"status":           models.UserConfirmed,
		}).Error; err != nil {
			return err
		}
		return database.AuditTx(tx, user.ID, "user", user.ID, "password_reset", "Password reset by mail link")
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		flash(c, session.FlashError, "Invalid or expired link.")
		redirect(c, "/password/forgot")
		return
	case err != nil:
		fail(c, apperr.Wrap(err, apperr.ErrDatabase, ""))
		return
	}

	flash(c, session.FlashNotice, "Your password has been changed. You can log in now.")
	redirect(c, "/login")
}
