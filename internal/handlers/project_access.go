package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"elca-web/internal/apperr"
	"elca-web/internal/database"
	"elca-web/internal/mail"
	"elca-web/internal/middleware"
	"elca-web/internal/models"
	"elca-web/internal/session"
	"elca-web/internal/validate"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func ShowProjectAccess(c *gin.Context) {
	project := middleware.CurrentProject(c)
	renderProjectAccess(c, http.StatusOK, project)
}

func renderProjectAccess(c *gin.Context, status int, project models.Project) {
	var tokens []models.ProjectAccessToken
	if err := database.DB.Preload("User").
		Where("project_id = ?", project.ID).
		Order("email asc").
		Find(&tokens).Error; err != nil {
		fail(c, apperr.Wrap(err, apperr.ErrDatabase, ""))
		return
	}

	render(c, status, "project_access.html", gin.H{
		"Project": project,
		"Tokens":  tokens,
		"Osit":    projectTrail(project).Add("Access", projectURL(project, "access")),
	})
}

type grantForm struct {
	Email   string `form:"email" validate:"required,email,max=255"`
	CanEdit bool   `form:"can_edit"`
}

// GrantProjectAccess invites a user by e-mail. Inviting the same address
// again updates the rights of the existing token.
func GrantProjectAccess(c *gin.Context) {
	project := middleware.CurrentProject(c)
	actor := currentUser(c)

	var form grantForm
	_ = c.ShouldBind(&form)
	form.Email = strings.ToLower(strings.TrimSpace(form.Email))

	v := validate.New()
	if v.Struct(form) {
		v.Check(!strings.EqualFold(form.Email, project.Owner.Email), "email", "The owner already has access to the project.")
	}
	if !v.Valid() {
		v.Flash(sessions.Default(c))
		renderProjectAccess(c, http.StatusBadRequest, project)
		return
	}

	var token models.ProjectAccessToken
	err := database.DB.Where("project_id = ? AND email = ?", project.ID, form.Email).First(&token).Error
	switch {
	case err == nil:
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&token).Update("can_edit", form.CanEdit).Error; err != nil {
				return err
			}
			return database.AuditTx(tx, actor.ID, "access_token", token.ID, "update",
				fmt.Sprintf("Project %d: %s can_edit=%t", project.ID, token.Email, form.CanEdit))
		})
		if err != nil {
			fail(c, apperr.Wrap(err, apperr.ErrDatabase, ""))
			return
		}
		flash(c, session.FlashNotice, "Access rights of "+token.Email+" updated.")
		redirect(c, projectURL(project, "access"))
		return
	case !errors.Is(err, gorm.ErrRecordNotFound):
		fail(c, apperr.Wrap(err, apperr.ErrDatabase, ""))
		return
	}

	token = models.ProjectAccessToken{
		ProjectID: project.ID,
		Email:     form.Email,
		Token:     newKey(),
		CanEdit:   form.CanEdit,
	}
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&token).Error; err != nil {
			return err
		}
		return database.AuditTx(tx, actor.ID, "access_token", token.ID, "create",
			fmt.Sprintf("Project %d shared with %s", project.ID, token.Email))
	})
	if err != nil {
		fail(c, apperr.Wrap(err, apperr.ErrDatabase, ""))
		return
	}

	link := env.Config.BaseURL + "/projects/access/confirm?token=" + token.Token
	if err := sendMail(c, mail.ProjectInvitation(token.Email, actor.FullName(), project.Name, link)); err != nil {
		flash(c, session.FlashError, "The invitation could not be sent to "+token.Email+".")
	} else {
		flash(c, session.FlashNotice, "An invitation was sent to "+token.Email+".")
	}
	redirect(c, projectURL(project, "access"))
}

func RevokeProjectAccess(c *gin.Context) {
	project := middleware.CurrentProject(c)
	actor := currentUser(c)

	tokenID, ok := paramID(c, "token_id")
	if !ok {
		c.String(http.StatusBadRequest, "Invalid token id")
		return
	}

	var token models.ProjectAccessToken
	err := database.DB.Where("id = ? AND project_id = ?", tokenID, project.ID).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, apperr.ErrNotFound)
		return
	}
	if err != nil {
		fail(c, apperr.Wrap(err, apperr.ErrDatabase, ""))
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&token).Error; err != nil {
			return err
		}
		return database.AuditTx(tx, actor.ID, "access_token", token.ID, "delete",
			fmt.Sprintf("Project %d no longer shared with %s", project.ID, token.Email))
	})
	if err != nil {
		fail(c, apperr.Wrap(err, apperr.ErrDatabase, ""))
		return
	}

	flash(c, session.FlashNotice, "Access of "+token.Email+" revoked.")
	redirect(c, projectURL(project, "access"))
}

// ConfirmProjectAccess binds an invitation to the logged in user. The
// user's e-mail address has to match the invited one.
func ConfirmProjectAccess(c *gin.Context) {
	user := currentUser(c)
	key := strings.TrimSpace(c.Query("token"))

	var token models.ProjectAccessToken
	err := database.DB.Where("token = ? AND is_confirmed = ?", key, false).First(&token).Error
	if key == "" || errors.Is(err, gorm.ErrRecordNotFound) {
		flash(c, session.FlashError, "Invalid or already used invitation.")
		redirect(c, "/projects")
		return
	}
	if err != nil {
		fail(c, apperr.Wrap(err, apperr.ErrDatabase, ""))
		return
	}
	if !strings.EqualFold(token.Email, user.Email) {
		flash(c, session.FlashError, "This invitation was sent to a different e-mail address.")
		redirect(c, "/projects")
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&token).Updates(map[string]any{
			"user_id":      user.ID,
			"is_confirmed": true,
		}).Error; err != nil {
			return err
		}
		return database.AuditTx(tx, user.ID, "access_token", token.ID, "confirm",
			fmt.Sprintf("Accepted invitation to project %d", token.ProjectID))
	})
	if err != nil {
		fail(c, apperr.Wrap(err, apperr.ErrDatabase, ""))
		return
	}

	flash(c, session.FlashNotice, "The project was added to your list.")
	redirect(c, fmt.Sprintf("/projects/%d", token.ProjectID))
}
