package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"elca-web/internal/access"
	"elca-web/internal/database"
	"elca-web/internal/logging"
	"elca-web/internal/models"
	"elca-web/internal/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	projectKey     = "Project"
	accessLevelKey = "ProjectAccess"
)

// RequireProjectAccess loads the project named by the :id parameter and
// aborts unless the current user may read it. Password protected projects
// must have been unlocked in this session.
func RequireProjectAccess() gin.HandlerFunc {
	return projectAccess(true)
}

// RequireProjectMember is RequireProjectAccess without the password check.
// It guards the password form itself.
func RequireProjectMember() gin.HandlerFunc {
	return projectAccess(false)
}

func projectAccess(checkPassword bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.Redirect(http.StatusFound, LoginURL(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}

		pid, err := strconv.Atoi(c.Param("id"))
		if err != nil || pid <= 0 {
			c.String(http.StatusBadRequest, "Invalid project id")
			c.Abort()
			return
		}

		var project models.Project
		err = database.DB.Preload("Owner").Preload("Variants").First(&project, pid).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.String(http.StatusNotFound, "Project not found")
			c.Abort()
			return
		}
		if err != nil {
			logging.Log.WithError(err).WithField("project_id", pid).Error("failed to load project")
			c.String(http.StatusInternalServerError, "Failed to load project")
			c.Abort()
			return
		}

		var token *models.ProjectAccessToken
		if !user.IsAdmin() && project.OwnerID != user.ID {
			var t models.ProjectAccessToken
			err := database.DB.Where("project_id = ? AND user_id = ? AND is_confirmed = ?", project.ID, user.ID, true).
				First(&t).Error
			switch {
			case err == nil:
				token = &t
			case !errors.Is(err, gorm.ErrRecordNotFound):
				logging.Log.WithError(err).WithField("project_id", project.ID).Error("failed to load access token")
				c.String(http.StatusInternalServerError, "Failed to check project access")
				c.Abort()
				return
			}
		}

		level := access.ProjectLevel(user, project, token)
		if level == access.None {
			c.Redirect(http.StatusFound, "/noaccess")
			c.Abort()
			return
		}
		if checkPassword && access.NeedsPassword(level, project) && !ProjectUnlocked(sessions.Default(c), project.ID) {
			target := fmt.Sprintf("/projects/%d/password?origin=%s", project.ID, url.QueryEscape(c.Request.URL.RequestURI()))
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}

		c.Set(projectKey, project)
		c.Set(accessLevelKey, level)
		c.Next()
	}
}

// RequireProjectEditAccess must run after RequireProjectAccess.
func RequireProjectEditAccess() gin.HandlerFunc {
	return requireLevel(access.Edit)
}

// RequireProjectOwner must run after RequireProjectAccess.
func RequireProjectOwner() gin.HandlerFunc {
	return requireLevel(access.Owner)
}

func requireLevel(min access.Level) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ProjectAccessLevel(c) < min {
			c.Redirect(http.StatusFound, "/noaccess")
			c.Abort()
			return
		}
		c.Next()
	}
}

func CurrentProject(c *gin.Context) models.Project {
	p, _ := c.MustGet(projectKey).(models.Project)
	return p
}

func ProjectAccessLevel(c *gin.Context) access.Level {
	l, _ := c.Get(accessLevelKey)
	level, _ := l.(access.Level)
	return level
}

func ProjectUnlocked(s sessions.Session, projectID uint) bool {
	var ids []uint
	session.Load(s, session.NSProjectUnlocked, &ids)
	return slices.Contains(ids, projectID)
}

// UnlockProject remembers in the session that the project password was
// entered.
func UnlockProject(s sessions.Session, projectID uint) error {
	var ids []uint
	session.Load(s, session.NSProjectUnlocked, &ids)
	if slices.Contains(ids, projectID) {
		return nil
	}
	return session.Save(s, session.NSProjectUnlocked, append(ids, projectID))
}
