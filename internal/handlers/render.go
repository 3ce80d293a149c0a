package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"elca-web/internal/apperr"
	"elca-web/internal/logging"
	"elca-web/internal/mail"
	"elca-web/internal/middleware"
	"elca-web/internal/models"
	"elca-web/internal/osit"
	"elca-web/internal/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
	"github.com/sirupsen/logrus"
)

// render wraps c.HTML and adds what every page needs: the current user,
// pending flash messages, the CSRF field and the breadcrumb trail.
func render(c *gin.Context, status int, tmpl string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}

	if u, ok := middleware.CurrentUser(c); ok {
		data["CurrentUser"] = u
		data["IsAdmin"] = u.IsAdmin()
	}

	sess := sessions.Default(c)
	data["Flashes"] = session.Flashes(sess)
	if err := sess.Save(); err != nil {
		logging.Log.WithError(err).Warn("failed to save session")
	}

	data["CSRFField"] = csrf.TemplateField(c.Request)
	if _, ok := data["Osit"]; !ok {
		data["Osit"] = osit.New("eLCA", "/")
	}

	c.HTML(status, tmpl, data)
}

// fail logs err and shows the error page. Only the user facing message of
// an apperr.Error is displayed.
func fail(c *gin.Context, err error) {
	status := apperr.Status(err)
	entry := logging.Log.WithError(err).WithFields(logrus.Fields{
		"request_id": middleware.GetRequestID(c),
		"route":      c.FullPath(),
	})
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Warn("request failed")
	}
	_ = c.Error(err)

	render(c, status, "error.html", gin.H{
		"Status":  status,
		"Message": apperr.Message(err),
		"Osit":    osit.New("Error", ""),
	})
}

func flash(c *gin.Context, kind, msg string) {
	session.AddFlash(sessions.Default(c), kind, msg)
}

// redirect persists pending flashes before redirecting.
func redirect(c *gin.Context, location string) {
	if err := sessions.Default(c).Save(); err != nil {
		logging.Log.WithError(err).Warn("failed to save session")
	}
	c.Redirect(http.StatusFound, location)
}

func currentUser(c *gin.Context) models.User {
	u, _ := middleware.CurrentUser(c)
	return u
}

// safeOrigin accepts only local paths as redirect targets.
func safeOrigin(origin, fallback string) string {
	if !strings.HasPrefix(origin, "/") || strings.HasPrefix(origin, "//") || strings.HasPrefix(origin, "/\\") {
		return fallback
	}
	return origin
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

func projectURL(p models.Project, parts ...string) string {
	u := "/projects/" + strconv.FormatUint(uint64(p.ID), 10)
	for _, s := range parts {
		u += "/" + s
	}
	return u
}

// sendMail delivers msg and only logs failures; callers decide whether the
// user has to be told.
func sendMail(c *gin.Context, msg mail.Message) error {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	if _, err := env.Mailer.Send(ctx, msg); err != nil {
		logging.Log.WithError(err).WithField("subject", msg.Subject).Error("failed to send mail")
		return apperr.Wrap(err, apperr.ErrMail, "")
	}
	return nil
}

func projectTrail(p models.Project) *osit.Trail {
	return osit.New("Projects", "/projects").Add(p.Name, projectURL(p))
}
