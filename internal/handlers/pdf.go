package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"elca-web/internal/apperr"
	"elca-web/internal/logging"
	"elca-web/internal/metrics"
	"elca-web/internal/middleware"
	"elca-web/internal/pdf"
	"elca-web/internal/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// pdfQueue maps "<project id>/<report>" to the key of the last PDF
// generated in this session.
type pdfQueue map[string]string

func queueKey(projectID uint, report string) string {
	return fmt.Sprintf("%d/%s", projectID, report)
}

func loadQueue(c *gin.Context) pdfQueue {
	q := pdfQueue{}
	session.Load(sessions.Default(c), session.NSPDFQueue, &q)
	return q
}

func queuedPDF(c *gin.Context, projectID uint, report string) string {
	return loadQueue(c)[queueKey(projectID, report)]
}

// CreateReportPDF renders a report to PDF with the external renderer and
// queues the file for download in the session.
func CreateReportPDF(c *gin.Context) {
	project := middleware.CurrentProject(c)
	user := currentUser(c)
	report := c.Param("report")
	if !isReport(report) {
		fail(c, apperr.ErrNotFound)
		return
	}
	back := projectURL(project, "reports", report)

	data, err := reportData(project, report, loadFilter(c))
	if err != nil {
		fail(c, err)
		return
	}
	html, err := env.PDFViews.Execute(report, data)
	if err != nil {
		fail(c, apperr.Wrap(err, apperr.ErrPDF, ""))
		return
	}

	key := uuid.NewString()
	dst := filepath.Join(env.Config.PDFDir, pdf.FilePrefix+key+".pdf")

	ctx, cancel := context.WithTimeout(c.Request.Context(), env.Config.PDFTimeout)
	defer cancel()
	start := time.Now()
	err = env.PDF.Render(ctx, html, dst)
	metrics.PDFDuration.Observe(time.Since(start).Seconds())

	log := logging.Log.WithFields(logrus.Fields{
		"request_id": middleware.GetRequestID(c),
		"project_id": project.ID,
		"report":     report,
	})
	if err != nil {
		metrics.PDFRenders.WithLabelValues("failed").Inc()
		log.WithError(err).Error("pdf rendering failed")
		removePartial(dst)
		flash(c, session.FlashError, apperr.ErrPDF.Message)
		redirect(c, back)
		return
	}
	metrics.PDFRenders.WithLabelValues("ok").Inc()

	file := pdf.File{
		Key:       key,
		Path:      dst,
		Filename:  projectFilename(project, report+".pdf"),
		ProjectID: project.ID,
		UserID:    user.ID,
		CreatedAt: time.Now(),
	}
	if err := env.Files.Put(c.Request.Context(), file); err != nil {
		removePartial(dst)
		fail(c, apperr.Wrap(err, apperr.ErrPDF, ""))
		return
	}

	q := loadQueue(c)
	if old, ok := q[queueKey(project.ID, report)]; ok {
		if err := env.Files.Delete(c.Request.Context(), old); err != nil && !errors.Is(err, pdf.ErrNotFound) {
			log.WithError(err).Warn("failed to remove previous pdf")
		}
	}
	q[queueKey(project.ID, report)] = key
	if err := session.Save(sessions.Default(c), session.NSPDFQueue, q); err != nil {
		fail(c, apperr.Wrap(err, apperr.ErrInternal, ""))
		return
	}

	log.WithField("key", key).Info("pdf created")
	flash(c, session.FlashNotice, "The PDF is ready for download.")
	redirect(c, back)
}

func removePartial(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logging.Log.WithError(err).WithField("file", path).Warn("failed to remove pdf")
	}
}

// DownloadPDF streams a generated PDF. Only keys queued in the caller's
// session for this project are served.
func DownloadPDF(c *gin.Context) {
	project := middleware.CurrentProject(c)
	user := currentUser(c)
	key := c.Param("key")

	queued := false
	prefix := queueKey(project.ID, "")
	for k, v := range loadQueue(c) {
		if v == key && strings.HasPrefix(k, prefix) {
			queued = true
			break
		}
	}
	if !queued {
		fail(c, apperr.ErrNotFound)
		return
	}

	file, err := env.Files.Get(c.Request.Context(), key)
	if errors.Is(err, pdf.ErrNotFound) || (err == nil && (file.ProjectID != project.ID || file.UserID != user.ID)) {
		fail(c, apperr.ErrNotFound)
		return
	}
	if err != nil {
		fail(c, apperr.Wrap(err, apperr.ErrInternal, ""))
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.FileAttachment(file.Path, file.Filename)
}

