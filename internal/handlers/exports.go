package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"elca-web/internal/apperr"
	"elca-web/internal/database"
	"elca-web/internal/exports"
	"elca-web/internal/metrics"
	"elca-web/internal/middleware"
	"elca-web/internal/models"
	"elca-web/internal/reports"

	"github.com/gin-gonic/gin"
)

// Export serves /projects/:id/exports/:file where file is "<set>.csv" or
// "project.xml".
func Export(c *gin.Context) {
	project := middleware.CurrentProject(c)
	file := c.Param("file")

	switch {
	case file == "project.xml":
		exportXML(c, project)
	case strings.HasSuffix(file, ".csv") && slices.Contains(exports.Sets, strings.TrimSuffix(file, ".csv")):
		exportCSV(c, project, strings.TrimSuffix(file, ".csv"))
	default:
		fail(c, apperr.ErrNotFound)
	}
}

func exportCSV(c *gin.Context, project models.Project, set string) {
	in, err := loadReportInput(project)
	if err != nil {
		fail(c, err)
		return
	}

	var t exports.Table
	switch set {
	case exports.SetElements:
		t = exports.ElementsTable(in.Elements, in.TypeNames)
	case exports.SetComponents:
		t = exports.ComponentsTable(in.Elements)
	case exports.SetResults:
		t = exports.ResultsTable(in.Elements, in.Results, reports.SortIndicators(in.Indicators))
	}

	var buf bytes.Buffer
	if err := exports.WriteCSV(&buf, t); err != nil {
		fail(c, apperr.Wrap(err, apperr.ErrInternal, ""))
		return
	}

	metrics.Exports.WithLabelValues(set).Inc()
	attachment(c, projectFilename(project, set+".csv"))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func exportXML(c *gin.Context, project models.Project) {
	elements := make(map[uint][]models.Element, len(project.Variants))
	for _, v := range project.Variants {
		var list []models.Element
		if err := database.DB.Preload("Components.ProcessConfig").
			Where("project_variant_id = ?", v.ID).
			Order("element_type_code asc, name asc").
			Find(&list).Error; err != nil {
			fail(c, apperr.Wrap(err, apperr.ErrDatabase, ""))
			return
		}
		elements[v.ID] = list
	}

	var buf bytes.Buffer
	if err := exports.WriteProjectXML(&buf, project, elements); err != nil {
		fail(c, apperr.Wrap(err, apperr.ErrInternal, ""))
		return
	}

	metrics.Exports.WithLabelValues("xml").Inc()
	attachment(c, projectFilename(project, "project.xml"))
	c.Data(http.StatusOK, "application/xml; charset=utf-8", buf.Bytes())
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}
