package handlers

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"elca-web/internal/apperr"
	"elca-web/internal/database"
	"elca-web/internal/logging"
	"elca-web/internal/middleware"
	"elca-web/internal/models"
	"elca-web/internal/reports"
	"elca-web/internal/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	reportSummary   = "summary"
	reportElements  = "elements"
	reportLifeCycle = "lifecycle"
)

var (
	reportTitles = map[string]string{
		reportSummary:   "Summary",
		reportElements:  "Construction",
		reportLifeCycle: "Life cycle",
	}
	costGroupRe = regexp.MustCompile(`^[1-9][0-9]{0,2}$`)
)

func isReport(name string) bool {
	_, ok := reportTitles[name]
	return ok
}

// reportInput is everything a report of the current variant is built from.
type reportInput struct {
	Variant    models.ProjectVariant
	Elements   []models.Element
	Results    []models.IndicatorResult
	Indicators []models.Indicator
	TypeNames  map[string]string
}

func loadReportInput(project models.Project) (reportInput, error) {
	in := reportInput{TypeNames: make(map[string]string)}

	if err := database.DB.Order("position asc").Find(&in.Indicators).Error; err != nil {
		return in, apperr.Wrap(err, apperr.ErrDatabase, "")
	}
	var types []models.ElementType
	if err := database.DB.Find(&types).Error; err != nil {
		return in, apperr.Wrap(err, apperr.ErrDatabase, "")
	}
	for _, t := range types {
		in.TypeNames[t.Code] = t.Name
	}

	variant, ok := project.CurrentVariant()
	if !ok {
		return in, nil
	}
	in.Variant = variant

	if err := database.DB.Preload("Components.ProcessConfig").
		Where("project_variant_id = ?", variant.ID).
		Order("element_type_code asc, name asc").
		Find(&in.Elements).Error; err != nil {
		return in, apperr.Wrap(err, apperr.ErrDatabase, "")
	}
	if err := database.DB.Where("project_variant_id = ?", variant.ID).Find(&in.Results).Error; err != nil {
		return in, apperr.Wrap(err, apperr.ErrDatabase, "")
	}
	return in, nil
}

// loadFilter returns the report filter of the session, or the default
// filter with all phases.
func loadFilter(c *gin.Context) reports.Filter {
	f := reports.DefaultFilter()
	session.Load(sessions.Default(c), session.NSReportFilter, &f)
	return f.Normalize()
}

// reportData shapes the data of one report for both the page and the PDF.
func reportData(project models.Project, report string, f reports.Filter) (gin.H, error) {
	in, err := loadReportInput(project)
	if err != nil {
		return nil, err
	}

	_, normalized := reports.Divisor(project, f)
	data := gin.H{
		"Project":               project,
		"Variant":               in.Variant,
		"Report":                report,
		"Title":                 reportTitles[report],
		"Filter":                f,
		"AllPhases":             models.LifeCyclePhases,
		"Indicators":            reports.SortIndicators(in.Indicators),
		"NormalizationDisabled": f.PerM2Year && !normalized,
		"Now":                   time.Now(),
	}

	switch report {
	case reportSummary:
		data["Summary"] = reports.Summarize(in.Results, in.Indicators, project, f)
	case reportLifeCycle:
		s := reports.Summarize(in.Results, in.Indicators, project, f)
		data["Summary"] = s
		data["Charts"] = reports.Charts(s)
	case reportElements:
		rows := reports.ByElement(in.Elements, in.Results, project, f)
		level := 1
		if f.CostGroup != "" {
			level = 2
		}
		data["Rows"] = rows
		data["Groups"] = reports.ByCostGroup(rows, in.TypeNames, level)
	}
	return data, nil
}

// ShowReport renders one of the report tabs. The elements report accepts
// a cost group in the e query parameter.
func ShowReport(c *gin.Context) {
	project := middleware.CurrentProject(c)
	report := c.Param("report")
	if !isReport(report) {
		fail(c, apperr.ErrNotFound)
		return
	}

	f := loadFilter(c)
	if report == reportElements {
		if e := strings.TrimSpace(c.Query("e")); costGroupRe.MatchString(e) {
			f.CostGroup = e
		}
	}

	data, err := reportData(project, report, f)
	if err != nil {
		fail(c, err)
		return
	}
	data["PDFKey"] = queuedPDF(c, project.ID, report)
	data["Osit"] = projectTrail(project).Add("Reports", projectURL(project, "reports", reportSummary)).
		Add(reportTitles[report], projectURL(project, "reports", report))

	render(c, http.StatusOK, "report_"+report+".html", data)
}

// SaveReportFilter stores the submitted filter in the session and returns
// to the report it was sent from.
func SaveReportFilter(c *gin.Context) {
	project := middleware.CurrentProject(c)

	f := reports.Filter{
		Phases:    c.PostFormArray("phases"),
		PerM2Year: c.PostForm("per_m2_year") != "",
		CostGroup: strings.TrimSpace(c.PostForm("cost_group")),
	}
	if f.CostGroup != "" && !costGroupRe.MatchString(f.CostGroup) {
		flash(c, session.FlashError, "The cost group must be a DIN 276 code like 300 or 330.")
		f.CostGroup = ""
	}
	f = f.Normalize()

	if err := session.Save(sessions.Default(c), session.NSReportFilter, f); err != nil {
		logging.Log.WithError(err).Warn("failed to save report filter")
	}

	report := c.PostForm("report")
	if !isReport(report) {
		report = reportSummary
	}
	redirect(c, projectURL(project, "reports", report))
}

// ChartData returns the chart series of a report as JSON. The i parameter
// limits the result to one indicator, e sets the cost group of the
// elements report.
func ChartData(c *gin.Context) {
	project := middleware.CurrentProject(c)
	report := c.Param("report")
	if !isReport(report) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown report"})
		return
	}

	f := loadFilter(c)
	if e := strings.TrimSpace(c.Query("e")); costGroupRe.MatchString(e) {
		f.CostGroup = e
	}
	in, err := loadReportInput(project)
	if err != nil {
		logging.Log.WithError(err).Error("failed to load chart data")
		c.JSON(apperr.Status(err), gin.H{"error": apperr.Message(err)})
		return
	}
	ident := c.Query("i")

	if report == reportElements {
		indicators := reports.SortIndicators(in.Indicators)
		var ind models.Indicator
		for _, candidate := range indicators {
			if ident == "" || candidate.Ident == ident {
				ind = candidate
				break
			}
		}
		if ind.ID == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown indicator"})
			return
		}
		level := 1
		if f.CostGroup != "" {
			level = 2
		}
		groups := reports.ByCostGroup(reports.ByElement(in.Elements, in.Results, project, f), in.TypeNames, level)
		c.JSON(http.StatusOK, gin.H{
			"indicator": ind.Ident,
			"name":      ind.Name,
			"unit":      ind.Unit,
			"slices":    reports.Pie(groups, ind.ID),
		})
		return
	}

	charts := reports.Charts(reports.Summarize(in.Results, in.Indicators, project, f))
	if ident != "" {
		filtered := charts[:0]
		for _, ch := range charts {
			if ch.Indicator == ident {
				filtered = append(filtered, ch)
			}
		}
		if len(filtered) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown indicator"})
			return
		}
		charts = filtered
	}
	c.JSON(http.StatusOK, gin.H{"charts": charts})
}
