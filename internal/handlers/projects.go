package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"elca-web/internal/access"
	"elca-web/internal/apperr"
	"elca-web/internal/database"
	"elca-web/internal/exports"
	"elca-web/internal/middleware"
	"elca-web/internal/models"
	"elca-web/internal/osit"
	"elca-web/internal/session"
	"elca-web/internal/validate"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

//
// PROJECT LIST
//

// ListProjects shows the user's own projects and those shared with them.
// Admins see every project.
func ListProjects(c *gin.Context) {
	user := currentUser(c)

	var shared []uint
	if err := database.DB.Model(&models.ProjectAccessToken{}).
		Where("user_id = ? AND is_confirmed = ?", user.ID, true).
		Pluck("project_id", &shared).Error; err != nil {
		fail(c, apperr.Wrap(err, apperr.ErrDatabase, ""))
		return
	}

	dbq := database.DB.Preload("Owner").Order("name asc")
	if !user.IsAdmin() {
		if len(shared) > 0 {
			dbq = dbq.Where("owner_id = ? OR id IN ?", user.ID, shared)
		} else {
			dbq = dbq.Where("owner_id = ?", user.ID)
		}
	}

	var projects []models.Project
	if err := dbq.Find(&projects).Error; err != nil {
		fail(c, apperr.Wrap(err, apperr.ErrDatabase, ""))
		return
	}

	sharedSet := make(map[uint]bool, len(shared))
	for _, id := range shared {
		sharedSet[id] = true
	}

	render(c, http.StatusOK, "projects_list.html", gin.H{
		"Projects": projects,
		"Shared":   sharedSet,
		"Osit":     osit.New("Projects", "/projects"),
	})
}

//
// OVERVIEW
//

type variantRow struct {
	Variant  models.ProjectVariant
	Elements int64
}

func ShowProject(c *gin.Context) {
	project := middleware.CurrentProject(c)
	level := middleware.ProjectAccessLevel(c)

	tab := c.DefaultQuery("tab", "general")
	if tab != "variants" {
		tab = "general"
	}

	variants := make([]variantRow, 0, len(project.Variants))
	for _, v := range project.Variants {
		row := variantRow{Variant: v}
		if err := database.DB.Model(&models.Element{}).Where("project_variant_id = ?", v.ID).Count(&row.Elements).Error; err != nil {
			fail(c, apperr.Wrap(err, apperr.ErrDatabase, ""))
			return
		}
		variants = append(variants, row)
	}
	current, _ := project.CurrentVariant()

	render(c, http.StatusOK, "project_overview.html", gin.H{
		"Project":    project,
		"Variant":    current,
		"Variants":   variants,
		"Tab":        tab,
		"CanEdit":    level >= access.Edit,
		"IsOwner":    level >= access.Owner,
		"ExportSets": exports.Sets,
		"Osit":       projectTrail(project),
	})
}

//
// CREATE / EDIT
//

type projectForm struct {
	Name             string  `form:"name" validate:"required,max=255"`
	ProjectNr        string  `form:"project_nr" validate:"max=100"`
	Description      string  `form:"description"`
	LifeTime         int     `form:"life_time" validate:"min=1,max=200"`
	NetFloorSpace    float64 `form:"net_floor_space" validate:"gte=0"`
	GrossFloorSpace  float64 `form:"gross_floor_space" validate:"gte=0"`
	CurrentVariantID uint    `form:"current_variant_id"`
	Password         string  `form:"password" validate:"omitempty,min=4"`
	RemovePassword   bool    `form:"remove_password"`
}

// bindProjectForm parses the form by hand so that decimal commas are
// accepted in floor space fields.
func bindProjectForm(c *gin.Context, v *validate.Validator) projectForm {
	form := projectForm{
		Name:           strings.TrimSpace(c.PostForm("name")),
		ProjectNr:      strings.TrimSpace(c.PostForm("project_nr")),
		Description:    strings.TrimSpace(c.PostForm("description")),
		Password:       c.PostForm("password"),
		RemovePassword: c.PostForm("remove_password") != "",
	}

	var err error
	if s := strings.TrimSpace(c.PostForm("life_time")); s != "" {
		form.LifeTime, err = strconv.Atoi(s)
		v.Check(err == nil, "life_time", "Life time must be a whole number of years.")
	}
	form.NetFloorSpace = parseDecimal(v, c.PostForm("net_floor_space"), "net_floor_space", "Net floor space")
	form.GrossFloorSpace = parseDecimal(v, c.PostForm("gross_floor_space"), "gross_floor_space", "Gross floor space")
	if s := c.PostForm("current_variant_id"); s != "" {
		if id, err := strconv.Atoi(s); err == nil && id > 0 {
			form.CurrentVariantID = uint(id)
		}
	}

	v.Struct(form)
	return form
}

func parseDecimal(v *validate.Validator, raw, field, label string) float64 {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	v.Check(err == nil, field, label+" must be a number.")
	return f
}

func (f projectForm) apply(p *models.Project) {
	p.Name = f.Name
	p.ProjectNr = f.ProjectNr
	p.Description = f.Description
	p.LifeTime = f.LifeTime
	p.NetFloorSpace = f.NetFloorSpace
	p.GrossFloorSpace = f.GrossFloorSpace
}

func ShowNewProject(c *gin.Context) {
	renderProjectForm(c, http.StatusOK, models.Project{LifeTime: 50}, true)
}

func renderProjectForm(c *gin.Context, status int, p models.Project, canSetPassword bool) {
	action := "/projects/new"
	trail := osit.New("Projects", "/projects").Add("New project", action)
	if p.ID != 0 {
		action = projectURL(p, "edit")
		trail = projectTrail(p).Add("Edit", action)
	}
	render(c, status, "project_form.html", gin.H{
		"Project":        p,
		"Action":         action,
		"CanSetPassword": canSetPassword,
		"Osit":           trail,
	})
}

func CreateProject(c *gin.Context) {
	user := currentUser(c)
	v := validate.New()
	form := bindProjectForm(c, v)

	project := models.Project{OwnerID: user.ID}
	form.apply(&project)

	if !v.Valid() {
		v.Flash(sessions.Default(c))
		renderProjectForm(c, http.StatusBadRequest, project, true)
		return
	}
	if form.Password != "" {
		hash, err := hashPassword(form.Password)
		if err != nil {
			fail(c, err)
			return
		}
		project.PasswordHash = hash
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		variant := models.ProjectVariant{ProjectID: project.ID, Name: "Variant 1", PhaseIdent: "PRE"}
		if err := tx.Create(&variant).Error; err != nil {
			return err
		}
		if err := tx.Model(&project).Update("current_variant_id", variant.ID).Error; err != nil {
			return err
		}
		return database.AuditTx(tx, user.ID, "project", project.ID, "create", "Created project "+project.Name)
	})
	if err != nil {
		fail(c, apperr.Wrap(err, apperr.ErrDatabase, "The project could not be saved."))
		return
	}

	flash(c, session.FlashNotice, "Project "+project.Name+" created.")
	redirect(c, projectURL(project))
}

func ShowEditProject(c *gin.Context) {
	project := middleware.CurrentProject(c)
	renderProjectForm(c, http.StatusOK, project, middleware.ProjectAccessLevel(c) >= access.Owner)
}

func UpdateProject(c *gin.Context) {
	project := middleware.CurrentProject(c)
	isOwner := middleware.ProjectAccessLevel(c) >= access.Owner
	user := currentUser(c)

	v := validate.New()
	form := bindProjectForm(c, v)
	form.apply(&project)

	if form.CurrentVariantID != 0 {
		found := false
		for _, pv := range project.Variants {
			found = found || pv.ID == form.CurrentVariantID
		}
		if v.Check(found, "current_variant_id", "Unknown variant.") {
			project.CurrentVariantID = form.CurrentVariantID
		}
	}

	if !v.Valid() {
		v.Flash(sessions.Default(c))
		renderProjectForm(c, http.StatusBadRequest, project, isOwner)
		return
	}

	// only owners may change the project password
	if isOwner {
		switch {
		case form.RemovePassword:
			project.PasswordHash = ""
		case form.Password != "":
			hash, err := hashPassword(form.Password)
			if err != nil {
				fail(c, err)
				return
			}
			project.PasswordHash = hash
		}
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Owner", "Variants").Save(&project).Error; err != nil {
			return err
		}
		return database.AuditTx(tx, user.ID, "project", project.ID, "update", "Updated project "+project.Name)
	})
	if err != nil {
		fail(c, apperr.Wrap(err, apperr.ErrDatabase, "The project could not be saved."))
		return
	}

	flash(c, session.FlashNotice, "Project saved.")
	redirect(c, projectURL(project))
}

//
// PROJECT PASSWORD
//

func ShowProjectPassword(c *gin.Context) {
	project := middleware.CurrentProject(c)
	origin := safeOrigin(c.Query("origin"), projectURL(project))

	if !access.NeedsPassword(middleware.ProjectAccessLevel(c), project) ||
		middleware.ProjectUnlocked(sessions.Default(c), project.ID) {
		redirect(c, origin)
		return
	}
	renderProjectPassword(c, http.StatusOK, project, origin)
}

func renderProjectPassword(c *gin.Context, status int, p models.Project, origin string) {
	render(c, status, "project_password.html", gin.H{
		"Project": p,
		"Origin":  origin,
		"Osit":    projectTrail(p).Add("Password", ""),
	})
}

func UnlockProject(c *gin.Context) {
	project := middleware.CurrentProject(c)
	origin := safeOrigin(c.PostForm("origin"), projectURL(project))

	if !project.IsPasswordProtected() {
		redirect(c, origin)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(project.PasswordHash), []byte(c.PostForm("password"))) != nil {
		flash(c, session.FlashError, "Wrong password.")
		renderProjectPassword(c, http.StatusBadRequest, project, origin)
		return
	}

	if err := middleware.UnlockProject(sessions.Default(c), project.ID); err != nil {
		fail(c, apperr.Wrap(err, apperr.ErrInternal, ""))
		return
	}
	redirect(c, origin)
}

func projectFilename(p models.Project, suffix string) string {
	return fmt.Sprintf("%s_%s", slug(p.Name), suffix)
}

// slug keeps ASCII letters and digits for use in download file names.
func slug(s string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	out := strings.TrimSuffix(b.String(), "_")
	if out == "" {
		return "project"
	}
	return out
}
