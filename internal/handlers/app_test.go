package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"elca-web/internal/config"
	"elca-web/internal/database"
	"elca-web/internal/database/dbtest"
	"elca-web/internal/handlers"
	"elca-web/internal/logging"
	"elca-web/internal/mail"
	"elca-web/internal/models"
	"elca-web/internal/pdf"
	"elca-web/internal/server"
	"elca-web/internal/views"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testPassword = "Secret123"

type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *fakeMailer) Send(_ context.Context, msg mail.Message) (mail.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return mail.Result{MessageID: "test", SentAt: time.Now()}, nil
}

func (m *fakeMailer) last(t *testing.T) mail.Message {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "no mail was sent")
	return m.sent[len(m.sent)-1]
}

type fakeRenderer struct {
	mu    sync.Mutex
	calls int
	html  []byte
	err   error
}

func (f *fakeRenderer) Render(_ context.Context, html []byte, dst string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.html = html
	if f.err != nil {
		// a failing engine may leave a truncated file behind
		_ = os.WriteFile(dst, []byte("%PDF-1."), 0o600)
		return f.err
	}
	return os.WriteFile(dst, []byte("%PDF-1.4 test"), 0o600)
}

type app struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	mailer *fakeMailer
	pdf    *fakeRenderer
	pdfDir string
}

func newApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logging.Log.SetOutput(io.Discard)

	cfg := &config.Config{
		SessionSecret: "test-secret",
		BaseURL:       "http://elca.test",
		PDFDir:        t.TempDir(),
		PDFTimeout:    5 * time.Second,
		PDFTTL:        time.Hour,
	}
	pdfViews, err := views.LoadPDF()
	require.NoError(t, err)

	a := &app{
		t:      t,
		db:     dbtest.Setup(t),
		mailer: &fakeMailer{},
		pdf:    &fakeRenderer{},
		pdfDir: cfg.PDFDir,
	}
	handlers.Init(handlers.Env{
		Config:   cfg,
		Mailer:   a.mailer,
		PDF:      a.pdf,
		Files:    pdf.NewMemoryRegistry(time.Hour),
		PDFViews: pdfViews,
	})
	a.router = server.NewRouter(cfg)
	return a
}

// browser is one client session against the app.
type browser struct {
	a       *app
	cookies map[string]*http.Cookie
}

func (a *app) browser() *browser {
	return &browser{a: a, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, ck := range b.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	b.a.router.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		b.cookies[ck.Name] = ck
	}
	return w
}

func (b *browser) get(target string) *httptest.ResponseRecorder {
	return b.do(http.MethodGet, target, nil)
}

func (b *browser) post(target string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	return b.do(http.MethodPost, target, form)
}

// follow requests the redirect target of w.
func (b *browser) follow(w *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	b.a.t.Helper()
	require.Equal(b.a.t, http.StatusFound, w.Code, w.Body.String())
	return b.get(w.Header().Get("Location"))
}

func (a *app) login(u models.User) *browser {
	a.t.Helper()
	b := a.browser()
	w := b.post("/login", url.Values{"auth_name": {u.AuthName}, "password": {testPassword}})
	require.Equal(a.t, http.StatusFound, w.Code, w.Body.String())
	return b
}

func (a *app) user(name string, role models.UserRole) models.User {
	a.t.Helper()
	u, err := database.CreateUser(a.db, name, name+"@example.org", testPassword, role)
	require.NoError(a.t, err)
	return *u
}

func (a *app) project(owner models.User, name string) models.Project {
	a.t.Helper()
	p := models.Project{Name: name, OwnerID: owner.ID, LifeTime: 50, NetFloorSpace: 100, Description: "Built **2024**"}
	require.NoError(a.t, a.db.Create(&p).Error)
	v := models.ProjectVariant{ProjectID: p.ID, Name: "Entwurf", PhaseIdent: "ENTWURF"}
	require.NoError(a.t, a.db.Create(&v).Error)
	require.NoError(a.t, a.db.Model(&p).Update("current_variant_id", v.ID).Error)
	require.NoError(a.t, a.db.Preload("Variants").First(&p, p.ID).Error)
	return p
}

// share grants u confirmed access to p.
func (a *app) share(p models.Project, u models.User, canEdit bool) {
	a.t.Helper()
	uid := u.ID
	require.NoError(a.t, a.db.Create(&models.ProjectAccessToken{
		ProjectID: p.ID, UserID: &uid, Email: u.Email, Token: "t-" + u.AuthName, CanEdit: canEdit, IsConfirmed: true,
	}).Error)
}

func (a *app) indicator(ident string) models.Indicator {
	a.t.Helper()
	var ind models.Indicator
	require.NoError(a.t, a.db.Where("ident = ?", ident).First(&ind).Error)
	return ind
}

// seedResults adds one exterior wall with GWP results: 1000 production,
// 200 end of life and -100 recycling potential.
func (a *app) seedResults(p models.Project) models.Element {
	a.t.Helper()
	pc := models.ProcessConfig{Name: "Beton C30/37", Category: "Mineralische Baustoffe", RefUnit: "m3"}
	require.NoError(a.t, a.db.Create(&pc).Error)
	e := models.Element{ProjectVariantID: p.CurrentVariantID, ElementTypeCode: "330", Name: "Außenwand Beton", Quantity: 120, RefUnit: "m2"}
	require.NoError(a.t, a.db.Create(&e).Error)
	require.NoError(a.t, a.db.Create(&models.ElementComponent{
		ElementID: e.ID, ProcessConfigID: pc.ID, Quantity: 0.25, LifeTime: 80, IsLayer: true, LayerPosition: 1,
	}).Error)

	gwp := a.indicator("gwp")
	for phase, v := range map[string]float64{models.PhaseProd: 1000, models.PhaseEOL: 200, models.PhaseRec: -100} {
		eid := e.ID
		require.NoError(a.t, a.db.Create(&models.IndicatorResult{
			ProjectVariantID: p.CurrentVariantID, ElementID: &eid, LifeCycleIdent: phase, IndicatorID: gwp.ID, Value: v,
		}).Error)
		require.NoError(a.t, a.db.Create(&models.IndicatorResult{
			ProjectVariantID: p.CurrentVariantID, LifeCycleIdent: phase, IndicatorID: gwp.ID, Value: v,
		}).Error)
	}
	return e
}

var pdfLinkRe = regexp.MustCompile(`/projects/\d+/pdf/[0-9a-f-]+`)
