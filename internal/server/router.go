package server

import (
	"io/fs"
	"net/http"

	"elca-web/internal/config"
	"elca-web/internal/handlers"
	"elca-web/internal/logging"
	"elca-web/internal/metrics"
	"elca-web/internal/middleware"
	"elca-web/internal/models"
	"elca-web/internal/views"
	"elca-web/web"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisstore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
)

const sessionName = "elca_session"

// NewRouter wires middleware and routes. handlers.Init must have been
// called before the router serves requests.
func NewRouter(cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger(), gin.Recovery())

	pages, err := views.Pages()
	if err != nil {
		logging.Log.Fatalf("failed to parse templates: %v", err)
	}
	r.HTMLRender = pages

	static, err := fs.Sub(web.FS, "static")
	if err != nil {
		logging.Log.Fatalf("failed to open static files: %v", err)
	}
	r.StaticFS("/static", http.FS(static))

	// HEALTHCHECK and METRICS run without session
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	metrics.Use(r)

	r.Use(sessions.Sessions(sessionName, sessionStore(cfg)))
	if cfg.CSRFKey != "" {
		r.Use(middleware.CSRF([]byte(cfg.CSRFKey), cfg.SecureCookies))
	} else {
		logging.Log.Warn("CSRF_KEY is not set, CSRF protection is disabled")
	}
	r.Use(middleware.InjectUser())

	r.NoRoute(handlers.NotFound)

	// PUBLIC
	r.GET("/", handlers.IndexPage)
	r.GET("/noaccess", handlers.NoAccess)

	// AUTH
	r.GET("/login", handlers.ShowLogin)
	r.POST("/login", handlers.Login)
	r.GET("/logout", handlers.Logout)
	r.GET("/register", handlers.ShowRegister)
	r.POST("/register", handlers.Register)
	r.GET("/register/confirm", handlers.ConfirmRegistration)
	r.GET("/password/forgot", handlers.ShowForgotPassword)
	r.POST("/password/forgot", handlers.ForgotPassword)
	r.GET("/password/reset", handlers.ShowResetPassword)
	r.POST("/password/reset", handlers.ResetPassword)

	auth := r.Group("/")
	auth.Use(middleware.RequireAuth())

	// PROJECTS
	auth.GET("/projects", handlers.ListProjects)
	auth.GET("/projects/new", handlers.ShowNewProject)
	auth.POST("/projects/new", handlers.CreateProject)
	auth.GET("/projects/access/confirm", handlers.ConfirmProjectAccess)

	// the password form must stay reachable for locked projects
	member := auth.Group("/projects/:id", middleware.RequireProjectMember())
	member.GET("/password", handlers.ShowProjectPassword)
	member.POST("/password", handlers.UnlockProject)

	project := auth.Group("/projects/:id", middleware.RequireProjectAccess())
	project.GET("", handlers.ShowProject)

	// REPORTS
	project.GET("/reports/:report", handlers.ShowReport)
	project.GET("/reports/:report/chart.json", handlers.ChartData)
	project.POST("/reports/filter", handlers.SaveReportFilter)
	project.POST("/reports/:report/pdf", handlers.CreateReportPDF)
	project.GET("/pdf/:key", handlers.DownloadPDF)

	// EXPORTS
	project.GET("/exports/:file", handlers.Export)

	edit := project.Group("", middleware.RequireProjectEditAccess())
	edit.GET("/edit", handlers.ShowEditProject)
	edit.POST("/edit", handlers.UpdateProject)

	owner := project.Group("", middleware.RequireProjectOwner())
	owner.GET("/access", handlers.ShowProjectAccess)
	owner.POST("/access", handlers.GrantProjectAccess)
	owner.POST("/access/:token_id/delete", handlers.RevokeProjectAccess)

	// ADMIN
	admin := auth.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	admin.GET("/users", handlers.ListUsers)
	admin.GET("/users/:id", handlers.ShowEditUser)
	admin.POST("/users/:id", handlers.UpdateUser)
	admin.POST("/users/:id/delete", handlers.DeleteUser)
	admin.GET("/audit", handlers.ListAuditLogs)

	return r
}

// sessionStore uses redis when configured and falls back to signed cookies.
func sessionStore(cfg *config.Config) sessions.Store {
	var store sessions.Store
	if cfg.RedisAddr != "" {
		rs, err := redisstore.NewStore(10, "tcp", cfg.RedisAddr, cfg.RedisPassword, []byte(cfg.SessionSecret))
		if err != nil {
			logging.Log.WithError(err).Warn("redis session store unavailable, using cookies")
		} else {
			store = rs
		}
	}
	if store == nil {
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 3600,
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return store
}
