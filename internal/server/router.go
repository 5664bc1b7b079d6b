// Package server assembles the HTTP surface: middleware, sessions, templates
// and routes.
package server

import (
	"embed"
	"html/template"
	"log/slog"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/ideahub/ideas-hub/internal/auth"
	"github.com/ideahub/ideas-hub/internal/config"
	"github.com/ideahub/ideas-hub/internal/ideas"
	"github.com/ideahub/ideas-hub/internal/store"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

const sessionName = "ideahub_session"

// NewRouter builds the Gin engine with all routes registered. The session
// store is injected so production can back sessions with Redis while tests
// and Redis-less deployments use the cookie store.
func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	sessionStore sessions.Store,
	users store.UserStore,
	ideaHandlers *ideas.Handlers,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(logger))
	router.Use(sessions.Sessions(sessionName, sessionStore))

	tmpl := template.Must(template.ParseFS(templatesFS, "templates/*.tmpl"))
	router.SetHTMLTemplate(tmpl)

	router.GET("/healthz", HealthHandler)

	// Auth surface
	router.GET("/login", auth.ShowLogin)
	router.POST("/login", auth.HandleLogin(users, logger))
	router.GET("/register", auth.ShowRegister)
	router.POST("/register", auth.HandleRegister(users, logger))
	router.GET("/logout", auth.HandleLogout(logger))
	router.GET("/auth/google", auth.HandleGoogleLogin)
	router.GET("/auth/google/callback", auth.HandleGoogleCallback(users, logger))

	// Protected surface
	protected := router.Group("/", auth.RequireAuth())
	protected.GET("/", ideaHandlers.List)
	protected.POST("/idea", ideaHandlers.Create)
	protected.POST("/idea/add-from-ia", ideaHandlers.CreateFromSuggestion)
	protected.GET("/idea/delete/:id", ideaHandlers.Delete)
	protected.GET("/edit/:id", ideaHandlers.ShowEdit)
	protected.POST("/edit/update/:id", ideaHandlers.Update)
	protected.GET("/dashboard/:id", ideaHandlers.Dashboard)
	protected.GET("/global-dashboard", ideaHandlers.GlobalDashboard)
	protected.GET("/brainstorm", ideaHandlers.ShowBrainstorm)
	protected.POST("/brainstorm", ideaHandlers.HandleBrainstorm)

	return router
}
