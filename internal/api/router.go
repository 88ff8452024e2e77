package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/laporpak/report-service/internal/api/handler"
	"github.com/laporpak/report-service/internal/api/middleware"
	"github.com/laporpak/report-service/internal/core/domain"
	"github.com/laporpak/report-service/internal/core/ports"

	_ "github.com/laporpak/report-service/docs"
)

// maxSubmitBody bounds multipart submissions: a 4.5 MB photo plus form fields.
const maxSubmitBody = "6M"

// Deps carries everything the HTTP layer talks to.
type Deps struct {
	Auth       ports.AuthService
	Identities ports.IdentityProvider
	Submitter  ports.ReportSubmitter
	Reader     ports.ReportReader
	Triager    ports.ReportTriager
	Drafts     ports.DraftService
	Readiness  map[string]handler.Pinger
	Cookie     handler.CookieConfig
	Logger     zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
// It registers the HTTP metrics with the default Prometheus registry, so it is
// meant to be called once per process.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace: "laporpak",
		Subsystem: "http",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
		DoNotUseRequestPathFor404: true,
	}))
	e.Use(middleware.Session(d.Cookie.Name))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Cookie)
	reportHandler := handler.NewReportHandler(d.Submitter, d.Reader)
	adminHandler := handler.NewAdminHandler(d.Reader, d.Triager)
	draftHandler := handler.NewDraftHandler(d.Drafts)
	authenticated := middleware.RBAC(d.Identities)
	adminOnly := middleware.RBAC(d.Identities, domain.RoleAdmin)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", authHandler.Me)

	// --- Citizen routes ---
	v1 := e.Group("/v1", authenticated)
	v1.POST("/reports", reportHandler.Submit, echomiddleware.BodyLimit(maxSubmitBody))
	v1.GET("/reports/mine", reportHandler.ListMine)
	v1.GET("/reports/draft", draftHandler.Get)
	v1.PUT("/reports/draft", draftHandler.SaveForm)
	v1.DELETE("/reports/draft", draftHandler.Discard)
	v1.PUT("/reports/draft/location", draftHandler.PickLocation)
	v1.GET("/reports/:id", reportHandler.Get)
	v1.GET("/geo/reverse", draftHandler.Reverse)

	// --- Admin routes ---
	admin := v1.Group("/admin", adminOnly)
	admin.GET("/reports", adminHandler.List)
	admin.GET("/reports/stats", adminHandler.Stats)
	admin.PATCH("/reports/:id/status", adminHandler.ChangeStatus)
	admin.DELETE("/reports/:id", adminHandler.Delete)

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Readiness)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
