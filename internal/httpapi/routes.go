package httpapi

import (
	"log/slog"

	"workforce-lodging/internal/auth"
	"workforce-lodging/internal/identity"
	"workforce-lodging/internal/rbac"
	"workforce-lodging/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RouterOptions carries the cross-cutting pieces of the router.
type RouterOptions struct {
	Logger   *slog.Logger
	Verifier auth.Verifier
	// Limiter throttles signup and login. Nil disables throttling.
	Limiter Limiter
	HSTS    bool
}

// NewRouter builds the gin engine: recovery, request logging, security
// headers, client IP capture and identity attachment run on every request,
// then the /api routes.
func NewRouter(h *Handlers, opts RouterOptions) *gin.Engine {
	l := opts.Logger
	if l == nil {
		l = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(l))
	r.Use(SecurityHeaders(opts.HSTS))
	r.Use(ClientIP())
	r.Use(auth.AttachIdentity(opts.Verifier, h.Cookie.Name))

	registerRoutes(r.Group("/api"), h, opts.Limiter)
	return r
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules.
func registerRoutes(api *gin.RouterGroup, h *Handlers, limiter Limiter) {
	// public
	api.GET("/health", h.Health)
	api.GET("/ready", h.Readiness)
	api.POST("/signup", Throttle(limiter, "signup"), h.Signup)
	api.POST("/login", Throttle(limiter, "login"), h.Login)
	api.POST("/logout", h.Logout)

	// any signed-in user
	authed := api.Group("")
	authed.Use(rbac.RequireAuthenticated())
	{
		authed.GET("/me", h.Me)
		authed.GET("/account", h.GetAccount)
		authed.PUT("/account", h.UpdateAccount)
		authed.PUT("/account/password", h.ChangePassword)
		authed.GET("/hotels", h.ListHotels)
	}

	employer := api.Group("/employer")
	employer.Use(rbac.RequireRole(identity.RoleEmployer))
	{
		employer.GET("/account", h.GetEmployer)
		employer.POST("/account", h.CreateEmployer)
		employer.PUT("/account", h.UpdateEmployer)
		employer.GET("/summary", h.EmployerSummary)
		employer.GET("/workers", h.ListWorkers)
		employer.POST("/workers/bulk", h.ImportWorkers)

		employer.POST("/requests", h.CreateRequest)
		employer.GET("/requests", h.ListRequests)
		employer.GET("/requests/:id", h.GetRequest)
		employer.POST("/requests/:id/submit", h.SubmitRequest())
		employer.PATCH("/requests/:id/cancel", h.CancelRequest())
		employer.POST("/requests/:id/extend", h.RequestExtension)
		employer.GET("/requests/:id/extensions", h.ListExtensions)
	}

	// ADMIN is listed explicitly; there is no implicit bypass.
	frontdesk := api.Group("/frontdesk")
	frontdesk.Use(rbac.RequireRole(rbac.StaffRoles...))
	{
		frontdesk.GET("/summary", h.FrontdeskSummary)
		frontdesk.GET("/requests", h.ListRequests)
		frontdesk.GET("/requests/:id", h.GetRequest)
		frontdesk.POST("/requests/:id/decision", h.DecideRequest)
		frontdesk.POST("/requests/:id/assign", h.AssignRequest())
		frontdesk.POST("/requests/:id/check-in", h.CheckIn())
		frontdesk.POST("/requests/:id/check-out", h.CheckOut())
		frontdesk.POST("/extensions/:id/decision", h.DecideExtension)
	}

	admin := api.Group("/admin")
	admin.Use(rbac.RequireRole(identity.RoleAdmin))
	{
		admin.GET("/summary", h.AdminSummary)
		admin.GET("/users", h.ListUsers)
		admin.PATCH("/users/:id/role", h.ChangeRole)
	}
}
