package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/webdevsha/permitak/internal/infrastructure/auth"
	"github.com/webdevsha/permitak/internal/interfaces/http/handler"
	"github.com/webdevsha/permitak/internal/interfaces/http/middleware"
)

// Handlers are the HTTP handlers the API is built from
type Handlers struct {
	Health       *handler.HealthHandler
	Locations    *handler.LocationHandler
	Tenants      *handler.TenantHandler
	Assignments  *handler.AssignmentHandler
	Payments     *handler.PaymentHandler
	Transactions *handler.TransactionHandler
	Dashboard    *handler.DashboardHandler

	// Metrics serves the Prometheus exposition; nil leaves /metrics unrouted
	Metrics http.Handler
}

// Mount registers /health, /metrics and the versioned API on engine.
// apiMiddleware runs on every /api route ahead of the role checks, so the
// authentication middleware belongs there.
func Mount(engine *gin.Engine, h Handlers, apiMiddleware ...gin.HandlerFunc) {
	engine.GET("/health", h.Health.Health)
	if h.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(h.Metrics))
	}

	operators := middleware.RequireRoles(auth.RoleAdmin, auth.RoleStaff)
	viewers := middleware.RequireRoles(auth.RoleAdmin, auth.RoleStaff, auth.RoleOrganizer)
	tenants := middleware.RequireRoles(auth.RoleTenant)

	r := NewRouter(engine, WithAPIMiddleware(apiMiddleware...))
	r.Register(
		locationRoutes(h, viewers, operators),
		tenantRoutes(h, viewers, operators),
		NewDomainGroup("assignments", "/assignments").Use(operators).
			PATCH("/:id/status", h.Assignments.ToggleStatus).
			PATCH("/:id/stall", h.Assignments.UpdateStall),
		NewDomainGroup("self-service", "/me").Use(tenants).
			GET("/rentals", h.Payments.MyRentals).
			POST("/payments/manual", h.Payments.SubmitManual).
			POST("/payments/gateway", h.Payments.InitiateGateway),
		paymentRoutes(h, operators, tenants),
		NewDomainGroup("ledger", "/transactions").Use(operators).
			GET("", h.Transactions.List).
			POST("", h.Transactions.Create).
			GET("/summary", h.Transactions.Summary).
			GET("/:id", h.Transactions.Get),
		NewDomainGroup("dashboard", "/dashboard").Use(viewers).
			GET("/overview", h.Dashboard.Overview),
		NewDomainGroup("reports", "/reports").Use(operators).
			GET("/arrears.xlsx", h.Dashboard.ExportArrears),
	)
	r.Setup()
}

func locationRoutes(h Handlers, viewers, operators gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("locations", "/locations")
	g.Group("locations-read", "").Use(viewers).
		GET("", h.Locations.List).
		GET("/:id", h.Locations.Get).
		GET("/:id/tenants", h.Locations.Tenants)
	g.Group("locations-write", "").Use(operators).
		POST("", h.Locations.Create).
		PUT("/:id", h.Locations.Update).
		DELETE("/:id", h.Locations.Delete)
	return g
}

func tenantRoutes(h Handlers, viewers, operators gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("tenants", "/tenants")
	g.Group("tenants-status", "").Use(viewers).
		GET("/status", h.Tenants.Statuses)
	g.Group("tenants-admin", "").Use(operators).
		GET("", h.Tenants.List).
		POST("", h.Tenants.Create).
		GET("/:id", h.Tenants.Get).
		PUT("/:id", h.Tenants.Update).
		POST("/:id/assignments", h.Tenants.Assign)
	return g
}

func paymentRoutes(h Handlers, operators, tenants gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("payments", "/payments")
	g.Group("payments-return", "").Use(tenants).
		GET("/return", h.Payments.Return)
	g.Group("payments-review", "").Use(operators).
		GET("/pending", h.Payments.Pending).
		POST("/:id/review", h.Payments.Review)
	return g
}
