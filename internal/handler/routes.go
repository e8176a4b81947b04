package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/lostid-api/internal/middleware"
	"github.com/noah-isme/lostid-api/internal/models"
)

// Router bundles everything RegisterRoutes mounts.
type Router struct {
	Auth       *AuthHandler
	LostItems  *LostItemHandler
	Claims     *ClaimHandler
	Stats      *StatsHandler
	Export     *ExportHandler
	Images     *ImageHandler
	Metrics    *MetricsHandler
	Tokens     middleware.TokenValidator
	Audit      middleware.AuditWriter
	Logger     *zap.Logger
	CookieName string
	APIPrefix  string
}

// RegisterRoutes mounts the public, student and admin route groups on r.
func RegisterRoutes(r *gin.Engine, rt Router) {
	prefix := rt.APIPrefix
	if prefix == "" {
		prefix = "/api"
	}

	if rt.Metrics != nil {
		r.GET("/health", rt.Metrics.Health)
		r.GET("/ready", rt.Metrics.Ready)
		r.GET("/metrics", rt.Metrics.Prometheus)
	}
	r.GET("/uploads/:filename", rt.Images.Serve)

	requireAuth := middleware.JWT(rt.Tokens, rt.CookieName)
	api := r.Group(prefix)

	auth := api.Group("/auth")
	auth.POST("/signup", rt.Auth.Signup)
	auth.POST("/login", rt.Auth.Login)
	auth.POST("/admin/login", rt.Auth.AdminLogin)
	auth.POST("/logout",
		middleware.OptionalJWT(rt.Tokens, rt.CookieName),
		middleware.Audit(rt.Audit, rt.Logger, models.AuditActionLogout, models.AuditResourceAuthenticate),
		rt.Auth.Logout)
	auth.GET("/me", requireAuth, rt.Auth.Me)

	users := api.Group("/users", requireAuth)
	users.GET("/lost-ids", rt.LostItems.ListAvailable)
	users.GET("/lost-ids/search/suggestions", rt.LostItems.Suggestions)
	users.GET("/lost-ids/meta/id-types", rt.LostItems.IDTypes)
	users.GET("/lost-ids/:id", rt.LostItems.GetAvailable)
	users.POST("/claims", rt.Claims.Submit)
	users.GET("/claims/my-claims", rt.Claims.MyClaims)
	users.GET("/claims/:id", rt.Claims.GetMine)
	users.DELETE("/claims/:id", rt.Claims.Cancel)

	admin := api.Group("/admin", requireAuth, middleware.RequireAdmin())
	admin.GET("/dashboard", rt.Stats.Dashboard)
	admin.GET("/trends", rt.Stats.Trends)
	admin.GET("/stats/id-types", rt.Stats.IDTypes)
	admin.GET("/stats/locations", rt.Stats.Locations)
	admin.GET("/stats/processing-times", rt.Stats.ProcessingTimes)
	admin.GET("/activity", rt.Stats.Activity)
	admin.GET("/health", rt.Stats.Health)
	admin.GET("/export/csv",
		middleware.Audit(rt.Audit, rt.Logger, models.AuditActionExport, models.AuditResourceExport),
		rt.Export.Export)

	admin.GET("/lost-ids", rt.LostItems.AdminList)
	admin.GET("/lost-ids/:id", rt.LostItems.AdminGet)
	admin.POST("/lost-ids", rt.LostItems.Create)
	admin.PUT("/lost-ids/:id", rt.LostItems.Update)
	admin.DELETE("/lost-ids/:id", rt.LostItems.Delete)

	admin.GET("/claims", rt.Claims.AdminList)
	admin.GET("/claims/stats/overview", rt.Stats.ClaimsOverview)
	admin.POST("/claims/bulk/approve", rt.Claims.BulkApprove)
	admin.GET("/claims/:id", rt.Claims.AdminGet)
	admin.POST("/claims/:id/approve", rt.Claims.Approve)
	admin.POST("/claims/:id/reject", rt.Claims.Reject)
	admin.POST("/claims/:id/collect", rt.Claims.Collect)
}
