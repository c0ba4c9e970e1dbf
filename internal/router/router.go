package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bhoomi-portal/land-registry-api/internal/handler"
	"github.com/bhoomi-portal/land-registry-api/internal/middleware"
	"github.com/bhoomi-portal/land-registry-api/internal/models"
	"github.com/bhoomi-portal/land-registry-api/internal/service"
	"github.com/bhoomi-portal/land-registry-api/pkg/logger"
	corsmiddleware "github.com/bhoomi-portal/land-registry-api/pkg/middleware/cors"
	reqidmiddleware "github.com/bhoomi-portal/land-registry-api/pkg/middleware/requestid"
)

var errMissingService = errors.New("router requires all core services")

// Dependencies aggregates everything the HTTP surface needs.
type Dependencies struct {
	Auth         *service.AuthService
	Properties   *service.PropertyService
	Documents    *service.DocumentService
	Mutations    *service.MutationService
	Certificates *service.CertificateService
	Verification *service.VerificationService
	Reports      *service.ReportService
	Metrics      *service.MetricsService

	Logger         *zap.Logger
	AllowedOrigins []string
	APIPrefix      string
	Ready          func() error
}

// New assembles the gin engine with middleware and all route groups.
func New(deps Dependencies) (*gin.Engine, error) {
	if deps.Auth == nil || deps.Properties == nil || deps.Documents == nil ||
		deps.Mutations == nil || deps.Certificates == nil || deps.Verification == nil ||
		deps.Reports == nil {
		return nil, errMissingService
	}
	logr := deps.Logger
	if logr == nil {
		logr = zap.NewNop()
	}
	prefix := deps.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(deps.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if deps.Ready != nil {
			if err := deps.Ready(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	authHandler := handler.NewAuthHandler(deps.Auth)
	propertyHandler := handler.NewPropertyHandler(deps.Properties)
	documentHandler := handler.NewDocumentHandler(deps.Documents)
	mutationHandler := handler.NewMutationHandler(deps.Mutations, deps.Certificates)
	verificationHandler := handler.NewVerificationHandler(deps.Verification)
	reportHandler := handler.NewReportHandler(deps.Reports)

	api := r.Group(prefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
	}

	authed := api.Group("")
	authed.Use(middleware.JWT(deps.Auth))
	{
		authed.POST("/auth/logout", authHandler.Logout)
		authed.GET("/auth/me", authHandler.Me)

		authed.POST("/properties", propertyHandler.Create)
		authed.GET("/properties", propertyHandler.List)
		authed.GET("/properties/:id", propertyHandler.Get)
		authed.POST("/properties/:id/documents", documentHandler.Upload)
		authed.GET("/properties/:id/documents", documentHandler.List)
		authed.POST("/documents/:id/grant", documentHandler.Grant)

		authed.POST("/mutations", mutationHandler.Create)
		authed.GET("/mutations", mutationHandler.List)
		authed.GET("/mutations/:id", mutationHandler.Get)
		authed.DELETE("/mutations/:id", mutationHandler.Cancel)
		authed.GET("/mutations/:id/certificate", mutationHandler.Certificate)

		admin := authed.Group("")
		admin.Use(middleware.RequireRoles(models.RoleAdmin))
		{
			admin.POST("/mutations/:id/approve", mutationHandler.Approve)
			admin.POST("/mutations/:id/reject", mutationHandler.Reject)
			admin.GET("/reports/summary", reportHandler.Summary)
			admin.GET("/reports/mutations/export", reportHandler.ExportMutations)
		}
	}

	// Public surfaces: verification lookups and token-gated downloads.
	api.GET("/verify/property", verificationHandler.Property)
	api.GET("/verify/document/:hash", verificationHandler.Document)
	api.GET("/verify/mutation/:transactionId", verificationHandler.Mutation)
	api.GET("/documents/:id/download", documentHandler.Download)

	return r, nil
}
