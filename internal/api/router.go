package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	iauth "github.com/samudrayan/backend/internal/auth"
	"github.com/samudrayan/backend/internal/handlers"
	"github.com/samudrayan/backend/internal/middleware"
	"github.com/samudrayan/backend/internal/models"
	"github.com/samudrayan/backend/internal/services"
	"github.com/samudrayan/backend/internal/storage"
	"github.com/samudrayan/backend/internal/verification"
)

// Dependencies carries the wired services the router mounts.
type Dependencies struct {
	DB           *gorm.DB
	JWT          *iauth.JWTService
	Verifier     iauth.IdentityVerifier
	Verification *verification.Service
	Store        storage.Store
	RateStore    middleware.RateStore
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if deps.JWT == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if deps.Verifier == nil {
		return nil, fmt.Errorf("identity verifier must be provided")
	}
	if deps.Verification == nil {
		return nil, fmt.Errorf("verification service must be provided")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("document store must be provided")
	}

	authSvc, err := services.NewAuthService(deps.DB, deps.JWT, deps.Verifier)
	if err != nil {
		return nil, err
	}
	userSvc, err := services.NewUserService(deps.DB)
	if err != nil {
		return nil, err
	}
	homestaySvc, err := services.NewHomestayService(deps.DB)
	if err != nil {
		return nil, err
	}
	bookingSvc, err := services.NewBookingService(deps.DB)
	if err != nil {
		return nil, err
	}
	reviewSvc, err := services.NewReviewService(deps.DB)
	if err != nil {
		return nil, err
	}
	masterSvc, err := services.NewMasterService(deps.DB)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	// Basic rate limiting: 100 requests/minute per IP+path
	r.Use(middleware.RateLimit(deps.RateStore, 100, time.Minute))

	// Health and metrics (public, outside /api)
	r.GET("/health", handlers.Health(deps.DB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.Auth(deps.JWT)
	reviewRoles := middleware.RequireRole(models.RoleAdmin, models.RoleDistrictAdmin, models.RoleTalukaAdmin)

	authHandler := handlers.NewAuthHandler(authSvc, userSvc)
	userHandler := handlers.NewUserHandler(userSvc)
	homestayHandler := handlers.NewHomestayHandler(homestaySvc, bookingSvc)
	verificationHandler := handlers.NewVerificationHandler(deps.Verification, deps.Store, deps.DB)
	adminHandler := handlers.NewAdminVerificationHandler(reviewSvc, deps.Verification, deps.DB)
	masterHandler := handlers.NewMasterHandler(masterSvc)

	api := r.Group("/api")

	api.GET("/config", handlers.Config)

	// Auth
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.GET("/me", requireAuth, authHandler.Me)
	}

	// Users (self-service)
	users := api.Group("/users", requireAuth)
	{
		users.GET("/me", userHandler.Me)
		users.PATCH("/me", userHandler.UpdateMe)
		users.GET("/me/bookings", userHandler.MyBookings)
	}

	// Master data
	master := api.Group("/master")
	{
		master.GET("/locations", masterHandler.Locations)
		master.GET("/categories", masterHandler.Categories)
	}

	// Homestays: browsing is public, creating and booking are not
	homestays := api.Group("/homestays")
	{
		homestays.GET("", homestayHandler.List)
		homestays.GET("/:id", homestayHandler.Get)
		homestays.POST("", requireAuth, middleware.RequireRole(models.RoleHomestayOwner), homestayHandler.Create)
		homestays.GET("/:id/bookings", requireAuth, homestayHandler.ListBookings)
		homestays.POST("/:id/bookings", requireAuth, homestayHandler.CreateBooking)
	}

	// Aadhar verification (own account)
	verificationGroup := api.Group("/verification/aadhaar", requireAuth)
	{
		verificationGroup.POST("/verify", verificationHandler.Verify)
		verificationGroup.POST("/retry", verificationHandler.Retry)
		verificationGroup.GET("/status", verificationHandler.Status)
		verificationGroup.GET("/history", verificationHandler.History)
		verificationGroup.POST("/check", verificationHandler.Check)
		verificationGroup.POST("/document", verificationHandler.UploadDocument)
	}

	// Admin review queues
	admin := api.Group("/admin/verifications", requireAuth, reviewRoles)
	{
		admin.GET("/homestays", adminHandler.PendingHomestays)
		admin.GET("/homestays/:id", adminHandler.HomestayDetail)
		admin.POST("/homestays/:id/approve", adminHandler.ApproveHomestay)
		admin.POST("/homestays/:id/reject", adminHandler.RejectHomestay)

		admin.GET("/aadhaar", adminHandler.PendingAadhaar)
		admin.GET("/aadhaar/statistics", adminHandler.AadhaarStatistics)
		admin.GET("/aadhaar/:uid", adminHandler.AadhaarDetail)
		admin.POST("/aadhaar/:uid/approve", adminHandler.ApproveAadhaar)
		admin.POST("/aadhaar/:uid/reject", adminHandler.RejectAadhaar)
	}

	// Future platform domains keep their route shape with fixed payloads
	handlers.RegisterStubRoutes(api, requireAuth)

	// Locally stored documents are served statically
	if local, ok := deps.Store.(*storage.LocalStore); ok {
		r.Static("/uploads", local.BaseDir())
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
