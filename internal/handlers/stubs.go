package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/samudrayan/backend/internal/middleware"
	"github.com/samudrayan/backend/internal/models"
	"github.com/samudrayan/backend/pkg/response"
)

// Placeholder routes for platform domains that ship after the homestay pilot.
// They hold the route shape and role guards stable for the mobile app while
// returning fixed payloads.

// Config reports client-facing platform configuration.
func Config(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"languages": []string{"en", "mr"},
		"features": gin.H{
			"offlineMode":    true,
			"gamification":   true,
			"csrIntegration": true,
		},
		"constants": gin.H{
			"maxFileSize":           maxDocumentSize,
			"supportedImageFormats": []string{"jpg", "jpeg", "png", "webp"},
			"supportedDocFormats":   []string{"pdf", "doc", "docx"},
		},
	})
}

func stubMessage(message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"message": message})
	}
}

func stubEmptyList(c *gin.Context) {
	response.Success(c, http.StatusOK, []any{})
}

func stubPayload(data gin.H) gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Success(c, http.StatusOK, data)
	}
}

// RegisterStubRoutes mounts the placeholder domains under the API group.
// requireAuth must be the JWT middleware; public reads skip it.
func RegisterStubRoutes(api *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	tourism := api.Group("/tourism")
	{
		tourism.POST("/spots", requireAuth, adminOnly, stubMessage("Tourism spot created successfully"))
		tourism.GET("/spots", stubEmptyList)
	}

	marketplace := api.Group("/marketplace")
	{
		sellers := middleware.RequireRole(models.RoleArtisan, models.RoleFisherfolk, models.RoleHomestayOwner, models.RoleAdmin)
		marketplace.POST("/products", requireAuth, sellers, stubMessage("Product created successfully"))
		marketplace.GET("/products", stubEmptyList)
		marketplace.POST("/cart", requireAuth, stubMessage("Added to cart"))
		marketplace.POST("/orders", requireAuth, stubPayload(gin.H{"orderId": "sample-order-id", "status": "pending-payment"}))
	}

	learning := api.Group("/learning")
	{
		authors := middleware.RequireRole(models.RoleAdmin, models.RoleTrainer)
		learning.POST("/modules", requireAuth, authors, stubMessage("Learning module created successfully"))
		learning.POST("/modules/:id/attempt", requireAuth, stubPayload(gin.H{"attemptId": "sample-attempt-id"}))
		learning.POST("/modules/:id/submit", requireAuth, stubPayload(gin.H{"score": 85, "passed": true, "certificateUrl": "sample-cert-url"}))
	}

	csr := api.Group("/csr")
	{
		csr.POST("/projects", requireAuth, adminOnly, stubMessage("CSR project created successfully"))
		csr.GET("/projects", stubEmptyList)
		csr.POST("/projects/:id/contributions", requireAuth, stubMessage("Contribution recorded successfully"))
		csr.GET("/projects/:id/impact", stubPayload(gin.H{"beneficiaries": 500, "contributions": 1000000}))
	}

	events := api.Group("/events")
	{
		events.POST("", requireAuth, adminOnly, stubMessage("Event created successfully"))
		events.GET("", stubEmptyList)
		events.POST("/:id/register", requireAuth, stubPayload(gin.H{"registrationId": "sample-registration-id"}))
	}

	blueEconomy := api.Group("/blue-economy")
	{
		reporters := middleware.RequireRole(models.RoleAdmin, models.RoleFisherfolk, models.RoleNGO)
		blueEconomy.POST("/records", requireAuth, reporters, stubMessage("Blue economy record created successfully"))
		blueEconomy.GET("/records", stubEmptyList)
	}

	feedback := api.Group("/feedback")
	{
		feedback.POST("/forms", requireAuth, adminOnly, stubMessage("Feedback form created successfully"))
		feedback.POST("/forms/:id/responses", requireAuth, stubMessage("Response submitted successfully"))
		feedback.GET("/forms/:id/analytics", requireAuth, adminOnly, stubPayload(gin.H{"totalResponses": 150, "averageRating": 4.2}))
	}

	rewards := api.Group("/rewards")
	{
		rewards.GET("/me", requireAuth, stubPayload(gin.H{"points": 250, "badges": []string{"Eco Ambassador"}, "level": "Bronze"}))
		rewards.POST("/redeem", requireAuth, stubMessage("Reward redeemed successfully"))
		rewards.GET("/leaderboard", stubEmptyList)
	}
}
