package routes

import (
	"fieldserve/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterAllocationRoutes registers all endpoints for the allocation core.
func RegisterAllocationRoutes(r *gin.Engine) {
	slots := r.Group("/api/slots")
	{
		slots.POST("", handlers.GetViableSlotsHandler)           // Candidate generation
		slots.POST("/present", handlers.PresentSlotsHandler)     // Ranked customer view
		slots.POST("/score", handlers.ScoreSlotHandler)          // Single-slot scoring
		slots.POST("/price", handlers.CalculatePriceHandler)     // Single-slot pricing
		slots.POST("/risk", handlers.PredictRiskHandler)         // Cancellation risk
		slots.POST("/commit", handlers.CommitSlotHandler)        // Confirm booking
	}

	engineers := r.Group("/api/engineers")
	{
		engineers.GET("/:engineerId/workload", handlers.WorkloadHandler)
		engineers.GET("/:engineerId/route", handlers.RouteHandler)
	}

	payments := r.Group("/api/payments")
	{
		payments.POST("/deposit", handlers.CollectDepositHandler)
	}

	r.GET("/health", handlers.HealthHandler)
}
