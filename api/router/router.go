package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"tool-pulse/api/handlers"
	"tool-pulse/db"
	"tool-pulse/services"
)

func New(svc *services.SentimentService) *gin.Engine {
	r := gin.Default()

	// Health check
	r.GET("/health", func(c *gin.Context) {
		// Try ping MongoDB
		if err := db.Database().RunCommand(context.Background(), bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// v1 routes
	api := r.Group("/api/v1")
	{
		api.POST("/subjects", handlers.RegisterSubjectHandler(svc))
		api.GET("/subjects/:slug/sentiment/latest", handlers.GetLatestSentimentHandler(svc))
		api.GET("/subjects/:slug/sentiment/history", handlers.GetSentimentHistoryHandler(svc))
		api.POST("/subjects/:slug/sentiment/runs", handlers.TriggerSentimentRunHandler(svc))
	}

	return r
}
