package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tool-pulse/services"
)

// GetLatestSentimentHandler returns the most recent aggregate for a subject
// together with the latest run per source.
func GetLatestSentimentHandler(svc *services.SentimentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		agg, runs, err := svc.Latest(c.Request.Context(), slug)
		if err != nil {
			if errors.Is(err, services.ErrSubjectNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "subject not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if agg == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no sentiment yet"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"aggregate": agg, "runs": runs})
	}
}

// GetSentimentHistoryHandler lists past aggregates, most recent first.
func GetSentimentHistoryHandler(svc *services.SentimentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		items, err := svc.History(c.Request.Context(), slug, limit)
		if err != nil {
			if errors.Is(err, services.ErrSubjectNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "subject not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// TriggerSentimentRunHandler kicks off the pipeline for a subject and blocks
// until it finishes. Collection plus LLM calls take a while, so clients should
// use generous timeouts.
func TriggerSentimentRunHandler(svc *services.SentimentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		result, err := svc.Trigger(c.Request.Context(), slug)
		if err != nil {
			if errors.Is(err, services.ErrSubjectNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "subject not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		status := http.StatusOK
		if !result.Success {
			status = http.StatusBadGateway
		}
		c.JSON(status, result)
	}
}

type registerSubjectRequest struct {
	Name         string `json:"name" binding:"required"`
	Slug         string `json:"slug" binding:"required"`
	SearchPhrase string `json:"search_phrase"`
}

// RegisterSubjectHandler upserts a subject by slug.
func RegisterSubjectHandler(svc *services.SentimentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerSubjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		subject, err := svc.RegisterSubject(c.Request.Context(), req.Name, req.Slug, req.SearchPhrase)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, subject)
	}
}
