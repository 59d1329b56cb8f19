package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tecace/axpro-metrics/internal/activity"
	"github.com/tecace/axpro-metrics/internal/auth"
	"github.com/tecace/axpro-metrics/internal/estimation"
	"github.com/tecace/axpro-metrics/internal/repository"
	"github.com/tecace/axpro-metrics/internal/telemetry"
	"github.com/tecace/axpro-metrics/internal/usecase"
)

// AggregatesService builds the daily metrics window.
type AggregatesService interface {
	Daily(ctx context.Context, mode string, includeEstimated bool) (*usecase.DailyResult, error)
}

// ActivityService serves cached daily message counts.
type ActivityService interface {
	Counts(ctx context.Context, token, startDate, endDate string) (*activity.DailyMessageResponse, error)
	Invalidate(ctx context.Context, startDate, endDate string) error
}

// RunLister lists recorded aggregation runs.
type RunLister interface {
	Recent(ctx context.Context, limit int) ([]repository.AggregationRun, error)
}

// Services groups the dependencies of the HTTP layer. Runs and Logger may
// be nil.
type Services struct {
	Aggregates AggregatesService
	Activity   ActivityService
	Runs       RunLister
	Logger     *zap.Logger
}

// requestLogger tags log lines on protected routes with the token subject.
func requestLogger(logger *zap.Logger, c *gin.Context) *zap.Logger {
	subject, _ := auth.GetUserID(c.Request.Context())
	return logger.With(zap.String("subject", subject), zap.String("path", c.FullPath()))
}

// RegisterRoutes wires the HTTP handlers to the Gin router.
func RegisterRoutes(router *gin.Engine, svc Services, authMiddleware gin.HandlerFunc) {
	logger := svc.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("handlers")

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(telemetry.Handler()))

	api := router.Group("/api")
	api.GET("/estimation-modes", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"modes":   estimation.Modes(),
			"default": estimation.DefaultMode,
		})
	})

	api.GET("/daily-aggregates", func(c *gin.Context) {
		includeEstimated := true
		if raw := c.Query("includeEstimated"); raw != "" {
			parsed, err := strconv.ParseBool(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "includeEstimated must be a boolean"})
				return
			}
			includeEstimated = parsed
		}

		result, err := svc.Aggregates.Daily(c.Request.Context(), c.Query("mode"), includeEstimated)
		if err != nil {
			if errors.Is(err, estimation.ErrUnknownMode) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	})

	protected := api.Group("", authMiddleware)

	protected.GET("/daily-message-activity", func(c *gin.Context) {
		token, _ := auth.GetToken(c.Request.Context())
		resp, err := svc.Activity.Counts(c.Request.Context(), token, c.Query("startDate"), c.Query("endDate"))
		if err != nil {
			if errors.Is(err, activity.ErrInvalidPeriod) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			requestLogger(logger, c).Error("message activity failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, resp)
	})

	protected.DELETE("/daily-message-activity/cache", func(c *gin.Context) {
		start, end := c.Query("startDate"), c.Query("endDate")
		log := requestLogger(logger, c).With(zap.String("start_date", start), zap.String("end_date", end))
		if err := svc.Activity.Invalidate(c.Request.Context(), start, end); err != nil {
			log.Error("cache invalidation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to invalidate cache"})
			return
		}
		log.Info("activity cache invalidated")
		c.Status(http.StatusNoContent)
	})

	if svc.Runs == nil {
		return
	}
	protected.GET("/aggregation-runs", func(c *gin.Context) {
		limit := 20
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 || parsed > 500 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
				return
			}
			limit = parsed
		}
		runs, err := svc.Runs.Recent(c.Request.Context(), limit)
		if err != nil {
			requestLogger(logger, c).Error("list aggregation runs failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"runs": runs})
	})
}
