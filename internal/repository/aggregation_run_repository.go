package repository

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tecace/axpro-metrics/internal/retry"
)

// AggregationRun records one computation of the daily aggregates window.
type AggregationRun struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	RequestID      string    `gorm:"column:request_id;uniqueIndex;size:64" json:"requestId"`
	Mode           string    `gorm:"column:mode;size:16;index" json:"mode"`
	Source         string    `gorm:"column:source;size:16" json:"source"`
	RealCount      int       `gorm:"column:real_count" json:"realCount"`
	EstimatedCount int       `gorm:"column:estimated_count" json:"estimatedCount"`
	Warning        string    `gorm:"column:warning;type:text" json:"warning,omitempty"`
	CreatedAt      time.Time `gorm:"column:created_at;index" json:"createdAt"`
}

// TableName overrides the default table name.
func (AggregationRun) TableName() string {
	return "aggregation_runs"
}

// AggregationRunRepository persists aggregation runs.
type AggregationRunRepository struct {
	db             *gorm.DB
	logger         *zap.Logger
	retryAttempts  int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewAggregationRunRepository creates a new repository instance.
func NewAggregationRunRepository(db *gorm.DB, logger *zap.Logger) *AggregationRunRepository {
	policy := retry.DefaultPolicy()
	return &AggregationRunRepository{
		db:             db,
		logger:         logger.Named("aggregation_run_repository"),
		retryAttempts:  policy.Attempts,
		initialBackoff: policy.InitialBackoff,
		maxBackoff:     policy.MaxBackoff,
	}
}

// AutoMigrate ensures the schema is available.
func (r *AggregationRunRepository) AutoMigrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&AggregationRun{})
}

// Record inserts run.
func (r *AggregationRunRepository) Record(ctx context.Context, run *AggregationRun) error {
	return r.executeWithRetry(ctx, "repository.record_run", run.RequestID, func() error {
		return r.db.WithContext(ctx).Create(run).Error
	})
}

// Recent returns up to limit runs, newest first.
func (r *AggregationRunRepository) Recent(ctx context.Context, limit int) ([]AggregationRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []AggregationRun
	err := r.executeWithRetry(ctx, "repository.recent_runs", "", func() error {
		return r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&runs).Error
	})
	if err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *AggregationRunRepository) executeWithRetry(ctx context.Context, operation, requestID string, fn func() error) error {
	policy := retry.Policy{
		Attempts:       r.retryAttempts,
		InitialBackoff: r.initialBackoff,
		MaxBackoff:     r.maxBackoff,
	}
	return retry.Do(ctx, r.logger, policy, operation, requestID, fn)
}
