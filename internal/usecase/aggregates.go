package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tecace/axpro-metrics/internal/aggregates"
	"github.com/tecace/axpro-metrics/internal/estimation"
	"github.com/tecace/axpro-metrics/internal/logging"
	"github.com/tecace/axpro-metrics/internal/repository"
	"github.com/tecace/axpro-metrics/internal/sheets"
	"github.com/tecace/axpro-metrics/internal/telemetry"
)

// Where the rows of a result came from.
const (
	SourceSheet    = "sheet"
	SourceFallback = "fallback"
)

// SheetLoader fetches the real daily rows.
type SheetLoader interface {
	Load(ctx context.Context) ([]aggregates.DailyRow, error)
}

// RunRecorder persists one aggregation run.
type RunRecorder interface {
	Record(ctx context.Context, run *repository.AggregationRun) error
}

// DailyResult is the window served to the dashboard.
type DailyResult struct {
	RequestID      string                `json:"requestId"`
	Mode           estimation.Mode       `json:"mode"`
	Source         string                `json:"source"`
	Warning        string                `json:"warning,omitempty"`
	RealCount      int                   `json:"realCount"`
	EstimatedCount int                   `json:"estimatedCount"`
	Rows           []aggregates.DailyRow `json:"rows"`
	Summary        aggregates.Summary    `json:"summary"`
}

// AggregatesUseCase builds the daily metrics window.
type AggregatesUseCase struct {
	loader  SheetLoader
	runs    RunRecorder
	builder aggregates.Builder
	rng     aggregates.Rand
	strict  bool
	now     func() time.Time
	logger  *zap.Logger
}

// Option customises an AggregatesUseCase.
type Option func(*AggregatesUseCase)

// WithBuilder overrides the window length and anchor.
func WithBuilder(b aggregates.Builder) Option {
	return func(uc *AggregatesUseCase) { uc.builder = b }
}

// WithStrictSource makes sheet failures surface as errors instead of
// falling back to fabricated rows.
func WithStrictSource(strict bool) Option {
	return func(uc *AggregatesUseCase) { uc.strict = strict }
}

// WithRand sets the random source for estimates and fallback rows.
func WithRand(rng aggregates.Rand) Option {
	return func(uc *AggregatesUseCase) { uc.rng = rng }
}

// WithClock sets the clock used to find today.
func WithClock(now func() time.Time) Option {
	return func(uc *AggregatesUseCase) { uc.now = now }
}

// NewAggregatesUseCase constructs the use case. runs may be nil when no
// database is configured.
func NewAggregatesUseCase(loader SheetLoader, runs RunRecorder, logger *zap.Logger, opts ...Option) *AggregatesUseCase {
	uc := &AggregatesUseCase{
		loader:  loader,
		runs:    runs,
		builder: aggregates.NewBuilder(),
		rng:     estimation.GlobalRand(),
		now:     time.Now,
		logger:  logger.Named("aggregates_usecase"),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Daily returns the trailing window for modeName, dropping estimated rows
// unless includeEstimated is set. Any sheet failure degrades to fabricated
// rows flagged in Source and Warning, unless strict mode is on.
func (uc *AggregatesUseCase) Daily(ctx context.Context, modeName string, includeEstimated bool) (*DailyResult, error) {
	mode, err := estimation.ParseMode(modeName)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	opLogger := logging.WithOperation(uc.logger, "usecase.daily_aggregates", requestID)
	today := uc.now()

	result := &DailyResult{RequestID: requestID, Mode: mode, Source: SourceSheet}

	var rows []aggregates.DailyRow
	sheetRows, err := uc.loader.Load(ctx)
	if err == nil && len(sheetRows) == 0 {
		err = sheets.ErrNoValidRows
	}
	if err != nil {
		wrapped := logging.NewOperationError("sheets.load", requestID, err)
		if uc.strict {
			opLogger.Error("sheet load failed", zap.Error(wrapped))
			return nil, wrapped
		}
		reason := fallbackReason(err)
		opLogger.Warn("sheet unavailable, serving fallback rows", zap.Error(wrapped), zap.String("reason", reason))
		telemetry.RecordFallback(reason)

		result.Source = SourceFallback
		result.Warning = wrapped.Error()
		rows = aggregates.Fallback(today, uc.rng)
	} else {
		strategy, err := estimation.New(mode, uc.rng)
		if err != nil {
			return nil, err
		}
		rows = uc.builder.Build(sheetRows, strategy, today)
	}

	result.EstimatedCount, result.RealCount = aggregates.CountEstimated(rows)
	telemetry.RecordEstimatedRows(string(mode), result.EstimatedCount)
	opLogger.Debug("built daily window",
		zap.String("mode", string(mode)),
		zap.String("source", result.Source),
		zap.Int("real", result.RealCount),
		zap.Int("estimated", result.EstimatedCount),
	)

	uc.record(ctx, opLogger, result)

	result.Rows = aggregates.Filter(rows, includeEstimated)
	result.Summary = aggregates.Summarize(result.Rows)
	return result, nil
}

func (uc *AggregatesUseCase) record(ctx context.Context, opLogger *zap.Logger, result *DailyResult) {
	if uc.runs == nil {
		return
	}
	run := &repository.AggregationRun{
		RequestID:      result.RequestID,
		Mode:           string(result.Mode),
		Source:         result.Source,
		RealCount:      result.RealCount,
		EstimatedCount: result.EstimatedCount,
		Warning:        result.Warning,
		CreatedAt:      uc.now().UTC(),
	}
	if err := uc.runs.Record(ctx, run); err != nil {
		opLogger.Warn("failed to record aggregation run", zap.Error(err))
	}
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, sheets.ErrEmptySheet):
		return "empty_sheet"
	case errors.Is(err, sheets.ErrNoValidRows):
		return "no_valid_rows"
	default:
		return "fetch"
	}
}
