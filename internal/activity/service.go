package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tecace/axpro-metrics/internal/aggregates"
	"github.com/tecace/axpro-metrics/internal/cache"
	"github.com/tecace/axpro-metrics/internal/estimation"
	"github.com/tecace/axpro-metrics/internal/logging"
	"github.com/tecace/axpro-metrics/internal/retry"
	"github.com/tecace/axpro-metrics/internal/telemetry"
)

const (
	// DefaultCacheTTL is how long a completed period stays cached.
	DefaultCacheTTL = 24 * time.Hour

	cacheKeyPrefix = "daily-messages-"
)

// ErrInvalidPeriod is returned for malformed or inverted date ranges.
var ErrInvalidPeriod = errors.New("invalid period")

// Upstream fetches message counts from the evaluation API.
type Upstream interface {
	DailyMessages(ctx context.Context, token, startDate, endDate string) (*DailyMessageResponse, error)
}

// Service answers message count queries through the cache.
type Service struct {
	upstream Upstream
	cache    cache.Cache
	ttl      time.Duration
	policy   retry.Policy
	logger   *zap.Logger
	rng      aggregates.Rand
	now      func() time.Time
}

// NewService wires the upstream client and cache. A non-positive ttl uses
// DefaultCacheTTL and a nil rng the shared generator.
func NewService(upstream Upstream, c cache.Cache, ttl time.Duration, rng aggregates.Rand, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if rng == nil {
		rng = estimation.GlobalRand()
	}
	return &Service{
		upstream: upstream,
		cache:    c,
		ttl:      ttl,
		policy:   retry.DefaultPolicy(),
		logger:   logger.Named("activity_service"),
		rng:      rng,
		now:      time.Now,
	}
}

// CacheKey is the cache key for a period.
func CacheKey(startDate, endDate string) string {
	return fmt.Sprintf("%s%s-%s", cacheKeyPrefix, startDate, endDate)
}

// Counts returns the daily message counts between startDate and endDate.
// Only periods that ended before today are cached. An upstream failure
// degrades to generated counts rather than an error.
func (s *Service) Counts(ctx context.Context, token, startDate, endDate string) (*DailyMessageResponse, error) {
	start, end, err := parsePeriod(startDate, endDate)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	opLogger := logging.WithOperation(s.logger, "activity.counts", requestID)
	key := CacheKey(startDate, endDate)

	if cached, ok := s.lookup(ctx, requestID, key); ok {
		return cached, nil
	}

	resp, err := s.upstream.DailyMessages(ctx, token, startDate, endDate)
	if err != nil {
		opLogger.Warn("upstream failed, serving generated counts", zap.Error(err))
		return s.dummy(start, end, startDate, endDate), nil
	}

	if end.Before(aggregates.Day(s.now())) {
		s.store(ctx, requestID, key, resp)
	}
	return resp, nil
}

// Invalidate drops the cached period, or every cached period when either
// date is empty.
func (s *Service) Invalidate(ctx context.Context, startDate, endDate string) error {
	requestID := uuid.NewString()
	if startDate != "" && endDate != "" {
		return retry.Do(ctx, s.logger, s.policy, "cache.delete", requestID, func() error {
			return s.cache.Delete(ctx, CacheKey(startDate, endDate))
		})
	}
	return retry.Do(ctx, s.logger, s.policy, "cache.delete_prefix", requestID, func() error {
		return s.cache.DeletePrefix(ctx, cacheKeyPrefix)
	})
}

func (s *Service) lookup(ctx context.Context, requestID, key string) (*DailyMessageResponse, bool) {
	var (
		raw string
		hit bool
	)
	err := retry.Do(ctx, s.logger, s.policy, "cache.get", requestID, func() error {
		value, err := s.cache.Get(ctx, key)
		if errors.Is(err, cache.ErrMiss) {
			return nil
		}
		if err != nil {
			return err
		}
		raw, hit = value, true
		return nil
	})
	opLogger := logging.WithOperation(s.logger, "activity.cache_lookup", requestID)
	if err != nil {
		opLogger.Warn("failed to read cache", zap.Error(err))
		telemetry.RecordCacheLookup(false)
		return nil, false
	}
	if !hit {
		telemetry.RecordCacheLookup(false)
		return nil, false
	}

	var payload DailyMessageResponse
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		opLogger.Warn("failed to decode cached counts", zap.Error(err))
		telemetry.RecordCacheLookup(false)
		return nil, false
	}
	telemetry.RecordCacheLookup(true)
	return &payload, true
}

func (s *Service) store(ctx context.Context, requestID, key string, resp *DailyMessageResponse) {
	serialized, err := json.Marshal(resp)
	if err != nil {
		logging.WithOperation(s.logger, "activity.cache_store", requestID).Error("failed to serialize counts", zap.Error(err))
		return
	}
	if err := retry.Do(ctx, s.logger, s.policy, "cache.set", requestID, func() error {
		return s.cache.Set(ctx, key, string(serialized), s.ttl)
	}); err != nil {
		logging.WithOperation(s.logger, "activity.cache_store", requestID).Warn("failed to cache counts", zap.Error(err))
	}
}

// dummy fabricates 1-20 messages per day starting at start, one entry per
// whole day between start and end.
func (s *Service) dummy(start, end time.Time, startDate, endDate string) *DailyMessageResponse {
	days := int(math.Ceil(end.Sub(start).Hours() / 24))
	counts := make([]MessageCount, 0, days)
	total := 0
	for i := 0; i < days; i++ {
		count := int(s.rng.Float64()*20) + 1
		counts = append(counts, MessageCount{Date: aggregates.FormatDate(start.AddDate(0, 0, i)), Count: count})
		total += count
	}
	average := 0
	if days > 0 {
		average = int(math.Round(float64(total) / float64(days)))
	}
	return &DailyMessageResponse{
		MessageCounts:   counts,
		TotalMessages:   total,
		AverageMessages: average,
		Period:          Period{StartDate: startDate, EndDate: endDate},
	}
}

func parsePeriod(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := aggregates.ParseDate(startDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start date %q", ErrInvalidPeriod, startDate)
	}
	end, err := aggregates.ParseDate(endDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end date %q", ErrInvalidPeriod, endDate)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end date before start date", ErrInvalidPeriod)
	}
	return start, end, nil
}
