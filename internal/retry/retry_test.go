package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/tecace/axpro-metrics/internal/logging"
)

type transientTestError struct{}

func (transientTestError) Error() string   { return "transient" }
func (transientTestError) Timeout() bool   { return true }
func (transientTestError) Temporary() bool { return true }

func fastPolicy(attempts int) Policy {
	return Policy{Attempts: attempts, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
}

func TestDoRetriesTransientErrors(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), zap.NewNop(), fastPolicy(3), "cache.get", "req-1", func() error {
		attempts++
		if attempts < 3 {
			return transientTestError{}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestDoStopsOnPermanentError(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), zap.NewNop(), fastPolicy(3), "cache.get", "req-2", func() error {
		attempts++
		return errors.New("boom")
	})
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
	var opErr *logging.OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected OperationError, got %T", err)
	}
	if opErr.Operation != "cache.get" || opErr.RequestID != "req-2" {
		t.Fatalf("unexpected operation metadata: %+v", opErr)
	}
}

func TestDoGivesUpAfterAttempts(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), nil, fastPolicy(2), "db.insert", "", func() error {
		attempts++
		return transientTestError{}
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestDoHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	policy := Policy{Attempts: 3, InitialBackoff: time.Second, MaxBackoff: time.Second}
	err := Do(ctx, zap.NewNop(), policy, "db.insert", "", func() error {
		return transientTestError{}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSingleAttemptPolicyWrapsError(t *testing.T) {
	base := errors.New("boom")
	err := Do(context.Background(), zap.NewNop(), Policy{Attempts: 1}, "db.insert", "", func() error { return base })
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if err := Do(context.Background(), zap.NewNop(), Policy{}, "db.insert", "", func() error { return nil }); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestIsTransient(t *testing.T) {
	if IsTransient(nil) {
		t.Fatal("nil must not be transient")
	}
	if !IsTransient(context.DeadlineExceeded) {
		t.Fatal("deadline exceeded should be transient")
	}
	if IsTransient(errors.New("boom")) {
		t.Fatal("plain errors should not be transient")
	}
}
