// Package source fetches raw log entries and calorie goals for a user.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/saadjs/kcal-trends/internal/logger"
	"github.com/saadjs/kcal-trends/internal/metrics"
	"github.com/saadjs/kcal-trends/internal/model"
)

// LogSource returns every log entry of a user.
type LogSource interface {
	Name() string
	FetchLogs(ctx context.Context, userID string) ([]model.LogEntry, error)
}

// GoalSource returns the active calorie goal, or nil when none is set.
type GoalSource interface {
	FetchCalorieGoal(ctx context.Context, userID string) (*float64, error)
}

var (
	ErrAllSourcesFailed = errors.New("no log source available")
	ErrNoSources        = errors.New("no log sources configured")
)

// FetchError is a failure of a single log source.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch logs from %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Chain tries its sources in order and returns the first success.
type Chain []LogSource

func (c Chain) Name() string {
	return "chain"
}

func (c Chain) FetchLogs(ctx context.Context, userID string) ([]model.LogEntry, error) {
	if len(c) == 0 {
		return nil, ErrNoSources
	}
	errs := []error{ErrAllSourcesFailed}
	for i, s := range c {
		logs, err := s.FetchLogs(ctx, userID)
		if err == nil {
			metrics.SourceFetchTotal.WithLabelValues(s.Name(), metrics.StatusOK).Inc()
			metrics.SourceEntriesFetched.WithLabelValues(s.Name()).Add(float64(len(logs)))
			if i > 0 {
				logger.Info("log source fallback succeeded", "source", s.Name(), "attempt", i+1, "entries", len(logs))
			}
			return logs, nil
		}
		metrics.SourceFetchTotal.WithLabelValues(s.Name(), metrics.StatusError).Inc()
		logger.Warn("log source failed", "source", s.Name(), "user_id", userID, "error", err)
		errs = append(errs, &FetchError{Source: s.Name(), Err: err})
		if ctx.Err() != nil {
			break
		}
	}
	return nil, errors.Join(errs...)
}
