// Package pipeline runs trend requests against a log source and publishes
// the latest result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/saadjs/kcal-trends/internal/logger"
	"github.com/saadjs/kcal-trends/internal/metrics"
	"github.com/saadjs/kcal-trends/internal/model"
	"github.com/saadjs/kcal-trends/internal/service"
	"github.com/saadjs/kcal-trends/internal/source"
)

var ErrNoRequest = errors.New("no request has been issued yet")

type State int32

const (
	StateIdle State = iota
	StateFetching
	StateAggregating
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateAggregating:
		return "aggregating"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Request selects what to aggregate.
type Request struct {
	Range  service.RangeKey `json:"range"`
	Metric service.Metric   `json:"metric"`
}

// Snapshot is one finished request. Snapshots are never modified after
// they are built.
type Snapshot struct {
	Seq         uint64               `json:"seq"`
	RequestID   string               `json:"request_id"`
	Request     Request              `json:"request"`
	Report      *service.TrendReport `json:"report"`
	Unavailable bool                 `json:"unavailable"`
	CompletedAt time.Time            `json:"completed_at"`
}

type Options struct {
	UserID string
	Logs   source.LogSource
	// Goals is optional.
	Goals source.GoalSource
	Clock service.Clock
	// OnPublish is called with every snapshot that becomes the latest.
	OnPublish func(*Snapshot)
}

// Pipeline is scoped to one user. Every request is stamped with a sequence
// number and its result is only published while that number is still the
// newest issued.
type Pipeline struct {
	userID    string
	logs      source.LogSource
	goals     source.GoalSource
	clock     service.Clock
	onPublish func(*Snapshot)

	seq     atomic.Uint64
	status  atomic.Pointer[stateMark]
	latest  atomic.Pointer[Snapshot]
	lastReq atomic.Pointer[Request]
	wg      sync.WaitGroup
	// pubMu orders OnPublish calls.
	pubMu sync.Mutex
}

// stateMark is the state reported by the request stamped seq.
type stateMark struct {
	seq   uint64
	state State
}

func New(opts Options) *Pipeline {
	clock := opts.Clock
	if clock == nil {
		clock = service.SystemClock(time.Local)
	}
	return &Pipeline{
		userID:    opts.UserID,
		logs:      opts.Logs,
		goals:     opts.Goals,
		clock:     clock,
		onPublish: opts.OnPublish,
	}
}

// Run executes req and blocks until it finishes. The returned snapshot is
// always the result for req; committed reports whether it was published or
// discarded because a newer request was issued in the meantime.
func (p *Pipeline) Run(ctx context.Context, req Request) (snap *Snapshot, committed bool, err error) {
	req, current, err := p.validate(req)
	if err != nil {
		return nil, false, err
	}

	seq := p.seq.Add(1)
	id := uuid.NewString()
	p.lastReq.Store(&req)
	metrics.PipelineRequestsTotal.WithLabelValues(string(req.Range), string(req.Metric)).Inc()
	start := time.Now()
	defer func() {
		metrics.PipelineDuration.Observe(time.Since(start).Seconds())
	}()
	log := logger.Logger.With("request_id", id, "seq", seq, "range", req.Range, "metric", req.Metric)
	log.Debug("request issued", "from", current.FromDate(), "to", current.ToDate())

	p.setState(seq, StateFetching)
	logs, goal, fetchErr := p.fetch(ctx)

	snap = &Snapshot{Seq: seq, RequestID: id, Request: req}
	if fetchErr != nil && ctx.Err() != nil {
		// The caller is gone; keep the published snapshot.
		p.setState(seq, StateFailed)
		metrics.PipelineResultsTotal.WithLabelValues(metrics.OutcomeAbandoned).Inc()
		log.Debug("request abandoned", "error", ctx.Err())
		return nil, false, fmt.Errorf("fetch logs: %w", ctx.Err())
	}
	if fetchErr != nil {
		p.setState(seq, StateFailed)
		log.Warn("log sources unavailable, publishing empty report", "error", fetchErr)
		snap.Report = service.EmptyReport(current, req.Metric)
		snap.Unavailable = true
	} else {
		p.setState(seq, StateAggregating)
		report, err := service.BuildReport(logs, current, req.Metric)
		if err != nil {
			p.setState(seq, StateFailed)
			return nil, false, err
		}
		service.AnnotateGoal(report, goal)
		snap.Report = report
	}
	snap.CompletedAt = p.clock()

	if !p.commit(snap) {
		metrics.PipelineResultsTotal.WithLabelValues(metrics.OutcomeStale).Inc()
		log.Debug("discarded stale result", "latest_seq", p.seq.Load())
		return snap, false, nil
	}
	p.setState(seq, StateReady)
	if snap.Unavailable {
		metrics.PipelineResultsTotal.WithLabelValues(metrics.OutcomeUnavailable).Inc()
	} else {
		metrics.PipelineResultsTotal.WithLabelValues(metrics.OutcomeCommitted).Inc()
	}
	log.Debug("published result", "entries", len(logs), "total", snap.Report.Summary.Total)
	p.publish(snap)
	return snap, true, nil
}

// Submit starts req in the background and returns once it is validated.
func (p *Pipeline) Submit(ctx context.Context, req Request) error {
	if _, _, err := p.validate(req); err != nil {
		return err
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if _, _, err := p.Run(ctx, req); err != nil {
			logger.Error("background request failed", "range", req.Range, "metric", req.Metric, "error", err)
		}
	}()
	return nil
}

// Refresh re-issues the most recent request in the background.
func (p *Pipeline) Refresh(ctx context.Context) error {
	last := p.lastReq.Load()
	if last == nil {
		return ErrNoRequest
	}
	return p.Submit(ctx, *last)
}

// Wait blocks until every submitted request has finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Latest returns the published snapshot, or nil before the first commit.
func (p *Pipeline) Latest() *Snapshot {
	return p.latest.Load()
}

// IsLoading reports whether the newest issued request is still running.
func (p *Pipeline) IsLoading() bool {
	switch p.State() {
	case StateFetching, StateAggregating:
		return true
	default:
		return false
	}
}

// State is the state of the newest issued request.
func (p *Pipeline) State() State {
	issued := p.seq.Load()
	mark := p.status.Load()
	if mark == nil {
		if issued == 0 {
			return StateIdle
		}
		return StateFetching
	}
	if mark.seq < issued {
		return StateFetching
	}
	return mark.state
}

func (p *Pipeline) validate(req Request) (Request, service.TimeRange, error) {
	metric, err := service.ParseMetric(string(req.Metric))
	if err != nil {
		return req, service.TimeRange{}, err
	}
	req.Metric = metric
	current, err := service.ResolveRange(req.Range, p.clock())
	return req, current, err
}

// fetch loads logs and the calorie goal concurrently. A goal failure only
// drops the goal annotation.
func (p *Pipeline) fetch(ctx context.Context) ([]model.LogEntry, *float64, error) {
	if p.logs == nil {
		return nil, nil, source.ErrNoSources
	}
	var (
		logs []model.LogEntry
		goal *float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := p.logs.FetchLogs(gctx, p.userID)
		if err != nil {
			return err
		}
		logs = items
		return nil
	})
	if p.goals != nil {
		g.Go(func() error {
			v, err := p.goals.FetchCalorieGoal(gctx, p.userID)
			if err != nil {
				logger.Warn("calorie goal unavailable", "user_id", p.userID, "error", err)
				return nil
			}
			goal = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return logs, goal, nil
}

// commit publishes s unless a newer request has been issued or published.
func (p *Pipeline) commit(s *Snapshot) bool {
	for {
		if s.Seq != p.seq.Load() {
			return false
		}
		cur := p.latest.Load()
		if cur != nil && cur.Seq >= s.Seq {
			return false
		}
		if p.latest.CompareAndSwap(cur, s) {
			return true
		}
	}
}

// setState records s for seq unless a newer request already reported.
func (p *Pipeline) setState(seq uint64, s State) {
	next := &stateMark{seq: seq, state: s}
	for {
		cur := p.status.Load()
		if cur != nil && cur.seq > seq {
			return
		}
		if p.status.CompareAndSwap(cur, next) {
			return
		}
	}
}

// publish hands snap to OnPublish while it is still the latest, so the
// hook never sees an older snapshot after a newer one.
func (p *Pipeline) publish(snap *Snapshot) {
	if p.onPublish == nil {
		return
	}
	p.pubMu.Lock()
	defer p.pubMu.Unlock()
	if p.latest.Load() != snap {
		return
	}
	p.onPublish(snap)
}
