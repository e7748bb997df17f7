package pass

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"hallpass-backend/config"
	"hallpass-backend/internal/policy"
)

// Manager is the state authority for hall passes: it owns admission,
// the active store, completion and reporting, and supervises one route
// monitor per active pass.
type Manager struct {
	policy   *policy.Table
	active   ActiveStore
	history  HistoryStore
	notifier Notifier

	now          func() time.Time
	pollInterval time.Duration
	backoff      time.Duration
	rateLimit    int
	rateWindow   time.Duration

	// mu serializes admission so the eligibility check, the capacity
	// check and the insert are atomic with respect to concurrent
	// creates. It also guards the monitor registry.
	mu       sync.Mutex
	monitors map[string]context.CancelFunc

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewManager wires the manager from configuration and its collaborators.
func NewManager(cfg *config.Config, table *policy.Table, active ActiveStore, history HistoryStore, notifier Notifier) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		policy:       table,
		active:       active,
		history:      history,
		notifier:     notifier,
		now:          time.Now,
		pollInterval: cfg.Monitor.PollInterval,
		backoff:      cfg.Monitor.Backoff,
		rateLimit:    cfg.Passes.RateLimitCount,
		rateWindow:   cfg.Passes.RateWindow,
		monitors:     make(map[string]context.CancelFunc),
		baseCtx:      ctx,
		cancel:       cancel,
	}
}

// Create runs the admission decision and, on approval, inserts the pass
// into the active store and starts its route monitor. Denials are normal
// results; only infrastructure faults surface as errors.
func (m *Manager) Create(ctx context.Context, studentID, issuerID, passType, destination string) (CreateResult, error) {
	pt := policy.ParseType(passType)

	m.mu.Lock()
	defer m.mu.Unlock()

	reason, err := m.eligibility(ctx, studentID)
	if err != nil {
		return CreateResult{}, err
	}
	if reason != "" {
		return CreateResult{Reason: reason}, nil
	}

	ok, err := m.hasCapacity(destination)
	if err != nil {
		return CreateResult{}, err
	}
	if !ok {
		return CreateResult{Reason: ReasonDestinationAtCapacity}, nil
	}

	p := &Pass{
		ID:               uuid.NewString(),
		StudentID:        studentID,
		IssuerID:         issuerID,
		Type:             pt,
		Destination:      destination,
		StartTime:        m.now(),
		ExpectedDuration: m.policy.ExpectedDuration(pt),
		status:           StatusActive,
	}
	if err := m.active.Put(p); err != nil {
		return CreateResult{}, fmt.Errorf("store pass: %w", err)
	}

	watchCtx, cancelWatch := context.WithCancel(m.baseCtx)
	m.monitors[p.ID] = cancelWatch
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.watch(watchCtx, p)
	}()

	return CreateResult{
		Approved:         true,
		PassID:           p.ID,
		ExpectedDuration: p.ExpectedDuration,
	}, nil
}

// UpdateLocation appends a reported location to the pass's route and
// evaluates the movement rules. Any new violations are pushed to the
// notification sink.
func (m *Manager) UpdateLocation(ctx context.Context, passID, location string) (UpdateResult, error) {
	p, err := m.active.Get(passID)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("lookup pass %s: %w", passID, err)
	}
	if p == nil {
		return UpdateResult{NotFound: true}, nil
	}

	added, all, active := m.applyLocation(p, location)
	if !active {
		return UpdateResult{NotFound: true}, nil
	}
	if len(added) > 0 {
		m.notifier.Notify(p.ID, p.StudentID, p.Destination, added)
	}
	return UpdateResult{Updated: true, Violations: all}, nil
}

// Complete fixes the pass's actual duration, archives it to the student's
// history, removes it from the active store and cancels its monitor.
// Completing an unknown or already-completed pass reports not found. A
// failure to archive or remove reverts the pass to active so the call can
// be retried; the archive write is idempotent per pass id.
func (m *Manager) Complete(ctx context.Context, passID string) (CompleteResult, error) {
	p, err := m.active.Get(passID)
	if err != nil {
		return CompleteResult{}, fmt.Errorf("lookup pass %s: %w", passID, err)
	}
	if p == nil {
		return CompleteResult{NotFound: true}, nil
	}

	completedAt := m.now()
	actual, ok := p.complete(completedAt)
	if !ok {
		// Lost the race against a concurrent Complete.
		return CompleteResult{NotFound: true}, nil
	}

	rec := HistoryRecord{
		PassID:           p.ID,
		StudentID:        p.StudentID,
		IssuerID:         p.IssuerID,
		Type:             p.Type,
		Destination:      p.Destination,
		StartTime:        p.StartTime,
		CompletedAt:      completedAt,
		ExpectedDuration: p.ExpectedDuration,
		ActualDuration:   actual,
		Route:            p.Route(),
		Violations:       p.Violations(),
	}
	if err := m.history.Append(ctx, rec); err != nil {
		p.reopen()
		return CompleteResult{}, fmt.Errorf("archive pass %s: %w", passID, err)
	}

	if err := m.active.Delete(passID); err != nil {
		p.reopen()
		return CompleteResult{}, fmt.Errorf("remove pass %s: %w", passID, err)
	}

	m.mu.Lock()
	cancelWatch := m.monitors[passID]
	delete(m.monitors, passID)
	m.mu.Unlock()
	if cancelWatch != nil {
		cancelWatch()
	}

	return CompleteResult{
		Completed:      true,
		ActualDuration: actual,
		Violations:     rec.Violations,
	}, nil
}

// Report aggregates the student's archived passes. The average guards
// against an empty history.
func (m *Manager) Report(ctx context.Context, studentID string) (Report, error) {
	records, err := m.history.ListByStudent(ctx, studentID)
	if err != nil {
		return Report{}, fmt.Errorf("list history for student %s: %w", studentID, err)
	}

	rep := Report{StudentID: studentID, TotalPasses: len(records), Records: records}
	var total time.Duration
	for _, rec := range records {
		rep.TotalViolations += len(rec.Violations)
		total += rec.ActualDuration
	}
	if len(records) > 0 {
		rep.AverageActualDuration = total / time.Duration(len(records))
	}
	return rep, nil
}

// ListActive returns the currently active passes.
func (m *Manager) ListActive() ([]*Pass, error) {
	return m.active.List()
}

// Close cancels every route monitor and waits for them to exit.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
}
