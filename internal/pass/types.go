package pass

import (
	"context"
	"sync"
	"time"

	"hallpass-backend/internal/policy"
)

// Status is the lifecycle state of a pass. Admission is synchronous, so a
// pass only ever exists once approved: it is ACTIVE from creation until it
// is completed. Denials are reported as a result reason and never stored.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
)

// DenialReason explains why a pass request was not approved. A denial is
// a normal outcome, not an error.
type DenialReason string

const (
	ReasonAlreadyActive         DenialReason = "ALREADY_ACTIVE"
	ReasonRateLimitExceeded     DenialReason = "RATE_LIMIT_EXCEEDED"
	ReasonDestinationAtCapacity DenialReason = "DESTINATION_AT_CAPACITY"
)

// Violation messages recorded against a pass.
const (
	violationOverrun           = "time limit exceeded"
	violationExcessiveMovement = "Excessive movement detected"
)

// Pass is a time-boxed authorization for a student to move to a
// destination. Route and violations are append-only; the embedded mutex
// orders concurrent appends from handlers and the route monitor.
type Pass struct {
	ID               string
	StudentID        string
	IssuerID         string
	Type             policy.Type
	Destination      string
	StartTime        time.Time
	ExpectedDuration time.Duration

	mu              sync.Mutex
	status          Status
	actualDuration  time.Duration
	route           []string
	violations      []string
	overrunRecorded bool
}

// Status returns the current lifecycle state.
func (p *Pass) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Route returns a copy of the locations reported so far, in order.
func (p *Pass) Route() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.route...)
}

// Violations returns a copy of the recorded violations, in order.
func (p *Pass) Violations() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.violations...)
}

// ActualDuration is zero until the pass completes.
func (p *Pass) ActualDuration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.actualDuration
}

// recordOverrun appends the overrun violation exactly once per pass.
// The monitor re-evaluates the condition on every tick, but duplicate
// entries for the same overrun carry no information.
func (p *Pass) recordOverrun() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.overrunRecorded || p.status != StatusActive {
		return false
	}
	p.overrunRecorded = true
	p.violations = append(p.violations, violationOverrun)
	return true
}

// complete transitions the pass to COMPLETED and fixes its actual
// duration. It returns false if the pass already completed.
func (p *Pass) complete(now time.Time) (time.Duration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status != StatusActive {
		return p.actualDuration, false
	}
	p.status = StatusCompleted
	p.actualDuration = now.Sub(p.StartTime)
	return p.actualDuration, true
}

// reopen reverts a failed completion so a retry can run the whole
// sequence again. Only meaningful while the pass is still in the active
// store.
func (p *Pass) reopen() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status == StatusCompleted {
		p.status = StatusActive
		p.actualDuration = 0
	}
}

// HistoryRecord is the immutable snapshot of a completed pass owned by
// the history store.
type HistoryRecord struct {
	PassID           string
	StudentID        string
	IssuerID         string
	Type             policy.Type
	Destination      string
	StartTime        time.Time
	CompletedAt      time.Time
	ExpectedDuration time.Duration
	ActualDuration   time.Duration
	Route            []string
	Violations       []string
}

// ActiveStore is the injected repository over the set of active passes.
// Implementations must be safe for concurrent use by request handlers and
// route monitors. Get and GetByStudent return nil (and no error) when
// nothing matches.
type ActiveStore interface {
	Get(id string) (*Pass, error)
	GetByStudent(studentID string) (*Pass, error)
	Put(p *Pass) error
	Delete(id string) error
	List() ([]*Pass, error)
}

// HistoryStore is the append-only archive of completed passes.
type HistoryStore interface {
	Append(ctx context.Context, rec HistoryRecord) error
	ListByStudent(ctx context.Context, studentID string) ([]HistoryRecord, error)
	// CountSince reports how many of the student's archived passes
	// started at or after the given instant.
	CountSince(ctx context.Context, studentID string, since time.Time) (int, error)
}

// Notifier is the external notification sink. Delivery is fire-and-forget:
// implementations must not block and their failures never affect pass
// state.
type Notifier interface {
	Notify(passID, studentID, destination string, violations []string)
}

// CreateResult is the outcome of an admission decision.
type CreateResult struct {
	Approved         bool
	PassID           string
	ExpectedDuration time.Duration
	Reason           DenialReason
}

// UpdateResult is the outcome of a location update.
type UpdateResult struct {
	Updated    bool
	NotFound   bool
	Violations []string
}

// CompleteResult is the outcome of completing a pass.
type CompleteResult struct {
	Completed      bool
	NotFound       bool
	ActualDuration time.Duration
	Violations     []string
}

// Report aggregates a student's archived passes.
type Report struct {
	StudentID             string
	TotalPasses           int
	TotalViolations       int
	AverageActualDuration time.Duration
	Records               []HistoryRecord
}
