package pass

import (
	"context"
	"fmt"

	"hallpass-backend/internal/parse"
)

// eligibility evaluates the admission predicates for a student. It is
// read-only and may be called any number of times; the caller is
// responsible for holding the admission lock when the answer must stay
// valid through a subsequent insert.
func (m *Manager) eligibility(ctx context.Context, studentID string) (DenialReason, error) {
	active, err := m.active.GetByStudent(studentID)
	if err != nil {
		return "", fmt.Errorf("lookup active pass for student %s: %w", studentID, err)
	}
	if active != nil {
		return ReasonAlreadyActive, nil
	}

	// Rolling window, measured backward from now on every evaluation.
	since := m.now().Add(-m.rateWindow)
	recent, err := m.history.CountSince(ctx, studentID, since)
	if err != nil {
		return "", fmt.Errorf("count recent passes for student %s: %w", studentID, err)
	}
	if recent >= m.rateLimit {
		return ReasonRateLimitExceeded, nil
	}
	return "", nil
}

// hasCapacity reports whether the destination can take one more active
// pass. Read-only.
func (m *Manager) hasCapacity(destination string) (bool, error) {
	passes, err := m.active.List()
	if err != nil {
		return false, fmt.Errorf("list active passes: %w", err)
	}

	dest := parse.NormalizeLocation(destination)
	count := 0
	for _, p := range passes {
		if parse.NormalizeLocation(p.Destination) == dest {
			count++
		}
	}
	return count < m.policy.CapacityLimit(destination), nil
}
