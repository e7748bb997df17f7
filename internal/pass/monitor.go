package pass

import (
	"context"
	"fmt"
	"log"
	"time"
)

// watch is the route monitor loop for a single pass. One goroutine runs
// per active pass, launched at creation. It exits when its context is
// cancelled by Complete, or when a tick observes the pass gone from the
// active store.
func (m *Manager) watch(ctx context.Context, p *Pass) {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			done, err := m.checkElapsed(p)
			if err != nil {
				log.Printf("monitor for pass %s: %v; backing off", p.ID, err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(m.backoff):
				}
				continue
			}
			if done {
				return
			}
		}
	}
}

// checkElapsed performs one poll iteration: exit if the pass left the
// active store, otherwise re-evaluate the time budget. Exceeding the
// expected duration is advisory; it records a violation and alerts, it
// does not complete or evict the pass.
func (m *Manager) checkElapsed(p *Pass) (done bool, err error) {
	current, err := m.active.Get(p.ID)
	if err != nil {
		return false, fmt.Errorf("lookup pass: %w", err)
	}
	if current == nil {
		return true, nil
	}

	elapsed := m.now().Sub(p.StartTime)
	if elapsed > p.ExpectedDuration {
		if p.recordOverrun() {
			m.notifier.Notify(p.ID, p.StudentID, p.Destination, []string{violationOverrun})
		}
	}
	return false, nil
}

// applyLocation appends the reported location to the route and evaluates
// the movement rules against it. It returns the violations added by this
// update and the pass's full violation list. A pass caught mid-completion
// (transitioned but not yet removed from the active store) reports
// active=false so the update is not silently lost from the archive.
func (m *Manager) applyLocation(p *Pass, location string) (added, all []string, active bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status != StatusActive {
		return nil, nil, false
	}

	p.route = append(p.route, location)

	if !m.policy.LocationAllowed(p.Type, location) {
		v := fmt.Sprintf("Unauthorized location: %s", location)
		p.violations = append(p.violations, v)
		added = append(added, v)
	}

	// More stops than poll intervals in the time budget means the student
	// is wandering rather than heading to the destination.
	if len(p.route) > int(p.ExpectedDuration/m.pollInterval) {
		p.violations = append(p.violations, violationExcessiveMovement)
		added = append(added, violationExcessiveMovement)
	}

	all = append([]string(nil), p.violations...)
	return added, all, true
}
