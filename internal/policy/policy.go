package policy

import (
	"time"

	"hallpass-backend/config"
	"hallpass-backend/internal/parse"
)

// Type identifies the kind of hall pass being issued.
type Type string

const (
	TypeRestroom  Type = "RESTROOM"
	TypeNurse     Type = "NURSE"
	TypeOffice    Type = "OFFICE"
	TypeLibrary   Type = "LIBRARY"
	TypeCounselor Type = "COUNSELOR"
	TypeOther     Type = "OTHER"
)

// ParseType maps a request string onto a known pass type. Unknown values
// fall back to TypeOther so a misspelled type still gets the conservative
// default duration.
func ParseType(s string) Type {
	switch Type(parse.Fold(s)) {
	case TypeRestroom:
		return TypeRestroom
	case TypeNurse:
		return TypeNurse
	case TypeOffice:
		return TypeOffice
	case TypeLibrary:
		return TypeLibrary
	case TypeCounselor:
		return TypeCounselor
	default:
		return TypeOther
	}
}

// Table is the process-wide, read-only pass policy: expected duration and
// permitted locations per pass type, plus per-destination capacity limits.
type Table struct {
	durations       map[Type]time.Duration
	allowed         map[Type][]string
	capacity        map[string]int
	defaultCapacity int
}

func defaultDurations() map[Type]time.Duration {
	return map[Type]time.Duration{
		TypeRestroom:  5 * time.Minute,
		TypeNurse:     15 * time.Minute,
		TypeOffice:    10 * time.Minute,
		TypeLibrary:   10 * time.Minute,
		TypeCounselor: 30 * time.Minute,
		TypeOther:     10 * time.Minute,
	}
}

func defaultAllowedLocations() map[Type][]string {
	return map[Type][]string{
		TypeRestroom:  {"hallway", "restroom"},
		TypeNurse:     {"hallway", "nurse office", "elevator"},
		TypeOffice:    {"hallway", "main office"},
		TypeLibrary:   {"hallway", "library"},
		TypeCounselor: {"hallway", "counselor office"},
		TypeOther:     {"hallway"},
	}
}

// NewTable builds the policy table from configuration, falling back to the
// built-in defaults for anything the config leaves unset.
func NewTable(cfg *config.PassConfig) *Table {
	t := &Table{
		durations:       defaultDurations(),
		allowed:         defaultAllowedLocations(),
		capacity:        make(map[string]int),
		defaultCapacity: cfg.DefaultCapacity,
	}
	if t.defaultCapacity <= 0 {
		t.defaultCapacity = 5
	}

	for name, minutes := range cfg.DurationMinutes {
		if minutes <= 0 {
			continue
		}
		t.durations[ParseType(name)] = time.Duration(minutes) * time.Minute
	}
	for name, locations := range cfg.AllowedLocations {
		normalized := make([]string, 0, len(locations))
		for _, loc := range locations {
			normalized = append(normalized, parse.NormalizeLocation(loc))
		}
		t.allowed[ParseType(name)] = normalized
	}
	for dest, limit := range cfg.CapacityLimits {
		if limit > 0 {
			t.capacity[parse.NormalizeLocation(dest)] = limit
		}
	}
	return t
}

// ExpectedDuration returns how long a pass of the given type should take.
func (t *Table) ExpectedDuration(pt Type) time.Duration {
	if d, ok := t.durations[pt]; ok {
		return d
	}
	return t.durations[TypeOther]
}

// LocationAllowed reports whether the (normalized) location is on the
// allow-list for the given pass type.
func (t *Table) LocationAllowed(pt Type, location string) bool {
	list, ok := t.allowed[pt]
	if !ok {
		list = t.allowed[TypeOther]
	}
	loc := parse.NormalizeLocation(location)
	for _, allowed := range list {
		if loc == allowed {
			return true
		}
	}
	return false
}

// CapacityLimit returns the maximum number of concurrently active passes
// for a destination.
func (t *Table) CapacityLimit(destination string) int {
	if limit, ok := t.capacity[parse.NormalizeLocation(destination)]; ok {
		return limit
	}
	return t.defaultCapacity
}
