package ratelimit

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
)

// DefaultBudget is Fitbit's per-user hourly request allowance.
const DefaultBudget = 150

// Tracker keeps the latest Fitbit-Rate-Limit-* header values seen across all
// API responses in the process.
type Tracker struct {
	mu        sync.Mutex
	limit     int
	remaining int
	reset     int
}

type Snapshot struct {
	Limit     int
	Remaining int
	Reset     int
}

func NewTracker() *Tracker {
	return &Tracker{limit: DefaultBudget, remaining: DefaultBudget}
}

// UpdateFromHeaders records the rate-limit headers from an API response.
// Absent or malformed headers leave the previous values in place.
func (t *Tracker) UpdateFromHeaders(h http.Header) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if v, err := strconv.Atoi(h.Get("Fitbit-Rate-Limit-Limit")); err == nil {
		t.limit = v
	}
	if v, err := strconv.Atoi(h.Get("Fitbit-Rate-Limit-Remaining")); err == nil {
		t.remaining = v
	}
	if v, err := strconv.Atoi(h.Get("Fitbit-Rate-Limit-Reset")); err == nil {
		t.reset = v
	}
}

// CheckBudget fails when a planned fetch of resources*days requests would
// exceed the remaining allowance.
func (t *Tracker) CheckBudget(resources, days int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	planned := resources * days
	if planned > t.remaining {
		return fmt.Errorf(
			"planned %d requests but only %d remain in the rate-limit window (resets in %ds)",
			planned, t.remaining, t.reset,
		)
	}
	return nil
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{Limit: t.limit, Remaining: t.remaining, Reset: t.reset}
}
