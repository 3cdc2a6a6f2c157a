package ratelimit

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateFromHeaders(t *testing.T) {
	tr := NewTracker()

	h := http.Header{}
	h.Set("Fitbit-Rate-Limit-Limit", "150")
	h.Set("Fitbit-Rate-Limit-Remaining", "37")
	h.Set("Fitbit-Rate-Limit-Reset", "1210")
	tr.UpdateFromHeaders(h)

	snap := tr.Snapshot()
	assert.Equal(t, 150, snap.Limit)
	assert.Equal(t, 37, snap.Remaining)
	assert.Equal(t, 1210, snap.Reset)
}

func TestUpdateFromHeadersKeepsPreviousOnMissing(t *testing.T) {
	tr := NewTracker()

	h := http.Header{}
	h.Set("Fitbit-Rate-Limit-Remaining", "90")
	tr.UpdateFromHeaders(h)

	h = http.Header{}
	h.Set("Fitbit-Rate-Limit-Reset", "not-a-number")
	tr.UpdateFromHeaders(h)

	snap := tr.Snapshot()
	assert.Equal(t, DefaultBudget, snap.Limit)
	assert.Equal(t, 90, snap.Remaining)
	assert.Equal(t, 0, snap.Reset)
}

func TestCheckBudget(t *testing.T) {
	tr := NewTracker()
	require.NoError(t, tr.CheckBudget(6, 25))

	h := http.Header{}
	h.Set("Fitbit-Rate-Limit-Remaining", "10")
	tr.UpdateFromHeaders(h)

	assert.NoError(t, tr.CheckBudget(6, 1))
	err := tr.CheckBudget(6, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "12 requests")
}
