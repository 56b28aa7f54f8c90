package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContestPhaseAt(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	c := &Contest{StartTime: start, EndTime: end}

	assert.Equal(t, PhaseUpcoming, c.PhaseAt(start.Add(-time.Second)))
	assert.Equal(t, PhaseLive, c.PhaseAt(start), "the start instant itself is live")
	assert.Equal(t, PhaseLive, c.PhaseAt(end.Add(-time.Second)))
	assert.Equal(t, PhaseEnded, c.PhaseAt(end), "the end instant itself is ended")
	assert.Equal(t, PhaseEnded, c.PhaseAt(end.Add(time.Hour)))
}

func TestContestIsRegistered(t *testing.T) {
	c := &Contest{RegisteredUserIDs: []string{"u-1", "u-2"}}
	assert.True(t, c.IsRegistered("u-1"))
	assert.False(t, c.IsRegistered("u-3"))

	var empty Contest
	assert.False(t, empty.IsRegistered("u-1"))
}
