package shared

import (
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
)

func TestSession(t *testing.T) {
	// Ensure a session window can be created from wall clock bounds.
	session, err := NewSession("14:00", "18:00")
	assert.NoError(t, err)
	assert.NotEqual(t, session, nil)

	// Ensure malformed bounds error.
	_, err = NewSession("25:00", "18:00")
	assert.Error(t, err)
	_, err = NewSession("14:00", "half past six")
	assert.Error(t, err)

	// Ensure instants inside the window pass.
	inside := time.Date(2024, time.March, 5, 15, 30, 0, 0, time.UTC)
	assert.True(t, session.InSession(inside))

	// Ensure the window bounds are inclusive.
	start := time.Date(2024, time.March, 5, 14, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 5, 18, 0, 0, 0, time.UTC)
	assert.True(t, session.InSession(start))
	assert.True(t, session.InSession(end))

	// Ensure instants outside the window are rejected.
	before := time.Date(2024, time.March, 5, 13, 59, 59, 0, time.UTC)
	after := time.Date(2024, time.March, 5, 18, 0, 1, 0, time.UTC)
	assert.False(t, session.InSession(before))
	assert.False(t, session.InSession(after))

	// Ensure the check uses the UTC wall clock for zoned instants.
	est, err := time.LoadLocation("America/New_York")
	assert.NoError(t, err)
	zoned := time.Date(2024, time.March, 5, 10, 30, 0, 0, est)
	assert.True(t, session.InSession(zoned))

	// Ensure instants with no known timestamp pass the filter.
	assert.True(t, session.InSession(time.Time{}))
}
