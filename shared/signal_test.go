package shared

import (
	"testing"

	"github.com/peterldowns/testy/assert"
)

func TestSide(t *testing.T) {
	// Ensure sides stringify to their wire form.
	assert.Equal(t, Long.String(), "long")
	assert.Equal(t, Short.String(), "short")
	assert.Equal(t, Flat.String(), "flat")

	// Ensure opposing sides resolve for position exits.
	assert.Equal(t, Long.Opposite(), Short)
	assert.Equal(t, Short.Opposite(), Long)
	assert.Equal(t, Flat.Opposite(), Flat)

	// Ensure sides parse from canonical and order alias forms.
	side, err := ParseSide("long")
	assert.NoError(t, err)
	assert.Equal(t, side, Long)

	side, err = ParseSide("BUY")
	assert.NoError(t, err)
	assert.Equal(t, side, Long)

	side, err = ParseSide("sell")
	assert.NoError(t, err)
	assert.Equal(t, side, Short)

	_, err = ParseSide("sideways")
	assert.Error(t, err)
}

func TestNewSignal(t *testing.T) {
	// Ensure new signals carry generated trace keys and a creation time.
	signal := NewSignal(Long, 42000, 0.7, map[string]string{"reason": "breakout"})
	assert.Equal(t, signal.Side, Long)
	assert.Equal(t, signal.Price, float64(42000))
	assert.Equal(t, signal.Confidence, 0.7)
	assert.Equal(t, signal.Meta["reason"], "breakout")
	assert.NotEqual(t, signal.IdempotencyKey, "")
	assert.NotEqual(t, signal.CorrelationID, "")
	assert.NotEqual(t, signal.IdempotencyKey, signal.CorrelationID)
	assert.False(t, signal.CreatedOn.IsZero())

	// Ensure a nil meta map is initialized for engine enrichment.
	signal = NewSignal(Short, 0, 0.5, nil)
	assert.NotEqual(t, signal.Meta, nil)
}
