package shared

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/peterldowns/testy/assert"
)

func TestTimeframeString(t *testing.T) {
	tests := []struct {
		name      string
		timeframe Timeframe
		want      string
	}{
		{
			"Five Minute",
			FiveMinute,
			"5m",
		},
		{
			"Fifteen Minute",
			FifteenMinute,
			"15m",
		},
		{
			"One Hour",
			OneHour,
			"1h",
		},
	}

	for _, test := range tests {
		str := test.timeframe.String()
		if str != test.want {
			t.Errorf("%s: expected %v, got %v", test.name, test.want, str)
		}
	}
}

func TestParseTimeframes(t *testing.T) {
	// Ensure raw catalog strings convert, preserving order and unknown values.
	timeframes := ParseTimeframes([]string{"5m", "1h", "2h"})
	want := []Timeframe{FiveMinute, OneHour, Timeframe("2h")}
	if diff := cmp.Diff(want, timeframes); diff != "" {
		t.Fatalf("unexpected timeframes (-want +got):\n%s", diff)
	}

	assert.Equal(t, len(ParseTimeframes(nil)), 0)
}
