package shared

const (
	// SessionTimeLayout is the format layout for session times within a day.
	SessionTimeLayout = "15:04"
	// DateLayout is the format layout for date strings without a zone.
	DateLayout = "2006-01-02 15:04:05"
)

// Timeframe represents the duration of a candle period.
type Timeframe string

const (
	FiveMinute    Timeframe = "5m"
	FifteenMinute Timeframe = "15m"
	OneHour       Timeframe = "1h"
	FourHour      Timeframe = "4h"
	OneDay        Timeframe = "1d"
)

// String stringifies the provided timeframe.
func (t Timeframe) String() string {
	return string(t)
}

// ParseTimeframes converts raw timeframe strings from the catalog.
func ParseTimeframes(raw []string) []Timeframe {
	timeframes := make([]Timeframe, 0, len(raw))
	for idx := range raw {
		timeframes = append(timeframes, Timeframe(raw[idx]))
	}

	return timeframes
}
