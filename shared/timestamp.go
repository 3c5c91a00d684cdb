package shared

import (
	"fmt"
	"math"
	"time"
)

// TimestampParts represents a split epoch timestamp as received on the wire.
type TimestampParts struct {
	Seconds int64 `json:"seconds"`
	Nanos   int64 `json:"nanos"`
}

// NormalizeTimestamp converts the assorted timestamp shapes received on the
// wire (integer or float epoch seconds, timestamp strings, split
// seconds/nanos pairs and native instants) into a single UTC instant.
func NormalizeTimestamp(value any) (time.Time, error) {
	switch ts := value.(type) {
	case time.Time:
		return ts.UTC(), nil
	case int:
		return time.Unix(int64(ts), 0).UTC(), nil
	case int64:
		return time.Unix(ts, 0).UTC(), nil
	case float64:
		sec, frac := math.Modf(ts)
		return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC(), nil
	case TimestampParts:
		return time.Unix(ts.Seconds, ts.Nanos).UTC(), nil
	case *TimestampParts:
		return time.Unix(ts.Seconds, ts.Nanos).UTC(), nil
	case map[string]any:
		// Decoded {seconds, nanos} wire objects arrive as generic maps.
		seconds, sok := ts["seconds"]
		if !sok {
			return time.Time{}, fmt.Errorf("timestamp object missing seconds: %v", ts)
		}

		parsed, err := NormalizeTimestamp(seconds)
		if err != nil {
			return time.Time{}, err
		}

		if nanos, ok := ts["nanos"].(float64); ok {
			parsed = parsed.Add(time.Duration(nanos))
		}

		return parsed, nil
	case string:
		layouts := []string{time.RFC3339Nano, DateLayout}
		for idx := range layouts {
			dt, err := time.Parse(layouts[idx], ts)
			if err == nil {
				return dt.UTC(), nil
			}
		}

		return time.Time{}, fmt.Errorf("unparseable timestamp string: %q", ts)
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type: %T", value)
	}
}
