package strategy

import (
	"strconv"
)

// Params represents immutable strategy parameters decoded from the catalog.
type Params map[string]any

// Int fetches an integer parameter, returning the fallback when the key is
// absent or not numeric.
func (p Params) Int(key string, fallback int) int {
	switch value := p[key].(type) {
	case int:
		return value
	case int64:
		return int(value)
	case float64:
		return int(value)
	case string:
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}

	return fallback
}

// Float fetches a float parameter, returning the fallback when the key is
// absent or not numeric.
func (p Params) Float(key string, fallback float64) float64 {
	switch value := p[key].(type) {
	case float64:
		return value
	case int:
		return float64(value)
	case int64:
		return float64(value)
	case string:
		parsed, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return parsed
		}
	}

	return fallback
}

// Bool fetches a boolean parameter, returning the fallback when the key is
// absent or not boolean.
func (p Params) Bool(key string, fallback bool) bool {
	switch value := p[key].(type) {
	case bool:
		return value
	case string:
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}

	return fallback
}

// String fetches a string parameter, returning the fallback when the key is
// absent or not a string.
func (p Params) String(key string, fallback string) string {
	value, ok := p[key].(string)
	if !ok {
		return fallback
	}

	return value
}
