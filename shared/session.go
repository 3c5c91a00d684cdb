package shared

import (
	"fmt"
	"time"
)

// Session represents a daily trading session window in UTC wall clock time.
type Session struct {
	Start time.Time
	End   time.Time
}

// NewSession initializes a new session window from "15:04" formatted bounds.
func NewSession(start string, end string) (*Session, error) {
	sessionStart, err := time.Parse(SessionTimeLayout, start)
	if err != nil {
		return nil, fmt.Errorf("parsing session start: %w", err)
	}

	sessionEnd, err := time.Parse(SessionTimeLayout, end)
	if err != nil {
		return nil, fmt.Errorf("parsing session end: %w", err)
	}

	session := &Session{
		Start: sessionStart,
		End:   sessionEnd,
	}

	return session, nil
}

// InSession checks whether the provided instant falls within the session
// window, bounds included. Instants with no known timestamp pass the filter.
func (s *Session) InSession(ts time.Time) bool {
	if ts.IsZero() {
		return true
	}

	utc := ts.UTC()
	current := utc.Hour()*3600 + utc.Minute()*60 + utc.Second()
	from := s.Start.Hour()*3600 + s.Start.Minute()*60
	until := s.End.Hour()*3600 + s.End.Minute()*60

	return current >= from && current <= until
}
