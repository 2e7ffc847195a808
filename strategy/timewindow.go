package strategy

import (
	"time"

	"github.com/Scrin/RuuviCollector/measurement"
)

// TimeWindow admits at most one reading per device per interval.
type TimeWindow struct {
	interval time.Duration
	accepted map[string]time.Time
}

func NewTimeWindow(interval time.Duration) *TimeWindow {
	return &TimeWindow{interval: interval, accepted: map[string]time.Time{}}
}

func (s *TimeWindow) Admit(r *measurement.Reading, now time.Time) bool {
	if last, ok := s.accepted[r.MAC]; ok && now.Sub(last) < s.interval {
		return false
	}
	s.accepted[r.MAC] = now
	return true
}
