package strategy

import (
	"math"
	"time"

	"github.com/Scrin/RuuviCollector/measurement"
)

// MotionSensitive behaves like its time window, but also admits a reading
// whose acceleration jumped by more than threshold on any axis since the
// previous reading, and the first reading after such a jump.
type MotionSensitive struct {
	window      *TimeWindow
	threshold   float64
	historySize int
	history     map[string][]*measurement.Reading
	outside     map[string]bool
}

func NewMotionSensitive(window *TimeWindow, threshold float64, historySize int) *MotionSensitive {
	return &MotionSensitive{
		window:      window,
		threshold:   threshold,
		historySize: historySize,
		history:     map[string][]*measurement.Reading{},
		outside:     map[string]bool{},
	}
}

func (s *MotionSensitive) Admit(r *measurement.Reading, now time.Time) bool {
	h := append(s.history[r.MAC], r)
	if len(h) > s.historySize {
		h = h[len(h)-s.historySize:]
	}
	s.history[r.MAC] = h

	if s.window.Admit(r, now) {
		return true
	}
	if len(h) < 2 {
		return false
	}
	if s.exceeds(h[len(h)-2], r) {
		s.outside[r.MAC] = true
		return true
	}
	if s.outside[r.MAC] {
		// settled back down
		s.outside[r.MAC] = false
		return true
	}
	return false
}

// exceeds compares each axis on its own. An axis missing from either
// reading is skipped.
func (s *MotionSensitive) exceeds(previous, current *measurement.Reading) bool {
	axes := [][2]*float64{
		{previous.AccelerationX, current.AccelerationX},
		{previous.AccelerationY, current.AccelerationY},
		{previous.AccelerationZ, current.AccelerationZ},
	}
	for _, axis := range axes {
		if axis[0] == nil || axis[1] == nil {
			continue
		}
		if math.Abs(*axis[1]-*axis[0]) > s.threshold {
			return true
		}
	}
	return false
}
