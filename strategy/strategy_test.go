package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Scrin/RuuviCollector/measurement"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return epoch.Add(time.Duration(ms) * time.Millisecond)
}

func reading(mac string) *measurement.Reading {
	return &measurement.Reading{MAC: mac}
}

func accelerating(mac string, g float64) *measurement.Reading {
	return &measurement.Reading{
		MAC:           mac,
		AccelerationX: measurement.Float(g),
		AccelerationY: measurement.Float(g),
		AccelerationZ: measurement.Float(g),
	}
}

func TestTimeWindow(t *testing.T) {
	s := NewTimeWindow(9900 * time.Millisecond)
	for _, c := range []struct {
		ms    int
		admit bool
	}{
		{0, true},
		{5000, false},
		{10000, true},
		{11000, false},
		{12000, false},
		{99999, true},
	} {
		assert.Equal(t, c.admit, s.Admit(reading("AABBCCDDEEFF"), at(c.ms)), "t=%d", c.ms)
	}
}

func TestTimeWindowBoundary(t *testing.T) {
	s := NewTimeWindow(9900 * time.Millisecond)
	assert.True(t, s.Admit(reading("A"), at(0)))
	assert.False(t, s.Admit(reading("A"), at(9899)))
	assert.True(t, s.Admit(reading("A"), at(9900)))
}

func TestTimeWindowDevicesAreIndependent(t *testing.T) {
	s := NewTimeWindow(DefaultInterval)
	assert.True(t, s.Admit(reading("A"), at(0)))
	assert.True(t, s.Admit(reading("B"), at(1000)))
	assert.False(t, s.Admit(reading("A"), at(2000)))
	assert.False(t, s.Admit(reading("B"), at(3000)))
	assert.True(t, s.Admit(reading("A"), at(10000)))
}

func TestMotionSensitive(t *testing.T) {
	s := NewMotionSensitive(NewTimeWindow(DefaultInterval), DefaultThreshold, DefaultHistorySize)
	const (
		within = 0.98
		below  = 0.5
		above  = 2.5
	)
	for i, c := range []struct {
		g     float64
		admit bool
	}{
		{within, true}, // first sighting
		{within, false},
		{within, false},
		{below, true}, // motion
		{below, true}, // settled
		{below, false},
		{within, true},
		{above, true},
		{above, true},
		{above, false},
	} {
		assert.Equal(t, c.admit, s.Admit(accelerating("AABBCCDDEEFF", c.g), at(i)), "sample %d", i)
	}
}

func TestMotionSensitiveTimeWindowStillApplies(t *testing.T) {
	s := NewMotionSensitive(NewTimeWindow(DefaultInterval), DefaultThreshold, DefaultHistorySize)
	assert.True(t, s.Admit(accelerating("A", 1), at(0)))
	assert.False(t, s.Admit(accelerating("A", 1), at(5000)))
	assert.True(t, s.Admit(accelerating("A", 1), at(10000)))
}

func TestMotionSensitiveMissingAcceleration(t *testing.T) {
	s := NewMotionSensitive(NewTimeWindow(DefaultInterval), DefaultThreshold, DefaultHistorySize)
	assert.True(t, s.Admit(accelerating("A", 1), at(0)))
	assert.False(t, s.Admit(reading("A"), at(1)))
	assert.False(t, s.Admit(accelerating("A", 2), at(2)))
	assert.True(t, s.Admit(reading("A"), at(10000)))
}

func TestMotionSensitivePartialAxes(t *testing.T) {
	s := NewMotionSensitive(NewTimeWindow(DefaultInterval), DefaultThreshold, DefaultHistorySize)
	noX := func(z float64) *measurement.Reading {
		return &measurement.Reading{
			MAC:           "A",
			AccelerationY: measurement.Float(0),
			AccelerationZ: measurement.Float(z),
		}
	}
	assert.True(t, s.Admit(noX(1), at(0)))
	assert.False(t, s.Admit(noX(1), at(1)))
	assert.True(t, s.Admit(noX(2), at(2)), "Z jump admitted with X absent")
	assert.True(t, s.Admit(noX(2), at(3)), "settled")
	assert.False(t, s.Admit(noX(2), at(4)))
}

func TestMotionSensitiveHistoryIsBounded(t *testing.T) {
	s := NewMotionSensitive(NewTimeWindow(DefaultInterval), DefaultThreshold, 3)
	for i := 0; i < 10; i++ {
		s.Admit(accelerating("A", 1), at(i))
	}
	assert.Len(t, s.history["A"], 3)
}

func TestLimiter(t *testing.T) {
	l := NewLimiter(NewTimeWindow(DefaultInterval))
	l.Set("MOVING", NewMotionSensitive(NewTimeWindow(DefaultInterval), DefaultThreshold, DefaultHistorySize))

	assert.True(t, l.Admit(accelerating("STILL", 1), at(0)))
	assert.False(t, l.Admit(accelerating("STILL", 2), at(1)))

	assert.True(t, l.Admit(accelerating("MOVING", 1), at(0)))
	assert.True(t, l.Admit(accelerating("MOVING", 2), at(1)))
}

func TestNew(t *testing.T) {
	s, err := New("", Options{})
	require.NoError(t, err)
	assert.IsType(t, &TimeWindow{}, s)

	s, err = New(NameOnMovement, Options{Threshold: 0.1})
	require.NoError(t, err)
	require.IsType(t, &MotionSensitive{}, s)
	ms := s.(*MotionSensitive)
	assert.Equal(t, 0.1, ms.threshold)
	assert.Equal(t, DefaultHistorySize, ms.historySize)
	assert.Equal(t, DefaultInterval, ms.window.interval)

	s, err = New(NameDefaultWithMotionSensitivity, Options{Interval: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, time.Minute, s.(*MotionSensitive).window.interval)

	_, err = New("sometimes", Options{})
	assert.Error(t, err)
}
