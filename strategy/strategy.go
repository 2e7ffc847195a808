// Package strategy decides which decoded readings are worth storing.
//
// Strategies keep per-device state and are not safe for concurrent use;
// each input stream owns its own set.
package strategy

import (
	"time"

	"github.com/pkg/errors"

	"github.com/Scrin/RuuviCollector/measurement"
)

// Strategy admits or rejects a reading observed at now.
type Strategy interface {
	Admit(r *measurement.Reading, now time.Time) bool
}

const (
	DefaultInterval    = 9900 * time.Millisecond
	DefaultThreshold   = 0.05
	DefaultHistorySize = 3
)

// Strategy names as used in configuration.
const (
	NameDefault                      = "default"
	NameOnMovement                   = "onMovement"
	NameDefaultWithMotionSensitivity = "defaultWithMotionSensitivity"
)

// Options parameterise the built-in strategies.
type Options struct {
	Interval    time.Duration
	Threshold   float64
	HistorySize int
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.HistorySize < 2 {
		o.HistorySize = DefaultHistorySize
	}
	return o
}

// New builds a strategy by its configuration name. An empty name is the
// default time window.
func New(name string, opts Options) (Strategy, error) {
	opts = opts.withDefaults()
	switch name {
	case "", NameDefault:
		return NewTimeWindow(opts.Interval), nil
	case NameOnMovement, NameDefaultWithMotionSensitivity:
		return NewMotionSensitive(NewTimeWindow(opts.Interval), opts.Threshold, opts.HistorySize), nil
	}
	return nil, errors.Errorf("unknown limiting strategy %q", name)
}

// Limiter routes each reading to the strategy configured for its MAC, or
// to the default.
type Limiter struct {
	def     Strategy
	devices map[string]Strategy
}

func NewLimiter(def Strategy) *Limiter {
	return &Limiter{def: def, devices: map[string]Strategy{}}
}

// Set overrides the strategy for one device.
func (l *Limiter) Set(mac string, s Strategy) {
	l.devices[mac] = s
}

func (l *Limiter) Admit(r *measurement.Reading, now time.Time) bool {
	if s, ok := l.devices[r.MAC]; ok {
		return s.Admit(r, now)
	}
	return l.def.Admit(r, now)
}
