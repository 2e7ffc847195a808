// Package sink stores admitted readings.
package sink

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Scrin/RuuviCollector/config"
	"github.com/Scrin/RuuviCollector/lib/graphite"
	"github.com/Scrin/RuuviCollector/measurement"
	"github.com/Scrin/RuuviCollector/pubsub/mqtt"
	"github.com/Scrin/RuuviCollector/util"
)

// Sink persists readings. Save is called from a single goroutine.
type Sink interface {
	Save(r *measurement.Reading) error
	Close() error
}

// Selector chooses the stored fields per device.
type Selector interface {
	FieldFilter(mac string) measurement.FieldFilter
}

type selectAll struct{}

func (selectAll) FieldFilter(string) measurement.FieldFilter { return measurement.AllFields }

// SelectAll stores every field of every device.
var SelectAll Selector = selectAll{}

// Open builds the sinks named in storage.method.
func Open(cfg *config.Config) (Sink, error) {
	var sinks Multi
	for _, method := range cfg.StorageMethods() {
		s, err := open(method, cfg)
		if err != nil {
			sinks.Close()
			return nil, errors.Wrapf(err, "storage method %s", method)
		}
		slog.Info("Storage enabled", "method", method)
		sinks = append(sinks, s)
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return sinks, nil
}

func open(method string, cfg *config.Config) (Sink, error) {
	switch method {
	case "dummy":
		return &Dummy{}, nil
	case "logger":
		return NewLogger(slog.Default(), cfg), nil
	case "graphite":
		return NewGraphite(graphite.New(cfg.Graphite.Host), cfg.Graphite.Prefix, cfg), nil
	case "mqtt":
		if cfg.Mqtt.Broker == "" {
			return nil, errors.New("mqtt.broker is not set")
		}
		pub, err := mqtt.NewPublisher(cfg.Mqtt.Broker, cfg.Mqtt.Client_Id, cfg.Mqtt.Prefix)
		if err != nil {
			return nil, err
		}
		return NewMQTT(pub, cfg), nil
	case "prometheus":
		p, err := NewPrometheus(prometheus.NewRegistry(), cfg)
		if err != nil {
			return nil, err
		}
		p.Serve(fmt.Sprintf(":%d", cfg.Prometheus.Port))
		return p, nil
	case "sqlite":
		return OpenSQLite(util.ExpandUser(cfg.Sqlite.Path), cfg)
	case "datalogger":
		return NewDatalogger(util.ExpandUser(cfg.Datalogger.Path), cfg), nil
	}
	return nil, errors.Errorf("unknown storage method %q", method)
}

// Multi saves to every sink in turn.
type Multi []Sink

func (m Multi) Save(r *measurement.Reading) error {
	var first error
	for _, s := range m {
		if err := s.Save(r); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m Multi) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func timestamp(r *measurement.Reading) time.Time {
	if r.Time.IsZero() {
		return time.Now()
	}
	return r.Time
}
