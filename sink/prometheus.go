package sink

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Scrin/RuuviCollector/measurement"
)

var prometheusLabels = []string{"mac", "name", "data_format"}

// Prometheus exposes the latest value of every field as a gauge.
type Prometheus struct {
	registry *prometheus.Registry
	gauges   map[string]*prometheus.GaugeVec
	count    *prometheus.CounterVec
	server   *http.Server
	fields   Selector
}

func NewPrometheus(registry *prometheus.Registry, fields Selector) (*Prometheus, error) {
	p := &Prometheus{
		registry: registry,
		gauges:   map[string]*prometheus.GaugeVec{},
		fields:   fields,
	}
	for _, name := range measurement.FieldNames {
		g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ruuvi",
			Name:      metricName(name),
			Help:      "Latest " + name + " reported by the tag.",
		}, prometheusLabels)
		if err := registry.Register(g); err != nil {
			return nil, errors.Wrapf(err, "register %s", name)
		}
		p.gauges[name] = g
	}
	p.count = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ruuvi",
		Name:      "measurements_total",
		Help:      "Measurements stored per tag.",
	}, prometheusLabels)
	if err := registry.Register(p.count); err != nil {
		return nil, errors.Wrap(err, "register measurements_total")
	}
	return p, nil
}

// Serve the /metrics endpoint on addr in the background.
func (p *Prometheus) Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{}))
	p.server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		slog.Info("Serving prometheus metrics", "addr", addr)
		if err := p.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Prometheus server failed", "err", err)
		}
	}()
}

func (p *Prometheus) Save(r *measurement.Reading) error {
	dataFormat := string(r.DataFormat)
	if dataFormat == "" {
		dataFormat = "unknown"
	}
	labels := prometheus.Labels{"mac": r.MAC, "name": r.Name, "data_format": dataFormat}
	for _, f := range measurement.Fields(r, p.fields.FieldFilter(r.MAC)) {
		p.gauges[f.Name].With(labels).Set(f.Value)
	}
	p.count.With(labels).Inc()
	return nil
}

func (p *Prometheus) Close() error {
	if p.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return p.server.Shutdown(ctx)
}

// accelerationX -> acceleration_x
func metricName(field string) string {
	var sb strings.Builder
	for i, r := range field {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
