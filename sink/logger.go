package sink

import (
	"log/slog"

	"github.com/Scrin/RuuviCollector/measurement"
)

// Logger writes each reading as a structured log line.
type Logger struct {
	log    *slog.Logger
	fields Selector
}

func NewLogger(log *slog.Logger, fields Selector) *Logger {
	return &Logger{log: log, fields: fields}
}

func (l *Logger) Save(r *measurement.Reading) error {
	attrs := []any{"mac", r.MAC, "dataFormat", string(r.DataFormat)}
	if r.Name != "" {
		attrs = append(attrs, "name", r.Name)
	}
	if r.Receiver != "" {
		attrs = append(attrs, "receiver", r.Receiver)
	}
	for _, f := range measurement.Fields(r, l.fields.FieldFilter(r.MAC)) {
		attrs = append(attrs, f.Name, f.Value)
	}
	l.log.Info("Measurement", attrs...)
	return nil
}

func (l *Logger) Close() error {
	return nil
}
