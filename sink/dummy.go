package sink

import (
	"log/slog"

	"github.com/Scrin/RuuviCollector/measurement"
)

// Dummy discards readings, logging them at debug level.
type Dummy struct {
	Saved int
}

func (d *Dummy) Save(r *measurement.Reading) error {
	d.Saved++
	slog.Debug("Discarding measurement", "mac", r.MAC, "dataFormat", r.DataFormat)
	return nil
}

func (d *Dummy) Close() error {
	return nil
}
