package sink

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/Scrin/RuuviCollector/measurement"
)

// Datalogger appends each reading as a JSON line to <dir>/<MAC>/data.log.
type Datalogger struct {
	dir    string
	fields Selector
}

func NewDatalogger(dir string, fields Selector) *Datalogger {
	slog.Info("Logging measurements", "dir", dir)
	return &Datalogger{dir: dir, fields: fields}
}

func (d *Datalogger) Save(r *measurement.Reading) error {
	p := filepath.Join(d.dir, r.MAC)
	if err := os.MkdirAll(p, 0755); err != nil {
		return errors.Wrap(err, "datalogger: create directory")
	}
	// reopen the log file each time, so that log rotation can happen in the
	// background.
	fio, err := os.OpenFile(filepath.Join(p, "data.log"), os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0660)
	if err != nil {
		return errors.Wrap(err, "datalogger: open")
	}
	defer fio.Close()

	line := append(readingEvent(r, d.fields.FieldFilter(r.MAC)).Bytes(), '\n')
	if _, err := fio.Write(line); err != nil {
		return errors.Wrap(err, "datalogger: write")
	}
	return nil
}

func (d *Datalogger) Close() error {
	return nil
}
