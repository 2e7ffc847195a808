package sink

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Scrin/RuuviCollector/config"
	"github.com/Scrin/RuuviCollector/lib/graphite"
	"github.com/Scrin/RuuviCollector/measurement"
	"github.com/Scrin/RuuviCollector/pubsub"
	"github.com/Scrin/RuuviCollector/pubsub/dummy"
)

var sampleTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func sample() *measurement.Reading {
	return &measurement.Reading{
		Time:           sampleTime,
		MAC:            "AABBCCDDEEFF",
		Name:           "Sauna",
		Receiver:       "pi",
		DataFormat:     measurement.FormatRuuviV3,
		RSSI:           measurement.Int(-76),
		Temperature:    measurement.Float(22.14),
		Humidity:       measurement.Float(36.5),
		Pressure:       measurement.Float(98888),
		BatteryVoltage: measurement.Float(3.007),
	}
}

type onlyTemperature struct{}

func (onlyTemperature) FieldFilter(string) measurement.FieldFilter {
	return measurement.Include([]string{"temperature"})
}

type failing struct{ closed bool }

func (f *failing) Save(*measurement.Reading) error { return errors.New("disk full") }
func (f *failing) Close() error                    { f.closed = true; return nil }

func TestMulti(t *testing.T) {
	d := &Dummy{}
	f := &failing{}
	m := Multi{f, d}
	assert.EqualError(t, m.Save(sample()), "disk full")
	assert.Equal(t, 1, d.Saved, "later sinks still receive the reading")
	assert.NoError(t, m.Close())
	assert.True(t, f.closed)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.New(slog.NewJSONHandler(&buf, nil)), SelectAll)
	require.NoError(t, l.Save(sample()))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "Measurement", line["msg"])
	assert.Equal(t, "AABBCCDDEEFF", line["mac"])
	assert.Equal(t, "Sauna", line["name"])
	assert.Equal(t, 22.14, line["temperature"])
	assert.Equal(t, -76.0, line["rssi"])
}

func TestGraphite(t *testing.T) {
	g := &graphite.MockGraphite{}
	s := NewGraphite(g, "ruuvi", onlyTemperature{})
	require.NoError(t, s.Save(sample()))
	assert.Equal(t, []string{"ruuvi.Sauna.temperature 22.14 1709294400"}, g.Lines)
	assert.Equal(t, 1, g.Flushes)

	g.Lines = nil
	r := sample()
	r.Name = ""
	require.NoError(t, NewGraphite(g, "", onlyTemperature{}).Save(r))
	assert.Equal(t, []string{"AABBCCDDEEFF.temperature 22.14 1709294400"}, g.Lines)
}

func TestMQTT(t *testing.T) {
	pub := &dummy.Publisher{}
	s := NewMQTT(pub, SelectAll)
	require.NoError(t, s.Save(sample()))
	require.Len(t, pub.Events, 1)

	ev, err := pubsub.Parse(pub.Events[0].Bytes())
	require.NoError(t, err)
	assert.Equal(t, "AABBCCDDEEFF", ev.Topic)
	assert.True(t, sampleTime.Equal(ev.Timestamp), ev.Timestamp.String())
	assert.Equal(t, "Sauna", ev.StringField("name"))
	assert.Equal(t, "3", ev.StringField("dataFormat"))
	assert.Equal(t, 98888.0, ev.Fields["pressure"])

	require.NoError(t, s.Close())
	assert.True(t, pub.Closed)
}

func TestPrometheus(t *testing.T) {
	p, err := NewPrometheus(prometheus.NewRegistry(), onlyTemperature{})
	require.NoError(t, err)
	require.NoError(t, p.Save(sample()))
	require.NoError(t, p.Save(sample()))

	assert.Equal(t, 22.14, testutil.ToFloat64(p.gauges["temperature"].WithLabelValues("AABBCCDDEEFF", "Sauna", "3")))
	assert.Equal(t, 0, testutil.CollectAndCount(p.gauges["humidity"]))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.count.WithLabelValues("AABBCCDDEEFF", "Sauna", "3")))
	assert.NoError(t, p.Close())
}

func TestMetricName(t *testing.T) {
	assert.Equal(t, "acceleration_x", metricName("accelerationX"))
	assert.Equal(t, "measurement_sequence_number", metricName("measurementSequenceNumber"))
	assert.Equal(t, "rssi", metricName("rssi"))
}

func TestSQLite(t *testing.T) {
	s, err := OpenSQLite(":memory:", SelectAll)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(sample()))

	var count int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM readings WHERE mac = ?`, "AABBCCDDEEFF").Scan(&count))
	assert.Equal(t, 5, count)

	var value float64
	var name, dataFormat string
	var ts int64
	require.NoError(t, s.db.QueryRow(
		`SELECT time, name, data_format, value FROM readings WHERE field = 'temperature'`,
	).Scan(&ts, &name, &dataFormat, &value))
	assert.Equal(t, sampleTime.UnixMilli(), ts)
	assert.Equal(t, "Sauna", name)
	assert.Equal(t, "3", dataFormat)
	assert.Equal(t, 22.14, value)
}

func TestDatalogger(t *testing.T) {
	dir := t.TempDir()
	d := NewDatalogger(dir, SelectAll)
	require.NoError(t, d.Save(sample()))
	require.NoError(t, d.Save(sample()))

	data, err := os.ReadFile(filepath.Join(dir, "AABBCCDDEEFF", "data.log"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	ev, err := pubsub.Parse([]byte(lines[0]))
	require.NoError(t, err)
	assert.Equal(t, 36.5, ev.Fields["humidity"])
}

func TestOpen(t *testing.T) {
	cfg, err := config.OpenRaw(nil)
	require.NoError(t, err)
	s, err := Open(cfg)
	require.NoError(t, err)
	assert.IsType(t, &Dummy{}, s)

	cfg, err = config.OpenRaw([]byte("storage:\n  method: dummy, logger\n"))
	require.NoError(t, err)
	s, err = Open(cfg)
	require.NoError(t, err)
	assert.Len(t, s, 2)

	cfg, err = config.OpenRaw([]byte("storage:\n  method: influxdb\n"))
	require.NoError(t, err)
	_, err = Open(cfg)
	assert.Error(t, err)

	cfg, err = config.OpenRaw([]byte("storage:\n  method: mqtt\n"))
	require.NoError(t, err)
	_, err = Open(cfg)
	assert.Error(t, err, "broker is required")
}
