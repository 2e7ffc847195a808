// Package collector drives dump lines through parsing, decoding,
// admission and storage.
package collector

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/Scrin/RuuviCollector/decoder"
	"github.com/Scrin/RuuviCollector/hci"
	"github.com/Scrin/RuuviCollector/measurement"
	"github.com/Scrin/RuuviCollector/sink"
	"github.com/Scrin/RuuviCollector/strategy"
)

// diagnostics printed by hcidump/hcitool when the adapter goes away
var deviceFailures = []string{
	"device: disconnected",
	"No such device",
}

// Stats counts what happened to the input so far.
type Stats struct {
	Lines    int
	Packets  int
	Readings int
	Admitted int
	Errors   int
}

// Collector processes one input stream. It is not safe for concurrent use.
type Collector struct {
	// Now timestamps readings, time.Now by default.
	Now func() time.Time

	parser    *hci.Parser
	handler   *decoder.Handler
	limiter   strategy.Strategy
	sink      sink.Sink
	receiving bool
	latestMAC string
	stats     Stats
}

func New(handler *decoder.Handler, limiter strategy.Strategy, s sink.Sink) *Collector {
	return &Collector{
		Now:     time.Now,
		parser:  hci.NewParser(),
		handler: handler,
		limiter: limiter,
		sink:    s,
	}
}

// Reset prepares for a restarted input stream. Admission state is kept.
func (c *Collector) Reset() {
	c.parser.Reset()
	c.receiving = false
	c.latestMAC = ""
}

func (c *Collector) Stats() Stats {
	return c.stats
}

// Run reads lines from r until EOF or ctx is cancelled.
func (c *Collector) Run(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.HandleLine(scanner.Text())
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return errors.Wrap(scanner.Err(), "read input")
}

// HandleLine processes one line, returning the reading if one was admitted
// and passed to the sink.
func (c *Collector) HandleLine(line string) (admitted *measurement.Reading) {
	c.stats.Lines++
	if isDeviceFailure(line) {
		slog.Warn("Bluetooth device failure reported", "line", line)
		c.parser.Reset()
		return nil
	}
	if !c.receiving {
		if !strings.HasPrefix(strings.TrimSpace(line), "> ") {
			slog.Debug("Skipping line before first packet", "line", line)
			return nil
		}
		c.receiving = true
		slog.Info("Successfully reading data from input")
	}
	if mac := hci.MACFromLine(line); mac != "" {
		c.latestMAC = mac
	}

	defer func() {
		if p := recover(); p != nil {
			c.stats.Errors++
			slog.Warn("Uncaught error while processing line", "line", line, "mac", c.latestMAC, "err", p)
			c.parser.Reset()
			admitted = nil
		}
	}()

	packet, err := c.parser.ReadLine(line)
	if err != nil {
		c.stats.Errors++
		slog.Debug("Dropping malformed packet", "line", line, "mac", c.latestMAC, "err", err)
		c.parser.Reset()
		return nil
	}
	if packet == nil {
		return nil
	}
	c.stats.Packets++

	r := c.handler.Handle(packet)
	if r == nil {
		return nil
	}
	c.stats.Readings++

	now := c.Now()
	r.Time = now
	measurement.Enrich(r)
	if !c.limiter.Admit(r, now) {
		return nil
	}
	c.stats.Admitted++

	if err := c.sink.Save(r); err != nil {
		slog.Error("Failed to save measurement", "mac", r.MAC, "err", err)
	}
	return r
}

func isDeviceFailure(line string) bool {
	for _, s := range deviceFailures {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}
