// Service to collect measurements from RuuviTags and other BLE beacons.
package ruuvi

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/Scrin/RuuviCollector/collector"
	"github.com/Scrin/RuuviCollector/config"
	"github.com/Scrin/RuuviCollector/decoder"
	"github.com/Scrin/RuuviCollector/sink"
	"github.com/Scrin/RuuviCollector/strategy"
)

// A spawned dump may exit maxRestarts times within restartWindow before the
// service gives up.
const (
	maxRestarts   = 3
	restartWindow = 10 * time.Minute
)

var restartDelay = time.Second

// restartBudget counts input exits over a sliding window.
type restartBudget struct {
	max    int
	window time.Duration
	exits  []time.Time
}

// exit records an exit at now and reports whether another restart is allowed.
func (b *restartBudget) exit(now time.Time) bool {
	recent := b.exits[:0]
	for _, t := range b.exits {
		if now.Sub(t) < b.window {
			recent = append(recent, t)
		}
	}
	b.exits = append(recent, now)
	return len(b.exits) <= b.max
}

// Service ruuvi
type Service struct {
	Config *config.Config
}

func (self *Service) ID() string {
	return "ruuvi"
}

func (self *Service) Run(ctx context.Context) error {
	cfg := self.Config
	limiter, err := NewLimiter(cfg)
	if err != nil {
		return err
	}
	out, err := sink.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := out.Close(); err != nil {
			slog.Error("Failed to close storage", "err", err)
		}
	}()

	c := collector.New(decoder.NewHandler(cfg, cfg.Receiver), limiter, out)
	defer func() {
		stats := c.Stats()
		slog.Info("Collector finished", "lines", stats.Lines, "packets", stats.Packets,
			"readings", stats.Readings, "admitted", stats.Admitted, "errors", stats.Errors)
	}()

	budget := &restartBudget{max: maxRestarts, window: restartWindow}
	for {
		err := self.runInput(ctx, c)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// only a spawned dump is worth restarting, files and pipes just end
		if cfg.Input.Source != config.InputHcidump {
			return err
		}
		if !budget.exit(time.Now()) {
			return errors.Errorf("%s exited %d times within %s", cfg.Command.Dump, len(budget.exits), restartWindow)
		}
		slog.Warn("Input ended, restarting", "cmd", cfg.Command.Dump, "err", err)
		c.Reset()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(restartDelay):
		}
	}
}

func (self *Service) runInput(ctx context.Context, c *collector.Collector) error {
	src, err := collector.OpenSource(ctx, self.Config)
	if err != nil {
		return err
	}
	// closing the source unblocks a pending read on shutdown
	closeSource := sync.OnceValue(src.Close)
	stop := context.AfterFunc(ctx, func() { closeSource() })
	defer stop()

	err = c.Run(ctx, src)
	if cerr := closeSource(); cerr != nil {
		slog.Warn("Closing input failed", "err", cerr)
	}
	return err
}

// NewLimiter builds the admission strategies from configuration.
func NewLimiter(cfg *config.Config) (*strategy.Limiter, error) {
	opts := strategy.Options{
		Interval:    cfg.Measurement_Update_Limit.Duration,
		Threshold:   cfg.Motion_Sensitivity.Threshold,
		HistorySize: cfg.Motion_Sensitivity.History,
	}
	def, err := strategy.New(cfg.Limiting_Strategy, opts)
	if err != nil {
		return nil, errors.Wrap(err, "limiting_strategy")
	}
	limiter := strategy.NewLimiter(def)
	for mac, tag := range cfg.Tags {
		if tag.Limiting_Strategy == "" {
			continue
		}
		s, err := strategy.New(tag.Limiting_Strategy, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "tags.%s.limiting_strategy", mac)
		}
		limiter.Set(mac, s)
	}
	return limiter, nil
}
