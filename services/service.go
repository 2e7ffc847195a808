// Package services runs long lived collector processes.
package services

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/pkg/errors"

	"github.com/Scrin/RuuviCollector/util"
)

// Service interface
type Service interface {
	ID() string
	Run(ctx context.Context) error
}

// SetupLogging installs the default logger. format is "text" or "json".
func SetupLogging(level, format string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return errors.Wrapf(err, "log level %q", level)
	}
	var handler slog.Handler
	switch format {
	case "", "text":
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      lvl,
			TimeFormat: "15:04:05.000000",
		})
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		return errors.Errorf("unknown log format %q", format)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// Launch runs service until it returns or the process is interrupted.
func Launch(service Service) error {
	// Gracefully handle signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("Starting", "service", service.ID())
	go Heartbeat(ctx, service.ID())

	err := service.Run(ctx)
	util.SdNotify(false, util.SdNotifyStopping)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if err != nil {
		return errors.Wrapf(err, "running service %s", service.ID())
	}
	slog.Info("Shut down", "service", service.ID())
	return nil
}

// Heartbeat notifies systemd that the service is up, then pets the
// watchdog until ctx is done.
func Heartbeat(ctx context.Context, id string) {
	if _, err := util.SdNotify(false, util.SdNotifyReady); err != nil {
		slog.Warn("systemd notify failed", "service", id, "err", err)
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			util.SdNotify(false, util.SdNotifyWatchdog)
		}
	}
}
