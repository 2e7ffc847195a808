package collector

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tarm/serial"

	"github.com/Scrin/RuuviCollector/config"
	"github.com/Scrin/RuuviCollector/util"
)

// OpenSource opens the line stream selected by input.source.
func OpenSource(ctx context.Context, cfg *config.Config) (io.ReadCloser, error) {
	switch cfg.Input.Source {
	case config.InputHcidump:
		h, err := StartHcidump(ctx, cfg.Command.Scan, cfg.Command.Dump)
		if err != nil {
			return nil, err
		}
		return h, nil
	case config.InputStdin:
		return os.Stdin, nil
	case config.InputFile:
		f, err := os.Open(util.ExpandUser(cfg.Input.Path))
		if err != nil {
			return nil, errors.Wrap(err, "open input file")
		}
		return f, nil
	case config.InputSerial:
		port, err := serial.OpenPort(&serial.Config{Name: cfg.Input.Path, Baud: cfg.Input.Baud})
		if err != nil {
			return nil, errors.Wrapf(err, "open serial port %s", cfg.Input.Path)
		}
		return port, nil
	}
	return nil, errors.Errorf("unknown input source %q", cfg.Input.Source)
}

// Hcidump runs the scan command in the background and reads the output
// of the dump command.
type Hcidump struct {
	scan    *exec.Cmd
	dump    *exec.Cmd
	stdout  io.ReadCloser
	scanErr bytes.Buffer
	dumpErr bytes.Buffer
}

// StartHcidump starts both commands. scan may be empty when something else
// keeps the adapter scanning.
func StartHcidump(ctx context.Context, scan, dump string) (*Hcidump, error) {
	h := &Hcidump{}
	if scan != "" {
		h.scan = command(ctx, scan)
		h.scan.Stdout = io.Discard
		h.scan.Stderr = &h.scanErr
		slog.Info("Starting scan", "cmd", scan)
		if err := h.scan.Start(); err != nil {
			return nil, errors.Wrapf(err, "start %q", scan)
		}
	}

	h.dump = command(ctx, dump)
	h.dump.Stderr = &h.dumpErr
	stdout, err := h.dump.StdoutPipe()
	if err != nil {
		h.Close()
		return nil, errors.Wrapf(err, "start %q", dump)
	}
	h.stdout = stdout
	slog.Info("Starting dump", "cmd", dump)
	if err := h.dump.Start(); err != nil {
		h.Close()
		return nil, errors.Wrapf(err, "start %q", dump)
	}
	return h, nil
}

func command(ctx context.Context, cmdline string) *exec.Cmd {
	args := strings.Fields(cmdline)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	// SIGINT is the only clean way of stopping hcitool, any other signal
	// leaves the hci device unusable until it is reset.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = 5 * time.Second
	return cmd
}

func (h *Hcidump) Read(p []byte) (int, error) {
	return h.stdout.Read(p)
}

// Close interrupts both commands and waits for them to exit.
func (h *Hcidump) Close() error {
	var first error
	for _, c := range []struct {
		cmd    *exec.Cmd
		stderr *bytes.Buffer
	}{{h.dump, &h.dumpErr}, {h.scan, &h.scanErr}} {
		if c.cmd == nil || c.cmd.Process == nil {
			continue
		}
		c.cmd.Process.Signal(os.Interrupt)
		err := c.cmd.Wait()
		if c.stderr.Len() > 0 {
			slog.Warn("Command error output", "cmd", c.cmd.Path, "stderr", strings.TrimSpace(c.stderr.String()))
		}
		if err != nil && !isInterrupted(err) && first == nil {
			first = errors.Wrapf(err, "%s", c.cmd.Path)
		}
	}
	return first
}

func isInterrupted(err error) bool {
	var exit *exec.ExitError
	if errors.As(err, &exit) {
		return !exit.Exited() || exit.ExitCode() == 130
	}
	return false
}
