package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/Scrin/RuuviCollector/collector"
	"github.com/Scrin/RuuviCollector/config"
	"github.com/Scrin/RuuviCollector/decoder"
	"github.com/Scrin/RuuviCollector/measurement"
	"github.com/Scrin/RuuviCollector/services"
	"github.com/Scrin/RuuviCollector/services/ruuvi"
)

var (
	configPath = pflag.StringP("config", "c", config.ConfigPath("ruuvi-collector.yml"), "configuration file")
	logLevel   = pflag.String("log-level", "", "override log_level (debug, info, warn, error)")
	input      = pflag.String("input", "", "override input.source (hcidump, stdin, file, serial)")
	inputPath  = pflag.String("input-path", "", "override input.path")
	storage    = pflag.String("storage", "", "override storage.method")
	dryRun     = pflag.Bool("dry-run", false, "store nothing, same as --storage=dummy")
	example    = pflag.Bool("example-config", false, "print an example configuration and exit")
)

func usage() {
	fmt.Println("Usage: ruuvi-collector [OPTIONS] [COMMAND]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("   run                 Collect measurements (default)")
	fmt.Println("   decode [file...]    Decode hcidump --raw output to JSON lines")
	fmt.Println("   example-config      Print an example configuration")
	fmt.Println()
	fmt.Println("Options:")
	pflag.PrintDefaults()
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

func main() {
	pflag.Usage = usage
	pflag.Parse()

	command := "run"
	if *example {
		command = "example-config"
	} else if pflag.NArg() > 0 {
		command = pflag.Arg(0)
	}

	switch command {
	default:
		usage()
		os.Exit(2)
	case "example-config":
		fmt.Print(config.ExampleYaml)
	case "run":
		cfg := load()
		if err := services.Launch(&ruuvi.Service{Config: cfg}); err != nil {
			slog.Error("Collector failed", "err", err)
			os.Exit(1)
		}
	case "decode":
		cfg := load()
		if err := decode(cfg, pflag.Args()[1:], os.Stdout); err != nil {
			fatalf("decode: %s\n", err)
		}
	}
}

func load() *config.Config {
	cfg, err := config.OpenPath(*configPath)
	if err != nil {
		fatalf("error: %s\n", err)
	}
	if *logLevel != "" {
		cfg.Log_Level = *logLevel
	}
	if *input != "" {
		cfg.Input.Source = *input
	}
	if *inputPath != "" {
		cfg.Input.Path = *inputPath
	}
	if *storage != "" {
		cfg.Storage.Method = *storage
	}
	if *dryRun {
		cfg.Storage.Method = "dummy"
	}
	if err := services.SetupLogging(cfg.Log_Level, cfg.Log_Format); err != nil {
		fatalf("error: %s\n", err)
	}
	return cfg
}

// admitAll turns off throttling for decode.
type admitAll struct{}

func (admitAll) Admit(*measurement.Reading, time.Time) bool { return true }

type jsonLines struct {
	enc *json.Encoder
}

func (j jsonLines) Save(r *measurement.Reading) error { return j.enc.Encode(r) }
func (j jsonLines) Close() error { return nil }

func decode(cfg *config.Config, files []string, w io.Writer) error {
	c := collector.New(decoder.NewHandler(cfg, cfg.Receiver), admitAll{}, jsonLines{json.NewEncoder(w)})
	if len(files) == 0 {
		return c.Run(context.Background(), os.Stdin)
	}
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		err = c.Run(context.Background(), f)
		f.Close()
		if err != nil {
			return err
		}
		c.Reset()
	}
	return nil
}
