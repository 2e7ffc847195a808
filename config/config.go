package config

import (
	"io"
	"os"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/Scrin/RuuviCollector/measurement"
	"github.com/Scrin/RuuviCollector/util"
)

// Filter modes
const (
	FilterBlacklist = "blacklist"
	FilterWhitelist = "whitelist"
	FilterNamed     = "named"
)

// Storage value modes
const (
	ValuesExtended  = "extended"
	ValuesRaw       = "raw"
	ValuesWhitelist = "whitelist"
	ValuesBlacklist = "blacklist"
)

// Input sources
const (
	InputHcidump = "hcidump"
	InputStdin   = "stdin"
	InputFile    = "file"
	InputSerial  = "serial"
)

// Duration accepts either a Go duration string ("9900ms", "10s") or an
// integer number of milliseconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var ms int64
	if err := unmarshal(&ms); err == nil {
		d.Duration = time.Duration(ms) * time.Millisecond
		return nil
	}
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	val, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", s)
	}
	d.Duration = val
	return nil
}

type InputConf struct {
	Source string
	Path   string
	Baud   int
}

type CommandConf struct {
	Scan string
	Dump string
}

type MotionSensitivityConf struct {
	Threshold float64
	History   int
}

type FilterConf struct {
	Mode string
	Macs []string
}

type StorageConf struct {
	Method string
	Values string
	List   []string
}

type MqttConf struct {
	Broker    string
	Client_Id string
	Prefix    string
}

type GraphiteConf struct {
	Host   string
	Prefix string
}

type PrometheusConf struct {
	Port int
}

type SqliteConf struct {
	Path string
}

type DataloggerConf struct {
	Path string
}

type TagConf struct {
	Name              string
	Limiting_Strategy string
	Storage           *StorageConf
}

// Configuration structure
type Config struct {
	Receiver                 string
	Log_Level                string
	Log_Format               string
	Input                    InputConf
	Command                  CommandConf
	Measurement_Update_Limit Duration
	Limiting_Strategy        string
	Motion_Sensitivity       MotionSensitivityConf
	Filter                   FilterConf
	Storage                  StorageConf
	Mqtt                     MqttConf
	Graphite                 GraphiteConf
	Prometheus               PrometheusConf
	Sqlite                   SqliteConf
	Datalogger               DataloggerConf
	Tags                     map[string]TagConf

	filterMacs map[string]bool
	filter     measurement.FieldFilter
	tagFilters map[string]measurement.FieldFilter
}

// Default configuration, before any file is applied.
func Default() *Config {
	return &Config{
		Log_Level:  "info",
		Log_Format: "text",
		Input: InputConf{
			Source: InputHcidump,
			Baud:   115200,
		},
		Command: CommandConf{
			Scan: "hcitool lescan --duplicates --passive",
			Dump: "hcidump --raw",
		},
		Measurement_Update_Limit: Duration{9900 * time.Millisecond},
		Limiting_Strategy:        "default",
		Motion_Sensitivity: MotionSensitivityConf{
			Threshold: 0.05,
			History:   3,
		},
		Filter: FilterConf{Mode: FilterBlacklist},
		Storage: StorageConf{
			Method: "dummy",
			Values: ValuesExtended,
		},
		Mqtt:       MqttConf{Prefix: "ruuvi"},
		Graphite:   GraphiteConf{Host: "localhost:2003", Prefix: "ruuvi"},
		Prometheus: PrometheusConf{Port: 9155},
		Sqlite:     SqliteConf{Path: "~/.local/share/ruuvi-collector/readings.db"},
		Datalogger: DataloggerConf{Path: "~/.local/share/ruuvi-collector/log"},
	}
}

// Open configuration from the default location. A missing file gives the
// defaults.
func Open() (*Config, error) {
	return OpenPath(ConfigPath("ruuvi-collector.yml"))
}

// Open configuration from a file.
func OpenPath(p string) (*Config, error) {
	file, err := os.Open(util.ExpandUser(p))
	if os.IsNotExist(err) {
		return OpenRaw(nil)
	}
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}
	defer file.Close()
	return OpenReader(file)
}

// Open configuration from a reader.
func OpenReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return OpenRaw(data)
}

// Open configuration from []byte.
func OpenRaw(data []byte) (*Config, error) {
	self := Default()
	if err := yaml.Unmarshal(data, self); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	if err := self.init(); err != nil {
		return nil, err
	}
	return self, nil
}

var macPattern = regexp.MustCompile(`^[0-9A-F]{12}$`)

// NormalizeMAC turns "aa:bb:cc:dd:ee:ff" into "AABBCCDDEEFF".
func NormalizeMAC(mac string) (string, error) {
	n := strings.ToUpper(strings.NewReplacer(":", "", "-", "").Replace(strings.TrimSpace(mac)))
	if !macPattern.MatchString(n) {
		return "", errors.Errorf("invalid MAC address %q", mac)
	}
	return n, nil
}

func (self *Config) init() error {
	self.filterMacs = map[string]bool{}
	for _, mac := range self.Filter.Macs {
		n, err := NormalizeMAC(mac)
		if err != nil {
			return errors.Wrap(err, "filter.macs")
		}
		self.filterMacs[n] = true
	}
	switch self.Filter.Mode {
	case FilterBlacklist, FilterWhitelist:
	case FilterNamed:
		if len(self.Tags) == 0 {
			return errors.New("filter.mode named requires at least one tag")
		}
	default:
		return errors.Errorf("invalid filter.mode %q", self.Filter.Mode)
	}

	if self.Measurement_Update_Limit.Duration <= 0 {
		return errors.Errorf("measurement_update_limit must be positive, got %s", self.Measurement_Update_Limit.Duration)
	}
	if self.Motion_Sensitivity.Threshold <= 0 {
		return errors.Errorf("motion_sensitivity.threshold must be positive, got %g", self.Motion_Sensitivity.Threshold)
	}
	if self.Motion_Sensitivity.History < 2 {
		return errors.Errorf("motion_sensitivity.history must be at least 2, got %d", self.Motion_Sensitivity.History)
	}

	tags := make(map[string]TagConf, len(self.Tags))
	for mac, tag := range self.Tags {
		n, err := NormalizeMAC(mac)
		if err != nil {
			return errors.Wrap(err, "tags")
		}
		tags[n] = tag
	}
	self.Tags = tags

	filter, err := self.Storage.fieldFilter()
	if err != nil {
		return errors.Wrap(err, "storage")
	}
	self.filter = filter

	self.tagFilters = map[string]measurement.FieldFilter{}
	for mac, tag := range self.Tags {
		if tag.Storage == nil {
			continue
		}
		filter, err := tag.Storage.fieldFilter()
		if err != nil {
			return errors.Wrapf(err, "tags.%s.storage", mac)
		}
		self.tagFilters[mac] = filter
	}
	return nil
}

func (s *StorageConf) fieldFilter() (measurement.FieldFilter, error) {
	switch s.Values {
	case "", ValuesExtended:
		return measurement.AllFields, nil
	case ValuesRaw:
		return measurement.Include(measurement.RawFields), nil
	case ValuesWhitelist:
		if len(s.List) == 0 {
			return nil, errors.New("values whitelist requires a non-empty list")
		}
		return measurement.Include(s.List), nil
	case ValuesBlacklist:
		return measurement.Exclude(s.List), nil
	}
	return nil, errors.Errorf("invalid values mode %q", s.Values)
}

// IsAllowedMAC applies the MAC filter.
func (self *Config) IsAllowedMAC(mac string) bool {
	if mac == "" {
		return false
	}
	switch self.Filter.Mode {
	case FilterWhitelist:
		return self.filterMacs[mac]
	case FilterNamed:
		_, ok := self.Tags[mac]
		return ok
	}
	return !self.filterMacs[mac]
}

// TagName is the configured display name, or "".
func (self *Config) TagName(mac string) string {
	return self.Tags[mac].Name
}

// StrategyName is the limiting strategy for a device.
func (self *Config) StrategyName(mac string) string {
	if tag, ok := self.Tags[mac]; ok && tag.Limiting_Strategy != "" {
		return tag.Limiting_Strategy
	}
	return self.Limiting_Strategy
}

// FieldFilter selects the stored fields for a device.
func (self *Config) FieldFilter(mac string) measurement.FieldFilter {
	if filter, ok := self.tagFilters[mac]; ok {
		return filter
	}
	if self.filter == nil {
		return measurement.AllFields
	}
	return self.filter
}

// StorageMethods lists the configured sinks.
func (self *Config) StorageMethods() []string {
	var methods []string
	for _, m := range strings.Split(self.Storage.Method, ",") {
		if m = strings.TrimSpace(m); m != "" {
			methods = append(methods, m)
		}
	}
	return methods
}

// helpers

// Resolve a configuration file under .config/ruuvi-collector
func ConfigPath(p string) string {
	config := os.Getenv("XDG_CONFIG_HOME")
	if config == "" {
		config = path.Join(os.Getenv("HOME"), ".config")
	}
	return path.Join(config, "ruuvi-collector", p)
}
