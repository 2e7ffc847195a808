package config

// ExampleYaml is a commented configuration covering every option.
var ExampleYaml = `# Tag for this receiver, stored with every reading.
receiver: livingroom-pi

log_level: info
# text or json
log_format: text

input:
  # hcidump, stdin, file or serial
  source: hcidump
  path: /dev/ttyUSB0
  baud: 115200

command:
  scan: hcitool lescan --duplicates --passive
  dump: hcidump --raw

# Minimum time between stored readings of one tag. Plain numbers are
# milliseconds.
measurement_update_limit: 9900ms

# default or defaultWithMotionSensitivity
limiting_strategy: default
motion_sensitivity:
  threshold: 0.05
  history: 3

filter:
  # blacklist, whitelist or named (only tags listed below)
  mode: blacklist
  macs:
    - "AB:12:CD:34:EF:56"

storage:
  # comma separated: dummy, logger, graphite, mqtt, prometheus, sqlite, datalogger
  method: logger,prometheus
  # extended, raw, whitelist or blacklist
  values: extended
  list: []

mqtt:
  broker: tcp://localhost:1883
  client_id: ruuvi-collector
  prefix: ruuvi

graphite:
  host: localhost:2003
  prefix: ruuvi

prometheus:
  port: 9155

sqlite:
  path: ~/.local/share/ruuvi-collector/readings.db

datalogger:
  path: ~/.local/share/ruuvi-collector/log

tags:
  "AA:BB:CC:DD:EE:FF":
    name: Sauna
  "C9:B7:EB:45:C0:EF":
    name: Front door
    limiting_strategy: onMovement
    storage:
      values: whitelist
      list: [temperature, accelerationX, accelerationY, accelerationZ, movementCounter]
`

// ExampleConfig is ExampleYaml parsed.
var ExampleConfig *Config

func init() {
	var err error
	ExampleConfig, err = OpenRaw([]byte(ExampleYaml))
	if err != nil {
		panic(err)
	}
}
