// The Ruuvi collector reads BLE advertisements from a BlueZ hcidump stream
// and stores measurements from RuuviTags and other beacons.
//
// Features
//
// - Ruuvi data formats 2, 3, 4 and 5
//
// - iBeacon, Eddystone UID and Eddystone TLM beacons
//
// - Derived values (absolute humidity, dew point, air density, acceleration
// angles, equilibrium vapor pressure)
//
// - Per tag throttling, optionally letting movement through immediately
//
// - MAC filtering and per tag field selection
//
// Storage supported
//
// - Prometheus exporter
//
// - MQTT
//
// - Graphite
//
// - SQLite
//
// - JSON data log files
//
// - Log output
package ruuvicollector
