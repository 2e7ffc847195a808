// Package measurement holds the normalised sensor reading produced by the
// decoders, the derived value calculator and the flattening used by sinks.
package measurement

import "time"

// DataFormat identifies the advertisement encoding a reading was decoded
// from.
type DataFormat string

const (
	FormatRuuviV2      DataFormat = "2"
	FormatRuuviV3      DataFormat = "3"
	FormatRuuviV4      DataFormat = "4"
	FormatRuuviV5      DataFormat = "5"
	FormatIBeacon      DataFormat = "ibeacon"
	FormatEddystoneUID DataFormat = "eddystone_uid"
	FormatEddystoneTLM DataFormat = "eddystone_tlm"
)

// Reading is one decoded sample. Nil pointers are values the source format
// does not carry, or carried as "not available".
type Reading struct {
	Time       time.Time  `json:"time"`
	MAC        string     `json:"mac"`
	Name       string     `json:"name,omitempty"`
	Receiver   string     `json:"receiver,omitempty"`
	DataFormat DataFormat `json:"dataFormat"`
	RSSI       *int       `json:"rssi,omitempty"`

	Temperature               *float64 `json:"temperature,omitempty"`
	Humidity                  *float64 `json:"humidity,omitempty"`
	Pressure                  *float64 `json:"pressure,omitempty"`
	AccelerationX             *float64 `json:"accelerationX,omitempty"`
	AccelerationY             *float64 `json:"accelerationY,omitempty"`
	AccelerationZ             *float64 `json:"accelerationZ,omitempty"`
	BatteryVoltage            *float64 `json:"batteryVoltage,omitempty"`
	TxPower                   *int     `json:"txPower,omitempty"`
	MovementCounter           *int     `json:"movementCounter,omitempty"`
	MeasurementSequenceNumber *int     `json:"measurementSequenceNumber,omitempty"`

	// beacon formats
	UUID               string   `json:"uuid,omitempty"`
	Major              *int     `json:"major,omitempty"`
	Minor              *int     `json:"minor,omitempty"`
	SignalPower        *int     `json:"signalPower,omitempty"`
	NamespaceID        string   `json:"namespaceId,omitempty"`
	InstanceID         string   `json:"instanceId,omitempty"`
	AdvertisementCount *int64   `json:"advertisementCount,omitempty"`
	SecondsUptime      *float64 `json:"secondsUptime,omitempty"`

	// derived, see Enrich
	AccelerationTotal        *float64 `json:"accelerationTotal,omitempty"`
	AccelerationAngleFromX   *float64 `json:"accelerationAngleFromX,omitempty"`
	AccelerationAngleFromY   *float64 `json:"accelerationAngleFromY,omitempty"`
	AccelerationAngleFromZ   *float64 `json:"accelerationAngleFromZ,omitempty"`
	AbsoluteHumidity         *float64 `json:"absoluteHumidity,omitempty"`
	DewPoint                 *float64 `json:"dewPoint,omitempty"`
	EquilibriumVaporPressure *float64 `json:"equilibriumVaporPressure,omitempty"`
	AirDensity               *float64 `json:"airDensity,omitempty"`
}

// HasAcceleration reports whether all three axes are present.
func (r *Reading) HasAcceleration() bool {
	return r.AccelerationX != nil && r.AccelerationY != nil && r.AccelerationZ != nil
}

func Float(f float64) *float64 { return &f }
func Int(i int) *int           { return &i }
