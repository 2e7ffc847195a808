package measurement

// FieldFilter decides whether a named field is passed on to storage.
type FieldFilter func(field string) bool

// AllFields accepts every field.
func AllFields(string) bool { return true }

// RawFields are the fields a sensor measures itself, as opposed to derived
// or beacon metadata fields.
var RawFields = []string{
	"temperature",
	"humidity",
	"pressure",
	"accelerationX",
	"accelerationY",
	"accelerationZ",
	"batteryVoltage",
	"txPower",
	"movementCounter",
	"measurementSequenceNumber",
	"rssi",
}

// FieldNames lists every numeric field in output order.
var FieldNames = func() []string {
	names := make([]string, len(fieldGetters))
	for i, f := range fieldGetters {
		names[i] = f.name
	}
	return names
}()

type fieldGetter struct {
	name string
	get  func(r *Reading) *float64
}

func fromInt(i *int) *float64 {
	if i == nil {
		return nil
	}
	return Float(float64(*i))
}

var fieldGetters = []fieldGetter{
	{"temperature", func(r *Reading) *float64 { return r.Temperature }},
	{"humidity", func(r *Reading) *float64 { return r.Humidity }},
	{"pressure", func(r *Reading) *float64 { return r.Pressure }},
	{"accelerationX", func(r *Reading) *float64 { return r.AccelerationX }},
	{"accelerationY", func(r *Reading) *float64 { return r.AccelerationY }},
	{"accelerationZ", func(r *Reading) *float64 { return r.AccelerationZ }},
	{"batteryVoltage", func(r *Reading) *float64 { return r.BatteryVoltage }},
	{"txPower", func(r *Reading) *float64 { return fromInt(r.TxPower) }},
	{"movementCounter", func(r *Reading) *float64 { return fromInt(r.MovementCounter) }},
	{"measurementSequenceNumber", func(r *Reading) *float64 { return fromInt(r.MeasurementSequenceNumber) }},
	{"rssi", func(r *Reading) *float64 { return fromInt(r.RSSI) }},
	{"major", func(r *Reading) *float64 { return fromInt(r.Major) }},
	{"minor", func(r *Reading) *float64 { return fromInt(r.Minor) }},
	{"signalPower", func(r *Reading) *float64 { return fromInt(r.SignalPower) }},
	{"advertisementCount", func(r *Reading) *float64 {
		if r.AdvertisementCount == nil {
			return nil
		}
		return Float(float64(*r.AdvertisementCount))
	}},
	{"secondsUptime", func(r *Reading) *float64 { return r.SecondsUptime }},
	{"accelerationTotal", func(r *Reading) *float64 { return r.AccelerationTotal }},
	{"accelerationAngleFromX", func(r *Reading) *float64 { return r.AccelerationAngleFromX }},
	{"accelerationAngleFromY", func(r *Reading) *float64 { return r.AccelerationAngleFromY }},
	{"accelerationAngleFromZ", func(r *Reading) *float64 { return r.AccelerationAngleFromZ }},
	{"absoluteHumidity", func(r *Reading) *float64 { return r.AbsoluteHumidity }},
	{"dewPoint", func(r *Reading) *float64 { return r.DewPoint }},
	{"equilibriumVaporPressure", func(r *Reading) *float64 { return r.EquilibriumVaporPressure }},
	{"airDensity", func(r *Reading) *float64 { return r.AirDensity }},
}

// Field is one named numeric value of a reading.
type Field struct {
	Name  string
	Value float64
}

// Fields flattens the present numeric values of r that pass filter, in
// FieldNames order. A nil filter accepts everything.
func Fields(r *Reading, filter FieldFilter) []Field {
	if filter == nil {
		filter = AllFields
	}
	var fields []Field
	for _, f := range fieldGetters {
		v := f.get(r)
		if v == nil || !filter(f.name) {
			continue
		}
		fields = append(fields, Field{Name: f.name, Value: *v})
	}
	return fields
}

// Include builds a filter that accepts only the listed fields.
func Include(names []string) FieldFilter {
	set := toSet(names)
	return func(field string) bool { return set[field] }
}

// Exclude builds a filter that rejects the listed fields.
func Exclude(names []string) FieldFilter {
	set := toSet(names)
	return func(field string) bool { return !set[field] }
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}
