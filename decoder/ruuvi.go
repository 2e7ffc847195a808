package decoder

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"strings"

	"github.com/Scrin/RuuviCollector/hci"
	"github.com/Scrin/RuuviCollector/measurement"
)

// Ruuvi Innovations Ltd. company identifier, little-endian on the wire.
var ruuviCompanyID = []byte{0x99, 0x04}

const ruuviURLPrefix = "ruu.vi/#"

func ruuviPayload(ad *hci.AdvertisementData) []byte {
	if !bytes.HasPrefix(ad.Data, ruuviCompanyID) {
		return nil
	}
	return ad.Data[len(ruuviCompanyID):]
}

func decodeRuuviV3(ad *hci.AdvertisementData) *measurement.Reading {
	data := ruuviPayload(ad)
	if len(data) < 14 || data[0] != 3 {
		return nil
	}
	r := &measurement.Reading{DataFormat: measurement.FormatRuuviV3}
	readV3Environment(r, data)
	r.AccelerationX = measurement.Float(float64(int16(binary.BigEndian.Uint16(data[6:8]))) / 1000)
	r.AccelerationY = measurement.Float(float64(int16(binary.BigEndian.Uint16(data[8:10]))) / 1000)
	r.AccelerationZ = measurement.Float(float64(int16(binary.BigEndian.Uint16(data[10:12]))) / 1000)
	r.BatteryVoltage = measurement.Float(float64(binary.BigEndian.Uint16(data[12:14])) / 1000)
	return r
}

// readV3Environment decodes humidity, temperature and pressure, which
// formats 2, 3 and 4 share.
func readV3Environment(r *measurement.Reading, data []byte) {
	r.Humidity = measurement.Float(float64(data[1]) / 2)

	// sign and magnitude, fraction in hundredths
	temperature := float64(data[2]&0x7F) + float64(data[3])/100
	if data[2]&0x80 != 0 {
		temperature = -temperature
	}
	r.Temperature = measurement.Float(temperature)

	r.Pressure = measurement.Float(float64(binary.BigEndian.Uint16(data[4:6])) + 50000)
}

func decodeRuuviV5(ad *hci.AdvertisementData) *measurement.Reading {
	data := ruuviPayload(ad)
	if len(data) < 24 || data[0] != 5 {
		return nil
	}
	r := &measurement.Reading{DataFormat: measurement.FormatRuuviV5}

	if v, ok := signed16(data[1:3]); ok {
		r.Temperature = measurement.Float(float64(v) / 200)
	}
	if v, ok := unsigned16(data[3:5]); ok {
		r.Humidity = measurement.Float(float64(v) / 400)
	}
	if v, ok := unsigned16(data[5:7]); ok {
		r.Pressure = measurement.Float(float64(v) + 50000)
	}
	if v, ok := signed16(data[7:9]); ok {
		r.AccelerationX = measurement.Float(float64(v) / 1000)
	}
	if v, ok := signed16(data[9:11]); ok {
		r.AccelerationY = measurement.Float(float64(v) / 1000)
	}
	if v, ok := signed16(data[11:13]); ok {
		r.AccelerationZ = measurement.Float(float64(v) / 1000)
	}

	// 11 bits battery above 5 bits tx power
	power := binary.BigEndian.Uint16(data[13:15])
	if battery := power >> 5; battery != 0x7FF {
		r.BatteryVoltage = measurement.Float(float64(battery)/1000 + 1.6)
	}
	if tx := power & 0x1F; tx != 0x1F {
		r.TxPower = measurement.Int(int(tx)*2 - 40)
	}

	if data[15] != 0xFF {
		r.MovementCounter = measurement.Int(int(data[15]))
	}
	if v, ok := unsigned16(data[16:18]); ok {
		r.MeasurementSequenceNumber = measurement.Int(int(v))
	}
	return r
}

// signed16 reads a big-endian int16. Both 0x7FFF and 0x8000 mark a value
// as not available.
func signed16(b []byte) (int16, bool) {
	raw := binary.BigEndian.Uint16(b)
	if raw == 0x7FFF || raw == 0x8000 {
		return 0, false
	}
	return int16(raw), true
}

// unsigned16 reads a big-endian uint16, 0xFFFF marks not available.
func unsigned16(b []byte) (uint16, bool) {
	raw := binary.BigEndian.Uint16(b)
	return raw, raw != 0xFFFF
}

// decodeRuuviURL handles formats 2 and 4, broadcast as an Eddystone-URL
// frame pointing at https://ruu.vi/#<base64>. Format 4 appends one extra
// character for the tag id, which is dropped.
func decodeRuuviURL(ad *hci.AdvertisementData) *measurement.Reading {
	data := ad.Data
	if len(data) < 15 || !isEddystone(data) || data[2] != eddystoneURL || data[4] != 0x03 {
		return nil
	}
	url := string(data[5:])
	if !strings.HasPrefix(url, ruuviURLPrefix) {
		return nil
	}
	encoded := strings.TrimRight(url[len(ruuviURLPrefix):], "=")

	if r := decodeRuuviURLPayload(encoded); r != nil {
		return r
	}
	if len(encoded) > 1 {
		return decodeRuuviURLPayload(encoded[:len(encoded)-1])
	}
	return nil
}

func decodeRuuviURLPayload(encoded string) *measurement.Reading {
	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil || len(data) < 6 {
		return nil
	}
	r := &measurement.Reading{}
	switch data[0] {
	case 2:
		r.DataFormat = measurement.FormatRuuviV2
	case 4:
		r.DataFormat = measurement.FormatRuuviV4
	default:
		return nil
	}
	readV3Environment(r, data)
	return r
}
