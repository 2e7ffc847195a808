package decoder

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"strings"

	"github.com/go-ble/ble"
	"github.com/google/uuid"

	"github.com/Scrin/RuuviCollector/hci"
	"github.com/Scrin/RuuviCollector/measurement"
)

// Apple company id followed by the iBeacon type and length.
var iBeaconPrefix = []byte{0x4C, 0x00, 0x02, 0x15}

var eddystoneService = ble.UUID16(0xFEAA)

// Eddystone frame types
const (
	eddystoneUID = 0x00
	eddystoneURL = 0x10
	eddystoneTLM = 0x20
)

func isEddystone(data []byte) bool {
	return len(data) >= 3 && ble.UUID(data[:2]).Equal(eddystoneService)
}

func decodeIBeacon(ad *hci.AdvertisementData) *measurement.Reading {
	data := ad.Data
	if len(data) < 25 || !bytes.HasPrefix(data, iBeaconPrefix) {
		return nil
	}
	id, err := uuid.FromBytes(data[4:20])
	if err != nil {
		return nil
	}
	return &measurement.Reading{
		DataFormat:  measurement.FormatIBeacon,
		UUID:        id.String(),
		Major:       measurement.Int(int(binary.BigEndian.Uint16(data[20:22]))),
		Minor:       measurement.Int(int(binary.BigEndian.Uint16(data[22:24]))),
		SignalPower: measurement.Int(int(int8(data[24]))),
	}
}

func decodeEddystoneUID(ad *hci.AdvertisementData) *measurement.Reading {
	data := ad.Data
	if len(data) < 22 || !isEddystone(data) || data[2] != eddystoneUID {
		return nil
	}
	return &measurement.Reading{
		DataFormat:  measurement.FormatEddystoneUID,
		SignalPower: measurement.Int(int(int8(data[3]))),
		NamespaceID: strings.ToUpper(hex.EncodeToString(data[4:14])),
		InstanceID:  strings.ToUpper(hex.EncodeToString(data[14:20])),
	}
}

// decodeEddystoneTLM handles unencrypted (version 0) telemetry frames.
func decodeEddystoneTLM(ad *hci.AdvertisementData) *measurement.Reading {
	data := ad.Data
	if len(data) < 16 || !isEddystone(data) || data[2] != eddystoneTLM || data[3] != 0x00 {
		return nil
	}
	r := &measurement.Reading{
		DataFormat:     measurement.FormatEddystoneTLM,
		BatteryVoltage: measurement.Float(float64(binary.BigEndian.Uint16(data[4:6])) / 1000),
	}
	// Eddystone TLM frame layout (google/eddystone, eddystone-tlm/tlm-plain.md):
	// beacon temperature is signed 8.8 fixed point, not integer plus
	// hundredths. 0x8000 when the beacon has no sensor.
	if raw := binary.BigEndian.Uint16(data[6:8]); raw != 0x8000 {
		r.Temperature = measurement.Float(float64(int16(raw)) / 256)
	}
	count := int64(binary.BigEndian.Uint32(data[8:12]))
	r.AdvertisementCount = &count
	r.SecondsUptime = measurement.Float(float64(binary.BigEndian.Uint32(data[12:16])) / 10)
	return r
}
