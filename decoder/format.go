// Package decoder recognises the advertisement payloads of Ruuvi sensors
// and of generic iBeacon and Eddystone beacons.
package decoder

import (
	"github.com/Scrin/RuuviCollector/hci"
	"github.com/Scrin/RuuviCollector/measurement"
)

// Format is one of the known advertisement encodings.
type Format int

const (
	FormatRuuviV3 Format = iota
	FormatRuuviV5
	FormatRuuviURL
	FormatIBeacon
	FormatEddystoneUID
	FormatEddystoneTLM
)

// Formats in the order they are tried; the first match wins.
var Formats = []Format{
	FormatRuuviV3,
	FormatRuuviV5,
	FormatRuuviURL,
	FormatIBeacon,
	FormatEddystoneUID,
	FormatEddystoneTLM,
}

func (f Format) String() string {
	switch f {
	case FormatRuuviV3:
		return "ruuvi-v3"
	case FormatRuuviV5:
		return "ruuvi-v5"
	case FormatRuuviURL:
		return "ruuvi-url"
	case FormatIBeacon:
		return "ibeacon"
	case FormatEddystoneUID:
		return "eddystone-uid"
	case FormatEddystoneTLM:
		return "eddystone-tlm"
	}
	return "unknown"
}

// Decode returns nil when ad is not in this format.
func (f Format) Decode(ad *hci.AdvertisementData) *measurement.Reading {
	if ad == nil {
		return nil
	}
	switch f {
	case FormatRuuviV3:
		return decodeRuuviV3(ad)
	case FormatRuuviV5:
		return decodeRuuviV5(ad)
	case FormatRuuviURL:
		return decodeRuuviURL(ad)
	case FormatIBeacon:
		return decodeIBeacon(ad)
	case FormatEddystoneUID:
		return decodeEddystoneUID(ad)
	case FormatEddystoneTLM:
		return decodeEddystoneTLM(ad)
	}
	return nil
}

// Decode tries each format in turn.
func Decode(ad *hci.AdvertisementData) *measurement.Reading {
	for _, f := range Formats {
		if r := f.Decode(ad); r != nil {
			return r
		}
	}
	return nil
}
