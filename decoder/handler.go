package decoder

import (
	"github.com/Scrin/RuuviCollector/hci"
	"github.com/Scrin/RuuviCollector/measurement"
)

// Tags resolves per device settings by MAC address.
type Tags interface {
	IsAllowedMAC(mac string) bool
	TagName(mac string) string
}

// AD types searched for a payload, most specific first.
var adTypePreference = []byte{
	hci.ADTypeManufacturerData,
	hci.ADTypeServiceData,
	hci.ADTypeURI,
}

// Handler turns complete packets into readings.
type Handler struct {
	tags     Tags
	receiver string
}

func NewHandler(tags Tags, receiver string) *Handler {
	return &Handler{tags: tags, receiver: receiver}
}

// Handle returns nil if the device is filtered out or no format matches.
func (h *Handler) Handle(p *hci.Packet) *measurement.Reading {
	if p == nil || !h.tags.IsAllowedMAC(p.MAC) {
		return nil
	}
	ad := selectAdvertisement(p)
	if ad == nil {
		return nil
	}
	r := Decode(ad)
	if r == nil {
		return nil
	}
	r.MAC = p.MAC
	if p.RSSI != nil {
		r.RSSI = measurement.Int(*p.RSSI)
	}
	r.Name = h.tags.TagName(p.MAC)
	r.Receiver = h.receiver
	return r
}

func selectAdvertisement(p *hci.Packet) *hci.AdvertisementData {
	for _, t := range adTypePreference {
		if ad := p.FindAdvertisement(t); ad != nil {
			return ad
		}
	}
	return nil
}
