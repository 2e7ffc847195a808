package hci

// AD types of interest.
const (
	ADTypeFlags            = 0x01
	ADTypeServiceData      = 0x16
	ADTypeURI              = 0x17
	ADTypeManufacturerData = 0xFF
)

// Packet is one LE advertising report event reconstructed from a dump.
type Packet struct {
	PacketType      uint8
	EventCode       uint8
	Length          uint8
	SubEvent        uint8
	NumReports      uint8
	EventType       uint8
	PeerAddressType uint8
	MAC             string
	Reports         []*Report
	// nil until every report has been consumed
	RSSI *int
}

// Report is a single advertising report within a packet.
type Report struct {
	Length         int
	Advertisements []*AdvertisementData
}

// AdvertisementData is one length-prefixed AD structure.
type AdvertisementData struct {
	Length int
	Type   byte
	Data   []byte
}

// FindAdvertisement returns the first AD structure of the given type, or nil.
func (p *Packet) FindAdvertisement(adType byte) *AdvertisementData {
	for _, report := range p.Reports {
		for _, ad := range report.Advertisements {
			if ad.Type == adType {
				return ad
			}
		}
	}
	return nil
}
