// Package hci reassembles BLE advertising events from the text output of
// `hcidump --raw`.
//
// hcidump prints each HCI packet as a line starting with '>' (controller to
// host) or '<' (host to controller), wrapping long packets onto indented
// continuation lines:
//
//	> 04 3E 21 02 01 03 01 FF EE DD CC BB AA 15 02 01 06 11 FF 99 04 03 49
//	  16 0E BE F8 00 05 FF EA 03 E1 0B BF B4
package hci

import (
	"strings"
)

type parserState int

const (
	stateIdle parserState = iota
	stateReceiving
	stateSending
)

// header byte positions
const (
	posPacketType = iota
	posEventCode
	posLength
	posSubEvent
	posNumReports
	posEventType
	posPeerAddressType
	posMAC
	posReports = posMAC + 6
)

// Parser is a byte position state machine fed one dump line at a time.
// It is not safe for concurrent use; each input stream needs its own.
type Parser struct {
	state  parserState
	packet *Packet
	pos    int

	report    *Report
	reportPos int
	ad        *AdvertisementData
	adPos     int
}

func NewParser() *Parser {
	p := &Parser{}
	p.Reset()
	return p
}

// Reset drops any partially parsed packet. Continuation lines are ignored
// until the next incoming packet starts.
func (p *Parser) Reset() {
	p.state = stateIdle
	p.packet = &Packet{}
	p.pos = 0
	p.report = nil
	p.reportPos = 0
	p.ad = nil
	p.adPos = 0
}

// ReadLine consumes one line of dump output. It returns the packet once
// the bytes consumed reach the declared length, nil otherwise. An error is
// returned for lines that are not valid hex; the caller should Reset.
func (p *Parser) ReadLine(line string) (*Packet, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}
	switch line[0] {
	case '>':
		p.Reset()
		p.state = stateReceiving
		line = line[1:]
	case '<':
		p.Reset()
		p.state = stateSending
		return nil, nil
	}
	if p.state != stateReceiving {
		return nil, nil
	}

	data, err := DecodeHex(line)
	if err != nil {
		return nil, err
	}
	for _, b := range data {
		p.handleByte(b)
		p.pos++
	}

	if p.pos > posLength && p.pos >= int(p.packet.Length)+3 {
		packet := p.packet
		p.Reset()
		return packet, nil
	}
	return nil, nil
}

func (p *Parser) handleByte(b byte) {
	pkt := p.packet
	switch {
	case p.pos == posPacketType:
		pkt.PacketType = b
	case p.pos == posEventCode:
		pkt.EventCode = b
	case p.pos == posLength:
		pkt.Length = b
	case p.pos == posSubEvent:
		pkt.SubEvent = b
	case p.pos == posNumReports:
		pkt.NumReports = b
	case p.pos == posEventType:
		pkt.EventType = b
	case p.pos == posPeerAddressType:
		pkt.PeerAddressType = b
	case p.pos < posReports:
		// address is transmitted least significant byte first
		pkt.MAC = EncodeHex([]byte{b}) + pkt.MAC
	case p.report != nil || len(pkt.Reports) < int(pkt.NumReports):
		p.handleReportByte(b)
	case pkt.RSSI == nil:
		rssi := int(int8(b))
		pkt.RSSI = &rssi
	}
}

func (p *Parser) handleReportByte(b byte) {
	if p.report == nil {
		p.report = &Report{Length: int(b)}
		p.packet.Reports = append(p.packet.Reports, p.report)
		p.reportPos = 1
	} else {
		p.handleADByte(b)
		p.reportPos++
	}
	if p.reportPos > p.report.Length {
		p.report = nil
		p.ad = nil
	}
}

func (p *Parser) handleADByte(b byte) {
	switch {
	case p.ad == nil:
		p.ad = &AdvertisementData{Length: int(b)}
		p.report.Advertisements = append(p.report.Advertisements, p.ad)
		p.adPos = 1
	case p.adPos == 1:
		p.ad.Type = b
		p.adPos++
	default:
		p.ad.Data = append(p.ad.Data, b)
		p.adPos++
	}
	if p.adPos > p.ad.Length {
		p.ad = nil
	}
}
