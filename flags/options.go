// Package flags parses the transmitter and receiver command lines.
package flags

import "github.com/curryp0mmes/wfb-go/internal/wire"

// TXOptions holds every transmitter CLI flag (spec §6).
type TXOptions struct {
	RadioPort      uint8
	LinkID         uint32
	UDPPort        uint16
	Bandwidth      wire.Bandwidth
	ShortGI        bool
	STBC           uint8
	LDPC           bool
	MCSIndex       uint8
	VHTMode        bool
	VHTNss         uint8
	WifiDevice     string
	FECDisabled    bool
	MinBlockSize   int
	WifiPacketSize uint16
	RedundantPkgs  uint32
	Magic          uint32
	LogIntervalMS  int
	WifiSetup      bool
	TXPower        uint8
}

// NewTXOptions returns a TXOptions pre-filled with the link's defaults.
func NewTXOptions() *TXOptions {
	return &TXOptions{
		Bandwidth:      wire.Bw20,
		MinBlockSize:   1024,
		WifiPacketSize: 1400,
		RedundantPkgs:  5,
		LogIntervalMS:  1000,
	}
}

// RXOptions holds every receiver CLI flag (spec §6).
type RXOptions struct {
	Magic         uint32
	ClientAddress string
	ClientPort    uint16
	RadioPort     uint8
	LinkID        uint32
	LogIntervalMS int
	WifiSetup     bool
	WifiDevices   []string
}

// NewRXOptions returns an RXOptions pre-filled with the link's defaults.
func NewRXOptions() *RXOptions {
	return &RXOptions{
		ClientAddress: "127.0.0.1",
		LogIntervalMS: 1000,
	}
}
