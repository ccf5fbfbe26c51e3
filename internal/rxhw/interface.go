// Package rxhw owns one receiver-side pcap live capture: a monitor-mode,
// immediate, non-blocking handle with the link's BPF channel filter
// installed, and the radiotap+802.11+trailer stripping that turns a
// captured frame into a bare application payload.
package rxhw

import (
	"fmt"
	"time"

	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"github.com/curryp0mmes/wfb-go/internal/wire"
)

const (
	snapLen        = 4096
	captureTimeout = 10 * time.Millisecond
	// trailingArtifactLen is the final 4 bytes stripped from every
	// captured payload; origin unknown (spec §9 design notes), kept
	// unconditionally as the source material does.
	trailingArtifactLen = 4
)

// Interface is one receiver capture on one monitor-mode interface.
type Interface struct {
	Name   string
	handle *pcap.Handle
}

// New opens a monitor-mode, immediate-mode, non-blocking pcap capture on
// wifiDevice and installs the channel BPF filter.
func New(wifiDevice string, channelID uint32) (*Interface, error) {
	inactive, err := pcap.NewInactiveHandle(wifiDevice)
	if err != nil {
		return nil, fmt.Errorf("rxhw: new inactive handle for %s: %w", wifiDevice, err)
	}
	defer inactive.CleanUp()

	if err := inactive.SetSnapLen(snapLen); err != nil {
		return nil, fmt.Errorf("rxhw: set snaplen: %w", err)
	}
	if err := inactive.SetPromisc(true); err != nil {
		return nil, fmt.Errorf("rxhw: set promiscuous: %w", err)
	}
	if err := inactive.SetImmediateMode(true); err != nil {
		return nil, fmt.Errorf("rxhw: set immediate mode: %w", err)
	}
	if err := inactive.SetTimeout(captureTimeout); err != nil {
		return nil, fmt.Errorf("rxhw: set timeout: %w", err)
	}

	handle, err := inactive.Activate()
	if err != nil {
		return nil, fmt.Errorf("rxhw: activate %s: %w", wifiDevice, err)
	}

	if handle.LinkType() != layers.LinkTypeIEEE802_11Radio {
		handle.Close()
		return nil, fmt.Errorf("rxhw: %s is not in monitor mode (link type %s)", wifiDevice, handle.LinkType())
	}

	if err := handle.SetBPFFilter(wire.BPFFilter(channelID)); err != nil {
		handle.Close()
		return nil, fmt.Errorf("rxhw: set BPF filter on %s: %w", wifiDevice, err)
	}

	return &Interface{Name: wifiDevice, handle: handle}, nil
}

// Receive polls for one packet. A capture timeout or an empty/malformed
// frame yields (nil, nil); callers should treat that as "nothing this
// round" rather than an error (spec §4.5, §7).
func (i *Interface) Receive() ([]byte, error) {
	data, _, err := i.handle.ReadPacketData()
	if err != nil {
		if err == pcap.NextErrorTimeoutExpired {
			return nil, nil
		}
		return nil, fmt.Errorf("rxhw: read packet on %s: %w", i.Name, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	radiotapLen, ok := wire.RadiotapLength(data)
	if !ok {
		return nil, nil
	}

	start := radiotapLen + wire.Dot11HeaderLen
	if len(data)-start <= 0 {
		return nil, nil
	}
	payload := data[start:]

	if len(payload) <= trailingArtifactLen {
		return nil, nil
	}
	return payload[:len(payload)-trailingArtifactLen], nil
}

// Close releases the underlying pcap handle.
func (i *Interface) Close() {
	i.handle.Close()
}
