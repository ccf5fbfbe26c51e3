package device

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/curryp0mmes/wfb-go/flags"
	"github.com/curryp0mmes/wfb-go/internal/fechdr"
	"github.com/curryp0mmes/wfb-go/internal/rxfec"
	"github.com/curryp0mmes/wfb-go/internal/rxhw"
	"github.com/curryp0mmes/wfb-go/internal/wire"
	"github.com/curryp0mmes/wfb-go/wfblog"
)

// rxSample is a cumulative snapshot of both receiver counter streams
// (spec §4.9, original `rx.rs`: received_bytes_s/sent_bytes_s): frames
// taken off the radio versus datagrams actually forwarded downstream.
type rxSample struct {
	receivedPackets  uint64
	receivedBytes    uint64
	forwardedPackets uint64
	forwardedBytes   uint64
}

// Receiver is the RX orchestrator (spec §4.9): a single capture/demux/
// decode/forward loop round-robins the configured interfaces (pcap
// handles are not thread-safe and captures are non-blocking, so
// round-robin polling is adequate — spec §5), plus a logger worker fed
// through a sample channel.
type Receiver struct {
	udpConn    *net.UDPConn
	interfaces []*rxhw.Interface
	magic      uint32
	dec        *rxfec.Decoder

	logInterval time.Duration
	logger      wfblog.Logger

	samples *unboundedChan[rxSample]
}

// NewReceiver opens one pcap capture per configured wifi device and
// connects the downstream UDP egress socket.
func NewReceiver(opts *flags.RXOptions, logger wfblog.Logger) (*Receiver, error) {
	channelID := wire.ChannelID(opts.LinkID, opts.RadioPort)

	interfaces := make([]*rxhw.Interface, 0, len(opts.WifiDevices))
	for _, dev := range opts.WifiDevices {
		iface, err := rxhw.New(dev, channelID)
		if err != nil {
			for _, opened := range interfaces {
				opened.Close()
			}
			return nil, fmt.Errorf("device: %w", err)
		}
		interfaces = append(interfaces, iface)
	}

	conn, err := net.DialUDP("udp", nil, &net.UDPAddr{
		IP:   net.ParseIP(opts.ClientAddress),
		Port: int(opts.ClientPort),
	})
	if err != nil {
		for _, iface := range interfaces {
			iface.Close()
		}
		return nil, fmt.Errorf("device: dial downstream udp %s:%d: %w", opts.ClientAddress, opts.ClientPort, err)
	}

	return &Receiver{
		udpConn:     conn,
		interfaces:  interfaces,
		magic:       opts.Magic,
		dec:         rxfec.New(),
		logInterval: time.Duration(opts.LogIntervalMS) * time.Millisecond,
		logger:      logger,
		samples:     newUnboundedChan[rxSample](),
	}, nil
}

// Run starts the logger worker and blocks the caller in the main capture
// loop until ctx is cancelled.
func (r *Receiver) Run(ctx context.Context) error {
	go r.loggerLoop(ctx)
	return r.mainLoop(ctx)
}

// Close releases every capture handle and the UDP socket.
func (r *Receiver) Close() {
	for _, iface := range r.interfaces {
		iface.Close()
	}
	r.udpConn.Close()
}

func (r *Receiver) mainLoop(ctx context.Context) error {
	defer r.samples.Close()

	var totalRecvPkts, totalRecvBytes, totalFwdPkts, totalFwdBytes uint64
	idx := 0

	for {
		if ctx.Err() != nil {
			return nil
		}

		iface := r.interfaces[idx]
		idx = (idx + 1) % len(r.interfaces)

		payload, err := iface.Receive()
		if err != nil {
			r.logger.Errorf("capture on %s: %v", iface.Name, err)
			continue
		}
		if payload == nil {
			continue
		}

		totalRecvPkts++
		totalRecvBytes += uint64(len(payload))

		kind, header, rest := fechdr.Classify(payload, r.magic)

		var datagrams [][]byte
		switch kind {
		case fechdr.Bypass:
			datagrams = [][]byte{rest}
		case fechdr.FEC:
			got, err := r.dec.Process(header, rest)
			if err != nil {
				r.logger.Errorf("fec decode: %v", err)
				continue
			}
			datagrams = got
		default:
			// unrecognized magic: silently dropped, but still counted
			// as received from the radio above.
			r.samples.Send(rxSample{
				receivedPackets: totalRecvPkts, receivedBytes: totalRecvBytes,
				forwardedPackets: totalFwdPkts, forwardedBytes: totalFwdBytes,
			})
			continue
		}

		for _, dg := range datagrams {
			n, err := r.udpConn.Write(dg)
			if err != nil {
				r.logger.Errorf("udp forward: %v", err)
				continue
			}
			totalFwdPkts++
			totalFwdBytes += uint64(n)
		}

		r.samples.Send(rxSample{
			receivedPackets: totalRecvPkts, receivedBytes: totalRecvBytes,
			forwardedPackets: totalFwdPkts, forwardedBytes: totalFwdBytes,
		})
	}
}

func (r *Receiver) loggerLoop(ctx context.Context) {
	var latest, prev rxSample
	ticker := time.NewTicker(r.logInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-r.samples.Out():
			if !ok {
				return
			}
			latest = s
		case <-ticker.C:
			// Samples are cumulative; the logger reports one tick's worth.
			r.logger.LogRXSample(r.logInterval,
				latest.receivedPackets-prev.receivedPackets, latest.receivedBytes-prev.receivedBytes,
				latest.forwardedPackets-prev.forwardedPackets, latest.forwardedBytes-prev.forwardedBytes)
			prev = latest
		}
	}
}
