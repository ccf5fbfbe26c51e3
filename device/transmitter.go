// Package device wires the wire/block/raptorq/txhw/rxhw/rxfec packages
// into the TX and RX worker arrangements described in spec §4.4, §4.9 and
// §5: one UDP-and-aggregator-owning goroutine, one socket-owning
// goroutine, and one logger goroutine per side, talking only through
// unbounded SPSC channels.
package device

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/curryp0mmes/wfb-go/flags"
	"github.com/curryp0mmes/wfb-go/internal/block"
	"github.com/curryp0mmes/wfb-go/internal/txhw"
	"github.com/curryp0mmes/wfb-go/internal/wire"
	"github.com/curryp0mmes/wfb-go/wfblog"
)

// maxDatagramRead bounds a single UDP read; larger than any realistic
// MaxDatagram (spec §3: datagram length ≤ block_size − 3).
const maxDatagramRead = 65536

// datagramBufferPool reuses the fixed-size read buffer across ingest
// iterations: in FEC mode the bytes are copied into the accumulator's own
// buffer before Append returns, so the read buffer can go straight back
// to the pool instead of every datagram forcing a fresh allocation.
var datagramBufferPool = &sync.Pool{
	New: func() interface{} { return new([maxDatagramRead]byte) },
}

func getDatagramBuffer() *[maxDatagramRead]byte {
	return datagramBufferPool.Get().(*[maxDatagramRead]byte)
}

func putDatagramBuffer(buf *[maxDatagramRead]byte) {
	datagramBufferPool.Put(buf)
}

// txItem is one unit of injector work: the symbol payloads for either a
// closed FEC block or (FEC disabled) a single bypass datagram, plus the
// ingest-side counters accumulated since the previous item.
type txItem struct {
	symbols         [][]byte
	receivedPackets uint64
	receivedBytes   uint64
}

// txSample is a cumulative snapshot of all four TX counters, published by
// the injector (the only place both ingest and send-side totals meet)
// after every item it processes.
type txSample struct {
	receivedPackets uint64
	receivedBytes   uint64
	sentPackets     uint64
	sentBytes       uint64
}

// Transmitter is the TX orchestrator (spec §4.4): it owns the ingress UDP
// socket and the aggregator, the injector owns the raw socket, and a
// logger reports counters on a timer. The three workers share no state
// beyond the unbounded channels between them (spec §5).
type Transmitter struct {
	udpConn *net.UDPConn
	iface   *txhw.Interface
	acc     *block.Accumulator

	fecDisabled bool
	logInterval time.Duration
	logger      wfblog.Logger

	items   *unboundedChan[txItem]
	samples *unboundedChan[txSample]
}

// NewTransmitter builds radiotap/channel framing from opts, binds the
// ingress UDP socket, and opens the raw injection socket.
func NewTransmitter(opts *flags.TXOptions, logger wfblog.Logger) (*Transmitter, error) {
	radiotap, err := wire.BuildRadiotapHeader(wire.RadiotapParams{
		Bandwidth: opts.Bandwidth,
		ShortGI:   opts.ShortGI,
		STBC:      opts.STBC,
		LDPC:      opts.LDPC,
		MCSIndex:  opts.MCSIndex,
		VHTMode:   opts.VHTMode,
		VHTNss:    opts.VHTNss,
	})
	if err != nil {
		return nil, fmt.Errorf("device: build radiotap header: %w", err)
	}

	channelID := wire.ChannelID(opts.LinkID, opts.RadioPort)

	iface, err := txhw.New(opts.WifiDevice, radiotap, channelID)
	if err != nil {
		return nil, fmt.Errorf("device: %w", err)
	}

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: int(opts.UDPPort)})
	if err != nil {
		iface.Close()
		return nil, fmt.Errorf("device: bind udp :%d: %w", opts.UDPPort, err)
	}

	var acc *block.Accumulator
	if !opts.FECDisabled {
		acc = block.NewAccumulator(opts.Magic, opts.MinBlockSize, opts.WifiPacketSize, opts.RedundantPkgs)
	}

	return &Transmitter{
		udpConn:     conn,
		iface:       iface,
		acc:         acc,
		fecDisabled: opts.FECDisabled,
		logInterval: time.Duration(opts.LogIntervalMS) * time.Millisecond,
		logger:      logger,
		items:       newUnboundedChan[txItem](),
		samples:     newUnboundedChan[txSample](),
	}, nil
}

// Run starts the ingest, injector and logger workers and blocks until ctx
// is cancelled or the ingest loop hits a fatal socket error. There is no
// graceful drain (spec §5): in-flight datagrams are lost on return.
func (t *Transmitter) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go t.loggerLoop(ctx)
	go t.injectorLoop()
	go func() { errCh <- t.ingestLoop(ctx) }()

	select {
	case <-ctx.Done():
		t.udpConn.Close()
		return nil
	case err := <-errCh:
		return err
	}
}

// Close releases the underlying sockets. Safe to call after Run returns.
func (t *Transmitter) Close() {
	t.udpConn.Close()
}

func (t *Transmitter) ingestLoop(ctx context.Context) error {
	defer t.items.Close()

	var recvPkts, recvBytes uint64

	for {
		if ctx.Err() != nil {
			return nil
		}

		buf := getDatagramBuffer()

		n, err := t.udpConn.Read(buf[:])
		if err != nil {
			putDatagramBuffer(buf)
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("device: udp receive: %w", err)
		}

		recvPkts++
		recvBytes += uint64(n)

		var symbols [][]byte
		if t.fecDisabled {
			// Must outlive this call (queued to the injector), so it
			// gets its own copy; the read buffer is freed either way.
			datagram := append([]byte(nil), buf[:n]...)
			putDatagramBuffer(buf)
			symbols = [][]byte{datagram}
		} else {
			out, err := t.acc.Append(buf[:n])
			putDatagramBuffer(buf)
			if err != nil {
				t.logger.Errorf("aggregate: %v", err)
				continue
			}
			if out == nil {
				continue
			}
			symbols = out
		}

		t.items.Send(txItem{symbols: symbols, receivedPackets: recvPkts, receivedBytes: recvBytes})
		recvPkts, recvBytes = 0, 0
	}
}

func (t *Transmitter) injectorLoop() {
	defer t.iface.Close()
	defer t.samples.Close()

	var totalRecvPkts, totalRecvBytes, totalSentPkts, totalSentBytes uint64

	for item := range t.items.Out() {
		totalRecvPkts += item.receivedPackets
		totalRecvBytes += item.receivedBytes

		for _, sym := range item.symbols {
			n, err := t.iface.SendPayload(sym)
			if err != nil {
				t.logger.Errorf("inject: %v", err)
				continue
			}
			if n == 0 {
				continue // ENOBUFS: dropped, not counted as sent
			}
			totalSentPkts++
			totalSentBytes += uint64(n)
		}

		t.samples.Send(txSample{
			receivedPackets: totalRecvPkts,
			receivedBytes:   totalRecvBytes,
			sentPackets:     totalSentPkts,
			sentBytes:       totalSentBytes,
		})
	}
}

func (t *Transmitter) loggerLoop(ctx context.Context) {
	var latest, prev txSample
	ticker := time.NewTicker(t.logInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-t.samples.Out():
			if !ok {
				return
			}
			latest = s
		case <-ticker.C:
			// Samples are cumulative; the logger reports one tick's worth.
			t.logger.LogTXSample(t.logInterval,
				latest.receivedPackets-prev.receivedPackets, latest.receivedBytes-prev.receivedBytes,
				latest.sentPackets-prev.sentPackets, latest.sentBytes-prev.sentBytes)
			prev = latest
		}
	}
}
