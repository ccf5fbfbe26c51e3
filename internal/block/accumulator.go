// Package block implements the transmitter-side datagram aggregator: it
// buffers datagrams into a fixed-minimum-size block, embeds a boundary
// index trailer recoverable after FEC decode, and emits the RaptorQ
// source+repair symbols for the block once it closes.
package block

import (
	"encoding/binary"
	"fmt"

	"github.com/curryp0mmes/wfb-go/internal/fechdr"
	"github.com/curryp0mmes/wfb-go/internal/raptorq"
)

// Accumulator holds one in-progress block plus the parameters needed to
// close and FEC-encode it. Not safe for concurrent use; owned exclusively
// by the TX ingest loop.
type Accumulator struct {
	magic         uint32
	minBlockSize  int
	packetSize    uint16
	redundantPkgs uint32

	blockID byte
	indices []uint16
	buffer  []byte
}

// NewAccumulator builds an empty accumulator. magic is the link's
// user-configured tag (the FEC variant, !magic, is stamped on every
// emitted symbol).
func NewAccumulator(magic uint32, minBlockSize int, packetSize uint16, redundantPkgs uint32) *Accumulator {
	return &Accumulator{
		magic:         magic,
		minBlockSize:  minBlockSize,
		packetSize:    packetSize,
		redundantPkgs: redundantPkgs,
	}
}

// Append adds one datagram to the current block (spec §4.3 step 1). If
// the block is not yet large enough to close, it returns (nil, nil). Once
// the accumulated payload reaches min_block_size, it freezes the block,
// appends the boundary trailer, FEC-encodes it, and returns the ordered,
// FEC-header-prefixed symbol list — after which the accumulator resets to
// accept the next block under the next block_id.
func (a *Accumulator) Append(datagram []byte) ([][]byte, error) {
	a.indices = append(a.indices, uint16(len(a.buffer)))
	a.buffer = append(a.buffer, datagram...)

	if len(a.buffer) < a.minBlockSize {
		return nil, nil
	}

	trailer := a.buildTrailer()
	blockSize := len(a.buffer) + len(trailer)
	if blockSize > 0xFFFF {
		return nil, fmt.Errorf("block: serialized block size %d exceeds u16 range", blockSize)
	}

	oti, padding := raptorq.WithDefaults(uint16(blockSize), a.packetSize)

	padded := make([]byte, 0, blockSize+int(padding))
	padded = append(padded, a.buffer...)
	padded = append(padded, make([]byte, padding)...)
	padded = append(padded, trailer...)
	if uint64(len(padded)) != oti.PaddedLength(padding) {
		return nil, fmt.Errorf("block: padded length %d does not match OTI (%d)", len(padded), oti.PaddedLength(padding))
	}

	enc, err := raptorq.NewEncoder(a.blockID, oti, padding, padded)
	if err != nil {
		return nil, fmt.Errorf("block: encode block %d: %w", a.blockID, err)
	}

	symbols := enc.SourceSymbols()
	symbols = append(symbols, enc.RepairSymbols(a.redundantPkgs)...)

	header := fechdr.Header{
		Magic:      fechdr.FECMagic(a.magic),
		BlockSize:  uint16(blockSize),
		PacketSize: a.packetSize,
	}
	out := make([][]byte, len(symbols))
	for i, sym := range symbols {
		out[i] = append(header.Marshal(), sym...)
	}

	a.blockID++
	a.buffer = nil
	a.indices = nil

	return out, nil
}

// buildTrailer implements spec §4.3 step 3: each index (2 bytes LE), the
// current buffer length as the upper sentinel (2 bytes LE), then a single
// count byte equal to len(indices)+1.
func (a *Accumulator) buildTrailer() []byte {
	n := len(a.indices)
	trailer := make([]byte, n*2+2+1)
	for i, idx := range a.indices {
		binary.LittleEndian.PutUint16(trailer[i*2:i*2+2], idx)
	}
	binary.LittleEndian.PutUint16(trailer[n*2:n*2+2], uint16(len(a.buffer)))
	trailer[n*2+2] = byte(n + 1)
	return trailer
}
