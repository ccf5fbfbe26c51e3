// Package rxfec is the receiver's per-block RaptorQ decoder: one decoder
// slot per in-flight block_id, a bounded "already decoded" set to
// suppress duplicate forwards from redundant interfaces, and the
// sliding-window cleanup that bounds memory across the u8 block_id wrap.
package rxfec

import (
	"encoding/binary"
	"fmt"

	"github.com/curryp0mmes/wfb-go/internal/fechdr"
	"github.com/curryp0mmes/wfb-go/internal/raptorq"
)

// window is the half-width of the sliding acceptance window around the
// most recently seen block_id (spec §4.8).
const window = 64

// Decoder is the RX FEC decoder state, owned exclusively by the RX
// orchestrator loop. Not safe for concurrent use.
type Decoder struct {
	decoders map[byte]*raptorq.Decoder
	decoded  map[byte]struct{}
	current  byte
	haveSeen bool
}

// New builds an empty RX FEC decoder.
func New() *Decoder {
	return &Decoder{
		decoders: make(map[byte]*raptorq.Decoder),
		decoded:  make(map[byte]struct{}),
	}
}

// Process implements spec §4.7 for one already magic-demuxed FEC symbol:
// header carries the block_size/packet_size this symbol's block was
// encoded with, and symbol is the raw RaptorQ serialized symbol (SBN+ESI
// prefix included). It returns the ordered datagrams the instant a block
// finishes decoding, or nil if the block is not yet complete, already
// decoded, or its decoded trailer is corrupt. A symbol too short to carry
// an SBN, or one the RaptorQ decoder rejects, returns an error.
func (d *Decoder) Process(header fechdr.Header, symbol []byte) ([][]byte, error) {
	blockID, ok := raptorq.PeekSourceBlockNumber(symbol)
	if !ok {
		return nil, fmt.Errorf("rxfec: symbol too short to carry an SBN")
	}

	d.current = blockID
	d.haveSeen = true

	if _, done := d.decoded[blockID]; done {
		return nil, nil
	}

	dec, ok := d.decoders[blockID]
	if !ok {
		oti, padding := raptorq.WithDefaults(header.BlockSize, header.PacketSize)
		var err error
		dec, err = raptorq.NewDecoder(oti, padding)
		if err != nil {
			return nil, fmt.Errorf("rxfec: new decoder for block %d: %w", blockID, err)
		}
		d.decoders[blockID] = dec
	}

	blockBytes, complete, err := dec.AddSymbol(symbol)
	if err != nil {
		return nil, fmt.Errorf("rxfec: decode block %d: %w", blockID, err)
	}

	if !complete {
		d.cleanup()
		return nil, nil
	}

	datagrams, ok := splitTrailer(blockBytes)
	delete(d.decoders, blockID)
	d.decoded[blockID] = struct{}{}
	d.cleanup()
	if !ok {
		// Corrupt trailer: block is still marked decoded so repeat
		// symbols are suppressed, but nothing is forwarded.
		return nil, nil
	}
	return datagrams, nil
}

// DecodedSetSize reports the current size of the "already decoded" set,
// for tests asserting the bounded-memory invariant.
func (d *Decoder) DecodedSetSize() int {
	return len(d.decoded)
}

// splitTrailer implements spec §4.7 step 6: pop the count byte, read the
// index trailer, slice the original datagrams back out.
func splitTrailer(blockBytes []byte) (datagrams [][]byte, ok bool) {
	if len(blockBytes) < 1 {
		return nil, false
	}
	n := int(blockBytes[len(blockBytes)-1])
	if n == 0 {
		return nil, false
	}
	offsetsStart := len(blockBytes) - 1 - n*2
	if offsetsStart < 0 {
		return nil, false
	}

	offsets := make([]uint16, n)
	for i := 0; i < n; i++ {
		offsets[i] = binary.LittleEndian.Uint16(blockBytes[offsetsStart+i*2:])
	}

	out := make([][]byte, n-1)
	for i := 0; i < n-1; i++ {
		if offsets[i] > offsets[i+1] || int(offsets[i+1]) > offsetsStart {
			return nil, false
		}
		out[i] = blockBytes[offsets[i]:offsets[i+1]]
	}
	return out, true
}

// cleanup prunes decoders and the decoded set to ids live within the
// ±64 sliding window around the most recently arrived block_id (spec
// §4.8).
func (d *Decoder) cleanup() {
	if !d.haveSeen {
		return
	}
	lo := d.current - window
	hi := d.current + window

	for id := range d.decoders {
		if !isLive(lo, hi, id) {
			delete(d.decoders, id)
		}
	}
	for id := range d.decoded {
		if !isLive(lo, hi, id) {
			delete(d.decoded, id)
		}
	}
}

// isLive implements the modular open-interval membership test of spec
// §4.8: k is live iff it lies strictly between lo and hi, where lo/hi
// themselves wrap mod 256.
func isLive(lo, hi, k byte) bool {
	if hi > lo {
		return k > lo && k < hi
	}
	return k > lo || k < hi
}
