// Package raptorq adapts github.com/xssnick/raptorq's encoder/decoder API
// to the ObjectTransmissionInformation/SBN/ESI semantics spec §6 requires:
// a deterministic OTI derived from (block_size, packet_size), and symbols
// serialized as an 8-bit source-block-number followed by a 24-bit
// encoding-symbol-id, exactly as the reference (Rust) raptorq crate does.
//
// The underlying library's own wrapper attempt lives in the teacher repo
// at fec/raptorq.go; it treats symbol IDs as implicit slice positions,
// which cannot express repair symbols generated out of order or decoding
// from an arbitrary subset. This package tracks ESI explicitly instead.
package raptorq

import (
	"fmt"

	"github.com/xssnick/raptorq"
)

// symbolPrefixLen is the width of the SBN+ESI prefix on every serialized
// symbol: 1 byte source-block-number, 3 bytes encoding-symbol-id.
const symbolPrefixLen = 4

// OTI is this link's reduced ObjectTransmissionInformation: just enough to
// reconstruct the encoder/decoder configuration given block_size and
// packet_size, exactly as the FEC header carries them.
type OTI struct {
	TransferLength uint64 // block_size, pre-padding
	SymbolSize     uint16 // packet_size
}

// WithDefaults derives the OTI and padding for a given (block_size,
// packet_size) pair. Both sides of the link must call this with identical
// arguments to agree on framing.
func WithDefaults(blockSize uint16, packetSize uint16) (OTI, uint64) {
	oti := OTI{TransferLength: uint64(blockSize), SymbolSize: packetSize}
	padding := uint64(packetSize) - uint64(blockSize)%uint64(packetSize)
	return oti, padding
}

// PaddedLength is the symbol-size-aligned length RaptorQ actually encodes.
func (o OTI) PaddedLength(padding uint64) uint64 {
	return o.TransferLength + padding
}

// NumSymbols is the source symbol count K for a padded block.
func (o OTI) NumSymbols(padding uint64) uint32 {
	return uint32(o.PaddedLength(padding) / uint64(o.SymbolSize))
}

// Encoder wraps a single RaptorQ source block, tagged with its block_id
// (the SBN).
type Encoder struct {
	blockID    byte
	numSymbols uint32
	enc        raptorq.Encoder
}

// NewEncoder builds an encoder for one padded, symbol-size-aligned block.
// blockID becomes the SBN stamped on every symbol produced.
func NewEncoder(blockID byte, oti OTI, padding uint64, paddedBlock []byte) (*Encoder, error) {
	if uint64(len(paddedBlock)) != oti.PaddedLength(padding) {
		return nil, fmt.Errorf("raptorq: padded block length %d does not match OTI (%d)", len(paddedBlock), oti.PaddedLength(padding))
	}
	rq := raptorq.NewRaptorQ(oti.SymbolSize)
	enc, err := rq.CreateEncoder(paddedBlock)
	if err != nil {
		return nil, fmt.Errorf("raptorq: create encoder: %w", err)
	}
	return &Encoder{
		blockID:    blockID,
		numSymbols: oti.NumSymbols(padding),
		enc:        enc,
	}, nil
}

// SourceSymbols returns the K systematic source symbols, ESI 0..K-1.
func (e *Encoder) SourceSymbols() [][]byte {
	out := make([][]byte, e.numSymbols)
	for i := uint32(0); i < e.numSymbols; i++ {
		out[i] = serializeSymbol(e.blockID, i, e.enc.GenSymbol(i))
	}
	return out
}

// RepairSymbols returns count repair symbols, ESI starting right after the
// source symbols.
func (e *Encoder) RepairSymbols(count uint32) [][]byte {
	out := make([][]byte, count)
	for i := uint32(0); i < count; i++ {
		esi := e.numSymbols + i
		out[i] = serializeSymbol(e.blockID, esi, e.enc.GenSymbol(esi))
	}
	return out
}

// Decoder incrementally reconstructs a single RaptorQ source block from
// symbols fed to it in any order, possibly across interfaces.
type Decoder struct {
	dec raptorq.Decoder
}

// NewDecoder builds a decoder for a block identified by the OTI/padding
// carried in the FEC header of its first seen symbol.
func NewDecoder(oti OTI, padding uint64) (*Decoder, error) {
	rq := raptorq.NewRaptorQ(oti.SymbolSize)
	dec, err := rq.CreateDecoder(oti.PaddedLength(padding))
	if err != nil {
		return nil, fmt.Errorf("raptorq: create decoder: %w", err)
	}
	return &Decoder{dec: dec}, nil
}

// AddSymbol feeds one serialized (SBN+ESI-prefixed) symbol to the
// decoder. complete is true only once enough symbols have arrived to
// reconstruct the padded block, in which case decoded holds it.
func (d *Decoder) AddSymbol(symbol []byte) (decoded []byte, complete bool, err error) {
	_, esi, data, ok := deserializeSymbol(symbol)
	if !ok {
		return nil, false, fmt.Errorf("raptorq: symbol shorter than %d-byte SBN/ESI prefix", symbolPrefixLen)
	}

	canTry, err := d.dec.AddSymbol(esi, data)
	if err != nil {
		// Duplicate or otherwise invalid symbol: not fatal, just not useful.
		return nil, false, nil
	}
	if !canTry {
		return nil, false, nil
	}

	ok, result, err := d.dec.Decode()
	if err != nil {
		return nil, false, fmt.Errorf("raptorq: decode: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	return result, true, nil
}

// PeekSourceBlockNumber reads the SBN from the first byte of a serialized
// symbol without fully deserializing it, per spec §4.7 step 2.
func PeekSourceBlockNumber(symbol []byte) (byte, bool) {
	if len(symbol) < 1 {
		return 0, false
	}
	return symbol[0], true
}

func serializeSymbol(sbn byte, esi uint32, data []byte) []byte {
	out := make([]byte, symbolPrefixLen+len(data))
	out[0] = sbn
	out[1] = byte(esi >> 16)
	out[2] = byte(esi >> 8)
	out[3] = byte(esi)
	copy(out[symbolPrefixLen:], data)
	return out
}

func deserializeSymbol(b []byte) (sbn byte, esi uint32, data []byte, ok bool) {
	if len(b) < symbolPrefixLen {
		return 0, 0, nil, false
	}
	sbn = b[0]
	esi = uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	return sbn, esi, b[symbolPrefixLen:], true
}
