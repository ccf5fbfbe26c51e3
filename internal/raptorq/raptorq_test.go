package raptorq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// Invariant 3 (the FEC half): encoding a block and decoding it back from
// exactly its source symbols (no losses) reproduces the padded block
// byte-for-byte.
func TestEncodeDecodeRoundTripNoLoss(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		packetSize := uint16(rapid.IntRange(16, 256).Draw(t, "packetSize"))
		numSymbols := rapid.IntRange(1, 20).Draw(t, "numSymbols")
		blockSize := uint16(numSymbols) * packetSize

		oti, padding := WithDefaults(blockSize, packetSize)
		require.Equal(t, uint64(packetSize), padding, "exact multiple pads a full extra symbol")

		padded := rapid.SliceOfN(rapid.Byte(), int(oti.PaddedLength(padding)), int(oti.PaddedLength(padding))).Draw(t, "padded")

		enc, err := NewEncoder(0x2A, oti, padding, padded)
		require.NoError(t, err)

		dec, err := NewDecoder(oti, padding)
		require.NoError(t, err)

		var decoded []byte
		var complete bool
		for _, sym := range enc.SourceSymbols() {
			decoded, complete, err = dec.AddSymbol(sym)
			require.NoError(t, err)
			if complete {
				break
			}
		}

		require.True(t, complete)
		assert.Equal(t, padded, decoded)
	})
}

// Invariant 3 (the loss-tolerance half): decoding succeeds from repair
// symbols alone, standing in for every source symbol dropped (a block of
// numSymbols*packetSize bytes pads to numSymbols+1 source symbols).
func TestDecodeFromRepairSymbolsOnly(t *testing.T) {
	packetSize := uint16(64)
	numSymbols := uint32(4)
	blockSize := uint16(numSymbols) * packetSize
	oti, padding := WithDefaults(blockSize, packetSize)

	padded := make([]byte, oti.PaddedLength(padding))
	for i := range padded {
		padded[i] = byte(i)
	}

	enc, err := NewEncoder(0x01, oti, padding, padded)
	require.NoError(t, err)

	dec, err := NewDecoder(oti, padding)
	require.NoError(t, err)

	var decoded []byte
	var complete bool
	for _, sym := range enc.RepairSymbols(numSymbols + 2) {
		decoded, complete, err = dec.AddSymbol(sym)
		require.NoError(t, err)
		if complete {
			break
		}
	}

	require.True(t, complete)
	assert.Equal(t, padded, decoded)
}

func TestPeekSourceBlockNumber(t *testing.T) {
	packetSize := uint16(32)
	oti, padding := WithDefaults(packetSize, packetSize)
	padded := make([]byte, oti.PaddedLength(padding))

	enc, err := NewEncoder(0x7F, oti, padding, padded)
	require.NoError(t, err)

	sbn, ok := PeekSourceBlockNumber(enc.SourceSymbols()[0])
	require.True(t, ok)
	assert.Equal(t, byte(0x7F), sbn)

	_, ok = PeekSourceBlockNumber(nil)
	assert.False(t, ok)
}

func TestPaddingFormula(t *testing.T) {
	// Exact multiple of packet_size still pads a full extra symbol; no
	// special-casing of the zero-remainder case.
	oti, padding := WithDefaults(100, 10)
	assert.Equal(t, uint64(10), padding)
	assert.Equal(t, uint64(110), oti.PaddedLength(padding))

	oti, padding = WithDefaults(101, 10)
	assert.Equal(t, uint64(9), padding)
	assert.Equal(t, uint64(110), oti.PaddedLength(padding))
}
