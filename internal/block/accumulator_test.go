package block

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/curryp0mmes/wfb-go/internal/fechdr"
	"github.com/curryp0mmes/wfb-go/internal/raptorq"
)

// decodeSymbols mirrors spec §4.7 steps 4-6 at the level this package can
// exercise without the receiver's multi-block bookkeeping: feed FEC-header
// prefixed symbols for a single block to a fresh decoder, then recover the
// datagrams from the trailer once decode succeeds.
func decodeSymbols(t require.TestingT, symbols [][]byte) [][]byte {
	require.NotEmpty(t, symbols)

	h, ok := fechdr.Unmarshal(symbols[0])
	require.True(t, ok)

	oti, padding := raptorq.WithDefaults(h.BlockSize, h.PacketSize)
	dec, err := raptorq.NewDecoder(oti, padding)
	require.NoError(t, err)

	var blockBytes []byte
	var complete bool
	for _, sym := range symbols {
		gotH, ok := fechdr.Unmarshal(sym)
		require.True(t, ok)
		require.Equal(t, h, gotH)

		blockBytes, complete, err = dec.AddSymbol(sym[fechdr.HeaderSize:])
		require.NoError(t, err)
		if complete {
			break
		}
	}
	require.True(t, complete, "decode did not complete from %d symbols", len(symbols))

	n := int(blockBytes[len(blockBytes)-1])
	require.NotZero(t, n)
	offsetsStart := len(blockBytes) - 1 - n*2
	require.GreaterOrEqual(t, offsetsStart, 0)

	offsets := make([]uint16, n)
	for i := 0; i < n; i++ {
		offsets[i] = binary.LittleEndian.Uint16(blockBytes[offsetsStart+i*2:])
	}

	datagrams := make([][]byte, n-1)
	for i := 0; i < n-1; i++ {
		datagrams[i] = blockBytes[offsets[i]:offsets[i+1]]
	}
	return datagrams
}

// S2: magic=0x57627273, min_block_size=16, wifi_packet_size=800,
// redundant_pkgs=2. Datagrams A, BB, C*20 close exactly on the third.
func TestScenarioS2SingleBlockFEC(t *testing.T) {
	acc := NewAccumulator(0x57627273, 16, 800, 2)

	syms, err := acc.Append([]byte("A"))
	require.NoError(t, err)
	assert.Nil(t, syms)

	syms, err = acc.Append([]byte("BB"))
	require.NoError(t, err)
	assert.Nil(t, syms)

	c20 := make([]byte, 20)
	for i := range c20 {
		c20[i] = 'C'
	}
	syms, err = acc.Append(c20)
	require.NoError(t, err)
	require.NotEmpty(t, syms)

	got := decodeSymbols(t, syms)
	require.Len(t, got, 3)
	assert.Equal(t, []byte("A"), got[0])
	assert.Equal(t, []byte("BB"), got[1])
	assert.Equal(t, c20, got[2])
}

// S3: repair-only decode succeeds and reproduces the same ordered list.
func TestScenarioS3RepairOnlyDecode(t *testing.T) {
	acc := NewAccumulator(0x57627273, 16, 800, 4)

	var syms [][]byte
	for _, d := range [][]byte{[]byte("A"), []byte("BB"), []byte("CCCCCCCCCCCCCCCCCCCC")} {
		var err error
		syms, err = acc.Append(d)
		require.NoError(t, err)
	}
	require.NotEmpty(t, syms)

	numSource := len(syms) - 4 // the redundant_pkgs trailing entries are repair symbols
	repairOnly := syms[numSource:]
	require.NotEmpty(t, repairOnly)

	got := decodeSymbols(t, repairOnly)
	require.Len(t, got, 3)
	assert.Equal(t, []byte("A"), got[0])
	assert.Equal(t, []byte("BB"), got[1])
}

// Invariants 3 & 4: arbitrary datagram lists round-trip through the
// aggregator and decoder, in order, with lengths preserved, when every
// emitted symbol is delivered. Decoding with symbols lost is covered by
// TestScenarioS3RepairOnlyDecode.
func TestBlockReconstructionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		redundantPkgs := uint32(rapid.IntRange(1, 6).Draw(t, "redundantPkgs"))
		n := rapid.IntRange(1, 6).Draw(t, "numDatagrams")

		datagrams := make([][]byte, n)
		for i := range datagrams {
			datagrams[i] = rapid.SliceOfN(rapid.Byte(), 1, 12).Draw(t, "datagram")
		}

		acc := NewAccumulator(0x57627273, 16, 160, redundantPkgs)
		var syms [][]byte
		for _, d := range datagrams {
			out, err := acc.Append(d)
			require.NoError(t, err)
			if out != nil {
				syms = out
			}
		}
		if syms == nil {
			// Block never reached min_block_size; nothing to assert.
			return
		}

		got := decodeSymbols(t, syms)
		require.Len(t, got, len(datagrams))
		for i := range datagrams {
			assert.Equal(t, datagrams[i], got[i])
		}
	})
}
