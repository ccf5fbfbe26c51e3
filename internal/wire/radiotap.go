// Package wire builds the fixed-layout radiotap and IEEE 802.11 headers
// prepended to every injected frame and parses the small slice of radiotap
// a receiver needs (its total length) on the way back in.
package wire

import (
	"encoding/binary"
	"fmt"
)

// mcsKnownHT is the "known" bitmap for an HT radiotap MCS field: bandwidth,
// MCS index, guard interval, STBC and FEC type are all present.
const mcsKnownHT = 0x2 | 0x1 | 0x4 | 0x20 | 0x10

var radiotapHeaderHT = [13]byte{
	0x00, 0x00, // radiotap version
	0x0d, 0x00, // radiotap header length (13)
	0x00, 0x80, 0x08, 0x00, // present flags: TX_FLAGS + MCS
	0x08, 0x00, // tx flags: NOACK
	mcsKnownHT, 0x00, 0x00, // MCS known bitmap, flags, mcs_index
}

var radiotapHeaderVHT = [22]byte{
	0x00, 0x00, // radiotap version
	0x16, 0x00, // radiotap header length (22)
	0x00, 0x80, 0x20, 0x00, // present flags: TX_FLAGS + VHT
	0x08, 0x00, // tx flags: NOACK
	0x45, 0x00, // known VHT info: bandwidth, GI, STBC
	0x00, // flags: BIT(0)=STBC, BIT(2)=GI
	0x04, // bandwidth: 0=20M, 1=40M, 4=80M, 11=160M
	0x00, 0x00, 0x00, 0x00, // MCS_NSS[0:3]
	0x00, // coding: BCC/LDPC
	0x00, // group ID, unused
	0x00, 0x00, // partial AID, unused
}

// RadiotapParams are the PHY parameters a radiotap header is built from.
type RadiotapParams struct {
	Bandwidth Bandwidth
	ShortGI   bool
	STBC      uint8 // 0..3
	LDPC      bool
	MCSIndex  uint8
	VHTMode   bool
	VHTNss    uint8
}

// BuildRadiotapHeader returns the HT (13-byte) or VHT (22-byte) radiotap
// prefix for the given parameters, byte-exact per the reference layout.
// Invalid HT bandwidth/STBC combinations are rejected here, at construction
// time, rather than silently clamped.
func BuildRadiotapHeader(p RadiotapParams) ([]byte, error) {
	if p.STBC > 3 {
		return nil, fmt.Errorf("wire: invalid STBC value %d, must be 0..3", p.STBC)
	}
	if !p.VHTMode {
		return buildHT(p)
	}
	return buildVHT(p), nil
}

func buildHT(p RadiotapParams) ([]byte, error) {
	var flags uint8
	switch p.Bandwidth {
	case Bw10, Bw20:
		flags = 0x0
	case Bw40:
		flags = 0x1
	default:
		return nil, fmt.Errorf("wire: invalid HT bandwidth %s, HT only supports 10/20/40", p.Bandwidth)
	}

	if p.ShortGI {
		flags |= 0x4
	}
	flags |= p.STBC << 5
	if p.LDPC {
		flags |= 0x10
	}

	header := radiotapHeaderHT
	header[11] = flags
	header[12] = p.MCSIndex

	out := make([]byte, len(header))
	copy(out, header[:])
	return out, nil
}

func buildVHT(p RadiotapParams) []byte {
	header := radiotapHeaderVHT

	var flags uint8
	if p.ShortGI {
		flags |= 0x4
	}
	if p.STBC != 0 {
		flags |= 0x1
	}
	header[12] = flags

	switch p.Bandwidth {
	case Bw10, Bw20:
		header[13] = 0x0
	case Bw40:
		header[13] = 0x1
	case Bw80:
		header[13] = 0x4
	case Bw160:
		header[13] = 0xB
	}

	if p.LDPC {
		header[18] = 0x1
	}

	header[14] |= (p.MCSIndex << 4) & 0xF0
	header[14] |= p.VHTNss & 0xF

	out := make([]byte, len(header))
	copy(out, header[:])
	return out
}

// RadiotapLength reads the little-endian header-length field every
// radiotap header carries at offset 2..4, regardless of its variant.
func RadiotapLength(captured []byte) (int, bool) {
	if len(captured) < 4 {
		return 0, false
	}
	return int(binary.LittleEndian.Uint16(captured[2:4])), true
}
