package wire

import (
	"encoding/binary"
	"fmt"
)

// Dot11HeaderLen is the fixed size of the 802.11 data header this link
// uses. No other header bytes are derived from runtime state.
const Dot11HeaderLen = 24

// dot11Template is a minimal, unassociated 802.11 data frame header: frame
// control 0x08 0x01 (data, not protected, STA->DS via AP), duration 0,
// broadcast receiver, and the "WB" tag (0x57, 0x42) at bytes 10/11 that the
// receive-side BPF filter matches on.
var dot11Template = [Dot11HeaderLen]byte{
	0x08, 0x01, 0x00, 0x00, // frame control, duration
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, // receiver: broadcast
	0x57, 0x42, 0xaa, 0xbb, 0xcc, 0xdd, // channel_id slot #1 (bytes 12..16 overwritten)
	0x57, 0x42, 0xaa, 0xbb, 0xcc, 0xdd, // channel_id slot #2 (bytes 18..22 overwritten)
	0x00, 0x00, // (seq_num << 4) + fragment_num
}

// ChannelID packs the link tag embedded twice in the 802.11 address fields.
func ChannelID(linkID uint32, radioPort uint8) uint32 {
	return (linkID&0xFFFFFF)<<8 | uint32(radioPort)
}

// BuildDot11Header stamps channelID into both address-field slots
// big-endian and the sequence counter into the final two bytes
// little-endian, per spec.
func BuildDot11Header(frameType byte, channelID uint32, sequence uint16) []byte {
	h := dot11Template
	h[0] = frameType
	binary.BigEndian.PutUint32(h[12:16], channelID)
	binary.BigEndian.PutUint32(h[18:22], channelID)
	h[22] = byte(sequence)
	h[23] = byte(sequence >> 8)

	out := make([]byte, len(h))
	copy(out, h[:])
	return out
}

// BPFFilter returns the capture filter a receiver installs to match only
// frames belonging to this channel id: byte 0x5742 ("WB") at offset 0x0a,
// and channelID big-endian at offset 0x0c.
func BPFFilter(channelID uint32) string {
	return fmt.Sprintf("ether[0x0a:2]==0x5742 && ether[0x0c:4] == %#010x", channelID)
}
