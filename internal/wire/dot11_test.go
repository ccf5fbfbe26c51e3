package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// Invariant 8: for any link_id/radio_port, bytes 12..16 and 18..22 of the
// 802.11 header equal channel_id big-endian.
func TestChannelIDEmbedding(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		linkID := rapid.Uint32Range(0, 1<<24-1).Draw(t, "linkID")
		radioPort := rapid.Uint8().Draw(t, "radioPort")
		seq := rapid.Uint16().Draw(t, "seq")

		channelID := ChannelID(linkID, radioPort)
		header := BuildDot11Header(0x08, channelID, seq)

		assert.Len(t, header, Dot11HeaderLen)

		var got1, got2 uint32
		for i := 0; i < 4; i++ {
			got1 = got1<<8 | uint32(header[12+i])
			got2 = got2<<8 | uint32(header[18+i])
		}
		assert.Equal(t, channelID, got1, "first channel id slot")
		assert.Equal(t, channelID, got2, "second channel id slot")

		assert.Equal(t, byte(seq), header[22])
		assert.Equal(t, byte(seq>>8), header[23])
	})
}

func TestDot11HeaderConstants(t *testing.T) {
	header := BuildDot11Header(0x08, ChannelID(7669206, 0), 0)
	assert.Equal(t, byte(0x08), header[0])
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, header[4:10])
	assert.Equal(t, []byte{0x57, 0x42}, header[10:12])
}
