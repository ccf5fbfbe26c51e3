//go:build linux

// Package txhw owns the transmitter's raw AF_PACKET/SOCK_RAW endpoint: it
// verifies the target interface is in monitor mode, maintains the 802.11
// sequence counter, and injects radiotap+802.11+payload frames with a
// single scatter-gather sendmsg.
package txhw

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/curryp0mmes/wfb-go/internal/wire"
)

// arphrdIEEE80211Radiotap is the /sys/class/net/<dev>/type value reported
// by an interface in monitor mode.
const arphrdIEEE80211Radiotap = 803

// dataFrameType is the 802.11 frame-control byte used for injected data
// frames.
const dataFrameType = 0x08

var broadcastMAC = [6]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// Interface is a transmitter's bound raw socket on one monitor-mode
// interface. Not safe for concurrent use; owned exclusively by the
// injector worker (spec §5).
type Interface struct {
	fd        int
	ifindex   int
	radiotap  []byte
	channelID uint32
	sequence  uint16
}

// New opens and binds a raw socket on wifiDevice, rejecting interfaces
// not reporting ARPHRD_IEEE80211_RADIOTAP.
func New(wifiDevice string, radiotapHeader []byte, channelID uint32) (*Interface, error) {
	if err := verifyMonitorMode(wifiDevice); err != nil {
		return nil, err
	}

	ifi, err := net.InterfaceByName(wifiDevice)
	if err != nil {
		return nil, fmt.Errorf("txhw: lookup interface %s: %w", wifiDevice, err)
	}

	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(htons(unix.ETH_P_ALL)))
	if err != nil {
		return nil, fmt.Errorf("txhw: create raw socket: %w (requires CAP_NET_RAW)", err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_PACKET, unix.PACKET_QDISC_BYPASS, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("txhw: enable QDISC_BYPASS: %w", err)
	}

	addr := &unix.SockaddrLinklayer{
		Protocol: htons(unix.ETH_P_ALL),
		Ifindex:  ifi.Index,
	}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("txhw: bind to %s: %w", wifiDevice, err)
	}

	return &Interface{
		fd:        fd,
		ifindex:   ifi.Index,
		radiotap:  radiotapHeader,
		channelID: channelID,
	}, nil
}

// verifyMonitorMode rejects interfaces that do not report
// ARPHRD_IEEE80211_RADIOTAP via /sys/class/net/<dev>/type.
func verifyMonitorMode(wifiDevice string) error {
	raw, err := os.ReadFile("/sys/class/net/" + wifiDevice + "/type")
	if err != nil {
		return fmt.Errorf("txhw: read arphrd type for %s: %w", wifiDevice, err)
	}
	t, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return fmt.Errorf("txhw: parse arphrd type for %s: %w", wifiDevice, err)
	}
	if t != arphrdIEEE80211Radiotap {
		return fmt.Errorf("txhw: %s is not in monitor mode (arphrd type %d)", wifiDevice, t)
	}
	return nil
}

// SendPayload builds an 802.11 header using the current sequence counter,
// then writes radiotap+802.11+payload in a single scatter-gather
// sendmsg. ENOBUFS is non-fatal: it reports zero bytes sent.
func (i *Interface) SendPayload(payload []byte) (int, error) {
	dot11 := wire.BuildDot11Header(dataFrameType, i.channelID, i.sequence)
	i.sequence += 16 // wraps on uint16 overflow, matching the (seq<<4)+frag layout

	headerLen := len(i.radiotap) + len(dot11)

	var iovecs [3]unix.Iovec
	iovecs[0].Base = &i.radiotap[0]
	iovecs[0].SetLen(len(i.radiotap))
	iovecs[1].Base = &dot11[0]
	iovecs[1].SetLen(len(dot11))
	iovecs[2].Base = &payload[0]
	iovecs[2].SetLen(len(payload))

	dst := unix.RawSockaddrLinklayer{
		Family:   unix.AF_PACKET,
		Protocol: htons(unix.ETH_P_ALL),
		Ifindex:  int32(i.ifindex),
		Halen:    6,
	}
	copy(dst.Addr[:6], broadcastMAC[:])

	msghdr := unix.Msghdr{
		Name:    (*byte)(unsafe.Pointer(&dst)),
		Namelen: uint32(unix.SizeofSockaddrLinklayer),
		Iov:     &iovecs[0],
		Iovlen:  3,
	}

	n, _, errno := unix.Syscall(unix.SYS_SENDMSG, uintptr(i.fd), uintptr(unsafe.Pointer(&msghdr)), 0)
	if errno != 0 {
		if errno == unix.ENOBUFS {
			return 0, nil
		}
		return 0, fmt.Errorf("txhw: sendmsg: %w", errno)
	}

	sent := int(n) - headerLen
	if sent < 0 {
		sent = 0
	}
	return sent, nil
}

// Close releases the underlying socket.
func (i *Interface) Close() error {
	return unix.Close(i.fd)
}

func htons(v uint16) uint16 { return (v << 8) | (v >> 8) }
