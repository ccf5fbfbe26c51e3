package flags

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/curryp0mmes/wfb-go/internal/wire"
)

// ParseTX parses os.Args into opts. bandwidth is accepted as a string
// ("10"/"20"/"40"/"80"/"160") and translated via wire.ParseBandwidth.
func ParseTX(opts *TXOptions) error {
	var bandwidth string

	fs := pflag.NewFlagSet("wfb-tx", pflag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n", os.Args[0])
		fs.PrintDefaults()
	}

	fs.Uint8Var(&opts.RadioPort, "radio-port", opts.RadioPort, "radio port identifying this stream on the link")
	fs.Uint32Var(&opts.LinkID, "link-id", opts.LinkID, "24-bit link identifier shared with the receiver")
	fs.Uint16Var(&opts.UDPPort, "udp-port", opts.UDPPort, "UDP port to bind for ingress datagrams")
	fs.StringVar(&bandwidth, "bandwidth", opts.Bandwidth.String(), "channel bandwidth: 10, 20, 40, 80 or 160")
	fs.BoolVar(&opts.ShortGI, "short-gi", opts.ShortGI, "use a short guard interval")
	fs.Uint8Var(&opts.STBC, "stbc", opts.STBC, "space-time block coding streams (0-3)")
	fs.BoolVar(&opts.LDPC, "ldpc", opts.LDPC, "use low-density parity-check coding")
	fs.Uint8Var(&opts.MCSIndex, "mcs-index", opts.MCSIndex, "modulation and coding scheme index")
	fs.BoolVar(&opts.VHTMode, "vht-mode", opts.VHTMode, "emit a VHT radiotap header instead of HT")
	fs.Uint8Var(&opts.VHTNss, "vht-nss", opts.VHTNss, "VHT number of spatial streams")
	fs.StringVar(&opts.WifiDevice, "wifi-device", opts.WifiDevice, "monitor-mode interface to inject on")
	fs.BoolVar(&opts.FECDisabled, "fec-disabled", opts.FECDisabled, "bypass FEC and forward datagrams raw")
	fs.IntVar(&opts.MinBlockSize, "min-block-size", opts.MinBlockSize, "minimum serialized block size before FEC encode")
	fs.Uint16Var(&opts.WifiPacketSize, "wifi-packet-size", opts.WifiPacketSize, "RaptorQ symbol size")
	fs.Uint32Var(&opts.RedundantPkgs, "redundant-pkgs", opts.RedundantPkgs, "repair symbols produced per block")
	fs.Uint32Var(&opts.Magic, "magic", opts.Magic, "32-bit link tag")
	fs.IntVar(&opts.LogIntervalMS, "log-interval", opts.LogIntervalMS, "counter log cadence in milliseconds")
	fs.BoolVar(&opts.WifiSetup, "wifi-setup", opts.WifiSetup, "shell out to iw/ip to configure the interface before starting")
	fs.Uint8Var(&opts.TXPower, "txpower", opts.TXPower, "tx power in 0.5 dBm steps (0-64), applied when --wifi-setup is set")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	bw, err := wire.ParseBandwidth(bandwidth)
	if err != nil {
		return fmt.Errorf("flags: --bandwidth: %w", err)
	}
	opts.Bandwidth = bw

	if opts.STBC > 3 {
		return fmt.Errorf("flags: --stbc must be in 0..3, got %d", opts.STBC)
	}
	if opts.TXPower > 64 {
		return fmt.Errorf("flags: --txpower must be in 0..64, got %d", opts.TXPower)
	}
	if opts.WifiDevice == "" {
		return fmt.Errorf("flags: --wifi-device is required")
	}
	return nil
}

// ParseRX parses os.Args into opts. Every positional argument is taken as
// a monitor-mode interface to capture on (spec §6: wifi-devices, ≥1).
func ParseRX(opts *RXOptions) error {
	fs := pflag.NewFlagSet("wfb-rx", pflag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <wifi-device>...\n", os.Args[0])
		fs.PrintDefaults()
	}

	fs.Uint32Var(&opts.Magic, "magic", opts.Magic, "32-bit link tag")
	fs.StringVar(&opts.ClientAddress, "client-address", opts.ClientAddress, "downstream UDP address to forward datagrams to")
	fs.Uint16Var(&opts.ClientPort, "client-port", opts.ClientPort, "downstream UDP port")
	fs.Uint8Var(&opts.RadioPort, "radio-port", opts.RadioPort, "radio port identifying this stream on the link")
	fs.Uint32Var(&opts.LinkID, "link-id", opts.LinkID, "24-bit link identifier shared with the transmitter")
	fs.IntVar(&opts.LogIntervalMS, "log-interval", opts.LogIntervalMS, "counter log cadence in milliseconds")
	fs.BoolVar(&opts.WifiSetup, "wifi-setup", opts.WifiSetup, "shell out to iw/ip to configure interfaces before starting")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	opts.WifiDevices = fs.Args()
	if len(opts.WifiDevices) == 0 {
		return fmt.Errorf("flags: at least one wifi-device argument is required")
	}
	if opts.ClientPort == 0 {
		return fmt.Errorf("flags: --client-port is required")
	}
	return nil
}
