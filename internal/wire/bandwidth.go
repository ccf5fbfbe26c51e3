package wire

import "fmt"

// Bandwidth is the channel width a radiotap header is built for.
type Bandwidth int

const (
	Bw10 Bandwidth = iota
	Bw20
	Bw40
	Bw80
	Bw160
)

func ParseBandwidth(s string) (Bandwidth, error) {
	switch s {
	case "10":
		return Bw10, nil
	case "20":
		return Bw20, nil
	case "40":
		return Bw40, nil
	case "80":
		return Bw80, nil
	case "160":
		return Bw160, nil
	default:
		return 0, fmt.Errorf("invalid bandwidth %q", s)
	}
}

func (b Bandwidth) String() string {
	switch b {
	case Bw10:
		return "10"
	case Bw20:
		return "20"
	case Bw40:
		return "40"
	case Bw80:
		return "80"
	case Bw160:
		return "160"
	default:
		return "unknown"
	}
}
