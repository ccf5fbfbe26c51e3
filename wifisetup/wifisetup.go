// Package wifisetup shells out to modprobe/ip/iw to put a wireless
// interface into monitor mode and set its channel and tx power. Out of
// scope for correctness testing (spec §1); exercised here only at the
// command-construction level via a mockable exec.Command.
package wifisetup

import (
	"fmt"
	"os/exec"
)

// execCommand is swapped out in tests so no real subprocess runs.
var execCommand = exec.Command

// channel is the fixed operating channel the original tooling targets;
// changing it is future work (no CLI flag currently exposes it).
const channel = "149"

// SetMonitorMode brings interfaceName down, switches it to monitor mode
// accepting frames from any BSS, and brings it back up on the fixed
// channel. modprobe failures are ignored: the driver may already be
// loaded.
func SetMonitorMode(interfaceName string) error {
	_ = execCommand("modprobe", "8812eu").Run()

	if err := execCommand("ip", "link", "set", interfaceName, "down").Run(); err != nil {
		return fmt.Errorf("wifisetup: bring %s down: %w", interfaceName, err)
	}
	if err := execCommand("iw", "dev", interfaceName, "set", "monitor", "otherbss").Run(); err != nil {
		return fmt.Errorf("wifisetup: set %s to monitor mode: %w", interfaceName, err)
	}
	if err := execCommand("ip", "link", "set", interfaceName, "up").Run(); err != nil {
		return fmt.Errorf("wifisetup: bring %s up: %w", interfaceName, err)
	}
	if err := execCommand("iw", "dev", interfaceName, "set", "channel", channel).Run(); err != nil {
		return fmt.Errorf("wifisetup: set %s channel %s: %w", interfaceName, channel, err)
	}
	return nil
}

// SetTXPower sets interfaceName's fixed tx power. txPower is in 0.5 dBm
// steps (spec §6: 0..64); iw takes mBm (1/100 dBm), so it is sent as
// txPower × 50.
func SetTXPower(interfaceName string, txPower uint8) error {
	mBm := fmt.Sprintf("%d", uint16(txPower)*50)
	if err := execCommand("iw", "dev", interfaceName, "set", "txpower", "fixed", mBm).Run(); err != nil {
		return fmt.Errorf("wifisetup: set %s txpower: %w", interfaceName, err)
	}
	return nil
}
