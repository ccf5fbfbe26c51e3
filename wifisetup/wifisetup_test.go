package wifisetup

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExecCommand builds an exec.Cmd that runs the test binary itself in
// a helper-process mode, recording the arguments it was invoked with
// instead of actually shelling out.
func fakeExecCommand(t *testing.T) (cmd func(name string, args ...string) *exec.Cmd, calls *[][]string) {
	t.Helper()
	var recorded [][]string
	cmd = func(name string, args ...string) *exec.Cmd {
		recorded = append(recorded, append([]string{name}, args...))
		return exec.Command("true")
	}
	return cmd, &recorded
}

func TestSetMonitorModeCommandSequence(t *testing.T) {
	fake, calls := fakeExecCommand(t)
	old := execCommand
	execCommand = fake
	defer func() { execCommand = old }()

	err := SetMonitorMode("wlan0")
	require.NoError(t, err)

	require.Len(t, *calls, 5)
	assert.Equal(t, []string{"modprobe", "8812eu"}, (*calls)[0])
	assert.Equal(t, []string{"ip", "link", "set", "wlan0", "down"}, (*calls)[1])
	assert.Equal(t, []string{"iw", "dev", "wlan0", "set", "monitor", "otherbss"}, (*calls)[2])
	assert.Equal(t, []string{"ip", "link", "set", "wlan0", "up"}, (*calls)[3])
	assert.Equal(t, []string{"iw", "dev", "wlan0", "set", "channel", "149"}, (*calls)[4])
}

func TestSetTXPowerConvertsHalfDbmStepsToMbm(t *testing.T) {
	fake, calls := fakeExecCommand(t)
	old := execCommand
	execCommand = fake
	defer func() { execCommand = old }()

	err := SetTXPower("wlan0", 20)
	require.NoError(t, err)

	require.Len(t, *calls, 1)
	assert.Equal(t, []string{"iw", "dev", "wlan0", "set", "txpower", "fixed", "1000"}, (*calls)[0])
}
