// Command wfb-rx captures 802.11 frames on one or more monitor-mode
// interfaces, FEC-decodes them, and forwards the reconstructed datagrams
// on UDP to a downstream consumer.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/curryp0mmes/wfb-go/device"
	"github.com/curryp0mmes/wfb-go/flags"
	"github.com/curryp0mmes/wfb-go/wfblog"
	"github.com/curryp0mmes/wfb-go/wifisetup"
)

func main() {
	logger := wfblog.New(wfblog.LevelInfo, "(rx) ")

	opts := flags.NewRXOptions()
	if err := flags.ParseRX(opts); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}

	if opts.WifiSetup {
		for _, dev := range opts.WifiDevices {
			if err := wifisetup.SetMonitorMode(dev); err != nil {
				logger.Errorf("%v", err)
				os.Exit(1)
			}
		}
	}

	rx, err := device.NewReceiver(opts, logger)
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
	defer rx.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rx.Run(ctx); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}
