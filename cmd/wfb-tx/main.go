// Command wfb-tx reads UDP datagrams, FEC-encodes them, and injects them
// as 802.11 frames on a monitor-mode interface.
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
	logger := wfblog.New(wfblog.LevelInfo, "(tx) ")

	opts := flags.NewTXOptions()
	if err := flags.ParseTX(opts); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}

	if opts.WifiSetup {
		if err := wifisetup.SetMonitorMode(opts.WifiDevice); err != nil {
			logger.Errorf("%v", err)
			os.Exit(1)
		}
		if opts.TXPower > 0 {
			if err := wifisetup.SetTXPower(opts.WifiDevice, opts.TXPower); err != nil {
				logger.Errorf("%v", err)
				os.Exit(1)
			}
		}
	}

	tx, err := device.NewTransmitter(opts, logger)
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
	defer tx.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := tx.Run(ctx); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}
