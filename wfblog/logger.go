// Package wfblog is the link's leveled logger. Besides the generic
// Debug/Info/Error surface, it owns the one piece of domain formatting
// every orchestrator needs: turning a tick's worth of cumulative
// packet/byte counters into the link's "recv/sent Mbit/s" log line, so
// that format lives in one place instead of being built ad hoc at each
// call site.
package wfblog

import (
	"io"
	"log"
	"os"
	"time"
)

const (
	LevelSilent = iota
	LevelError
	LevelInfo
	LevelDebug
)

var _ Logger = (*basicLogger)(nil)

// Logger is the leveled logging surface every component depends on.
type Logger interface {
	Debug(v ...interface{})
	Debugf(f string, v ...interface{})
	Info(v ...interface{})
	Infof(f string, v ...interface{})
	Error(v ...interface{})
	Errorf(f string, v ...interface{})

	// LogTXSample reports one tick of transmitter counters: datagrams
	// taken in off the ingress UDP socket versus symbols actually placed
	// on the air over interval.
	LogTXSample(interval time.Duration, recvPackets, recvBytes, sentPackets, sentBytes uint64)
	// LogRXSample reports one tick of receiver counters: frames taken off
	// the radio versus datagrams successfully forwarded downstream over
	// interval.
	LogRXSample(interval time.Duration, recvPackets, recvBytes, fwdPackets, fwdBytes uint64)
}

type basicLogger struct {
	debug *log.Logger
	info  *log.Logger
	err   *log.Logger
}

// New builds a Logger writing to stdout, with debug/info output gated by
// level and prepend stamped on every line (e.g. "(tx) ").
func New(level int, prepend string) *basicLogger {
	output := os.Stdout

	logErr, logInfo, logDebug := func() (io.Writer, io.Writer, io.Writer) {
		if level >= LevelDebug {
			return output, output, output
		}
		if level >= LevelInfo {
			return output, output, io.Discard
		}
		if level >= LevelError {
			return output, io.Discard, io.Discard
		}
		return io.Discard, io.Discard, io.Discard
	}()

	return &basicLogger{
		debug: log.New(logDebug, "DEBUG: "+prepend, log.Ldate|log.Ltime),
		info:  log.New(logInfo, "INFO: "+prepend, log.Ldate|log.Ltime),
		err:   log.New(logErr, "ERROR: "+prepend, log.Ldate|log.Ltime),
	}
}

func (l *basicLogger) Debug(v ...interface{})            { l.debug.Println(v...) }
func (l *basicLogger) Debugf(f string, v ...interface{}) { l.debug.Printf(f, v...) }
func (l *basicLogger) Info(v ...interface{})             { l.info.Println(v...) }
func (l *basicLogger) Infof(f string, v ...interface{})  { l.info.Printf(f, v...) }
func (l *basicLogger) Error(v ...interface{})            { l.err.Println(v...) }
func (l *basicLogger) Errorf(f string, v ...interface{}) { l.err.Printf(f, v...) }

func (l *basicLogger) LogTXSample(interval time.Duration, recvPackets, recvBytes, sentPackets, sentBytes uint64) {
	l.info.Printf("recv %d pkts, %.2f Mbit/s  sent %d pkts, %.2f Mbit/s",
		recvPackets, mbps(recvBytes, interval), sentPackets, mbps(sentBytes, interval))
}

func (l *basicLogger) LogRXSample(interval time.Duration, recvPackets, recvBytes, fwdPackets, fwdBytes uint64) {
	l.info.Printf("recv %d pkts, %.2f Mbit/s  fwd %d pkts, %.2f Mbit/s",
		recvPackets, mbps(recvBytes, interval), fwdPackets, mbps(fwdBytes, interval))
}

// mbps converts a byte count accumulated over interval into an
// instantaneous megabit-per-second rate.
func mbps(bytes uint64, interval time.Duration) float64 {
	if interval <= 0 {
		return 0
	}
	return float64(bytes*8) / interval.Seconds() / 1e6
}
