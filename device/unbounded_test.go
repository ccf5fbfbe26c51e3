package device

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The Transmitter/Receiver orchestrators themselves need CAP_NET_RAW and
// a real monitor-mode interface (txhw, rxhw); the end-to-end scenarios
// S1-S6 are exercised at the algorithmic level by internal/block,
// internal/rxfec and internal/fechdr's tests instead. This file covers
// the one piece of orchestration logic that has no hardware dependency:
// the unbounded SPSC channel every worker pair talks through.

func TestUnboundedChanPreservesOrder(t *testing.T) {
	c := newUnboundedChan[int]()
	for i := 0; i < 100; i++ {
		c.Send(i)
	}
	for i := 0; i < 100; i++ {
		select {
		case v := <-c.Out():
			assert.Equal(t, i, v)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for value")
		}
	}
}

func TestUnboundedChanSendNeverBlocksOnSlowConsumer(t *testing.T) {
	c := newUnboundedChan[int]()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			c.Send(i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("producer blocked despite no consumer draining Out()")
	}

	for i := 0; i < 1000; i++ {
		require.Equal(t, i, <-c.Out())
	}
}

func TestUnboundedChanDrainsBeforeClosing(t *testing.T) {
	c := newUnboundedChan[int]()
	c.Send(1)
	c.Send(2)
	c.Close()

	v, ok := <-c.Out()
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = <-c.Out()
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = <-c.Out()
	assert.False(t, ok)
}
