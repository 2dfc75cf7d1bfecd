package queue

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeepAliveExtendsUntilDone(t *testing.T) {
	var extends int64
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		keepAlive(done, 5*time.Millisecond, func() error {
			atomic.AddInt64(&extends, 1)
			return nil
		})
		close(finished)
	}()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&extends) >= 3
	}, time.Second, time.Millisecond)

	close(done)
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("keepAlive did not stop after done closed")
	}

	// No further extensions once stopped.
	settled := atomic.LoadInt64(&extends)
	time.Sleep(25 * time.Millisecond)
	assert.Equal(t, settled, atomic.LoadInt64(&extends))
}
