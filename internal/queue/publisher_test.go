package queue

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// silentBroker accepts TCP connections and never answers the AMQP
// handshake.
func silentBroker(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var mu sync.Mutex
	var conns []net.Conn
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, c)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			c.Close()
		}
	})
	return "amqp://guest:guest@" + ln.Addr().String() + "/"
}

func TestPublishGivesUpOnSilentBroker(t *testing.T) {
	p := NewPublisher(silentBroker(t), 200*time.Millisecond)
	t.Cleanup(func() { p.Close() })

	start := time.Now()
	err := p.Publish(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)

	// The pause after a failed dial answers at once.
	start = time.Now()
	err = p.Publish(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, ErrBrokerUnavailable)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestConcurrentPublishesRespectTheirOwnTimeout(t *testing.T) {
	p := NewPublisher(silentBroker(t), 300*time.Millisecond)
	t.Cleanup(func() { p.Close() })

	start := time.Now()
	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = p.Publish(context.Background(), sampleEvent())
		}(i)
	}
	wg.Wait()

	assert.Less(t, time.Since(start), 2*time.Second)
	for _, err := range errs {
		assert.Error(t, err)
	}
}

func TestNewPublisherDefaultsTimeout(t *testing.T) {
	p := NewPublisher("amqp://localhost/", 0)
	assert.Equal(t, DefaultPublishTimeout, p.timeout)
}
