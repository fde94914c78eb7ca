package replication

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestHubPublishFanout(t *testing.T) {
	h := NewHub(testLog())
	id1, ch1 := h.Subscribe()
	id2, ch2 := h.Subscribe()
	defer h.Unsubscribe(id1)
	defer h.Unsubscribe(id2)

	h.Publish([]byte("*1\r\n$4\r\nPING\r\n"))

	select {
	case got := <-ch1:
		assert.Equal(t, "*1\r\n$4\r\nPING\r\n", string(got))
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for subscriber 1")
	}
	select {
	case got := <-ch2:
		assert.Equal(t, "*1\r\n$4\r\nPING\r\n", string(got))
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for subscriber 2")
	}
}

func TestHubPreservesOrder(t *testing.T) {
	h := NewHub(testLog())
	id, ch := h.Subscribe()
	defer h.Unsubscribe(id)

	h.Publish([]byte("1"))
	h.Publish([]byte("2"))
	h.Publish([]byte("3"))

	assert.Equal(t, "1", string(<-ch))
	assert.Equal(t, "2", string(<-ch))
	assert.Equal(t, "3", string(<-ch))
}

func TestHubDropsSlowSubscriber(t *testing.T) {
	h := NewHub(testLog())
	id, ch := h.Subscribe()

	for i := 0; i < hubCapacity+10; i++ {
		h.Publish([]byte("x"))
	}

	require.Equal(t, 0, h.SubscriberCount())

	// The channel is closed once drained.
	drained := 0
	for range ch {
		drained++
	}
	assert.Equal(t, hubCapacity, drained)
}

func TestUnsubscribeIdempotent(t *testing.T) {
	h := NewHub(testLog())
	id, _ := h.Subscribe()
	h.Unsubscribe(id)
	h.Unsubscribe(id)
}
