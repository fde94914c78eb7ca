// Package replication implements the master-side broadcast hub (C4) and
// the replica-side handshake driver (C6).
package replication

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// hubCapacity bounds each subscriber's channel (spec §3).
const hubCapacity = 128

// Hub is a single-publisher/multi-subscriber broadcast of raw RESP
// write-command bytes. It holds no reference back to any net.Conn: each
// subscriber owns its receive end and is responsible for draining it
// onto its own connection.
type Hub struct {
	log *logrus.Entry

	mu     sync.Mutex
	subs   map[int64]chan []byte
	nextID int64
}

// NewHub returns an empty Hub.
func NewHub(log *logrus.Entry) *Hub {
	return &Hub{
		log:  log,
		subs: make(map[int64]chan []byte),
	}
}

// Subscribe registers a new subscriber and returns its id and receive
// channel. The caller must eventually call Unsubscribe.
func (h *Hub) Subscribe() (int64, <-chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	ch := make(chan []byte, hubCapacity)
	h.subs[id] = ch

	return id, ch
}

// Unsubscribe removes a subscriber. Safe to call more than once.
func (h *Hub) Unsubscribe(id int64) {
	h.mu.Lock()
	ch, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
	}
	h.mu.Unlock()
	if ok {
		close(ch)
	}
}

// Publish fans raw out to every current subscriber, preserving
// publication order per subscriber (O2). A subscriber whose channel is
// full is dropped rather than blocking the publisher or other
// subscribers; its connection handler will observe the channel close
// and tear down the TCP connection, forcing a full resync on reconnect.
func (h *Hub) Publish(raw []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subs {
		select {
		case ch <- raw:
		default:
			h.log.WithField("subscriber", id).Warn("replica channel full, dropping subscriber")
			delete(h.subs, id)
			close(ch)
		}
	}
}

// SubscriberCount reports how many replicas are currently subscribed.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
