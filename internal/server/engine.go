package server

import (
	"crypto/rand"
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"miniredis/internal/replication"
	"miniredis/internal/store"
)

// Engine is the shared, per-process state every connection handler
// operates on: the Store (C3), the replication Hub (C4), and the
// bookkeeping INFO replication needs. It is the sole mutable global
// besides the Store's own internal lock (spec §9).
type Engine struct {
	Config Config
	Store  *store.Store
	Hub    *replication.Hub
	Log    *logrus.Logger

	replID string
	// masterOffset counts bytes published to the Hub; read via INFO on a
	// master, always reported as 0 on a replica (spec §6).
	masterOffset int64
}

// NewEngine wires together a fresh Store and Hub under cfg.
func NewEngine(cfg Config, log *logrus.Logger) *Engine {
	return &Engine{
		Config: cfg,
		Store:  store.New(),
		Hub:    replication.NewHub(log.WithField("component", "hub")),
		Log:    log,
		replID: generateReplID(),
	}
}

// generateReplID returns a random 40-character hex string, the fixed
// per-process replication ID a master reports via PSYNC/INFO.
func generateReplID() string {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand unavailable: " + err.Error())
	}
	return fmt.Sprintf("%x", b)
}

// publish forwards the exact wire bytes of a write command to the Hub,
// advancing the master replication offset by the number of bytes
// published.
func (e *Engine) publish(raw []byte) {
	e.Hub.Publish(raw)
	atomic.AddInt64(&e.masterOffset, int64(len(raw)))
}

// MasterReplOffset returns the current master replication offset.
func (e *Engine) MasterReplOffset() int64 {
	return atomic.LoadInt64(&e.masterOffset)
}

// ReplID returns this process's fixed 40-hex replication ID.
func (e *Engine) ReplID() string { return e.replID }
