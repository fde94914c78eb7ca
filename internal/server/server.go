package server

import (
	"context"
	"net"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"miniredis/internal/replication"
)

// Run binds the listener, spawns one connection-handler goroutine per
// accepted connection, and — when cfg.MasterHostPort is set — drives
// the replica handshake concurrently (C7). It returns when ctx is
// canceled or either the listener or the handshake fails fatally.
func Run(ctx context.Context, cfg Config, log *logrus.Logger) error {
	e := NewEngine(cfg, log)

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "bind %s", addr)
	}
	e.Log.WithField("addr", addr).Info("listening")

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		<-gctx.Done()
		return ln.Close()
	})

	group.Go(func() error {
		return acceptLoop(gctx, e, ln)
	})

	if cfg.IsReplica() {
		masterAddr, err := dialAddr(cfg.MasterHostPort)
		if err != nil {
			return errors.Wrap(err, "parse --replicaof")
		}
		group.Go(func() error {
			err := replication.Handshake(gctx, masterAddr, cfg.Port, e.Log.WithField("component", "handshake"), e.ApplyReplicated)
			if err != nil && gctx.Err() != nil {
				// Context cancellation during shutdown is not a failure.
				return nil
			}
			return errors.Wrap(err, "replica handshake")
		})
	}

	if err := group.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// dialAddr turns the CLI's "HOST PORT" form of --replicaof (spec §6)
// into a dialable "host:port" address.
func dialAddr(hostPort string) (string, error) {
	fields := strings.Fields(hostPort)
	if len(fields) != 2 {
		return "", errors.Errorf("--replicaof must be \"HOST PORT\", got %q", hostPort)
	}
	return net.JoinHostPort(fields[0], fields[1]), nil
}

func acceptLoop(ctx context.Context, e *Engine, ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "accept")
		}
		go e.HandleConn(ctx, conn)
	}
}
