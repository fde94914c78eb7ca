package server

import (
	"context"
	"io"
	"net"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"miniredis/internal/resp"
)

// connHandler drives the read/parse/execute/reply loop for one accepted
// TCP connection (C5, "On master" column of spec §4.5's table — every
// accepted connection, on any role, is handled this way; the distinct
// "replica-from-master conn" column is driven separately by the
// handshake driver's Applier in replica.go).
type connHandler struct {
	engine     *Engine
	conn       net.Conn
	log        *logrus.Entry
	replicaID  int64 // valid once subscribed is true
	replicaCh  <-chan []byte
	subscribed bool
	listenPort int
}

// HandleConn owns conn until the peer disconnects or an unrecoverable
// error occurs.
func (e *Engine) HandleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	h := &connHandler{
		engine: e,
		conn:   conn,
		log: e.Log.WithField("component", "conn").
			WithField("remote", conn.RemoteAddr().String()).
			WithField("conn_id", uuid.NewString()),
	}
	h.run(ctx)

	if h.subscribed {
		e.Hub.Unsubscribe(h.replicaID)
	}
}

func (h *connHandler) run(ctx context.Context) {
	buf := make([]byte, 0, 4096)
	tmp := make([]byte, 4096)

readLoop:
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := h.conn.Read(tmp)
		if err != nil {
			if err != io.EOF {
				h.log.WithError(err).Debug("connection read error")
			}
			return
		}
		buf = append(buf, tmp[:n]...)

		for {
			cmd, err := resp.DecodeCommand(buf)
			switch err {
			case nil:
				raw := buf[:cmd.Consumed]
				buf = buf[cmd.Consumed:]
				if elevate := h.execute(cmd, raw); elevate {
					h.servePSyncStream(ctx)
					return
				}
			case resp.ErrIncomplete:
				continue readLoop
			case resp.ErrInvalidArgument:
				buf = buf[cmd.Consumed:]
				h.write(resp.EncodeError("ERR syntax error"))
			default:
				h.log.WithError(err).Warn("malformed frame, closing connection")
				return
			}
		}
	}
}

func (h *connHandler) write(b []byte) {
	if _, err := h.conn.Write(b); err != nil {
		h.log.WithError(err).Debug("write error")
	}
}

// execute runs one command and writes its reply. raw is the exact bytes
// the command occupied on the wire, needed verbatim for SET propagation
// (spec §4.4: the Hub carries byte-identical originals, not
// re-encodings). execute returns true when the command was PSYNC and
// this connection must now be elevated to a Hub subscriber (spec §4.5).
func (h *connHandler) execute(cmd resp.Command, raw []byte) bool {
	e := h.engine

	switch cmd.Kind {
	case resp.Ping:
		h.write(resp.EncodeSimpleString("PONG"))

	case resp.Echo:
		h.write(resp.EncodeBulkString(cmd.Value))

	case resp.Get:
		if v, ok := e.Store.Get(cmd.Key); ok {
			h.write(resp.Encode(resp.NewBulkString(v)))
		} else {
			h.write(resp.EncodeNullBulk())
		}

	case resp.Set:
		e.Store.Set(cmd.Key, []byte(cmd.Value), cmd.TTL)
		e.publish(raw)
		h.write(resp.EncodeSimpleString("OK"))

	case resp.Del:
		n := 0
		if e.Store.Del(cmd.Key) {
			n = 1
		}
		e.publish(raw)
		h.write(resp.Encode(resp.NewInteger(int64(n))))

	case resp.Info:
		h.write(resp.EncodeBulkString(e.infoReplication()))

	case resp.ReplConf:
		h.executeReplConf(cmd)

	case resp.Psync:
		h.executePsync(cmd)
		return true

	default:
		h.write(resp.EncodeError("ERR unknown command"))
	}
	return false
}

func (h *connHandler) executeReplConf(cmd resp.Command) {
	if len(cmd.SubArgs) == 0 {
		h.write(resp.EncodeError("ERR wrong number of arguments for 'replconf' command"))
		return
	}

	switch cmd.SubArgs[0] {
	case "listening-port":
		if len(cmd.SubArgs) != 2 {
			h.write(resp.EncodeError("ERR wrong number of arguments for 'replconf' command"))
			return
		}
		port, err := strconv.Atoi(cmd.SubArgs[1])
		if err != nil {
			h.write(resp.EncodeError("ERR invalid listening-port"))
			return
		}
		h.listenPort = port
		h.write(resp.EncodeSimpleString("OK"))

	case "capa":
		h.write(resp.EncodeSimpleString("OK"))

	case "getack":
		// A plain client asking for this on a master connection is
		// answered the same way the replica-from-master path would
		// (open question (c), decided in SPEC_FULL.md §6).
		h.write(resp.Encode(resp.NewArray([]resp.Value{
			resp.NewBulkString([]byte("REPLCONF")),
			resp.NewBulkString([]byte("ACK")),
			resp.NewBulkString([]byte(strconv.FormatInt(h.engine.MasterReplOffset(), 10))),
		})))

	case "ack":
		// No reply: REPLCONF ACK is one-way. Once a connection is
		// elevated via PSYNC it is never read from again (spec §4.5), so
		// in practice a replica's own ACKs never reach this handler —
		// only a pre-PSYNC client sending a stray ACK does, and there is
		// nothing useful to record for it.

	default:
		h.write(resp.EncodeError("ERR unknown REPLCONF option"))
	}
}

func (h *connHandler) executePsync(cmd resp.Command) {
	e := h.engine

	h.write(resp.EncodeSimpleString("FULLRESYNC " + e.ReplID() + " 0"))

	rdb := emptyRDB()
	h.write([]byte("$" + strconv.Itoa(len(rdb)) + "\r\n"))
	h.write(rdb)

	h.replicaID, h.replicaCh = e.Hub.Subscribe()
	h.subscribed = true
	h.log.WithField("replica", h.replicaID).Info("replica subscribed after FULLRESYNC")
}

// servePSyncStream drains this connection's Hub subscription onto the
// TCP peer until the subscription closes (overflow, spec §4.4) or a
// write fails; per spec §4.5 the connection is never read from again
// once elevated.
func (h *connHandler) servePSyncStream(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-h.replicaCh:
			if !ok {
				return
			}
			if _, err := h.conn.Write(raw); err != nil {
				h.log.WithError(err).Debug("replica write error, disconnecting")
				return
			}
		}
	}
}
