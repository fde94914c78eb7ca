package replication

import (
	"context"
	"net"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"miniredis/internal/resp"
)

// Applier applies a command decoded from the master's stream and, for
// REPLCONF GETACK *, returns the bytes to write back (nil otherwise).
// consumedBefore is the replication-byte count the replica had
// accumulated before this command (spec §4.5 I3).
type Applier func(cmd resp.Command, consumedBefore int64) (reply []byte, err error)

// Handshake connects to masterAddr, drives PING -> REPLCONF -> PSYNC,
// discards the RDB payload, then feeds every remaining and subsequently
// read byte through apply until ctx is canceled or the connection
// fails. Any unexpected reply or I/O error is fatal, wrapped with
// context via github.com/pkg/errors so the caller can log a full chain.
func Handshake(ctx context.Context, masterAddr string, myPort int, log *logrus.Entry, apply Applier) error {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", masterAddr)
	if err != nil {
		return errors.Wrapf(err, "dial master %s", masterAddr)
	}
	defer conn.Close()

	// Close the connection on cancellation so a blocked Read returns.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	log.WithField("master", masterAddr).Info("connected to master, starting handshake")

	buf := make([]byte, 0, 4096)
	readMore := func() error {
		chunk := make([]byte, 4096)
		n, err := conn.Read(chunk)
		if err != nil {
			return errors.Wrap(err, "read from master")
		}
		buf = append(buf, chunk[:n]...)
		return nil
	}

	readLineReply := func() (resp.Value, error) {
		for {
			v, n, err := resp.Decode(buf)
			if err == resp.ErrIncomplete {
				if rerr := readMore(); rerr != nil {
					return resp.Value{}, rerr
				}
				continue
			}
			if err != nil {
				return resp.Value{}, errors.Wrap(err, "decode master reply")
			}
			buf = buf[n:]
			return v, nil
		}
	}

	send := func(args ...string) error {
		items := make([]resp.Value, len(args))
		for i, a := range args {
			items[i] = resp.NewBulkString([]byte(a))
		}
		_, err := conn.Write(resp.Encode(resp.NewArray(items)))
		return errors.Wrap(err, "write to master")
	}

	if err := send("PING"); err != nil {
		return err
	}
	if v, err := readLineReply(); err != nil {
		return err
	} else if v.Type != resp.SimpleString || v.Str != "PONG" {
		return errors.Errorf("unexpected PING reply: %s", resp.ToDisplay(v))
	}

	if err := send("REPLCONF", "listening-port", strconv.Itoa(myPort)); err != nil {
		return err
	}
	if v, err := readLineReply(); err != nil {
		return err
	} else if v.Type != resp.SimpleString || v.Str != "OK" {
		return errors.Errorf("unexpected REPLCONF listening-port reply: %s", resp.ToDisplay(v))
	}

	if err := send("REPLCONF", "capa", "psync2"); err != nil {
		return err
	}
	if v, err := readLineReply(); err != nil {
		return err
	} else if v.Type != resp.SimpleString || v.Str != "OK" {
		return errors.Errorf("unexpected REPLCONF capa reply: %s", resp.ToDisplay(v))
	}

	if err := send("PSYNC", "?", "-1"); err != nil {
		return err
	}
	v, err := readLineReply()
	if err != nil {
		return err
	}
	if v.Type != resp.SimpleString || !strings.HasPrefix(v.Str, "FULLRESYNC ") {
		return errors.Errorf("unexpected PSYNC reply: %s", resp.ToDisplay(v))
	}
	log.WithField("reply", v.Str).Debug("received FULLRESYNC")

	for {
		_, n, err := resp.DecodeRDBBulk(buf)
		if err == resp.ErrIncomplete {
			if rerr := readMore(); rerr != nil {
				return rerr
			}
			continue
		}
		if err != nil {
			return errors.Wrap(err, "decode RDB payload")
		}
		buf = buf[n:]
		break
	}
	log.Info("discarded RDB snapshot, entering streaming mode")

	var consumed int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// ParseCommands (C2's shared batch-decode entry point) drains
		// every complete command currently buffered in one pass; each is
		// applied in order with the offset it was preceded by (spec §4.5
		// I3), then the consumed prefix is dropped from buf.
		cmds, n := resp.ParseCommands(buf)
		for _, cmd := range cmds {
			before := consumed
			reply, err := apply(cmd, before)
			if err != nil {
				return errors.Wrap(err, "apply replicated command")
			}
			if reply != nil {
				if _, err := conn.Write(reply); err != nil {
					return errors.Wrap(err, "write reply to master")
				}
			}
			consumed = before + int64(cmd.Consumed)
		}
		buf = buf[n:]

		if len(buf) == 0 {
			if rerr := readMore(); rerr != nil {
				return rerr
			}
			continue
		}

		// ParseCommands stopped with bytes left over: either a trailing
		// incomplete frame (need more from the socket) or a genuinely
		// malformed one (fatal — it can't be resynchronized byte-for-byte).
		if _, err := resp.DecodeCommand(buf); err == resp.ErrIncomplete {
			if rerr := readMore(); rerr != nil {
				return rerr
			}
			continue
		} else {
			log.WithError(err).Warn("malformed command from master, aborting replication")
			return errors.Wrap(err, "decode command from master")
		}
	}
}
