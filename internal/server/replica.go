package server

import (
	"strconv"

	"miniredis/internal/resp"
)

// ApplyReplicated executes one command decoded from the master's
// stream (spec §4.5 "On replica-from-master conn" column). It never
// writes a reply except to REPLCONF GETACK *, whose reply reports
// consumedBefore — the replication-byte count accumulated strictly
// before this command (the offset invariant, I3).
func (e *Engine) ApplyReplicated(cmd resp.Command, consumedBefore int64) ([]byte, error) {
	switch cmd.Kind {
	case resp.Set:
		e.Store.Set(cmd.Key, []byte(cmd.Value), cmd.TTL)

	case resp.Del:
		e.Store.Del(cmd.Key)

	case resp.Ping:
		// Silent: PONG is only replied to a regular client connection.

	case resp.ReplConf:
		if len(cmd.SubArgs) >= 1 && cmd.SubArgs[0] == "getack" {
			return resp.Encode(resp.NewArray([]resp.Value{
				resp.NewBulkString([]byte("REPLCONF")),
				resp.NewBulkString([]byte("ACK")),
				resp.NewBulkString([]byte(strconv.FormatInt(consumedBefore, 10))),
			})), nil
		}

	case resp.Get, resp.Echo, resp.Info, resp.Psync:
		// A master never sends these on the replication stream; if one
		// somehow arrives it is ignored without a reply.

	default:
		// Unknown command: tolerated, skipped.
	}
	return nil, nil
}
