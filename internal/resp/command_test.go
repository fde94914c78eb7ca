package resp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeCommand(args ...string) []byte {
	items := make([]Value, len(args))
	for i, a := range args {
		items[i] = NewBulkString([]byte(a))
	}
	return Encode(NewArray(items))
}

func TestDecodeCommandBasics(t *testing.T) {
	cases := []struct {
		args []string
		kind CommandKind
	}{
		{[]string{"PING"}, Ping},
		{[]string{"ping"}, Ping},
		{[]string{"ECHO", "hey"}, Echo},
		{[]string{"GET", "foo"}, Get},
		{[]string{"DEL", "foo"}, Del},
	}
	for _, c := range cases {
		buf := encodeCommand(c.args...)
		cmd, err := DecodeCommand(buf)
		require.NoError(t, err)
		assert.Equal(t, c.kind, cmd.Kind)
		assert.Equal(t, len(buf), cmd.Consumed)
	}
}

func TestDecodeSetWithTTL(t *testing.T) {
	buf := encodeCommand("SET", "foo", "bar", "PX", "100")
	cmd, err := DecodeCommand(buf)
	require.NoError(t, err)
	assert.Equal(t, Set, cmd.Kind)
	assert.Equal(t, "foo", cmd.Key)
	assert.Equal(t, "bar", cmd.Value)
	require.NotNil(t, cmd.TTL)
	assert.Equal(t, 100*time.Millisecond, *cmd.TTL)
}

func TestDecodeSetNoTTL(t *testing.T) {
	buf := encodeCommand("SET", "foo", "bar")
	cmd, err := DecodeCommand(buf)
	require.NoError(t, err)
	assert.Nil(t, cmd.TTL)
}

func TestDecodeSetUnknownOption(t *testing.T) {
	buf := encodeCommand("SET", "foo", "bar", "XX", "1")
	_, err := DecodeCommand(buf)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDecodeSetBothTTLOptionsHasNoExpiry(t *testing.T) {
	buf := encodeCommand("SET", "foo", "bar", "PX", "100", "EX", "5")
	cmd, err := DecodeCommand(buf)
	require.NoError(t, err)
	assert.Equal(t, Set, cmd.Kind)
	assert.Nil(t, cmd.TTL)
}

func TestDecodeSetDanglingOptionNameHasNoExpiry(t *testing.T) {
	buf := encodeCommand("SET", "foo", "bar", "PX")
	cmd, err := DecodeCommand(buf)
	require.NoError(t, err)
	assert.Nil(t, cmd.TTL)
}

func TestDecodeInfoDefaultsToReplication(t *testing.T) {
	cmd, err := DecodeCommand(encodeCommand("INFO"))
	require.NoError(t, err)
	assert.Equal(t, "replication", cmd.Section)
}

func TestDecodeReplConfCaseFolded(t *testing.T) {
	cmd, err := DecodeCommand(encodeCommand("REPLCONF", "GETACK", "*"))
	require.NoError(t, err)
	assert.Equal(t, ReplConf, cmd.Kind)
	assert.Equal(t, []string{"getack", "*"}, cmd.SubArgs)
}

func TestDecodePsync(t *testing.T) {
	cmd, err := DecodeCommand(encodeCommand("PSYNC", "?", "-1"))
	require.NoError(t, err)
	assert.Equal(t, Psync, cmd.Kind)
	assert.Equal(t, "?", cmd.ReplID)
	assert.Equal(t, int64(-1), cmd.Offset)
}

func TestParseCommandsStopsOnIncomplete(t *testing.T) {
	full := encodeCommand("PING")
	full = append(full, encodeCommand("ECHO", "hi")...)
	partial := full[:len(full)-3]

	cmds, consumed := ParseCommands(partial)
	require.Len(t, cmds, 1)
	assert.Equal(t, Ping, cmds[0].Kind)
	assert.Less(t, consumed, len(partial))
}

func TestParseCommandsOrder(t *testing.T) {
	buf := encodeCommand("SET", "a", "1")
	buf = append(buf, encodeCommand("SET", "b", "2")...)
	buf = append(buf, encodeCommand("GET", "a")...)

	cmds, consumed := ParseCommands(buf)
	require.Len(t, cmds, 3)
	assert.Equal(t, "a", cmds[0].Key)
	assert.Equal(t, "b", cmds[1].Key)
	assert.Equal(t, Get, cmds[2].Kind)
	assert.Equal(t, len(buf), consumed)
}
