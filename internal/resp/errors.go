package resp

import "errors"

var (
	// ErrIncomplete means the buffer holds a prefix of a valid frame;
	// the caller should read more bytes and retry from the same offset.
	ErrIncomplete = errors.New("resp: incomplete frame")

	// ErrMalformed means the buffer can never be a valid frame.
	ErrMalformed = errors.New("resp: malformed frame")

	// ErrOversize means a declared bulk/array length exceeds maxFrameSize.
	ErrOversize = errors.New("resp: frame exceeds size limit")

	// ErrInvalidArgument is returned by the command decoder for a
	// recognized command with bad arguments (RESP "syntax error").
	ErrInvalidArgument = errors.New("resp: invalid argument")
)

// maxFrameSize bounds declared bulk-string and array lengths so that a
// corrupt or hostile length header cannot force an unbounded allocation.
const maxFrameSize = 512 * 1024 * 1024
