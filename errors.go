package bzip2

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrMalformedInput reports a container that violates the format:
	// a bad magic, an out-of-range field or an impossible code.
	ErrMalformedInput = errors.New("bzip2: malformed input")

	// ErrUnexpectedEOF reports a container that ends before its footer.
	// It wraps io.ErrUnexpectedEOF.
	ErrUnexpectedEOF = fmt.Errorf("bzip2: %w", io.ErrUnexpectedEOF)

	// ErrChecksum reports a block or stream whose recomputed CRC differs
	// from the stored one.
	ErrChecksum = errors.New("bzip2: checksum mismatch")

	// ErrInvalidLevel reports a block-size level outside 1..9.
	ErrInvalidLevel = errors.New("bzip2: invalid level")

	// ErrInvariant reports a decoded value that passed the format checks
	// but points outside the data it indexes, such as an origin pointer
	// past the end of the block.
	ErrInvariant = errors.New("bzip2: internal invariant violated")

	// ErrFinished reports input supplied to an Encoder after Finish.
	ErrFinished = errors.New("bzip2: encoder already finished")

	// ErrBusy reports a call to Encode made while the Encoder is still
	// handing out the chunks of an earlier call.
	ErrBusy = errors.New("bzip2: encoder busy")
)

// malformed annotates ErrMalformedInput with the field that failed.
func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrMalformedInput}, args...)...)
}

// invariant annotates ErrInvariant with the value that was out of bounds.
func invariant(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvariant}, args...)...)
}
