package huffman

import "errors"

var (
	// ErrLookupFailure is returned by Encode when a symbol has no codeword,
	// usually because the table was built from different input.
	ErrLookupFailure = errors.New("huffman: symbol not in code table")

	// ErrTruncatedStream is returned when the bitstream ends in the middle
	// of a codeword or a container ends before its declared length.
	ErrTruncatedStream = errors.New("huffman: truncated stream")

	// ErrCorruptStream is returned when the bits lead into a child the tree
	// does not have, or when persisted data cannot describe a valid tree.
	ErrCorruptStream = errors.New("huffman: corrupt stream")

	// ErrInvalidFormat is returned when a container header is not recognised.
	ErrInvalidFormat = errors.New("huffman: invalid container format")

	// ErrClosed is returned by Write on a closed Writer and by Read on a
	// closed Reader.
	ErrClosed = errors.New("huffman: use of closed writer or reader")
)
