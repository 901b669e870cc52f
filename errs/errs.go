// Package errs defines the sentinel error values surfaced by the gotdms
// segment engine. Callers compare with errors.Is; call sites wrap these
// with additional context via fmt.Errorf("...: %w", ...).
package errs

import "errors"

var (
	// ErrIo wraps an underlying file I/O failure.
	ErrIo = errors.New("tdms: io error")

	// ErrInvalidTag is returned when a segment's 4-byte tag is neither
	// "TDSm" nor "TDSh".
	ErrInvalidTag = errors.New("tdms: invalid segment tag")

	// ErrUnsupportedVersion is returned when a segment's version field is
	// not 4712 or 4713.
	ErrUnsupportedVersion = errors.New("tdms: unsupported version")

	// ErrTruncatedSegment is returned internally when a segment's declared
	// lengths exceed the remaining file bytes; reader code recovers from
	// this by treating the segment as the last one and truncating reads to
	// what actually fits.
	ErrTruncatedSegment = errors.New("tdms: truncated segment")

	// ErrMalformedPath is returned by objpath.Parse for unbalanced quotes.
	ErrMalformedPath = errors.New("tdms: malformed object path")

	// ErrInvalidUtf8 is returned when a length-prefixed string is not
	// valid UTF-8.
	ErrInvalidUtf8 = errors.New("tdms: invalid utf-8")

	// ErrLengthOverflow is returned when a declared string length exceeds
	// the string codec's limit, or when a requested read range is invalid.
	ErrLengthOverflow = errors.New("tdms: length overflow")

	// ErrTypeMismatch is returned when a channel write or read targets a
	// data type different from the channel's established type.
	ErrTypeMismatch = errors.New("tdms: data type mismatch")

	// ErrUnknownTypeCode is returned when a property or raw-index type
	// code is not one of the codes defined by the format.
	ErrUnknownTypeCode = errors.New("tdms: unknown type code")

	// ErrDaqmxUnsupportedOperation is returned when the write path
	// attempts to change the shape of a DAQmx channel's raw index.
	ErrDaqmxUnsupportedOperation = errors.New("tdms: DAQmx raw index is round-trip only")

	// ErrChannelNotFound is returned when an operation references a group
	// or channel path that hasn't been created.
	ErrChannelNotFound = errors.New("tdms: channel not found")

	// ErrInvalidHeaderSize is returned when a lead-in buffer is shorter
	// than 28 bytes.
	ErrInvalidHeaderSize = errors.New("tdms: invalid lead-in size")

	// ErrInvalidIndexEntrySize is returned when a raw-index record is
	// truncated.
	ErrInvalidIndexEntrySize = errors.New("tdms: invalid raw-index record size")

	// ErrInvalidHeaderFlags names a lead-in whose ToC bits are internally
	// inconsistent. No code path in this module returns it; an interleaved
	// segment holding a variable-width channel is reported with
	// ErrInterleaveRequiresFixedWidth.
	ErrInvalidHeaderFlags = errors.New("tdms: invalid lead-in flags")

	// ErrWriterClosed is returned by any Writer method called after Close.
	ErrWriterClosed = errors.New("tdms: writer is closed")

	// ErrInterleaveRequiresFixedWidth is returned when interleaved layout
	// is requested for a segment containing a variable-width (string)
	// channel.
	ErrInterleaveRequiresFixedWidth = errors.New("tdms: interleaved layout requires fixed-width channels")

	// ErrPathHashCollision is returned when a newly created object path
	// hashes to the same value as a distinct path already tracked by the
	// same writer, since the hash-keyed secondary index can only resolve
	// one path per hash.
	ErrPathHashCollision = errors.New("tdms: object path hash collision")
)
