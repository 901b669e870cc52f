package writer

import (
	"fmt"
	"sync"

	"github.com/arloliu/gotdms/errs"
	"github.com/arloliu/gotdms/propvalue"
	"github.com/arloliu/gotdms/segment"
	"github.com/arloliu/gotdms/tdmstype"
)

// asyncCommand is one unit of work submitted to the worker goroutine: a
// closure over the underlying *Writer, and a channel the caller blocks on
// to learn the result.
type asyncCommand struct {
	fn   func(*Writer) error
	done chan error
}

// AsyncWriter serializes every mutation through a single worker goroutine
// draining a command queue, so the caller's goroutine never blocks on
// file I/O directly. It is the Go analogue of a channel-backed writer
// task: one producer side submitting commands, one consumer side
// executing them against the Writer in order.
type AsyncWriter struct {
	w       *Writer
	queue   chan asyncCommand
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
}

// CreateAsync opens path (and its companion index) and starts the worker
// goroutine. queueSize bounds how many submitted commands may be pending
// before a submitting call blocks.
func CreateAsync(path string, queueSize int, opts ...Option) (*AsyncWriter, error) {
	w, err := Create(path, opts...)
	if err != nil {
		return nil, err
	}

	aw := &AsyncWriter{w: w, queue: make(chan asyncCommand, queueSize)}
	aw.wg.Add(1)

	go aw.run()

	return aw, nil
}

func (aw *AsyncWriter) run() {
	defer aw.wg.Done()

	for cmd := range aw.queue {
		cmd.done <- cmd.fn(aw.w)
	}
}

func (aw *AsyncWriter) submit(fn func(*Writer) error) error {
	aw.mu.Lock()
	if aw.closed {
		aw.mu.Unlock()
		return errs.ErrWriterClosed
	}

	done := make(chan error, 1)
	aw.queue <- asyncCommand{fn: fn, done: done}
	aw.mu.Unlock()

	return <-done
}

// SetFileProperty stages a root-level property change.
func (aw *AsyncWriter) SetFileProperty(name string, value propvalue.Value) error {
	return aw.submit(func(w *Writer) error { return w.SetFileProperty(name, value) })
}

// SetGroupProperty stages a group property change.
func (aw *AsyncWriter) SetGroupProperty(group, name string, value propvalue.Value) error {
	return aw.submit(func(w *Writer) error { return w.SetGroupProperty(group, name, value) })
}

// SetChannelProperty stages a channel property change.
func (aw *AsyncWriter) SetChannelProperty(group, channel, name string, value propvalue.Value) error {
	return aw.submit(func(w *Writer) error { return w.SetChannelProperty(group, channel, name, value) })
}

// CreateChannel registers (group, channel) with the given data type.
func (aw *AsyncWriter) CreateChannel(group, channel string, dt tdmstype.DataType) error {
	return aw.submit(func(w *Writer) error { return w.CreateChannel(group, channel, dt) })
}

// WriteBool stages boolean values for (group, channel).
func (aw *AsyncWriter) WriteBool(group, channel string, values []bool) error {
	return aw.submit(func(w *Writer) error { return w.WriteBool(group, channel, values) })
}

// WriteTimestamps stages timestamp values for (group, channel).
func (aw *AsyncWriter) WriteTimestamps(group, channel string, values []tdmstype.Timestamp) error {
	return aw.submit(func(w *Writer) error { return w.WriteTimestamps(group, channel, values) })
}

// WriteStrings stages string values for (group, channel).
func (aw *AsyncWriter) WriteStrings(group, channel string, values []string) error {
	return aw.submit(func(w *Writer) error { return w.WriteStrings(group, channel, values) })
}

// WriteRawChunk stages an already-encoded raw chunk and raw-index record
// verbatim.
func (aw *AsyncWriter) WriteRawChunk(group, channel string, rec segment.RawIndexRecord, raw []byte) error {
	return aw.submit(func(w *Writer) error { return w.WriteRawChunk(group, channel, rec, raw) })
}

// Flush closes the current segment.
func (aw *AsyncWriter) Flush() error {
	return aw.submit(func(w *Writer) error { return w.Flush() })
}

// Close flushes pending writes, stops the worker goroutine, and releases
// the underlying file handles. Submitting further commands after Close
// returns ErrWriterClosed.
func (aw *AsyncWriter) Close() error {
	aw.mu.Lock()
	if aw.closed {
		aw.mu.Unlock()
		return nil
	}

	aw.closed = true
	close(aw.queue)
	aw.mu.Unlock()

	aw.wg.Wait()

	return aw.w.Close()
}

// WriteNumericAsync stages values as a raw chunk for (group, channel) via
// the async worker, inferring the TDMS data type from T. Like its
// synchronous counterpart this is a free function because Go methods
// cannot carry their own type parameter.
func WriteNumericAsync[T Numeric](aw *AsyncWriter, group, channel string, values []T) error {
	dt := numericDataType[T]()
	if dt == tdmstype.Void {
		return fmt.Errorf("%w: unsupported numeric type for %s/%s", errs.ErrTypeMismatch, group, channel)
	}

	return aw.submit(func(w *Writer) error { return WriteNumeric(w, group, channel, values) })
}
