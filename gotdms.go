// Package gotdms provides a high-performance binary format reader and
// writer for National Instruments TDMS (Technical Data Management
// Streaming) 2.0 files.
//
// TDMS files are organized as a sequence of self-describing segments, each
// carrying a meta-data region (groups, channels, and their properties) and
// a raw-data region (the channels' values). gotdms exposes an incremental
// Writer for producing new files segment-by-segment, a random-access
// Reader for opening existing files (including ones interrupted mid-write),
// and a Defragment helper for coalescing a heavily fragmented file into a
// single segment.
//
// # Basic Usage
//
// Writing a file:
//
//	w, err := gotdms.Create("out.tdms")
//	if err != nil {
//	    return err
//	}
//	if err := writer.WriteNumeric(w, "Group1", "Voltage", []float64{1.1, 2.2, 3.3}); err != nil {
//	    return err
//	}
//	if err := w.Close(); err != nil {
//	    return err
//	}
//
// Reading it back:
//
//	r, err := gotdms.Open("out.tdms")
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//	values, err := reader.ReadNumeric[float64](r, "Group1", "Voltage")
//
// # Package Structure
//
// This package is a thin convenience layer over writer, reader, and
// defrag. For fine-grained control (functional options, raw DAQmx chunk
// passthrough, property inspection) use those packages directly.
package gotdms

import (
	"github.com/arloliu/gotdms/defrag"
	"github.com/arloliu/gotdms/reader"
	"github.com/arloliu/gotdms/writer"
)

// Create opens path for writing a new TDMS file, truncating any existing
// content, and returns an incremental Writer. A companion ".tdms_index"
// file is produced alongside path as segments are flushed.
//
// Example:
//
//	w, err := gotdms.Create("out.tdms", writer.WithBigEndian())
func Create(path string, opts ...writer.Option) (*writer.Writer, error) {
	return writer.Create(path, opts...)
}

// Open scans path and returns a random-access Reader over its segments. It
// prefers the companion ".tdms_index" file when present and consistent,
// falling back to a full scan of path itself otherwise. A truncated final
// segment is recovered rather than rejected; call Reader.Truncated to
// detect it.
//
// Example:
//
//	r, err := gotdms.Open("out.tdms")
func Open(path string) (*reader.Reader, error) {
	return reader.Open(path)
}

// Defragment reads srcPath and writes a consolidated, single-segment copy
// to dstPath, preserving every object's properties, final values, and
// (for DAQmx channels) opaque raw-index bytes verbatim.
//
// Example:
//
//	err := gotdms.Defragment("fragmented.tdms", "defragmented.tdms")
func Defragment(srcPath, dstPath string) error {
	return defrag.Defragment(srcPath, dstPath)
}
