// Package defrag implements the TDMS defragmenter: it reads a file through
// the random-access reader and rewrites it through the incremental writer
// as a single, fully-described segment, coalescing every channel's raw
// data that was previously spread across many segments.
package defrag

import (
	"fmt"

	"github.com/arloliu/gotdms/endian"
	"github.com/arloliu/gotdms/errs"
	"github.com/arloliu/gotdms/objpath"
	"github.com/arloliu/gotdms/propvalue"
	"github.com/arloliu/gotdms/reader"
	"github.com/arloliu/gotdms/tdmstype"
	"github.com/arloliu/gotdms/writer"
)

// Defragment reads srcPath and writes a consolidated copy to dstPath: one
// segment naming every object's final property state and carrying every
// channel's concatenated raw data, in the source's first-appearance
// channel order. Per-channel data type, endianness, and any DAQmx opaque
// raw-index blob are preserved verbatim.
func Defragment(srcPath, dstPath string) error {
	r, err := reader.Open(srcPath)
	if err != nil {
		return fmt.Errorf("defrag: open source: %w", err)
	}
	defer r.Close()

	var opts []writer.Option
	if sourceIsBigEndian(r) {
		opts = append(opts, writer.WithBigEndian())
	}

	w, err := writer.Create(dstPath, opts...)
	if err != nil {
		return fmt.Errorf("defrag: create destination: %w", err)
	}

	if err := copyObjectTree(r, w); err != nil {
		_ = w.Close()
		return err
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("defrag: close destination: %w", err)
	}

	return nil
}

func sourceIsBigEndian(r *reader.Reader) bool {
	for _, path := range r.Channels() {
		info, ok := r.Object(path)
		if ok && info.Engine != nil {
			return info.Engine == endian.GetBigEndianEngine()
		}
	}

	return false
}

func copyObjectTree(r *reader.Reader, w *writer.Writer) error {
	if info, ok := r.Object(objpath.Format(objpath.Root)); ok {
		if err := copyProperties(info, func(name string, v propvalue.Value) error {
			return w.SetFileProperty(name, v)
		}); err != nil {
			return err
		}
	}

	seenGroups := make(map[string]bool)

	for _, path := range r.Channels() {
		p, err := objpath.Parse(path)
		if err != nil {
			return fmt.Errorf("defrag: parse channel path %q: %w", path, err)
		}

		if !seenGroups[p.Group] {
			seenGroups[p.Group] = true

			if info, ok := r.Object(objpath.Format(objpath.NewGroup(p.Group))); ok {
				if err := copyProperties(info, func(name string, v propvalue.Value) error {
					return w.SetGroupProperty(p.Group, name, v)
				}); err != nil {
					return err
				}
			}
		}

		chInfo, ok := r.Object(path)
		if !ok {
			continue
		}

		if err := copyProperties(chInfo, func(name string, v propvalue.Value) error {
			return w.SetChannelProperty(p.Group, p.Channel, name, v)
		}); err != nil {
			return err
		}

		if err := copyChannelData(r, w, p.Group, p.Channel, chInfo); err != nil {
			return err
		}
	}

	return nil
}

// copyProperties folds every property of info through set, in whatever
// order model.PropertySet.All yields them, stopping at the first error.
func copyProperties(info *reader.ObjectInfo, set func(name string, v propvalue.Value) error) error {
	var err error

	info.Properties.All(func(name string, v propvalue.Value) bool {
		if setErr := set(name, v); setErr != nil {
			err = setErr
			return false
		}

		return true
	})

	return err
}

func copyChannelData(r *reader.Reader, w *writer.Writer, group, channel string, info *reader.ObjectInfo) error {
	if info.DAQmxIndexBytes != nil {
		rec, raw, err := r.RawChunk(group, channel)
		if err != nil {
			return fmt.Errorf("defrag: read DAQmx chunk for %s/%s: %w", group, channel, err)
		}

		return w.WriteRawChunk(group, channel, rec, raw)
	}

	switch info.DataType {
	case tdmstype.Bool:
		values, err := r.ReadBool(group, channel)
		if err != nil {
			return err
		}

		return w.WriteBool(group, channel, values)
	case tdmstype.String:
		values, err := r.ReadStrings(group, channel)
		if err != nil {
			return err
		}

		return w.WriteStrings(group, channel, values)
	case tdmstype.TimeStamp:
		values, err := r.ReadTimestamps(group, channel)
		if err != nil {
			return err
		}

		return w.WriteTimestamps(group, channel, values)
	case tdmstype.I8:
		return copyNumeric[int8](r, w, group, channel)
	case tdmstype.I16:
		return copyNumeric[int16](r, w, group, channel)
	case tdmstype.I32:
		return copyNumeric[int32](r, w, group, channel)
	case tdmstype.I64:
		return copyNumeric[int64](r, w, group, channel)
	case tdmstype.U8:
		return copyNumeric[uint8](r, w, group, channel)
	case tdmstype.U16:
		return copyNumeric[uint16](r, w, group, channel)
	case tdmstype.U32:
		return copyNumeric[uint32](r, w, group, channel)
	case tdmstype.U64:
		return copyNumeric[uint64](r, w, group, channel)
	case tdmstype.F32:
		return copyNumeric[float32](r, w, group, channel)
	case tdmstype.F64:
		return copyNumeric[float64](r, w, group, channel)
	case tdmstype.Void:
		// Properties-only object; no raw data to carry forward.
		return nil
	default:
		return fmt.Errorf("%w: %s has unsupported raw data type %s", errs.ErrTypeMismatch, channel, info.DataType)
	}
}

func copyNumeric[T reader.Numeric](r *reader.Reader, w *writer.Writer, group, channel string) error {
	values, err := reader.ReadNumeric[T](r, group, channel)
	if err != nil {
		return err
	}

	return writer.WriteNumeric(w, group, channel, values)
}
