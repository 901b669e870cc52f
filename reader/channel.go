package reader

import (
	"fmt"

	"github.com/arloliu/gotdms/codec"
	"github.com/arloliu/gotdms/errs"
	"github.com/arloliu/gotdms/objpath"
	"github.com/arloliu/gotdms/propvalue"
	"github.com/arloliu/gotdms/segment"
	"github.com/arloliu/gotdms/tdmstype"
)

func (r *Reader) chunkRefs(group, channel string) (string, []ChunkRef, *ObjectInfo, error) {
	path := channelPath(group, channel)

	info, ok := r.ix.objects[path]
	if !ok || info.Kind != objpath.KindChannel {
		return path, nil, nil, fmt.Errorf("%w: %s", errs.ErrChannelNotFound, path)
	}

	return path, r.ix.chunks[path], info, nil
}

// ChannelDataType returns the data type most recently established for
// (group, channel).
func (r *Reader) ChannelDataType(group, channel string) (tdmstype.DataType, error) {
	_, _, info, err := r.chunkRefs(group, channel)
	if err != nil {
		return tdmstype.Void, err
	}

	return info.DataType, nil
}

// ChannelProperty returns the resolved (last-writer-wins) value of a
// channel property.
func (r *Reader) ChannelProperty(group, channel, name string) (propvalue.Value, bool, error) {
	_, _, info, err := r.chunkRefs(group, channel)
	if err != nil {
		return propvalue.Value{}, false, err
	}

	v, ok := info.Properties.Get(name)

	return v, ok, nil
}

// FileProperty returns the resolved value of a root-level property.
func (r *Reader) FileProperty(name string) (propvalue.Value, bool) {
	info, ok := r.ix.objects["/"]
	if !ok {
		return propvalue.Value{}, false
	}

	return info.Properties.Get(name)
}

// GroupProperty returns the resolved value of a group property.
func (r *Reader) GroupProperty(group, name string) (propvalue.Value, bool, error) {
	path := groupPath(group)

	info, ok := r.ix.objects[path]
	if !ok {
		return propvalue.Value{}, false, fmt.Errorf("%w: group %s", errs.ErrChannelNotFound, group)
	}

	v, ok := info.Properties.Get(name)

	return v, ok, nil
}

// ChunkCount reports how many distinct chunk runs (group, channel) is
// split across, informational for callers inspecting file layout.
func (r *Reader) ChunkCount(group, channel string) (int, error) {
	_, refs, _, err := r.chunkRefs(group, channel)
	if err != nil {
		return 0, err
	}

	return len(refs), nil
}

// channelValueCount sums the declared element count across every chunk
// of a channel.
func channelValueCount(refs []ChunkRef) int {
	total := 0
	for _, ref := range refs {
		total += ref.Count
	}

	return total
}

func (r *Reader) readStrided(ref ChunkRef) ([]byte, error) {
	if ref.Count == 0 || ref.ElementSize == 0 {
		return nil, nil
	}

	if ref.Stride == ref.ElementSize {
		buf := make([]byte, ref.Count*ref.ElementSize)
		if _, err := r.dataFile.ReadAt(buf, ref.FileOffset); err != nil {
			return nil, fmt.Errorf("%w: read channel chunk: %v", errs.ErrIo, err) //nolint:errorlint
		}

		return buf, nil
	}

	span := (ref.Count-1)*ref.Stride + ref.ElementSize
	block := make([]byte, span)

	if _, err := r.dataFile.ReadAt(block, ref.FileOffset); err != nil {
		return nil, fmt.Errorf("%w: read interleaved channel chunk: %v", errs.ErrIo, err) //nolint:errorlint
	}

	out := make([]byte, ref.Count*ref.ElementSize)
	for i := range ref.Count {
		copy(out[i*ref.ElementSize:], block[i*ref.Stride:i*ref.Stride+ref.ElementSize])
	}

	return out, nil
}

// ReadBool decodes every value of a boolean channel.
func (r *Reader) ReadBool(group, channel string) ([]bool, error) {
	path, refs, info, err := r.chunkRefs(group, channel)
	if err != nil {
		return nil, err
	}

	if info.DataType != tdmstype.Bool {
		return nil, fmt.Errorf("%w: %s is %s, not bool", errs.ErrTypeMismatch, path, info.DataType)
	}

	out := make([]bool, 0, channelValueCount(refs))

	for _, ref := range refs {
		s := codec.NewScalar(ref.Engine)

		buf, err := r.readStrided(ref)
		if err != nil {
			return nil, err
		}

		for i := range ref.Count {
			out = append(out, s.Bool(buf[i:i+1]))
		}
	}

	return out, nil
}

// ReadTimestamps decodes every value of a timestamp channel.
func (r *Reader) ReadTimestamps(group, channel string) ([]tdmstype.Timestamp, error) {
	path, refs, info, err := r.chunkRefs(group, channel)
	if err != nil {
		return nil, err
	}

	if info.DataType != tdmstype.TimeStamp {
		return nil, fmt.Errorf("%w: %s is %s, not timestamp", errs.ErrTypeMismatch, path, info.DataType)
	}

	out := make([]tdmstype.Timestamp, 0, channelValueCount(refs))

	for _, ref := range refs {
		s := codec.NewScalar(ref.Engine)

		buf, err := r.readStrided(ref)
		if err != nil {
			return nil, err
		}

		for i := range ref.Count {
			out = append(out, s.Timestamp(buf[i*16:i*16+16]))
		}
	}

	return out, nil
}

// ReadStrings decodes every value of a string channel.
func (r *Reader) ReadStrings(group, channel string) ([]string, error) {
	path, refs, info, err := r.chunkRefs(group, channel)
	if err != nil {
		return nil, err
	}

	if info.DataType != tdmstype.String {
		return nil, fmt.Errorf("%w: %s is %s, not string", errs.ErrTypeMismatch, path, info.DataType)
	}

	out := make([]string, 0, channelValueCount(refs))

	for _, ref := range refs {
		if ref.TotalBytes == 0 {
			continue
		}

		blob := make([]byte, ref.TotalBytes)
		if _, err := r.dataFile.ReadAt(blob, ref.FileOffset); err != nil {
			return nil, fmt.Errorf("%w: read string chunk: %v", errs.ErrIo, err) //nolint:errorlint
		}

		values, err := segment.DecodeStringChunk(blob, ref.Count, ref.Engine)
		if err != nil {
			return nil, err
		}

		out = append(out, values...)
	}

	return out, nil
}

// RawChunk returns a DAQmx channel's most recently seen raw-index record
// and the verbatim bytes of all its chunks, concatenated in file order,
// for the defragmenter to carry forward without reinterpreting.
func (r *Reader) RawChunk(group, channel string) (segment.RawIndexRecord, []byte, error) {
	path, refs, info, err := r.chunkRefs(group, channel)
	if err != nil {
		return segment.RawIndexRecord{}, nil, err
	}

	if info.DAQmxIndexBytes == nil {
		return segment.RawIndexRecord{}, nil, fmt.Errorf("%w: %s has no DAQmx raw index", errs.ErrDaqmxUnsupportedOperation, path)
	}

	var buf []byte

	for _, ref := range refs {
		if ref.TotalBytes == 0 {
			continue
		}

		chunk := make([]byte, ref.TotalBytes)
		if _, err := r.dataFile.ReadAt(chunk, ref.FileOffset); err != nil {
			return segment.RawIndexRecord{}, nil, fmt.Errorf("%w: read DAQmx chunk: %v", errs.ErrIo, err) //nolint:errorlint
		}

		buf = append(buf, chunk...)
	}

	rec := segment.RawIndexRecord{Kind: segment.IndexDAQmx, DAQmxRaw: info.DAQmxIndexBytes}

	return rec, buf, nil
}

func groupPath(group string) string {
	return objpath.Format(objpath.NewGroup(group))
}
