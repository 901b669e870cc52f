package reader

import (
	"fmt"

	"github.com/arloliu/gotdms/endian"
	"github.com/arloliu/gotdms/errs"
	"github.com/arloliu/gotdms/internal/hash"
	"github.com/arloliu/gotdms/model"
	"github.com/arloliu/gotdms/objpath"
	"github.com/arloliu/gotdms/segment"
	"github.com/arloliu/gotdms/tdmstype"
)

// ObjectInfo is the resolved state of one File/Group/Channel object after
// folding every segment's property deltas, last-write-wins.
type ObjectInfo struct {
	Path       string
	Kind       objpath.Kind
	Properties *model.PropertySet

	DataType tdmstype.DataType
	Engine   endian.EndianEngine

	// DAQmxIndexBytes, when non-nil, is the most recently seen opaque
	// DAQmx raw-index record for this channel, preserved verbatim.
	DAQmxIndexBytes []byte

	// PathHash is the xxHash64 of Path, used by Reader.ObjectByHash as an
	// O(1) alternative to the string-keyed lookup.
	PathHash uint64
}

// ChunkRef locates one contiguous run of a channel's values within the
// data file: Count elements of ElementSize bytes each, Stride bytes
// apart (Stride == ElementSize for channel-major layout; Stride is the
// full tuple size for interleaved layout). Variable-width (string)
// chunks instead use TotalBytes and must be decoded as a whole.
type ChunkRef struct {
	FileOffset  int64
	Count       int
	ElementSize int
	Stride      int
	TotalBytes  int
	Engine      endian.EndianEngine
}

// chanShape is the per-segment working state of one raw-bearing channel,
// built from its emitted or carried-forward raw-index record.
type chanShape struct {
	path        string
	dataType    tdmstype.DataType
	count       int
	byteSize    int64
	elementSize int
	variable    bool
	isDAQmx     bool
	daqmxRaw    []byte
}

// index is the mutable state the scanner accumulates across segments.
type index struct {
	objects map[string]*ObjectInfo
	byHash  map[uint64]*ObjectInfo
	tracker *hash.Tracker
	chunks  map[string][]ChunkRef
	order   []string // first-appearance order of channel paths

	activeOrder []string             // channels carrying raw data, per the last kTocNewObjList segment
	lastShape   map[string]chanShape // each channel's most recently emitted full shape
}

func newIndex() *index {
	return &index{
		objects:   make(map[string]*ObjectInfo),
		byHash:    make(map[uint64]*ObjectInfo),
		tracker:   hash.NewTracker(),
		chunks:    make(map[string][]ChunkRef),
		lastShape: make(map[string]chanShape),
	}
}

func (ix *index) objectFor(path string, kind objpath.Kind) *ObjectInfo {
	if info, ok := ix.objects[path]; ok {
		return info
	}

	id, collided := ix.tracker.Track(path)

	info := &ObjectInfo{
		Path:       path,
		Kind:       kind,
		Properties: model.NewPropertySet(),
		PathHash:   id,
	}
	ix.objects[path] = info

	if !collided {
		ix.byHash[id] = info
	}

	if kind == objpath.KindChannel {
		ix.order = append(ix.order, path)
	}

	return info
}

// applySegment folds one decoded segment's meta-data (if any) into the
// running object/chunk index, then, if the segment carries raw data,
// computes the byte ranges of every raw-bearing channel.
func (ix *index) applySegment(meta segment.Meta, hasMeta bool, toc tdmstype.TocFlags, engine endian.EndianEngine, dataStart, metaLen, rawLen int64) error {
	var segmentChannels []string

	shapes := make(map[string]chanShape)

	if hasMeta {
		for _, obj := range meta.Objects {
			p, err := objpath.Parse(obj.Path)
			if err != nil {
				return fmt.Errorf("parse object path %q: %w", obj.Path, err)
			}

			info := ix.objectFor(obj.Path, p.Kind)

			for _, prop := range obj.Properties {
				info.Properties.Set(prop.Name, prop.Value)
			}

			if p.Kind != objpath.KindChannel {
				continue
			}

			info.Engine = engine

			switch obj.RawIndex.Kind {
			case segment.IndexDAQmx:
				info.DAQmxIndexBytes = obj.RawIndex.DAQmxRaw

				sh := chanShape{path: obj.Path, isDAQmx: true, daqmxRaw: obj.RawIndex.DAQmxRaw}
				shapes[obj.Path] = sh
				ix.lastShape[obj.Path] = sh

				if !contains(segmentChannels, obj.Path) {
					segmentChannels = append(segmentChannels, obj.Path)
				}
			case segment.IndexFull:
				info.DataType = obj.RawIndex.DataType

				size, fixed := obj.RawIndex.DataType.FixedSize()

				sh := chanShape{
					path:        obj.Path,
					dataType:    obj.RawIndex.DataType,
					count:       int(obj.RawIndex.NumberOfValues), //nolint:gosec
					byteSize:    int64(obj.RawIndex.ByteSize),     //nolint:gosec
					elementSize: size,
					variable:    !fixed,
				}
				shapes[obj.Path] = sh
				ix.lastShape[obj.Path] = sh

				if !contains(segmentChannels, obj.Path) {
					segmentChannels = append(segmentChannels, obj.Path)
				}
			case segment.IndexSameAsPrevious:
				if prev, ok := ix.lastShape[obj.Path]; ok {
					shapes[obj.Path] = prev
				}

				if !contains(segmentChannels, obj.Path) {
					segmentChannels = append(segmentChannels, obj.Path)
				}
			case segment.IndexAbsent:
				// Object emitted for properties only; no raw contribution.
			}
		}
	}

	var active []string

	switch {
	case toc.HasNewObjList():
		active = segmentChannels
	case hasMeta:
		active = append(append([]string(nil), ix.activeOrder...), diff(segmentChannels, ix.activeOrder)...)
	default:
		active = ix.activeOrder
	}

	ix.activeOrder = active

	if !toc.HasRawData() || len(active) == 0 {
		return nil
	}

	ordered := make([]chanShape, 0, len(active))

	for _, path := range active {
		sh, ok := shapes[path]
		if !ok {
			sh, ok = ix.lastShape[path]
		}

		if ok {
			ordered = append(ordered, sh)
		}
	}

	return ix.layoutRawPayload(ordered, toc.IsInterleaved(), engine, dataStart, metaLen, rawLen)
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}

	return false
}

func diff(newOnes, existing []string) []string {
	var out []string

	for _, v := range newOnes {
		if !contains(existing, v) {
			out = append(out, v)
		}
	}

	return out
}

// layoutRawPayload assigns byte ranges to every channel in shapes, given
// the segment's declared raw-data length. It mirrors the reference
// reader's chunk-count recovery: if the total of known byte sizes divides
// the declared raw length evenly, the segment holds that many repeated
// chunks (the in-place append optimisation's signature). A larger raw
// length that is not a multiple is rejected with ErrTruncatedSegment; a
// shorter one is read as a single truncated chunk. A segment carrying a
// string or DAQmx channel is always laid out as one chunk.
func (ix *index) layoutRawPayload(shapes []chanShape, interleaved bool, engine endian.EndianEngine, dataStart, metaLen, rawLen int64) error {
	var (
		knownTotal  int64
		daqmxShapes []chanShape
		hasVariable bool
	)

	for _, sh := range shapes {
		if sh.isDAQmx {
			daqmxShapes = append(daqmxShapes, sh)
			continue
		}

		knownTotal += sh.byteSize

		if sh.variable {
			hasVariable = true
		}
	}

	if len(daqmxShapes) > 1 {
		return fmt.Errorf("%w: multiple DAQmx channels sharing one segment cannot be disambiguated", errs.ErrDaqmxUnsupportedOperation)
	}

	raw := rawLen

	if len(daqmxShapes) == 1 {
		daqmxSize := raw - knownTotal
		if daqmxSize < 0 {
			return fmt.Errorf("%w: DAQmx raw payload shorter than declared channels", errs.ErrTruncatedSegment)
		}

		for i := range shapes {
			if shapes[i].isDAQmx {
				shapes[i].byteSize = daqmxSize
				shapes[i].elementSize = 0
			}
		}

		knownTotal = raw
	}

	if knownTotal == 0 {
		return nil
	}

	numChunks := int64(1)

	if !hasVariable && len(daqmxShapes) == 0 && raw > knownTotal {
		if raw%knownTotal != 0 {
			return fmt.Errorf("%w: raw payload size %d is not a multiple of chunk size %d", errs.ErrTruncatedSegment, raw, knownTotal)
		}

		numChunks = raw / knownTotal
	}

	truncatedChunkBytes := int64(-1)
	if raw < knownTotal {
		truncatedChunkBytes = raw
	}

	interleaveStride := 0
	if interleaved {
		for _, sh := range shapes {
			interleaveStride += sh.elementSize
		}
	}

	for c := int64(0); c < numChunks; c++ {
		blockStart := c * knownTotal
		available := knownTotal

		if c == numChunks-1 && truncatedChunkBytes >= 0 {
			available = truncatedChunkBytes
		}

		offset := int64(0)

		for _, sh := range shapes {
			ref := ChunkRef{
				FileOffset:  dataStart + segment.LeadInSize + metaLen + blockStart + offset,
				Count:       sh.count,
				ElementSize: sh.elementSize,
				Engine:      engine,
			}

			switch {
			case sh.variable:
				ref.TotalBytes = clampInt64(sh.byteSize, available-offset)
				offset += sh.byteSize
			case sh.isDAQmx:
				ref.TotalBytes = clampInt64(sh.byteSize, available-offset)
				offset += sh.byteSize
			case interleaved:
				ref.Stride = interleaveStride
				ref.Count = clampCount(sh.count, available-offset, sh.elementSize, interleaveStride)
				offset += int64(sh.elementSize)
			default:
				ref.Stride = sh.elementSize
				ref.Count = clampCount(sh.count, available-offset, sh.elementSize, sh.elementSize)
				offset += sh.byteSize
			}

			if ref.Count > 0 || ref.TotalBytes > 0 {
				ix.chunks[sh.path] = append(ix.chunks[sh.path], ref)
			}
		}
	}

	return nil
}

func clampInt64(declared, available int64) int {
	if available < declared {
		if available < 0 {
			return 0
		}

		return int(available) //nolint:gosec
	}

	return int(declared) //nolint:gosec
}

func clampCount(declaredCount int, availableBytes int64, elementSize, stride int) int {
	if elementSize == 0 || availableBytes >= int64(declaredCount)*int64(stride) {
		return declaredCount
	}

	if availableBytes < int64(elementSize) {
		return 0
	}

	fit := (availableBytes-int64(elementSize))/int64(stride) + 1
	if fit > int64(declaredCount) {
		fit = int64(declaredCount)
	}

	return int(fit) //nolint:gosec
}
