package writer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arloliu/gotdms/codec"
	"github.com/arloliu/gotdms/endian"
	"github.com/arloliu/gotdms/errs"
	"github.com/arloliu/gotdms/internal/hash"
	"github.com/arloliu/gotdms/internal/pool"
	"github.com/arloliu/gotdms/model"
	"github.com/arloliu/gotdms/objpath"
	"github.com/arloliu/gotdms/propvalue"
	"github.com/arloliu/gotdms/segment"
	"github.com/arloliu/gotdms/tdmstype"
)

// channelRef remembers the raw (group, channel) pair behind a channelKey,
// so the writer can re-resolve the model.Channel without re-parsing keys.
type channelRef struct {
	group, channel string
}

// pendingChunk accumulates raw data staged for one channel since the last
// flush. Fixed-width and timestamp/bool values accumulate as already-
// encoded bytes; string values accumulate as raw Go strings so the whole
// staged batch can be offset-encoded as a single chunk at flush time.
type pendingChunk struct {
	group, channel string
	dataType       tdmstype.DataType
	count          int
	buf            *pool.ByteBuffer
	strings        []string

	// rawIndexOverride, when set, carries a pre-built raw-index record
	// (e.g. a DAQmx opaque blob forwarded by the defragmenter) instead of
	// one derived from dataType/count.
	rawIndexOverride *segment.RawIndexRecord
}

// Writer is the incremental, single-producer TDMS segment writer described
// by spec.md §4.F: it holds the current object/property/raw-index state
// (EffectiveState) and, on Flush, decides what must be re-emitted versus
// inherited from the previous segment.
type Writer struct {
	dataFile  *os.File
	indexFile *os.File

	engine     endian.EndianEngine
	bigEndian  bool
	interleave bool
	appendOpt  bool

	file *model.File

	channelOrder []string
	channels     map[string]channelRef
	pending      map[string]*pendingChunk
	paths        *hash.Tracker

	isFirstSegment bool

	dataOffset  int64
	indexOffset int64

	dataSegmentStart  int64
	indexSegmentStart int64

	prevRawOrder    []string
	prevInterleave  bool

	closed bool
}

// Create opens path for writing (truncating any existing file) along with
// its ".tdms_index" companion, both empty until the first Flush.
func Create(path string, opts ...Option) (*Writer, error) {
	cfg := &config{}
	if err := applyOptions(cfg, opts...); err != nil {
		return nil, err
	}

	engine := endian.GetLittleEndianEngine()
	if cfg.bigEndian {
		engine = endian.GetBigEndianEngine()
	}

	dataFile, err := os.Create(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("%w: create data file: %v", errs.ErrIo, err) //nolint:errorlint
	}

	indexFile, err := os.Create(indexPathFor(path)) //nolint:gosec
	if err != nil {
		_ = dataFile.Close()
		return nil, fmt.Errorf("%w: create index file: %v", errs.ErrIo, err) //nolint:errorlint
	}

	return &Writer{
		dataFile:       dataFile,
		indexFile:      indexFile,
		engine:         engine,
		bigEndian:      cfg.bigEndian,
		interleave:     cfg.interleave,
		appendOpt:      cfg.appendOptimization,
		file:           model.NewFile(),
		channels:       make(map[string]channelRef),
		pending:        make(map[string]*pendingChunk),
		paths:          hash.NewTracker(),
		isFirstSegment: true,
	}, nil
}

// trackPath registers path in the writer's path-hash tracker, returning
// ErrPathHashCollision if it hashes the same as a distinct, already
// tracked path. Reader.ObjectByHash relies on this index being collision
// free for every path a file's writer actually emitted.
func (w *Writer) trackPath(path string) error {
	if _, collided := w.paths.Track(path); collided {
		return fmt.Errorf("%w: %s", errs.ErrPathHashCollision, path)
	}

	return nil
}

func indexPathFor(path string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)

	return base + ".tdms_index"
}

func channelKey(group, channel string) string { return group + "/" + channel }

// SetFileProperty stages a root-level property change.
func (w *Writer) SetFileProperty(name string, value propvalue.Value) error {
	if w.closed {
		return errs.ErrWriterClosed
	}

	w.file.Properties.Set(name, value)

	return nil
}

// SetGroupProperty stages a property change on the named group, creating
// the group if it does not exist.
func (w *Writer) SetGroupProperty(group, name string, value propvalue.Value) error {
	if w.closed {
		return errs.ErrWriterClosed
	}

	w.file.Group(group).Properties.Set(name, value)

	return nil
}

// SetChannelProperty stages a property change on the named channel,
// creating the channel (and its group) if it does not exist.
func (w *Writer) SetChannelProperty(group, channel, name string, value propvalue.Value) error {
	if w.closed {
		return errs.ErrWriterClosed
	}

	w.file.Channel(group, channel).Properties.Set(name, value)

	return nil
}

// CreateChannel registers (group, channel) with the given data type. No I/O
// happens until the first write. Calling it again with a different type is
// an error; calling it again with the same type is a no-op.
func (w *Writer) CreateChannel(group, channel string, dt tdmstype.DataType) error {
	_, _, err := w.resolveChannel(group, channel, dt)
	return err
}

func (w *Writer) resolveChannel(group, channel string, dt tdmstype.DataType) (*model.Channel, string, error) {
	if w.closed {
		return nil, "", errs.ErrWriterClosed
	}

	ch := w.file.Channel(group, channel)
	key := channelKey(group, channel)

	if !ch.TypeSet() {
		if _, ok := w.channels[key]; !ok {
			if err := w.trackPath(objpath.Format(objpath.NewChannel(group, channel))); err != nil {
				return nil, "", err
			}

			w.channelOrder = append(w.channelOrder, key)
			w.channels[key] = channelRef{group: group, channel: channel}
		}

		ch.SetDataType(dt, w.engine)
	} else if ch.DataType != dt {
		return nil, "", fmt.Errorf("%w: channel %s/%s is %s, write targeted %s", errs.ErrTypeMismatch, group, channel, ch.DataType, dt)
	}

	return ch, key, nil
}

func (w *Writer) pendingFor(key, group, channel string, dt tdmstype.DataType) *pendingChunk {
	pc, ok := w.pending[key]
	if !ok {
		pc = &pendingChunk{group: group, channel: channel, dataType: dt, buf: pool.GetRawBuffer()}
		w.pending[key] = pc
	}

	return pc
}

func (w *Writer) stageBytes(group, channel string, dt tdmstype.DataType, count int, payload []byte) error {
	ch, key, err := w.resolveChannel(group, channel, dt)
	if err != nil {
		return err
	}

	if len(ch.DAQmxIndexBytes) > 0 {
		return errs.ErrDaqmxUnsupportedOperation
	}

	pc := w.pendingFor(key, group, channel, dt)
	pc.buf.MustWrite(payload)
	pc.count += count

	return nil
}

// WriteBool stages boolean values for (group, channel).
func (w *Writer) WriteBool(group, channel string, values []bool) error {
	if len(values) == 0 {
		return nil
	}

	s := codec.NewScalar(w.engine)
	buf := make([]byte, len(values))

	for i, v := range values {
		s.PutBool(buf[i:i+1], v)
	}

	return w.stageBytes(group, channel, tdmstype.Bool, len(values), buf)
}

// WriteTimestamps stages timestamp values for (group, channel).
func (w *Writer) WriteTimestamps(group, channel string, values []tdmstype.Timestamp) error {
	if len(values) == 0 {
		return nil
	}

	s := codec.NewScalar(w.engine)
	buf := make([]byte, 0, 16*len(values))
	tmp := make([]byte, 16)

	for _, v := range values {
		s.PutTimestamp(tmp, v)
		buf = append(buf, tmp...)
	}

	return w.stageBytes(group, channel, tdmstype.TimeStamp, len(values), buf)
}

// WriteStrings stages string values for (group, channel). Strings
// accumulate as raw values, not pre-encoded bytes, because the offset
// table covering an entire flush's staged strings can only be computed
// once every value staged since the last flush is known.
func (w *Writer) WriteStrings(group, channel string, values []string) error {
	if len(values) == 0 {
		return nil
	}

	ch, key, err := w.resolveChannel(group, channel, tdmstype.String)
	if err != nil {
		return err
	}

	if len(ch.DAQmxIndexBytes) > 0 {
		return errs.ErrDaqmxUnsupportedOperation
	}

	pc := w.pendingFor(key, group, channel, tdmstype.String)
	pc.strings = append(pc.strings, values...)
	pc.count += len(values)

	return nil
}

// WriteRawChunk stages an already-encoded raw chunk and its raw-index
// record verbatim, bypassing the typed Write* helpers. The defragmenter
// uses this to carry a channel's raw bytes (including an opaque DAQmx
// index) forward without reinterpreting them.
func (w *Writer) WriteRawChunk(group, channel string, rec segment.RawIndexRecord, raw []byte) error {
	if w.closed {
		return errs.ErrWriterClosed
	}

	key := channelKey(group, channel)
	ch := w.file.Channel(group, channel)

	if !ch.TypeSet() {
		if _, ok := w.channels[key]; !ok {
			if err := w.trackPath(objpath.Format(objpath.NewChannel(group, channel))); err != nil {
				return err
			}

			w.channelOrder = append(w.channelOrder, key)
			w.channels[key] = channelRef{group: group, channel: channel}
		}

		ch.SetDataType(rec.DataType, w.engine)
	}

	if rec.Kind == segment.IndexDAQmx {
		ch.DAQmxIndexBytes = rec.DAQmxRaw
	}

	pc := w.pendingFor(key, group, channel, rec.DataType)
	pc.buf.MustWrite(raw)
	pc.count += int(rec.NumberOfValues) //nolint:gosec
	rc := rec
	pc.rawIndexOverride = &rc

	return nil
}

// Flush closes the current segment: it decides the incremental delta per
// spec.md §4.F rules 1-6 and writes lead-in, meta-data, and raw payload
// (or, under the append optimisation, extends the previous segment).
func (w *Writer) Flush() error {
	if w.closed {
		return errs.ErrWriterClosed
	}

	wSet := make([]string, 0, len(w.channelOrder))

	for _, key := range w.channelOrder {
		if pc := w.pending[key]; pc != nil && (pc.count > 0 || pc.rawIndexOverride != nil) {
			wSet = append(wSet, key)
		}
	}

	anyPropChanged := w.hasPendingPropertyChanges()

	if len(wSet) == 0 && !anyPropChanged {
		return nil
	}

	shapes := make(map[string]segment.RawIndexRecord, len(wSet))
	indexChanged := make(map[string]bool, len(wSet))

	for _, key := range wSet {
		pc := w.pending[key]

		var rec segment.RawIndexRecord

		switch {
		case pc.rawIndexOverride != nil:
			rec = *pc.rawIndexOverride
		case pc.dataType == tdmstype.String:
			rec = segment.NewVariableIndex(pc.dataType, uint64(pc.count), uint64(stringChunkByteSize(pc.strings))) //nolint:gosec
		default:
			rec = segment.NewFullIndex(pc.dataType, uint64(pc.count)) //nolint:gosec
		}

		shapes[key] = rec

		if pc.rawIndexOverride != nil {
			indexChanged[key] = true
			continue
		}

		ref := w.channels[key]
		ch := w.file.Channel(ref.group, ref.channel)
		indexChanged[key] = !ch.RawIndex.Matches(rec.DataType, rec.NumberOfValues, rec.ByteSize)
	}

	anyIndexChanged := false

	for _, changed := range indexChanged {
		if changed {
			anyIndexChanged = true
			break
		}
	}

	hasMetadata := w.isFirstSegment || anyPropChanged || anyIndexChanged
	hasRawData := len(wSet) > 0

	if !hasMetadata && hasRawData && !w.isFirstSegment && w.appendOpt &&
		w.interleave == w.prevInterleave && equalStrings(wSet, w.prevRawOrder) {
		return w.appendRawOnly(wSet, shapes)
	}

	return w.writeFullSegment(wSet, shapes, indexChanged, hasMetadata, hasRawData)
}

func (w *Writer) hasPendingPropertyChanges() bool {
	if w.file.Properties.Modified() {
		return true
	}

	changed := false

	w.file.Groups.All(func(_ string, g *model.Group) bool {
		if g.Properties.Modified() {
			changed = true
			return false
		}

		g.Channels.All(func(_ string, ch *model.Channel) bool {
			if ch.Properties.Modified() {
				changed = true
				return false
			}

			return true
		})

		return !changed
	})

	return changed
}

type emitObject struct {
	key        string
	path       string
	properties []propvalue.Property
}

// objectsToEmit selects the object list for this flush per spec.md §4.F
// rule 2: when newObjList is set, every group/channel touched by wSet plus
// any object with a pending property change; otherwise only objects with a
// pending property change or a changed raw-index.
func (w *Writer) objectsToEmit(wSet []string, newObjList bool, indexChanged map[string]bool) []emitObject {
	seen := make(map[string]bool)

	var out []emitObject

	addRoot := func() {
		if seen["/"] {
			return
		}

		seen["/"] = true
		out = append(out, emitObject{path: objpath.Format(objpath.Root), properties: propsOf(w.file.Properties)})
	}

	addGroup := func(name string) {
		k := "group:" + name
		if seen[k] {
			return
		}

		seen[k] = true
		g := w.file.Group(name)
		out = append(out, emitObject{path: objpath.Format(objpath.NewGroup(name)), properties: propsOf(g.Properties)})
	}

	addChannel := func(group, channel string) {
		key := channelKey(group, channel)

		k := "chan:" + key
		if seen[k] {
			return
		}

		seen[k] = true
		ch := w.file.Channel(group, channel)
		out = append(out, emitObject{
			key:        key,
			path:       objpath.Format(objpath.NewChannel(group, channel)),
			properties: propsOf(ch.Properties),
		})
	}

	if newObjList {
		for _, key := range wSet {
			addGroup(w.channels[key].group)
		}

		for _, key := range wSet {
			ref := w.channels[key]
			addChannel(ref.group, ref.channel)
		}
	}

	if w.file.Properties.Modified() {
		addRoot()
	}

	w.file.Groups.All(func(gname string, g *model.Group) bool {
		if g.Properties.Modified() {
			addGroup(gname)
		}

		g.Channels.All(func(cname string, ch *model.Channel) bool {
			key := channelKey(gname, cname)
			if ch.Properties.Modified() || indexChanged[key] {
				addChannel(gname, cname)
			}

			return true
		})

		return true
	})

	return out
}

func propsOf(ps *model.PropertySet) []propvalue.Property {
	props := make([]propvalue.Property, 0, ps.Len())

	ps.All(func(name string, val propvalue.Value) bool {
		props = append(props, propvalue.Property{Name: name, Value: val})
		return true
	})

	return props
}

func (w *Writer) writeFullSegment(
	wSet []string,
	shapes map[string]segment.RawIndexRecord,
	indexChanged map[string]bool,
	hasMetadata, hasRawData bool,
) error {
	newObjList := w.isFirstSegment || !equalStrings(wSet, w.prevRawOrder)

	toc := tdmstype.TocFlags(0)
	if hasMetadata || newObjList {
		toc = toc.With(tdmstype.TocMetaData)
	}

	if hasRawData {
		toc = toc.With(tdmstype.TocRawData)
	}

	if newObjList {
		toc = toc.With(tdmstype.TocNewObjList)
	}

	if w.interleave {
		toc = toc.With(tdmstype.TocInterleavedData)
	}

	if w.bigEndian {
		toc = toc.With(tdmstype.TocBigEndian)
	}

	objects := w.objectsToEmit(wSet, newObjList, indexChanged)

	meta := segment.Meta{Objects: make([]segment.ObjectRecord, 0, len(objects))}

	for _, obj := range objects {
		rec := segment.RawIndexRecord{Kind: segment.IndexAbsent}

		if pc := w.pending[obj.key]; obj.key != "" && pc != nil && (pc.count > 0 || pc.rawIndexOverride != nil) {
			if indexChanged[obj.key] {
				rec = shapes[obj.key]
			} else {
				rec = segment.RawIndexRecord{Kind: segment.IndexSameAsPrevious}
			}
		}

		meta.Objects = append(meta.Objects, segment.ObjectRecord{
			Path:       obj.path,
			RawIndex:   rec,
			Properties: obj.properties,
		})
	}

	var (
		metaBytes []byte
		err       error
	)

	if toc.HasMetaData() {
		metaBytes, err = segment.EncodeMeta(meta, w.engine)
		if err != nil {
			return fmt.Errorf("encode segment meta: %w", err)
		}
	}

	rawBytes, err := w.buildRawPayload(wSet)
	if err != nil {
		return err
	}

	w.dataSegmentStart = w.dataOffset
	dataSeg := segment.Build(segment.TagData, toc, metaBytes, rawBytes)

	if _, err := w.dataFile.Write(dataSeg); err != nil {
		return fmt.Errorf("%w: write data segment: %v", errs.ErrIo, err) //nolint:errorlint
	}

	w.dataOffset += int64(len(dataSeg))

	w.indexSegmentStart = w.indexOffset
	indexSeg := buildIndexSegment(toc, metaBytes, len(rawBytes))

	if _, err := w.indexFile.Write(indexSeg); err != nil {
		return fmt.Errorf("%w: write index segment: %v", errs.ErrIo, err) //nolint:errorlint
	}

	w.indexOffset += int64(len(indexSeg))

	w.finishFlush(wSet, shapes)

	return nil
}

func buildIndexSegment(toc tdmstype.TocFlags, metaBytes []byte, rawLen int) []byte {
	h := segment.Header{
		Tag:           segment.TagIndex,
		Toc:           toc,
		Version:       segment.VersionCurrent,
		RawDataOffset: uint64(len(metaBytes)),               //nolint:gosec
		NextSegOffset: uint64(len(metaBytes) + rawLen), //nolint:gosec
	}

	out := make([]byte, segment.LeadInSize+len(metaBytes))
	h.Encode(out)
	copy(out[segment.LeadInSize:], metaBytes)

	return out
}

func (w *Writer) buildRawPayload(wSet []string) ([]byte, error) {
	channels := make([]segment.RawChannelData, 0, len(wSet))

	for _, key := range wSet {
		pc := w.pending[key]

		switch {
		case pc.rawIndexOverride != nil:
			channels = append(channels, segment.RawChannelData{ElementSize: 0, Count: pc.count, Bytes: pc.buf.Bytes()})
		case pc.dataType == tdmstype.String:
			payload := segment.EncodeStringChunk(pc.strings, w.engine)
			channels = append(channels, segment.RawChannelData{ElementSize: 0, Count: pc.count, Bytes: payload})
		default:
			size, _ := pc.dataType.FixedSize()
			channels = append(channels, segment.RawChannelData{ElementSize: size, Count: pc.count, Bytes: pc.buf.Bytes()})
		}
	}

	return segment.EncodeRawPayload(channels, w.interleave)
}

func (w *Writer) appendRawOnly(wSet []string, shapes map[string]segment.RawIndexRecord) error {
	rawBytes, err := w.buildRawPayload(wSet)
	if err != nil {
		return err
	}

	if _, err := w.dataFile.Write(rawBytes); err != nil {
		return fmt.Errorf("%w: append raw data: %v", errs.ErrIo, err) //nolint:errorlint
	}

	w.dataOffset += int64(len(rawBytes))

	if err := patchNextSegOffset(w.dataFile, w.dataSegmentStart, uint64(len(rawBytes))); err != nil { //nolint:gosec
		return err
	}

	if err := patchNextSegOffset(w.indexFile, w.indexSegmentStart, uint64(len(rawBytes))); err != nil { //nolint:gosec
		return err
	}

	w.finishFlush(wSet, shapes)

	return nil
}

func patchNextSegOffset(f *os.File, segmentStart int64, delta uint64) error {
	buf := make([]byte, 8)
	if _, err := f.ReadAt(buf, segmentStart+12); err != nil {
		return fmt.Errorf("%w: read next_seg_offset: %v", errs.ErrIo, err) //nolint:errorlint
	}

	cur := binary.LittleEndian.Uint64(buf)
	binary.LittleEndian.PutUint64(buf, cur+delta)

	if _, err := f.WriteAt(buf, segmentStart+12); err != nil {
		return fmt.Errorf("%w: patch next_seg_offset: %v", errs.ErrIo, err) //nolint:errorlint
	}

	return nil
}

func (w *Writer) finishFlush(wSet []string, shapes map[string]segment.RawIndexRecord) {
	w.file.Properties.ResetModified()

	w.file.Groups.All(func(_ string, g *model.Group) bool {
		g.Properties.ResetModified()

		g.Channels.All(func(_ string, ch *model.Channel) bool {
			ch.Properties.ResetModified()
			return true
		})

		return true
	})

	for _, key := range wSet {
		ref := w.channels[key]
		ch := w.file.Channel(ref.group, ref.channel)
		rec := shapes[key]
		ch.RawIndex = model.RawIndexCache{
			DataType:       rec.DataType,
			NumberOfValues: rec.NumberOfValues,
			TotalSizeBytes: rec.ByteSize,
			Valid:          true,
		}
	}

	for _, pc := range w.pending {
		pc.count = 0
		pc.buf.Reset()
		pc.strings = nil
		pc.rawIndexOverride = nil
	}

	if len(wSet) > 0 {
		w.prevRawOrder = append([]string(nil), wSet...)
	}

	w.prevInterleave = w.interleave
	w.isFirstSegment = false
}

// Close flushes any pending writes and releases the underlying file
// handles. Calling any other method after Close returns ErrWriterClosed.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}

	flushErr := w.Flush()
	w.closed = true

	for _, pc := range w.pending {
		pool.PutRawBuffer(pc.buf)
	}

	closeErr := errors.Join(w.dataFile.Close(), w.indexFile.Close())

	return errors.Join(flushErr, closeErr)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func stringChunkByteSize(values []string) int {
	total := 4 * len(values)
	for _, v := range values {
		total += len(v)
	}

	return total
}
