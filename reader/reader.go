// Package reader implements the random-access TDMS reader: it scans a
// file's segments once at Open, building an object index (resolved
// property state per File/Group/Channel) and a per-channel chunk index,
// then serves typed channel reads against those indexes without
// rescanning. When a sibling ".tdms_index" file is present its meta-only
// segments are consulted instead of the data file, skipping the raw
// payload entirely during the scan.
package reader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arloliu/gotdms/endian"
	"github.com/arloliu/gotdms/errs"
	"github.com/arloliu/gotdms/objpath"
	"github.com/arloliu/gotdms/segment"
)

// Reader provides random-access queries over a TDMS file's segments. It
// is built once at Open and is immutable afterward: many goroutines may
// share a Reader, each calling ReadNumeric/ReadNumericRange/ReadBool/
// ReadStrings/ReadTimestamps concurrently,
// as long as each uses its own positioned read against the data file.
type Reader struct {
	dataFile *os.File
	ix       *index

	segmentCount int
	truncated    bool
}

// Open scans path (and, if present, its ".tdms_index" companion) and
// builds the object and chunk indexes.
func Open(path string) (*Reader, error) {
	dataFile, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", errs.ErrIo, path, err) //nolint:errorlint
	}

	r := &Reader{dataFile: dataFile}

	if ok, err := r.tryIndexFile(indexPathFor(path)); err != nil {
		_ = dataFile.Close()
		return nil, err
	} else if ok {
		return r, nil
	}

	if err := r.scanDataFile(); err != nil {
		_ = dataFile.Close()
		return nil, err
	}

	return r, nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.dataFile.Close()
}

// Segments returns the number of segments discovered in the file.
func (r *Reader) Segments() int { return r.segmentCount }

// Truncated reports whether the file's final segment was recovered from
// a crash-truncated next_seg_offset sentinel.
func (r *Reader) Truncated() bool { return r.truncated }

// Channels returns every channel path in first-appearance order.
func (r *Reader) Channels() []string {
	return append([]string(nil), r.ix.order...)
}

// Object returns the resolved property/type state of the object at path
// (in on-disk quoted form, e.g. "/'G'/'C'").
func (r *Reader) Object(path string) (*ObjectInfo, bool) {
	info, ok := r.ix.objects[path]
	return info, ok
}

// ObjectByHash looks up an object by the xxHash64 of its path, the same
// fast path the writer's duplicate-path guard uses.
func (r *Reader) ObjectByHash(id uint64) (*ObjectInfo, bool) {
	info, ok := r.ix.byHash[id]
	return info, ok
}

func indexPathFor(path string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)

	return base + ".tdms_index"
}

// tryIndexFile attempts the ".tdms_index" fast path: parsing meta-only
// segments from idxPath while computing raw-byte ranges that point into
// the data file. It reports ok=false (not an error) when the companion
// file is absent, tagged wrong, or contains a truncated segment the
// index alone cannot recover from, so the caller falls back to scanning
// the data file directly.
func (r *Reader) tryIndexFile(idxPath string) (ok bool, err error) {
	data, err := os.ReadFile(idxPath) //nolint:gosec
	if err != nil {
		return false, nil
	}

	ix := newIndex()

	var (
		indexOffset int64
		dataOffset  int64
		count       int
	)

	for indexOffset < int64(len(data)) {
		if int64(len(data))-indexOffset < segment.LeadInSize {
			break
		}

		h, err := segment.DecodeHeader(data[indexOffset:])
		if err != nil {
			return false, nil //nolint:nilerr
		}

		if h.Tag != segment.TagIndex || h.Incomplete() {
			return false, nil
		}

		engine := engineFor(h)
		metaLen := int64(h.RawDataOffset)

		var (
			meta    segment.Meta
			hasMeta bool
		)

		if h.Toc.HasMetaData() && metaLen > 0 {
			if int64(len(data))-indexOffset-segment.LeadInSize < metaLen {
				return false, nil
			}

			meta, _, err = segment.DecodeMeta(data[indexOffset+segment.LeadInSize:indexOffset+segment.LeadInSize+metaLen], engine)
			if err != nil {
				return false, nil //nolint:nilerr
			}

			hasMeta = true
		}

		rawLen := int64(h.NextSegOffset) - metaLen
		if rawLen < 0 {
			return false, nil
		}

		if err := ix.applySegment(meta, hasMeta, h.Toc, engine, dataOffset, metaLen, rawLen); err != nil {
			return false, fmt.Errorf("apply index-file segment %d: %w", count, err)
		}

		count++
		dataOffset += segment.LeadInSize + metaLen + rawLen
		indexOffset += segment.LeadInSize + metaLen
	}

	r.ix = ix
	r.segmentCount = count
	r.truncated = false

	return true, nil
}

// scanDataFile parses lead-in and meta-data directly from the data file,
// skipping raw payload bytes by length, and recovers a crash-truncated
// final segment per spec: the preceding segments plus as many whole
// values of the final chunk as fit.
func (r *Reader) scanDataFile() error {
	stat, err := r.dataFile.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat: %v", errs.ErrIo, err) //nolint:errorlint
	}

	fileSize := stat.Size()
	ix := newIndex()

	var offset int64

	count := 0

	for offset < fileSize {
		if fileSize-offset < segment.LeadInSize {
			break
		}

		leadIn := make([]byte, segment.LeadInSize)
		if _, err := r.dataFile.ReadAt(leadIn, offset); err != nil {
			return fmt.Errorf("%w: read lead-in at %d: %v", errs.ErrIo, offset, err) //nolint:errorlint
		}

		h, err := segment.DecodeHeader(leadIn)
		if err != nil {
			return fmt.Errorf("decode segment %d: %w", count, err)
		}

		engine := engineFor(h)
		metaLen := int64(h.RawDataOffset)

		var (
			meta    segment.Meta
			hasMeta bool
		)

		if h.Toc.HasMetaData() && metaLen > 0 {
			metaBytes := make([]byte, metaLen)
			if _, err := r.dataFile.ReadAt(metaBytes, offset+segment.LeadInSize); err != nil {
				return fmt.Errorf("%w: read meta at %d: %v", errs.ErrIo, offset+segment.LeadInSize, err) //nolint:errorlint
			}

			meta, _, err = segment.DecodeMeta(metaBytes, engine)
			if err != nil {
				return fmt.Errorf("decode meta for segment %d: %w", count, err)
			}

			hasMeta = true
		}

		var (
			rawLen    int64
			truncated bool
		)

		if h.Incomplete() {
			rawLen = fileSize - offset - segment.LeadInSize - metaLen
			if rawLen < 0 {
				rawLen = 0
			}

			truncated = true
		} else {
			rawLen = int64(h.NextSegOffset) - metaLen
		}

		if err := ix.applySegment(meta, hasMeta, h.Toc, engine, offset, metaLen, rawLen); err != nil {
			return fmt.Errorf("apply segment %d: %w", count, err)
		}

		count++
		offset += segment.LeadInSize + metaLen + rawLen

		if truncated {
			r.truncated = true
			break
		}
	}

	r.ix = ix
	r.segmentCount = count

	return nil
}

func engineFor(h segment.Header) endian.EndianEngine {
	if h.Toc.IsBigEndian() {
		return endian.GetBigEndianEngine()
	}

	return endian.GetLittleEndianEngine()
}

// channelPath formats (group, channel) into the on-disk quoted path used
// as the index's map key, matching what the writer emits.
func channelPath(group, channel string) string {
	return objpath.Format(objpath.NewChannel(group, channel))
}
