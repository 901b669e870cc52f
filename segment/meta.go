package segment

import (
	"fmt"

	"github.com/arloliu/gotdms/codec"
	"github.com/arloliu/gotdms/endian"
	"github.com/arloliu/gotdms/errs"
	"github.com/arloliu/gotdms/propvalue"
	"github.com/arloliu/gotdms/tdmstype"
)

// ObjectRecord is one object's entry in a segment's meta-data region: its
// on-disk path, its raw-index record (possibly absent), and the
// properties emitted for it in this segment.
type ObjectRecord struct {
	Path       string
	RawIndex   RawIndexRecord
	Properties []propvalue.Property
}

// Meta is the fully decoded object list of one segment's meta-data region.
type Meta struct {
	Objects []ObjectRecord
}

// EncodeMeta serializes m using engine for the string and property
// encoding (the meta-data region's endianness, selected by the segment's
// TocBigEndian bit).
func EncodeMeta(m Meta, engine endian.EndianEngine) ([]byte, error) {
	s := codec.NewScalar(engine)
	str := codec.NewStringCodec(engine)
	pv := propvalue.NewCodec(engine)

	buf := s.AppendU32(nil, uint32(len(m.Objects))) //nolint:gosec

	for _, obj := range m.Objects {
		buf = str.AppendString(buf, obj.Path)
		buf = obj.RawIndex.Append(buf, s)
		buf = s.AppendU32(buf, uint32(len(obj.Properties))) //nolint:gosec

		for _, p := range obj.Properties {
			buf = str.AppendString(buf, p.Name)

			var err error

			buf, err = pv.AppendValue(buf, p.Value)
			if err != nil {
				return nil, fmt.Errorf("encode property %q of %q: %w", p.Name, obj.Path, err)
			}
		}
	}

	return buf, nil
}

// DecodeMeta parses a meta-data region from the front of src, returning
// the decoded object list and the number of bytes consumed.
func DecodeMeta(src []byte, engine endian.EndianEngine) (Meta, int, error) {
	s := codec.NewScalar(engine)
	str := codec.NewStringCodec(engine)
	pv := propvalue.NewCodec(engine)

	if len(src) < 4 {
		return Meta{}, 0, fmt.Errorf("%w: object count", errs.ErrIo)
	}

	n := s.U32(src)
	off := 4

	objects := make([]ObjectRecord, 0, n)

	for range n {
		path, used, err := str.DecodeString(src[off:])
		if err != nil {
			return Meta{}, 0, fmt.Errorf("decode object path: %w", err)
		}
		off += used

		idx, used, err := DecodeRawIndex(src[off:], s)
		if err != nil {
			return Meta{}, 0, fmt.Errorf("decode raw index for %q: %w", path, err)
		}
		off += used

		if len(src)-off < 4 {
			return Meta{}, 0, fmt.Errorf("%w: property count for %q", errs.ErrIo, path)
		}

		nprops := s.U32(src[off:])
		off += 4

		props := make([]propvalue.Property, 0, nprops)
		needsUnit := false

		for range nprops {
			name, used, err := str.DecodeString(src[off:])
			if err != nil {
				return Meta{}, 0, fmt.Errorf("decode property name of %q: %w", path, err)
			}
			off += used

			if len(src)-off < 4 {
				return Meta{}, 0, fmt.Errorf("%w: property type code for %q of %q", errs.ErrIo, name, path)
			}

			typeCode := tdmstype.DataType(s.U32(src[off:]))

			val, used, err := pv.DecodeValue(src[off:])
			if err != nil {
				return Meta{}, 0, fmt.Errorf("decode property %q of %q: %w", name, path, err)
			}
			off += used

			if _, isUnit := propvalue.DecodeUnitValue(typeCode); isUnit {
				needsUnit = true
			}

			props = append(props, propvalue.Property{Name: name, Value: val})
		}

		if needsUnit && !hasUnitStringProperty(props) {
			props = append(props, propvalue.Property{
				Name:  propvalue.UnitStringPropertyName,
				Value: propvalue.StringValue(""),
			})
		}

		objects = append(objects, ObjectRecord{Path: path, RawIndex: idx, Properties: props})
	}

	return Meta{Objects: objects}, off, nil
}

// hasUnitStringProperty reports whether props already names a unit_string
// property, so DecodeMeta only synthesizes one for a decoded F32Unit/
// F64Unit value when the source file didn't already emit it explicitly.
func hasUnitStringProperty(props []propvalue.Property) bool {
	for _, p := range props {
		if p.Name == propvalue.UnitStringPropertyName {
			return true
		}
	}

	return false
}
