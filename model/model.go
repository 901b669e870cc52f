package model

import (
	"github.com/arloliu/gotdms/endian"
	"github.com/arloliu/gotdms/propvalue"
	"github.com/arloliu/gotdms/tdmstype"
)

// PropertySet is an ordered name→Value map with a dirty flag the writer
// consults when deciding whether an object needs to be re-emitted.
type PropertySet struct {
	values   *Ordered[propvalue.Value]
	modified bool
}

// NewPropertySet creates an empty PropertySet.
func NewPropertySet() *PropertySet {
	return &PropertySet{values: NewOrdered[propvalue.Value]()}
}

// Set stores name=val. The dirty flag is set unless the object already
// held the identical value, matching the reference writer's
// change-detection used to skip redundant property re-emission.
func (p *PropertySet) Set(name string, val propvalue.Value) {
	if existing, ok := p.values.Get(name); ok && existing == val {
		return
	}

	p.values.Set(name, val)
	p.modified = true
}

// Get returns the current value of name and whether it is set.
func (p *PropertySet) Get(name string) (propvalue.Value, bool) { return p.values.Get(name) }

// Modified reports whether any property changed since the last ResetModified.
func (p *PropertySet) Modified() bool { return p.modified }

// ResetModified clears the dirty flag after a successful flush.
func (p *PropertySet) ResetModified() { p.modified = false }

// All iterates properties in insertion order.
func (p *PropertySet) All(yield func(name string, val propvalue.Value) bool) { p.values.All(yield) }

// Len returns the number of properties.
func (p *PropertySet) Len() int { return p.values.Len() }

// RawIndexCache mirrors the most recently emitted raw-index record for a
// channel: the decoded shape only (type, value count, byte size), used to
// decide whether a new write's shape differs from what was last on disk.
// An opaque DAQmx raw-index record, when any, is kept in
// Channel.DAQmxIndexBytes, not here.
type RawIndexCache struct {
	DataType      tdmstype.DataType
	NumberOfValues uint64
	TotalSizeBytes uint64
	Valid          bool
}

// Matches reports whether a freshly staged chunk has the identical shape
// as the cached index, meaning the writer may encode "same as previous"
// instead of a full raw-index record.
func (c RawIndexCache) Matches(dt tdmstype.DataType, numValues, totalBytes uint64) bool {
	return c.Valid && c.DataType == dt && c.NumberOfValues == numValues && c.TotalSizeBytes == totalBytes
}

// Channel is a leaf object: an ordered sequence of raw values of one
// fixed data type and endianness, plus properties.
type Channel struct {
	Name       string
	Properties *PropertySet

	DataType DataType
	Endian   endian.EndianEngine

	// RawIndex caches the shape of the last-emitted raw-index record so
	// the writer can detect "same as previous" without re-deriving it.
	RawIndex RawIndexCache

	// DAQmxIndexBytes, when non-nil, is the opaque DAQmx raw-index blob
	// most recently read for this channel. It is preserved verbatim and
	// never reinterpreted; a channel carrying one cannot accept ordinary
	// writes (spec: ErrDaqmxUnsupportedOperation).
	DAQmxIndexBytes []byte

	typeSet bool
}

// DataType is a re-export of tdmstype.DataType for callers that only
// import model.
type DataType = tdmstype.DataType

// NewChannel creates a channel with no data type set yet; the type
// becomes fixed on the first write (spec invariant 1).
func NewChannel(name string) *Channel {
	return &Channel{Name: name, Properties: NewPropertySet()}
}

// SetDataType fixes the channel's data type and endianness on first use.
// Subsequent calls with a different data type are a caller error (spec
// ErrTypeMismatch) that the writer surfaces before calling this.
func (c *Channel) SetDataType(dt tdmstype.DataType, e endian.EndianEngine) {
	c.DataType = dt
	c.Endian = e
	c.typeSet = true
}

// TypeSet reports whether SetDataType has been called.
func (c *Channel) TypeSet() bool { return c.typeSet }

// Group holds properties and an ordered set of channels.
type Group struct {
	Name       string
	Properties *PropertySet
	Channels   *Ordered[*Channel]
}

// NewGroup creates an empty group.
func NewGroup(name string) *Group {
	return &Group{Name: name, Properties: NewPropertySet(), Channels: NewOrdered[*Channel]()}
}

// Channel returns the named channel, creating it if it does not exist.
func (g *Group) Channel(name string) *Channel {
	if ch, ok := g.Channels.Get(name); ok {
		return ch
	}

	ch := NewChannel(name)
	g.Channels.Set(name, ch)

	return ch
}

// File is the root object: file-level properties plus an ordered set of
// groups.
type File struct {
	Properties *PropertySet
	Groups     *Ordered[*Group]
}

// NewFile creates an empty file object tree.
func NewFile() *File {
	return &File{Properties: NewPropertySet(), Groups: NewOrdered[*Group]()}
}

// Group returns the named group, creating it if it does not exist.
func (f *File) Group(name string) *Group {
	if g, ok := f.Groups.Get(name); ok {
		return g
	}

	g := NewGroup(name)
	f.Groups.Set(name, g)

	return g
}

// Channel returns the channel at group/name, creating both the group and
// the channel if they do not exist (spec invariant 2: every channel path
// implies a group object).
func (f *File) Channel(group, name string) *Channel {
	return f.Group(group).Channel(name)
}
