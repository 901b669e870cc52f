package tdmstype

// TocFlags is the table-of-contents bitmask carried in every segment's
// lead-in. Lead-in scalars and the ToC itself are always little-endian,
// regardless of the endianness the bits describe for meta/raw regions.
type TocFlags uint32

const (
	TocMetaData        TocFlags = 1 << 1
	TocNewObjList      TocFlags = 1 << 2
	TocRawData         TocFlags = 1 << 3
	TocInterleavedData TocFlags = 1 << 5
	TocBigEndian       TocFlags = 1 << 6
	TocDAQmxRawData    TocFlags = 1 << 7
)

func (f TocFlags) Has(bit TocFlags) bool { return f&bit != 0 }

func (f TocFlags) HasMetaData() bool     { return f.Has(TocMetaData) }
func (f TocFlags) HasNewObjList() bool   { return f.Has(TocNewObjList) }
func (f TocFlags) HasRawData() bool      { return f.Has(TocRawData) }
func (f TocFlags) IsInterleaved() bool   { return f.Has(TocInterleavedData) }
func (f TocFlags) IsBigEndian() bool     { return f.Has(TocBigEndian) }
func (f TocFlags) HasDAQmxRawData() bool { return f.Has(TocDAQmxRawData) }

func (f TocFlags) With(bit TocFlags) TocFlags    { return f | bit }
func (f TocFlags) Without(bit TocFlags) TocFlags { return f &^ bit }
