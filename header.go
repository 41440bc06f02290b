package streamzip

// GeneralPurposeFlag decodes the three bits of the general-purpose flag word
// that this package cares about. The remaining bits are preserved verbatim in
// Raw for callers that need them, but this package does not attempt to
// round-trip them.
type GeneralPurposeFlag struct {
	Raw uint16

	Encrypted        bool
	DataDescriptor   bool
	FilenameIsUTF8   bool
}

func newGeneralPurposeFlag(raw uint16) GeneralPurposeFlag {
	return GeneralPurposeFlag{
		Raw:            raw,
		Encrypted:      raw&flagEncrypted != 0,
		DataDescriptor: raw&flagDataDescriptor != 0,
		FilenameIsUTF8: raw&flagFilenameIsUTF8 != 0,
	}
}

// LocalFileHeader is the 26-byte fixed body of a local file header, preceded
// on the wire by the 4-byte lfhSignature.
type LocalFileHeader struct {
	VersionNeeded    uint16
	Flags            GeneralPurposeFlag
	Method           uint16
	ModTime          uint16
	ModDate          uint16
	CRC32            uint32
	CompressedSize   uint32
	UncompressedSize uint32
	FilenameLength   uint16
	ExtraFieldLength uint16
}

// CentralDirectoryRecord is the 42-byte fixed body of a central directory
// file header, preceded on the wire by the 4-byte cdhSignature.
type CentralDirectoryRecord struct {
	VersionMadeBy     uint16
	VersionNeeded     uint16
	Flags             GeneralPurposeFlag
	Method            uint16
	ModTime           uint16
	ModDate           uint16
	CRC32             uint32
	CompressedSize    uint32
	UncompressedSize  uint32
	FilenameLength    uint16
	ExtraFieldLength  uint16
	CommentLength     uint16
	DiskStart         uint16
	InternalAttrs     uint16
	ExternalAttrs     uint32
	LocalHeaderOffset uint32
}

// EndOfCentralDirectoryRecord is the 18-byte fixed body of the EOCDR,
// preceded on the wire by the 4-byte eocdrSignature.
type EndOfCentralDirectoryRecord struct {
	DiskNumber          uint16
	CDStartDisk         uint16
	EntriesOnThisDisk   uint16
	Entries             uint16
	CDSize              uint32
	CDOffset            uint32
	CommentLength       uint16
}

// Zip64EndOfCentralDirectoryRecord is the fixed 52-byte body of the ZIP64
// EOCDR (the "size" field may indicate further, vendor-specific bytes
// following it, which this package does not parse), preceded on the wire by
// the 4-byte zip64EocdrSignature.
type Zip64EndOfCentralDirectoryRecord struct {
	SizeOfRecord        uint64
	VersionMadeBy       uint16
	VersionNeeded       uint16
	DiskNumber          uint32
	CDStartDisk         uint32
	EntriesOnThisDisk   uint64
	Entries             uint64
	CDSize              uint64
	CDOffset            uint64
}

// Zip64EndOfCentralDirectoryLocator is the 16-byte body of the ZIP64 EOCDR
// locator, preceded on the wire by the 4-byte zip64EocdlSignature.
type Zip64EndOfCentralDirectoryLocator struct {
	DiskWithZip64Eocdr uint32
	RelativeOffset     uint64
	TotalDisks         uint32
}

// DataDescriptor is the 32-bit trailing descriptor following an entry body
// when GeneralPurposeFlag.DataDescriptor is set on its local header and no
// ZIP64 extended-information extra field is present on it.
type DataDescriptor struct {
	CRC32            uint32
	CompressedSize   uint32
	UncompressedSize uint32
}

// Zip64DataDescriptor is the 64-bit variant of DataDescriptor, used when the
// owning local header carries a ZIP64 extended-information extra field.
type Zip64DataDescriptor struct {
	CRC32            uint32
	CompressedSize   uint64
	UncompressedSize uint64
}
