package streamzip

// Record signatures, little-endian on the wire, used to dispatch the parser
// to the correct record type at any valid position in the stream.
const (
	lfhSignature          uint32 = 0x04034b50
	cdhSignature          uint32 = 0x02014b50
	eocdrSignature        uint32 = 0x06054b50
	zip64EocdrSignature   uint32 = 0x06064b50
	zip64EocdlSignature   uint32 = 0x07064b50
	dataDescriptorSig     uint32 = 0x08074b50
	signatureLength              = 4
)

// Fixed record body lengths, excluding the leading signature.
const (
	localFileHeaderLen  = 26
	centralDirectoryLen = 42
	eocdrLen            = 18
	zip64EocdrMinLen    = 52
	zip64EocdlLen       = 16

	dataDescriptorLen      = 12 // crc32 + compressed size (u32) + uncompressed size (u32)
	zip64DataDescriptorLen = 20 // crc32 + compressed size (u64) + uncompressed size (u64)
)

// Sentinel values signalling that the authoritative field lives in a ZIP64
// extended-information extra field instead of the fixed-width header.
const (
	nonZip64MaxSize uint32 = 0xFFFFFFFF
	nonZip64MaxDisk uint16 = 0xFFFF
)

// Compression method IDs. The built-in decompressor registry covers only
// Store and Deflate; the others need a Decompressor registered via
// RegisterDecompressor (the codec subpackage does so for all but Deflate64).
const (
	Store     uint16 = 0
	Deflate   uint16 = 8
	Deflate64 uint16 = 9
	Bzip2     uint16 = 12
	LZMA      uint16 = 14
	Zstd      uint16 = 93
	XZ        uint16 = 95
)

// Extra field header IDs.
const (
	zip64ExtraID              uint16 = 0x0001
	infoZipUnicodeCommentID   uint16 = 0x6375
	infoZipUnicodePathID      uint16 = 0x7075
)

// General purpose bit flag masks.
const (
	flagEncrypted       uint16 = 1 << 0
	flagDataDescriptor  uint16 = 1 << 3
	flagFilenameIsUTF8  uint16 = 1 << 11
)
