package streamzip

// ZipEntry is the entry metadata (*Ready).Next builds from a local file
// header. A local header has no comment, version-made-by or attribute
// fields, so Comment, VersionMadeBy, InternalAttrs and ExternalAttrs stay at
// their zero values; the central directory reader reports those on
// CentralDirectoryEntry instead.
type ZipEntry struct {
	Filename ZipString
	Comment  ZipString

	Method uint16

	CRC32            uint32
	UncompressedSize uint64
	CompressedSize   uint64

	VersionMadeBy    uint16
	VersionNeeded    uint16
	ModTime          DOSDateTime
	InternalAttrs    uint16
	ExternalAttrs    uint32

	ExtraFields []ExtraField

	// DataDescriptorPresent records whether bit 3 of the general-purpose
	// flags was set, i.e. whether CRC32/CompressedSize/UncompressedSize as
	// read from the local header are placeholders superseded by a trailing
	// DataDescriptor once the body has been fully read.
	DataDescriptorPresent bool

	// LocalHeaderOffset is the archive-relative byte offset of the entry's
	// LFH signature.
	LocalHeaderOffset uint64

	// DiskStart is the 0-based disk number on which the entry's local
	// header begins. It is always 0 for single-disk archives, which is all
	// this package parses (see §1 Non-goals).
	DiskStart uint32

	Encrypted bool
}

// IsDir reports whether the entry represents a directory, by the usual ZIP
// convention of a trailing slash in the filename.
func (e ZipEntry) IsDir() bool {
	name := e.Filename.String()
	return len(name) > 0 && name[len(name)-1] == '/'
}

func reconcileZip64(uncompressedSize, compressedSize uint32, localHeaderOffset *uint32, diskStart *uint16, fields []ExtraField) (uint64, uint64, uint64, uint32) {
	u64Uncompressed := uint64(uncompressedSize)
	u64Compressed := uint64(compressedSize)
	var u64Offset uint64
	if localHeaderOffset != nil {
		u64Offset = uint64(*localHeaderOffset)
	}
	var u32Disk uint32
	if diskStart != nil {
		u32Disk = uint32(*diskStart)
	}

	zip64, ok := findZip64(fields)
	if !ok {
		return u64Uncompressed, u64Compressed, u64Offset, u32Disk
	}

	if uncompressedSize == nonZip64MaxSize && zip64.UncompressedSize != nil {
		u64Uncompressed = *zip64.UncompressedSize
	}
	if compressedSize == nonZip64MaxSize && zip64.CompressedSize != nil {
		u64Compressed = *zip64.CompressedSize
	}
	if localHeaderOffset != nil && *localHeaderOffset == nonZip64MaxSize && zip64.LocalHeaderOffset != nil {
		u64Offset = *zip64.LocalHeaderOffset
	}
	if diskStart != nil && *diskStart == nonZip64MaxDisk && zip64.DiskStart != nil {
		u32Disk = *zip64.DiskStart
	}

	return u64Uncompressed, u64Compressed, u64Offset, u32Disk
}
