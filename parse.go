package streamzip

import (
	"encoding/binary"
	"io"
)

func leUint16(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }
func leUint32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }
func leUint64(b []byte) uint64 { return binary.LittleEndian.Uint64(b) }

// readBuf is a cursor over a byte slice that peels off little-endian scalars
// as they're consumed, in the style of archive/zip's internal reader.
type readBuf []byte

func (b *readBuf) uint16() uint16 {
	v := leUint16(*b)
	*b = (*b)[2:]
	return v
}

func (b *readBuf) uint32() uint32 {
	v := leUint32(*b)
	*b = (*b)[4:]
	return v
}

// parseLocalFileHeader decodes the 26-byte fixed body of a local file header
// from buf. The caller is responsible for having already consumed the
// lfhSignature.
func parseLocalFileHeader(buf [localFileHeaderLen]byte) LocalFileHeader {
	b := readBuf(buf[:])
	return LocalFileHeader{
		VersionNeeded:    b.uint16(),
		Flags:            newGeneralPurposeFlag(b.uint16()),
		Method:           b.uint16(),
		ModTime:          b.uint16(),
		ModDate:          b.uint16(),
		CRC32:            b.uint32(),
		CompressedSize:   b.uint32(),
		UncompressedSize: b.uint32(),
		FilenameLength:   b.uint16(),
		ExtraFieldLength: b.uint16(),
	}
}

// parseCentralDirectoryRecord decodes the 42-byte fixed body of a central
// directory record from buf. The caller is responsible for having already
// consumed the cdhSignature.
func parseCentralDirectoryRecord(buf [centralDirectoryLen]byte) CentralDirectoryRecord {
	b := readBuf(buf[:])
	return CentralDirectoryRecord{
		VersionMadeBy:     b.uint16(),
		VersionNeeded:     b.uint16(),
		Flags:             newGeneralPurposeFlag(b.uint16()),
		Method:            b.uint16(),
		ModTime:           b.uint16(),
		ModDate:           b.uint16(),
		CRC32:             b.uint32(),
		CompressedSize:    b.uint32(),
		UncompressedSize:  b.uint32(),
		FilenameLength:    b.uint16(),
		ExtraFieldLength:  b.uint16(),
		CommentLength:     b.uint16(),
		DiskStart:         b.uint16(),
		InternalAttrs:     b.uint16(),
		ExternalAttrs:     b.uint32(),
		LocalHeaderOffset: b.uint32(),
	}
}

// parseEndOfCentralDirectoryRecord decodes the 18-byte fixed body of an
// EOCDR from buf. The caller is responsible for having already consumed the
// eocdrSignature.
func parseEndOfCentralDirectoryRecord(buf [eocdrLen]byte) EndOfCentralDirectoryRecord {
	b := readBuf(buf[:])
	return EndOfCentralDirectoryRecord{
		DiskNumber:        b.uint16(),
		CDStartDisk:       b.uint16(),
		EntriesOnThisDisk: b.uint16(),
		Entries:           b.uint16(),
		CDSize:            b.uint32(),
		CDOffset:          b.uint32(),
		CommentLength:     b.uint16(),
	}
}

// parseZip64EndOfCentralDirectoryRecord decodes the fixed 52-byte body of a
// ZIP64 EOCDR from buf, whose own first 8 bytes are the record's
// SizeOfRecord field. The caller is responsible for having already consumed
// the zip64EocdrSignature that precedes this body on the wire.
func parseZip64EndOfCentralDirectoryRecord(buf [zip64EocdrMinLen]byte) Zip64EndOfCentralDirectoryRecord {
	return Zip64EndOfCentralDirectoryRecord{
		SizeOfRecord:      leUint64(buf[0:8]),
		VersionMadeBy:     leUint16(buf[8:10]),
		VersionNeeded:     leUint16(buf[10:12]),
		DiskNumber:        leUint32(buf[12:16]),
		CDStartDisk:       leUint32(buf[16:20]),
		EntriesOnThisDisk: leUint64(buf[20:28]),
		Entries:           leUint64(buf[28:36]),
		CDSize:            leUint64(buf[36:44]),
		CDOffset:          leUint64(buf[44:52]),
	}
}

// parseZip64EndOfCentralDirectoryLocator decodes the 16-byte body of a
// ZIP64 EOCDR locator from buf. The caller is responsible for having already
// consumed the zip64EocdlSignature.
func parseZip64EndOfCentralDirectoryLocator(buf [zip64EocdlLen]byte) Zip64EndOfCentralDirectoryLocator {
	return Zip64EndOfCentralDirectoryLocator{
		DiskWithZip64Eocdr: leUint32(buf[0:4]),
		RelativeOffset:     leUint64(buf[4:12]),
		TotalDisks:         leUint32(buf[12:16]),
	}
}

// parseDataDescriptor decodes a trailing data descriptor, handling the
// optional 4-byte dataDescriptorSig prefix as described in §4.4: the first 4
// bytes are read and checked against the signature; if they match, a further
// signatureLength bytes complete the descriptor, otherwise those first 4
// bytes are the CRC32 and the descriptor continues immediately.
func parseDataDescriptor(r io.Reader) (DataDescriptor, error) {
	var buf [dataDescriptorLen]byte
	if err := readExact(r, buf[:]); err != nil {
		return DataDescriptor{}, err
	}
	if leUint32(buf[0:4]) == dataDescriptorSig {
		var tail [signatureLength]byte
		if err := readExact(r, tail[:]); err != nil {
			return DataDescriptor{}, err
		}
		return DataDescriptor{
			CRC32:            leUint32(buf[4:8]),
			CompressedSize:   leUint32(buf[8:12]),
			UncompressedSize: leUint32(tail[0:4]),
		}, nil
	}
	return DataDescriptor{
		CRC32:            leUint32(buf[0:4]),
		CompressedSize:   leUint32(buf[4:8]),
		UncompressedSize: leUint32(buf[8:12]),
	}, nil
}

// parseZip64DataDescriptor is the ZIP64 counterpart of parseDataDescriptor:
// the CRC32 remains 32 bits but the two sizes widen to 64 bits.
func parseZip64DataDescriptor(r io.Reader) (Zip64DataDescriptor, error) {
	var sig [signatureLength]byte
	if err := readExact(r, sig[:]); err != nil {
		return Zip64DataDescriptor{}, err
	}
	if leUint32(sig[:]) == dataDescriptorSig {
		var body [zip64DataDescriptorLen]byte
		if err := readExact(r, body[:]); err != nil {
			return Zip64DataDescriptor{}, err
		}
		return Zip64DataDescriptor{
			CRC32:            leUint32(body[0:4]),
			CompressedSize:   leUint64(body[4:12]),
			UncompressedSize: leUint64(body[12:20]),
		}, nil
	}
	var rest [zip64DataDescriptorLen - signatureLength]byte
	if err := readExact(r, rest[:]); err != nil {
		return Zip64DataDescriptor{}, err
	}
	return Zip64DataDescriptor{
		CRC32:            leUint32(sig[:]),
		CompressedSize:   leUint64(rest[0:8]),
		UncompressedSize: leUint64(rest[8:16]),
	}, nil
}
