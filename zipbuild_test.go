package streamzip

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
)

// testEntry describes one Stored, no-data-descriptor entry for buildTestZip.
type testEntry struct {
	name string
	data []byte
}

// buildTestZip assembles a minimal, valid, single-disk ZIP archive (Stored
// compression, no ZIP64, no data descriptors) containing entries and returns
// the full byte stream. Each central directory record carries the
// archive-relative offset of its entry's local file header.
func buildTestZip(entries []testEntry) []byte {
	var buf bytes.Buffer
	offsets := make([]uint32, len(entries))

	for i, e := range entries {
		offsets[i] = uint32(buf.Len())
		writeLocalFileHeader(&buf, e.name, e.data)
	}

	cdStart := buf.Len()
	for i, e := range entries {
		writeCentralDirectoryRecord(&buf, e.name, e.data, offsets[i])
	}
	cdSize := buf.Len() - cdStart

	writeEOCDR(&buf, len(entries), cdSize, cdStart)

	return buf.Bytes()
}

func writeLocalFileHeader(buf *bytes.Buffer, name string, data []byte) {
	put32(buf, lfhSignature)
	put16(buf, 20)            // version needed
	put16(buf, 0)              // flags
	put16(buf, Store)          // method
	put16(buf, 0)              // mod time
	put16(buf, 0x21)           // mod date (1980-01-01)
	put32(buf, crc32.ChecksumIEEE(data))
	put32(buf, uint32(len(data)))
	put32(buf, uint32(len(data)))
	put16(buf, uint16(len(name)))
	put16(buf, 0) // extra field length
	buf.WriteString(name)
	buf.Write(data)
}

func writeCentralDirectoryRecord(buf *bytes.Buffer, name string, data []byte, localOffset uint32) {
	put32(buf, cdhSignature)
	put16(buf, 0x0314) // version made by (UNIX)
	put16(buf, 20)     // version needed
	put16(buf, 0)      // flags
	put16(buf, Store)  // method
	put16(buf, 0)      // mod time
	put16(buf, 0x21)   // mod date
	put32(buf, crc32.ChecksumIEEE(data))
	put32(buf, uint32(len(data)))
	put32(buf, uint32(len(data)))
	put16(buf, uint16(len(name)))
	put16(buf, 0) // extra field length
	put16(buf, 0) // comment length
	put16(buf, 0) // disk start
	put16(buf, 0) // internal attrs
	put32(buf, 0) // external attrs
	put32(buf, localOffset)
	buf.WriteString(name)
}

func writeEOCDR(buf *bytes.Buffer, entries, cdSize, cdOffset int) {
	put32(buf, eocdrSignature)
	put16(buf, 0) // disk number
	put16(buf, 0) // cd start disk
	put16(buf, uint16(entries))
	put16(buf, uint16(entries))
	put32(buf, uint32(cdSize))
	put32(buf, uint32(cdOffset))
	put16(buf, 0) // comment length
}

func put16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func put32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}
