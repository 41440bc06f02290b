package streamzip

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Byte vectors below are grounded in the original Rust implementation's own
// unit tests for the same records, translated to Go array literals.

func TestParseZip64EndOfCentralDirectoryRecord(t *testing.T) {
	raw := []byte{
		0x2C, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x1E, 0x03, 0x2D, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x2F, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x40, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00,
	}
	require.Len(t, raw, zip64EocdrMinLen)
	var buf [zip64EocdrMinLen]byte
	copy(buf[:], raw)

	got := parseZip64EndOfCentralDirectoryRecord(buf)
	assert.Equal(t, Zip64EndOfCentralDirectoryRecord{
		SizeOfRecord:      44,
		VersionMadeBy:     798,
		VersionNeeded:     45,
		DiskNumber:        0,
		CDStartDisk:       0,
		EntriesOnThisDisk: 1,
		Entries:           1,
		CDSize:            47,
		CDOffset:          64,
	}, got)
}

func TestParseZip64EndOfCentralDirectoryLocator(t *testing.T) {
	raw := []byte{
		0x00, 0x00, 0x00, 0x00, 0x6F, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00,
		0x00, 0x00,
	}
	require.Len(t, raw, zip64EocdlLen)
	var buf [zip64EocdlLen]byte
	copy(buf[:], raw)

	got := parseZip64EndOfCentralDirectoryLocator(buf)
	assert.Equal(t, Zip64EndOfCentralDirectoryLocator{
		DiskWithZip64Eocdr: 0,
		RelativeOffset:     111,
		TotalDisks:         1,
	}, got)
}

func TestParseDataDescriptorWithoutSignature(t *testing.T) {
	var raw bytes.Buffer
	raw.Write(leBytes32(0xDEADBEEF)) // crc32
	raw.Write(leBytes32(1234))       // compressed size
	raw.Write(leBytes32(5678))       // uncompressed size

	got, err := parseDataDescriptor(&raw)
	require.NoError(t, err)
	assert.Equal(t, DataDescriptor{CRC32: 0xDEADBEEF, CompressedSize: 1234, UncompressedSize: 5678}, got)
}

func TestParseDataDescriptorWithSignature(t *testing.T) {
	var raw bytes.Buffer
	raw.Write(leBytes32(dataDescriptorSig))
	raw.Write(leBytes32(0xCAFEBABE))
	raw.Write(leBytes32(111))
	raw.Write(leBytes32(222))

	got, err := parseDataDescriptor(&raw)
	require.NoError(t, err)
	assert.Equal(t, DataDescriptor{CRC32: 0xCAFEBABE, CompressedSize: 111, UncompressedSize: 222}, got)
}

func TestParseZip64DataDescriptorWithSignature(t *testing.T) {
	var raw bytes.Buffer
	raw.Write(leBytes32(dataDescriptorSig))
	raw.Write(leBytes32(0x1))
	raw.Write(leBytes64(1 << 33))
	raw.Write(leBytes64(1 << 34))

	got, err := parseZip64DataDescriptor(&raw)
	require.NoError(t, err)
	assert.Equal(t, Zip64DataDescriptor{CRC32: 1, CompressedSize: 1 << 33, UncompressedSize: 1 << 34}, got)
}

func leBytes32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func leBytes64(v uint64) []byte {
	b := make([]byte, 8)
	for i := range b {
		b[i] = byte(v >> (8 * i))
	}
	return b
}
