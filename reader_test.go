package streamzip

import (
	"bytes"
	"hash/crc32"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderRoundTrip(t *testing.T) {
	archive := buildTestZip([]testEntry{
		{name: "a.txt", data: []byte("hello world")},
		{name: "dir/b.txt", data: []byte("second entry, a bit longer than the first")},
	})

	rd := NewReader(bytes.NewReader(archive))

	reading, err := rd.Next()
	require.NoError(t, err)
	assert.Equal(t, "a.txt", reading.Entry().Filename.String())

	got, err := io.ReadAll(reading)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))

	next, _, err := reading.Done()
	require.NoError(t, err)

	reading, err = next.Next()
	require.NoError(t, err)
	assert.Equal(t, "dir/b.txt", reading.Entry().Filename.String())

	got, err = io.ReadAll(reading)
	require.NoError(t, err)
	assert.Equal(t, "second entry, a bit longer than the first", string(got))

	next, _, err = reading.Done()
	require.NoError(t, err)

	_, err = next.Next()
	require.Error(t, err)
	assert.True(t, IsEndOfEntries(err))
}

func TestReaderSkipWithoutReading(t *testing.T) {
	archive := buildTestZip([]testEntry{
		{name: "skip-me.bin", data: bytes.Repeat([]byte{0x42}, 4096)},
		{name: "after.txt", data: []byte("still here")},
	})

	rd := NewReader(bytes.NewReader(archive))

	reading, err := rd.Next()
	require.NoError(t, err)
	next, _, err := reading.Skip()
	require.NoError(t, err)

	reading, err = next.Next()
	require.NoError(t, err)
	got, err := io.ReadAll(reading)
	require.NoError(t, err)
	assert.Equal(t, "still here", string(got))
}

func TestReadingDonePanicsAfterReturnToReady(t *testing.T) {
	archive := buildTestZip([]testEntry{{name: "a.txt", data: []byte("x")}})
	rd := NewReader(bytes.NewReader(archive))

	reading, err := rd.Next()
	require.NoError(t, err)
	_, err = io.ReadAll(reading)
	require.NoError(t, err)
	_, _, err = reading.Done()
	require.NoError(t, err)

	assert.Panics(t, func() { _, _ = reading.Read(make([]byte, 1)) })
	assert.Panics(t, func() { _, _, _ = reading.Done() })
}

func TestReadyNextPanicsAfterAlreadyAdvanced(t *testing.T) {
	archive := buildTestZip([]testEntry{{name: "a.txt", data: []byte("x")}})
	rd := NewReader(bytes.NewReader(archive))

	_, err := rd.Next()
	require.NoError(t, err)

	assert.Panics(t, func() { _, _ = rd.Next() })
}

func TestDoneReturnsErrEOFNotReachedWhenBodyUnread(t *testing.T) {
	archive := buildTestZip([]testEntry{{name: "a.txt", data: []byte("not fully consumed")}})
	rd := NewReader(bytes.NewReader(archive))

	reading, err := rd.Next()
	require.NoError(t, err)

	_, _, err = reading.Done()
	assert.ErrorIs(t, err, ErrEOFNotReached)

	// Reading is still usable after the failed Done; Skip should succeed.
	_, _, err = reading.Skip()
	require.NoError(t, err)
}

func TestStoredWithDataDescriptorIsRejected(t *testing.T) {
	var buf bytes.Buffer
	data := []byte("payload")
	put32(&buf, lfhSignature)
	put16(&buf, 20)
	put16(&buf, flagDataDescriptor)
	put16(&buf, Store)
	put16(&buf, 0)
	put16(&buf, 0x21)
	put32(&buf, 0) // crc32 placeholder, per bit-3 semantics
	put32(&buf, 0)
	put32(&buf, 0)
	put16(&buf, uint16(len("a.txt")))
	put16(&buf, 0)
	buf.WriteString("a.txt")
	buf.Write(data)

	rd := NewReader(&buf)
	_, err := rd.Next()
	assert.ErrorIs(t, err, ErrCannotReadDataDescriptorWithStored)
}

func TestUnknownMethodIsReported(t *testing.T) {
	var buf bytes.Buffer
	data := []byte("payload")
	put32(&buf, lfhSignature)
	put16(&buf, 20)
	put16(&buf, 0)
	put16(&buf, 99) // unregistered method
	put16(&buf, 0)
	put16(&buf, 0x21)
	put32(&buf, crc32.ChecksumIEEE(data))
	put32(&buf, uint32(len(data)))
	put32(&buf, uint32(len(data)))
	put16(&buf, uint16(len("a.txt")))
	put16(&buf, 0)
	buf.WriteString("a.txt")
	buf.Write(data)

	rd := NewReader(&buf)
	_, err := rd.Next()
	var unknownMethod *ErrUnknownMethod
	require.ErrorAs(t, err, &unknownMethod)
	assert.Equal(t, uint16(99), unknownMethod.Method)
}

type closeTrackingReader struct {
	io.Reader
	closed *bool
}

func (c *closeTrackingReader) Close() error {
	*c.closed = true
	return nil
}

func TestDoneClosesTheDecompressor(t *testing.T) {
	closed := false
	const trackedMethod = 88
	RegisterDecompressor(trackedMethod, func(r io.Reader) io.ReadCloser {
		return &closeTrackingReader{Reader: r, closed: &closed}
	})

	var buf bytes.Buffer
	data := []byte("payload")
	put32(&buf, lfhSignature)
	put16(&buf, 20)
	put16(&buf, 0)
	put16(&buf, trackedMethod)
	put16(&buf, 0)
	put16(&buf, 0x21)
	put32(&buf, crc32.ChecksumIEEE(data))
	put32(&buf, uint32(len(data)))
	put32(&buf, uint32(len(data)))
	put16(&buf, uint16(len("a.txt")))
	put16(&buf, 0)
	buf.WriteString("a.txt")
	buf.Write(data)

	rd := NewReader(&buf)
	reading, err := rd.Next()
	require.NoError(t, err)

	_, err = io.ReadAll(reading)
	require.NoError(t, err)

	_, _, err = reading.Done()
	require.NoError(t, err)
	assert.True(t, closed)
}

func TestSkipClosesTheDecompressor(t *testing.T) {
	closed := false
	const trackedMethod = 89
	RegisterDecompressor(trackedMethod, func(r io.Reader) io.ReadCloser {
		return &closeTrackingReader{Reader: r, closed: &closed}
	})

	var buf bytes.Buffer
	data := []byte("payload, not read before Skip")
	put32(&buf, lfhSignature)
	put16(&buf, 20)
	put16(&buf, 0)
	put16(&buf, trackedMethod)
	put16(&buf, 0)
	put16(&buf, 0x21)
	put32(&buf, crc32.ChecksumIEEE(data))
	put32(&buf, uint32(len(data)))
	put32(&buf, uint32(len(data)))
	put16(&buf, uint16(len("a.txt")))
	put16(&buf, 0)
	buf.WriteString("a.txt")
	buf.Write(data)

	rd := NewReader(&buf)
	reading, err := rd.Next()
	require.NoError(t, err)

	_, _, err = reading.Skip()
	require.NoError(t, err)
	assert.True(t, closed)
}

func TestCRCMismatchReportedAtEOF(t *testing.T) {
	var buf bytes.Buffer
	data := []byte("payload")
	put32(&buf, lfhSignature)
	put16(&buf, 20)
	put16(&buf, 0)
	put16(&buf, Store)
	put16(&buf, 0)
	put16(&buf, 0x21)
	put32(&buf, crc32.ChecksumIEEE(data)^0xFF) // deliberately wrong
	put32(&buf, uint32(len(data)))
	put32(&buf, uint32(len(data)))
	put16(&buf, uint16(len("a.txt")))
	put16(&buf, 0)
	buf.WriteString("a.txt")
	buf.Write(data)

	rd := NewReader(&buf)
	reading, err := rd.Next()
	require.NoError(t, err)

	_, err = io.ReadAll(reading)
	var mismatch *ErrCRCMismatch
	require.ErrorAs(t, err, &mismatch)
}
