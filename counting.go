package streamzip

import (
	"bufio"
	"io"
)

// countingReader is a pass-through layer over a forward-only byte source that
// maintains a monotonic count of bytes read. For a non-seekable source this
// is the only way to learn the current stream offset, which the ZIP64 EOCDR
// locator verification depends on.
//
// It wraps the source in a *bufio.Reader so that signature peeks and small
// fixed reads don't each turn into a separate syscall; every byte the
// bufio.Reader hands back through Read is accounted for here, matching the
// buffered consume() semantics described in the design notes.
type countingReader struct {
	br    *bufio.Reader
	bytes uint64
}

func newCountingReader(r io.Reader) *countingReader {
	if br, ok := r.(*bufio.Reader); ok {
		return &countingReader{br: br}
	}
	return &countingReader{br: bufio.NewReaderSize(r, 32*1024)}
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.br.Read(p)
	c.bytes += uint64(n)
	return n, err
}

// ReadByte makes countingReader an io.ByteReader, so decoders that accept
// one (compress/flate among them) read from it directly instead of wrapping
// it in a read-ahead buffer of their own that would take bytes past the end
// of an entry's compressed data.
func (c *countingReader) ReadByte() (byte, error) {
	b, err := c.br.ReadByte()
	if err == nil {
		c.bytes++
	}
	return b, err
}

// BytesRead returns the number of bytes this adapter has handed to callers so
// far, which equals the absolute offset into the archive of the next byte it
// will return.
func (c *countingReader) BytesRead() uint64 {
	return c.bytes
}

// readExact fills buf entirely or returns an error; a short read from the
// underlying source is surfaced as io.ErrUnexpectedEOF via io.ReadFull.
func readExact(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	return err
}

// readUint32 reads a 4-byte little-endian signature without otherwise
// interpreting it, so that callers can dispatch on it before deciding which
// fixed-layout record to parse next.
func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if err := readExact(r, buf[:]); err != nil {
		return 0, err
	}
	return leUint32(buf[:]), nil
}

// discard reads and throws away exactly n bytes, the non-seekable
// equivalent of a forward seek.
func discard(r io.Reader, n int64) error {
	_, err := io.CopyN(io.Discard, r, n)
	return err
}
