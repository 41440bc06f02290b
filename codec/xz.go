package codec

import (
	"bytes"
	"io"

	"github.com/streamzip-go/streamzip"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

func init() {
	streamzip.RegisterDecompressor(streamzip.XZ, newXZReader)
	streamzip.RegisterDecompressor(streamzip.LZMA, newLZMAReader)
}

func newXZReader(r io.Reader) io.ReadCloser {
	zr, err := xz.NewReader(r)
	if err != nil {
		return errReader{err: err}
	}
	return nopCloser{Reader: zr}
}

func newLZMAReader(r io.Reader) io.ReadCloser {
	// The ZIP LZMA method prefixes the stream with a 2-byte encoder
	// version and a 2-byte properties length, then the 5-byte properties;
	// lzma.NewReader expects the classic header instead (5-byte properties
	// followed by an 8-byte uncompressed size). The classic header is
	// rebuilt here with the size marked unknown, so the stream must end
	// with an end-of-stream marker.
	var zipHeader [9]byte
	if _, err := io.ReadFull(r, zipHeader[:]); err != nil {
		return errReader{err: err}
	}
	classic := bytes.Repeat([]byte{0xFF}, 13)
	copy(classic, zipHeader[4:9])
	zr, err := lzma.NewReader(io.MultiReader(bytes.NewReader(classic), r))
	if err != nil {
		return errReader{err: err}
	}
	return nopCloser{Reader: zr}
}
