package codec

import (
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/streamzip-go/streamzip"
)

func init() {
	streamzip.RegisterDecompressor(streamzip.Zstd, newZstdReader)
}

// zstdReadCloser adapts *zstd.Decoder's Close (no error return) to
// io.ReadCloser.
type zstdReadCloser struct {
	*zstd.Decoder
}

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

func newZstdReader(r io.Reader) io.ReadCloser {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return errReader{err: err}
	}
	return zstdReadCloser{Decoder: dec}
}
