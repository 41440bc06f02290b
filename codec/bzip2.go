package codec

import (
	"io"

	"github.com/dsnet/compress/bzip2"
	"github.com/streamzip-go/streamzip"
)

func init() {
	streamzip.RegisterDecompressor(streamzip.Bzip2, newBzip2Reader)
}

func newBzip2Reader(r io.Reader) io.ReadCloser {
	zr, err := bzip2.NewReader(r, nil)
	if err != nil {
		return errReader{err: err}
	}
	return nopCloser{Reader: zr}
}
