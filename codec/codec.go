// Package codec registers streamzip.Decompressor implementations for the
// compression methods the core package leaves as external collaborators:
// Bzip2, Zstd, LZMA and XZ. Importing this package for its side effects
// (registration in init) is enough to make streamzip.NewReader handle
// archives using any of them.
//
// Store and Deflate are already registered by the core package itself and
// are not duplicated here.
package codec

import (
	"io"

	"github.com/streamzip-go/streamzip"
)

// errReader defers a construction-time error (e.g. a malformed compressed
// stream header) to the first Read call, so it can still be returned as an
// io.ReadCloser from a streamzip.Decompressor, which has no error return of
// its own.
type errReader struct{ err error }

func (e errReader) Read([]byte) (int, error) { return 0, e.err }
func (e errReader) Close() error             { return nil }

// nopCloser adapts a decoder that is a plain io.Reader (no resources to
// release once fully drained) to io.ReadCloser.
type nopCloser struct{ io.Reader }

func (nopCloser) Close() error { return nil }
