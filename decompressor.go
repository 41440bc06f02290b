package streamzip

import (
	"compress/flate"
	"io"
	"sync"
)

// Decompressor returns a new decompressing reader reading from r. Its
// Close method must be used to release any associated resources. A
// Decompressor itself must be safe to invoke from multiple goroutines
// simultaneously, but each returned reader is used by only one goroutine at
// a time.
//
// Actual compression algorithms (DEFLATE, Bzip2, Zstd, LZMA, XZ, Deflate64)
// are external collaborators from this package's point of view: the built-in
// registry only covers Store and Deflate, matching the two methods virtually
// every ZIP writer emits. Callers that need the rest register them via
// RegisterDecompressor, for example with the implementations in the codec
// subpackage.
type Decompressor func(r io.Reader) io.ReadCloser

var (
	decompressorsMu sync.RWMutex
	decompressors   = map[uint16]Decompressor{
		Store:   Decompressor(io.NopCloser),
		Deflate: Decompressor(newPooledFlateReader),
	}
)

// RegisterDecompressor installs a Decompressor for the given ZIP compression
// method ID. It panics if method already has a registered Decompressor.
func RegisterDecompressor(method uint16, d Decompressor) {
	decompressorsMu.Lock()
	defer decompressorsMu.Unlock()
	if _, dup := decompressors[method]; dup {
		panic("streamzip: decompressor already registered for method")
	}
	decompressors[method] = d
}

// decompressorFor looks up the Decompressor registered for method, if any.
func decompressorFor(method uint16) (Decompressor, bool) {
	decompressorsMu.RLock()
	defer decompressorsMu.RUnlock()
	d, ok := decompressors[method]
	return d, ok
}

// pooledFlateReader recycles flate.Reader values across entries the way the
// standard library's archive/zip does, since constructing one allocates a
// non-trivial amount of state.
type pooledFlateReader struct {
	mu sync.Mutex
	fr io.ReadCloser
}

var flateReaderPool sync.Pool

func newPooledFlateReader(r io.Reader) io.ReadCloser {
	fr, ok := flateReaderPool.Get().(io.ReadCloser)
	if ok {
		fr.(flate.Resetter).Reset(r, nil)
	} else {
		fr = flate.NewReader(r)
	}
	return &pooledFlateReader{fr: fr}
}

func (r *pooledFlateReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fr.Read(p)
}

func (r *pooledFlateReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.fr.Close()
	flateReaderPool.Put(r.fr)
	r.fr = nil
	return err
}
