// Package streamzip provides a streaming reader for the ZIP archive format
// that drives itself entirely off a forward-only io.Reader: no Seek, no
// io.ReaderAt, no buffering the whole archive in memory first.
//
// Entries are discovered in document order via (*Ready).Next, and reading
// past the last one lands on the archive's central directory and
// end-of-central-directory records, which CentralDirectoryReader can then
// walk to completion.
package streamzip

import (
	"hash/crc32"
	"io"
)

// Ready is a streaming ZIP reader positioned to open the next entry. It is
// the entry point into the type-state machine described in §4.4: Next
// consumes it and, on success, returns a Reading value that owns the
// underlying source until the caller transitions back to Ready via Done or
// Skip.
//
// Go has no move-only types, so the "Ready cannot be used again after a
// successful Next" invariant is enforced at runtime rather than compile
// time: calling Next twice on the same Ready panics.
type Ready struct {
	cr   *countingReader
	used bool
}

// NewReader constructs a streaming ZIP reader over a forward-only byte
// source. The source need not support Seek; it is read exactly once, start
// to end, with no backtracking.
func NewReader(r io.Reader) *Ready {
	return &Ready{cr: newCountingReader(r)}
}

// Reading is a streaming ZIP reader currently positioned within an entry's
// body. The caller drives r as an io.Reader to obtain decompressed bytes,
// then calls Done or Skip to return to Ready.
type Reading struct {
	cr       *countingReader
	entry    ZipEntry
	body     io.Reader
	closer   io.Closer
	hasDescr bool
	consumed bool
}

// endOfEntries is returned (wrapped as an error) by Next when it encounters
// the start of the central directory. Callers should use IsEndOfEntries to
// detect it, since it is not a failure — it's the expected way iteration
// ends.
type endOfEntries struct {
	signature uint32
	cr        *countingReader
}

func (e *endOfEntries) Error() string { return "streamzip: end of entries" }

// IsEndOfEntries reports whether err (as returned by (*Ready).Next) indicates
// that the central directory has been reached rather than a parse failure.
func IsEndOfEntries(err error) bool {
	_, ok := err.(*endOfEntries)
	return ok
}

// EndOfEntriesSignature returns the record signature that ended entry
// iteration (one of cdhSignature, eocdrSignature or zip64EocdrSignature),
// and true, if err is the error returned by (*Ready).Next upon reaching the
// central directory. Otherwise it returns false.
func EndOfEntriesSignature(err error) (uint32, bool) {
	e, ok := err.(*endOfEntries)
	if !ok {
		return 0, false
	}
	return e.signature, true
}

// Next advances past the current record. If the next record is a local file
// header, it returns a Reading positioned at the start of that entry's body.
//
// If the next record begins the central directory (a CDH_SIGNATURE,
// EOCDR_SIGNATURE or ZIP64_EOCDR_SIGNATURE), Next returns an error for which
// IsEndOfEntries is true: the signature has been consumed (it had to be, to
// make the determination) but nothing beyond it, so a
// CentralDirectoryReader obtained from that error with ContinueToCentralDirectory
// picks up from exactly this point. Any other signature is
// *ErrUnexpectedHeader.
//
// Next panics if called on a Ready that has already produced a Reading.
func (rd *Ready) Next() (*Reading, error) {
	if rd.used {
		panic("streamzip: Next called on a Ready that was already advanced")
	}

	fileOffset := rd.cr.BytesRead()
	sig, err := readUint32(rd.cr)
	if err != nil {
		return nil, err
	}

	switch sig {
	case cdhSignature, eocdrSignature, zip64EocdrSignature:
		rd.used = true
		return nil, &endOfEntries{signature: sig, cr: rd.cr}
	case lfhSignature:
		// fall through to local header parsing below.
	default:
		return nil, &ErrUnexpectedHeader{Found: sig, Expected: lfhSignature}
	}

	var buf [localFileHeaderLen]byte
	if err := readExact(rd.cr, buf[:]); err != nil {
		return nil, err
	}
	header := parseLocalFileHeader(buf)

	filenameRaw, err := readBytes(rd.cr, int(header.FilenameLength))
	if err != nil {
		return nil, err
	}
	extraRaw, err := readBytes(rd.cr, int(header.ExtraFieldLength))
	if err != nil {
		return nil, err
	}

	fields, err := parseExtraFields(extraRaw, header.UncompressedSize, header.CompressedSize, nil, nil)
	if err != nil {
		return nil, err
	}

	if header.Method == Store && header.Flags.DataDescriptor {
		return nil, ErrCannotReadDataDescriptorWithStored
	}

	uncompressedSize, compressedSize, _, _ := reconcileZip64(header.UncompressedSize, header.CompressedSize, nil, nil, fields)

	entry := ZipEntry{
		Filename:              detectFilename(filenameRaw, header.Flags.FilenameIsUTF8, fields),
		Method:                header.Method,
		CRC32:                 header.CRC32,
		UncompressedSize:      uncompressedSize,
		CompressedSize:        compressedSize,
		VersionNeeded:         header.VersionNeeded,
		ModTime:               DOSDateTime{Date: header.ModDate, Time: header.ModTime},
		ExtraFields:           fields,
		DataDescriptorPresent: header.Flags.DataDescriptor,
		LocalHeaderOffset:     fileOffset,
		Encrypted:             header.Flags.Encrypted,
	}

	decomp, ok := decompressorFor(header.Method)
	if !ok {
		return nil, &ErrUnknownMethod{Method: header.Method}
	}

	// Unbounded bodies (data-descriptor-follows) rely on the Decompressor
	// recognising its own end-of-stream marker; Stored has none, which is
	// why it was rejected above.
	var rawBody io.Reader = rd.cr
	if !entry.DataDescriptorPresent {
		rawBody = io.LimitReader(rd.cr, int64(compressedSize))
	}

	decompressed := decomp(rawBody)
	crcWanted := !entry.DataDescriptorPresent
	body := &crcTapReader{
		r:          decompressed,
		hash:       crc32.NewIEEE(),
		want:       entry.CRC32,
		checkOnEOF: crcWanted,
	}

	rd.used = true
	return &Reading{cr: rd.cr, entry: entry, body: body, closer: decompressed, hasDescr: entry.DataDescriptorPresent}, nil
}

// Entry returns the metadata for the entry currently being read.
func (r *Reading) Entry() ZipEntry { return r.entry }

// Read returns decompressed bytes from the entry's body. At EOF, if the
// entry carried no data descriptor (so its CRC32 was known up front), the
// running CRC32 is compared against the declared value and a mismatch is
// reported as *ErrCRCMismatch instead of io.EOF.
func (r *Reading) Read(p []byte) (int, error) {
	if r.consumed {
		panic("streamzip: Read called on a Reading that was already returned to Ready")
	}
	return r.body.Read(p)
}

// ConsumedDescriptor is the trailing data descriptor Done/Skip parsed off
// the stream, widened to 64-bit sizes regardless of whether the entry used
// the 32-bit or ZIP64 descriptor form on the wire (§4.4's "data-descriptor
// consumption rule" distinguishes the two forms only to know how many bytes
// to read; callers only care about the resulting values).
type ConsumedDescriptor struct {
	CRC32            uint32
	CompressedSize   uint64
	UncompressedSize uint64
}

// Done verifies that the entry's body has been fully read, consumes any
// trailing data descriptor, and transitions back to Ready. It returns
// ErrEOFNotReached if the body still had unread bytes; in that case the
// Reading remains usable so the caller can still call Skip.
func (r *Reading) Done() (*Ready, *ConsumedDescriptor, error) {
	if r.consumed {
		panic("streamzip: Done called on a Reading that was already returned to Ready")
	}
	var probe [1]byte
	n, err := r.body.Read(probe[:])
	if err != nil && err != io.EOF {
		return nil, nil, err
	}
	if n != 0 {
		return nil, nil, ErrEOFNotReached
	}

	return r.finish()
}

// Skip drains the entry's body to EOF, consumes any trailing data
// descriptor, and transitions back to Ready.
func (r *Reading) Skip() (*Ready, *ConsumedDescriptor, error) {
	if r.consumed {
		panic("streamzip: Skip called on a Reading that was already returned to Ready")
	}
	buf := make([]byte, 32*1024)
	for {
		_, err := r.body.Read(buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
	}

	return r.finish()
}

// finish releases the entry's decompressor, consumes any trailing data
// descriptor, and transitions back to Ready. The caller must have already
// confirmed the body was read to EOF.
func (r *Reading) finish() (*Ready, *ConsumedDescriptor, error) {
	r.consumed = true
	closeErr := r.closer.Close()
	descriptor, err := r.consumeDescriptor()
	if err != nil {
		return nil, nil, err
	}
	if closeErr != nil {
		return nil, nil, closeErr
	}
	return &Ready{cr: r.cr}, descriptor, nil
}

func (r *Reading) consumeDescriptor() (*ConsumedDescriptor, error) {
	if !r.hasDescr {
		return nil, nil
	}

	// The ZIP64 vs 32-bit descriptor form is selected by the presence of a
	// ZIP64 extended-information extra field on the local header (§4.4).
	// Either form's sizes are widened to uint64 here so truncation can't
	// silently occur for a genuinely large ZIP64 entry.
	if _, ok := findZip64(r.entry.ExtraFields); ok {
		z64, err := parseZip64DataDescriptor(r.cr)
		if err != nil {
			return nil, err
		}
		return &ConsumedDescriptor{
			CRC32:            z64.CRC32,
			CompressedSize:   z64.CompressedSize,
			UncompressedSize: z64.UncompressedSize,
		}, nil
	}

	d, err := parseDataDescriptor(r.cr)
	if err != nil {
		return nil, err
	}
	return &ConsumedDescriptor{
		CRC32:            d.CRC32,
		CompressedSize:   uint64(d.CompressedSize),
		UncompressedSize: uint64(d.UncompressedSize),
	}, nil
}

// readBytes reads exactly n bytes, returning an empty (non-nil) slice for
// n == 0 so downstream code need not special-case it.
func readBytes(r io.Reader, n int) ([]byte, error) {
	if n == 0 {
		return []byte{}, nil
	}
	buf := make([]byte, n)
	if err := readExact(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// crc32Hash is the subset of hash.Hash32 that crcTapReader needs.
type crc32Hash interface {
	Write([]byte) (int, error)
	Sum32() uint32
}

// crcTapReader wraps a decompressing reader, accumulating a running CRC32 of
// the bytes it yields and, when checkOnEOF is set, comparing it against want
// the moment the wrapped reader reports EOF.
type crcTapReader struct {
	r          io.Reader
	hash       crc32Hash
	want       uint32
	checkOnEOF bool
}

func (c *crcTapReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.hash.Write(p[:n])
	}
	if err == io.EOF && c.checkOnEOF {
		if sum := c.hash.Sum32(); sum != c.want {
			return n, &ErrCRCMismatch{Expected: c.want, Found: sum}
		}
	}
	return n, err
}
