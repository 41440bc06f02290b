package streamzip

import "io"

// CentralDirectoryEntry is one record from the archive's central directory,
// with any ZIP64-promoted fields already reconciled against their 32-bit
// (or, for DiskStart, 16-bit) counterparts.
type CentralDirectoryEntry struct {
	Filename ZipString
	Comment  ZipString

	Method uint16

	CRC32            uint32
	UncompressedSize uint64
	CompressedSize   uint64

	VersionMadeBy uint16
	VersionNeeded uint16
	ModTime       DOSDateTime
	InternalAttrs uint16
	ExternalAttrs uint32

	ExtraFields []ExtraField

	LocalHeaderOffset uint64
	DiskStart         uint32
}

// IsDir reports whether the entry represents a directory.
func (e CentralDirectoryEntry) IsDir() bool {
	name := e.Filename.String()
	return len(name) > 0 && name[len(name)-1] == '/'
}

// UnixMode returns the high 16 bits of ExternalAttrs, where UNIX-authoring
// hosts store the file's mode (file type and permission bits). VersionMadeBy
// is not consulted, so for entries written on other hosts the result is
// whatever those bits hold.
func (e CentralDirectoryEntry) UnixMode() uint32 {
	return e.ExternalAttrs >> 16
}

// EndOfCentralDirectory is the terminal record produced by
// CentralDirectoryReader.Next, merging the (possibly ZIP64) EOCDR fields
// with the archive comment.
type EndOfCentralDirectory struct {
	DiskNumber        uint32
	CDStartDisk       uint32
	EntriesOnThisDisk uint64
	Entries           uint64
	CDSize            uint64
	CDOffset          uint64
	Comment           ZipString
	IsZip64           bool
}

// CentralDirectoryReader walks an archive's central directory and trailing
// EOCDR(s), picking up immediately after the point at which (*Ready).Next
// returned an end-of-entries result. It is the only component in this
// package that understands the ZIP64 EOCDR + locator + EOCDR sequence.
type CentralDirectoryReader struct {
	cr            *countingReader
	first         uint32
	firstReturned bool
	done          bool
}

// NewCentralDirectoryReader constructs a CentralDirectoryReader from a fresh
// source positioned exactly at the start of the central directory (i.e. at
// the first record's own signature, one of cdhSignature, eocdrSignature or
// zip64EocdrSignature). It reads that signature itself so its internal byte
// count stays consistent with the offsets it verifies. Those offsets are
// relative to r's start, not necessarily the start of the whole archive; use
// ContinueToCentralDirectory instead when r is the same stream a *Ready was
// reading from, so absolute archive offsets stay correct.
func NewCentralDirectoryReader(r io.Reader) (*CentralDirectoryReader, error) {
	cr := newCountingReader(r)
	sig, err := readUint32(cr)
	if err != nil {
		return nil, err
	}
	switch sig {
	case cdhSignature, eocdrSignature, zip64EocdrSignature:
	default:
		return nil, &ErrUnexpectedHeader{Found: sig, Expected: cdhSignature}
	}
	return &CentralDirectoryReader{cr: cr, first: sig}, nil
}

// ContinueToCentralDirectory constructs a CentralDirectoryReader that picks
// up exactly where a *Ready's Next call left off upon reaching the central
// directory, reusing the same byte-counting stream so the offset it verifies
// (the ZIP64 EOCDR locator's relative_offset) remains relative to the start
// of the archive. The EOCDR's CDOffset is reported as read, not checked. err must be the error
// returned by that Next call; ok is false if it is not an end-of-entries
// error.
func ContinueToCentralDirectory(err error) (cd *CentralDirectoryReader, ok bool) {
	e, ok := err.(*endOfEntries)
	if !ok {
		return nil, false
	}
	return &CentralDirectoryReader{cr: e.cr, first: e.signature}, true
}

// Next returns the next CentralDirectoryEntry, or — once the EOCDR (or ZIP64
// EOCDR/locator/EOCDR sequence) has been consumed — an EndOfCentralDirectory
// and a nil CentralDirectoryEntry. Once EndOfCentralDirectory has been
// returned, further calls to Next panic.
func (cd *CentralDirectoryReader) Next() (*CentralDirectoryEntry, *EndOfCentralDirectory, error) {
	if cd.done {
		panic("streamzip: Next called on a CentralDirectoryReader that already reached the end")
	}

	sig, err := cd.nextSignature()
	if err != nil {
		return nil, nil, err
	}

	switch sig {
	case cdhSignature:
		entry, err := cd.parseEntry()
		if err != nil {
			return nil, nil, err
		}
		return entry, nil, nil
	case eocdrSignature:
		eocd, err := cd.parseEOCDR()
		if err != nil {
			return nil, nil, err
		}
		cd.done = true
		return nil, eocd, nil
	case zip64EocdrSignature:
		eocd, err := cd.parseZip64EOCDSequence()
		if err != nil {
			return nil, nil, err
		}
		cd.done = true
		return nil, eocd, nil
	default:
		return nil, nil, &ErrUnexpectedHeader{Found: sig, Expected: cdhSignature}
	}
}

// nextSignature returns the already-known first signature on the reader's
// first call, otherwise reads a fresh 4-byte signature from the stream.
func (cd *CentralDirectoryReader) nextSignature() (uint32, error) {
	if !cd.firstReturned {
		cd.firstReturned = true
		return cd.first, nil
	}
	return readUint32(cd.cr)
}

func (cd *CentralDirectoryReader) parseEntry() (*CentralDirectoryEntry, error) {
	var buf [centralDirectoryLen]byte
	if err := readExact(cd.cr, buf[:]); err != nil {
		return nil, err
	}
	header := parseCentralDirectoryRecord(buf)

	filenameRaw, err := readBytes(cd.cr, int(header.FilenameLength))
	if err != nil {
		return nil, err
	}
	extraRaw, err := readBytes(cd.cr, int(header.ExtraFieldLength))
	if err != nil {
		return nil, err
	}
	commentRaw, err := readBytes(cd.cr, int(header.CommentLength))
	if err != nil {
		return nil, err
	}

	localHeaderOffset := header.LocalHeaderOffset
	diskStart := header.DiskStart
	fields, err := parseExtraFields(extraRaw, header.UncompressedSize, header.CompressedSize, &localHeaderOffset, &diskStart)
	if err != nil {
		return nil, err
	}

	uncompressedSize, compressedSize, offset, disk := reconcileZip64(header.UncompressedSize, header.CompressedSize, &localHeaderOffset, &diskStart, fields)

	return &CentralDirectoryEntry{
		Filename:          detectFilename(filenameRaw, header.Flags.FilenameIsUTF8, fields),
		Comment:           detectComment(commentRaw, header.Flags.FilenameIsUTF8, fields),
		Method:            header.Method,
		CRC32:             header.CRC32,
		UncompressedSize:  uncompressedSize,
		CompressedSize:    compressedSize,
		VersionMadeBy:     header.VersionMadeBy,
		VersionNeeded:     header.VersionNeeded,
		ModTime:           DOSDateTime{Date: header.ModDate, Time: header.ModTime},
		InternalAttrs:     header.InternalAttrs,
		ExternalAttrs:     header.ExternalAttrs,
		ExtraFields:       fields,
		LocalHeaderOffset: offset,
		DiskStart:         disk,
	}, nil
}

func (cd *CentralDirectoryReader) parseEOCDR() (*EndOfCentralDirectory, error) {
	var buf [eocdrLen]byte
	if err := readExact(cd.cr, buf[:]); err != nil {
		return nil, err
	}
	header := parseEndOfCentralDirectoryRecord(buf)

	commentRaw, err := readBytes(cd.cr, int(header.CommentLength))
	if err != nil {
		return nil, err
	}

	return &EndOfCentralDirectory{
		DiskNumber:        uint32(header.DiskNumber),
		CDStartDisk:       uint32(header.CDStartDisk),
		EntriesOnThisDisk: uint64(header.EntriesOnThisDisk),
		Entries:           uint64(header.Entries),
		CDSize:            uint64(header.CDSize),
		CDOffset:          uint64(header.CDOffset),
		Comment:           ZipString{Raw: commentRaw, Encoding: UTF8},
	}, nil
}

// parseZip64EOCDSequence parses the ZIP64 EOCDR (whose signature has already
// been consumed by nextSignature), verifies the immediately following ZIP64
// EOCDR locator's relative_offset against the position at which the ZIP64
// EOCDR signature was actually observed, and then parses the final EOCDR,
// merging the two into one EndOfCentralDirectory (§4.5).
func (cd *CentralDirectoryReader) parseZip64EOCDSequence() (*EndOfCentralDirectory, error) {
	// The offset of the ZIP64 EOCDR signature itself: we've already consumed
	// the 4-byte signature, so it sits signatureLength bytes before the
	// reader's current position.
	zip64EocdrOffset := cd.cr.BytesRead() - signatureLength

	var fixed [zip64EocdrMinLen]byte
	if err := readExact(cd.cr, fixed[:]); err != nil {
		return nil, err
	}
	zip64eocdr := parseZip64EndOfCentralDirectoryRecord(fixed)

	// SizeOfRecord counts every byte following the size field itself, i.e.
	// (zip64EocdrMinLen - 8) plus any vendor-specific data this package does
	// not model.
	if zip64eocdr.SizeOfRecord < zip64EocdrMinLen-8 {
		return nil, &ErrZip64FieldTooLong{Expected: zip64EocdrMinLen - 8, Actual: int(zip64eocdr.SizeOfRecord)}
	}
	if extra := zip64eocdr.SizeOfRecord - (zip64EocdrMinLen - 8); extra > 0 {
		if err := discard(cd.cr, int64(extra)); err != nil {
			return nil, err
		}
	}

	locatorSig, err := readUint32(cd.cr)
	if err != nil {
		return nil, err
	}
	if locatorSig != zip64EocdlSignature {
		return nil, ErrMissingZip64EOCDLocator
	}

	var locatorBuf [zip64EocdlLen]byte
	if err := readExact(cd.cr, locatorBuf[:]); err != nil {
		return nil, err
	}
	locator := parseZip64EndOfCentralDirectoryLocator(locatorBuf)

	if locator.RelativeOffset != zip64EocdrOffset {
		return nil, &ErrInvalidZip64EOCDLocatorOffset{Found: locator.RelativeOffset, Expected: zip64EocdrOffset}
	}

	eocdrSig, err := readUint32(cd.cr)
	if err != nil {
		return nil, err
	}
	if eocdrSig != eocdrSignature {
		return nil, &ErrUnexpectedHeader{Found: eocdrSig, Expected: eocdrSignature}
	}

	var eocdrBuf [eocdrLen]byte
	if err := readExact(cd.cr, eocdrBuf[:]); err != nil {
		return nil, err
	}
	eocdr := parseEndOfCentralDirectoryRecord(eocdrBuf)

	commentRaw, err := readBytes(cd.cr, int(eocdr.CommentLength))
	if err != nil {
		return nil, err
	}

	return &EndOfCentralDirectory{
		DiskNumber:        zip64eocdr.DiskNumber,
		CDStartDisk:       zip64eocdr.CDStartDisk,
		EntriesOnThisDisk: zip64eocdr.EntriesOnThisDisk,
		Entries:           zip64eocdr.Entries,
		CDSize:            zip64eocdr.CDSize,
		CDOffset:          zip64eocdr.CDOffset,
		Comment:           ZipString{Raw: commentRaw, Encoding: UTF8},
		IsZip64:           true,
	}, nil
}
