package streamzip

// ExtraField is a closed sum type over the extra-field variants this package
// understands; unrecognised header IDs decode to Unknown so that callers can
// still inspect (and, per the round-trip law, re-encode) their raw bytes.
type ExtraField interface {
	// HeaderID returns the 2-byte header ID that selected this variant.
	HeaderID() uint16
}

// Zip64ExtendedInformation carries the 64-bit counterparts that a local or
// central-directory header promotes to when one of its 32-bit (or, for
// DiskStart, 16-bit) fields is the sentinel value. Each field is nil when its
// owning header field was not the sentinel, matching §3's invariant that
// promotion of the four fields is independent. The one exception is the
// 16-byte fallback in parseZip64ExtendedInformation, which sets both sizes
// to values equal to the (non-sentinel) header fields.
type Zip64ExtendedInformation struct {
	UncompressedSize  *uint64
	CompressedSize    *uint64
	LocalHeaderOffset *uint64
	DiskStart         *uint32
}

func (Zip64ExtendedInformation) HeaderID() uint16 { return zip64ExtraID }

// InfoZipUnicodePath carries a UTF-8 replacement for a CP437-encoded
// filename, guarded by a CRC32 of the original bytes it overrides (the CRC32
// is not verified by this package; see §9).
type InfoZipUnicodePath struct {
	Version uint8
	CRC32   uint32 // only meaningful when Version == 1
	Unicode []byte // only meaningful when Version == 1
	Data    []byte // raw payload (sans version byte) when Version != 1
}

func (InfoZipUnicodePath) HeaderID() uint16 { return infoZipUnicodePathID }

// InfoZipUnicodeComment is the comment-field counterpart of
// InfoZipUnicodePath.
type InfoZipUnicodeComment struct {
	Version uint8
	CRC32   uint32
	Unicode []byte
	Data    []byte
}

func (InfoZipUnicodeComment) HeaderID() uint16 { return infoZipUnicodeCommentID }

// UnknownExtraField retains the verbatim bytes of any extra field this
// package doesn't otherwise model, so re-encoding it reproduces the original
// TLV record exactly.
type UnknownExtraField struct {
	ID      uint16
	Content []byte
}

func (u UnknownExtraField) HeaderID() uint16 { return u.ID }

// Bytes re-encodes the field as the 4-byte TLV header followed by Content,
// satisfying the round-trip law for unrecognised extra fields.
func (u UnknownExtraField) Bytes() []byte {
	out := make([]byte, 4+len(u.Content))
	leb := out
	leb[0], leb[1] = byte(u.ID), byte(u.ID>>8)
	n := uint16(len(u.Content))
	leb[2], leb[3] = byte(n), byte(n>>8)
	copy(out[4:], u.Content)
	return out
}

// parseExtraFields walks data as a sequence of (header-id uint16, size
// uint16, data) TLV records and decodes each into an ExtraField, rejecting
// duplicate header IDs and sizes that would overflow the blob.
//
// uncompressedSize, compressedSize, localHeaderOffset and diskStart are the
// owning header's 32/16-bit field values; they drive which ZIP64 slots are
// expected to be present per §4.3, and localHeaderOffset/diskStart are nil
// when the owning record has no such field (a local file header has neither).
func parseExtraFields(data []byte, uncompressedSize, compressedSize uint32, localHeaderOffset *uint32, diskStart *uint16) ([]ExtraField, error) {
	var fields []ExtraField
	cursor := 0

	for cursor+4 <= len(data) {
		headerID := leUint16(data[cursor : cursor+2])
		size := leUint16(data[cursor+2 : cursor+4])
		if cursor+4+int(size) > len(data) {
			return nil, &ErrInvalidExtraFieldHeader{FieldSize: size}
		}
		body := data[cursor+4 : cursor+4+int(size)]

		field, err := decodeExtraField(headerID, size, body, uncompressedSize, compressedSize, localHeaderOffset, diskStart)
		if err != nil {
			return nil, err
		}

		for _, seen := range fields {
			if seen.HeaderID() == field.HeaderID() {
				return nil, &ErrDuplicateExtraFieldHeader{HeaderID: headerID}
			}
		}

		fields = append(fields, field)
		cursor += 4 + int(size)
	}

	return fields, nil
}

func decodeExtraField(headerID uint16, size uint16, body []byte, uncompressedSize, compressedSize uint32, localHeaderOffset *uint32, diskStart *uint16) (ExtraField, error) {
	switch headerID {
	case zip64ExtraID:
		return parseZip64ExtendedInformation(body, uncompressedSize, compressedSize, localHeaderOffset, diskStart)
	case infoZipUnicodePathID:
		return parseInfoZipUnicodePath(body)
	case infoZipUnicodeCommentID:
		return parseInfoZipUnicodeComment(body)
	default:
		return UnknownExtraField{ID: headerID, Content: append([]byte(nil), body...)}, nil
	}
}

// parseZip64ExtendedInformation implements the conditional-on-sentinel
// promotion rule from §4.3, plus its one documented bug-compatible fallback.
func parseZip64ExtendedInformation(body []byte, uncompressedSize, compressedSize uint32, localHeaderOffset *uint32, diskStart *uint16) (Zip64ExtendedInformation, error) {
	var out Zip64ExtendedInformation
	consumed := 0
	l := len(body)

	if uncompressedSize == nonZip64MaxSize && l >= consumed+8 {
		v := leUint64(body[consumed : consumed+8])
		out.UncompressedSize = &v
		consumed += 8
	}
	if compressedSize == nonZip64MaxSize && l >= consumed+8 {
		v := leUint64(body[consumed : consumed+8])
		out.CompressedSize = &v
		consumed += 8
	}
	if localHeaderOffset != nil && *localHeaderOffset == nonZip64MaxSize && l >= consumed+8 {
		v := leUint64(body[consumed : consumed+8])
		out.LocalHeaderOffset = &v
		consumed += 8
	}
	if diskStart != nil && *diskStart == nonZip64MaxDisk && l >= consumed+4 {
		v := leUint32(body[consumed : consumed+4])
		out.DiskStart = &v
		consumed += 4
	}

	if consumed != l {
		// Bug-compatible fallback (§4.3): some writers emit a 16-byte ZIP64
		// extra field with (uncompressed u64, compressed u64) even when
		// neither the uncompressed nor compressed header fields were the
		// sentinel. Accept it only if it round-trips against the header.
		if l == 16 && consumed == 0 {
			fallbackUncompressed := leUint64(body[0:8])
			fallbackCompressed := leUint64(body[8:16])
			if fallbackUncompressed == uint64(uncompressedSize) && fallbackCompressed == uint64(compressedSize) {
				return Zip64ExtendedInformation{
					UncompressedSize: &fallbackUncompressed,
					CompressedSize:   &fallbackCompressed,
				}, nil
			}
		}
		return Zip64ExtendedInformation{}, &ErrZip64FieldTooLong{Expected: consumed, Actual: l}
	}

	return out, nil
}

func parseInfoZipUnicodePath(body []byte) (InfoZipUnicodePath, error) {
	if len(body) == 0 {
		return InfoZipUnicodePath{}, ErrInfoZipUnicodePathFieldIncomplete
	}
	version := body[0]
	if version == 1 {
		if len(body) < 5 {
			return InfoZipUnicodePath{}, ErrInfoZipUnicodePathFieldIncomplete
		}
		return InfoZipUnicodePath{
			Version: 1,
			CRC32:   leUint32(body[1:5]),
			Unicode: append([]byte(nil), body[5:]...),
		}, nil
	}
	return InfoZipUnicodePath{Version: version, Data: append([]byte(nil), body[1:]...)}, nil
}

func parseInfoZipUnicodeComment(body []byte) (InfoZipUnicodeComment, error) {
	if len(body) == 0 {
		return InfoZipUnicodeComment{}, ErrInfoZipUnicodeCommentFieldIncomplete
	}
	version := body[0]
	if version == 1 {
		if len(body) < 5 {
			return InfoZipUnicodeComment{}, ErrInfoZipUnicodeCommentFieldIncomplete
		}
		return InfoZipUnicodeComment{
			Version: 1,
			CRC32:   leUint32(body[1:5]),
			Unicode: append([]byte(nil), body[5:]...),
		}, nil
	}
	return InfoZipUnicodeComment{Version: version, Data: append([]byte(nil), body[1:]...)}, nil
}

// findZip64 returns the Zip64ExtendedInformation field in fields, if any.
func findZip64(fields []ExtraField) (Zip64ExtendedInformation, bool) {
	for _, f := range fields {
		if z, ok := f.(Zip64ExtendedInformation); ok {
			return z, true
		}
	}
	return Zip64ExtendedInformation{}, false
}

// findUnicodePath returns the InfoZipUnicodePath field in fields, if any.
func findUnicodePath(fields []ExtraField) (InfoZipUnicodePath, bool) {
	for _, f := range fields {
		if u, ok := f.(InfoZipUnicodePath); ok {
			return u, true
		}
	}
	return InfoZipUnicodePath{}, false
}

// findUnicodeComment returns the InfoZipUnicodeComment field in fields, if any.
func findUnicodeComment(fields []ExtraField) (InfoZipUnicodeComment, bool) {
	for _, f := range fields {
		if u, ok := f.(InfoZipUnicodeComment); ok {
			return u, true
		}
	}
	return InfoZipUnicodeComment{}, false
}
