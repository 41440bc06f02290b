package streamzip

import (
	"golang.org/x/text/encoding/charmap"
)

// StringEncoding identifies the declared encoding of a ZipString's raw bytes.
type StringEncoding int

const (
	// CP437 is the IBM PC OEM code page, the default filename/comment
	// encoding when general-purpose bit 11 is clear and no InfoZIP Unicode
	// override applies.
	CP437 StringEncoding = iota
	// UTF8 indicates the raw bytes are already UTF-8, either because bit 11
	// was set on the owning header or an InfoZIP Unicode extra field
	// supplied a replacement. The archive comment returned by
	// CentralDirectoryReader is also tagged UTF8; its bytes are passed
	// through as read.
	UTF8
)

// ZipString pairs a field's raw on-disk bytes with the encoding that was
// used to interpret them, so a caller that cares can always get back to the
// original bytes even after the Go string conversion.
type ZipString struct {
	Raw      []byte
	Encoding StringEncoding
}

// String decodes Raw per Encoding into a Go (UTF-8) string.
func (z ZipString) String() string {
	if z.Encoding == UTF8 {
		return string(z.Raw)
	}
	decoded, err := charmap.CodePage437.NewDecoder().Bytes(z.Raw)
	if err != nil {
		return string(z.Raw)
	}
	return string(decoded)
}

// detectFilename implements the encoding-selection rule from §4.3: bit 11
// wins outright, then an InfoZIP Unicode Path override, and only then CP437.
// Per the documented bug-compatible behaviour in §9, the override's embedded
// CRC32 is not verified against raw.
func detectFilename(raw []byte, filenameIsUTF8 bool, fields []ExtraField) ZipString {
	if filenameIsUTF8 {
		return ZipString{Raw: raw, Encoding: UTF8}
	}
	if unicodePath, ok := findUnicodePath(fields); ok && unicodePath.Version == 1 {
		return ZipString{Raw: unicodePath.Unicode, Encoding: UTF8}
	}
	return ZipString{Raw: raw, Encoding: CP437}
}

// detectComment is the comment-field counterpart of detectFilename. Comments
// have no general-purpose bit of their own; bit 11 governs both per the
// wire format, so filenameIsUTF8 is passed through from the owning header.
func detectComment(raw []byte, filenameIsUTF8 bool, fields []ExtraField) ZipString {
	if filenameIsUTF8 {
		return ZipString{Raw: raw, Encoding: UTF8}
	}
	if unicodeComment, ok := findUnicodeComment(fields); ok && unicodeComment.Version == 1 {
		return ZipString{Raw: unicodeComment.Unicode, Encoding: UTF8}
	}
	return ZipString{Raw: raw, Encoding: CP437}
}
