// Package encoding converts the single-byte Windows-1252 text stored in game
// archives and model assets to UTF-8 and back.
package encoding

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// DecodeWindows1252 converts Windows-1252 bytes to a UTF-8 string.
// Returns the bytes as-is if conversion fails.
func DecodeWindows1252(data []byte) string {
	if isASCII(data) {
		return string(data)
	}
	result, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// EncodeWindows1252 converts a UTF-8 string to Windows-1252 bytes.
// Characters outside the code page are replaced by the substitute byte 0x1A.
func EncodeWindows1252(s string) []byte {
	if isASCII([]byte(s)) {
		return []byte(s)
	}
	enc := encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())
	result, _, err := transform.Bytes(enc, []byte(s))
	if err != nil {
		return bytes.Map(func(r rune) rune {
			if r >= 0x80 {
				return 0x1A
			}
			return r
		}, []byte(s))
	}
	return result
}

// CString decodes a NUL-terminated Windows-1252 byte sequence.
func CString(data []byte) string {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	return DecodeWindows1252(data)
}

// NormalizeName normalizes an archive member name for case-insensitive lookup.
func NormalizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	return strings.ToLower(name)
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}
