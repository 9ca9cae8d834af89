package process

import (
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// EncodeWideString encodes s as UTF-16LE followed by a 16-bit NUL
func EncodeWideString(s string) ([]byte, error) {
	b, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("encode %q: %w", s, err)
	}
	return append(b, 0, 0), nil
}

// DecodeWideString decodes UTF-16LE bytes up to the first 16-bit NUL
func DecodeWideString(b []byte) (string, error) {
	n := WideStringLen(b)
	out, err := utf16le.NewDecoder().Bytes(b[:n*2])
	if err != nil {
		return "", fmt.Errorf("decode wide string: %w", err)
	}
	return string(out), nil
}

// WideStringLen returns the number of UTF-16 units before the first NUL,
// or the number of whole units in b if it holds none
func WideStringLen(b []byte) int {
	for i := 0; i+1 < len(b); i += 2 {
		if b[i] == 0 && b[i+1] == 0 {
			return i / 2
		}
	}
	return len(b) / 2
}

// AOBFromWideString builds an exact pattern for the NUL-terminated UTF-16LE form of s
func AOBFromWideString(s string) (AOB, error) {
	b, err := EncodeWideString(s)
	if err != nil {
		return AOB{}, err
	}
	return AOBFromBytes(b), nil
}
