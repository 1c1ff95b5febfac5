package packet

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// wire is the string encoding of ReadS/WriteS. nil means UTF-8.
var wire encoding.Encoding

// SetCharset selects the string encoding by its WHATWG name
// ("utf-8", "big5", "windows-1252", ...). Call once at boot.
func SetCharset(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "utf-8") || strings.EqualFold(name, "utf8") {
		wire = nil
		return nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return fmt.Errorf("charset %q: %w", name, err)
	}
	wire = enc
	return nil
}

// Charset returns the canonical name of the current wire encoding.
func Charset() string {
	if wire == nil {
		return "utf-8"
	}
	name, err := htmlindex.Name(wire)
	if err != nil {
		return "unknown"
	}
	return name
}

func decodeString(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	if wire == nil || isASCII(raw) {
		return string(raw)
	}
	decoded, err := wire.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

func encodeString(s string) []byte {
	if wire == nil || isASCII([]byte(s)) {
		return []byte(s)
	}
	encoded, err := wire.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return encoded
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}
	return true
}
