package textsource

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize decodes raw bytes into NFC text with LF line endings. A UTF-8 or
// UTF-16 byte order mark selects the encoding and is dropped; without one the
// input is taken as UTF-8. No-break spaces become plain spaces.
func Normalize(raw []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	decoded, _, err := transform.Bytes(dec, raw)
	if err != nil {
		return "", err
	}
	decoded = bytes.ReplaceAll(decoded, []byte("\r\n"), []byte("\n"))
	decoded = bytes.ReplaceAll(decoded, []byte("\r"), []byte("\n"))
	text := norm.NFC.String(string(decoded))
	return strings.ReplaceAll(text, "\u00a0", " "), nil
}
