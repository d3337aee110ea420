// Package textenc turns input file bytes into UTF-8 text.
package textenc

import (
	"bytes"
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var boms = [][]byte{
	{0xEF, 0xBB, 0xBF},
	{0xFE, 0xFF},
	{0xFF, 0xFE},
}

// Decode honors a UTF-8 or UTF-16 byte order mark. Without one the data is
// read as UTF-8, or as Windows-1252 when it is not valid UTF-8, which is
// what older exporters write.
func Decode(data []byte) (string, error) {
	var fallback *encoding.Decoder
	if !hasBOM(data) && !utf8.Valid(data) {
		fallback = charmap.Windows1252.NewDecoder()
	} else {
		fallback = unicode.UTF8.NewDecoder()
	}

	out, _, err := transform.Bytes(unicode.BOMOverride(fallback), data)
	if err != nil {
		return "", fmt.Errorf("failed to decode text: %w", err)
	}
	return string(out), nil
}

// ReadFile reads and decodes a text file
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return Decode(data)
}

func hasBOM(data []byte) bool {
	for _, bom := range boms {
		if bytes.HasPrefix(data, bom) {
			return true
		}
	}
	return false
}
