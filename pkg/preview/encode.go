package preview

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
)

// Image formats supported by Encode
const (
	FormatPNG  = "png"
	FormatWebP = "webp"
)

// FormatFromPath picks the output format from a file extension
func FormatFromPath(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return FormatPNG, nil
	case ".webp":
		return FormatWebP, nil
	default:
		return "", fmt.Errorf("unsupported preview format %q, use .png or .webp", ext)
	}
}

// Encode writes img in the given format
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case FormatPNG:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("failed to encode png: %w", err)
		}
	case FormatWebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("failed to encode webp: %w", err)
		}
	default:
		return fmt.Errorf("unsupported preview format %q", format)
	}
	return nil
}
