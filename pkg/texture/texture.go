// Package texture turns image bytes into self-contained data URIs.
package texture

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

const (
	MimePNG  = "image/png"
	MimeJPEG = "image/jpeg"
)

// Options controls how images are normalized
type Options struct {
	// MaxSize limits the longest side in pixels, 0 keeps the original size
	MaxSize int
}

// DataURI wraps raw bytes in a base64 data URI
func DataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// IsDataURI reports whether s is a data URI
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// ParseDataURI returns the mime type and decoded payload of a base64 data URI
func ParseDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("data URI has no payload")
	}
	mimeType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("only base64 data URIs are supported")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode data URI: %w", err)
	}
	return mimeType, data, nil
}

// Format identifies an image container from its leading bytes. TGA has no
// magic number and is the fallback.
func Format(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return "png"
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return "jpeg"
	case bytes.HasPrefix(data, []byte("GIF8")):
		return "gif"
	case bytes.HasPrefix(data, []byte("BM")):
		return "bmp"
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return "webp"
	default:
		return "tga"
	}
}

type codec struct {
	decode       func(io.Reader) (image.Image, error)
	decodeConfig func(io.Reader) (image.Config, error)
}

// codecs are called directly so that format detection never depends on
// the order in which image formats were registered.
var codecs = map[string]codec{
	"png":  {png.Decode, png.DecodeConfig},
	"jpeg": {jpeg.Decode, jpeg.DecodeConfig},
	"gif":  {gif.Decode, gif.DecodeConfig},
	"bmp":  {bmp.Decode, bmp.DecodeConfig},
	"webp": {webp.Decode, webp.DecodeConfig},
	"tga":  {tga.Decode, tga.DecodeConfig},
}

// Decode reads any supported image
func Decode(data []byte) (image.Image, string, error) {
	format := Format(data)
	img, err := codecs[format].decode(bytes.NewReader(data))
	if err != nil {
		return nil, format, fmt.Errorf("failed to decode %s image: %w", format, err)
	}
	return img, format, nil
}

// Normalize returns image bytes that every glTF viewer can display. PNG and
// JPEG input within the size limit is passed through. Anything else is
// decoded and re-encoded as PNG.
func Normalize(data []byte, opts Options) ([]byte, string, error) {
	format := Format(data)
	cfg, err := codecs[format].decodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s image header: %w", format, err)
	}

	fits := opts.MaxSize <= 0 || (cfg.Width <= opts.MaxSize && cfg.Height <= opts.MaxSize)
	switch {
	case format == "png" && fits:
		return data, MimePNG, nil
	case format == "jpeg" && fits:
		return data, MimeJPEG, nil
	}

	img, _, err := Decode(data)
	if err != nil {
		return nil, "", err
	}
	if !fits {
		img = downscale(img, opts.MaxSize)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), MimePNG, nil
}

// EncodeURI normalizes image bytes and wraps them in a data URI
func EncodeURI(data []byte, opts Options) (string, error) {
	out, mimeType, err := Normalize(data, opts)
	if err != nil {
		return "", err
	}
	return DataURI(mimeType, out), nil
}

// downscale fits img into a maxSize square keeping the aspect ratio
func downscale(img image.Image, maxSize int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w >= h {
		h = max(1, h*maxSize/w)
		w = maxSize
	} else {
		w = max(1, w*maxSize/h)
		h = maxSize
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
