package document

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

// Normalized is a raster image ready for extraction: RGB color model,
// longest side bounded, paired with the path of the document it came from.
type Normalized struct {
	Path  string
	Image image.Image
}

// EncodePNG encodes an image as PNG bytes for the extraction gateway
// and the archive.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}
