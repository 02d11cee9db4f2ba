package document

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
	_ "golang.org/x/image/bmp" // Register BMP decoder
)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".gif":  true,
	".heic": true,
	".heif": true,
}

// Discover lists the PDF and raster image files directly under dir.
// Extension matching is case-insensitive; both slices come back sorted
// so runs enumerate files in a stable order.
func Discover(dir string) (pdfs []string, images []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading input directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		path := filepath.Join(dir, entry.Name())
		switch {
		case ext == ".pdf":
			pdfs = append(pdfs, path)
		case imageExts[ext]:
			images = append(images, path)
		}
	}
	sort.Strings(pdfs)
	sort.Strings(images)
	return pdfs, images, nil
}

// LoadImage opens and decodes a single raster receipt and normalizes it.
// Arbitrarily large scans are accepted; there is no pixel-count ceiling.
func LoadImage(path string) (Normalized, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Normalized{}, fmt.Errorf("reading image: %w", err)
	}

	var img image.Image
	if isHEICFormat(data) {
		// Phone scans are often HEIC, which the standard image package
		// cannot decode.
		img, err = heic.Decode(bytes.NewReader(data))
		if err != nil {
			return Normalized{}, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
		if err != nil {
			return Normalized{}, fmt.Errorf("decoding image: %w", err)
		}
	}

	return Normalized{Path: path, Image: Normalize(img)}, nil
}

// LoadPDF renders every page of a PDF to a raster image, merges multi-page
// documents into one tall image, and normalizes the result. A PDF with no
// renderable pages is an error.
func LoadPDF(path string) (Normalized, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return Normalized{}, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	pages := make([]image.Image, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		img, err := doc.Image(i)
		if err != nil {
			return Normalized{}, fmt.Errorf("rendering PDF page %d: %w", i+1, err)
		}
		pages = append(pages, img)
	}

	var merged image.Image
	switch len(pages) {
	case 0:
		return Normalized{}, fmt.Errorf("PDF has no pages")
	case 1:
		merged = pages[0]
	default:
		merged, err = MergePages(pages)
		if err != nil {
			return Normalized{}, fmt.Errorf("merging PDF pages: %w", err)
		}
	}

	return Normalized{Path: path, Image: Normalize(merged)}, nil
}

// isHEICFormat checks for the ftyp box brands HEIC/HEIF files start with.
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	brand := string(data[8:12])
	return brand == "heic" || brand == "heif" || brand == "mif1" || brand == "msf1"
}
