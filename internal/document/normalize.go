package document

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// MaxSide bounds the longest side of any image sent to extraction.
const MaxSide = 1024

// Normalize converts an image to the NRGBA color model and downscales it,
// preserving aspect ratio, so its longest side is at most MaxSide. Images
// already within the bound keep their dimensions; nothing is ever upscaled.
// Downscaling uses Catmull-Rom resampling to keep receipt text legible.
func Normalize(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	longest := w
	if h > longest {
		longest = h
	}

	if longest > MaxSide {
		scale := float64(MaxSide) / float64(longest)
		w = int(float64(w) * scale)
		h = int(float64(h) * scale)
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
		return dst
	}

	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
	return dst
}
