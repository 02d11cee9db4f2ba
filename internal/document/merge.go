package document

import (
	"fmt"
	"image"
	"image/draw"
)

// MergePages stacks page images top-to-bottom in page order on a white
// canvas sized to the widest page and the sum of page heights. Pages are
// pasted at x=0; narrower pages leave white padding on the right. No page
// is cropped, scaled, or reordered.
func MergePages(pages []image.Image) (image.Image, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages to merge")
	}

	var width, height int
	for _, page := range pages {
		b := page.Bounds()
		if b.Dx() > width {
			width = b.Dx()
		}
		height += b.Dy()
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	y := 0
	for _, page := range pages {
		b := page.Bounds()
		target := image.Rect(0, y, b.Dx(), y+b.Dy())
		draw.Draw(canvas, target, page, b.Min, draw.Src)
		y += b.Dy()
	}

	return canvas, nil
}
