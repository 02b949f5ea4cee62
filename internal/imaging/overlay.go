package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"github.com/disintegration/imaging"
)

// BoxOverlay draws word boxes over a grey pixel map. Each box outline is
// coloured by its text line (LineColor(lineIndex[i])) and labelled with the
// line number. lineIndex may be nil, in which case every box is line 0.
func BoxOverlay(pix *image.Gray, boxes []image.Rectangle, lineIndex []int) *image.RGBA {
	bounds := pix.Bounds()
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, pix, bounds.Min, draw.Src)

	labelled := make(map[int]bool)
	for i, r := range boxes {
		line := 0
		if i < len(lineIndex) {
			line = lineIndex[i]
		}
		c := LineColor(line)
		drawRect(result, r, c)

		// Label the first box of each line
		if !labelled[line] {
			labelled[line] = true
			drawLabel(result, r.Min.X, r.Min.Y-8, strconv.Itoa(line), color.RGBA{255, 255, 255, 255}, c)
		}
	}
	return result
}

// SaveOverlay writes an overlay image to path; the format follows the
// extension.
func SaveOverlay(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save overlay: %w", err)
	}
	return nil
}

func drawRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Min.Y, c)
		img.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Min.X, y, c)
		img.Set(r.Max.X-1, y, c)
	}
}

// drawLabel draws a simple text label at the given position
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	// Simple 3x5 pixel font for digits
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
	}

	bounds := img.Bounds()
	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	if y < bounds.Min.Y+1 {
		y = bounds.Min.Y + 1
	}

	// Draw background
	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			px, py := x+dx, y+dy
			if image.Pt(px, py).In(bounds) {
				img.Set(px, py, bg)
			}
		}
	}

	// Draw text
	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					px, py := cx+col, y+row
					if image.Pt(px, py).In(bounds) {
						img.Set(px, py, fg)
					}
				}
			}
		}
		cx += charWidth
	}
}
