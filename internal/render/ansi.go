// Package render turns card images into terminal cells and ANSI art, with or
// without the scratch-off overlay on top.
package render

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
)

// Cell is one terminal cell drawn with an upper half block: Top is the
// foreground colour, Bottom the background colour.
type Cell struct {
	Top    color.RGBA
	Bottom color.RGBA
}

// Cells resamples img to width x height cells. Each cell covers a 2x2 block
// of the resized image: the top pair becomes the foreground, the bottom pair
// the background.
func Cells(img image.Image, width, height int) [][]Cell {
	if width <= 0 || height <= 0 {
		return nil
	}

	// Resize image to desired dimensions (doubled for half-block characters)
	resized := resize.Resize(uint(width*2), uint(height*2), img, resize.Lanczos3)

	rows := make([][]Cell, height)
	for row := 0; row < height; row++ {
		rows[row] = make([]Cell, width)
		y := row * 2
		for col := 0; col < width; col++ {
			x := col * 2

			// Get the four pixels that will make up one character cell
			c1, _ := colorful.MakeColor(getColorAt(resized, x, y))
			c2, _ := colorful.MakeColor(getColorAt(resized, x+1, y))
			c3, _ := colorful.MakeColor(getColorAt(resized, x, y+1))
			c4, _ := colorful.MakeColor(getColorAt(resized, x+1, y+1))

			rows[row][col] = Cell{
				Top:    colorfulToColor(averageColor(c1, c2)),
				Bottom: colorfulToColor(averageColor(c3, c4)),
			}
		}
	}
	return rows
}

// ImageToAnsi converts an image to half-block ANSI art
func ImageToAnsi(img image.Image, width, height int, trueColor bool) string {
	var buffer strings.Builder
	for _, row := range Cells(img, width, height) {
		for _, c := range row {
			buffer.WriteString(ansiColorString('▀', c.Top, c.Bottom, trueColor))
		}
		buffer.WriteString("\n")
	}
	return buffer.String()
}

// getColorAt returns the color at a specific coordinate
func getColorAt(img image.Image, x, y int) color.Color {
	bounds := img.Bounds()
	if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
		return img.At(x, y)
	}
	return color.RGBA{0, 0, 0, 255}
}

// averageColor calculates the average of multiple colors
func averageColor(colors ...colorful.Color) colorful.Color {
	var r, g, b float64
	for _, c := range colors {
		r += c.R
		g += c.G
		b += c.B
	}
	count := float64(len(colors))
	return colorful.Color{R: r / count, G: g / count, B: b / count}
}

// colorfulToColor converts a colorful.Color to an opaque color.RGBA
func colorfulToColor(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// ansiColorString formats a character with ANSI color codes
func ansiColorString(char rune, fg, bg color.RGBA, trueColor bool) string {
	if trueColor {
		return fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm%c\x1b[0m",
			fg.R, fg.G, fg.B, bg.R, bg.G, bg.B, char)
	}

	// Without colour support only the shape survives
	return string(char)
}

// StripAnsi removes ANSI escape sequences from a string
func StripAnsi(s string) string {
	var result strings.Builder
	inEscape := false
	for _, c := range s {
		if inEscape {
			if c == 'm' {
				inEscape = false
			}
		} else if c == '\033' {
			inEscape = true
		} else {
			result.WriteRune(c)
		}
	}
	return result.String()
}
