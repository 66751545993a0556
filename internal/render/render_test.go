package render

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestCellsSolidImage(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	rows := Cells(solid(16, 16, red), 4, 3)

	require.Len(t, rows, 3)
	for _, row := range rows {
		require.Len(t, row, 4)
		for _, c := range row {
			assert.InDelta(t, 255, int(c.Top.R), 2)
			assert.InDelta(t, 0, int(c.Top.G), 2)
			assert.InDelta(t, 255, int(c.Bottom.R), 2)
		}
	}
	assert.Nil(t, Cells(solid(4, 4, red), 0, 3))
}

func TestImageToAnsi(t *testing.T) {
	art := ImageToAnsi(solid(8, 8, color.RGBA{B: 255, A: 255}), 3, 2, true)
	lines := strings.Split(strings.TrimRight(art, "\n"), "\n")

	require.Len(t, lines, 2)
	assert.Equal(t, "▀▀▀", StripAnsi(lines[0]))
	assert.Contains(t, lines[0], "\x1b[38;2;")

	plain := ImageToAnsi(solid(8, 8, color.RGBA{B: 255, A: 255}), 3, 2, false)
	assert.Equal(t, "▀▀▀\n▀▀▀\n", plain)
}

func TestCompositeFollowsMask(t *testing.T) {
	black := color.RGBA{A: 255}
	mask := image.NewAlpha(image.Rect(0, 0, 4, 2))
	for i := range mask.Pix {
		mask.Pix[i] = 0xff
	}
	mask.Pix[0] = 0 // (0,0) scratched away
	mask.Pix[1] = 0x80

	out := Composite(solid(4, 2, black), mask, OverlayColor, 1)

	assert.Equal(t, black, out.RGBAAt(0, 0))
	assert.Equal(t, OverlayColor, out.RGBAAt(3, 1))
	mid := out.RGBAAt(1, 0)
	assert.Greater(t, mid.R, uint8(0))
	assert.Less(t, mid.R, OverlayColor.R)
}

func TestCompositeOpacity(t *testing.T) {
	black := color.RGBA{A: 255}
	mask := image.NewAlpha(image.Rect(0, 0, 2, 2))
	for i := range mask.Pix {
		mask.Pix[i] = 0xff
	}

	faded := Composite(solid(8, 8, black), mask, OverlayColor, 0)
	assert.Equal(t, 2, faded.Rect.Dx(), "base is resampled to the mask size")
	assert.Equal(t, black, faded.RGBAAt(1, 1))

	full := Composite(solid(2, 2, black), nil, OverlayColor, 1)
	assert.Equal(t, OverlayColor, full.RGBAAt(0, 0))
}

func TestFadeOpacity(t *testing.T) {
	assert.Equal(t, 1.0, FadeOpacity(0))
	assert.InDelta(t, 0.5, FadeOpacity(FadeDuration/2), 0.001)
	assert.Equal(t, 0.0, FadeOpacity(FadeDuration))
	assert.Equal(t, 0.0, FadeOpacity(time.Hour))
}

func TestCachedAnsi(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "card.png")
	f, err := os.Create(imgPath)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, solid(10, 14, color.RGBA{G: 200, A: 255})))
	require.NoError(t, f.Close())

	cacheDir := filepath.Join(dir, "cache")
	art, err := CachedAnsi(cacheDir, imgPath, 5, 7)
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(cacheDir, "ansi_cache"))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// A cached entry is served even after the source is gone.
	require.NoError(t, os.Remove(imgPath))
	again, err := CachedAnsi(cacheDir, imgPath, 5, 7)
	require.NoError(t, err)
	assert.Equal(t, art, again)

	_, err = CachedAnsi(cacheDir, imgPath, 6, 7)
	assert.Error(t, err)
}
