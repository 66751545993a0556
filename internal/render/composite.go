package render

import (
	"image"
	"image/color"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
)

// OverlayColor is the scratch-off coating
var OverlayColor = color.RGBA{R: 0xe5, G: 0xe7, B: 0xeb, A: 0xff}

// FadeDuration is how long the coating takes to fade out once revealed
const FadeDuration = 700 * time.Millisecond

// Composite lays the coating over base. The coating's per-pixel alpha comes
// from mask, scaled by opacity. base is resampled to the mask's size. A nil
// mask stands for an unbroken coating.
func Composite(base image.Image, mask *image.Alpha, overlay color.Color, opacity float64) *image.RGBA {
	opacity = clamp01(opacity)

	var bounds image.Rectangle
	if mask != nil {
		bounds = mask.Rect
	} else {
		bounds = base.Bounds()
	}
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}

	scaled := Scale(base, w, h)
	sb := scaled.Bounds()
	coat, _ := colorful.MakeColor(overlay)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := opacity
			if mask != nil {
				a *= float64(mask.Pix[y*mask.Stride+x]) / 255
			}

			under, _ := colorful.MakeColor(opaque(scaled.At(sb.Min.X+x, sb.Min.Y+y)))
			switch {
			case a <= 0:
				out.SetRGBA(x, y, colorfulToColor(under))
			case a >= 1:
				out.SetRGBA(x, y, colorfulToColor(coat))
			default:
				out.SetRGBA(x, y, colorfulToColor(under.BlendRgb(coat, a)))
			}
		}
	}
	return out
}

// Scale resamples img to exactly w x h pixels, returning it unchanged when
// it already has that size
func Scale(img image.Image, w, h int) image.Image {
	if b := img.Bounds(); b.Dx() == w && b.Dy() == h {
		return img
	}
	return resize.Resize(uint(w), uint(h), img, resize.Bilinear)
}

// FadeOpacity returns the coating opacity elapsed into the fade-out
func FadeOpacity(elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 1
	}
	if elapsed >= FadeDuration {
		return 0
	}
	return 1 - float64(elapsed)/float64(FadeDuration)
}

// opaque drops alpha so transparent image regions render as their colour
// rather than as black
func opaque(c color.Color) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = 0xff
	return n
}

func clamp01(v float64) float64 {
	if v < 0 || v != v {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
