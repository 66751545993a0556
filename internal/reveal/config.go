package reveal

// Config holds the brush and threshold tiers for a reveal surface
type Config struct {
	// Viewports narrower than this use the small tier
	SmallViewportWidth float64

	SmallBrushRadius float64
	LargeBrushRadius float64

	SmallThreshold float64
	LargeThreshold float64

	// Upper bound on buffer pixels; larger surfaces are never made interactive
	MaxBufferPixels int
}

// Tier is the brush radius and reveal threshold in effect for a viewport
type Tier struct {
	BrushRadius float64
	Threshold   float64
}

// DefaultConfig returns the stock tiers: a 30 unit brush and 50% threshold
// below 768 units of viewport width, a 50 unit brush and 60% threshold otherwise.
func DefaultConfig() Config {
	return Config{
		SmallViewportWidth: 768,
		SmallBrushRadius:   30,
		LargeBrushRadius:   50,
		SmallThreshold:     0.50,
		LargeThreshold:     0.60,
		MaxBufferPixels:    16 << 20,
	}
}

// TierFor picks the tier for a viewport width. A non-positive width means
// the viewport is unknown and the large tier applies.
func (c Config) TierFor(viewportWidth float64) Tier {
	if viewportWidth > 0 && viewportWidth < c.SmallViewportWidth {
		return Tier{BrushRadius: c.SmallBrushRadius, Threshold: c.SmallThreshold}
	}
	return Tier{BrushRadius: c.LargeBrushRadius, Threshold: c.LargeThreshold}
}
