package card

// Card represents one card of a collection
type Card struct {
	ID             string // Unique within its collection
	Title          string // Display title
	Image          string // Image path, relative to the collection directory
	CompletedImage string // Optional image shown once the card is completed
	Position       int    // 1-based position in the collection
}

// ImageFor returns the image reference to show for the card. The completed
// image is used only when one is set.
func (c *Card) ImageFor(completed bool) string {
	if completed && c.CompletedImage != "" {
		return c.CompletedImage
	}
	return c.Image
}
