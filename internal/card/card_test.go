package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImageFor(t *testing.T) {
	plain := &Card{ID: "1", Image: "images/1.png"}
	withDone := &Card{ID: "2", Image: "images/2.png", CompletedImage: "images/2-done.png"}

	assert.Equal(t, "images/1.png", plain.ImageFor(false))
	assert.Equal(t, "images/1.png", plain.ImageFor(true))
	assert.Equal(t, "images/2.png", withDone.ImageFor(false))
	assert.Equal(t, "images/2-done.png", withDone.ImageFor(true))
}
