package collection

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/zerei-app/zerei/internal/card"
)

// ManifestName is the manifest file every collection directory carries
const ManifestName = "collection.toml"

// SchemaVersion is the manifest schema this build understands
const SchemaVersion = "1.0"

// Collection represents a themed collection of cards
type Collection struct {
	ID       string
	Title    string
	Subtitle string
	Cover    string
	Tags     []string
	Price    float64
	Author   string
	Created  string
	Path     string

	// Cards in manifest order
	Cards []*card.Card

	byID map[string]*card.Card
}

// Load loads a collection from a directory
func Load(collectionPath string) (*Collection, error) {
	manifestPath := filepath.Join(collectionPath, ManifestName)
	if _, err := os.Stat(manifestPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s not found in %s", ManifestName, collectionPath)
	}

	var manifest Manifest
	if _, err := toml.DecodeFile(manifestPath, &manifest); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", ManifestName, err)
	}

	c := &Collection{
		ID:       manifest.Collection.ID,
		Title:    manifest.Collection.Title,
		Subtitle: manifest.Collection.Subtitle,
		Cover:    manifest.Collection.Cover,
		Tags:     manifest.Collection.Tags,
		Price:    manifest.Collection.Price,
		Author:   manifest.Collection.Author,
		Created:  manifest.Collection.CreatedDate,
		Path:     collectionPath,
		byID:     make(map[string]*card.Card, len(manifest.Cards)),
	}
	if c.ID == "" {
		c.ID = filepath.Base(collectionPath)
	}
	if c.Title == "" {
		c.Title = c.ID
	}

	for i, entry := range manifest.Cards {
		if entry.ID == "" {
			return nil, fmt.Errorf("card %d has no id", i+1)
		}
		if _, dup := c.byID[entry.ID]; dup {
			return nil, fmt.Errorf("duplicate card id: %s", entry.ID)
		}

		cd := &card.Card{
			ID:             entry.ID,
			Title:          entry.Title,
			Image:          entry.Image,
			CompletedImage: entry.CompletedImage,
			Position:       i + 1,
		}
		if cd.Title == "" {
			cd.Title = fmt.Sprintf("Card %d", cd.Position)
		}

		c.Cards = append(c.Cards, cd)
		c.byID[cd.ID] = cd
	}

	return c, nil
}

// Find loads the collection in libraryPath whose id is id. The directory
// named id is tried first, then every other directory in the library, since
// a manifest id need not match its directory name.
func Find(libraryPath, id string) (*Collection, error) {
	if c, err := Load(filepath.Join(libraryPath, id)); err == nil && c.ID == id {
		return c, nil
	}

	entries, err := os.ReadDir(libraryPath)
	if err != nil {
		return nil, fmt.Errorf("error reading collection library: %w", err)
	}
	for _, entry := range entries {
		path := filepath.Join(libraryPath, entry.Name())
		if info, err := os.Stat(path); err != nil || !info.IsDir() {
			continue
		}
		c, err := Load(path)
		if err != nil {
			continue
		}
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("collection %s not found in %s", id, libraryPath)
}

// GetCard gets a card by its ID. A leading '#' followed by a position
// (e.g. "#3") selects the card at that position.
func (c *Collection) GetCard(cardID string) (*card.Card, error) {
	if strings.HasPrefix(cardID, "#") {
		var pos int
		if _, err := fmt.Sscanf(cardID, "#%d", &pos); err != nil || pos < 1 || pos > len(c.Cards) {
			return nil, fmt.Errorf("card position out of range: %s", cardID)
		}
		return c.Cards[pos-1], nil
	}

	cd, ok := c.byID[cardID]
	if !ok {
		return nil, fmt.Errorf("card not found: %s", cardID)
	}
	return cd, nil
}

// Len returns the number of cards in the collection
func (c *Collection) Len() int {
	return len(c.Cards)
}

// ImagePath resolves the image to display for a card inside the collection
// directory
func (c *Collection) ImagePath(cd *card.Card, completed bool) (string, error) {
	ref := cd.ImageFor(completed)
	if ref == "" {
		return "", fmt.Errorf("card %s has no image", cd.ID)
	}
	if IsRemote(ref) {
		return "", fmt.Errorf("card %s references a remote image: %s", cd.ID, ref)
	}
	if filepath.IsAbs(ref) {
		return ref, nil
	}
	return filepath.Join(c.Path, ref), nil
}

// HasTag reports whether the collection carries tag, ignoring case
func (c *Collection) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// IsRemote reports whether an image reference is a URL rather than a file
func IsRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// Manifest mirrors collection.toml
type Manifest struct {
	Collection CollectionSection `toml:"collection"`
	Cards      []CardEntry       `toml:"cards"`
}

type CollectionSection struct {
	ID            string   `toml:"id"`
	Title         string   `toml:"title"`
	Subtitle      string   `toml:"subtitle"`
	Cover         string   `toml:"cover"`
	Tags          []string `toml:"tags"`
	Price         float64  `toml:"price"`
	SchemaVersion string   `toml:"schema_version"`
	Author        string   `toml:"author"`
	CreatedDate   string   `toml:"created_date"`
}

type CardEntry struct {
	ID             string `toml:"id"`
	Title          string `toml:"title"`
	Image          string `toml:"image"`
	CompletedImage string `toml:"completed_image"`
}
