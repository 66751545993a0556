package validator

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/zerei-app/zerei/internal/collection"
)

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif"}

type ValidationResults struct {
	Errors   []string
	Warnings []string
}

type Validator struct {
	CollectionPath string
	Results        ValidationResults

	manifest   collection.Manifest
	referenced map[string]bool
}

func NewValidator(collectionPath string) *Validator {
	return &Validator{
		CollectionPath: collectionPath,
		Results:        ValidationResults{},
		referenced:     make(map[string]bool),
	}
}

// Validate checks the manifest and the files it references. An error is
// returned only when the manifest cannot be read at all.
func (v *Validator) Validate() (ValidationResults, error) {
	if err := v.validateManifest(); err != nil {
		return v.Results, err
	}

	v.validateCards()
	v.validateCover()
	v.validateUnreferencedImages()

	return v.Results, nil
}

func (v *Validator) errorf(format string, args ...any) {
	v.Results.Errors = append(v.Results.Errors, fmt.Sprintf(format, args...))
}

func (v *Validator) warnf(format string, args ...any) {
	v.Results.Warnings = append(v.Results.Warnings, fmt.Sprintf(format, args...))
}

func (v *Validator) validateManifest() error {
	manifestPath := filepath.Join(v.CollectionPath, collection.ManifestName)
	if _, err := os.Stat(manifestPath); os.IsNotExist(err) {
		return fmt.Errorf("%s not found in %s", collection.ManifestName, v.CollectionPath)
	}

	if _, err := toml.DecodeFile(manifestPath, &v.manifest); err != nil {
		return fmt.Errorf("error parsing %s: %w", collection.ManifestName, err)
	}

	section := v.manifest.Collection
	if section.ID == "" {
		v.errorf("collection.id is required in %s", collection.ManifestName)
	}
	if section.Title == "" {
		v.errorf("collection.title is required in %s", collection.ManifestName)
	}
	if section.SchemaVersion == "" {
		v.errorf("collection.schema_version is required in %s", collection.ManifestName)
	} else if section.SchemaVersion != collection.SchemaVersion {
		v.errorf("unsupported schema_version: %s (supported: %s)", section.SchemaVersion, collection.SchemaVersion)
	}
	if section.Price < 0 {
		v.errorf("collection.price must not be negative")
	}
	if len(section.Tags) == 0 {
		v.warnf("collection has no tags")
	}

	return nil
}

// validateCards checks every card entry and the images it references
func (v *Validator) validateCards() {
	if len(v.manifest.Cards) == 0 {
		v.errorf("collection has no cards")
		return
	}

	seen := make(map[string]bool)
	for i, entry := range v.manifest.Cards {
		label := fmt.Sprintf("card %d", i+1)
		if entry.ID == "" {
			v.errorf("%s: id is required", label)
		} else {
			label = fmt.Sprintf("card %s", entry.ID)
			if seen[entry.ID] {
				v.errorf("duplicate card id: %s", entry.ID)
			}
			seen[entry.ID] = true
		}

		if entry.Title == "" {
			v.errorf("%s: title is required", label)
		}

		if entry.Image == "" {
			v.errorf("%s: image is required", label)
		} else {
			v.checkImage(label, entry.Image)
		}
		if entry.CompletedImage != "" {
			v.checkImage(label, entry.CompletedImage)
		}
	}
}

func (v *Validator) checkImage(label, ref string) {
	if collection.IsRemote(ref) {
		v.errorf("%s: remote images are not supported: %s", label, ref)
		return
	}
	if !hasImageExtension(ref) {
		v.errorf("%s: unsupported image format: %s", label, ref)
	}

	v.referenced[filepath.Clean(ref)] = true
	if _, err := os.Stat(filepath.Join(v.CollectionPath, ref)); os.IsNotExist(err) {
		v.errorf("%s: image not found: %s", label, ref)
	}
}

func (v *Validator) validateCover() {
	cover := v.manifest.Collection.Cover
	if cover == "" {
		v.warnf("collection has no cover image")
		return
	}
	if collection.IsRemote(cover) {
		v.warnf("cover is a remote image and will not be rendered: %s", cover)
		return
	}

	v.referenced[filepath.Clean(cover)] = true
	if _, err := os.Stat(filepath.Join(v.CollectionPath, cover)); os.IsNotExist(err) {
		v.errorf("cover image not found: %s", cover)
	}
}

// validateUnreferencedImages warns about image files no card points at
func (v *Validator) validateUnreferencedImages() {
	err := filepath.WalkDir(v.CollectionPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !hasImageExtension(path) {
			return nil
		}

		rel, err := filepath.Rel(v.CollectionPath, path)
		if err != nil {
			return err
		}
		if !v.referenced[rel] {
			v.warnf("image not referenced by any card: %s", rel)
		}
		return nil
	})
	if err != nil {
		v.errorf("error reading collection directory: %v", err)
	}
}

func hasImageExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range imageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
