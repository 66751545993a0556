package validator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func TestValidateCleanCollection(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"collection.toml": `
[collection]
id = "wonders"
title = "World Wonders"
cover = "cover.png"
tags = ["Travel"]
schema_version = "1.0"

[[cards]]
id = "petra"
title = "Petra"
image = "images/petra.png"
completed_image = "images/petra-done.png"
`,
		"cover.png":             "x",
		"images/petra.png":      "x",
		"images/petra-done.png": "x",
	})

	results, err := NewValidator(dir).Validate()
	require.NoError(t, err)
	assert.Empty(t, results.Errors)
	assert.Empty(t, results.Warnings)
}

func TestValidateReportsProblems(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"collection.toml": `
[collection]
schema_version = "2.0"

[[cards]]
id = "a"
image = "missing.png"

[[cards]]
id = "a"
title = "Again"
image = "https://example.com/a.png"

[[cards]]
title = "No id"
image = "notes.txt"
`,
		"notes.txt":   "x",
		"orphan.jpeg": "x",
	})

	results, err := NewValidator(dir).Validate()
	require.NoError(t, err)

	assert.Contains(t, results.Errors, "collection.id is required in collection.toml")
	assert.Contains(t, results.Errors, "collection.title is required in collection.toml")
	assert.Contains(t, results.Errors, "unsupported schema_version: 2.0 (supported: 1.0)")
	assert.Contains(t, results.Errors, "card a: title is required")
	assert.Contains(t, results.Errors, "card a: image not found: missing.png")
	assert.Contains(t, results.Errors, "duplicate card id: a")
	assert.Contains(t, results.Errors, "card a: remote images are not supported: https://example.com/a.png")
	assert.Contains(t, results.Errors, "card 3: id is required")
	assert.Contains(t, results.Errors, "card 3: unsupported image format: notes.txt")

	assert.Contains(t, results.Warnings, "collection has no tags")
	assert.Contains(t, results.Warnings, "collection has no cover image")
	assert.Contains(t, results.Warnings, "image not referenced by any card: orphan.jpeg")
}

func TestValidateNoCards(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"collection.toml": `
[collection]
id = "empty"
title = "Empty"
schema_version = "1.0"
tags = ["x"]
`,
	})

	results, err := NewValidator(dir).Validate()
	require.NoError(t, err)
	assert.Contains(t, results.Errors, "collection has no cards")
}

func TestValidateMissingManifest(t *testing.T) {
	_, err := NewValidator(t.TempDir()).Validate()
	assert.Error(t, err)
}
