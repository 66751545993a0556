package render

import (
	"crypto/md5"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
)

// LoadImage opens and decodes an image file
func LoadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// CachedAnsi returns ANSI art for an image file, generating it into cacheDir
// on first use. The cache key covers the image path and the art size.
func CachedAnsi(cacheDir, imagePath string, width, height int) (string, error) {
	ansiDir := filepath.Join(cacheDir, "ansi_cache")
	if err := os.MkdirAll(ansiDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create ANSI cache directory: %w", err)
	}

	key := fmt.Sprintf("%s@%dx%d", imagePath, width, height)
	cachePath := filepath.Join(ansiDir, fmt.Sprintf("%x.ansi", md5.Sum([]byte(key))))

	if data, err := os.ReadFile(cachePath); err == nil {
		return string(data), nil
	}

	img, err := LoadImage(imagePath)
	if err != nil {
		return "", err
	}

	art := ImageToAnsi(img, width, height, true)
	if err := os.WriteFile(cachePath, []byte(art), 0644); err != nil {
		return "", fmt.Errorf("failed to write ANSI art to file: %w", err)
	}
	return art, nil
}
