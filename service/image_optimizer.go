package service

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"log"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

const (
	previewCacheDir = "cache/previews"
	// Quality settings
	qualityThumb  = 60
	qualityMedium = 75
	// Size settings (max dimension)
	maxSizeThumb  = 300
	maxSizeMedium = 800
)

// EnsurePreviewCacheDir ensures the preview cache directory exists
func EnsurePreviewCacheDir() error {
	if err := os.MkdirAll(previewCacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create preview cache directory: %w", err)
	}
	return nil
}

// PreviewCachePath returns the cache file path for an uploaded design
// file and preview size
func PreviewCachePath(uploadID int64, size string) string {
	filename := fmt.Sprintf("design_upload_%d_%s.jpg", uploadID, size)
	return filepath.Join(previewCacheDir, filename)
}

// PreviewCacheExists checks if a cached preview exists
func PreviewCacheExists(cachePath string) bool {
	_, err := os.Stat(cachePath)
	return err == nil
}

// ReadPreviewFromCache reads a preview from the cache
func ReadPreviewFromCache(cachePath string) ([]byte, error) {
	data, err := os.ReadFile(cachePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read preview from cache: %w", err)
	}
	return data, nil
}

// SavePreviewToCache saves a preview to the cache
func SavePreviewToCache(cachePath string, imageData []byte) error {
	if err := os.MkdirAll(filepath.Dir(cachePath), 0755); err != nil {
		return fmt.Errorf("failed to create preview cache directory: %w", err)
	}
	if err := os.WriteFile(cachePath, imageData, 0644); err != nil {
		return fmt.Errorf("failed to write preview to cache: %w", err)
	}
	log.Printf("✓ Preview cached: %s", cachePath)
	return nil
}

// MakeArtworkPreview converts uploaded artwork (PNG, JPEG, etc.) into
// an optimized JPEG preview at "thumb" or "medium" size. The original
// upload is never modified; previews exist only for the storefront and
// the proof sheet.
func MakeArtworkPreview(imageData []byte, size string) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode artwork: %w", err)
	}

	log.Printf("📸 Artwork decoded: format=%s, bounds=%v", format, img.Bounds())

	var maxDim, quality int
	switch size {
	case "thumb":
		maxDim = maxSizeThumb
		quality = qualityThumb
	case "medium":
		maxDim = maxSizeMedium
		quality = qualityMedium
	default:
		maxDim = maxSizeMedium
		quality = qualityMedium
		log.Printf("⚠️  Unknown preview size '%s', defaulting to medium", size)
	}

	// Fit preserves aspect ratio and never upscales small artwork.
	preview := imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, preview, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode preview to JPEG: %w", err)
	}

	log.Printf("✓ Artwork preview generated: size=%s, quality=%d, output_size=%d bytes", size, quality, buf.Len())
	return buf.Bytes(), nil
}
