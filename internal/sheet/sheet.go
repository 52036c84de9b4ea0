package sheet

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// Cache provides thread-safe caching of decoded sheet rasters.
//
// Rasters are keyed by the exact path string passed to Load, so relative
// and absolute paths to the same file occupy separate entries.
type Cache struct {
	mu      sync.RWMutex
	rasters map[string]image.Image
}

// NewCache creates an empty raster cache ready for concurrent use.
func NewCache() *Cache {
	return &Cache{
		rasters: make(map[string]image.Image),
	}
}

// Load returns the decoded raster for path, reading and decoding it on
// first use.
//
// Decoding honors the EXIF orientation tag, so a phone photo taken
// sideways comes back upright and co-registered with catalog geometry.
// Supported formats are those of the imaging package: JPEG, PNG, GIF,
// TIFF and BMP.
func (c *Cache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.rasters[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load sheet %s: %w", path, err)
	}

	c.mu.Lock()
	c.rasters[path] = img
	c.mu.Unlock()

	return img, nil
}

// Evict drops one raster from the cache. Unknown paths are a no-op.
func (c *Cache) Evict(path string) {
	c.mu.Lock()
	delete(c.rasters, path)
	c.mu.Unlock()
}

// Clear drops every cached raster, freeing the associated memory.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.rasters = make(map[string]image.Image)
	c.mu.Unlock()
}

// Len reports how many rasters are currently cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rasters)
}

// Info describes a sheet raster without exposing its pixels.
type Info struct {
	// Width and Height are the post-orientation pixel dimensions.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Format is derived from the file extension: "jpeg", "png", "gif",
	// "tiff", "bmp" or "unknown".
	Format string `json:"format"`

	// Portrait is true when the sheet is taller than wide. Answer sheets
	// are portrait; a landscape raster usually means a rotation the EXIF
	// tag did not cover.
	Portrait bool `json:"portrait"`

	// FileSizeBytes is the on-disk size of the source file.
	FileSizeBytes int64 `json:"fileSizeBytes"`
}

// LoadInfo loads a sheet through the cache and describes it.
func LoadInfo(cache *Cache, path string) (*Info, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat sheet: %w", err)
	}

	bounds := img.Bounds()
	return &Info{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        formatFromExt(path),
		Portrait:      bounds.Dy() > bounds.Dx(),
		FileSizeBytes: stat.Size(),
	}, nil
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".png":
		return "png"
	case ".gif":
		return "gif"
	case ".tif", ".tiff":
		return "tiff"
	case ".bmp":
		return "bmp"
	}
	return "unknown"
}
