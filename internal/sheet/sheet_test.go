package sheet

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// createTestSheet writes a solid-color PNG into dir and returns its path.
func createTestSheet(t *testing.T, dir string, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{255, 255, 255, 255})
		}
	}

	path := filepath.Join(dir, "sheet.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func TestCache_Load(t *testing.T) {
	cache := NewCache()
	path := createTestSheet(t, t.TempDir(), 120, 180)

	img1, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	bounds := img1.Bounds()
	if bounds.Dx() != 120 || bounds.Dy() != 180 {
		t.Errorf("dimensions: got %dx%d, want 120x180", bounds.Dx(), bounds.Dy())
	}

	// Second load must come from cache.
	img2, err := cache.Load(path)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("second Load did not return the cached raster")
	}
	if cache.Len() != 1 {
		t.Errorf("cache holds %d rasters, want 1", cache.Len())
	}
}

func TestCache_LoadErrors(t *testing.T) {
	cache := NewCache()

	t.Run("missing file", func(t *testing.T) {
		if _, err := cache.Load(filepath.Join(t.TempDir(), "absent.png")); err == nil {
			t.Error("Load should fail for a missing file")
		}
	})

	t.Run("not an image", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.png")
		if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if _, err := cache.Load(path); err == nil {
			t.Error("Load should fail for undecodable data")
		}
	})
}

func TestCache_EvictAndClear(t *testing.T) {
	cache := NewCache()
	dir := t.TempDir()
	path := createTestSheet(t, dir, 50, 50)

	if _, err := cache.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cache.Evict(path)
	if cache.Len() != 0 {
		t.Error("Evict did not remove the raster")
	}
	cache.Evict(path) // no-op on unknown path

	if _, err := cache.Load(path); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	cache.Clear()
	if cache.Len() != 0 {
		t.Error("Clear left rasters behind")
	}
}

func TestCache_ConcurrentLoad(t *testing.T) {
	cache := NewCache()
	path := createTestSheet(t, t.TempDir(), 40, 40)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(path); err != nil {
				t.Errorf("concurrent Load failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if cache.Len() != 1 {
		t.Errorf("cache holds %d entries after concurrent loads, want 1", cache.Len())
	}
}

func TestLoadInfo(t *testing.T) {
	cache := NewCache()
	path := createTestSheet(t, t.TempDir(), 100, 160)

	info, err := LoadInfo(cache, path)
	if err != nil {
		t.Fatalf("LoadInfo failed: %v", err)
	}

	if info.Width != 100 || info.Height != 160 {
		t.Errorf("dimensions: got %dx%d, want 100x160", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("format: got %q, want png", info.Format)
	}
	if !info.Portrait {
		t.Error("160-tall sheet not reported as portrait")
	}
	if info.FileSizeBytes <= 0 {
		t.Errorf("file size: got %d", info.FileSizeBytes)
	}
}

func TestFormatFromExt(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a.jpg", "jpeg"},
		{"a.JPEG", "jpeg"},
		{"a.png", "png"},
		{"a.gif", "gif"},
		{"a.tiff", "tiff"},
		{"a.bmp", "bmp"},
		{"a.webp", "unknown"},
		{"a", "unknown"},
	}
	for _, tt := range tests {
		if got := formatFromExt(tt.path); got != tt.want {
			t.Errorf("formatFromExt(%q): got %q, want %q", tt.path, got, tt.want)
		}
	}
}
