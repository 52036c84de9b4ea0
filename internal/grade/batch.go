package grade

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/inkscale/marksheet/internal/catalog"
	"github.com/inkscale/marksheet/internal/mark"
)

// DefaultWorkers bounds batch concurrency when the caller passes 0.
const DefaultWorkers = 4

// Loader resolves a sheet reference to a decoded raster.
//
// sheet.Cache satisfies this; tests substitute in-memory fakes.
type Loader interface {
	Load(path string) (image.Image, error)
}

// Sheet identifies one image to grade within a batch.
type Sheet struct {
	// StudentID is the caller-assigned identity stamped on the report.
	StudentID string

	// Path is the raster location, passed through to the Loader.
	Path string
}

// Result carries the outcome for one sheet of a batch.
//
// Exactly one of Report and Err is set. A sheet that failed to decode
// keeps its slot so batch output always aligns with batch input.
type Result struct {
	Sheet  Sheet
	Report *Report
	Err    error
}

// GradeBatch grades every sheet against one shared catalog.
//
// Up to workers sheets are processed concurrently; results always come
// back in submission order. The catalog is read-only during the batch, so
// sharing it across workers is safe, and each sheet's raster is owned by
// the goroutine that graded it.
//
// A sheet whose raster cannot be loaded yields a Result with Err set and
// no report. Other sheets are unaffected. Cancelling ctx stops scheduling
// new sheets; sheets already graded keep their completed reports and the
// remainder carry ctx's error.
func GradeBatch(ctx context.Context, loader Loader, sheets []Sheet, c *catalog.Catalog, p mark.Policy, workers int) []Result {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]Result, len(sheets))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, workers)

	for i, s := range sheets {
		results[i].Sheet = s

		if err := ctx.Err(); err != nil {
			results[i].Err = fmt.Errorf("batch cancelled: %w", err)
			continue
		}

		wg.Add(1)
		go func(idx int, s Sheet) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			img, err := loader.Load(s.Path)
			if err != nil {
				results[idx].Err = fmt.Errorf("failed to load sheet %s: %w", s.Path, err)
				return
			}
			results[idx].Report = GradeSheet(img, c, p, s.StudentID)
		}(i, s)
	}

	wg.Wait()
	return results
}
