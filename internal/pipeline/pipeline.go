package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"receiptbatch/internal/document"
	"receiptbatch/internal/ledger"
	"receiptbatch/internal/scanning"
)

// Config tunes the two worker pools. Zero values pick the defaults:
// one load worker per CPU and eight concurrent extraction calls.
type Config struct {
	LoadWorkers    int
	ExtractWorkers int
}

// Pipeline runs the batch: discover files, load and normalize them in a
// CPU-bound pool, extract fields in an I/O-bound pool, archiving and
// recording each accepted receipt. No single document failure aborts the
// batch; failed documents are logged and dropped.
type Pipeline struct {
	scanner scanning.Scanner
	archive *Archive
	ledger  *ledger.Ledger // optional
	cfg     Config
}

// New creates a Pipeline. led may be nil to disable the run ledger.
func New(scanner scanning.Scanner, archive *Archive, led *ledger.Ledger, cfg Config) *Pipeline {
	return &Pipeline{
		scanner: scanner,
		archive: archive,
		ledger:  led,
		cfg:     cfg,
	}
}

// Run processes every receipt under inputDir and returns the accepted
// records in completion order. Callers must not rely on the order; the
// report layer re-sorts by date.
func (p *Pipeline) Run(ctx context.Context, inputDir string) ([]scanning.ReceiptData, error) {
	pdfs, images, err := document.Discover(inputDir)
	if err != nil {
		return nil, fmt.Errorf("discovering input files: %w", err)
	}
	slog.Info("Discovered input files", "pdfs", len(pdfs), "images", len(images))

	if err := p.archive.Reset(); err != nil {
		return nil, err
	}

	loaded := p.loadAll(pdfs, images)
	results := p.extractAll(ctx, loaded)

	slog.Info("Run complete", "accepted", len(results))
	return results, nil
}

// loadAll runs Stage A: decode, render, merge, and normalize every input
// file in a pool sized for CPU-bound work. Failed loads are logged and
// excluded.
func (p *Pipeline) loadAll(pdfs, images []string) []document.Normalized {
	workers := p.cfg.LoadWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var (
		mu     sync.Mutex
		loaded []document.Normalized
	)
	var eg errgroup.Group
	eg.SetLimit(workers)

	for _, path := range images {
		eg.Go(func() error {
			img, err := document.LoadImage(path)
			if err != nil {
				slog.Warn("Image load failed", "path", path, "error", err)
				return nil
			}
			mu.Lock()
			loaded = append(loaded, img)
			mu.Unlock()
			return nil
		})
	}
	for _, path := range pdfs {
		eg.Go(func() error {
			img, err := document.LoadPDF(path)
			if err != nil {
				slog.Warn("PDF load failed", "path", path, "error", err)
				return nil
			}
			mu.Lock()
			loaded = append(loaded, img)
			mu.Unlock()
			return nil
		})
	}

	// Tasks swallow their own errors, so Wait never fails.
	_ = eg.Wait()
	return loaded
}

// extractAll runs Stage B: one extraction call per loaded image in a pool
// sized for network-bound work. Failed or empty extractions are logged
// and excluded.
func (p *Pipeline) extractAll(ctx context.Context, loaded []document.Normalized) []scanning.ReceiptData {
	workers := p.cfg.ExtractWorkers
	if workers <= 0 {
		workers = 8
	}

	runKey := time.Now().Format("20060102_150405")

	var (
		mu      sync.Mutex
		results []scanning.ReceiptData
	)
	var eg errgroup.Group
	eg.SetLimit(workers)

	for _, img := range loaded {
		eg.Go(func() error {
			rec := p.extractOne(ctx, img, runKey)
			if rec != nil {
				mu.Lock()
				results = append(results, *rec)
				mu.Unlock()
			}
			return nil
		})
	}

	_ = eg.Wait()
	return results
}

// extractOne sends one normalized image to the scanner and, on success,
// archives the image and records the result. Archive and ledger failures
// do not discard the record.
func (p *Pipeline) extractOne(ctx context.Context, img document.Normalized, runKey string) *scanning.ReceiptData {
	pngData, err := document.EncodePNG(img.Image)
	if err != nil {
		slog.Warn("Image encode failed", "path", img.Path, "error", err)
		return nil
	}

	rec, err := p.scanner.Extract(ctx, pngData)
	if err != nil {
		slog.Warn("Extraction failed", "path", img.Path, "error", err)
		return nil
	}
	if rec == nil {
		slog.Info("No fields extracted", "path", img.Path)
		return nil
	}

	slog.Info("Receipt accepted",
		"file", filepath.Base(img.Path),
		"date", rec.Date,
		"service", rec.Service,
		"detail", rec.Detail,
	)

	if _, err := p.archive.Save(*rec, pngData); err != nil {
		slog.Warn("Archive write failed", "path", img.Path, "error", err)
	}

	if p.ledger != nil {
		if err := p.ledger.Append(runKey, *rec); err != nil {
			slog.Warn("Ledger append failed", "path", img.Path, "error", err)
		}
	}

	return rec
}
