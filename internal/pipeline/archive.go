package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"receiptbatch/internal/scanning"
)

// Archive stores one normalized image per accepted receipt as a
// single-page PDF, named from the sanitized record fields. It is reset at
// the start of each run so stale copies from a prior run never survive.
type Archive struct {
	dir string

	mu   sync.Mutex
	used map[string]int
}

// NewArchive creates an Archive rooted at dir. The directory is not
// touched until Reset is called.
func NewArchive(dir string) *Archive {
	return &Archive{
		dir:  dir,
		used: make(map[string]int),
	}
}

// Dir returns the archive directory path.
func (a *Archive) Dir() string {
	return a.dir
}

// Reset clears any prior run's contents and recreates the directory.
// Resetting an already-empty or missing directory is a no-op.
func (a *Archive) Reset() error {
	if err := os.RemoveAll(a.dir); err != nil {
		return fmt.Errorf("clearing archive directory: %w", err)
	}
	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return fmt.Errorf("creating archive directory: %w", err)
	}
	a.mu.Lock()
	a.used = make(map[string]int)
	a.mu.Unlock()
	return nil
}

// Save writes pngData wrapped in a PDF container, named
// <date>_<service>_<detail>.pdf from the sanitized record fields. Two
// records that sanitize to the same name get a _2, _3, ... suffix instead
// of overwriting each other. Returns the filename written.
func (a *Archive) Save(rec scanning.ReceiptData, pngData []byte) (string, error) {
	base := fmt.Sprintf("%s_%s_%s",
		sanitizeField(strings.ReplaceAll(rec.Date, "/", "")),
		sanitizeField(rec.Service),
		sanitizeField(rec.Detail),
	)

	a.mu.Lock()
	n := a.used[base]
	a.used[base] = n + 1
	a.mu.Unlock()

	name := base + ".pdf"
	if n > 0 {
		name = fmt.Sprintf("%s_%d.pdf", base, n+1)
	}

	path := filepath.Join(a.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating archive file: %w", err)
	}
	defer f.Close()

	if err := api.ImportImages(nil, f, []io.Reader{bytes.NewReader(pngData)}, nil, nil); err != nil {
		return "", fmt.Errorf("writing PDF: %w", err)
	}

	return name, nil
}

// sanitizeField makes a record field safe for use in a filename.
func sanitizeField(s string) string {
	replacer := strings.NewReplacer("/", "_", " ", "_", "\t", "_")
	return replacer.Replace(s)
}
