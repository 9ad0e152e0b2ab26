// Package batch converts every PDF in a directory, one document at a time.
package batch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spherical/book2md/internal/config"
	"github.com/spherical/book2md/internal/domain"
	"github.com/spherical/book2md/internal/extract"
)

// Converter converts a single document. extract.Service implements it.
type Converter interface {
	Convert(ctx context.Context, req extract.Request, eventCh chan<- domain.StreamEvent) (*extract.Result, error)
}

// FileResult holds the outcome for one input file.
type FileResult struct {
	PDFPath string
	Result  *extract.Result // nil when Err is set
	Err     error
}

// Summary holds the outcome of a batch run.
type Summary struct {
	Files []FileResult
}

// Converted returns the number of documents written.
func (s Summary) Converted() int {
	n := 0
	for _, f := range s.Files {
		if f.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the documents that could not be converted.
func (s Summary) Failed() []FileResult {
	var out []FileResult
	for _, f := range s.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// Discover returns the PDFs directly inside dir, sorted by name. A missing
// directory yields no files.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, domain.IOError("Failed to read input directory", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Runner drives a Converter over a list of files
type Runner struct {
	converter Converter
	paths     config.PathsConfig
	logger    *domain.Logger
}

// NewRunner creates a batch runner writing into paths.OutputDir.
func NewRunner(converter Converter, paths config.PathsConfig) *Runner {
	return &Runner{
		converter: converter,
		paths:     paths,
		logger:    domain.DefaultLogger.WithPrefix("batch"),
	}
}

// Run converts each file in order. A failed document is logged and recorded
// and the next one is attempted; only context cancellation stops the run.
// onStart, when non-nil, is called before each document.
func (r *Runner) Run(ctx context.Context, files []string, maxPages int, eventCh chan<- domain.StreamEvent, onStart func(pdfPath string)) (Summary, error) {
	var summary Summary

	for _, pdfPath := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if onStart != nil {
			onStart(pdfPath)
		}

		stem := domain.NewSourceDocument(pdfPath).Stem
		req := extract.Request{
			PDFPath:    pdfPath,
			OutputPath: r.paths.OutputPath(stem),
			MaxPages:   maxPages,
		}

		res, err := r.converter.Convert(ctx, req, eventCh)
		if err != nil {
			r.logger.Error("Error processing %s: %v", filepath.Base(pdfPath), err)
		}
		summary.Files = append(summary.Files, FileResult{PDFPath: pdfPath, Result: res, Err: err})
	}

	r.logger.Info("Batch finished: %d converted, %d failed", summary.Converted(), len(summary.Failed()))
	return summary, nil
}
