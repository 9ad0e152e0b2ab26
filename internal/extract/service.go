package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/spherical/book2md/internal/config"
	"github.com/spherical/book2md/internal/domain"
)

// ModelFactory returns a configured model handle. It is called once per
// document before anything touches the disk.
type ModelFactory func(ctx context.Context) (domain.PageReader, error)

// Request describes one document conversion.
type Request struct {
	PDFPath    string
	OutputPath string // defaults to <OutputDir>/<stem>.md
	MaxPages   int    // 0 converts every page
}

// Result describes a finished conversion.
type Result struct {
	Document   domain.SourceDocument
	OutputPath string
	Pages      []domain.PageResult
	TotalPages int // pages in the PDF, before any cap
	Duration   time.Duration
}

// Failed returns the number of pages that degraded to an error marker.
func (r *Result) Failed() int {
	n := 0
	for _, p := range r.Pages {
		if !p.OK() {
			n++
		}
	}
	return n
}

// Service orchestrates the PDF to markdown conversion
type Service struct {
	newModel   ModelFactory
	rasterizer domain.Rasterizer
	paths      config.PathsConfig
	logger     *domain.Logger
}

// NewService creates a new conversion service
func NewService(newModel ModelFactory, rasterizer domain.Rasterizer, paths config.PathsConfig) *Service {
	return &Service{
		newModel:   newModel,
		rasterizer: rasterizer,
		paths:      paths,
		logger:     domain.DefaultLogger.WithPrefix("extract"),
	}
}

// Convert runs the whole pipeline for one PDF. Setup and rasterization
// failures abort the document; page failures become inline markers. eventCh
// may be nil.
func (s *Service) Convert(ctx context.Context, req Request, eventCh chan<- domain.StreamEvent) (*Result, error) {
	startTime := time.Now()

	if req.MaxPages < 0 {
		return nil, domain.ValidationError(fmt.Sprintf("max pages must not be negative, got %d", req.MaxPages), nil)
	}

	doc := domain.NewSourceDocument(req.PDFPath)
	logger := s.logger.With("document", doc.Stem).With("run_id", uuid.NewString())

	s.emitEvent(eventCh, domain.StreamEvent{
		Type:      domain.EventStart,
		Document:  doc.Stem,
		Payload:   fmt.Sprintf("Starting conversion of %s", req.PDFPath),
		Timestamp: time.Now(),
	})

	model, err := s.newModel(ctx)
	if err != nil {
		s.emitError(eventCh, doc.Stem, 0, err)
		return nil, err
	}

	scratchDir := s.paths.ScratchDir(doc.Stem)
	pages, err := s.rasterizer.Rasterize(ctx, req.PDFPath, scratchDir)
	if err != nil {
		logger.Error("Rasterization failed: %v", err)
		s.emitError(eventCh, doc.Stem, 0, err)
		return nil, err
	}

	totalPages := len(pages)
	if req.MaxPages > 0 && req.MaxPages < len(pages) {
		pages = pages[:req.MaxPages]
		logger.Info("Processing first %d pages only", req.MaxPages)
	}

	s.emitEvent(eventCh, domain.StreamEvent{
		Type:       domain.EventRasterized,
		Document:   doc.Stem,
		TotalPages: len(pages),
		Payload:    fmt.Sprintf("Converted %d pages to images", totalPages),
		Timestamp:  time.Now(),
	})

	results := make([]domain.PageResult, 0, len(pages))
	for _, page := range pages {
		select {
		case <-ctx.Done():
			s.emitError(eventCh, doc.Stem, page.PageNumber, ctx.Err())
			return nil, ctx.Err()
		default:
		}

		s.emitEvent(eventCh, domain.StreamEvent{
			Type:       domain.EventPageProcessing,
			Document:   doc.Stem,
			PageNumber: page.PageNumber,
			TotalPages: len(pages),
			Payload:    fmt.Sprintf("Processing page %d", page.PageNumber),
			Timestamp:  time.Now(),
		})

		logger.Debug("Processing page %d/%d", page.PageNumber, len(pages))
		result := ExtractPage(ctx, model, page, logger)
		results = append(results, result)

		if !result.OK() {
			s.emitError(eventCh, doc.Stem, page.PageNumber, result.Reason())
		}

		s.emitEvent(eventCh, domain.StreamEvent{
			Type:       domain.EventPageComplete,
			Document:   doc.Stem,
			PageNumber: page.PageNumber,
			TotalPages: len(pages),
			Payload:    fmt.Sprintf("Completed page %d", page.PageNumber),
			Timestamp:  time.Now(),
		})
	}

	outputPath := req.OutputPath
	if outputPath == "" {
		outputPath = s.paths.OutputPath(doc.Stem)
	}

	if err := writeDocument(outputPath, Render(doc.Stem, results)); err != nil {
		s.emitError(eventCh, doc.Stem, 0, err)
		return nil, err
	}

	result := &Result{
		Document:   doc,
		OutputPath: outputPath,
		Pages:      results,
		TotalPages: totalPages,
		Duration:   time.Since(startTime),
	}

	logger.Info("Markdown file saved to: %s (%d pages, %d failed)", outputPath, len(results), result.Failed())

	s.emitEvent(eventCh, domain.StreamEvent{
		Type:       domain.EventComplete,
		Document:   doc.Stem,
		TotalPages: len(results),
		Payload:    result,
		Timestamp:  time.Now(),
	})

	return result, nil
}

// writeDocument writes content next to path and renames it into place, so
// readers never observe a half-written file.
func writeDocument(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.IOError("Failed to create output directory", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return domain.IOError("Failed to create output file", err)
	}
	tmpName := tmp.Name()

	_, err = tmp.WriteString(content)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmpName, 0o644)
	}
	if err == nil {
		err = os.Rename(tmpName, path)
	}
	if err != nil {
		os.Remove(tmpName)
		return domain.IOError(fmt.Sprintf("Failed to write %s", path), err)
	}
	return nil
}

// emitEvent safely emits an event to the channel
func (s *Service) emitEvent(eventCh chan<- domain.StreamEvent, event domain.StreamEvent) {
	if eventCh != nil {
		select {
		case eventCh <- event:
		default:
			s.logger.Warn("Event channel full, dropping event: %s", event.Type)
		}
	}
}

// emitError emits an error event
func (s *Service) emitError(eventCh chan<- domain.StreamEvent, stem string, pageNumber int, err error) {
	s.emitEvent(eventCh, domain.StreamEvent{
		Type:       domain.EventError,
		Document:   stem,
		PageNumber: pageNumber,
		Payload:    err.Error(),
		Timestamp:  time.Now(),
	})
}
