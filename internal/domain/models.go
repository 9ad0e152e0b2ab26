package domain

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// SourceDocument is the PDF being converted.
type SourceDocument struct {
	Path string
	Stem string // file name without extension, used for output naming
}

// NewSourceDocument derives the stem from the file name.
func NewSourceDocument(path string) SourceDocument {
	base := filepath.Base(path)
	return SourceDocument{
		Path: path,
		Stem: strings.TrimSuffix(base, filepath.Ext(base)),
	}
}

// MaxDPI is the highest raster resolution accepted.
const MaxDPI = 1200

// RasterPage represents a single PDF page rendered to an image file
type RasterPage struct {
	PageNumber int // 1-based
	ImagePath  string
	DPI        float64
	Width      int
	Height     int
}

// PageResult is the outcome of extracting one page. Exactly one of Text or
// Err is meaningful: Err == nil means Text holds the model response.
type PageResult struct {
	PageNumber int
	Text       string
	Err        error
}

// OK reports whether the page was extracted successfully.
func (r PageResult) OK() bool {
	return r.Err == nil
}

// Fragment returns the markdown contributed by this page. Failed pages
// render as a visible error marker so the document keeps its page positions.
func (r PageResult) Fragment() string {
	if r.Err != nil {
		return ErrorMarker(r.PageNumber, r.Reason())
	}
	return r.Text
}

// Reason returns why the page failed with the extraction wrapper removed,
// or nil for a successful page.
func (r PageResult) Reason() error {
	var de *DomainError
	if errors.As(r.Err, &de) && de.Type == ErrorTypeExtraction && de.Err != nil {
		return de.Err
	}
	return r.Err
}

// ErrorMarker formats the inline marker written in place of a failed page.
func ErrorMarker(pageNumber int, err error) string {
	return fmt.Sprintf("\n\n[Error processing page %d: %v]\n\n", pageNumber, err)
}

// EventType represents the type of stream event
type EventType string

const (
	EventStart          EventType = "start"
	EventRasterized     EventType = "rasterized"
	EventPageProcessing EventType = "page_processing"
	EventPageComplete   EventType = "page_complete"
	EventError          EventType = "error"
	EventComplete       EventType = "complete"
)

// StreamEvent represents an event emitted during processing
type StreamEvent struct {
	Type       EventType   `json:"type"`
	Document   string      `json:"document,omitempty"`
	PageNumber int         `json:"page_number,omitempty"`
	TotalPages int         `json:"total_pages,omitempty"`
	Payload    interface{} `json:"payload,omitempty"` // status message or error text
	Timestamp  time.Time   `json:"timestamp"`
}
