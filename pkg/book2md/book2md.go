// Package book2md converts scanned-book PDFs to markdown with a Gemini
// vision model.
package book2md

import (
	"context"

	"github.com/spherical/book2md/internal/batch"
	"github.com/spherical/book2md/internal/config"
	"github.com/spherical/book2md/internal/domain"
	"github.com/spherical/book2md/internal/extract"
	"github.com/spherical/book2md/internal/llm"
	"github.com/spherical/book2md/internal/pdf"
)

// Re-exported types for the public API
type (
	Config      = config.Config
	Request     = extract.Request
	Result      = extract.Result
	PageResult  = domain.PageResult
	StreamEvent = domain.StreamEvent
	EventType   = domain.EventType
	Summary     = batch.Summary
)

// Event type constants
const (
	EventStart          = domain.EventStart
	EventRasterized     = domain.EventRasterized
	EventPageProcessing = domain.EventPageProcessing
	EventPageComplete   = domain.EventPageComplete
	EventError          = domain.EventError
	EventComplete       = domain.EventComplete
)

// LoadConfig reads .env, the optional YAML file at path, and the environment.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// Client is the main entry point for the library
type Client struct {
	cfg     *Config
	service *extract.Service
	runner  *batch.Runner
}

// NewClient wires the Gemini model, the go-fitz rasterizer and the
// conversion pipeline from cfg. Credentials are checked per document, when
// the pipeline asks for a model.
func NewClient(cfg *Config) *Client {
	newModel := func(ctx context.Context) (domain.PageReader, error) {
		client, err := llm.NewClient(ctx, cfg.Gemini, cfg.Retry)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	service := extract.NewService(newModel, pdf.NewRasterizer(cfg.Conversion.DPI), cfg.Paths)

	return &Client{
		cfg:     cfg,
		service: service,
		runner:  batch.NewRunner(service, cfg.Paths),
	}
}

// CheckCredentials reports a configuration error for a missing or
// placeholder API key without doing any work.
func (c *Client) CheckCredentials() error {
	return c.cfg.Gemini.CheckCredentials()
}

// Convert converts one PDF. eventCh may be nil.
func (c *Client) Convert(ctx context.Context, req Request, eventCh chan<- StreamEvent) (*Result, error) {
	return c.service.Convert(ctx, req, eventCh)
}

// Discover lists the PDFs in the configured input directory.
func (c *Client) Discover() ([]string, error) {
	return batch.Discover(c.cfg.Paths.InputDir)
}

// ConvertAll converts files one after another, continuing past failures.
func (c *Client) ConvertAll(ctx context.Context, files []string, maxPages int, eventCh chan<- StreamEvent, onStart func(pdfPath string)) (Summary, error) {
	return c.runner.Run(ctx, files, maxPages, eventCh, onStart)
}
