package domain

import "context"

// Rasterizer defines the interface for converting PDF pages to images
type Rasterizer interface {
	// Rasterize renders every page of pdfPath into outDir and returns the
	// pages in ascending page order.
	Rasterize(ctx context.Context, pdfPath, outDir string) ([]RasterPage, error)
}

// PageReader returns the model's markdown for a single page image.
type PageReader interface {
	Extract(ctx context.Context, imagePath string) (string, error)
}
