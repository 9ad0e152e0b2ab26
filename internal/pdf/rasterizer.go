package pdf

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/gen2brain/go-fitz"

	"github.com/spherical/book2md/internal/domain"
)

// DefaultDPI is the resolution used when none is configured.
const DefaultDPI = 300

// Rasterizer renders PDF pages to PNG files using go-fitz
type Rasterizer struct {
	dpi       float64
	validator *Validator
	logger    *domain.Logger
}

// NewRasterizer creates a rasterizer at the given resolution. Non-positive
// values fall back to DefaultDPI.
func NewRasterizer(dpi float64) *Rasterizer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Rasterizer{
		dpi:       dpi,
		validator: NewValidator(),
		logger:    domain.DefaultLogger.WithPrefix("pdf"),
	}
}

// PageFileName returns the image name for a 1-based page number. The
// zero padding keeps lexical order equal to page order.
func PageFileName(pageNumber int) string {
	return fmt.Sprintf("page_%04d.png", pageNumber)
}

// Rasterize renders every page of pdfPath into outDir. Existing files in
// outDir are left alone; same-named pages are overwritten.
func (r *Rasterizer) Rasterize(ctx context.Context, pdfPath, outDir string) ([]domain.RasterPage, error) {
	if err := r.validator.ValidatePDFPath(pdfPath); err != nil {
		return nil, err
	}
	if err := r.validator.ValidateDPI(r.dpi); err != nil {
		return nil, err
	}

	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, domain.ConversionError("Failed to open PDF", err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	if pageCount == 0 {
		return nil, domain.ValidationError("PDF has no pages", nil)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, domain.IOError("Failed to create raster directory", err)
	}

	r.logger.Info("Converting PDF to images: %s (%d pages at %.0f DPI)", pdfPath, pageCount, r.dpi)

	pages := make([]domain.RasterPage, 0, pageCount)
	for i := 0; i < pageCount; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		page, err := r.renderPage(doc, i, outDir)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}

	r.logger.Info("Converted %d pages to images", len(pages))
	return pages, nil
}

func (r *Rasterizer) renderPage(doc *fitz.Document, index int, outDir string) (domain.RasterPage, error) {
	pageNumber := index + 1

	img, err := doc.ImageDPI(index, r.dpi)
	if err != nil {
		return domain.RasterPage{}, domain.ConversionError(fmt.Sprintf("Failed to render page %d", pageNumber), err)
	}

	outputPath := filepath.Join(outDir, PageFileName(pageNumber))
	outputFile, err := os.Create(outputPath)
	if err != nil {
		return domain.RasterPage{}, domain.IOError(fmt.Sprintf("Failed to create output file for page %d", pageNumber), err)
	}

	err = png.Encode(outputFile, img)
	closeErr := outputFile.Close()
	if err != nil {
		return domain.RasterPage{}, domain.ConversionError(fmt.Sprintf("Failed to encode page %d as PNG", pageNumber), err)
	}
	if closeErr != nil {
		return domain.RasterPage{}, domain.IOError(fmt.Sprintf("Failed to write page %d", pageNumber), closeErr)
	}

	bounds := img.Bounds()
	return domain.RasterPage{
		PageNumber: pageNumber,
		ImagePath:  outputPath,
		DPI:        r.dpi,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
	}, nil
}
