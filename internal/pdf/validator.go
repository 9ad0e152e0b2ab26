package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spherical/book2md/internal/domain"
)

// largeFileSize triggers a warning, not a rejection.
const largeFileSize = 200 * 1024 * 1024

// Validator provides input validation for PDF files
type Validator struct {
	logger *domain.Logger
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{logger: domain.DefaultLogger.WithPrefix("pdf")}
}

// ValidatePDFPath validates that a file path is valid and points to a PDF
func (v *Validator) ValidatePDFPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return domain.ValidationError("file path cannot be empty", nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.InputError(fmt.Sprintf("PDF file not found: %s", path), err)
		}
		return domain.InputError(fmt.Sprintf("cannot access file: %s", path), err)
	}

	if info.IsDir() {
		return domain.ValidationError(fmt.Sprintf("path is a directory, not a file: %s", path), nil)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".pdf" {
		return domain.ValidationError(fmt.Sprintf("file is not a PDF (has extension %q)", ext), nil)
	}

	if info.Size() > largeFileSize {
		v.logger.Warn("PDF file is very large (%d MB), rasterizing at full resolution may take a while", info.Size()/(1024*1024))
	}

	return nil
}

// ValidateDPI validates the raster resolution
func (v *Validator) ValidateDPI(dpi float64) error {
	if dpi <= 0 || dpi > domain.MaxDPI {
		return domain.ValidationError(fmt.Sprintf("dpi must be between 1 and %d, got %v", domain.MaxDPI, dpi), nil)
	}
	return nil
}
