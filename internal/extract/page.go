package extract

import (
	"context"
	"fmt"

	"github.com/spherical/book2md/internal/domain"
)

// ExtractPage runs the model on one raster page. Failures of any kind are
// returned inside the PageResult as an extraction error, never as an error
// return, so the caller can keep going with the next page.
func ExtractPage(ctx context.Context, reader domain.PageReader, page domain.RasterPage, logger *domain.Logger) domain.PageResult {
	text, err := reader.Extract(ctx, page.ImagePath)
	if err != nil {
		// The progress display reports page failures to the user.
		logger.Debug("Page %d failed: %v", page.PageNumber, err)
		return domain.PageResult{
			PageNumber: page.PageNumber,
			Err:        domain.ExtractionError(fmt.Sprintf("page %d", page.PageNumber), err),
		}
	}
	return domain.PageResult{PageNumber: page.PageNumber, Text: text}
}
