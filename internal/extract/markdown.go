package extract

import (
	"strings"

	"github.com/spherical/book2md/internal/domain"
)

// ProvenanceNote follows the title in every generated document.
const ProvenanceNote = "*Generated from book scans using Gemini AI*"

// Render builds the final document: title, provenance note, separator, then
// every page fragment in order, each followed by a blank line. Parts are
// joined with a newline.
func Render(stem string, pages []domain.PageResult) string {
	parts := make([]string, 0, 3+2*len(pages))
	parts = append(parts,
		"# "+stem+"\n\n",
		ProvenanceNote+"\n\n",
		"---\n\n",
	)
	for _, p := range pages {
		parts = append(parts, p.Fragment(), "\n\n")
	}
	return strings.Join(parts, "\n")
}
