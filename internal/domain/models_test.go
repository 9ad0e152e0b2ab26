package domain

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSourceDocument(t *testing.T) {
	tests := []struct {
		path string
		stem string
	}{
		{"data/raw/moby-dick.pdf", "moby-dick"},
		{"/abs/path/Vol.1 Scan.PDF", "Vol.1 Scan"},
		{"noext", "noext"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			doc := NewSourceDocument(tt.path)
			assert.Equal(t, tt.path, doc.Path)
			assert.Equal(t, tt.stem, doc.Stem)
		})
	}
}

func TestPageResult_Fragment(t *testing.T) {
	ok := PageResult{PageNumber: 2, Text: "## Chapter Two\n\nIt was a dark night."}
	assert.True(t, ok.OK())
	assert.Equal(t, ok.Text, ok.Fragment())

	failed := PageResult{PageNumber: 3, Err: errors.New("quota exceeded")}
	assert.False(t, failed.OK())
	assert.Equal(t, "\n\n[Error processing page 3: quota exceeded]\n\n", failed.Fragment())
}

func TestPageResult_ExtractionErrorKeepsMarkerText(t *testing.T) {
	cause := APIError("model call failed", errors.New("503"))
	failed := PageResult{PageNumber: 5, Err: ExtractionError("page 5", cause)}

	assert.True(t, IsType(failed.Err, ErrorTypeExtraction))
	assert.Same(t, cause, failed.Reason())
	assert.Equal(t, "\n\n[Error processing page 5: [api] model call failed: 503]\n\n", failed.Fragment())

	assert.Nil(t, PageResult{PageNumber: 1, Text: "ok"}.Reason())
}

func TestErrorMarker_WrapsDomainError(t *testing.T) {
	err := APIError("model call failed", errors.New("503"))
	marker := ErrorMarker(7, err)
	assert.Contains(t, marker, "[Error processing page 7: [api] model call failed: 503]")
}

func TestIsType(t *testing.T) {
	base := ConfigError("GEMINI_API_KEY not set", nil)
	wrapped := fmt.Errorf("setup: %w", base)

	assert.True(t, IsType(base, ErrorTypeConfig))
	assert.True(t, IsType(wrapped, ErrorTypeConfig))
	assert.False(t, IsType(wrapped, ErrorTypeConversion))
	assert.False(t, IsType(errors.New("plain"), ErrorTypeConfig))
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("no such file")
	err := IOError("write markdown", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "[io] write markdown: no such file", err.Error())
	assert.Equal(t, "[input] missing", InputError("missing", nil).Error())
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLogLevel("DEBUG"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("warning"))
	assert.Equal(t, LogLevelError, ParseLogLevel("error"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel(""))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("bogus"))
}

func TestLogger_JSONFieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithConfig(LogConfig{Level: LogLevelInfo, Format: "json", Output: &buf})

	logger.WithPrefix("extract").With("document", "atlas").Info("Converted %d pages", 12)
	logger.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, `"component":"extract"`)
	assert.Contains(t, out, `"document":"atlas"`)
	assert.Contains(t, out, `"message":"Converted 12 pages"`)
	assert.NotContains(t, out, "hidden")
}
