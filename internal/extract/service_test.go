package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/book2md/internal/config"
	"github.com/spherical/book2md/internal/domain"
	"github.com/spherical/book2md/internal/pdf"
)

// fakeRasterizer pretends the PDF has pages pages, writing a placeholder
// file per page so the scratch directory behaves like the real one.
type fakeRasterizer struct {
	pages int
	err   error
	calls int
}

func (f *fakeRasterizer) Rasterize(_ context.Context, _ string, outDir string) ([]domain.RasterPage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	out := make([]domain.RasterPage, f.pages)
	for i := range out {
		path := filepath.Join(outDir, pdf.PageFileName(i+1))
		if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
			return nil, err
		}
		out[i] = domain.RasterPage{PageNumber: i + 1, ImagePath: path, DPI: 300}
	}
	return out, nil
}

// fakeReader returns deterministic text per image and fails on chosen pages.
type fakeReader struct {
	failOn map[string]error
	seen   []string
}

func (f *fakeReader) Extract(_ context.Context, imagePath string) (string, error) {
	name := filepath.Base(imagePath)
	f.seen = append(f.seen, name)
	if err, ok := f.failOn[name]; ok {
		return "", err
	}
	return fmt.Sprintf("text of %s", strings.TrimSuffix(name, ".png")), nil
}

type fixture struct {
	paths      config.PathsConfig
	rasterizer *fakeRasterizer
	reader     *fakeReader
	service    *Service
	pdfPath    string
}

func newFixture(t *testing.T, pages int) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		paths: config.PathsConfig{
			InputDir:     filepath.Join(root, "raw"),
			ProcessedDir: filepath.Join(root, "processed"),
			OutputDir:    filepath.Join(root, "output"),
		},
		rasterizer: &fakeRasterizer{pages: pages},
		reader:     &fakeReader{failOn: map[string]error{}},
		pdfPath:    filepath.Join(root, "raw", "field-guide.pdf"),
	}
	factory := func(context.Context) (domain.PageReader, error) { return f.reader, nil }
	f.service = NewService(factory, f.rasterizer, f.paths)
	return f
}

func readOutput(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

var fragmentRe = regexp.MustCompile(`text of page_(\d{4})|\[Error processing page (\d+): [^\]]*\]`)

func fragments(content string) []string {
	var out []string
	for _, m := range fragmentRe.FindAllStringSubmatch(content, -1) {
		if m[1] != "" {
			out = append(out, "ok:"+m[1])
		} else {
			out = append(out, "err:"+m[2])
		}
	}
	return out
}

func TestConvert_AllPagesInOrder(t *testing.T) {
	f := newFixture(t, 4)

	result, err := f.service.Convert(context.Background(), Request{PDFPath: f.pdfPath}, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(f.paths.OutputDir, "field-guide.md"), result.OutputPath)
	assert.Equal(t, 4, result.TotalPages)
	assert.Zero(t, result.Failed())
	require.Len(t, result.Pages, 4)

	content := readOutput(t, result.OutputPath)
	assert.Equal(t, []string{"ok:0001", "ok:0002", "ok:0003", "ok:0004"}, fragments(content))
	assert.True(t, strings.HasPrefix(content, "# field-guide\n\n\n"+ProvenanceNote+"\n\n\n---\n\n\n"))
	assert.Equal(t, []string{"page_0001.png", "page_0002.png", "page_0003.png", "page_0004.png"}, f.reader.seen)
}

func TestConvert_PageCap(t *testing.T) {
	tests := []struct {
		name     string
		pages    int
		maxPages int
		want     []string
	}{
		{"cap below page count", 5, 2, []string{"ok:0001", "ok:0002"}},
		{"cap equal to page count", 3, 3, []string{"ok:0001", "ok:0002", "ok:0003"}},
		{"cap above page count", 2, 10, []string{"ok:0001", "ok:0002"}},
		{"zero means no cap", 3, 0, []string{"ok:0001", "ok:0002", "ok:0003"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.pages)

			result, err := f.service.Convert(context.Background(), Request{PDFPath: f.pdfPath, MaxPages: tt.maxPages}, nil)
			require.NoError(t, err)

			assert.Equal(t, tt.pages, result.TotalPages)
			assert.Equal(t, tt.want, fragments(readOutput(t, result.OutputPath)))
			assert.Len(t, f.reader.seen, len(tt.want))
		})
	}
}

func TestConvert_PageFailureBecomesMarker(t *testing.T) {
	f := newFixture(t, 3)
	f.reader.failOn["page_0002.png"] = errors.New("503 service unavailable")

	result, err := f.service.Convert(context.Background(), Request{PDFPath: f.pdfPath}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Failed())
	assert.True(t, result.Pages[0].OK())
	assert.False(t, result.Pages[1].OK())
	assert.True(t, domain.IsType(result.Pages[1].Err, domain.ErrorTypeExtraction))
	assert.EqualError(t, result.Pages[1].Reason(), "503 service unavailable")

	content := readOutput(t, result.OutputPath)
	assert.Equal(t, []string{"ok:0001", "err:2", "ok:0003"}, fragments(content))
	assert.Contains(t, content, "\n\n[Error processing page 2: 503 service unavailable]\n\n")
}

func TestConvert_Idempotent(t *testing.T) {
	f := newFixture(t, 3)
	req := Request{PDFPath: f.pdfPath}

	first, err := f.service.Convert(context.Background(), req, nil)
	require.NoError(t, err)
	firstContent := readOutput(t, first.OutputPath)

	second, err := f.service.Convert(context.Background(), req, nil)
	require.NoError(t, err)

	assert.Equal(t, firstContent, readOutput(t, second.OutputPath))
}

func TestConvert_SetupFailureTouchesNothing(t *testing.T) {
	f := newFixture(t, 3)
	setupErr := domain.ConfigError("GEMINI_API_KEY not set", nil)
	service := NewService(func(context.Context) (domain.PageReader, error) { return nil, setupErr }, f.rasterizer, f.paths)

	result, err := service.Convert(context.Background(), Request{PDFPath: f.pdfPath}, nil)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, domain.IsType(err, domain.ErrorTypeConfig))

	assert.Zero(t, f.rasterizer.calls)
	assert.NoDirExists(t, f.paths.ProcessedDir)
	assert.NoDirExists(t, f.paths.OutputDir)
}

func TestConvert_RasterizationFailureAbortsDocument(t *testing.T) {
	f := newFixture(t, 0)
	f.rasterizer.err = domain.ConversionError("Failed to open PDF", errors.New("no objects found"))

	_, err := f.service.Convert(context.Background(), Request{PDFPath: f.pdfPath}, nil)
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeConversion))
	assert.Empty(t, f.reader.seen)
	assert.NoFileExists(t, f.paths.OutputPath("field-guide"))
}

func TestConvert_ExplicitOutputPath(t *testing.T) {
	f := newFixture(t, 1)
	out := filepath.Join(t.TempDir(), "nested", "deeper", "custom.md")

	result, err := f.service.Convert(context.Background(), Request{PDFPath: f.pdfPath, OutputPath: out}, nil)
	require.NoError(t, err)
	assert.Equal(t, out, result.OutputPath)

	content := readOutput(t, out)
	assert.True(t, strings.HasPrefix(content, "# field-guide\n"), "title comes from the PDF stem, not the output name")

	entries, err := os.ReadDir(filepath.Dir(out))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestConvert_OverwritesExistingOutput(t *testing.T) {
	f := newFixture(t, 1)
	out := f.paths.OutputPath("field-guide")
	require.NoError(t, os.MkdirAll(filepath.Dir(out), 0o755))
	require.NoError(t, os.WriteFile(out, []byte("stale"), 0o644))

	_, err := f.service.Convert(context.Background(), Request{PDFPath: f.pdfPath}, nil)
	require.NoError(t, err)
	assert.NotContains(t, readOutput(t, out), "stale")
}

func TestConvert_NegativeCap(t *testing.T) {
	f := newFixture(t, 1)

	_, err := f.service.Convert(context.Background(), Request{PDFPath: f.pdfPath, MaxPages: -1}, nil)
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeValidation))
	assert.Zero(t, f.rasterizer.calls)
}

func TestConvert_Cancelled(t *testing.T) {
	f := newFixture(t, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.Convert(ctx, Request{PDFPath: f.pdfPath}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, f.paths.OutputPath("field-guide"))
}

func TestConvert_Events(t *testing.T) {
	f := newFixture(t, 2)
	f.reader.failOn["page_0001.png"] = errors.New("blocked")
	events := make(chan domain.StreamEvent, 32)

	_, err := f.service.Convert(context.Background(), Request{PDFPath: f.pdfPath}, events)
	require.NoError(t, err)
	close(events)

	var types []domain.EventType
	for e := range events {
		assert.Equal(t, "field-guide", e.Document)
		types = append(types, e.Type)
	}

	assert.Equal(t, []domain.EventType{
		domain.EventStart,
		domain.EventRasterized,
		domain.EventPageProcessing, domain.EventError, domain.EventPageComplete,
		domain.EventPageProcessing, domain.EventPageComplete,
		domain.EventComplete,
	}, types)
}

func TestExtractPage(t *testing.T) {
	reader := &fakeReader{failOn: map[string]error{"page_0009.png": errors.New("boom")}}
	logger := domain.DefaultLogger

	ok := ExtractPage(context.Background(), reader, domain.RasterPage{PageNumber: 8, ImagePath: "/x/page_0008.png"}, logger)
	assert.True(t, ok.OK())
	assert.Equal(t, 8, ok.PageNumber)
	assert.Equal(t, "text of page_0008", ok.Text)

	failed := ExtractPage(context.Background(), reader, domain.RasterPage{PageNumber: 9, ImagePath: "/x/page_0009.png"}, logger)
	assert.False(t, failed.OK())
	assert.Equal(t, 9, failed.PageNumber)
	assert.Empty(t, failed.Text)
	assert.True(t, domain.IsType(failed.Err, domain.ErrorTypeExtraction))
	assert.EqualError(t, failed.Reason(), "boom")
	assert.Equal(t, "\n\n[Error processing page 9: boom]\n\n", failed.Fragment())
}

func TestExtractPage_LogsFailuresAtDebug(t *testing.T) {
	reader := &fakeReader{failOn: map[string]error{"page_0004.png": errors.New("quota exhausted")}}

	var buf bytes.Buffer
	logger := domain.NewLoggerWithConfig(domain.LogConfig{Level: domain.LogLevelInfo, Format: "json", Output: &buf})
	ExtractPage(context.Background(), reader, domain.RasterPage{PageNumber: 4, ImagePath: "/x/page_0004.png"}, logger)
	assert.Empty(t, buf.String())

	logger = domain.NewLoggerWithConfig(domain.LogConfig{Level: domain.LogLevelDebug, Format: "json", Output: &buf})
	ExtractPage(context.Background(), reader, domain.RasterPage{PageNumber: 4, ImagePath: "/x/page_0004.png"}, logger)
	assert.Contains(t, buf.String(), `"level":"debug"`)
	assert.Contains(t, buf.String(), "quota exhausted")
}
