package ui

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/schollz/progressbar/v3"

	"github.com/spherical/book2md/internal/domain"
)

// ProgressBar wraps a progressbar instance for page progress.
type ProgressBar struct {
	bar *progressbar.ProgressBar
}

// NewProgressBar creates a new progress bar with the given total and description.
func NewProgressBar(total int, description string) *ProgressBar {
	bar := progressbar.NewOptions(
		total,
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionSetWriter(Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("pages"),
		progressbar.OptionShowIts(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(Stderr, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &ProgressBar{bar: bar}
}

// Advance moves the bar forward by one page.
func (p *ProgressBar) Advance() {
	_ = p.bar.Add(1)
}

// Finish completes the progress bar.
func (p *ProgressBar) Finish() {
	_ = p.bar.Finish()
}

// Spinner wraps a spinner instance for indeterminate progress display.
type Spinner struct {
	spinner *spinner.Spinner
}

// NewSpinner creates a new spinner with the given message.
func NewSpinner(message string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Writer = Stderr
	return &Spinner{spinner: s}
}

// Start starts the spinner animation.
func (s *Spinner) Start() {
	s.spinner.Start()
}

// Stop stops the spinner animation.
func (s *Spinner) Stop() {
	s.spinner.Stop()
}

// Follow renders conversion events until events is closed: a spinner while
// the PDF is rasterized, then a page progress bar. The returned channel is
// closed once every event has been handled.
func Follow(events <-chan domain.StreamEvent) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)

		var spin *Spinner
		var bar *ProgressBar
		stopSpin := func() {
			if spin != nil {
				spin.Stop()
				spin = nil
			}
		}
		defer stopSpin()

		for e := range events {
			switch e.Type {
			case domain.EventStart:
				spin = NewSpinner(fmt.Sprintf("Converting %s to images...", e.Document))
				spin.Start()

			case domain.EventRasterized:
				stopSpin()
				Info("%v", e.Payload)
				if e.TotalPages > 0 {
					bar = NewProgressBar(e.TotalPages, "Processing pages")
				}

			case domain.EventPageComplete:
				if bar != nil {
					bar.Advance()
				}

			case domain.EventError:
				stopSpin()
				if e.PageNumber > 0 {
					Warning("Error processing page %d: %v", e.PageNumber, e.Payload)
				}

			case domain.EventComplete:
				if bar != nil {
					bar.Finish()
					bar = nil
				}
			}
		}
	}()

	return done
}
