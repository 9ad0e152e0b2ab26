package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/spherical/book2md/internal/ui"
	"github.com/spherical/book2md/pkg/book2md"
)

var batchMaxPages int

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Convert every PDF in the input directory",
	Long: `Convert each PDF in the input directory to <output-dir>/<name>.md, one
after another. A PDF that fails is reported and skipped; the rest are still
converted.`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().IntVarP(&batchMaxPages, "max-pages", "m", 0, "maximum number of pages to process per PDF")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	client := newClient(cfg)

	files, err := client.Discover()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		ui.Message("No PDF files found in %s directory", cfg.Paths.InputDir)
		return nil
	}

	ui.Info("Found %d PDF file(s) to process:", len(files))
	for _, f := range files {
		ui.Message("  - %s", filepath.Base(f))
	}

	// One credential check for the whole run, before any file is touched.
	if err := client.CheckCredentials(); err != nil {
		return err
	}

	events := make(chan book2md.StreamEvent, 100)
	done := ui.Follow(events)

	summary, runErr := client.ConvertAll(cmd.Context(), files, resolveMaxPages(cmd, batchMaxPages), events, func(pdfPath string) {
		ui.Banner("Processing: " + filepath.Base(pdfPath))
	})
	close(events)
	<-done

	for _, f := range summary.Failed() {
		ui.Error("Error processing %s: %v", filepath.Base(f.PDFPath), f.Err)
	}
	ui.Info("%d converted, %d failed", summary.Converted(), len(summary.Failed()))
	ui.Banner("Batch processing complete!")

	return runErr
}
