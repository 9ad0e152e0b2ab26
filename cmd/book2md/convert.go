package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spherical/book2md/internal/domain"
	"github.com/spherical/book2md/internal/ui"
	"github.com/spherical/book2md/pkg/book2md"
)

var (
	convertOutput   string
	convertMaxPages int
)

var convertCmd = &cobra.Command{
	Use:   "convert <pdf>",
	Short: "Convert one PDF to markdown",
	Long: `Convert a single PDF. A relative path is resolved against the input
directory (data/raw by default). The markdown is written to
data/output/<name>.md unless --output is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "output markdown file (default: <output-dir>/<pdf-name>.md)")
	convertCmd.Flags().IntVarP(&convertMaxPages, "max-pages", "m", 0, "maximum number of pages to process")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	pdfPath := cfg.Paths.ResolveInput(args[0])
	if _, err := os.Stat(pdfPath); err != nil {
		return domain.InputError(fmt.Sprintf("PDF file not found: %s", pdfPath), nil)
	}

	maxPages := resolveMaxPages(cmd, convertMaxPages)
	client := newClient(cfg)

	events := make(chan book2md.StreamEvent, 100)
	done := ui.Follow(events)

	result, err := client.Convert(cmd.Context(), book2md.Request{
		PDFPath:    pdfPath,
		OutputPath: convertOutput,
		MaxPages:   maxPages,
	}, events)
	close(events)
	<-done

	if err != nil {
		return err
	}

	if len(result.Pages) < result.TotalPages {
		ui.Info("Processed first %d of %d pages", len(result.Pages), result.TotalPages)
	}
	if n := result.Failed(); n > 0 {
		ui.Warning("%d page(s) could not be extracted and are marked in the output", n)
	}
	ui.Success("Markdown file saved to: %s", result.OutputPath)
	ui.Success("Processing complete!")
	return nil
}
