package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/spherical/book2md/internal/domain"
	"github.com/spherical/book2md/internal/ui"
	"github.com/spherical/book2md/pkg/book2md"
)

var (
	cfgFile string
	verbose bool
	noColor bool

	// cfg is loaded once per invocation in PersistentPreRunE.
	cfg *book2md.Config
)

// converter is the part of book2md.Client the commands drive.
type converter interface {
	CheckCredentials() error
	Convert(ctx context.Context, req book2md.Request, eventCh chan<- book2md.StreamEvent) (*book2md.Result, error)
	Discover() ([]string, error)
	ConvertAll(ctx context.Context, files []string, maxPages int, eventCh chan<- book2md.StreamEvent, onStart func(pdfPath string)) (book2md.Summary, error)
}

var newClient = func(c *book2md.Config) converter {
	return book2md.NewClient(c)
}

var rootCmd = &cobra.Command{
	Use:   "book2md",
	Short: "Convert scanned-book PDFs to markdown with Gemini",
	Long: `book2md renders every page of a scanned book PDF to an image and asks a
Gemini vision model to transcribe it as markdown. Pages that fail are kept
in place as visible error markers.

Environment:
  GEMINI_API_KEY   Gemini API key (required)
  GEMINI_MODEL     model override (default gemini-2.0-flash-exp)
  MAX_PAGES        page cap per PDF (--max-pages wins)`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ui.InitUI(noColor)

		c, err := book2md.LoadConfig(cfgFile)
		if err != nil {
			return err
		}

		level := domain.ParseLogLevel(c.Observability.LogLevel)
		if verbose {
			level = domain.LogLevelDebug
		}
		domain.SetDefaultLogger(domain.NewLoggerWithConfig(domain.LogConfig{
			Level:  level,
			Format: c.Observability.LogFormat,
		}))

		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// resolveMaxPages applies the precedence flag > environment/config.
func resolveMaxPages(cmd *cobra.Command, flagValue int) int {
	if cmd.Flags().Changed("max-pages") {
		return flagValue
	}
	return cfg.Conversion.MaxPages
}
