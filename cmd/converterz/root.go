package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/derhami/Converterz/internal/cli"
	"github.com/derhami/Converterz/internal/cli/config"
	"github.com/derhami/Converterz/pkg/converter"
)

var (
	// These are set during build time using -ldflags
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// Flags persistent across commands
	cfgFile string
	verbose bool
)

// stderrIsTerminal is replaced in tests.
var stderrIsTerminal = func() bool { return term.IsTerminal(int(os.Stderr.Fd())) }

// rootCmd starts the interactive converter when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "converterz",
	Short: "Converts an image to WebP, JPEG or PNG with a deterministic file name.",
	Long: `converterz converts one image at a time into WebP, JPEG or PNG, optionally
resizing it and adjusting the encoding quality, and saves it under a name derived
from the image content, its creation date or its original file name.

Outputs are written to ~/Desktop/Converterz unless --output-dir says otherwise.
Run without a subcommand in a terminal to open the interactive form, or use
"converterz convert <image>" for a one-shot conversion.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		interactive := stderrIsTerminal()
		// The TUI owns the terminal; log records then only reach the diagnostic log.
		var logOut io.Writer = cmd.ErrOrStderr()
		if interactive {
			logOut = io.Discard
		}
		opts, logger, err := config.LoadAndValidate(cfgFile, version, verbose, cmd.Flags(), logOut)
		if err != nil {
			return err
		}
		if !interactive || !opts.TuiEnabled {
			return cmd.Help()
		}
		return cli.RunInteractive(ctx, opts, logger)
	},
}

// convertCmd converts a single image and prints a report.
var convertCmd = &cobra.Command{
	Use:   "convert <image>",
	Short: "Convert one image and print the result",
	Example: `  converterz convert photo.png
  converterz convert photo.png -f jpeg -q 85 -r 50 -n original_filename
  converterz convert scan.gif --report-format json --output-dir ./out`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		opts, logger, err := config.LoadAndValidate(cfgFile, version, verbose, cmd.Flags(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		// Conversion failures are already reported; skip cobra's usage dump.
		cmd.SilenceUsage = true
		return cli.RunConvert(ctx, opts, logger, args[0], cmd.OutOrStdout(), stderrIsTerminal())
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	rootCmd.SetVersionTemplate(`{{.Use}} version {{.Version}}` + "\n")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Configuration file path (default is to search ./converterz.yaml and $HOME/.config/converterz/)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (debug) logging output")
	rootCmd.PersistentFlags().String("output-dir", "", "Output directory (default ~/Desktop/Converterz)")
	rootCmd.PersistentFlags().Bool("retain-log", converter.DefaultRetainLog, "Keep "+converter.DiagnosticLogName+" after each conversion instead of deleting it")

	// Default selections, shared by the form and the convert command
	rootCmd.PersistentFlags().StringP("format", "f", string(converter.DefaultFormat), `Output format ("webp", "jpeg", "png")`)
	rootCmd.PersistentFlags().StringP("resize", "r", converter.DefaultResizePercentage, "Resize percentage (100 keeps the original size; never enlarges)")
	rootCmd.PersistentFlags().StringP("quality", "q", converter.DefaultQualityPercentage, "Encoding quality percentage, 1-100 (ignored for png)")
	rootCmd.PersistentFlags().StringP("naming", "n", string(converter.DefaultNamingMethod), `Naming method ("hash_only", "hash_timestamp", "original_filename")`)

	// Local flags
	rootCmd.Flags().Bool("no-tui", false, "Do not open the interactive form; print help instead")
	convertCmd.Flags().String("report-format", string(converter.DefaultReportFormat), `Result report format ("text", "json", "yaml", "toml")`)

	rootCmd.AddCommand(convertCmd)
}
