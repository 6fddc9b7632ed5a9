// Package commands implements the archsketch CLI.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/archsketch/archsketch/config"
	"github.com/archsketch/archsketch/parser"
)

// NewRootCmd builds the archsketch command tree.
func NewRootCmd(version string) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:     "archsketch",
		Short:   "Natural-language infrastructure architecture generator",
		Long:    "archsketch turns Korean/English prompts into infrastructure architecture graphs\nand applies incremental natural-language modifications to them.",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newModifyCmd())
	root.AddCommand(newTemplatesCmd())

	return root
}

// loadConfig loads layered configuration for a command.
func loadConfig() (*config.Config, error) {
	return config.NewLoader(slog.Default()).Load()
}

// buildParser constructs the parser from configuration, honoring a
// config-supplied template table when one is set.
func buildParser(cfg *config.Config) (*parser.Parser, error) {
	opts := []parser.Option{parser.WithLogger(slog.Default())}
	if cfg.Parser.TemplatesFile != "" {
		templates, err := parser.LoadTemplates(cfg.Parser.TemplatesFile)
		if err != nil {
			return nil, fmt.Errorf("load templates: %w", err)
		}
		opts = append(opts, parser.WithTemplates(templates))
	}
	return parser.New(opts...), nil
}
