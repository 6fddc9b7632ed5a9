package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/archsketch/archsketch/export"
	"github.com/archsketch/archsketch/feedback"
	"github.com/archsketch/archsketch/session"
	"github.com/archsketch/archsketch/spec"
)

func newGenerateCmd() *cobra.Command {
	var format string
	var out string

	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Generate an architecture spec from a natural-language prompt",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			p, err := buildParser(cfg)
			if err != nil {
				return err
			}

			notifier := feedback.Notifier(feedback.Nop{})
			if cfg.NATS.URL != "" {
				nc, err := nats.Connect(cfg.NATS.URL)
				if err != nil {
					slog.Warn("feedback disabled, NATS unreachable", "url", cfg.NATS.URL, "error", err)
				} else {
					defer nc.Close()
					notifier = feedback.NewNATSNotifier(nc, slog.Default())
				}
			}

			sess := session.New(p,
				session.WithNotifier(notifier),
				session.WithHistoryLimit(cfg.Parser.HistoryLimit),
			)

			prompt := strings.Join(args, " ")
			result := sess.Parse(prompt)
			if !result.Success {
				return fmt.Errorf("parse failed: %s", result.Error)
			}

			for _, w := range result.Warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
			}

			rendered, err := render(result, format)
			if err != nil {
				return err
			}

			if out != "" {
				return os.WriteFile(out, rendered, 0644)
			}
			_, err = cmd.OutOrStdout().Write(rendered)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, hcl, mermaid")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write output to a file instead of stdout")

	return cmd
}

// render serializes a parse result in the requested format.
func render(result spec.ParseResult, format string) ([]byte, error) {
	switch format {
	case "json":
		return json.MarshalIndent(result, "", "  ")
	case "hcl":
		return export.HCL(result.Spec)
	case "mermaid":
		s, err := export.Mermaid(result.Spec)
		if err != nil {
			return nil, err
		}
		return []byte(s), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want json, hcl or mermaid)", format)
	}
}
