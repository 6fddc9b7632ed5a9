package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/archsketch/archsketch/llm"
	// Register LLM providers via init()
	_ "github.com/archsketch/archsketch/llm/providers"
	"github.com/archsketch/archsketch/session"
	"github.com/archsketch/archsketch/spec"
)

func newModifyCmd() *cobra.Command {
	var specPath string
	var out string

	cmd := &cobra.Command{
		Use:   "modify <prompt>",
		Short: "Modify an existing spec with an LLM-proposed diff",
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

			current, err := readSpecFile(specPath)
			if err != nil {
				return err
			}

			client := llm.NewClient(
				llm.Endpoint{
					Provider: cfg.Model.Provider,
					Model:    cfg.Model.Name,
					URL:      cfg.Model.Endpoint,
				},
				llm.WithRetryConfig(llm.RetryConfig{
					MaxAttempts:       cfg.Retry.MaxAttempts,
					BackoffBase:       cfg.Retry.BackoffBase,
					BackoffMultiplier: 2.0,
					MaxBackoff:        cfg.Retry.MaxBackoff,
				}),
				llm.WithHTTPClient(&http.Client{Timeout: cfg.Model.Timeout}),
				llm.WithLogger(slog.Default()),
			)

			sess := session.New(p,
				session.WithRemote(llm.NewModifier(client, slog.Default())),
				session.WithInitialSpec(current),
			)

			result, err := sess.Modify(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if !result.Success {
				if result.Reasoning != "" {
					fmt.Fprintln(cmd.ErrOrStderr(), "model reasoning:", result.Reasoning)
				}
				return fmt.Errorf("modification rejected: %s", result.Error)
			}

			if result.Reasoning != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), result.Reasoning)
			}

			rendered, err := json.MarshalIndent(result.Spec, "", "  ")
			if err != nil {
				return err
			}
			if out == "" {
				out = specPath
			}
			return os.WriteFile(out, rendered, 0644)
		},
	}

	cmd.Flags().StringVarP(&specPath, "spec", "s", "archsketch.json", "path to the spec file to modify")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the modified spec here (default: overwrite --spec)")

	return cmd
}

// readSpecFile loads and validates a spec JSON file.
func readSpecFile(path string) (*spec.Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s spec.Spec
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse spec file %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("spec file %s: %w", path, err)
	}
	return &s, nil
}
