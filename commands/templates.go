package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the template table in match-precedence order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			p, err := buildParser(cfg)
			if err != nil {
				return err
			}

			for i, t := range p.Templates() {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d. %-12s keywords: %s (%d nodes)\n",
					i+1, t.ID, strings.Join(t.Keywords, ", "), len(t.Spec.Nodes))
			}
			return nil
		},
	}
}
