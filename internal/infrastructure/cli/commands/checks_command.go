package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/doeshing/nhscreen/internal/app"
	"github.com/doeshing/nhscreen/internal/domain"
)

// NewChecksCommand creates the checks command listing the active check table
func NewChecksCommand(container *app.Container) *cobra.Command {
	var (
		strict bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "checks",
		Short: "List the checks the pipeline runs, in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := container.Config
			if cmd.Flags().Changed("strict") {
				cfg.Screening.StrictMethodology = strict
			}
			svc, err := screeningServiceFor(container, cfg)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(svc.Checks())
			}
			renderChecks(cmd.OutOrStdout(), svc.Checks())
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Show the table used with --strict")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func renderChecks(out io.Writer, checks []domain.CheckInfo) {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Step", "Check", "Critical", "Source"})
	for _, c := range checks {
		source := "built-in"
		if c.Custom {
			source = "custom"
		}
		tw.AppendRow(table.Row{c.Step, c.Name, yesNo(c.Critical), source})
	}
	tw.Render()
	fmt.Fprintln(out, "Step 1 (NHANES mention) always runs first and gates the rest.")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
