package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/doeshing/nhscreen/internal/app"
	"github.com/doeshing/nhscreen/internal/infrastructure/screening"
)

// NewTopicsCommand creates the topics command
func NewTopicsCommand(container *app.Container) *cobra.Command {
	var (
		scores bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "topics <file>",
		Short: "Show the health-science domains of a manuscript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.Source == nil {
				return fmt.Errorf("text source unavailable")
			}
			m, err := container.Source.Read(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch {
			case asJSON:
				return writeTopicsJSON(out, m.Text)
			case scores:
				renderTopicScores(out, screening.ScoreTopics(m.Text))
				return nil
			default:
				fmt.Fprintln(out, strings.Join(screening.ExtractTopics(m.Text), "\n"))
				return nil
			}
		},
	}

	cmd.Flags().BoolVar(&scores, "scores", false, "Show keyword hit counts for every matching domain")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print topics and scores as JSON")
	return cmd
}

func writeTopicsJSON(out io.Writer, text string) error {
	type scoreJSON struct {
		Domain string `json:"domain"`
		Score  int    `json:"score"`
	}
	payload := struct {
		Topics []string    `json:"topics"`
		Scores []scoreJSON `json:"scores"`
	}{Topics: screening.ExtractTopics(text), Scores: []scoreJSON{}}
	for _, s := range screening.ScoreTopics(text) {
		payload.Scores = append(payload.Scores, scoreJSON{Domain: s.Domain, Score: s.Score})
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func renderTopicScores(out io.Writer, scores []screening.TopicScore) {
	if len(scores) == 0 {
		fmt.Fprintln(out, "No domain keywords found.")
		return
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Domain", "Score"})
	for _, s := range scores {
		tw.AppendRow(table.Row{s.Domain, s.Score})
	}
	tw.Render()
}
