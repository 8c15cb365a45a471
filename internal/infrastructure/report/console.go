package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/muesli/termenv"

	"github.com/doeshing/nhscreen/internal/domain"
)

const detailsColumnWidth = 60

// Console renders a banner, the detail trail and a table of executed checks.
type Console struct {
	Color bool
}

type consoleStyles struct {
	title, pass, fail, warn, muted lipgloss.Style
}

func (c *Console) styles(w io.Writer) consoleStyles {
	r := lipgloss.NewRenderer(w)
	if c.Color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return consoleStyles{
		title: r.NewStyle().Bold(true),
		pass:  r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		fail:  r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		warn:  r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		muted: r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Render implements ports.Renderer.
func (c *Console) Render(w io.Writer, reports []domain.Report) error {
	st := c.styles(w)
	var b strings.Builder
	for i, rep := range reports {
		if i > 0 {
			b.WriteString("\n")
		}
		c.renderOne(&b, st, rep)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (c *Console) renderOne(b *strings.Builder, st consoleStyles, rep domain.Report) {
	v := rep.Verdict
	fmt.Fprintln(b, st.title.Render("Manuscript: "+rep.Manuscript))
	fmt.Fprintln(b, bannerStyle(st, v.FinalResult).Render(headline(v)))
	if len(rep.Topics) > 0 {
		fmt.Fprintln(b, st.muted.Render("Topics: "+strings.Join(rep.Topics, ", ")))
	}

	fmt.Fprintln(b)
	for _, line := range v.Details {
		var style lipgloss.Style
		switch domain.StatusOf(line) {
		case domain.DetailPass:
			style = st.pass
		case domain.DetailFail:
			style = st.fail
		case domain.DetailWarning:
			style = st.warn
		default:
			style = st.muted
		}
		fmt.Fprintln(b, "  "+style.Render(line))
	}

	rows := checkRows(v)
	if len(rows) == 0 {
		return
	}
	fmt.Fprintln(b)
	fmt.Fprintln(b, c.checksTable(st, rows))
}

func bannerStyle(st consoleStyles, result domain.FinalResult) lipgloss.Style {
	switch result {
	case domain.ResultPass:
		return st.pass
	case domain.ResultFail, domain.ResultError:
		return st.fail
	default:
		return st.warn
	}
}

func (c *Console) checksTable(st consoleStyles, rows []checkRow) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Step", "Check", "Result", "Critical", "Details"})
	for _, r := range rows {
		result := r.Result
		switch r.Result {
		case "PASS":
			result = st.pass.Render(result)
		case "FAIL":
			result = st.fail.Render(result)
		case "WARN":
			result = st.warn.Render(result)
		}
		tw.AppendRow(table.Row{r.Step, r.Name, result, r.Critical, r.Details})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, WidthMax: detailsColumnWidth},
	})
	return tw.Render()
}
