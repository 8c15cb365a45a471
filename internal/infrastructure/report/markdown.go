package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/doeshing/nhscreen/internal/domain"
)

// Markdown renders a document with one section per manuscript.
type Markdown struct{}

// Render implements ports.Renderer.
func (m *Markdown) Render(w io.Writer, reports []domain.Report) error {
	_, err := io.WriteString(w, markdownDocument(reports))
	return err
}

func markdownDocument(reports []domain.Report) string {
	var b strings.Builder
	b.WriteString("# NHANES Screening Report\n")
	for _, rep := range reports {
		v := rep.Verdict
		fmt.Fprintf(&b, "\n## %s\n\n", escapeMarkdown(rep.Manuscript))
		fmt.Fprintf(&b, "**Result:** %s\n\n", headline(v))
		if rep.ID != "" {
			fmt.Fprintf(&b, "Run `%s`\n\n", rep.ID)
		}
		if len(rep.Topics) > 0 {
			fmt.Fprintf(&b, "**Topics:** %s\n\n", escapeMarkdown(strings.Join(rep.Topics, ", ")))
		}

		b.WriteString("### Details\n\n")
		for _, line := range v.Details {
			fmt.Fprintf(&b, "- %s\n", escapeMarkdown(line))
		}

		rows := checkRows(v)
		if len(rows) == 0 {
			continue
		}
		b.WriteString("\n### Checks\n\n")
		b.WriteString("| Step | Check | Result | Critical | Details |\n")
		b.WriteString("|---:|---|---|---|---|\n")
		for _, r := range rows {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				r.Step, cell(r.Name), r.Result, r.Critical, cell(r.Details))
		}
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"<", "&lt;",
	">", "&gt;",
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// cell escapes text for a table cell.
func cell(s string) string {
	s = strings.ReplaceAll(escapeMarkdown(s), "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
