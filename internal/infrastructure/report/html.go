package report

import (
	"io"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/doeshing/nhscreen/internal/domain"
)

const htmlTitle = "NHANES Screening Report"

// HTML converts the Markdown report into a standalone page.
type HTML struct{}

// Render implements ports.Renderer.
func (h *HTML) Render(w io.Writer, reports []domain.Report) error {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Title: htmlTitle,
		Flags: mdhtml.CommonFlags | mdhtml.CompletePage | mdhtml.HrefTargetBlank,
	})
	_, err := w.Write(markdown.ToHTML([]byte(markdownDocument(reports)), p, renderer))
	return err
}
