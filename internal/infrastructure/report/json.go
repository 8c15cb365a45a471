package report

import (
	"encoding/json"
	"io"

	"github.com/doeshing/nhscreen/internal/domain"
)

// JSON writes the reports as a JSON array.
type JSON struct {
	Indent string
}

// Render implements ports.Renderer.
func (j *JSON) Render(w io.Writer, reports []domain.Report) error {
	if reports == nil {
		reports = []domain.Report{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if j.Indent != "" {
		enc.SetIndent("", j.Indent)
	}
	return enc.Encode(reports)
}
