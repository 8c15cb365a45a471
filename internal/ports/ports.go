// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// The screening core and the application services depend only on these
// interfaces; concrete adapters (file readers, config loaders, renderers,
// the rule pipeline itself) live in the infrastructure layer.
package ports

import (
	"context"
	"io"

	"github.com/doeshing/nhscreen/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.nhscreen/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// TextSource turns a manuscript file into decoded text.
type TextSource interface {
	Read(ctx context.Context, path string) (domain.Manuscript, error)
	Supported() []string
}

// Screener evaluates manuscript text against the rule pipeline.
// Evaluate is a pure function of its input.
type Screener interface {
	Evaluate(text string) domain.Verdict
	Checks() []domain.CheckInfo
}

// TopicExtractor assigns health-science domains to a manuscript.
type TopicExtractor interface {
	ExtractTopics(text string) []string
}

// Renderer presents reports. It must cope with every FinalResult and with
// an empty check list.
type Renderer interface {
	Render(w io.Writer, reports []domain.Report) error
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
