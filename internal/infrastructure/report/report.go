// Package report renders screening reports for people and machines.
package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/doeshing/nhscreen/internal/domain"
	"github.com/doeshing/nhscreen/internal/ports"
)

// New returns the renderer for format. color is one of auto, always, never;
// auto colours only when out is a terminal.
func New(format, color string, out io.Writer) (ports.Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", domain.FormatConsole:
		return &Console{Color: ShouldColorize(color, out)}, nil
	case domain.FormatJSON:
		return &JSON{Indent: "  "}, nil
	case domain.FormatMarkdown:
		return &Markdown{}, nil
	case domain.FormatHTML:
		return &HTML{}, nil
	default:
		return nil, fmt.Errorf("output format: unsupported value %q", format)
	}
}

// ShouldColorize resolves a colour mode against the output stream.
func ShouldColorize(mode string, out io.Writer) bool {
	switch strings.ToLower(mode) {
	case domain.ColorAlways:
		return true
	case domain.ColorNever:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return IsTerminal(out)
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// checkRow is the flattened form of a CheckResult shared by the table renderers.
type checkRow struct {
	Step     string
	Name     string
	Result   string
	Critical string
	Details  string
}

func checkRows(v domain.Verdict) []checkRow {
	rows := make([]checkRow, 0, len(v.CheckResults))
	for _, r := range v.CheckResults {
		result := "PASS"
		if !r.Passed {
			result = "FAIL"
			if !r.Critical {
				result = "WARN"
			}
		}
		critical := "no"
		if r.Critical {
			critical = "yes"
		}
		rows = append(rows, checkRow{
			Step:     strconv.Itoa(r.Step),
			Name:     r.CheckName,
			Result:   result,
			Critical: critical,
			Details:  r.Details,
		})
	}
	return rows
}

func headline(v domain.Verdict) string {
	switch v.FinalResult {
	case domain.ResultPass:
		return "PASS: all critical checks passed"
	case domain.ResultFail:
		return fmt.Sprintf("FAIL: failed at step %d", v.FailStep)
	case domain.ResultNotNHANES:
		return "NOT NHANES: manuscript does not use NHANES data"
	case domain.ResultError:
		return "ERROR: analysis could not be completed"
	default:
		return string(v.FinalResult)
	}
}
