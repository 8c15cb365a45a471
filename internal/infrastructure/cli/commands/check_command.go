package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/nhscreen/internal/app"
	screeningapp "github.com/doeshing/nhscreen/internal/application/screening"
	"github.com/doeshing/nhscreen/internal/domain"
	"github.com/doeshing/nhscreen/internal/infrastructure/cli/helpers"
	"github.com/doeshing/nhscreen/internal/infrastructure/report"
)

type checkOptions struct {
	format      string
	color       string
	output      string
	strict      bool
	failOnFail  bool
	concurrency int
}

// NewCheckCommand creates the check command
func NewCheckCommand(container *app.Container) *cobra.Command {
	var opts checkOptions

	cmd := &cobra.Command{
		Use:   "check <file...>",
		Short: "Screen one or more manuscripts (use - for stdin)",
		Long: "Screen manuscripts against the NHANES rule pipeline.\n" +
			"Supported inputs: .txt, .md, .docx, .pdf, or - to read stdin.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("strict") {
				opts.strict = container.Config.Screening.StrictMethodology
			}
			return runCheck(cmd, container, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Output format: console, json, markdown, html (default from config)")
	cmd.Flags().StringVar(&opts.color, "color", "", "Colour mode: auto, always, never (default from config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Run survey design and weighting checks as critical step 2 checks")
	cmd.Flags().BoolVar(&opts.failOnFail, "fail-on-fail", false, "Exit with status 2 when any manuscript fails or errors")
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "j", 0, "Manuscripts screened in parallel (default from config)")

	return cmd
}

func runCheck(cmd *cobra.Command, container *app.Container, paths []string, opts checkOptions) error {
	cfg := container.Config
	cfg.Screening.StrictMethodology = opts.strict

	format := resolveFormat(opts.format, opts.output, cfg.GetOutputFormat())
	color := cfg.Output.Color
	if opts.color != "" {
		color = opts.color
	}
	concurrency := cfg.GetBatchConcurrency()
	if opts.concurrency > 0 {
		concurrency = opts.concurrency
	}

	svc, err := screeningServiceFor(container, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.output != "" {
		file, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer file.Close()
		out = file
	}
	renderer, err := report.New(format, color, out)
	if err != nil {
		return err
	}

	var spinner *helpers.Spinner
	if report.IsTerminal(cmd.ErrOrStderr()) {
		spinner = helpers.NewSpinner(cmd.ErrOrStderr(), fmt.Sprintf("Screening %d manuscript(s)...", len(paths)))
		spinner.Start()
	}
	reports, err := svc.ScreenFiles(cmd.Context(), paths, concurrency)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}

	if err := renderer.Render(out, reports); err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	summary := screeningapp.Summarize(reports)
	if len(reports) > 1 && strings.EqualFold(format, domain.FormatConsole) {
		printSummary(out, summary)
	}
	return checkOutcome(summary, opts.failOnFail)
}

// screeningServiceFor reuses the container's service unless cfg changes the
// check table.
func screeningServiceFor(container *app.Container, cfg domain.Config) (*screeningapp.Service, error) {
	if cfg.Screening.StrictMethodology == container.Config.Screening.StrictMethodology && container.ScreeningService != nil {
		return container.ScreeningService, nil
	}
	if container.Logger == nil {
		return nil, fmt.Errorf(ErrScreeningServiceUnavailable)
	}
	svc, _, err := container.NewScreeningService(cfg)
	return svc, err
}

// resolveFormat picks the explicit flag, then the output file extension, then
// the configured default.
func resolveFormat(flag, output, fallback string) string {
	if flag != "" {
		return strings.ToLower(flag)
	}
	switch strings.ToLower(filepath.Ext(output)) {
	case ".json":
		return domain.FormatJSON
	case ".md", ".markdown":
		return domain.FormatMarkdown
	case ".html", ".htm":
		return domain.FormatHTML
	}
	return fallback
}

func printSummary(out io.Writer, s screeningapp.Summary) {
	fmt.Fprintf(out, "\nScreened %d manuscript(s): %d Pass, %d Fail, %d Not NHANES, %d Error\n",
		s.Total,
		s.ByResult[domain.ResultPass],
		s.ByResult[domain.ResultFail],
		s.ByResult[domain.ResultNotNHANES],
		s.ByResult[domain.ResultError])
	if s.Total > s.ByResult[domain.ResultNotNHANES]+s.ByResult[domain.ResultError] {
		fmt.Fprintf(out, "Passed checks per NHANES manuscript: mean %.2f, median %.2f\n", s.MeanPassed, s.MedianPassed)
	}
}

func checkOutcome(s screeningapp.Summary, failOnFail bool) error {
	if failOnFail && s.Failed() > 0 {
		return &ExitError{
			Code: ExitFailedVerdict,
			Err:  fmt.Errorf("%d of %d manuscript(s) failed screening", s.Failed(), s.Total),
		}
	}
	if n := s.ByResult[domain.ResultError]; n > 0 {
		return fmt.Errorf("%d manuscript(s) could not be screened", n)
	}
	return nil
}
