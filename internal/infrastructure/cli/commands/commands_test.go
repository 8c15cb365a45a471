package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/doeshing/nhscreen/assets"
	"github.com/doeshing/nhscreen/internal/app"
	"github.com/doeshing/nhscreen/internal/application/doctor"
	"github.com/doeshing/nhscreen/internal/domain"
	configinfra "github.com/doeshing/nhscreen/internal/infrastructure/config"
	"github.com/doeshing/nhscreen/internal/infrastructure/screening"
	"github.com/doeshing/nhscreen/internal/infrastructure/textsource"
	"github.com/doeshing/nhscreen/internal/pkg/logger"
)

const failingManuscript = "We analysed NHANES.\nResults were mixed.\n"

func newTestContainer(t *testing.T, stdin string) *app.Container {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	loader := configinfra.NewFileLoader(filepath.Join(dir, "config.yaml"))
	cfg, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	c := &app.Container{
		Config:         cfg,
		ConfigProvider: loader,
		ConfigLoader:   loader,
		Logger:         logger.NewNop(),
		Source:         textsource.New(0).WithStdin(strings.NewReader(stdin)),
	}
	svc, pipeline, err := c.NewScreeningService(cfg)
	if err != nil {
		t.Fatalf("screening service: %v", err)
	}
	c.ScreeningService = svc
	c.DoctorService = &doctor.Service{
		ConfigProvider: loader,
		Source:         c.Source,
		Screener:       pipeline,
		LoadRules: func(path string) (int, error) {
			rules, err := screening.LoadRules(path)
			return len(rules), err
		},
	}
	return c
}

func writeManuscript(t *testing.T, name, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCheckJSONBatch(t *testing.T) {
	c := newTestContainer(t, "")
	good := writeManuscript(t, "good.txt", assets.SampleManuscript)
	other := writeManuscript(t, "other.md", "A cohort study of sleep.")

	out, err := execute(t, NewCheckCommand(c), "--format", "json", good, other)
	if err != nil {
		t.Fatalf("check error: %v", err)
	}
	var reports []domain.Report
	if err := json.Unmarshal([]byte(out), &reports); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if len(reports) != 2 {
		t.Fatalf("got %d reports", len(reports))
	}
	if reports[0].Verdict.FinalResult != domain.ResultPass || reports[1].Verdict.FinalResult != domain.ResultNotNHANES {
		t.Fatalf("unexpected results %s, %s", reports[0].Verdict.FinalResult, reports[1].Verdict.FinalResult)
	}
	if len(reports[0].Topics) == 0 || reports[1].Topics != nil {
		t.Fatalf("topics should be attached to NHANES manuscripts only: %v / %v", reports[0].Topics, reports[1].Topics)
	}
}

func TestCheckConsoleSummary(t *testing.T) {
	c := newTestContainer(t, "")
	good := writeManuscript(t, "good.txt", assets.SampleManuscript)
	bad := writeManuscript(t, "bad.txt", failingManuscript)

	out, err := execute(t, NewCheckCommand(c), "--color", "never", good, bad)
	if err != nil {
		t.Fatalf("check error: %v", err)
	}
	for _, want := range []string{"PASS: all critical checks passed", "FAIL: failed at step 2", "Screened 2 manuscript(s): 1 Pass, 1 Fail, 0 Not NHANES, 0 Error"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCheckFailOnFail(t *testing.T) {
	c := newTestContainer(t, "")
	bad := writeManuscript(t, "bad.txt", failingManuscript)

	_, err := execute(t, NewCheckCommand(c), "--format", "json", "--fail-on-fail", bad)
	if ExitCode(err) != ExitFailedVerdict {
		t.Fatalf("exit code = %d (%v), want %d", ExitCode(err), err, ExitFailedVerdict)
	}

	if _, err := execute(t, NewCheckCommand(c), "--format", "json", bad); err != nil {
		t.Fatalf("without --fail-on-fail a Fail verdict is not an error: %v", err)
	}
}

func TestCheckUnreadableFile(t *testing.T) {
	c := newTestContainer(t, "")
	missing := filepath.Join(t.TempDir(), "missing.txt")

	out, err := execute(t, NewCheckCommand(c), "--format", "json", missing)
	if err == nil || ExitCode(err) != 1 || !strings.Contains(err.Error(), "could not be screened") {
		t.Fatalf("unexpected error %v", err)
	}
	if !strings.Contains(out, `"finalResult": "Error"`) {
		t.Fatalf("error verdict not rendered:\n%s", out)
	}
}

func TestCheckStdin(t *testing.T) {
	c := newTestContainer(t, failingManuscript)
	out, err := execute(t, NewCheckCommand(c), "--format", "markdown", "-")
	if err != nil {
		t.Fatalf("check error: %v", err)
	}
	if !strings.Contains(out, "## stdin") || !strings.Contains(out, "FAIL: failed at step 2") {
		t.Fatalf("unexpected markdown:\n%s", out)
	}
}

func TestCheckOutputFileInfersFormat(t *testing.T) {
	c := newTestContainer(t, "")
	good := writeManuscript(t, "good.txt", assets.SampleManuscript)
	target := filepath.Join(t.TempDir(), "report.html")

	out, err := execute(t, NewCheckCommand(c), "-o", target, good)
	if err != nil {
		t.Fatalf("check error: %v", err)
	}
	if out != "" {
		t.Fatalf("stdout should be empty, got %q", out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<html") {
		t.Fatalf("expected html report, got %s", data)
	}
}

func TestCheckStrictRunsMethodologyChecks(t *testing.T) {
	c := newTestContainer(t, "")
	good := writeManuscript(t, "good.txt", assets.SampleManuscript)

	out, err := execute(t, NewCheckCommand(c), "--format", "json", "--strict", good)
	if err != nil {
		t.Fatalf("check error: %v", err)
	}
	var reports []domain.Report
	if err := json.Unmarshal([]byte(out), &reports); err != nil {
		t.Fatal(err)
	}
	v := reports[0].Verdict
	if v.FinalResult != domain.ResultFail || v.FailStep != 2 || len(v.CheckResults) != 3 {
		t.Fatalf("strict verdict = %s/%d with %d checks", v.FinalResult, v.FailStep, len(v.CheckResults))
	}
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		flag, output, fallback, want string
	}{
		{"JSON", "report.html", domain.FormatConsole, domain.FormatJSON},
		{"", "report.html", domain.FormatConsole, domain.FormatHTML},
		{"", "out/report.MD", domain.FormatConsole, domain.FormatMarkdown},
		{"", "report.json", domain.FormatConsole, domain.FormatJSON},
		{"", "report.txt", domain.FormatMarkdown, domain.FormatMarkdown},
		{"", "", domain.FormatConsole, domain.FormatConsole},
	}
	for _, tt := range tests {
		if got := resolveFormat(tt.flag, tt.output, tt.fallback); got != tt.want {
			t.Errorf("resolveFormat(%q, %q, %q) = %q, want %q", tt.flag, tt.output, tt.fallback, got, tt.want)
		}
	}
}

func TestChecksCommand(t *testing.T) {
	c := newTestContainer(t, "")

	out, err := execute(t, NewChecksCommand(c), "--json", "--strict")
	if err != nil {
		t.Fatalf("checks error: %v", err)
	}
	var checks []domain.CheckInfo
	if err := json.Unmarshal([]byte(out), &checks); err != nil {
		t.Fatal(err)
	}
	if len(checks) != 7 || checks[1].Name != domain.CheckSurveyDesign {
		t.Fatalf("unexpected strict table %+v", checks)
	}

	out, err = execute(t, NewChecksCommand(c))
	if err != nil {
		t.Fatalf("checks error: %v", err)
	}
	if !strings.Contains(out, domain.CheckAuthorRedFlags) || strings.Contains(out, domain.CheckWeighting) {
		t.Fatalf("unexpected default table:\n%s", out)
	}
}

func TestTopicsCommand(t *testing.T) {
	c := newTestContainer(t, "")
	path := writeManuscript(t, "paper.txt", assets.SampleManuscript)

	out, err := execute(t, NewTopicsCommand(c), "--json", path)
	if err != nil {
		t.Fatalf("topics error: %v", err)
	}
	var payload struct {
		Topics []string `json:"topics"`
		Scores []struct {
			Domain string `json:"domain"`
			Score  int    `json:"score"`
		} `json:"scores"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatal(err)
	}
	if len(payload.Topics) == 0 || len(payload.Scores) == 0 {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if payload.Topics[0] != payload.Scores[0].Domain {
		t.Fatalf("top topic %q should be the highest scoring domain %q", payload.Topics[0], payload.Scores[0].Domain)
	}
}

func TestConfigSetGetDiff(t *testing.T) {
	c := newTestContainer(t, "")

	if _, err := execute(t, NewConfigCommand(c), "set", "screening.recency_years", "6"); err != nil {
		t.Fatalf("set error: %v", err)
	}
	out, err := execute(t, NewConfigCommand(c), "get", "screening.recency_years")
	if err != nil || out != "6\n" {
		t.Fatalf("get = %q, %v", out, err)
	}

	out, err = execute(t, NewConfigCommand(c), "diff")
	if err != nil || !strings.Contains(out, "RecencyYears") {
		t.Fatalf("diff = %q, %v", out, err)
	}

	if _, err := execute(t, NewConfigCommand(c), "set", "output.format", "pdf"); err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := execute(t, NewConfigCommand(c), "set", "screening.nope", "1"); err == nil {
		t.Fatal("expected unknown key error")
	}
	if _, err := execute(t, NewConfigCommand(c), "get"); err == nil || err.Error() != ErrKeyRequired {
		t.Fatalf("expected key required error, got %v", err)
	}
}

func TestConfigDisableEnableCheck(t *testing.T) {
	c := newTestContainer(t, "")
	ctx := context.Background()

	if _, err := execute(t, NewConfigCommand(c), "disable-check", "2a.", "NHANES", "Citation"); err == nil {
		t.Fatal("citation check must not be disableable")
	}
	if _, err := execute(t, NewConfigCommand(c), "disable-check", "5.", "Title", "Template", "Check"); err != nil {
		t.Fatalf("disable error: %v", err)
	}
	cfg, err := c.ConfigProvider.Load(ctx)
	if err != nil || !cfg.IsCheckDisabled(domain.CheckTitleTemplate) {
		t.Fatalf("check not disabled: %+v, %v", cfg.Screening, err)
	}

	if _, err := execute(t, NewConfigCommand(c), "enable-check", "5.", "title", "template", "check"); err != nil {
		t.Fatalf("enable error: %v", err)
	}
	cfg, _ = c.ConfigProvider.Load(ctx)
	if cfg.IsCheckDisabled(domain.CheckTitleTemplate) {
		t.Fatal("check still disabled")
	}
}

func TestConfigPathAndValidate(t *testing.T) {
	c := newTestContainer(t, "")

	out, err := execute(t, NewConfigCommand(c), "path")
	if err != nil || strings.TrimSpace(out) != c.ConfigLoader.Path() {
		t.Fatalf("path = %q, %v", out, err)
	}
	out, err = execute(t, NewConfigCommand(c), "validate")
	if err != nil || strings.TrimSpace(out) != MsgConfigurationValid {
		t.Fatalf("validate = %q, %v", out, err)
	}
}

func TestConfigShowFormats(t *testing.T) {
	c := newTestContainer(t, "")

	out, err := execute(t, NewConfigCommand(c), "show")
	if err != nil || !strings.Contains(out, "recency_years: 10") {
		t.Fatalf("show = %q, %v", out, err)
	}
	out, err = execute(t, NewConfigCommand(c), "show", "--format", "toml")
	if err != nil || !strings.Contains(out, "[screening]") || !strings.Contains(out, "recency_years = 10") {
		t.Fatalf("show toml = %q, %v", out, err)
	}
	if _, err := execute(t, NewConfigCommand(c), "show", "--format", "ini"); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestConfigResetKeepsBackup(t *testing.T) {
	c := newTestContainer(t, "")
	if _, err := execute(t, NewConfigCommand(c), "set", "screening.recency_years", "4"); err != nil {
		t.Fatalf("set error: %v", err)
	}

	out, err := execute(t, NewConfigCommand(c), "reset")
	if err != nil || !strings.Contains(out, "Previous configuration saved to") {
		t.Fatalf("reset = %q, %v", out, err)
	}
	out, err = execute(t, NewConfigCommand(c), "diff")
	if err != nil || strings.TrimSpace(out) != MsgNoDifferencesFromDefault {
		t.Fatalf("diff after reset = %q, %v", out, err)
	}
}

func TestConfigEditValidatesResult(t *testing.T) {
	c := newTestContainer(t, "")
	t.Setenv(envKeyEditor, "true")

	out, err := execute(t, NewConfigCommand(c), "edit")
	if err != nil || strings.TrimSpace(out) != MsgConfigurationValid {
		t.Fatalf("edit = %q, %v", out, err)
	}
}

func TestDoctorCommand(t *testing.T) {
	c := newTestContainer(t, "")

	out, err := execute(t, NewDoctorCommand(c), "--json")
	if err != nil {
		t.Fatalf("doctor error: %v\n%s", err, out)
	}
	var report domain.HealthReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatal(err)
	}
	if !report.Healthy() || len(report.Checks) != 5 {
		t.Fatalf("unexpected report %+v", report.Checks)
	}

	out, err = execute(t, NewDoctorCommand(c))
	if err != nil || !strings.Contains(out, "[OK] Pipeline self-test") {
		t.Fatalf("doctor text = %q, %v", out, err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, NewVersionCommand())
	if err != nil || !strings.HasPrefix(out, "nhscreen version dev\n") {
		t.Fatalf("version = %q, %v", out, err)
	}
}
