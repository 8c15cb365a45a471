package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/doeshing/nhscreen/internal/domain"
	"github.com/doeshing/nhscreen/internal/pkg/logger"
)

func TestBuildContainer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	c, err := BuildContainer(context.Background(), Options{ConfigPath: path})
	if err != nil {
		t.Fatalf("BuildContainer error: %v", err)
	}
	if c.ScreeningService == nil || c.DoctorService == nil || c.Source == nil {
		t.Fatalf("container not fully wired: %+v", c)
	}
	if c.ConfigLoader.Path() != path {
		t.Fatalf("config path = %s", c.ConfigLoader.Path())
	}

	report, err := c.DoctorService.Run(context.Background())
	if err != nil {
		t.Fatalf("doctor on defaults failed: %v %+v", err, report.Checks)
	}
}

func TestBuildPipelineFallsBackOnBrokenRules(t *testing.T) {
	rules := filepath.Join(t.TempDir(), "rules.yaml")
	content := "rules:\n  custom:\n    - name: broken\n      pattern: \"([\"\n"
	if err := os.WriteFile(rules, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := domain.Config{Screening: domain.ScreeningSettings{RulesFile: rules}}
	p, err := buildPipeline(cfg, logger.NewNop())
	if err != nil {
		t.Fatalf("buildPipeline error: %v", err)
	}
	for _, c := range p.Checks() {
		if c.Custom {
			t.Fatalf("broken custom rule should be dropped: %+v", c)
		}
	}
	if len(p.Checks()) != 5 {
		t.Fatalf("expected built-in table, got %d checks", len(p.Checks()))
	}
}

func TestNewScreeningServiceHonoursStrict(t *testing.T) {
	c := &Container{Logger: logger.NewNop()}
	cfg := domain.Config{Screening: domain.ScreeningSettings{StrictMethodology: true}}

	svc, _, err := c.NewScreeningService(cfg)
	if err != nil {
		t.Fatalf("NewScreeningService error: %v", err)
	}
	if n := len(svc.Checks()); n != 7 {
		t.Fatalf("strict table has %d checks, want 7", n)
	}
}
