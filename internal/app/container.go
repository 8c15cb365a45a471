package app

import (
	"context"
	"os"

	"github.com/doeshing/nhscreen/internal/application/doctor"
	screeningapp "github.com/doeshing/nhscreen/internal/application/screening"
	"github.com/doeshing/nhscreen/internal/domain"
	"github.com/doeshing/nhscreen/internal/infrastructure/config"
	"github.com/doeshing/nhscreen/internal/infrastructure/screening"
	"github.com/doeshing/nhscreen/internal/infrastructure/textsource"
	"github.com/doeshing/nhscreen/internal/pkg/logger"
	"github.com/doeshing/nhscreen/internal/ports"
)

// Options controls container construction.
type Options struct {
	Verbose    bool
	ConfigPath string
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config           domain.Config
	ConfigProvider   ports.ConfigProvider
	ConfigLoader     *config.FileLoader
	Logger           *logger.SlogLogger
	Source           *textsource.Reader
	ScreeningService *screeningapp.Service
	DoctorService    *doctor.Service
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	cfgLoader := config.NewFileLoader(opts.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Options{
		Level:   cfg.GetLogLevel(),
		Format:  cfg.GetLogFormat(),
		Verbose: opts.Verbose,
	})
	if err != nil {
		log, _ = logger.New(logger.Options{Verbose: opts.Verbose})
		log.Warn("invalid logging config, using defaults", map[string]interface{}{"error": err.Error()})
	}

	source := textsource.New(cfg.GetMaxInputBytes()).WithStdin(os.Stdin)
	c := &Container{
		Config:         cfg,
		ConfigProvider: cfgLoader,
		ConfigLoader:   cfgLoader,
		Logger:         log,
		Source:         source,
	}

	svc, pipeline, err := c.NewScreeningService(cfg)
	if err != nil {
		return nil, err
	}
	c.ScreeningService = svc
	c.DoctorService = &doctor.Service{
		ConfigProvider: cfgLoader,
		Source:         source,
		Screener:       pipeline,
		LoadRules: func(path string) (int, error) {
			rules, err := screening.LoadRules(path)
			return len(rules), err
		},
	}
	return c, nil
}

// NewScreeningService builds a screening service for cfg, which may differ
// from the loaded config by command-line overrides.
func (c *Container) NewScreeningService(cfg domain.Config) (*screeningapp.Service, *screening.Pipeline, error) {
	pipeline, err := buildPipeline(cfg, c.Logger)
	if err != nil {
		return nil, nil, err
	}
	return &screeningapp.Service{
		Source:   c.Source,
		Screener: pipeline,
		Topics:   pipeline,
		Logger:   c.Logger,
	}, pipeline, nil
}

// buildPipeline compiles the check table. A broken rules file is logged and
// the built-in table is used instead.
func buildPipeline(cfg domain.Config, log ports.Logger) (*screening.Pipeline, error) {
	opts := screening.Options{
		StrictMethodology: cfg.Screening.StrictMethodology,
		Disabled:          cfg.Screening.DisabledChecks,
		RecencyYears:      cfg.GetRecencyYears(),
	}

	rules, err := screening.LoadRules(cfg.Screening.RulesFile)
	if err != nil {
		log.Warn("custom rules ignored", map[string]interface{}{
			"path":  cfg.Screening.RulesFile,
			"error": err.Error(),
		})
		return screening.NewPipeline(opts)
	}
	opts.CustomRules = rules

	pipeline, err := screening.NewPipeline(opts)
	if err != nil {
		log.Warn("custom rules ignored", map[string]interface{}{"error": err.Error()})
		opts.CustomRules = nil
		return screening.NewPipeline(opts)
	}
	return pipeline, nil
}
