package screening

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/doeshing/nhscreen/internal/domain"
	"github.com/doeshing/nhscreen/internal/ports"
)

// Service runs manuscripts through the screening pipeline and wraps each
// verdict in a report.
type Service struct {
	Source   ports.TextSource
	Screener ports.Screener
	Topics   ports.TopicExtractor
	Logger   ports.Logger

	// Now and NewID are replaced in tests.
	Now   func() time.Time
	NewID func() string
}

func (s *Service) ready() error {
	if s.Screener == nil || s.Logger == nil {
		return errors.New("screening.Service dependencies not satisfied")
	}
	return nil
}

// ScreenText evaluates already decoded text.
func (s *Service) ScreenText(ctx context.Context, name, text string) (domain.Report, error) {
	if err := s.ready(); err != nil {
		return domain.Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.Report{}, err
	}
	return s.evaluate(domain.Manuscript{Name: name, Text: text}), nil
}

// ScreenFile reads and evaluates one manuscript. A read failure is reported
// as an Error verdict in the returned report and also returned as err.
func (s *Service) ScreenFile(ctx context.Context, path string) (domain.Report, error) {
	if err := s.ready(); err != nil {
		return domain.Report{}, err
	}
	if s.Source == nil {
		return domain.Report{}, errors.New("screening.Service has no text source")
	}

	m, err := s.Source.Read(ctx, path)
	if err != nil {
		s.Logger.Error("read manuscript failed", err, map[string]interface{}{"path": path})
		report := s.newReport(domain.Manuscript{Name: path})
		report.Verdict = domain.NewErrorVerdict(err.Error())
		return report, fmt.Errorf("read %s: %w", path, err)
	}
	return s.evaluate(m), nil
}

// ScreenFiles screens paths with at most concurrency files in flight.
// Reports come back in input order. Per-file read errors become Error
// verdicts; only cancellation aborts the batch.
func (s *Service) ScreenFiles(ctx context.Context, paths []string, concurrency int) ([]domain.Report, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if concurrency <= 0 {
		concurrency = domain.DefaultBatchConcurrency
	}

	reports := make([]domain.Report, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report, err := s.ScreenFile(gctx, path)
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.Logger.Info("batch screened", map[string]interface{}{
		"files":       len(paths),
		"concurrency": concurrency,
	})
	return reports, nil
}

// evaluate is the error boundary: a fault inside the pipeline becomes an
// Error verdict instead of escaping.
func (s *Service) evaluate(m domain.Manuscript) (report domain.Report) {
	report = s.newReport(m)
	start := report.StartedAt

	defer func() {
		if r := recover(); r != nil {
			report.Verdict = domain.NewErrorVerdict(fmt.Sprint(r))
			report.Topics = nil
			s.Logger.Error("screening panicked", fmt.Errorf("%v", r), map[string]interface{}{
				"run_id":     report.ID,
				"manuscript": m.Name,
			})
		}
		report.Duration = s.now().Sub(start)
	}()

	report.Verdict = s.Screener.Evaluate(m.Text)
	if s.Topics != nil && report.Verdict.IsNHANES {
		report.Topics = s.Topics.ExtractTopics(m.Text)
	}

	s.Logger.Debug("manuscript screened", map[string]interface{}{
		"run_id":       report.ID,
		"manuscript":   m.Name,
		"final_result": string(report.Verdict.FinalResult),
		"fail_step":    report.Verdict.FailStep,
		"checks":       len(report.Verdict.CheckResults),
	})
	return report
}

func (s *Service) newReport(m domain.Manuscript) domain.Report {
	return domain.Report{
		ID:         s.newID(),
		Manuscript: m.Name,
		Format:     m.Format,
		StartedAt:  s.now(),
	}
}

// Checks lists the active check table.
func (s *Service) Checks() []domain.CheckInfo {
	if s.Screener == nil {
		return nil
	}
	return s.Screener.Checks()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}
