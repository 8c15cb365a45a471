package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	screeningapp "github.com/doeshing/nhscreen/internal/application/screening"
	"github.com/doeshing/nhscreen/internal/domain"
	"github.com/doeshing/nhscreen/internal/infrastructure/screening"
	"github.com/doeshing/nhscreen/internal/pkg/logger"
)

func newTestServer(t *testing.T, maxBytes int64) *Server {
	t.Helper()
	pipeline, err := screening.NewPipeline(screening.Options{})
	if err != nil {
		t.Fatalf("NewPipeline error: %v", err)
	}
	svc := &screeningapp.Service{
		Screener: pipeline,
		Topics:   pipeline,
		Logger:   logger.NewNop(),
		NewID:    func() string { return "run-42" },
	}
	return NewServer(svc, pipeline, Options{MaxBytes: maxBytes, Logger: logger.NewNop()})
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t, 0), http.MethodGet, "/api/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "healthy" || body["checks"] != float64(5) {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestChecks(t *testing.T) {
	rec := do(t, newTestServer(t, 0), http.MethodGet, "/api/v1/checks", "")
	var checks []domain.CheckInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &checks); err != nil {
		t.Fatal(err)
	}
	if len(checks) != 5 || checks[0].Name != domain.CheckCitation || !checks[0].Critical {
		t.Fatalf("unexpected checks %+v", checks)
	}
}

func TestScreen(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantResult domain.FinalResult
		wantStep   int
	}{
		{
			name:       "not nhanes",
			body:       `{"name":"a.txt","text":"A cohort study of sleep in adults."}`,
			wantResult: domain.ResultNotNHANES,
		},
		{
			name:       "missing citation",
			body:       `{"text":"We analysed NHANES.\nResults were mixed."}`,
			wantResult: domain.ResultFail,
			wantStep:   2,
		},
	}

	s := newTestServer(t, 0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/v1/screen", tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			if rec.Header().Get("X-Run-ID") != "run-42" {
				t.Fatalf("missing run id header")
			}
			var report domain.Report
			if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
				t.Fatal(err)
			}
			if report.Verdict.FinalResult != tt.wantResult || report.Verdict.FailStep != tt.wantStep {
				t.Fatalf("verdict = %s/%d", report.Verdict.FinalResult, report.Verdict.FailStep)
			}
			if report.ID != "run-42" {
				t.Fatalf("report id = %q", report.ID)
			}
		})
	}
}

func TestScreenRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name     string
		maxBytes int64
		body     string
		want     int
	}{
		{"empty text", 0, `{"text":"   "}`, http.StatusBadRequest},
		{"missing text", 0, `{}`, http.StatusBadRequest},
		{"malformed json", 0, `{"text":`, http.StatusBadRequest},
		{"too large", 64, `{"text":"` + strings.Repeat("NHANES ", 40) + `"}`, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(t, tt.maxBytes), http.MethodPost, "/api/v1/screen", tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
				t.Fatalf("expected error body, got %q", rec.Body.String())
			}
		})
	}
}

func TestTopics(t *testing.T) {
	body := `{"text":"Sleep Duration and Depression\nAbstract\nWe studied depression, anxiety and mood with the PHQ-9."}`
	rec := do(t, newTestServer(t, 0), http.MethodPost, "/api/v1/topics", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got map[string][]string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got["topics"]) == 0 {
		t.Fatalf("no topics in %v", got)
	}
}

func TestUnknownRoute(t *testing.T) {
	rec := do(t, newTestServer(t, 0), http.MethodGet, "/api/v1/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
