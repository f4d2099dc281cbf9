package doctor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/doeshing/repty/internal/domain"
)

type stubConfig struct {
	cfg domain.Config
	err error
}

func (s stubConfig) Load(context.Context) (domain.Config, error) { return s.cfg, s.err }

type stubStore struct {
	total int
	err   error
}

func (s stubStore) Stats(context.Context, time.Time) (domain.HistoryStats, error) {
	return domain.HistoryStats{Total: s.total}, s.err
}

func (stubStore) ClearHistory(context.Context) error { return nil }

func (stubStore) ClearChains(context.Context) error { return nil }

func (stubStore) PruneOlderThan(context.Context, int) error { return nil }

func (stubStore) ExportJSON(context.Context, string) error { return nil }

func (stubStore) Path() string { return "/tmp/history.db" }

type stubShell struct {
	status domain.ShellStatus
}

func (s stubShell) Install(string, bool) (domain.ShellInstallResult, error) {
	return domain.ShellInstallResult{}, nil
}

func (s stubShell) Uninstall(string) (domain.ShellInstallResult, error) {
	return domain.ShellInstallResult{}, nil
}

func (s stubShell) Status(string) domain.ShellStatus { return s.status }

func (s stubShell) DetectShell() string { return "zsh" }

func validConfig() domain.Config {
	return domain.Config{
		ConfigFormatVersion: "1",
		Storage:             domain.StorageSettings{DBPath: "/tmp/history.db"},
		History:             domain.HistorySettings{MaxResults: 50},
		Ranking:             domain.DefaultRankingSettings(),
		Chains:              domain.DefaultChainSettings(),
	}
}

func statuses(report domain.HealthReport) map[string]domain.HealthStatus {
	out := make(map[string]domain.HealthStatus, len(report.Checks))
	for _, c := range report.Checks {
		out[c.Name] = c.Status
	}
	return out
}

func TestRunHealthy(t *testing.T) {
	svc := &Service{
		ConfigProvider:  stubConfig{cfg: validConfig()},
		Store:           stubStore{total: 12},
		ShellIntegrator: stubShell{status: domain.ShellStatus{Shell: domain.ShellZsh, ScriptExists: true, LinePresent: true}},
		LookPath:        func(string) (string, error) { return "/usr/local/bin/repty", nil },
	}
	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for name, status := range statuses(report) {
		if status != domain.HealthOK {
			t.Errorf("%s = %s, want ok", name, status)
		}
	}
	if len(report.Checks) != 5 {
		t.Errorf("got %d checks, want 5", len(report.Checks))
	}
}

func TestRunReportsProblems(t *testing.T) {
	cfg := validConfig()
	cfg.History.MaxResults = 0
	svc := &Service{
		ConfigProvider:  stubConfig{cfg: cfg},
		Store:           stubStore{err: errors.New("database is locked")},
		ShellIntegrator: stubShell{status: domain.ShellStatus{Shell: domain.ShellBash, ScriptExists: true}},
		LookPath:        func(string) (string, error) { return "", errors.New("not found") },
	}
	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := map[string]domain.HealthStatus{
		"Config file":       domain.HealthOK,
		"Config values":     domain.HealthError,
		"History store":     domain.HealthError,
		"Shell integration": domain.HealthWarn,
		"Binary on PATH":    domain.HealthWarn,
	}
	got := statuses(report)
	for name, status := range want {
		if got[name] != status {
			t.Errorf("%s = %s, want %s", name, got[name], status)
		}
	}
}

func TestRunStopsOnConfigError(t *testing.T) {
	svc := &Service{ConfigProvider: stubConfig{err: errors.New("bad yaml")}}
	report, err := svc.Run(context.Background())
	if err == nil {
		t.Fatal("Run() error = nil")
	}
	if len(report.Checks) != 1 || report.Checks[0].Status != domain.HealthError {
		t.Errorf("report = %+v", report)
	}
}

type stubGuardrail domain.GuardrailAction

func (g stubGuardrail) Evaluate(string) (domain.RiskAssessment, error) {
	return domain.RiskAssessment{Level: domain.RiskCritical, Action: domain.GuardrailAction(g)}, nil
}

func TestRunChecksGuardrail(t *testing.T) {
	tests := []struct {
		action domain.GuardrailAction
		want   domain.HealthStatus
	}{
		{domain.ActionBlock, domain.HealthOK},
		{domain.ActionConfirm, domain.HealthWarn},
	}
	for _, tt := range tests {
		svc := &Service{
			ConfigProvider:  stubConfig{cfg: validConfig()},
			ShellIntegrator: stubShell{},
			Guardrail:       stubGuardrail(tt.action),
			LookPath:        func(string) (string, error) { return "/usr/local/bin/repty", nil },
		}
		report, err := svc.Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if got := statuses(report)["Guardrail"]; got != tt.want {
			t.Errorf("action %s: Guardrail = %s, want %s", tt.action, got, tt.want)
		}
	}
}
