package doctor

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	configapp "github.com/doeshing/repty/internal/application/config"
	"github.com/doeshing/repty/internal/domain"
	"github.com/doeshing/repty/internal/ports"
)

// BinaryName is what the shell hooks invoke.
const BinaryName = "repty"

const guardrailCanary = "rm -rf /"

// Service runs environment diagnostics. Guardrail is checked only when set;
// LookPath defaults to exec.LookPath.
type Service struct {
	ConfigProvider  ports.ConfigProvider
	Store           ports.HistoryMaintainer
	ShellIntegrator ports.ShellIntegrator
	Guardrail       ports.SecurityService
	LookPath        func(string) (string, error)
}

// Run executes checks and returns a report. Only a config load failure aborts.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("loaded (format %s)", cfg.ConfigFormatVersion)))

	if err := configapp.Validate(cfg); err != nil {
		checks = append(checks, fail("Config values", err.Error()))
	} else {
		checks = append(checks, ok("Config values", "valid"))
	}

	checks = append(checks, s.storeCheck(ctx))
	checks = append(checks, s.shellCheck())
	checks = append(checks, s.binaryCheck())
	if s.Guardrail != nil {
		checks = append(checks, s.guardrailCheck())
	}

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) storeCheck(ctx context.Context) domain.HealthCheck {
	if s.Store == nil {
		return fail("History store", domain.ErrStoreNotReady.Error())
	}
	stats, err := s.Store.Stats(ctx, time.Now())
	if err != nil {
		return fail("History store", fmt.Sprintf("%s: %v", s.Store.Path(), err))
	}
	return ok("History store", fmt.Sprintf("%s (%d commands)", s.Store.Path(), stats.Total))
}

func (s *Service) shellCheck() domain.HealthCheck {
	if s.ShellIntegrator == nil {
		return warn("Shell integration", "installer not initialized")
	}
	status := s.ShellIntegrator.Status("")
	switch {
	case status.Error != "":
		return warn("Shell integration", status.Error)
	case status.ScriptExists && status.LinePresent:
		return ok("Shell integration", fmt.Sprintf("%s ready", status.Shell))
	case status.ScriptExists:
		return warn("Shell integration", fmt.Sprintf("%s not sourced; run `repty install`", status.RCFile))
	default:
		return warn("Shell integration", "not installed; run `repty install`")
	}
}

func (s *Service) binaryCheck() domain.HealthCheck {
	lookPath := s.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	path, err := lookPath(BinaryName)
	if err != nil {
		return warn("Binary on PATH", "repty not found on PATH; shell hooks cannot log commands")
	}
	return ok("Binary on PATH", path)
}

// guardrailCheck makes sure the active rules still stop the canonical disaster.
func (s *Service) guardrailCheck() domain.HealthCheck {
	risk, err := s.Guardrail.Evaluate(guardrailCanary)
	switch {
	case err != nil:
		return fail("Guardrail", err.Error())
	case risk.Action != domain.ActionBlock:
		return warn("Guardrail", fmt.Sprintf("rules do not block %q", guardrailCanary))
	default:
		return ok("Guardrail", "active")
	}
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
