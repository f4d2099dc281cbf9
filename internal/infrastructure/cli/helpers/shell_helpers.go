package helpers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/doeshing/repty/internal/domain"
	"github.com/doeshing/repty/internal/ports"
)

const (
	ShellAutoDetect = "auto"
	ShellAll        = "all"
)

// SupportedShells lists the shells with a capture hook.
func SupportedShells() []domain.ShellName {
	return []domain.ShellName{domain.ShellZsh, domain.ShellBash}
}

// DetermineTargetShells resolves the --shell flag. "auto" (or empty) uses the
// detected login shell and falls back to every supported shell.
func DetermineTargetShells(shellFlag string, integrator ports.ShellIntegrator) ([]domain.ShellName, error) {
	flag := strings.ToLower(strings.TrimSpace(shellFlag))

	switch flag {
	case "", ShellAutoDetect:
		if detected := ParseShellName(integrator.DetectShell()); detected != domain.ShellUnknown {
			return []domain.ShellName{detected}, nil
		}
		return SupportedShells(), nil
	case ShellAll:
		return SupportedShells(), nil
	}

	name := ParseShellName(flag)
	if name == domain.ShellUnknown {
		return nil, fmt.Errorf("unsupported shell: %s (supported: zsh, bash)", shellFlag)
	}
	return []domain.ShellName{name}, nil
}

// ParseShellName maps a name or path such as /bin/zsh to a ShellName.
func ParseShellName(value string) domain.ShellName {
	switch strings.ToLower(strings.TrimSpace(filepath.Base(value))) {
	case "zsh":
		return domain.ShellZsh
	case "bash":
		return domain.ShellBash
	default:
		return domain.ShellUnknown
	}
}
