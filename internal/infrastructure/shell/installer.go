package shell

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	rootassets "github.com/doeshing/repty/assets"
	"github.com/doeshing/repty/internal/domain"
	"github.com/doeshing/repty/internal/pkg/filesystem"
	"github.com/doeshing/repty/internal/ports"
)

const rcFilePermissions = 0o644

// Installer writes the capture hook scripts and wires them into shell rc files.
type Installer struct {
	logger ports.Logger
	home   string
}

// NewInstaller builds a shell installer rooted at the user's home directory.
func NewInstaller(logger ports.Logger) *Installer {
	return &Installer{logger: logger, home: filesystem.UserHomeDir()}
}

// WithHome returns an installer that treats dir as the home directory.
func (i *Installer) WithHome(dir string) *Installer {
	clone := *i
	clone.home = dir
	return &clone
}

// Install installs shell integration for the given shell name (auto-detected when empty).
func (i *Installer) Install(shell string, force bool) (domain.ShellInstallResult, error) {
	name := normalizeShell(shell)
	scriptContent, err := scriptFor(name)
	if err != nil {
		return domain.ShellInstallResult{}, err
	}
	scriptPath, rcFile := i.scriptPaths(name)
	if err := os.MkdirAll(filepath.Dir(scriptPath), domain.DirectoryPermissions); err != nil {
		return domain.ShellInstallResult{}, err
	}

	scriptUpdated := true
	if existing, err := os.ReadFile(scriptPath); err == nil && string(existing) == scriptContent && !force {
		scriptUpdated = false
	} else if err := os.WriteFile(scriptPath, []byte(scriptContent), rcFilePermissions); err != nil {
		return domain.ShellInstallResult{}, err
	}

	rcUpdated, err := ensureRCLine(rcFile, i.sourceLine(scriptPath), force)
	if err != nil {
		return domain.ShellInstallResult{}, err
	}
	i.debug("shell integration installed", map[string]interface{}{
		"shell": string(name), "script": scriptPath, "rc": rcFile, "rc_updated": rcUpdated,
	})

	return domain.ShellInstallResult{
		Shell:         name,
		ScriptPath:    scriptPath,
		RCFile:        rcFile,
		ScriptUpdated: scriptUpdated,
		RCUpdated:     rcUpdated,
	}, nil
}

// Uninstall removes the sourcing line from the rc file. The script is kept.
func (i *Installer) Uninstall(shell string) (domain.ShellInstallResult, error) {
	name := normalizeShell(shell)
	if name == domain.ShellUnknown {
		return domain.ShellInstallResult{}, fmt.Errorf("unsupported shell: %s", shell)
	}
	scriptPath, rcFile := i.scriptPaths(name)
	updated, err := removeRCLine(rcFile, i.sourceLine(scriptPath))
	if err != nil {
		return domain.ShellInstallResult{}, err
	}
	return domain.ShellInstallResult{
		Shell:      name,
		ScriptPath: scriptPath,
		RCFile:     rcFile,
		RCUpdated:  updated,
	}, nil
}

// Status reports current integration state.
func (i *Installer) Status(shell string) domain.ShellStatus {
	name := normalizeShell(shell)
	status := domain.ShellStatus{Shell: name}
	if name == domain.ShellUnknown {
		status.Error = "unsupported shell"
		return status
	}
	status.ScriptPath, status.RCFile = i.scriptPaths(name)

	if info, err := os.Stat(status.ScriptPath); err == nil && info.Mode().IsRegular() {
		status.ScriptExists = true
	}
	if contents, err := os.ReadFile(status.RCFile); err == nil {
		status.LinePresent = strings.Contains(string(contents), i.sourceLine(status.ScriptPath))
	}
	return status
}

// DetectShell inspects the SHELL env var.
func (i *Installer) DetectShell() string {
	return os.Getenv("SHELL")
}

func (i *Installer) scriptPaths(shell domain.ShellName) (string, string) {
	dir := filepath.Join(i.home, ".repty", "shell")
	switch shell {
	case domain.ShellZsh:
		return filepath.Join(dir, "zsh.sh"), filepath.Join(i.home, ".zshrc")
	case domain.ShellBash:
		rc := filepath.Join(i.home, ".bashrc")
		if runtime.GOOS == "darwin" {
			if _, err := os.Stat(rc); errors.Is(err, os.ErrNotExist) {
				rc = filepath.Join(i.home, ".bash_profile")
			}
		}
		return filepath.Join(dir, "bash.sh"), rc
	default:
		return "", ""
	}
}

func (i *Installer) sourceLine(scriptPath string) string {
	path := i.friendlyPath(scriptPath)
	return fmt.Sprintf("[ -f %s ] && source %s", path, path)
}

func (i *Installer) friendlyPath(path string) string {
	if rel, err := filepath.Rel(i.home, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.Join("$HOME", rel)
	}
	return path
}

func (i *Installer) debug(msg string, fields map[string]interface{}) {
	if i.logger != nil {
		i.logger.Debug(msg, fields)
	}
}

func normalizeShell(shell string) domain.ShellName {
	if shell == "" {
		shell = os.Getenv("SHELL")
	}
	switch strings.ToLower(filepath.Base(shell)) {
	case "zsh":
		return domain.ShellZsh
	case "bash":
		return domain.ShellBash
	default:
		return domain.ShellUnknown
	}
}

func scriptFor(shell domain.ShellName) (string, error) {
	switch shell {
	case domain.ShellZsh:
		return rootassets.ZshHook, nil
	case domain.ShellBash:
		return rootassets.BashHook, nil
	default:
		return "", errors.New("unsupported shell (expected bash or zsh)")
	}
}

func ensureRCLine(path string, line string, force bool) (bool, error) {
	contents, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return true, os.WriteFile(path, []byte(headerComment+line+"\n"), rcFilePermissions)
	}
	if err != nil {
		return false, err
	}
	if strings.Contains(string(contents), line) && !force {
		return false, nil
	}
	filtered := dropLines(string(contents), line)
	if len(filtered) > 0 && filtered[len(filtered)-1] == "" {
		filtered = filtered[:len(filtered)-1]
	}
	if len(filtered) == 0 || filtered[len(filtered)-1] != strings.TrimSuffix(headerComment, "\n") {
		filtered = append(filtered, strings.TrimSuffix(headerComment, "\n"))
	}
	filtered = append(filtered, line)
	return true, writeLines(path, filtered)
}

func removeRCLine(path string, line string) (bool, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if !strings.Contains(string(contents), line) {
		return false, nil
	}
	filtered := dropLines(string(contents), line)
	header := strings.TrimSuffix(headerComment, "\n")
	kept := filtered[:0]
	for _, existing := range filtered {
		if existing != header {
			kept = append(kept, existing)
		}
	}
	return true, writeLines(path, kept)
}

func dropLines(contents, line string) []string {
	var filtered []string
	for _, existing := range strings.Split(contents, "\n") {
		if strings.Contains(existing, line) {
			continue
		}
		filtered = append(filtered, existing)
	}
	return filtered
}

func writeLines(path string, lines []string) error {
	final := strings.Join(lines, "\n")
	if !strings.HasSuffix(final, "\n") {
		final += "\n"
	}
	return os.WriteFile(path, []byte(final), rcFilePermissions)
}

const headerComment = "# Added by repty installer\n"

var _ ports.ShellIntegrator = (*Installer)(nil)
