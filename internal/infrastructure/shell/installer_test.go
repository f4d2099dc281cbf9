package shell

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/doeshing/repty/internal/domain"
)

func TestInstallStatusUninstall(t *testing.T) {
	home := t.TempDir()
	rc := filepath.Join(home, ".zshrc")
	if err := os.WriteFile(rc, []byte("export EDITOR=vim\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	inst := NewInstaller(nil).WithHome(home)

	res, err := inst.Install("zsh", false)
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if res.Shell != domain.ShellZsh || !res.ScriptUpdated || !res.RCUpdated {
		t.Fatalf("Install() = %+v", res)
	}
	script, err := os.ReadFile(res.ScriptPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(script), "repty __capture__") {
		t.Errorf("hook script does not call the capture command:\n%s", script)
	}

	rcContents, _ := os.ReadFile(rc)
	if !strings.Contains(string(rcContents), "export EDITOR=vim") {
		t.Errorf("existing rc content lost:\n%s", rcContents)
	}
	if !strings.Contains(string(rcContents), "source $HOME/.repty/shell/zsh.sh") {
		t.Errorf("source line missing:\n%s", rcContents)
	}

	status := inst.Status("zsh")
	if !status.ScriptExists || !status.LinePresent {
		t.Errorf("Status() = %+v", status)
	}

	again, err := inst.Install("zsh", false)
	if err != nil {
		t.Fatalf("second Install() error = %v", err)
	}
	if again.RCUpdated || again.ScriptUpdated {
		t.Errorf("second Install() = %+v, want no changes", again)
	}

	removed, err := inst.Uninstall("zsh")
	if err != nil {
		t.Fatalf("Uninstall() error = %v", err)
	}
	if !removed.RCUpdated {
		t.Errorf("Uninstall() = %+v", removed)
	}
	rcContents, _ = os.ReadFile(rc)
	if string(rcContents) != "export EDITOR=vim\n" {
		t.Errorf("rc after uninstall = %q", rcContents)
	}
	if inst.Status("zsh").LinePresent {
		t.Error("source line still present after uninstall")
	}
}

func TestInstallCreatesMissingRC(t *testing.T) {
	home := t.TempDir()
	inst := NewInstaller(nil).WithHome(home)
	res, err := inst.Install("/usr/bin/bash", false)
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if res.Shell != domain.ShellBash {
		t.Fatalf("Shell = %s", res.Shell)
	}
	contents, err := os.ReadFile(res.RCFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(contents), headerComment) {
		t.Errorf("rc = %q", contents)
	}
}

func TestUnsupportedShell(t *testing.T) {
	inst := NewInstaller(nil).WithHome(t.TempDir())
	if _, err := inst.Install("fish", false); err == nil {
		t.Error("Install(fish) error = nil")
	}
	if _, err := inst.Uninstall("fish"); err == nil {
		t.Error("Uninstall(fish) error = nil")
	}
	if status := inst.Status("fish"); status.Error == "" {
		t.Errorf("Status(fish) = %+v", status)
	}
}
