package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/repty/internal/app"
	"github.com/doeshing/repty/internal/infrastructure/cli/helpers"
	"github.com/doeshing/repty/internal/ports"
)

// NewInstallCommand creates the install command for shell integration
func NewInstallCommand(container *app.Container) *cobra.Command {
	var (
		shellFlag string
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the shell hook that logs every command",
		Long: `Install repty shell integration.

This writes the capture hook to ~/.repty/shell/<shell>.sh and sources it from
your rc file (~/.zshrc, ~/.bashrc, or ~/.bash_profile on macOS). Every command
you run is then logged with its exit code and directory.

Example:
  repty install              # Auto-detect shell
  repty install --shell all  # zsh and bash`,
		RunE: func(cmd *cobra.Command, args []string) error {
			integrator, err := shellIntegrator(container)
			if err != nil {
				return err
			}
			return runInstall(cmd.OutOrStdout(), integrator, shellFlag, force)
		},
	}

	cmd.Flags().StringVar(&shellFlag, "shell", helpers.ShellAutoDetect, "Shell to install (zsh|bash|all|auto)")
	cmd.Flags().BoolVar(&force, "force", false, "Rewrite the hook script and rc entry")
	return cmd
}

// NewUninstallCommand creates the uninstall command for shell integration
func NewUninstallCommand(container *app.Container) *cobra.Command {
	var shellFlag string

	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the shell hook from your rc file",
		RunE: func(cmd *cobra.Command, args []string) error {
			integrator, err := shellIntegrator(container)
			if err != nil {
				return err
			}
			return runUninstall(cmd.OutOrStdout(), integrator, shellFlag)
		},
	}

	cmd.Flags().StringVar(&shellFlag, "shell", helpers.ShellAutoDetect, "Shell to uninstall (zsh|bash|all|auto)")
	return cmd
}

func runInstall(out io.Writer, integrator ports.ShellIntegrator, shellFlag string, force bool) error {
	shells, err := helpers.DetermineTargetShells(shellFlag, integrator)
	if err != nil {
		return err
	}

	for _, shell := range shells {
		res, err := integrator.Install(string(shell), force)
		if err != nil {
			return fmt.Errorf("install %s integration: %w", shell, err)
		}
		fmt.Fprintf(out, "%s: script %s (%s)\n", res.Shell, res.ScriptPath, changeLabel(res.ScriptUpdated, "written", "unchanged"))
		fmt.Fprintf(out, "%s: rc file %s (%s)\n", res.Shell, res.RCFile, changeLabel(res.RCUpdated, "source line added", "already configured"))
		if res.RCUpdated {
			fmt.Fprintf(out, "Run `source %s` or open a new terminal to start logging.\n", res.RCFile)
		}
	}
	return nil
}

func runUninstall(out io.Writer, integrator ports.ShellIntegrator, shellFlag string) error {
	shells, err := helpers.DetermineTargetShells(shellFlag, integrator)
	if err != nil {
		return err
	}

	for _, shell := range shells {
		res, err := integrator.Uninstall(string(shell))
		if err != nil {
			return fmt.Errorf("uninstall %s integration: %w", shell, err)
		}
		fmt.Fprintf(out, "%s: %s (%s)\n", res.Shell, res.RCFile, changeLabel(res.RCUpdated, "source line removed", "nothing to remove"))
	}
	return nil
}

func shellIntegrator(container *app.Container) (ports.ShellIntegrator, error) {
	if container == nil || container.ShellIntegrator == nil {
		return nil, errors.New(ErrShellInstallerUnavailable)
	}
	return container.ShellIntegrator, nil
}

func changeLabel(changed bool, yes, no string) string {
	if changed {
		return yes
	}
	return no
}
