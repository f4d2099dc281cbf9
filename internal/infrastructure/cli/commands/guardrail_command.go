package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/repty/internal/app"
	"github.com/doeshing/repty/internal/domain"
	"github.com/doeshing/repty/internal/infrastructure/security"
)

// NewGuardrailCommand creates the guardrail command with status/check subcommands
func NewGuardrailCommand(container *app.Container) *cobra.Command {
	guardrailCmd := &cobra.Command{
		Use:   "guardrail",
		Short: "Inspect the rules that gate `repty run`",
	}

	guardrailCmd.AddCommand(
		newGuardrailStatusCommand(container),
		newGuardrailCheckCommand(container),
	)

	return guardrailCmd
}

func newGuardrailStatusCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which rules are active",
		RunE: func(cmd *cobra.Command, args []string) error {
			guardrail, err := activeGuardrail(container)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rules: %s (%d patterns)\n", guardrail.Source(), guardrail.RuleCount())
			return nil
		},
	}
}

func newGuardrailCheckCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:     "check <command...>",
		Short:   "Grade a command without running it",
		Example: `  repty guardrail check "git push --force origin main"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			guardrail, err := activeGuardrail(container)
			if err != nil {
				return err
			}
			risk, err := guardrail.Evaluate(strings.Join(args, " "))
			if err != nil {
				return err
			}
			displayRisk(cmd.OutOrStdout(), risk)
			return nil
		},
	}
}

func activeGuardrail(container *app.Container) (*security.Guardrail, error) {
	if container == nil || container.Guardrail == nil {
		return nil, errors.New(ErrGuardrailUnavailable)
	}
	return container.Guardrail, nil
}

func displayRisk(out io.Writer, risk domain.RiskAssessment) {
	fmt.Fprintf(out, "Level:  %s\nAction: %s\n", risk.Level, risk.Action)
	for _, reason := range risk.Reasons {
		fmt.Fprintf(out, " - %s\n", reason)
	}
}
