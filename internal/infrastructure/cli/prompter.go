package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/doeshing/repty/internal/domain"
	"github.com/doeshing/repty/internal/infrastructure/cli/helpers"
	"github.com/doeshing/repty/internal/ports"
)

// Prompter implements ConfirmationPrompter on a reader/writer pair.
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewPrompter constructs a prompter. A nil in means stdin, which only counts
// as interactive when it is a terminal.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	interactive := true
	if in == nil {
		in = os.Stdin
		interactive = isTerminal(os.Stdin)
	}
	if out == nil {
		out = os.Stdout
	}
	return &Prompter{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: interactive,
	}
}

// Enabled reports whether the user can be asked anything.
func (p *Prompter) Enabled() bool {
	return p.interactive
}

// Confirm asks whether to execute command. Default is No.
func (p *Prompter) Confirm(command string, risk domain.RiskAssessment) (bool, error) {
	if risk.Risky() {
		fmt.Fprintf(p.out, "\nWARNING: %s risk detected\n", strings.ToUpper(string(risk.Level)))
		for _, reason := range risk.Reasons {
			fmt.Fprintf(p.out, " - %s\n", reason)
		}
	}
	fmt.Fprintf(p.out, "\nCommand:\n  %s\n", command)
	return helpers.PromptForConfirmation(p.out, p.in, "Execute?")
}

// Select lists options and returns the 0-based index chosen.
func (p *Prompter) Select(options []string) (int, error) {
	fmt.Fprintln(p.out, "Select a command to execute:")
	return helpers.PromptForIndex(p.out, p.in, "Choice", options)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

var _ ports.ConfirmationPrompter = (*Prompter)(nil)
