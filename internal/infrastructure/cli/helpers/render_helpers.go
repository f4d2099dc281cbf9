package helpers

import (
	"fmt"
	"io"
	"strings"

	"github.com/doeshing/repty/internal/domain"
)

const (
	msgNoCommandsFound = "No commands found."
	msgNoAliases       = "No aliases found. Add one with: repty alias add <name> <command>"
	msgNoChains        = "No command chains recorded yet."
)

// RenderCommands prints a numbered command list, newest first as given.
func RenderCommands(out io.Writer, commands []domain.Command) {
	if len(commands) == 0 {
		fmt.Fprintln(out, msgNoCommandsFound)
		return
	}
	fmt.Fprintf(out, "Found %d command(s):\n\n", len(commands))
	for i, cmd := range commands {
		fmt.Fprintf(out, "%2d. %s\n", i+1, commandHeader(cmd))
		fmt.Fprintf(out, "    %s\n", commandLine(cmd))
	}
}

// RenderScoredCommands is RenderCommands with the relevance score shown.
func RenderScoredCommands(out io.Writer, commands []domain.ScoredCommand) {
	if len(commands) == 0 {
		fmt.Fprintln(out, msgNoCommandsFound)
		return
	}
	fmt.Fprintf(out, "Found %d command(s):\n\n", len(commands))
	for i, cmd := range commands {
		fmt.Fprintf(out, "%2d. [score %d] %s\n", i+1, cmd.Score, commandHeader(cmd.Command))
		fmt.Fprintf(out, "    %s\n", commandLine(cmd.Command))
	}
}

// RenderChainCandidates prints suggested sequences. Nothing is printed for none.
func RenderChainCandidates(out io.Writer, chains []domain.ChainCandidate) {
	if len(chains) == 0 {
		return
	}
	fmt.Fprintln(out, "\nSuggested sequences:")
	for i, chain := range chains {
		fmt.Fprintf(out, "%2d. [chain score %d]\n", i+1, chain.Score)
		renderSequence(out, chain.Commands)
	}
}

// RenderChains prints recorded chains with their usage counts.
func RenderChains(out io.Writer, chains []domain.CommandChain) {
	if len(chains) == 0 {
		fmt.Fprintln(out, msgNoChains)
		return
	}
	for i, chain := range chains {
		fmt.Fprintf(out, "%2d. used %dx, last %s\n", i+1, chain.Count, chain.LastUsed.Local().Format(domain.TimestampFormat))
		renderSequence(out, chain.Commands())
	}
}

// RenderStats prints the history summary.
func RenderStats(out io.Writer, stats domain.HistoryStats) {
	fmt.Fprintln(out, "History statistics")
	fmt.Fprintf(out, "  Total:     %d\n", stats.Total)
	fmt.Fprintf(out, "  Today:     %d\n", stats.Today)
	fmt.Fprintf(out, "  This week: %d\n", stats.ThisWeek)
	if len(stats.TopCommands) == 0 {
		return
	}
	fmt.Fprintln(out, "Top commands:")
	for _, stat := range stats.TopCommands {
		fmt.Fprintf(out, "  %s (%d)\n", stat.Command, stat.Count)
	}
}

// RenderAliases prints every alias with its kind.
func RenderAliases(out io.Writer, aliases []domain.Alias) {
	if len(aliases) == 0 {
		fmt.Fprintln(out, msgNoAliases)
		return
	}
	for _, alias := range aliases {
		label := "[single]"
		if alias.Kind == domain.AliasChain {
			label = "[chain]"
		}
		fmt.Fprintf(out, "%s %s -> %s\n", alias.Name, label, alias.CommandsText)
	}
}

// RenderExecution prints what a run executed and its captured output.
func RenderExecution(out io.Writer, resp domain.RunResponse) {
	if resp.Result == nil {
		return
	}
	result := resp.Result
	if result.Stdout != "" {
		fmt.Fprint(out, ensureNewline(result.Stdout))
	}
	if result.Stderr != "" {
		fmt.Fprint(out, ensureNewline(result.Stderr))
	}
	switch {
	case !result.Ran:
		fmt.Fprintf(out, "Command could not be started: %v\n", result.Err)
	case result.ExitCode != 0:
		fmt.Fprintf(out, "Command exited with code %d (%dms)\n", result.ExitCode, result.DurationMS)
	default:
		fmt.Fprintf(out, "Command completed (%dms)\n", result.DurationMS)
	}
}

func commandHeader(cmd domain.Command) string {
	header := cmd.Timestamp.Local().Format(domain.TimestampFormat)
	if cmd.Directory != "" {
		header += " | " + cmd.Directory
	}
	return header
}

func commandLine(cmd domain.Command) string {
	if cmd.Failed() {
		return fmt.Sprintf("%s (exit: %d)", cmd.Text, *cmd.ExitCode)
	}
	return cmd.Text
}

func renderSequence(out io.Writer, commands []string) {
	for i, c := range commands {
		branch := "|-"
		if i == len(commands)-1 {
			branch = "`-"
		}
		fmt.Fprintf(out, "    %s %s\n", branch, c)
	}
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
