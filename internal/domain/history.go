package domain

import (
	"strings"
	"time"
)

// ChainDelimiter joins the commands of a chain into its canonical text.
const ChainDelimiter = " && "

// Command is a single logged shell command.
type Command struct {
	ID          int64     `json:"id"`
	Text        string    `json:"command"`
	Timestamp   time.Time `json:"timestamp"`
	Directory   string    `json:"directory"`
	ExitCode    *int      `json:"exit_code,omitempty"`
	Tags        string    `json:"tags,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Failed reports whether the command exited with a non-zero code.
func (c Command) Failed() bool {
	return c.ExitCode != nil && *c.ExitCode != 0
}

// ScoredCommand is a command paired with its relevance score.
type ScoredCommand struct {
	Command
	Score int
}

// CommandChain is a recurring sequence of commands, keyed by its canonical text.
type CommandChain struct {
	ID           int64
	CommandsText string
	Count        int
	LastUsed     time.Time
}

// Commands splits the canonical text back into the ordered command list.
func (c CommandChain) Commands() []string {
	return SplitChain(c.CommandsText)
}

// ChainCandidate is a chain suggested for a query.
type ChainCandidate struct {
	Commands []string
	Score    int
}

// Text returns the canonical text of the candidate.
func (c ChainCandidate) Text() string {
	return JoinChain(c.Commands)
}

// JoinChain canonicalizes an ordered command sequence.
func JoinChain(commands []string) string {
	return strings.Join(commands, ChainDelimiter)
}

// SplitChain is the inverse of JoinChain.
func SplitChain(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, ChainDelimiter)
}

// AliasKind distinguishes aliases for single commands from chain aliases.
type AliasKind string

const (
	AliasSingle AliasKind = "single"
	AliasChain  AliasKind = "chain"
)

// Alias is a named shortcut to a command or a chain.
type Alias struct {
	Name         string
	CommandsText string
	Kind         AliasKind
}

// HistoryStats summarizes the stored history.
type HistoryStats struct {
	Total       int
	Today       int
	ThisWeek    int
	TopCommands []CommandStatistic
}

// CommandStatistic represents usage statistics for a command.
type CommandStatistic struct {
	Command string
	Count   int
}
