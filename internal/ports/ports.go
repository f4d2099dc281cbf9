// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and external
// adapters (infrastructure). The query-understanding core (parser, matcher, chain
// detector) depends only on these interfaces, so the SQLite store, the text
// processing adapters and the CLI can be swapped or stubbed in tests.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., CommandStore, Tokenizer)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"
	"time"

	"github.com/doeshing/repty/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.repty/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// CommandStore is the query contract of the command/chain store.
// Command listings are ordered by timestamp descending; chain listings by
// (count desc, lastUsed desc). Callers rely on that ordering.
type CommandStore interface {
	Insert(ctx context.Context, cmd domain.Command) (int64, error)
	SearchCommands(ctx context.Context, filters domain.SearchFilters, limit int) ([]domain.Command, error)
	RecentCommands(ctx context.Context, limit int) ([]domain.Command, error)
	FrequentChains(ctx context.Context, limit int) ([]domain.CommandChain, error)
	// RecordChainUsage upserts the chain keyed by the canonical join of commands.
	RecordChainUsage(ctx context.Context, commands []string) error
}

// AliasStore persists named shortcuts.
type AliasStore interface {
	AddAlias(ctx context.Context, alias domain.Alias) error
	Alias(ctx context.Context, name string) (domain.Alias, error)
	Aliases(ctx context.Context) ([]domain.Alias, error)
	DeleteAlias(ctx context.Context, name string) error
}

// HistoryMaintainer covers bookkeeping operations on the stored history.
type HistoryMaintainer interface {
	Stats(ctx context.Context, now time.Time) (domain.HistoryStats, error)
	ClearHistory(ctx context.Context) error
	ClearChains(ctx context.Context) error
	PruneOlderThan(ctx context.Context, days int) error
	ExportJSON(ctx context.Context, dest string) error
	Path() string
}

// HistoryRepository is the full store surface used by the application layer.
type HistoryRepository interface {
	CommandStore
	AliasStore
	HistoryMaintainer
	Close() error
}

// DateExtractor finds date phrases in free text. Only the first result is used by the parser.
type DateExtractor interface {
	Extract(text string) []domain.DatePhrase
}

// Stemmer reduces a lower-case word to its root form. Must be deterministic.
type Stemmer interface {
	Stem(word string) string
}

// Tokenizer splits text into lower-case word tokens on whitespace/punctuation boundaries.
type Tokenizer interface {
	Tokenize(text string) []string
}

// CommandExecutor runs shell commands in the configured shell environment.
type CommandExecutor interface {
	Execute(ctx context.Context, command string) (domain.ExecutionResult, error)
}

// SecurityService grades a command before it is replayed.
type SecurityService interface {
	Evaluate(command string) (domain.RiskAssessment, error)
}

// ConfirmationPrompter handles interactive user choices before a command runs.
// Confirm shows the risk reasons when the assessment is risky.
type ConfirmationPrompter interface {
	Confirm(command string, risk domain.RiskAssessment) (bool, error)
	Select(options []string) (int, error)
	Enabled() bool
}

// ShellIntegrator manages shell integration hooks (bash, zsh).
// Handles installation and removal of the capture hook that logs each command.
type ShellIntegrator interface {
	Install(shell string, force bool) (domain.ShellInstallResult, error)
	Uninstall(shell string) (domain.ShellInstallResult, error)
	Status(shell string) domain.ShellStatus
	DetectShell() string
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
