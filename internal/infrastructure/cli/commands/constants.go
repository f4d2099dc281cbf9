package commands

// CLI-specific constants
const (
	// DefaultEditorCommand is used when $EDITOR is unset
	DefaultEditorCommand = "vi"
	envKeyEditor         = "EDITOR"
)

// Error messages
const (
	ErrConfigLoaderUnavailable   = "config loader unavailable"
	ErrDoctorServiceUnavailable  = "doctor service unavailable"
	ErrGuardrailUnavailable      = "guardrail unavailable"
	ErrHistoryServiceUnavailable = "history service unavailable"
	ErrShellInstallerUnavailable = "shell installer unavailable"
	ErrInvalidRetainDays         = "--days must be >= 0"
	ErrConflictingScopes         = "--here and --project are mutually exclusive"
)

// Messages
const (
	MsgConfigurationValid       = "Configuration valid"
	MsgNoDifferencesFromDefault = "No differences from default configuration."
	MsgCancelled                = "Cancelled."
	MsgNoMatches                = "No matching commands found."
)
