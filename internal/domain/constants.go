package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// History constants
const (
	// DefaultRecentLimit is the default number of commands shown by `recent`
	DefaultRecentLimit = 20
	// DefaultMaxResults is the default number of store rows fed to the ranker
	DefaultMaxResults = 50
	// MaxSelectableResults caps the pick list shown by `run`
	MaxSelectableResults = 10
	// DefaultTopCommands is the number of commands listed by `stats`
	DefaultTopCommands = 5
	// MaxHistoryAnalysisRecords is the maximum number of records to analyze
	MaxHistoryAnalysisRecords = 1000
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = "2006-01-02 15:04:05"
)

// DefaultExcludePatterns keeps secrets and the tool itself out of the history.
var DefaultExcludePatterns = []string{
	"password",
	"token",
	"secret",
	"api_key",
	"apikey",
	"repty ",
}

// DefaultProjectMarkers identify a project root directory.
var DefaultProjectMarkers = []string{".git", "package.json", "go.mod", "Cargo.toml"}

// Day is the length of a calendar day used by recency math.
const Day = 24 * time.Hour
