package domain

import "time"

// ParsedQuery is the structured intent extracted from a free-text query.
// Empty strings mean the field was not detected.
type ParsedQuery struct {
	Keywords    []string
	CommandType string
	Action      string
	StartDate   *time.Time
	EndDate     *time.Time
}

// HasDateRange reports whether the query carries a date window.
func (q ParsedQuery) HasDateRange() bool {
	return q.StartDate != nil && q.EndDate != nil
}

// DatePhrase is one date expression found in free text.
type DatePhrase struct {
	Text  string
	Start *time.Time
	End   *time.Time
}

// SearchFilters narrows a store search. Keywords are OR'd substring matches.
type SearchFilters struct {
	StartDate   *time.Time
	EndDate     *time.Time
	CommandType string
	Keywords    []string
	Directory   string
	ProjectRoot string
}

// SearchRequest captures a user search originating from the CLI.
// Directory is the caller's working directory, used when Scope is not ScopeAll.
type SearchRequest struct {
	Query     string
	Directory string
	Scope     SearchScope
	Limit     int
}

// SearchScope restricts which directories a search covers.
type SearchScope string

const (
	ScopeAll       SearchScope = "all"
	ScopeDirectory SearchScope = "directory"
	ScopeProject   SearchScope = "project"
)

// SearchResult bundles ranked commands with matching chains.
type SearchResult struct {
	Parsed   ParsedQuery
	Commands []ScoredCommand
	Chains   []ChainCandidate
}

// ExecutionResult wraps details from the command executor.
type ExecutionResult struct {
	Ran        bool
	Stdout     string
	Stderr     string
	ExitCode   int
	DurationMS int64
	Err        error
}

// RunRequest asks to resolve a query (or alias name) to one command and run it.
type RunRequest struct {
	Query     string
	Directory string
	Scope     SearchScope
	// AssumeYes skips the confirmation prompt.
	AssumeYes bool
}

// RunResponse reports what Run resolved and whether it executed.
type RunResponse struct {
	Command    string
	Alias      *Alias
	Candidates int
	Executed   bool
	Result     *ExecutionResult
	Risk       RiskAssessment
}
