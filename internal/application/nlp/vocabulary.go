// Package nlp turns free-text history queries into structured intents and
// ranks stored commands against them.
package nlp

// CommandTypes is checked in order; the first entry present as a token wins,
// regardless of where it appears in the query.
var CommandTypes = []string{
	"git", "npm", "docker", "yarn", "pnpm", "cargo", "python", "node",
	"cd", "ls", "mkdir", "rm", "cp", "mv",
}

// Actions is checked in order with the same tie-break rule as CommandTypes.
var Actions = []string{
	"reset", "install", "commit", "push", "pull", "clone", "checkout", "merge",
	"rebase", "stash", "log", "status", "diff", "add", "remove", "delete",
	"create", "update", "run", "build", "test", "deploy",
}

var stopWords = map[string]struct{}{
	"what": {}, "when": {}, "where": {}, "how": {},
	"did": {}, "i": {},
	"use": {}, "used": {},
	"command": {}, "commands": {},
	"the": {}, "a": {}, "an": {},
	"to": {}, "for": {}, "from": {}, "with": {}, "on": {}, "at": {}, "in": {}, "by": {},
}

// minKeywordLength is the shortest token kept as a keyword.
const minKeywordLength = 3

// IsStopWord reports whether the token is ignored when building keywords.
func IsStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}

// firstInVocabulary returns the first vocabulary entry present in tokens.
func firstInVocabulary(vocabulary, tokens []string) string {
	present := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		present[t] = struct{}{}
	}
	for _, entry := range vocabulary {
		if _, ok := present[entry]; ok {
			return entry
		}
	}
	return ""
}
