// Package chains detects recurring same-directory command sequences and
// suggests them for free-text queries.
package chains

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/doeshing/repty/internal/domain"
	"github.com/doeshing/repty/internal/ports"
)

// Detector records command chains as they happen and scores stored chains.
type Detector struct {
	store ports.CommandStore
	cfg   domain.ChainSettings
	log   ports.Logger
}

// NewDetector creates a Detector. Zero-valued settings fall back to defaults.
func NewDetector(store ports.CommandStore, cfg domain.ChainSettings, log ports.Logger) *Detector {
	cfg.ApplyDefaults()
	return &Detector{store: store, cfg: cfg, log: log}
}

// DetectAndRecord looks at the most recent commands and records the trailing
// three- and two-command windows in directory when their gaps are short enough.
// It must run after the triggering command has been persisted. Both windows are
// checked independently, so a three-command run also bumps its last pair.
func (d *Detector) DetectAndRecord(ctx context.Context, currentCommand, directory string) error {
	if d.store == nil {
		return domain.ErrStoreNotReady
	}
	recent, err := d.store.RecentCommands(ctx, d.cfg.RecentWindow)
	if err != nil {
		return fmt.Errorf("load recent commands: %w", err)
	}

	sameDir := make([]domain.Command, 0, len(recent))
	for _, cmd := range recent {
		if cmd.Directory == directory {
			sameDir = append(sameDir, cmd)
		}
	}
	if len(sameDir) < 2 {
		return nil
	}

	if len(sameDir) >= 3 && d.withinGap(sameDir[:3]) {
		if err := d.record(ctx, sameDir[:3]); err != nil {
			return err
		}
	}
	if d.withinGap(sameDir[:2]) {
		if err := d.record(ctx, sameDir[:2]); err != nil {
			return err
		}
	}

	d.debug("chain detection done", map[string]interface{}{
		"command":    currentCommand,
		"directory":  directory,
		"candidates": len(sameDir),
	})
	return nil
}

// withinGap reports whether every consecutive gap of a timestamp-descending
// window is below the configured maximum.
func (d *Detector) withinGap(window []domain.Command) bool {
	for i := 0; i+1 < len(window); i++ {
		if window[i].Timestamp.Sub(window[i+1].Timestamp) >= d.cfg.MaxGap {
			return false
		}
	}
	return true
}

// record stores a timestamp-descending window oldest first.
func (d *Detector) record(ctx context.Context, window []domain.Command) error {
	commands := make([]string, len(window))
	for i, cmd := range window {
		commands[len(window)-1-i] = cmd.Text
	}
	if err := d.store.RecordChainUsage(ctx, commands); err != nil {
		return fmt.Errorf("record chain of %d commands: %w", len(commands), err)
	}
	d.debug("chain recorded", map[string]interface{}{"chain": domain.JoinChain(commands)})
	return nil
}

// FindChainsForQuery scores stored chains that have recurred against a raw query.
func (d *Detector) FindChainsForQuery(ctx context.Context, query string) ([]domain.ChainCandidate, error) {
	if d.store == nil {
		return nil, domain.ErrStoreNotReady
	}
	stored, err := d.store.FrequentChains(ctx, d.cfg.FetchLimit)
	if err != nil {
		return nil, fmt.Errorf("load frequent chains: %w", err)
	}

	// An empty query is a substring of every command, so it loosely matches
	// every recurring chain.
	needle := strings.ToLower(query)
	results := make([]domain.ChainCandidate, 0, len(stored))

	for _, chain := range stored {
		if chain.Count < d.cfg.MinOccurrences {
			continue
		}
		commands := chain.Commands()
		if len(commands) == 0 {
			continue
		}

		signal, strict := d.matchSignal(commands, needle)
		if !strict && signal < d.cfg.LooseMatchScore {
			continue
		}

		score := chain.Count*d.cfg.CountWeight + signal
		if strings.Contains(strings.ToLower(commands[len(commands)-1]), needle) {
			score += d.cfg.OutcomeBonus
		}
		results = append(results, domain.ChainCandidate{Commands: commands, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results, nil
}

// matchSignal returns the strongest per-command match across the chain and
// whether any command matched strictly.
func (d *Detector) matchSignal(commands []string, needle string) (int, bool) {
	best, strict := 0, false
	for _, cmd := range commands {
		lower := strings.ToLower(cmd)
		switch {
		case isStrictMatch(lower, needle):
			best = max(best, d.cfg.StrictMatchScore)
			strict = true
		case strings.Contains(lower, needle):
			best = max(best, d.cfg.LooseMatchScore)
		}
	}
	return best, strict
}

// isStrictMatch accepts the query itself, the query followed by arguments, or
// a bare git subcommand ("push" for "git push").
func isStrictMatch(command, query string) bool {
	return command == query ||
		strings.HasPrefix(command, query+" ") ||
		command == "git "+query
}

func (d *Detector) debug(msg string, fields map[string]interface{}) {
	if d.log != nil {
		d.log.Debug(msg, fields)
	}
}
