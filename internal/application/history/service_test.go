package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/doeshing/repty/internal/application/chains"
	"github.com/doeshing/repty/internal/application/nlp"
	"github.com/doeshing/repty/internal/domain"
	"github.com/doeshing/repty/internal/pkg/logger"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

type memoryStore struct {
	commands    []domain.Command
	chains      map[string]int
	aliases     map[string]domain.Alias
	lastFilters domain.SearchFilters
	prunedDays  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{chains: map[string]int{}, aliases: map[string]domain.Alias{}}
}

func (m *memoryStore) Insert(_ context.Context, cmd domain.Command) (int64, error) {
	cmd.ID = int64(len(m.commands) + 1)
	m.commands = append(m.commands, cmd)
	return cmd.ID, nil
}

func (m *memoryStore) SearchCommands(_ context.Context, f domain.SearchFilters, limit int) ([]domain.Command, error) {
	m.lastFilters = f
	var out []domain.Command
	for _, cmd := range m.sorted() {
		lower := strings.ToLower(cmd.Text)
		if f.StartDate != nil && cmd.Timestamp.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && cmd.Timestamp.After(*f.EndDate) {
			continue
		}
		if f.CommandType != "" && !strings.HasPrefix(lower, f.CommandType) {
			continue
		}
		if len(f.Keywords) > 0 && !containsAny(lower, f.Keywords) {
			continue
		}
		if f.ProjectRoot != "" && !strings.HasPrefix(cmd.Directory, f.ProjectRoot) {
			continue
		}
		if f.ProjectRoot == "" && f.Directory != "" && cmd.Directory != f.Directory {
			continue
		}
		out = append(out, cmd)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

func (m *memoryStore) sorted() []domain.Command {
	out := append([]domain.Command(nil), m.commands...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

func (m *memoryStore) RecentCommands(ctx context.Context, limit int) ([]domain.Command, error) {
	return m.SearchCommands(ctx, domain.SearchFilters{}, limit)
}

func (m *memoryStore) FrequentChains(context.Context, int) ([]domain.CommandChain, error) {
	var out []domain.CommandChain
	for text, count := range m.chains {
		out = append(out, domain.CommandChain{CommandsText: text, Count: count, LastUsed: testNow})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].CommandsText < out[j].CommandsText
	})
	return out, nil
}

func (m *memoryStore) RecordChainUsage(_ context.Context, commands []string) error {
	m.chains[domain.JoinChain(commands)]++
	return nil
}

func (m *memoryStore) AddAlias(_ context.Context, alias domain.Alias) error {
	m.aliases[alias.Name] = alias
	return nil
}

func (m *memoryStore) Alias(_ context.Context, name string) (domain.Alias, error) {
	alias, ok := m.aliases[name]
	if !ok {
		return domain.Alias{}, domain.ErrAliasNotFound
	}
	return alias, nil
}

func (m *memoryStore) Aliases(context.Context) ([]domain.Alias, error) {
	var out []domain.Alias
	for _, a := range m.aliases {
		out = append(out, a)
	}
	return out, nil
}

func (m *memoryStore) DeleteAlias(_ context.Context, name string) error {
	if _, ok := m.aliases[name]; !ok {
		return domain.ErrAliasNotFound
	}
	delete(m.aliases, name)
	return nil
}

func (m *memoryStore) Stats(context.Context, time.Time) (domain.HistoryStats, error) {
	return domain.HistoryStats{Total: len(m.commands)}, nil
}

func (m *memoryStore) ClearHistory(context.Context) error {
	m.commands = nil
	return nil
}

func (m *memoryStore) ClearChains(context.Context) error {
	m.chains = map[string]int{}
	return nil
}

func (m *memoryStore) PruneOlderThan(_ context.Context, days int) error {
	m.prunedDays = days
	return nil
}

func (m *memoryStore) ExportJSON(context.Context, string) error { return nil }

func (m *memoryStore) Path() string { return ":memory:" }

func (m *memoryStore) Close() error { return nil }

type fieldTokenizer struct{}

func (fieldTokenizer) Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

type identityStemmer struct{}

func (identityStemmer) Stem(word string) string { return word }

type recordingExecutor struct {
	commands []string
	exitCode int
}

func (r *recordingExecutor) Execute(_ context.Context, command string) (domain.ExecutionResult, error) {
	r.commands = append(r.commands, command)
	return domain.ExecutionResult{Ran: true, ExitCode: r.exitCode}, nil
}

type scriptedPrompter struct {
	confirm  bool
	choice   int
	asked    []string
	risks    []domain.RiskAssessment
	selected [][]string
}

func (p *scriptedPrompter) Enabled() bool { return true }

func (p *scriptedPrompter) Confirm(command string, risk domain.RiskAssessment) (bool, error) {
	p.asked = append(p.asked, command)
	p.risks = append(p.risks, risk)
	return p.confirm, nil
}

func (p *scriptedPrompter) Select(options []string) (int, error) {
	p.selected = append(p.selected, options)
	return p.choice, nil
}

type ruleGuardrail map[string]domain.RiskAssessment

func (g ruleGuardrail) Evaluate(command string) (domain.RiskAssessment, error) {
	if risk, ok := g[command]; ok {
		return risk, nil
	}
	return domain.RiskAssessment{Level: domain.RiskSafe, Action: domain.ActionAllow}, nil
}

func newTestService(store *memoryStore) (*Service, *recordingExecutor, *scriptedPrompter) {
	cfg := domain.Config{
		History: domain.HistorySettings{
			MaxResults:      domain.DefaultMaxResults,
			ExcludePatterns: domain.DefaultExcludePatterns,
			RetentionDays:   30,
		},
		Search:    domain.SearchSettings{ProjectMarkers: []string{".git"}},
		Execution: domain.ExecutionSettings{ConfirmBeforeExecute: true},
		Ranking:   domain.DefaultRankingSettings(),
		Chains:    domain.DefaultChainSettings(),
	}
	exec := &recordingExecutor{}
	prompter := &scriptedPrompter{confirm: true}
	clock := func() time.Time { return testNow }
	svc := &Service{
		Config:   cfg,
		Store:    store,
		Parser:   nlp.NewParser(nil, fieldTokenizer{}, identityStemmer{}),
		Matcher:  nlp.NewMatcher(cfg.Ranking, nlp.WithClock(clock)),
		Detector: chains.NewDetector(store, cfg.Chains, logger.Nop()),
		Executor: exec,
		Prompter: prompter,
		Logger:   logger.Nop(),
		Clock:    clock,
	}
	return svc, exec, prompter
}

func seed(store *memoryStore, text, dir string, age time.Duration) {
	store.commands = append(store.commands, domain.Command{
		ID:        int64(len(store.commands) + 1),
		Text:      text,
		Directory: dir,
		Timestamp: testNow.Add(-age),
	})
}

func TestLogExcludesSensitiveCommands(t *testing.T) {
	store := newMemoryStore()
	svc, _, _ := newTestService(store)

	for _, cmd := range []string{"export API_KEY=abc", "mysql --password=hunter2", "repty search push"} {
		if _, err := svc.Log(context.Background(), cmd, "/p", nil); !errors.Is(err, domain.ErrCommandExcluded) {
			t.Errorf("Log(%q) error = %v, want ErrCommandExcluded", cmd, err)
		}
	}
	if _, err := svc.Log(context.Background(), "   ", "/p", nil); err == nil {
		t.Error("Log(blank) error = nil")
	}
	if len(store.commands) != 0 {
		t.Fatalf("stored %d commands, want 0", len(store.commands))
	}
}

func TestLogRecordsChains(t *testing.T) {
	store := newMemoryStore()
	svc, _, _ := newTestService(store)
	ctx := context.Background()

	now := testNow
	svc.Clock = func() time.Time { return now }
	for _, cmd := range []string{"git add .", "git commit -m fix", "git push"} {
		code := 0
		if _, err := svc.Log(ctx, cmd, "/repo", &code); err != nil {
			t.Fatalf("Log(%q) error = %v", cmd, err)
		}
		now = now.Add(30 * time.Second)
	}

	want := map[string]int{
		"git add . && git commit -m fix":             1,
		"git add . && git commit -m fix && git push": 1,
		"git commit -m fix && git push":              1,
	}
	if len(store.chains) != len(want) {
		t.Fatalf("chains = %v, want %v", store.chains, want)
	}
	for text, count := range want {
		if store.chains[text] != count {
			t.Errorf("chain %q count = %d, want %d", text, store.chains[text], count)
		}
	}
}

func TestSearchRanksAndFilters(t *testing.T) {
	store := newMemoryStore()
	seed(store, "git push origin main", "/repo", time.Hour)
	seed(store, "git pull", "/repo", 2*time.Hour)
	seed(store, "npm test", "/repo", 3*time.Hour)
	store.chains["git add . && git push"] = 3
	svc, _, _ := newTestService(store)

	result, err := svc.Search(context.Background(), domain.SearchRequest{Query: "git push"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if result.Parsed.CommandType != "git" || result.Parsed.Action != "push" {
		t.Errorf("Parsed = %+v", result.Parsed)
	}
	if len(result.Commands) != 1 || result.Commands[0].Text != "git push origin main" {
		t.Fatalf("Commands = %+v, want only git push origin main", result.Commands)
	}
	if store.lastFilters.CommandType != "git" {
		t.Errorf("filters = %+v", store.lastFilters)
	}
	if len(result.Chains) != 1 || result.Chains[0].Text() != "git add . && git push" {
		t.Errorf("Chains = %+v", result.Chains)
	}
}

func TestSearchScopes(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(root, "web")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	store := newMemoryStore()
	svc, _, _ := newTestService(store)
	ctx := context.Background()

	if _, err := svc.Search(ctx, domain.SearchRequest{Query: "build", Directory: sub, Scope: domain.ScopeDirectory}); err != nil {
		t.Fatal(err)
	}
	if store.lastFilters.Directory != sub || store.lastFilters.ProjectRoot != "" {
		t.Errorf("directory scope filters = %+v", store.lastFilters)
	}

	if _, err := svc.Search(ctx, domain.SearchRequest{Query: "build", Directory: sub, Scope: domain.ScopeProject}); err != nil {
		t.Fatal(err)
	}
	if store.lastFilters.ProjectRoot != root {
		t.Errorf("project scope filters = %+v, want root %s", store.lastFilters, root)
	}

	if _, err := svc.Search(ctx, domain.SearchRequest{Query: "build", Directory: sub}); err != nil {
		t.Fatal(err)
	}
	if store.lastFilters.Directory != "" || store.lastFilters.ProjectRoot != "" {
		t.Errorf("unscoped filters = %+v", store.lastFilters)
	}
}

func TestRunPrefersAlias(t *testing.T) {
	store := newMemoryStore()
	store.aliases["ship"] = domain.Alias{Name: "ship", CommandsText: "git add . && git push", Kind: domain.AliasChain}
	seed(store, "ship it", "/repo", time.Hour)
	svc, exec, prompter := newTestService(store)

	resp, err := svc.Run(context.Background(), domain.RunRequest{Query: "ship", AssumeYes: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if resp.Alias == nil || resp.Command != "git add . && git push" || !resp.Executed {
		t.Errorf("Run() = %+v", resp)
	}
	if len(exec.commands) != 1 || exec.commands[0] != "git add . && git push" {
		t.Errorf("executed = %v", exec.commands)
	}
	if len(prompter.asked) != 0 {
		t.Errorf("confirmation asked despite AssumeYes: %v", prompter.asked)
	}
}

func TestRunAsksToConfirm(t *testing.T) {
	store := newMemoryStore()
	seed(store, "docker build .", "/repo", time.Hour)
	svc, exec, prompter := newTestService(store)
	prompter.confirm = false

	resp, err := svc.Run(context.Background(), domain.RunRequest{Query: "docker build"})
	if !errors.Is(err, domain.ErrCancelled) {
		t.Fatalf("Run() error = %v, want ErrCancelled", err)
	}
	if resp.Command != "docker build ." || resp.Executed {
		t.Errorf("Run() = %+v", resp)
	}
	if len(exec.commands) != 0 {
		t.Errorf("executed %v after decline", exec.commands)
	}
	if len(prompter.asked) != 1 || len(prompter.selected) != 0 {
		t.Errorf("prompts: confirm %v select %v", prompter.asked, prompter.selected)
	}
}

func TestRunLetsUserPick(t *testing.T) {
	store := newMemoryStore()
	seed(store, "npm run build", "/repo", time.Hour)
	seed(store, "npm run test", "/repo", 2*domain.Day)
	svc, exec, prompter := newTestService(store)
	prompter.choice = 1

	resp, err := svc.Run(context.Background(), domain.RunRequest{Query: "npm run"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if resp.Candidates != 2 || resp.Command != "npm run test" {
		t.Errorf("Run() = %+v", resp)
	}
	if len(prompter.selected) != 1 || !strings.HasPrefix(prompter.selected[0][0], "npm run build (") {
		t.Errorf("options = %v", prompter.selected)
	}
	if len(exec.commands) != 1 || exec.commands[0] != "npm run test" {
		t.Errorf("executed = %v", exec.commands)
	}
}

func TestRunGuardrail(t *testing.T) {
	store := newMemoryStore()
	store.aliases["nuke"] = domain.Alias{Name: "nuke", CommandsText: "rm -rf /", Kind: domain.AliasSingle}
	store.aliases["force"] = domain.Alias{Name: "force", CommandsText: "git push --force", Kind: domain.AliasSingle}
	svc, exec, prompter := newTestService(store)
	svc.Guardrail = ruleGuardrail{
		"rm -rf /":         {Level: domain.RiskCritical, Action: domain.ActionBlock, Reasons: []string{"Deleting root directory"}},
		"git push --force": {Level: domain.RiskMedium, Action: domain.ActionConfirm, Reasons: []string{"Force push"}},
	}
	ctx := context.Background()

	resp, err := svc.Run(ctx, domain.RunRequest{Query: "nuke", AssumeYes: true})
	if !errors.Is(err, domain.ErrCommandBlocked) {
		t.Fatalf("Run(nuke) error = %v, want ErrCommandBlocked", err)
	}
	if resp.Risk.Level != domain.RiskCritical || len(prompter.asked) != 0 {
		t.Errorf("Run(nuke) = %+v, asked %v", resp, prompter.asked)
	}

	prompter.confirm = false
	if _, err := svc.Run(ctx, domain.RunRequest{Query: "force", AssumeYes: true}); !errors.Is(err, domain.ErrCancelled) {
		t.Fatalf("Run(force) error = %v, want ErrCancelled", err)
	}
	if len(prompter.asked) != 1 || len(prompter.risks[0].Reasons) != 1 {
		t.Errorf("risky command was not confirmed with reasons: %v %v", prompter.asked, prompter.risks)
	}
	if len(exec.commands) != 0 {
		t.Errorf("executed = %v", exec.commands)
	}
}

func TestRunWithoutMatches(t *testing.T) {
	svc, exec, _ := newTestService(newMemoryStore())
	if _, err := svc.Run(context.Background(), domain.RunRequest{Query: "kubectl apply"}); !errors.Is(err, domain.ErrNoMatches) {
		t.Fatalf("Run() error = %v, want ErrNoMatches", err)
	}
	if len(exec.commands) != 0 {
		t.Errorf("executed = %v", exec.commands)
	}
}

func TestAddAlias(t *testing.T) {
	store := newMemoryStore()
	svc, _, _ := newTestService(store)
	ctx := context.Background()

	chain, err := svc.AddAlias(ctx, "ship", "git add . | git commit -m wip |  | git push")
	if err != nil {
		t.Fatalf("AddAlias() error = %v", err)
	}
	if chain.Kind != domain.AliasChain || chain.CommandsText != "git add . && git commit -m wip && git push" {
		t.Errorf("AddAlias() = %+v", chain)
	}

	single, err := svc.AddAlias(ctx, "st", " git status ")
	if err != nil {
		t.Fatalf("AddAlias() error = %v", err)
	}
	if single.Kind != domain.AliasSingle || single.CommandsText != "git status" {
		t.Errorf("AddAlias() = %+v", single)
	}

	if _, err := svc.AddAlias(ctx, "two words", "ls"); err == nil {
		t.Error("AddAlias() with space in name error = nil")
	}
	if _, err := svc.AddAlias(ctx, "empty", " | "); err == nil {
		t.Error("AddAlias() with empty chain error = nil")
	}

	if err := svc.RemoveAlias(ctx, "st"); err != nil {
		t.Fatalf("RemoveAlias() error = %v", err)
	}
	if err := svc.RemoveAlias(ctx, "st"); !errors.Is(err, domain.ErrAliasNotFound) {
		t.Errorf("RemoveAlias() twice error = %v", err)
	}
}

func TestRetainFallsBackToConfig(t *testing.T) {
	store := newMemoryStore()
	svc, _, _ := newTestService(store)

	days, err := svc.Retain(context.Background(), 0)
	if err != nil || days != 30 || store.prunedDays != 30 {
		t.Fatalf("Retain(0) = %d, %v; pruned %d", days, err, store.prunedDays)
	}
	days, err = svc.Retain(context.Background(), 7)
	if err != nil || days != 7 || store.prunedDays != 7 {
		t.Fatalf("Retain(7) = %d, %v; pruned %d", days, err, store.prunedDays)
	}

	svc.Config.History.RetentionDays = 0
	store.prunedDays = -1
	if days, err := svc.Retain(context.Background(), 0); err != nil || days != 0 || store.prunedDays != -1 {
		t.Fatalf("Retain with no retention = %d, %v; pruned %d", days, err, store.prunedDays)
	}
}

func TestMissingStore(t *testing.T) {
	svc := &Service{Logger: logger.Nop()}
	ctx := context.Background()
	if _, err := svc.Log(ctx, "ls", "/", nil); !errors.Is(err, domain.ErrStoreNotReady) {
		t.Errorf("Log() error = %v", err)
	}
	if _, err := svc.Search(ctx, domain.SearchRequest{Query: "ls"}); !errors.Is(err, domain.ErrStoreNotReady) {
		t.Errorf("Search() error = %v", err)
	}
	if _, err := svc.Recent(ctx, 5); !errors.Is(err, domain.ErrStoreNotReady) {
		t.Errorf("Recent() error = %v", err)
	}
}
