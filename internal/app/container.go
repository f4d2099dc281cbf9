package app

import (
	"context"
	"errors"

	"github.com/doeshing/repty/internal/application/chains"
	"github.com/doeshing/repty/internal/application/doctor"
	"github.com/doeshing/repty/internal/application/history"
	"github.com/doeshing/repty/internal/application/nlp"
	"github.com/doeshing/repty/internal/domain"
	"github.com/doeshing/repty/internal/infrastructure/config"
	"github.com/doeshing/repty/internal/infrastructure/executor"
	"github.com/doeshing/repty/internal/infrastructure/security"
	"github.com/doeshing/repty/internal/infrastructure/shell"
	"github.com/doeshing/repty/internal/infrastructure/store"
	"github.com/doeshing/repty/internal/infrastructure/textproc"
	"github.com/doeshing/repty/internal/pkg/logger"
	"github.com/doeshing/repty/internal/ports"
)

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config          domain.Config
	ConfigProvider  ports.ConfigProvider
	ConfigLoader    *config.FileLoader
	HistoryService  *history.Service
	HistoryStore    ports.HistoryRepository
	ShellIntegrator ports.ShellIntegrator
	DoctorService   *doctor.Service
	Guardrail       *security.Guardrail
	Logger          *logger.ZapLogger
}

// BuildContainer constructs the dependency graph.
// A store that fails to open is logged and left nil so that config and
// doctor commands keep working; history operations then report ErrStoreNotReady.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(verbose)
	if err != nil {
		return nil, err
	}

	var repo ports.HistoryRepository
	sqliteStore, err := store.Open(cfg.Storage.DBPath)
	if err != nil {
		log.Warn("history store unavailable", map[string]interface{}{
			"path":  cfg.Storage.DBPath,
			"error": err.Error(),
		})
	} else {
		repo = sqliteStore
	}

	parser := nlp.NewParser(textproc.NewDateExtractor(), textproc.NewTokenizer(), textproc.NewPorterStemmer())
	matcher := nlp.NewMatcher(cfg.Ranking)

	var detector *chains.Detector
	if repo != nil {
		detector = chains.NewDetector(repo, cfg.Chains, log)
	}

	guardrail, err := security.NewGuardrail(cfg.Execution.GuardrailRules)
	if err != nil {
		log.Warn("guardrail rules rejected, using built-in rules", map[string]interface{}{
			"path":  cfg.Execution.GuardrailRules,
			"error": err.Error(),
		})
		if guardrail, err = security.NewGuardrail(""); err != nil {
			return nil, err
		}
	}

	shellInstaller := shell.NewInstaller(log)

	historyService := &history.Service{
		Config:    cfg,
		Store:     repo,
		Parser:    parser,
		Matcher:   matcher,
		Detector:  detector,
		Executor:  executor.NewLocalExecutor(cfg.Execution.Shell),
		Guardrail: guardrail,
		Logger:    log,
	}

	doctorService := &doctor.Service{
		ConfigProvider:  cfgLoader,
		ShellIntegrator: shellInstaller,
		Guardrail:       guardrail,
	}
	if repo != nil {
		doctorService.Store = repo
	}

	return &Container{
		Config:          cfg,
		ConfigProvider:  cfgLoader,
		ConfigLoader:    cfgLoader,
		HistoryService:  historyService,
		HistoryStore:    repo,
		ShellIntegrator: shellInstaller,
		DoctorService:   doctorService,
		Guardrail:       guardrail,
		Logger:          log,
	}, nil
}

// Close releases the store and flushes the logger.
func (c *Container) Close() error {
	var errs []error
	if c.HistoryStore != nil {
		errs = append(errs, c.HistoryStore.Close())
	}
	if c.Logger != nil {
		// zap returns EINVAL when syncing a terminal stderr; ignore it.
		_ = c.Logger.Sync()
	}
	return errors.Join(errs...)
}
