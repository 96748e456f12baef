package cmd

import (
	"path/filepath"

	"github.com/felixgeelhaar/wavemaker/internal/config"
	"github.com/felixgeelhaar/wavemaker/internal/conflict"
	"github.com/felixgeelhaar/wavemaker/internal/dispatch"
	"github.com/felixgeelhaar/wavemaker/internal/ledger"
	"github.com/felixgeelhaar/wavemaker/internal/log"
	"github.com/felixgeelhaar/wavemaker/internal/orchestrator"
	"github.com/felixgeelhaar/wavemaker/internal/retry"
	"github.com/felixgeelhaar/wavemaker/internal/worker"
)

// workspacePath resolves a config-relative path against the workspace flag.
func workspacePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(flagWorkspace, path)
}

// loadConfig loads the workspace configuration and wires the process logger.
func loadConfig() (*config.Config, *log.Logger, error) {
	cfg, err := config.Load(flagWorkspace)
	if err != nil {
		return nil, nil, err
	}
	logger := setupLogger(cfg.Log.Level, cfg.Log.Format)
	return cfg, logger, nil
}

// buildOrchestrator assembles the full run pipeline from configuration.
func buildOrchestrator(cfg *config.Config, logger *log.Logger) *orchestrator.Orchestrator {
	store := ledger.NewStore(workspacePath(cfg.Ledger.Path))
	learnings := ledger.NewLearningsLog(workspacePath(cfg.Ledger.Learnings))

	mode, _ := conflict.ParseMode(cfg.Conflict.Mode)
	analyzer := conflict.NewAnalyzer(flagWorkspace, mode)

	invoker := worker.NewExecutable(cfg.Worker.Command, cfg.Worker.Timeout, flagWorkspace)
	dispatcher := dispatch.New(invoker, workspacePath(cfg.Run.ScratchDir), logger)
	verifier := worker.NewShellVerifier(flagWorkspace)
	retries := retry.New(dispatcher, verifier, cfg.Run.MaxBlocked, logger)

	return orchestrator.New(orchestrator.Options{
		Store:        store,
		Learnings:    learnings,
		Analyzer:     analyzer,
		Dispatcher:   dispatcher,
		Retries:      retries,
		TierOverride: cfg.Worker.Tiers,
		ArchiveDir:   workspacePath(cfg.Run.ArchiveDir),
		Logger:       logger,
	})
}

// ledgerStore opens the configured ledger store without the run pipeline.
func ledgerStore(cfg *config.Config) *ledger.Store {
	return ledger.NewStore(workspacePath(cfg.Ledger.Path))
}
