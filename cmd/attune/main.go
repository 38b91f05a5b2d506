package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/alexanderramin/attune/internal/cli"
	"github.com/alexanderramin/attune/internal/corpus"
	"github.com/alexanderramin/attune/internal/db"
	"github.com/alexanderramin/attune/internal/domain"
	"github.com/alexanderramin/attune/internal/engine"
	"github.com/alexanderramin/attune/internal/llm"
	"github.com/alexanderramin/attune/internal/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Determine DB path: env var or default ~/.attune/attune.db
	dbPath := os.Getenv("ATTUNE_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".attune", "attune.db")
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}

	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	advice, clusters, err := loadCorpus()
	if err != nil {
		return err
	}

	deps := engine.Deps{
		UoW:      db.NewSQLiteUnitOfWork(database),
		Repo:     repository.NewSQLiteProfileRepo(database),
		Advice:   advice,
		Clusters: clusters,
	}

	// Wire the model backend only when enabled; everything degrades to
	// deterministic fallbacks without it.
	llmCfg := llm.LoadConfig()
	if llmCfg.Enabled {
		var observer llm.Observer = llm.NoopObserver{}
		if llmCfg.LogCalls {
			observer = llm.NewLogObserver(os.Stderr)
		}
		deps.Client = llm.NewOllamaClient(llmCfg, observer)
	}

	if os.Getenv("ATTUNE_LOG_OPS") != "" {
		deps.Observer = engine.NewLogObserver(os.Stderr)
	}

	eng := engine.New(deps, engine.LoadConfig())

	// Best effort: ranking falls back to lexical-only scoring when the
	// embedding warm-up is disabled or the backend is down.
	if err := eng.WarmUp(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: embedding warm-up failed: %v\n", err)
	}

	app := &cli.App{
		Engine: eng,
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}

	return cli.NewRootCmd(app).Execute()
}

// loadCorpus reads advice and cluster files from ATTUNE_ADVICE /
// ATTUNE_CLUSTERS when set, falling back to the embedded corpus.
func loadCorpus() ([]domain.AdviceItem, []domain.SemanticCluster, error) {
	var (
		advice   []domain.AdviceItem
		clusters []domain.SemanticCluster
		err      error
	)

	if path := os.Getenv("ATTUNE_ADVICE"); path != "" {
		advice, err = corpus.LoadAdvice(path, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("loading advice corpus: %w", err)
		}
	}
	if path := os.Getenv("ATTUNE_CLUSTERS"); path != "" {
		clusters, err = corpus.LoadClusters(path, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("loading cluster corpus: %w", err)
		}
	}
	return advice, clusters, nil
}
