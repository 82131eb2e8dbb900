package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/codeforesight/foresight/internal/adapter/cli"
	"github.com/codeforesight/foresight/internal/adapter/git"
	"github.com/codeforesight/foresight/internal/adapter/output/json"
	"github.com/codeforesight/foresight/internal/adapter/output/markdown"
	"github.com/codeforesight/foresight/internal/adapter/output/sarif"
	"github.com/codeforesight/foresight/internal/adapter/store/sqlite"
	"github.com/codeforesight/foresight/internal/config"
	"github.com/codeforesight/foresight/internal/observability"
	"github.com/codeforesight/foresight/internal/redaction"
	"github.com/codeforesight/foresight/internal/usecase/scan"
	"github.com/codeforesight/foresight/internal/version"
)

func main() {
	err := run()
	if err == nil {
		return
	}
	if errors.Is(err, cli.ErrGateFailed) {
		log.Println(err)
		os.Exit(1)
	}
	if errors.Is(err, cli.ErrUsage) {
		log.Println(err)
		os.Exit(2)
	}
	log.Println(err)
	os.Exit(1)
}

func run() error {
	// Cancellable context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "foresight",
		EnvPrefix:   "FORESIGHT",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	// Machine-local overrides sit next to the working tree and win
	// section by section over the discovered configuration.
	cfg, err = config.LoadOverlay(cfg, "foresight.local.yaml")
	if err != nil {
		return fmt.Errorf("config overlay failed: %w", err)
	}

	repoDir := cfg.Git.RepositoryDir
	if repoDir == "" {
		repoDir = "."
	}

	// Timestamp function for deterministic output file naming
	nowFunc := func() string {
		return time.Now().UTC().Format("20060102T150405Z")
	}

	jsonWriter := json.NewWriter(nowFunc)
	sarifWriter := sarif.NewWriter(nowFunc)
	markdownWriter := markdown.NewWriter(nowFunc)

	logger := buildLogger(cfg.Observability)

	var redactor scan.Redactor
	if cfg.Redaction.Enabled {
		redactor = redaction.NewEngine()
	}

	var pipelineStore scan.Store
	var history cli.History
	if cfg.Store.Enabled {
		storeDir := filepath.Dir(cfg.Store.Path)
		if err := os.MkdirAll(storeDir, 0o755); err != nil {
			log.Printf("warning: failed to create store directory: %v", err)
		} else {
			sqliteStore, err := sqlite.NewStore(cfg.Store.Path)
			if err != nil {
				log.Printf("warning: failed to initialize store: %v", err)
			} else {
				pipelineStore = sqliteStore
				history = sqliteStore
				defer sqliteStore.Close()
			}
		}
	}

	pipeline := scan.NewPipeline(scan.Deps{
		JSON:     jsonWriter,
		SARIF:    sarifWriter,
		Markdown: markdownWriter,
		Store:    pipelineStore,
		Logger:   logger,
		Redactor: redactor,
	})

	root := cli.NewRootCommand(cli.Dependencies{
		Pipeline: pipeline,
		FileSource: func(dir string) (scan.FileSource, error) {
			if dir == "" {
				dir = repoDir
			}
			return git.NewEngine(dir), nil
		},
		History:          history,
		DefaultOutput:    cfg.Output.Directory,
		DefaultRepoDir:   repoDir,
		DefaultThreshold: cfg.Gate.Stage3Threshold,
		Version:          version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "foresight"))
	}
	return paths
}

// buildLogger creates the pipeline logger based on configuration.
func buildLogger(cfg config.ObservabilityConfig) scan.Logger {
	if !cfg.Logging.Enabled {
		return observability.NopLogger{}
	}
	return observability.NewDefaultLogger(
		observability.ParseLevel(cfg.Logging.Level),
		observability.ParseFormat(cfg.Logging.Format),
	)
}

// Compile-time interface compliance checks
var _ scan.FileSource = (*git.Engine)(nil)
var _ scan.JSONWriter = (*json.Writer)(nil)
var _ scan.SARIFWriter = (*sarif.Writer)(nil)
var _ scan.MarkdownWriter = (*markdown.Writer)(nil)
var _ scan.Store = (*sqlite.Store)(nil)
var _ scan.Redactor = (*redaction.Engine)(nil)
var _ scan.Logger = (*observability.DefaultLogger)(nil)
var _ cli.History = (*sqlite.Store)(nil)
var _ cli.Pipeline = (*scan.Pipeline)(nil)
