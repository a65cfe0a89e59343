package main

import (
	"context"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/legis-cli/internal/cache"
	"github.com/sells-group/legis-cli/internal/classify"
	"github.com/sells-group/legis-cli/internal/confirm"
	"github.com/sells-group/legis-cli/internal/model"
	"github.com/sells-group/legis-cli/internal/resolve"
	"github.com/sells-group/legis-cli/internal/runner"
	"github.com/sells-group/legis-cli/internal/scrape"
	"github.com/sells-group/legis-cli/internal/strategy"
	anthropicpkg "github.com/sells-group/legis-cli/pkg/anthropic"
)

func initStore(ctx context.Context) (cache.Store, error) {
	switch cfg.Cache.Driver {
	case "sqlite":
		path := cfg.Cache.Path
		if path == "" {
			path = "legis-cache.db"
		}
		return cache.NewSQLite(path)
	case "postgres":
		return cache.NewPostgres(ctx, cfg.Cache.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported cache driver: %s", cfg.Cache.Driver)
	}
}

func initFetcher() (*scrape.Fetcher, error) {
	return scrape.NewFetcher(scrape.Options{
		BaseURL:        cfg.Legislature.BaseURL,
		RequestsPerSec: cfg.Legislature.RequestsPerSec,
		Burst:          cfg.Legislature.Burst,
		Timeout:        time.Duration(cfg.Legislature.TimeoutSecs) * time.Second,
		UserAgent:      cfg.Legislature.UserAgent,
	})
}

// env bundles everything a compliance run needs plus its cleanup.
type env struct {
	Fetcher *scrape.Fetcher
	Store   cache.Store
	Runner  *runner.Runner

	audit *confirm.FileAudit
}

func (e *env) Close() {
	if e.audit != nil {
		_ = e.audit.Close()
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv wires the fetcher, cache, confirmation procedure, resolver, and
// runner. Headless runs auto-accept candidates instead of prompting.
func initEnv(ctx context.Context, headless bool, checkExtensions bool, limitHearings int) (*env, error) {
	if err := cfg.Validate("run"); err != nil {
		return nil, err
	}

	store, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, eris.Wrap(err, "migrate cache")
	}

	fetcher, err := initFetcher()
	if err != nil {
		store.Close()
		return nil, err
	}

	var audit *confirm.FileAudit
	if cfg.Audit.LogPath != "" {
		audit, err = confirm.NewFileAudit(cfg.Audit.LogPath)
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	var judge *confirm.Judge
	if cfg.Judge.Enabled {
		client := anthropicpkg.NewClient(cfg.Anthropic.Key)
		judge = confirm.NewJudge(confirm.JudgeConfig{
			Enabled: true,
			Model:   cfg.Anthropic.Model,
			Prompt:  cfg.Judge.Prompt,
			Timeout: time.Duration(cfg.Judge.TimeoutSecs) * time.Second,
		}, client, auditSink(audit))
	} else {
		judge = confirm.NewJudge(confirm.JudgeConfig{Enabled: false}, nil, auditSink(audit))
	}

	var prompter confirm.Prompter
	if headless {
		prompter = confirm.AutoAcceptPrompter{}
	} else {
		prompter = &confirm.TerminalPrompter{In: os.Stdin, Out: os.Stdout}
	}
	procedure := confirm.NewProcedure(judge, prompter)

	registry := strategy.NewRegistry()
	scrape.RegisterStrategies(registry, fetcher)

	catalogs := map[model.DocumentKind][]strategy.Ref{
		model.KindSummary: cfg.Resolver.Summary,
		model.KindVotes:   cfg.Resolver.Votes,
	}
	resolver := resolve.New(registry, catalogs, store, procedure, cfg.Resolver.Confirmation)
	classifier := classify.New(cfg.Notice.MinDays)

	r := runner.New(fetcher, store, resolver, classifier, runner.Options{
		LimitHearings:   limitHearings,
		CheckExtensions: checkExtensions,
		MinNoticeDays:   cfg.Notice.MinDays,
		OutputDir:       cfg.Output.Dir,
		WriteXLSX:       cfg.Output.XLSX,
	})

	zap.L().Info("environment ready",
		zap.String("cache_driver", cfg.Cache.Driver),
		zap.Bool("judge_enabled", cfg.Judge.Enabled),
		zap.Bool("confirmation", cfg.Resolver.Confirmation),
		zap.Bool("headless", headless),
	)

	return &env{Fetcher: fetcher, Store: store, Runner: r, audit: audit}, nil
}

// auditSink converts a possibly-nil *FileAudit into the interface without
// producing a non-nil interface around a nil pointer.
func auditSink(a *confirm.FileAudit) confirm.AuditSink {
	if a == nil {
		return nil
	}
	return a
}
