// Package bootstrap wires configuration into the full pipeline dependency
// graph. Optional integrations (postgres, nats, lexicon file) degrade to
// nil/noop when unconfigured.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/ragline/docqa/internal/config"
	"github.com/ragline/docqa/internal/core/ports"
	"github.com/ragline/docqa/internal/core/usecase"
	"github.com/ragline/docqa/internal/infrastructure/index"
	"github.com/ragline/docqa/internal/infrastructure/lexicon"
	"github.com/ragline/docqa/internal/infrastructure/llm/ollama"
	"github.com/ragline/docqa/internal/infrastructure/queue/nats"
	"github.com/ragline/docqa/internal/infrastructure/rerank"
	"github.com/ragline/docqa/internal/infrastructure/repository/postgres"
	"github.com/ragline/docqa/internal/infrastructure/resilience"
	"github.com/ragline/docqa/internal/observability/logging"
	"github.com/ragline/docqa/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Corpus   ports.CorpusIndex
	Embedder ports.Embedder
	IngestUC ports.DocumentIngestor
	SearchUC *usecase.RetrievalUseCase
	AnswerUC ports.AnswerService
	Metrics  *metrics.PipelineMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	resilienceCfg := resilience.BackendConfig()
	resilienceCfg.BreakerEnabled = cfg.ResilienceBreakerOn
	executor := resilience.NewExecutor(resilienceCfg, logging.ForComponent(log, "resilience"))

	ollamaClient := ollama.New(
		cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel,
		ollama.WithExecutor(executor),
	)
	embedder := ollama.NewEmbedder(ollamaClient)
	generator := ollama.NewGenerator(ollamaClient)

	store := index.NewStore()

	var expander ports.QueryExpander
	if cfg.LexiconPath != "" {
		fromFile, err := lexicon.NewFromFile(cfg.LexiconPath)
		if err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
		expander = fromFile
	} else {
		expander = lexicon.New()
	}

	var publisher ports.EventPublisher
	var closeNATS func()
	if cfg.NATSURL != "" {
		natsPublisher, err := nats.New(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: executor,
			Logger:             logging.ForComponent(log, "nats"),
		})
		if err != nil {
			return nil, fmt.Errorf("init nats publisher: %w", err)
		}
		publisher = natsPublisher
		closeNATS = natsPublisher.Close
	}

	var audit ports.AnswerLog
	var closeDB func()
	if cfg.PostgresDSN != "" {
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		answerLog := postgres.NewAnswerLog(db)
		if err := answerLog.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure answer log schema: %w", err)
		}
		audit = answerLog
		closeDB = func() { _ = db.Close() }
	}

	workers := cfg.RerankWorkers
	if workers <= 0 {
		workers = 8
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("init rerank worker pool: %w", err)
	}

	rerankUC := usecase.NewRerankUseCase(
		rerank.NewLexicalScorer(),
		[]ports.RerankScorer{rerank.NewEmbeddingScorer(embedder)},
		pool,
		logging.ForComponent(log, "rerank"),
	)

	searchUC := usecase.NewRetrievalUseCase(store, embedder, expander, rerankUC, usecase.RetrievalOptions{
		Alpha:            cfg.FusionAlpha,
		TopK:             cfg.SearchTopK,
		HybridCandidates: cfg.HybridCandidates,
		RerankTopN:       cfg.RerankTopN,
		MaxVariants:      cfg.ExpansionMaxVariants,
		MaxQueryChars:    cfg.MaxQueryChars,
		EmbedTimeout:     time.Duration(cfg.EmbedTimeoutSeconds) * time.Second,
		ExpandTimeout:    time.Duration(cfg.ExpandTimeoutSeconds) * time.Second,
	}, logging.ForComponent(log, "search"))

	ingestUC := usecase.NewIngestUseCase(store, embedder, publisher, usecase.IngestOptions{
		EmbedTimeout: time.Duration(cfg.EmbedTimeoutSeconds) * time.Second,
	}, logging.ForComponent(log, "ingest"))

	answerUC := usecase.NewAnswerUseCase(searchUC, generator, audit, usecase.AnswerOptions{
		RetrieveTopN:    cfg.AnswerTopN,
		GenerateTimeout: time.Duration(cfg.GenerateTimeoutSeconds) * time.Second,
	}, logging.ForComponent(log, "answer"))

	return &App{
		Config:   cfg,
		Corpus:   store,
		Embedder: embedder,
		IngestUC: ingestUC,
		SearchUC: searchUC,
		AnswerUC: answerUC,
		Metrics:  metrics.NewPipelineMetrics("docqa-api"),

		closeFn: func() {
			pool.Release()
			if closeNATS != nil {
				closeNATS()
			}
			if closeDB != nil {
				closeDB()
			}
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
