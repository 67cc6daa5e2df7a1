package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"poultry-diagnose-be/internal/config"
	"poultry-diagnose-be/internal/controller"
	"poultry-diagnose-be/internal/pkg/logger"
	"poultry-diagnose-be/internal/repository/implementation"
	"poultry-diagnose-be/internal/repository/memory"
	"poultry-diagnose-be/internal/service"
	"poultry-diagnose-be/pkg/database"
	"poultry-diagnose-be/pkg/embedding"
	"poultry-diagnose-be/pkg/embedding/jina"
	"poultry-diagnose-be/pkg/graph"
	"poultry-diagnose-be/pkg/knowledge"
	"poultry-diagnose-be/pkg/kvstore"
	pktNats "poultry-diagnose-be/pkg/nats"
	"poultry-diagnose-be/pkg/session"
	"poultry-diagnose-be/pkg/symptom"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

const bootModule = "BOOTSTRAP"

type Container struct {
	Logger logger.ILogger

	// Controllers
	DiagnoseController  controller.IDiagnoseController
	KnowledgeController controller.IKnowledgeController
	AdminController     controller.IAdminController
	HealthController    controller.IHealthController

	// Background Services (Exposed for main.go to run)
	RefreshService service.IRefreshService

	closers []func(ctx context.Context) error
}

// NewContainer wires every dependency. Startup failures that leave the dialogue unable to serve
// (no vocabulary, no knowledge snapshot) are fatal.
func NewContainer(ctx context.Context, cfg *config.Config) *Container {
	c := &Container{}

	// 1. Core Facades
	sysLogger := logger.NewZapLogger(logger.Options{
		FilePath: cfg.App.LogFilePath,
		Level:    cfg.App.LogLevel,
		IsProd:   cfg.IsProduction(),
	})
	c.Logger = sysLogger

	// 2. Infrastructure
	rdb := kvstore.NewRedisClient(cfg.App.RedisURL)
	if err := rdb.Ping(ctx).Err(); err != nil {
		sysLogger.Warn(bootModule, "Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
	}
	c.closers = append(c.closers, func(context.Context) error { return rdb.Close() })

	var db *gorm.DB
	openDB := func() *gorm.DB {
		if db != nil {
			return db
		}
		conn, err := database.NewGormDBFromDSN(cfg.Graph.PostgresDSN, database.Options{Verbose: !cfg.IsProduction()})
		if err != nil {
			log.Fatalf("[FATAL] Unable to connect to Postgres: %v", err)
		}
		db = conn
		return db
	}

	graphStore, err := newGraphStore(ctx, cfg, openDB)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize graph store: %v", err)
	}
	c.closers = append(c.closers, graphStore.Close)
	sysLogger.Info(bootModule, "Graph store ready", map[string]interface{}{"backend": cfg.Graph.Backend})

	rawEmbedder := newEmbeddingProvider(cfg, sysLogger)
	embedder := memory.NewEmbeddingCache(rawEmbedder, cfg.Ai.EmbeddingCacheTTL)

	entries, err := loadVocabulary(ctx, cfg, graphStore, rawEmbedder, openDB)
	if err != nil {
		log.Fatalf("[FATAL] Failed to load symptom vocabulary: %v", err)
	}
	index, err := symptom.NewIndex(entries, embedder, cfg.Diagnosis.SimThreshold)
	if err != nil {
		log.Fatalf("[FATAL] Failed to build symptom index: %v", err)
	}
	sysLogger.Info(bootModule, "Symptom index ready", map[string]interface{}{
		"source":    cfg.Diagnosis.SnapshotSource,
		"entries":   index.Len(),
		"threshold": index.Threshold(),
	})

	kb := knowledge.New(graphStore, knowledge.NewRedisMirror(rdb, cfg.Diagnosis.MirrorKey), sysLogger)
	if _, err := kb.Load(ctx); err != nil {
		log.Fatalf("[FATAL] Failed to load knowledge base: %v", err)
	}

	// 3. Event Bus
	var transport service.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn(bootModule, "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
		} else {
			transport = natsPub
			c.closers = append(c.closers, func(context.Context) error { natsPub.Close(); return nil })
		}
	}
	eventPublisher := service.NewEventPublisher(transport, sysLogger)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	c.closers = append(c.closers, func(context.Context) error { return pubSub.Close() })

	// 4. Services
	diagnoseService := service.NewDiagnoseService(
		session.NewManager(kvstore.NewRedisHashStore(rdb)),
		symptom.NewResolver(index),
		kb,
		graphStore,
		eventPublisher,
		sysLogger,
		service.DiagnoseOptions{
			DiagThreshold:  cfg.Diagnosis.DiagThreshold,
			SuggestLimit:   cfg.Diagnosis.SuggestLimit,
			BestGuessLimit: cfg.Diagnosis.BestGuessLimit,
		},
	)
	knowledgeService := service.NewKnowledgeService(graphStore, kb, index, kvstore.NewRedisHashStore(rdb))
	c.RefreshService = service.NewRefreshService(pubSub, kb, eventPublisher, sysLogger)

	// 5. Controllers
	c.DiagnoseController = controller.NewDiagnoseController(diagnoseService)
	c.KnowledgeController = controller.NewKnowledgeController(knowledgeService)
	c.AdminController = controller.NewAdminController(c.RefreshService, cfg.App.JWTSecret)
	c.HealthController = controller.NewHealthController(knowledgeService)

	return c
}

// Close releases infrastructure in reverse creation order.
func (c *Container) Close(ctx context.Context) {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil {
			c.Logger.Warn(bootModule, "Failed to close resource", map[string]interface{}{"error": err.Error()})
		}
	}
	_ = c.Logger.Sync()
}

func newGraphStore(ctx context.Context, cfg *config.Config, openDB func() *gorm.DB) (graph.Store, error) {
	switch cfg.Graph.Backend {
	case "neo4j":
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return graph.NewNeo4jStore(connectCtx, cfg.Graph.Neo4jURI, cfg.Graph.Neo4jUser, cfg.Graph.Neo4jPassword, cfg.Graph.Neo4jDatabase)
	case "postgres":
		return implementation.NewGraphRepository(openDB()), nil
	case "file":
		return graph.LoadMemoryStore(cfg.Graph.ExportPath)
	default:
		return nil, fmt.Errorf("unknown graph backend %q", cfg.Graph.Backend)
	}
}

func newEmbeddingProvider(cfg *config.Config, sysLogger logger.ILogger) embedding.EmbeddingProvider {
	switch cfg.Ai.EmbeddingProvider {
	case "jina":
		sysLogger.Info(bootModule, "Using Embedding Provider: JINA AI", nil)
		return jina.NewJinaProvider(cfg.Ai.JinaAPIKey)
	case "gemini":
		sysLogger.Info(bootModule, "Using Embedding Provider: GEMINI", nil)
		return embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
	default:
		sysLogger.Info(bootModule, "Using Embedding Provider: OLLAMA", map[string]interface{}{"model": cfg.Ai.OllamaModel})
		return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	}
}

// loadVocabulary reads the canonical symptom vectors from the configured source.
// The "embed" source warms up through the uncached provider so the query cache starts empty.
func loadVocabulary(
	ctx context.Context,
	cfg *config.Config,
	graphStore graph.Store,
	provider embedding.EmbeddingProvider,
	openDB func() *gorm.DB,
) ([]symptom.Entry, error) {
	switch cfg.Diagnosis.SnapshotSource {
	case "file":
		return symptom.LoadFile(cfg.Diagnosis.SnapshotPath)
	case "postgres":
		return implementation.NewSymptomVectorRepository(openDB()).FindAll(ctx)
	case "embed":
		features, err := graphStore.Features(ctx)
		if err != nil {
			return nil, err
		}
		names := make([]symptom.Named, len(features))
		for i, f := range features {
			names[i] = symptom.Named{ID: f.ID, Name: f.Name}
		}
		return symptom.BuildFromNames(ctx, provider, names)
	default:
		return nil, fmt.Errorf("unknown symptom snapshot source %q", cfg.Diagnosis.SnapshotSource)
	}
}
