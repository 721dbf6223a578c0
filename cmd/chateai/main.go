package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/RainingDaemons/chateai/internal/common"
	"github.com/RainingDaemons/chateai/internal/handlers"
	"github.com/RainingDaemons/chateai/internal/server"
	"github.com/RainingDaemons/chateai/internal/services/capture"
	"github.com/RainingDaemons/chateai/internal/services/chat"
	"github.com/RainingDaemons/chateai/internal/services/chunker"
	"github.com/RainingDaemons/chateai/internal/services/embedding"
	"github.com/RainingDaemons/chateai/internal/services/indexer"
	"github.com/RainingDaemons/chateai/internal/services/llm"
	"github.com/RainingDaemons/chateai/internal/services/loader"
	"github.com/RainingDaemons/chateai/internal/services/rag"
	"github.com/RainingDaemons/chateai/internal/services/vectorindex"
	"github.com/RainingDaemons/chateai/internal/storage/sqlite"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths
	serverPort   = flag.Int("port", 0, "Server port (overrides config)")
	serverHost   = flag.String("host", "", "Server host (overrides config)")
	reindexOnly  = flag.Bool("reindex", false, "Rebuild the index and exit")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("ChateAI version %s\n", common.GetVersion())
		os.Exit(0)
	}

	// Auto-discover a config file next to the binary or in the working dir
	if len(configFiles) == 0 {
		if _, err := os.Stat("chateai.toml"); err == nil {
			configFiles = append(configFiles, "chateai.toml")
		}
	}

	// Startup order: config (defaults -> files -> env), CLI overrides,
	// logger, banner
	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	common.ApplyFlagOverrides(config, *serverPort, *serverHost)

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	logger.Info().
		Strs("config_files", configFiles).
		Strs("docs_roots", config.Docs.Roots).
		Str("embedding_provider", config.Embedding.Provider).
		Str("llm_provider", config.LLM.Provider).
		Msg("Application configuration loaded")

	if err := run(config, logger); err != nil {
		logger.Fatal().Err(err).Msg("Startup failed")
		os.Exit(1)
	}
}

func run(config *common.Config, logger arbor.ILogger) error {
	// Retrieval pipeline
	embedder, err := embedding.NewService(&config.Embedding, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize embedding service: %w", err)
	}

	store := vectorindex.NewStore(
		config.Storage.Index.IndexPath,
		config.Storage.Index.MetaPath,
		embedder.ModelName(),
		logger,
	)
	docLoader := loader.NewService(config.Docs.Extensions, logger)
	splitter := chunker.New(
		chunker.WithMaxChars(config.Chunking.MaxChars),
		chunker.WithOverlap(config.Chunking.Overlap),
	)
	idx := indexer.NewService(docLoader, splitter, embedder, store, logger)

	manager, err := rag.NewManager(idx, store, embedder, config.Docs.Roots, config.RAG.TopK, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize rag manager: %w", err)
	}

	if *reindexOnly {
		stats, err := manager.ReindexSync(context.Background())
		if err != nil {
			return fmt.Errorf("reindex failed: %w", err)
		}
		logger.Info().
			Int("documents", stats.Documents).
			Int("chunks", stats.Chunks).
			Str("duration", stats.Duration.Round(time.Millisecond).String()).
			Msg("Reindex completed")
		return nil
	}

	// Generation + persistence
	llmService, err := llm.NewService(&config.LLM, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize llm service: %w", err)
	}

	db, err := sqlite.NewSQLiteDB(&config.Storage.SQLite, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	conversations := sqlite.NewConversationStorage(db, logger)
	chatService := chat.NewService(manager, llmService, conversations, logger)

	// Background reindex triggers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if config.RAG.Watch {
		watcher, err := rag.NewWatcher(manager, config.Docs.Roots, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to create document watcher, continuing without it")
		} else {
			if err := watcher.Start(ctx); err != nil {
				logger.Warn().Err(err).Msg("Failed to start document watcher")
			}
			defer watcher.Stop()
		}
	}

	scheduler := rag.NewScheduler(manager, logger)
	if err := scheduler.Start(ctx, config.RAG.Schedule); err != nil {
		logger.Warn().Err(err).Msg("Failed to start reindex scheduler")
	}
	defer scheduler.Stop()

	// HTTP server
	captureWriter := capture.NewWriter(config.Capture.Dir, logger)

	srv := server.New(config, &server.Handlers{
		Chat:          handlers.NewChatHandler(chatService, llmService, logger),
		Search:        handlers.NewSearchHandler(manager, logger),
		Index:         handlers.NewIndexHandler(manager, logger),
		Conversations: handlers.NewConversationHandler(conversations, logger),
		Capture:       handlers.NewCaptureHandler(captureWriter, manager, logger),
		Status:        handlers.NewStatusHandler(logger),
	}, logger)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Fatal().Str("panic", fmt.Sprintf("%v", r)).Msg("Server goroutine panicked")
			}
		}()
		if err := srv.Start(); err != nil {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	logger.Info().
		Str("url", fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)).
		Msg("Server ready - Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info().Msg("Interrupt signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}

	logger.Info().Msg("Server stopped")
	return nil
}
