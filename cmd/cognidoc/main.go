package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/WoldamlakDebasu/Cognidoc/config"
	"github.com/WoldamlakDebasu/Cognidoc/internal/api"
	"github.com/WoldamlakDebasu/Cognidoc/internal/documents"
	"github.com/WoldamlakDebasu/Cognidoc/internal/engine"
	"github.com/WoldamlakDebasu/Cognidoc/internal/index"
	"github.com/WoldamlakDebasu/Cognidoc/internal/provider"
	"github.com/WoldamlakDebasu/Cognidoc/internal/rag"
	"github.com/WoldamlakDebasu/Cognidoc/internal/tui"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "Path to configuration file")
		console    = flag.Bool("console", false, "Run the interactive console instead of the HTTP server")
		verbose    = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	// Provider credentials may live in a local .env file.
	_ = godotenv.Load()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log, *console, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger, console bool, files []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	embedder := buildEmbedder(cfg)

	idx, err := buildIndex(ctx, cfg, embedder.Dimension())
	if err != nil {
		return err
	}
	defer idx.Close()

	splitter := documents.NewSplitter(cfg.Processing.ChunkSize, cfg.Processing.ChunkOverlap, log)
	ingestor := documents.NewIngestor(documents.NewFitzExtractor(), splitter, log)
	retriever := rag.NewRetriever(embedder, idx, cfg.Processing.TopK, cfg.Processing.MinScore, log)
	composer := rag.NewComposer(buildGenerator(cfg), rag.DefaultCannedRules(), log)

	eng, err := engine.New(engine.Options{
		Mode:             engine.Mode(cfg.Mode),
		Ingestor:         ingestor,
		Embedder:         embedder,
		Index:            idx,
		Retriever:        retriever,
		Composer:         composer,
		MaxEmbedAttempts: cfg.Processing.EmbedAttempts,
		Logger:           log,
	})
	if err != nil {
		return err
	}

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if _, err := eng.Ingest(ctx, data, filepath.Base(path)); err != nil {
			return err
		}
	}

	if console {
		program := tea.NewProgram(tui.New(eng, cfg.Mode), tea.WithAltScreen())
		_, err := program.Run()
		return err
	}

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: api.NewServer(eng, log).Handler(),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info("listening", "addr", cfg.Server.Addr, "mode", cfg.Mode)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func buildEmbedder(cfg *config.Config) provider.Embedder {
	switch cfg.Embedding.Provider {
	case "ollama":
		return provider.NewOllamaEmbedder(cfg.Embedding.BaseURL, cfg.Embedding.Model, cfg.Embedding.Dimension)
	case "openai":
		return provider.NewOpenAIEmbedder(provider.OpenAIConfig{
			BaseURL: cfg.Embedding.BaseURL,
			APIKey:  cfg.Embedding.APIKey,
			Model:   cfg.Embedding.Model,
		}, cfg.Embedding.Dimension)
	default:
		return provider.NewHashingEmbedder(cfg.Embedding.Dimension)
	}
}

func buildGenerator(cfg *config.Config) provider.Generator {
	switch cfg.Generation.Provider {
	case "ollama":
		return provider.NewOllamaGenerator(cfg.Generation.BaseURL, cfg.Generation.Model, provider.GenerateTimeout)
	case "openai":
		return provider.NewOpenAIGenerator(provider.OpenAIConfig{
			BaseURL: cfg.Generation.BaseURL,
			APIKey:  cfg.Generation.APIKey,
			Model:   cfg.Generation.Model,
		})
	default:
		return nil
	}
}

func buildIndex(ctx context.Context, cfg *config.Config, dimension int) (index.VectorIndex, error) {
	if cfg.Mode == "production" {
		return index.NewPGVector(ctx, cfg.Database.ConnectionString, dimension)
	}
	return index.NewMemory(dimension)
}
