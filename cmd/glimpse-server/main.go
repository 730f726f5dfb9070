package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glimpselabs/glimpse/internal/assistant"
	"github.com/glimpselabs/glimpse/internal/capture"
	"github.com/glimpselabs/glimpse/internal/config"
	"github.com/glimpselabs/glimpse/internal/engine"
	"github.com/glimpselabs/glimpse/internal/llm"
	"github.com/glimpselabs/glimpse/internal/memory"
	"github.com/glimpselabs/glimpse/internal/search"
	"github.com/glimpselabs/glimpse/internal/server"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (overrides environment)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadConfigFile(*configPath)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Context engine
	scorer := engine.NewRelevanceScorer()
	fusion := engine.NewDataFusion(scorer)

	optCfg := engine.DefaultOptimizerConfig()
	optCfg.OCRRateLimit = cfg.Optimizer.OCRRateLimit
	optCfg.WebRateLimit = cfg.Optimizer.WebRateLimit
	optCfg.MaxCacheSize = cfg.Optimizer.MaxCacheSize
	optimizer := engine.NewOptimizer(optCfg)
	analyzer := engine.NewContextAnalyzer(optimizer)

	// Conversation memory
	mem := memory.New(memory.Config{
		Enabled:            cfg.Memory.Enabled,
		MaxContextMessages: cfg.Memory.MaxContextMessages,
		RetentionHours:     cfg.Memory.RetentionHours,
		Anonymize:          cfg.Memory.Anonymize,
		AutoSummarize:      cfg.Memory.AutoSummarize,
	})

	// Capture edge
	transcript := capture.NewTranscript(capture.TranscriptConfig{
		MaxHistory: cfg.Capture.MaxOCRHistory,
		MaxChars:   cfg.Capture.MaxTranscriptChars,
	})
	windows := capture.NewWindowTracker()

	// Web search
	searchClient := search.NewClient(search.Config{
		MaxResults:        cfg.Search.MaxResults,
		SafeSearch:        cfg.Search.SafeSearch,
		TimeLimit:         cfg.Search.TimeLimit,
		RequestsPerMinute: cfg.Search.RequestsPerMinute,
	})

	// Model backend
	llmClient := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Temperature:    float32(cfg.LLM.Temperature),
		TopP:           float32(cfg.LLM.TopP),
		MaxTokens:      cfg.LLM.MaxTokens,
		SystemPrompt:   cfg.LLM.SystemPrompt,
		CacheResponses: cfg.LLM.CacheResponses,
	})
	if !llmClient.Available() {
		log.Println("Warning: no LLM API key configured, chat requests will fail")
	}

	asst := assistant.New(analyzer, fusion, optimizer, mem, transcript,
		llmClient, searchClient, windows.InfoLine, logger)

	addr, _ := server.Start(ctx, cfg, server.Deps{
		Assistant:  asst,
		Optimizer:  optimizer,
		Memory:     mem,
		Transcript: transcript,
		Windows:    windows,
		Model:      llmClient,
		Logger:     logger,
		Version:    version,
	})
	log.Printf("Glimpse assistant API running at http://%s", addr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")
	cancel()
	time.Sleep(1 * time.Second) // Give time for connections to close
}
