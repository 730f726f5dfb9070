// Package assistant wires the context pipeline into a chat turn: analyze the
// query, fetch whatever context the decision allows, fuse it, build the
// prompt, call the model, and record the exchange.
package assistant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/glimpselabs/glimpse/internal/capture"
	"github.com/glimpselabs/glimpse/internal/engine"
	"github.com/glimpselabs/glimpse/internal/memory"
	"github.com/glimpselabs/glimpse/pkg/types"
)

// ChatClient is the model endpoint the assistant answers through.
type ChatClient interface {
	Available() bool
	Chat(ctx context.Context, query string, fused engine.FusedContext, history []types.Message) (string, error)
}

// Searcher fetches formatted web-search context.
type Searcher interface {
	SearchFormatted(ctx context.Context, query string, params *engine.SearchParams) string
}

// WindowProvider reports the currently focused window. It may return an
// empty string when no window information is available.
type WindowProvider func() string

// Assistant owns one chat pipeline. All dependencies are injected; there is
// no package-level state.
type Assistant struct {
	analyzer   *engine.ContextAnalyzer
	fusion     *engine.DataFusion
	optimizer  *engine.Optimizer
	memory     *memory.ConversationMemory
	transcript *capture.Transcript
	chat       ChatClient
	search     Searcher
	window     WindowProvider
	logger     *slog.Logger
}

// New assembles an assistant. window and search may be nil when the
// corresponding collaborator is unavailable; the pipeline then degrades to
// empty context from that source.
func New(analyzer *engine.ContextAnalyzer, fusion *engine.DataFusion, optimizer *engine.Optimizer,
	mem *memory.ConversationMemory, transcript *capture.Transcript,
	chat ChatClient, search Searcher, window WindowProvider, logger *slog.Logger) *Assistant {

	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		analyzer:   analyzer,
		fusion:     fusion,
		optimizer:  optimizer,
		memory:     mem,
		transcript: transcript,
		chat:       chat,
		search:     search,
		window:     window,
		logger:     logger,
	}
}

// Chat processes one turn: decide context sources, fetch them (cache-first),
// fuse, prompt the model, and record both sides of the exchange.
func (a *Assistant) Chat(ctx context.Context, req types.ChatRequest) (types.ChatResponse, error) {
	windowInfo := a.windowInfo()

	decision := a.analyzer.AnalyzeQuery(req.Message, windowInfo, a.transcript.Live())
	a.logger.Debug("context decision",
		"query_type", decision.QueryType.String(),
		"use_ocr", decision.UseOCR,
		"use_web", decision.UseWeb,
		"confidence", decision.Confidence,
		"reasoning", decision.Reasoning)

	screenText := a.fetchScreenText(req, decision, windowInfo)
	webResults := a.fetchWebResults(ctx, req, decision)

	fused := a.fusion.FuseContexts(req.Message, screenText, webResults, windowInfo)
	a.logger.Debug("context fused", "strategy", fused.FusionStrategy, "summary", fused.RelevanceSummary)

	sessionID := memory.SessionID(windowInfo)
	history := a.memory.History(sessionID, false)

	answer, err := a.chat.Chat(ctx, req.Message, fused, history)
	if err != nil {
		return types.ChatResponse{}, fmt.Errorf("assistant chat: %w", err)
	}

	a.memory.AddMessage(sessionID, "user", req.Message, map[string]string{
		"query_type": decision.QueryType.String(),
	})
	a.memory.AddMessage(sessionID, "assistant", answer, nil)

	return types.ChatResponse{
		Response:   answer,
		ScreenText: screenText,
		WindowInfo: windowInfo,
		WebResults: webResults,
	}, nil
}

// Decision exposes the analyzer verdict for a query without running the full
// turn, for the inspection endpoint.
func (a *Assistant) Decision(query string) engine.ContextDecision {
	return a.analyzer.AnalyzeQuery(query, a.windowInfo(), a.transcript.Live())
}

// fetchScreenText resolves the OCR context for the turn: decision or
// explicit request gates it, the optimizer's result cache short-circuits it,
// and the live transcript supplies it.
func (a *Assistant) fetchScreenText(req types.ChatRequest, decision engine.ContextDecision, windowInfo string) string {
	useOCR := decision.UseOCR
	if req.UseOCR {
		forced, _ := a.optimizer.ShouldUseOCR(req.Message, windowInfo, true)
		useOCR = forced
	}
	if !useOCR {
		return ""
	}

	if cached, ok := a.optimizer.CachedOCRResult(windowInfo); ok {
		return cached
	}

	text := a.transcript.Render()
	if text != "" {
		a.optimizer.CacheOCRResult(windowInfo, text)
	}
	return text
}

// fetchWebResults resolves the web context for the turn, cache-first.
func (a *Assistant) fetchWebResults(ctx context.Context, req types.ChatRequest, decision engine.ContextDecision) string {
	useWeb := decision.UseWeb || req.UseWeb
	if !useWeb || a.search == nil {
		return ""
	}

	if cached, ok := a.optimizer.CachedWebResult(req.Message, decision.SearchParams); ok {
		return cached
	}

	results := a.search.SearchFormatted(ctx, req.Message, decision.SearchParams)
	if results != "" {
		a.optimizer.CacheWebResult(req.Message, decision.SearchParams, results)
	}
	return results
}

func (a *Assistant) windowInfo() string {
	if a.window == nil {
		return ""
	}
	return a.window()
}
