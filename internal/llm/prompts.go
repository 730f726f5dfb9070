package llm

import (
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/glimpselabs/glimpse/internal/engine"
	"github.com/glimpselabs/glimpse/pkg/types"
)

// contextGuidance is appended to the system prompt whenever fused context is
// present, telling the model how to weigh it.
const contextGuidance = `

CONTEXT ANALYSIS: %s
FUSION STRATEGY: %s

INSTRUCTIONS FOR CONTEXT USAGE:
- Focus primarily on the most relevant context provided
- Use supporting context to supplement your understanding when helpful
- If context seems irrelevant to the query, acknowledge this and focus on the direct question
- When referencing screen content, be specific about what you see
- When using web results, cite sources and focus on recent/relevant information
- Combine context sources intelligently when they complement each other`

// emptySummary is the fusion summary produced when nothing was analyzed; it
// is not worth a message of its own.
const emptySummary = "No context sources analyzed"

// BuildMessages assembles the model input for one chat turn: enriched system
// prompt, prior conversation, fused context blocks, then the user's query.
func BuildMessages(systemPrompt string, fused engine.FusedContext, history []types.Message, query string) []openai.ChatCompletionMessage {
	enriched := systemPrompt
	if fused.PrimaryContext != "" || fused.SupportingContext != "" {
		enriched += fmt.Sprintf(contextGuidance, fused.RelevanceSummary, fused.FusionStrategy)
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: enriched},
	}

	for _, msg := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	if fused.PrimaryContext != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: "PRIMARY CONTEXT (Most Relevant):\n" + fused.PrimaryContext,
		})
	}
	if fused.SupportingContext != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: "SUPPORTING CONTEXT:\n" + fused.SupportingContext,
		})
	}
	if fused.RelevanceSummary != "" && fused.RelevanceSummary != emptySummary {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: "CONTEXT ANALYSIS: " + fused.RelevanceSummary,
		})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: "USER QUERY: " + query,
	})

	return messages
}
