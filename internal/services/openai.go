package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jwebster45206/improv-engine/pkg/session"
)

const hostPersona = "You are the host of a high-energy improv game show called Improv Battle. " +
	"React to performances in 1-2 sentences. Keep reactions varied: supportive, neutral, " +
	"or light-hearted critique. Always be respectful and constructive."

// OpenAIHost generates host persona lines through the OpenAI chat API.
type OpenAIHost struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

var _ HostService = (*OpenAIHost)(nil)

func NewOpenAIHost(apiKey, model string, logger *slog.Logger) *OpenAIHost {
	return &OpenAIHost{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

func (h *OpenAIHost) ReactionLine(ctx context.Context, scene session.Round, performance string) (string, error) {
	prompt := fmt.Sprintf("The scene was: %s\nThe player performed: %s\nGive your reaction.", scene.Prompt, performance)
	return h.complete(ctx, prompt)
}

func (h *OpenAIHost) ClosingSummary(ctx context.Context, state *session.State) (string, error) {
	var sb strings.Builder
	sb.WriteString("The show is over. Here is the transcript:\n")
	for _, entry := range state.StoryHistory {
		fmt.Fprintf(&sb, "%s: %s\n", entry.Speaker, entry.Text)
	}
	sb.WriteString("Summarize the player's strengths and offer one suggestion.")
	return h.complete(ctx, sb.String())
}

func (h *OpenAIHost) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := h.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: h.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: hostPersona},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		h.logger.Error("Host line generation failed", "error", err)
		return "", fmt.Errorf("host line generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("host line generation returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
