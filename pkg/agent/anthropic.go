package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultMaxTokens = 4096

// Anthropic completes prompts with Claude models.
type Anthropic struct {
	client    anthropic.Client
	model     string
	system    string
	maxTokens int64
}

func NewAnthropic(apiKey, model, system string, opts ...option.RequestOption) *Anthropic {
	if model == "" {
		model = string(anthropic.ModelClaude3_5HaikuLatest)
	}

	return &Anthropic{
		client:    anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...),
		model:     model,
		system:    system,
		maxTokens: defaultMaxTokens,
	}
}

func (agent *Anthropic) Complete(ctx context.Context, prompt Prompt) (string, error) {
	system := prompt.System
	if system == "" {
		system = agent.system
	}

	text := prompt.Text
	if prompt.Context != "" {
		text = "Context: " + prompt.Context + "\n\n" + text
	}

	params := anthropic.MessageNewParams{
		MaxTokens: agent.maxTokens,
		Model:     anthropic.Model(agent.model),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	message, err := agent.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic completion error: %w", err)
	}

	var out strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}

	if out.Len() == 0 {
		return "", errors.New("no text content in response")
	}

	return out.String(), nil
}
