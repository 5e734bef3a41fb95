package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultGrokModel is used when the grok provider is selected without a model.
const DefaultGrokModel = "grok-2-latest"

// OpenAI completes prompts through the chat completions API. Pointed at the
// x.ai base URL it serves Grok as well.
type OpenAI struct {
	client openai.Client
	model  string
	system string
}

// NewOpenAI returns an OpenAI agent. An empty baseURL uses the SDK default and
// an empty model falls back to gpt-4o-mini.
func NewOpenAI(apiKey, baseURL, model, system string, opts ...option.RequestOption) *OpenAI {
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}

	options := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}
	options = append(options, opts...)

	return &OpenAI{
		client: openai.NewClient(options...),
		model:  model,
		system: system,
	}
}

func (agent *OpenAI) Complete(ctx context.Context, prompt Prompt) (string, error) {
	system := prompt.System
	if system == "" {
		system = agent.system
	}

	messages := []openai.ChatCompletionMessageParamUnion{}
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	if prompt.Context != "" {
		messages = append(messages, openai.UserMessage("Context: "+prompt.Context))
	}
	messages = append(messages, openai.UserMessage(prompt.Text))

	chat, err := agent.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    agent.model,
	})
	if err != nil {
		return "", fmt.Errorf("openai completion error: %w", err)
	}

	if len(chat.Choices) == 0 || chat.Choices[0].Message.Content == "" {
		return "", errors.New("no content in response")
	}

	return chat.Choices[0].Message.Content, nil
}
