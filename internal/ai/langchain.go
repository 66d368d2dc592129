package ai

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangChainCompleter adapts any langchaingo model.
type LangChainCompleter struct {
	model llms.Model
}

func NewLangChainCompleter(ctx context.Context, provider, apiKey, model, baseURL string) (*LangChainCompleter, error) {
	switch provider {
	case ProviderLangChainGoogle:
		if model == "" {
			model = defaultGeminiModel
		}
		llm, err := googleai.New(ctx,
			googleai.WithAPIKey(apiKey),
			googleai.WithDefaultModel(model),
		)
		if err != nil {
			return nil, fmt.Errorf("create googleai model: %w", err)
		}
		return &LangChainCompleter{model: llm}, nil
	case ProviderLangChainOpenAI:
		if model == "" {
			model = defaultOpenAIModel
		}
		opts := []openai.Option{openai.WithToken(apiKey), openai.WithModel(model)}
		if baseURL != "" {
			opts = append(opts, openai.WithBaseURL(baseURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}
		return &LangChainCompleter{model: llm}, nil
	default:
		return nil, fmt.Errorf("unsupported langchain provider %q", provider)
	}
}

func NewLangChainCompleterFromModel(model llms.Model) *LangChainCompleter {
	return &LangChainCompleter{model: model}
}

func (c *LangChainCompleter) Complete(ctx context.Context, req Request) (string, error) {
	opts := []llms.CallOption{
		llms.WithTemperature(req.Temperature),
		llms.WithMaxTokens(req.maxTokens()),
	}
	if req.JSON {
		opts = append(opts, llms.WithJSONMode())
	}

	prompt := req.Prompt
	if req.System != "" {
		prompt = req.System + "\n\n" + req.Prompt
	}

	out, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt, opts...)
	if err != nil {
		return "", fmt.Errorf("langchain generate: %w", err)
	}
	return out, nil
}
