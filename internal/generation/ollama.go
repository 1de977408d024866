package generation

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"
)

// OllamaGenerator generates answers through an Ollama server.
type OllamaGenerator struct {
	llm         llms.Model
	temperature float64
	maxTokens   int
	timeout     time.Duration
}

// NewOllamaGenerator creates a generator backed by the Ollama model at baseURL.
// timeout bounds each service call.
func NewOllamaGenerator(baseURL, model string, temperature float64, maxTokens int, timeout time.Duration) (*OllamaGenerator, error) {
	llm, err := ollama.New(
		ollama.WithModel(model),
		ollama.WithServerURL(baseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("initialize ollama generator: %w", err)
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OllamaGenerator{
		llm:         llm,
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     timeout,
	}, nil
}

// Generate sends the fixed instruction, the assembled context, and the
// question to the model and returns the first choice's text.
func (g *OllamaGenerator) Generate(ctx context.Context, question, contextText string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	content := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, SystemInstruction),
		llms.TextParts(schema.ChatMessageTypeHuman, fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextText, question)),
	}
	opts := []llms.CallOption{}
	if g.temperature > 0 {
		opts = append(opts, llms.WithTemperature(g.temperature))
	}
	if g.maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(g.maxTokens))
	}
	resp, err := g.llm.GenerateContent(ctx, content, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrService, err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", fmt.Errorf("%w: empty response", ErrService)
	}
	return resp.Choices[0].Content, nil
}

// Close is a no-op; the Ollama client holds no persistent resources.
func (g *OllamaGenerator) Close() error {
	return nil
}
