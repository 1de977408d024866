package generation

import (
	"context"
	"fmt"
)

// MockGenerator is a deterministic generator for tests. With empty context it
// behaves like a model following the fixed instruction: it reports that it has
// no relevant information.
type MockGenerator struct{}

// NewMockGenerator returns a generator that echoes the question and context
// size instead of calling a model.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate returns a canned answer derived from the inputs.
func (g *MockGenerator) Generate(ctx context.Context, question, contextText string) (string, error) {
	if contextText == "" {
		return "I don't have relevant information to answer that.", nil
	}
	return fmt.Sprintf("answer to %q from %d context characters", question, len(contextText)), nil
}

// Close is a no-op.
func (g *MockGenerator) Close() error {
	return nil
}
