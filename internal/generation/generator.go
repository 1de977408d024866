// Package generation produces natural-language answers from retrieved context
// via an external text-generation service.
package generation

import (
	"context"
	"errors"
)

// ErrService indicates the generation service call failed. Failures propagate
// to the caller unmodified; no retries happen here.
var ErrService = errors.New("generation service error")

// SystemInstruction is the fixed instruction sent with every request. Answers
// must come from the supplied context only, so the model says it does not
// know rather than inventing an answer.
const SystemInstruction = "You are a question answering assistant. Answer the question using only the provided context. If the context does not contain the information needed to answer, say that you don't have relevant information."

// Generator produces an answer to a question from assembled context text.
type Generator interface {
	Generate(ctx context.Context, question, contextText string) (string, error)
	Close() error
}
