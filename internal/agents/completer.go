// Package agents holds the marketplace's task-specific agents: thin
// wrappers that build a prompt, call the hosted LLM completion service and
// section the free-form response for display.
package agents

import (
	"context"

	"github.com/pkg/errors"
	"github.com/tmc/langchaingo/llms"
)

// Completer is the LLM completion service the agents consume: prompt in,
// free-form text out. Everything behind it is an external collaborator.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type llmCompleter struct {
	model llms.Model
}

// NewCompleter adapts a langchaingo model into a Completer.
func NewCompleter(model llms.Model) Completer {
	return &llmCompleter{model: model}
}

func (c *llmCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt)
	if err != nil {
		return "", errors.Wrap(err, "llm completion")
	}
	return out, nil
}
