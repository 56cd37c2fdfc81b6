package nlsql

import (
	"context"
	"fmt"
	"sync"
)

// fakeGenerator scripts responses per role, keyed on the system prompt, so
// one instance can serve the writer, reviewer and critic at once.
type fakeGenerator struct {
	mu sync.Mutex

	writerResponses   []string
	reviewerResponses []string
	criticResponses   []string

	writerCalls   int
	reviewerCalls int
	criticCalls   int

	writerPrompts []string

	err error
}

func (g *fakeGenerator) Complete(_ context.Context, system, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.err != nil {
		return "", g.err
	}

	switch system {
	case writerSystemPrompt:
		g.writerCalls++
		g.writerPrompts = append(g.writerPrompts, prompt)
		return pick(g.writerResponses, g.writerCalls-1), nil
	case reviewerSystemPrompt:
		g.reviewerCalls++
		return pick(g.reviewerResponses, g.reviewerCalls-1), nil
	case criticSystemPrompt:
		g.criticCalls++
		return pick(g.criticResponses, g.criticCalls-1), nil
	}
	return "", fmt.Errorf("unexpected system prompt: %s", system)
}

// pick returns the i-th scripted response, repeating the last one when the
// script runs out.
func pick(responses []string, i int) string {
	if len(responses) == 0 {
		return ""
	}
	if i >= len(responses) {
		return responses[len(responses)-1]
	}
	return responses[i]
}
