package nlsql

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const criticSystemPrompt = `Você é um DBA experiente especializado em sistemas acadêmicos. A consulta SQL abaixo foi rejeitada na revisão. Converta os problemas apontados em UMA instrução imperativa, curta e concreta, que o autor da consulta deve seguir na próxima tentativa.

Exemplos de instruções:
- Garanta que cada JOIN tenha uma condição de igualdade explícita.
- Use apenas a coluna matricula.ra para filtrar pelo aluno.
- Substitua a comparação de status por status ILIKE '%vencido%'.

Responda somente com a instrução, sem explicações adicionais.`

// Critic converts Reviewer issues into one imperative instruction for the
// next Writer call.
type Critic struct {
	gen    Generator
	logger *slog.Logger
}

func NewCritic(gen Generator, logger *slog.Logger) *Critic {
	return &Critic{gen: gen, logger: logger}
}

// Critique returns the instruction text. If the generator fails, a
// deterministic digest of the issues is returned instead so the revision
// still carries feedback.
func (c *Critic) Critique(ctx context.Context, candidateSQL, question string, issues []Issue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Consulta SQL rejeitada:\n%s\n", candidateSQL)
	fmt.Fprintf(&b, "Tarefa: %s\n", question)
	b.WriteString("Problemas apontados:\n")
	for _, issue := range issues {
		fmt.Fprintf(&b, "- [%s] %s", issue.Kind, issue.Description)
		if issue.SuggestedFix != "" {
			fmt.Fprintf(&b, " (sugestão: %s)", issue.SuggestedFix)
		}
		b.WriteString("\n")
	}

	instruction, err := c.gen.Complete(ctx, criticSystemPrompt, b.String())
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("Critique generation failed, using issue digest", "error", err)
		}
		return digestIssues(issues)
	}
	return strings.TrimSpace(instruction)
}

func digestIssues(issues []Issue) string {
	parts := make([]string, 0, len(issues))
	for _, issue := range issues {
		if issue.SuggestedFix != "" {
			parts = append(parts, issue.SuggestedFix)
		} else {
			parts = append(parts, "corrija: "+issue.Description)
		}
	}
	return strings.Join(parts, "; ")
}
