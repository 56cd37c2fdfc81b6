package nlsql

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

const reviewerSystemPrompt = `Você é um engenheiro de QA especializado em SQL para sistemas acadêmicos. Sua tarefa é verificar se a consulta SQL fornecida responde corretamente à pergunta do usuário e segue as melhores práticas.

Verifique:
1. Se a consulta usa apenas tabelas e colunas que existem no esquema
2. Se cada JOIN tem uma condição de igualdade completa
3. Se a consulta responde à pergunta do usuário
4. Se a consulta usa placeholders ({{nome}} ou :nome) em vez de valores literais do usuário
5. Se a consulta usa ILIKE ou LOWER() para comparações de texto
6. Se a consulta é segura (sem múltiplos comandos, sem comentários SQL, somente SELECT)

Na primeira linha responda exatamente 'ACEITO' ou 'REJEITADO'.
Nas linhas seguintes, para cada problema encontrado, escreva uma linha no formato:
PROBLEMA [sintaxe|esquema|seguranca|desempenho]: descrição | correção sugerida`

// Reviewer independently judges a candidate against the same schema and
// question. It never repairs the statement; it only accepts or rejects.
type Reviewer struct {
	gen    Generator
	logger *slog.Logger
}

func NewReviewer(gen Generator, logger *slog.Logger) *Reviewer {
	return &Reviewer{gen: gen, logger: logger}
}

// Review returns the verdict and the issues behind it. A response whose
// verdict cannot be parsed is treated as a rejection with a generic issue:
// a false rejection costs one revision, a false acceptance costs correctness.
func (r *Reviewer) Review(ctx context.Context, candidateSQL, schemaText, question string, callerContext map[string]string) (bool, []Issue) {
	var b strings.Builder
	fmt.Fprintf(&b, "Com base no seguinte esquema de banco de dados:\n%s\n", schemaText)
	fmt.Fprintf(&b, "E na seguinte consulta SQL:\n%s\n", candidateSQL)
	fmt.Fprintf(&b, "Verifique se a consulta SQL pode completar a tarefa: %s\n", question)
	if len(callerContext) > 0 {
		if ctxJSON, err := json.Marshal(callerContext); err == nil {
			fmt.Fprintf(&b, "Contexto do usuário:\n%s\n", ctxJSON)
		}
	}

	response, err := r.gen.Complete(ctx, reviewerSystemPrompt, b.String())
	if err != nil {
		if r.logger != nil {
			r.logger.Error("SQL review call failed", "error", err)
		}
		return false, []Issue{{
			Kind:        IssueSchema,
			Description: "review unavailable; candidate not independently verified",
		}}
	}

	accepted, issues, ok := parseReview(response)
	if !ok {
		if r.logger != nil {
			r.logger.Warn("Unparseable review verdict, rejecting candidate", "response_preview", preview(response, 120))
		}
		return false, []Issue{{
			Kind:        IssueSchema,
			Description: "review verdict could not be parsed",
		}}
	}
	if r.logger != nil {
		r.logger.Info("SQL review completed", "accepted", accepted, "issues", len(issues))
	}
	return accepted, issues
}

// parseReview reads the verdict line and any PROBLEMA lines. ok is false when
// neither verdict token appears anywhere in the response.
func parseReview(response string) (accepted bool, issues []Issue, ok bool) {
	upper := strings.ToUpper(response)
	hasAccept := strings.Contains(upper, "ACEITO")
	hasReject := strings.Contains(upper, "REJEITADO")
	switch {
	case hasReject:
		accepted = false
	case hasAccept:
		accepted = true
	default:
		return false, nil, false
	}

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(strings.ToUpper(line), "PROBLEMA") {
			continue
		}
		issues = append(issues, parseIssueLine(line))
	}
	if !accepted && len(issues) == 0 {
		// Rejections always carry at least one issue for the Critic.
		issues = append(issues, Issue{
			Kind:        IssueSchema,
			Description: strings.TrimSpace(response),
		})
	}
	return accepted, issues, true
}

func parseIssueLine(line string) Issue {
	issue := Issue{Kind: IssueSchema}

	if start := strings.IndexByte(line, '['); start >= 0 {
		if end := strings.IndexByte(line[start:], ']'); end > 0 {
			switch strings.ToLower(line[start+1 : start+end]) {
			case "sintaxe":
				issue.Kind = IssueSyntax
			case "esquema":
				issue.Kind = IssueSchema
			case "seguranca", "segurança":
				issue.Kind = IssueSecurity
			case "desempenho":
				issue.Kind = IssuePerformance
			}
		}
	}

	body := line
	if idx := strings.Index(line, ":"); idx >= 0 {
		body = line[idx+1:]
	}
	if idx := strings.Index(body, "|"); idx >= 0 {
		issue.Description = strings.TrimSpace(body[:idx])
		issue.SuggestedFix = strings.TrimSpace(body[idx+1:])
	} else {
		issue.Description = strings.TrimSpace(body)
	}
	return issue
}

func preview(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
