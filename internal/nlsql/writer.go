package nlsql

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// writerSystemPrompt fixes the contract the generator must follow: schema
// only, case-insensitive text comparisons, complete clauses, symbolic
// placeholders instead of literals.
const writerSystemPrompt = `Você é um especialista em SQL para sistemas acadêmicos. Sua tarefa é escrever **apenas** a consulta SQL que responda à pergunta do usuário. A consulta deve:

- Usar a sintaxe SQL padrão (PostgreSQL).
- Utilizar APENAS os nomes de tabelas e colunas definidos no esquema do banco de dados.
- Verificar as relações entre tabelas usando os campos de chave estrangeira.
- Cada JOIN deve ter uma condição completa: JOIN tabela ON tabela1.coluna = tabela2.coluna.
- Nunca deixar um JOIN ou uma cláusula WHERE parcial ou incompleta.
- Não incluir comentários, explicações ou qualquer texto adicional.
- Usar {{RA}} para o número de matrícula do aluno; NÃO usar {{user_id}}.
- Usar placeholders simbólicos ({{nome}}) para valores do contexto do usuário, nunca literais.
- Para campos de texto como 'status' ou 'nome', SEMPRE usar ILIKE ou LOWER() para comparações case-insensitive.
- Retornar somente uma consulta SQL completa e válida.`

// workedExamples anchor the output shape. Kept short: two lookups and one
// aggregate.
const workedExamples = `Exemplos:

Pergunta: Quais disciplinas estou cursando?
SQL: SELECT disciplina.nome FROM disciplina JOIN matricula ON disciplina.id = matricula.disciplina_id WHERE matricula.ra = {{RA}} AND matricula.status ILIKE '%cursando%'

Pergunta: Quantas faltas eu tenho em Cálculo?
SQL: SELECT SUM(falta.quantidade) AS total_faltas FROM falta JOIN matricula ON falta.matricula_id = matricula.id JOIN disciplina ON matricula.disciplina_id = disciplina.id WHERE matricula.ra = {{RA}} AND disciplina.nome ILIKE '%cálculo%'

Pergunta: Quais boletos estão vencidos?
SQL: SELECT financeiro.valor, financeiro.vencimento FROM financeiro WHERE financeiro.ra = {{RA}} AND LOWER(financeiro.status) = LOWER('Vencido')`

// WriteRequest carries everything one Write call needs.
type WriteRequest struct {
	Question      string
	SchemaText    string
	CallerContext map[string]string
	Critiques     []string
	// CorrectionHint comes from the error-feedback loop, not the Reviewer.
	CorrectionHint string
}

// Writer produces one candidate SQL statement per call. It is stateless:
// everything it needs arrives in the request.
type Writer struct {
	gen    Generator
	logger *slog.Logger
}

func NewWriter(gen Generator, logger *slog.Logger) *Writer {
	return &Writer{gen: gen, logger: logger}
}

// Write builds the prompt, calls the generator and extracts exactly one
// statement. A generation or extraction failure yields an empty string and no
// error: the caller treats an empty candidate as an automatic rejection.
func (w *Writer) Write(ctx context.Context, req WriteRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Esquema do banco de dados:\n%s\n", req.SchemaText)

	if len(req.CallerContext) > 0 {
		ctxJSON, err := json.Marshal(req.CallerContext)
		if err == nil {
			fmt.Fprintf(&b, "Contexto do usuário:\n%s\n", ctxJSON)
		}
	}
	b.WriteString("\n" + workedExamples + "\n")

	if len(req.Critiques) > 0 {
		// Only the most recent critique is folded in; older ones are noise.
		fmt.Fprintf(&b, "\nConsidere o seguinte feedback:\n%s\n", req.Critiques[len(req.Critiques)-1])
	}
	if req.CorrectionHint != "" {
		fmt.Fprintf(&b, "\nIMPORTANTE: %s\n", req.CorrectionHint)
	}
	fmt.Fprintf(&b, "\nEscreva a consulta SQL que responda à seguinte pergunta: %s\n", req.Question)

	response, err := w.gen.Complete(ctx, writerSystemPrompt, b.String())
	if err != nil {
		if w.logger != nil {
			w.logger.Error("SQL generation failed", "error", err, "question", req.Question)
		}
		return ""
	}

	sql := ExtractSQL(response)
	if w.logger != nil {
		w.logger.Info("Generated candidate SQL", "sql", sql)
	}
	return sql
}

var (
	sqlFenceRe   = regexp.MustCompile("(?s)```sql\\s*(.*?)\\s*```")
	anyFenceRe   = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
	selectStmtRe = regexp.MustCompile(`(?is)(SELECT\s.*?)(;|$)`)
)

// ExtractSQL pulls a single statement out of free-form generator output:
// fenced sql block first, then any fenced block, then a bare SELECT. Text
// with no statement shape at all yields "".
func ExtractSQL(response string) string {
	if m := sqlFenceRe.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := anyFenceRe.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := selectStmtRe.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
