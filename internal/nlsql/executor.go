package nlsql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
)

// Executor runs a fully-sanitized statement through a restricted, read-only
// channel. Its own checks are independent of the Guard's: defense in depth.
type Executor struct {
	db      *sql.DB
	timeout time.Duration
	logger  *slog.Logger
}

func NewExecutor(db *sql.DB, timeout time.Duration, logger *slog.Logger) *Executor {
	return &Executor{db: db, timeout: timeout, logger: logger}
}

var commentMarkerRe = regexp.MustCompile(`--|/\*`)

// restrictStatement refuses anything that is not a single SELECT.
func restrictStatement(sqlText string) *ErrorInfo {
	trimmed := strings.TrimSpace(sqlText)
	if !strings.HasPrefix(strings.ToUpper(trimmed), "SELECT") {
		return &ErrorInfo{
			Category:          ErrPermission,
			RawMessage:        "only SELECT statements are allowed",
			OffendingFragment: preview(trimmed, 40),
		}
	}
	if idx := strings.IndexByte(strings.TrimSuffix(trimmed, ";"), ';'); idx >= 0 {
		return &ErrorInfo{
			Category:          ErrPermission,
			RawMessage:        "multi-statement input is not allowed",
			OffendingFragment: preview(trimmed[idx:], 40),
		}
	}
	if m := commentMarkerRe.FindString(trimmed); m != "" {
		return &ErrorInfo{
			Category:          ErrPermission,
			RawMessage:        "comment markers are not allowed",
			OffendingFragment: m,
		}
	}
	return nil
}

// Execute runs the statement and returns rows as flat column/value maps.
// A nil ErrorInfo means success; rows may still be empty.
func (e *Executor) Execute(ctx context.Context, sqlText string, params []any) ([]map[string]any, *ErrorInfo) {
	if info := restrictStatement(sqlText); info != nil {
		if e.logger != nil {
			e.logger.Warn("Statement refused by restricted channel", "reason", info.RawMessage)
		}
		return nil, info
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	rows, err := e.db.QueryContext(ctx, sqlText, params...)
	if err != nil {
		info := ClassifyError(err)
		if e.logger != nil {
			e.logger.Error("Query execution failed", "error", err, "category", string(info.Category))
		}
		return nil, info
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, ClassifyError(err)
	}

	var results []map[string]any
	values := make([]any, len(columns))
	valuePtrs := make([]any, len(columns))
	for i := range columns {
		valuePtrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, ClassifyError(err)
		}
		record := make(map[string]any, len(columns))
		for i, col := range columns {
			record[col] = normalizeValue(values[i])
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, ClassifyError(err)
	}

	if e.logger != nil {
		e.logger.Info("Query executed", "rows", len(results), "elapsed", time.Since(start).String())
	}
	return results, nil
}

func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

var columnNotExistRe = regexp.MustCompile(`column\s+"?([^\s"]+)"?\s+does not exist`)

// ClassifyError maps a database error onto the pipeline's error taxonomy by
// message pattern.
func ClassifyError(err error) *ErrorInfo {
	msg := err.Error()
	lower := strings.ToLower(msg)
	info := &ErrorInfo{Category: ErrUnknown, RawMessage: msg}

	switch {
	case strings.Contains(lower, "context deadline exceeded"),
		strings.Contains(lower, "timeout"),
		strings.Contains(lower, "canceling statement due to statement timeout"):
		info.Category = ErrTimeout
	case strings.Contains(lower, "permission denied"),
		strings.Contains(lower, "must be owner"),
		strings.Contains(lower, "read-only"):
		info.Category = ErrPermission
	case strings.Contains(lower, "does not exist"),
		strings.Contains(lower, "undefined column"),
		strings.Contains(lower, "undefined table"):
		info.Category = ErrSchemaMismatch
		if m := columnNotExistRe.FindStringSubmatch(msg); m != nil {
			info.OffendingFragment = m[1]
		}
	case strings.Contains(lower, "syntax error"),
		strings.Contains(lower, "unterminated quoted string"),
		strings.Contains(lower, "argument of join/on must be type boolean"):
		info.Category = ErrSyntax
	}
	return info
}

// CorrectionHint turns an execution failure into the one-line instruction
// folded into the error-feedback retry.
func (info *ErrorInfo) CorrectionHint() string {
	switch info.Category {
	case ErrSchemaMismatch:
		if info.OffendingFragment != "" {
			return fmt.Sprintf("a consulta anterior falhou porque a coluna '%s' não existe no banco de dados; use apenas colunas do esquema", info.OffendingFragment)
		}
		return "a consulta anterior usou uma tabela ou coluna que não existe; use apenas nomes do esquema"
	case ErrSyntax:
		return "a consulta anterior tinha um erro de sintaxe; garanta que cada JOIN tenha uma condição completa de igualdade e que a consulta não termine abruptamente"
	case ErrPermission:
		return "a consulta anterior foi recusada pelo banco; gere somente um único SELECT, sem comandos adicionais"
	case ErrTimeout:
		return "a consulta anterior excedeu o tempo limite; restrinja o resultado com filtros mais específicos"
	default:
		return "a consulta anterior falhou na execução; revise a sintaxe e os nomes de tabelas e colunas"
	}
}
