package nlsql

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

const defaultRowCap = 100

// Guard is the deterministic, non-generative policy stage. It rewrites or
// rejects a candidate without ever calling the generator.
type Guard struct {
	rowCap      int
	largeTables []string
	logger      *slog.Logger
}

func NewGuard(rowCap int, largeTables []string, logger *slog.Logger) *Guard {
	if rowCap <= 0 {
		rowCap = defaultRowCap
	}
	return &Guard{rowCap: rowCap, largeTables: largeTables, logger: logger}
}

var (
	limitRe        = regexp.MustCompile(`(?i)\bLIMIT\s+\d+`)
	aggregateRe    = regexp.MustCompile(`(?i)\bSELECT\s+(COUNT|SUM|AVG|MIN|MAX)\s*\(`)
	wildcardRe     = regexp.MustCompile(`(?i)\bSELECT\s+\*\s+FROM\b`)
	whereRe        = regexp.MustCompile(`(?i)\bWHERE\b`)
	sqlCommentRe   = regexp.MustCompile(`--[^\n]*`)
	trailingCondRe = regexp.MustCompile(`(?i)\s+(AND|OR)\s*$`)
)

// Apply normalizes the statement and enforces the static policy:
// a row cap is appended to non-aggregate SELECTs without one, unscoped
// wildcard projections are rejected, and scans of known-large tables without
// a WHERE clause are logged but allowed.
func (g *Guard) Apply(sess *Session) error {
	sql := strings.TrimSpace(sess.CandidateSQL)

	// Comment markers never survive this stage; the Executor would refuse
	// them anyway.
	sql = strings.TrimSpace(sqlCommentRe.ReplaceAllString(sql, ""))
	sql = strings.TrimSuffix(sql, ";")
	sql = strings.Join(strings.Fields(sql), " ")
	sql = trailingCondRe.ReplaceAllString(sql, "")

	if wildcardRe.MatchString(sql) && !whereRe.MatchString(sql) && !limitRe.MatchString(sql) {
		sess.Issues = append(sess.Issues, Issue{
			Kind:        IssueSecurity,
			Description: "unscoped wildcard projection without a limiting predicate",
		})
		return fmt.Errorf("%w: unscoped SELECT *", ErrGuardRejection)
	}

	if !limitRe.MatchString(sql) && !aggregateRe.MatchString(sql) {
		sql = fmt.Sprintf("%s LIMIT %d", sql, g.rowCap)
		if g.logger != nil {
			g.logger.Info("Row cap appended", "session_id", sess.ID, "cap", g.rowCap)
		}
	}

	for _, table := range g.largeTables {
		scanRe := regexp.MustCompile(`(?i)\bFROM\s+` + regexp.QuoteMeta(table) + `\b`)
		if scanRe.MatchString(sql) && !whereRe.MatchString(sql) {
			sess.Issues = append(sess.Issues, Issue{
				Kind:        IssuePerformance,
				Description: fmt.Sprintf("possible full scan on large table %s", table),
			})
			if g.logger != nil {
				g.logger.Warn("Query may scan large table without WHERE", "session_id", sess.ID, "table", table)
			}
		}
	}

	sess.CandidateSQL = sql
	return nil
}
