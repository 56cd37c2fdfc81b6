// Package nlsql compiles a natural-language question into a single safe,
// parameterized SELECT and executes it with bounded retries. The stages are
// strictly ordered: write, review (bounded revision loop), deterministic
// guard, sanitize, execute (one error-feedback retry, then a per-intent
// fallback template).
package nlsql

import (
	"errors"
	"time"

	"github.com/couy-victor/portal-academico-ai/internal/schema"
	"github.com/google/uuid"
)

// IssueKind classifies a Reviewer finding.
type IssueKind string

const (
	IssueSyntax      IssueKind = "syntax"
	IssueSchema      IssueKind = "schema"
	IssueSecurity    IssueKind = "security"
	IssuePerformance IssueKind = "performance"
)

// Issue is a single Reviewer finding. Issues feed the revision loop and the
// logs; an Issue on its own never aborts a session.
type Issue struct {
	Kind         IssueKind `json:"kind"`
	Description  string    `json:"description"`
	SuggestedFix string    `json:"suggested_fix,omitempty"`
}

// ErrorCategory classifies a failed execution.
type ErrorCategory string

const (
	ErrSyntax         ErrorCategory = "syntax"
	ErrPermission     ErrorCategory = "permission"
	ErrTimeout        ErrorCategory = "timeout"
	ErrSchemaMismatch ErrorCategory = "schema_mismatch"
	ErrUnknown        ErrorCategory = "unknown"
)

// ErrorInfo is the structured form of a database execution failure.
type ErrorInfo struct {
	Category          ErrorCategory `json:"category"`
	RawMessage        string        `json:"raw_message"`
	OffendingFragment string        `json:"offending_fragment,omitempty"`
}

// Failure taxonomy for the whole pipeline. Callers match with errors.Is.
var (
	ErrGenerationFailure     = errors.New("generation failure: empty or unparseable candidate")
	ErrGuardRejection        = errors.New("guard rejection: deterministic policy violation")
	ErrUnresolvedPlaceholder = errors.New("sanitization error: unresolved placeholder")
	ErrExecutionFailed       = errors.New("execution failed")
)

// Session is the unit of work for one question. It is created per question,
// mutated in place through each stage and discarded after the response.
type Session struct {
	ID            string
	Question      string
	CallerContext map[string]string
	Intent        string

	Schema       *schema.Snapshot
	CandidateSQL string

	RevisionCount int
	Critiques     []string
	Accepted      bool
	Issues        []Issue

	Parameters []any
	Rows       []map[string]any
	ExecError  *ErrorInfo

	StartedAt time.Time
}

// NewSession creates a session for one question. The caller context map is
// copied so later stages see a stable view.
func NewSession(question string, callerContext map[string]string, intent string) *Session {
	cc := make(map[string]string, len(callerContext))
	for k, v := range callerContext {
		cc[k] = v
	}
	return &Session{
		ID:            uuid.NewString(),
		Question:      question,
		CallerContext: cc,
		Intent:        intent,
		StartedAt:     time.Now(),
	}
}
