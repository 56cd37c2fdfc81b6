package nlsql

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couy-victor/portal-academico-ai/internal/schema"
)

// Request is one question from one caller.
type Request struct {
	Question      string            `json:"question"`
	CallerContext map[string]string `json:"caller_context"`
	Intent        string            `json:"intent,omitempty"`
}

// Failure is the terminal outcome when no SQL could be executed, not even a
// fallback template. Rows are never fabricated to paper over one.
type Failure struct {
	Category ErrorCategory `json:"category"`
	Summary  string        `json:"summary"`
}

// Result is the outcome of one pipeline run. Exactly one of Rows or Failure
// is meaningful.
type Result struct {
	SessionID    string           `json:"session_id"`
	SQL          string           `json:"sql,omitempty"`
	Rows         []map[string]any `json:"rows,omitempty"`
	FromCache    bool             `json:"from_cache,omitempty"`
	FromFallback bool             `json:"from_fallback,omitempty"`
	Revisions    int              `json:"revisions"`
	Failure      *Failure         `json:"failure,omitempty"`
	Elapsed      time.Duration    `json:"-"`
}

// Pipeline wires the compilation stages in their fixed order. One Pipeline
// serves any number of concurrent questions; all per-question state lives in
// the Session.
type Pipeline struct {
	catalog    *schema.Catalog
	controller *Controller
	guard      *Guard
	sanitizer  *Sanitizer
	executor   *Executor
	cache      *ResponseCache
	logger     *slog.Logger
}

func NewPipeline(catalog *schema.Catalog, controller *Controller, guard *Guard, sanitizer *Sanitizer, executor *Executor, cache *ResponseCache, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		catalog:    catalog,
		controller: controller,
		guard:      guard,
		sanitizer:  sanitizer,
		executor:   executor,
		cache:      cache,
		logger:     logger,
	}
}

// Answer runs the full pipeline for one question. The returned error is
// non-nil only for caller mistakes (empty question); every downstream
// problem surfaces as Result.Failure so the transport layer can always
// render a structured answer.
func (p *Pipeline) Answer(ctx context.Context, req Request) (*Result, error) {
	if req.Question == "" {
		return nil, errors.New("empty question")
	}

	sess := NewSession(req.Question, req.CallerContext, req.Intent)
	if p.logger != nil {
		p.logger.Info("Question received", "session_id", sess.ID, "intent", sess.Intent)
	}

	key := Fingerprint(sess.Question, sess.CallerContext)
	if rows, ok := p.cache.Get(key); ok {
		if p.logger != nil {
			p.logger.Info("Cache hit", "session_id", sess.ID)
		}
		return &Result{
			SessionID: sess.ID,
			Rows:      rows,
			FromCache: true,
			Elapsed:   time.Since(sess.StartedAt),
		}, nil
	}

	snap, err := p.catalog.Get(ctx)
	if err != nil {
		// Catalog falls back to the builtin snapshot internally; an error
		// here means even that path broke, which should not happen.
		return p.terminal(sess, ErrUnknown, "Esquema do banco indisponível no momento."), nil
	}
	sess.Schema = snap

	// First pass: compile and execute with no correction hint.
	if err := p.compile(ctx, sess); err != nil {
		return p.compileFailure(ctx, sess, err), nil
	}
	rows, execErr := p.executor.Execute(ctx, sess.CandidateSQL, sess.Parameters)
	if execErr == nil {
		return p.succeed(sess, key, rows), nil
	}
	sess.ExecError = execErr
	if p.logger != nil {
		p.logger.Warn("Execution failed, retrying with corrective hint",
			"session_id", sess.ID, "category", execErr.Category, "error", execErr.RawMessage)
	}

	// Error-feedback retry: the Writer is re-invoked exactly once with a
	// corrective hint folded into the prompt. No review loop runs; the
	// session keeps its critique history and the deterministic stages
	// still apply to the corrected draft.
	if err := p.recompile(ctx, sess, execErr.CorrectionHint()); err != nil {
		return p.compileFailure(ctx, sess, err), nil
	}
	rows, execErr = p.executor.Execute(ctx, sess.CandidateSQL, sess.Parameters)
	if execErr == nil {
		return p.succeed(sess, key, rows), nil
	}
	sess.ExecError = execErr
	return p.fallback(ctx, sess, execErr.Category), nil
}

// compile runs Draft, Guard and Sanitize, leaving sess.CandidateSQL and
// sess.Parameters ready for execution.
func (p *Pipeline) compile(ctx context.Context, sess *Session) error {
	if err := p.controller.Draft(ctx, sess); err != nil {
		return err
	}
	return p.harden(sess)
}

// recompile is the corrective pass after a failed execution: a single
// Writer invocation carrying the hint, then the same deterministic stages.
func (p *Pipeline) recompile(ctx context.Context, sess *Session, hint string) error {
	if err := p.controller.CorrectiveDraft(ctx, sess, hint); err != nil {
		return err
	}
	return p.harden(sess)
}

// harden runs the deterministic stages over sess.CandidateSQL. Every
// statement headed for the Executor passes through here.
func (p *Pipeline) harden(sess *Session) error {
	if err := p.guard.Apply(sess); err != nil {
		return err
	}
	bound, params, err := p.sanitizer.Sanitize(sess.CandidateSQL, sess.CallerContext)
	if err != nil {
		return err
	}
	sess.CandidateSQL = bound
	sess.Parameters = params
	return nil
}

// compileFailure routes a compilation error. An unresolved placeholder is
// fatal to the session: the caller context is missing data the fallback
// template would need just the same, so no recovery is attempted.
func (p *Pipeline) compileFailure(ctx context.Context, sess *Session, err error) *Result {
	if errors.Is(err, ErrUnresolvedPlaceholder) {
		if p.logger != nil {
			p.logger.Error("Sanitization failed", "session_id", sess.ID, "error", err)
		}
		return p.terminal(sess, ErrUnknown, "Não foi possível preparar a consulta com os dados da sessão.")
	}
	return p.fallback(ctx, sess, categoryFor(err))
}

// fallback tries the per-intent template before giving up. Templates go
// through the same Guard, Sanitizer and Executor as generated SQL; there
// is no privileged path.
func (p *Pipeline) fallback(ctx context.Context, sess *Session, category ErrorCategory) *Result {
	template, ok := FallbackTemplate(sess.Intent)
	if !ok {
		return p.terminal(sess, category, "Não foi possível responder à pergunta no momento.")
	}
	sess.CandidateSQL = template
	if err := p.harden(sess); err != nil {
		if p.logger != nil {
			p.logger.Error("Fallback template unsatisfiable", "session_id", sess.ID, "intent", sess.Intent, "error", err)
		}
		return p.terminal(sess, category, "Não foi possível responder à pergunta no momento.")
	}
	rows, execErr := p.executor.Execute(ctx, sess.CandidateSQL, sess.Parameters)
	if execErr != nil {
		if p.logger != nil {
			p.logger.Error("Fallback template failed", "session_id", sess.ID, "intent", sess.Intent, "error", execErr.RawMessage)
		}
		return p.terminal(sess, category, "Não foi possível responder à pergunta no momento.")
	}
	if p.logger != nil {
		p.logger.Info("Fallback template served", "session_id", sess.ID, "intent", sess.Intent, "rows", len(rows))
	}
	sess.Rows = rows
	return &Result{
		SessionID:    sess.ID,
		SQL:          sess.CandidateSQL,
		Rows:         rows,
		FromFallback: true,
		Revisions:    sess.RevisionCount,
		Elapsed:      time.Since(sess.StartedAt),
	}
}

func (p *Pipeline) succeed(sess *Session, cacheKey string, rows []map[string]any) *Result {
	sess.Rows = rows
	p.cache.Put(cacheKey, rows)
	if p.logger != nil {
		p.logger.Info("Question answered", "session_id", sess.ID, "rows", len(rows), "revisions", sess.RevisionCount)
	}
	return &Result{
		SessionID: sess.ID,
		SQL:       sess.CandidateSQL,
		Rows:      rows,
		Revisions: sess.RevisionCount,
		Elapsed:   time.Since(sess.StartedAt),
	}
}

func (p *Pipeline) terminal(sess *Session, category ErrorCategory, summary string) *Result {
	if p.logger != nil {
		p.logger.Error("Question unanswerable", "session_id", sess.ID, "category", category)
	}
	return &Result{
		SessionID: sess.ID,
		Revisions: sess.RevisionCount,
		Failure:   &Failure{Category: category, Summary: summary},
		Elapsed:   time.Since(sess.StartedAt),
	}
}

// categoryFor maps compilation-stage sentinel errors onto the execution
// error taxonomy so terminal failures always carry a category.
func categoryFor(err error) ErrorCategory {
	if errors.Is(err, ErrGuardRejection) {
		return ErrPermission
	}
	return ErrUnknown
}
