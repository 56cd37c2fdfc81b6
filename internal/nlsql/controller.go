package nlsql

import (
	"context"
	"log/slog"
)

// controllerState is the revision loop state machine.
type controllerState int

const (
	stateDrafting controllerState = iota
	stateReviewing
	stateRevising
	stateAccepted
	stateExhausted
)

const defaultMaxRevisions = 2

// Controller runs the bounded write/review/revise loop for one session.
// It terminates on acceptance or when the revision ceiling is reached; an
// exhausted session keeps its last candidate so the deterministic stages
// still get a chance to catch problems.
type Controller struct {
	writer       *Writer
	reviewer     *Reviewer
	critic       *Critic
	maxRevisions int
	logger       *slog.Logger
}

func NewController(writer *Writer, reviewer *Reviewer, critic *Critic, maxRevisions int, logger *slog.Logger) *Controller {
	if maxRevisions <= 0 {
		maxRevisions = defaultMaxRevisions
	}
	return &Controller{
		writer:       writer,
		reviewer:     reviewer,
		critic:       critic,
		maxRevisions: maxRevisions,
		logger:       logger,
	}
}

// Draft fills sess.CandidateSQL and sess.Accepted. An ErrGenerationFailure is
// returned only when every draft came back empty.
func (c *Controller) Draft(ctx context.Context, sess *Session) error {
	state := stateDrafting
	schemaText := sess.Schema.Format()

	for {
		switch state {
		case stateDrafting:
			sess.CandidateSQL = c.writer.Write(ctx, WriteRequest{
				Question:      sess.Question,
				SchemaText:    schemaText,
				CallerContext: sess.CallerContext,
				Critiques:     sess.Critiques,
			})
			if sess.CandidateSQL == "" {
				// Automatic rejection; no Reviewer call is spent on it.
				if c.logger != nil {
					c.logger.Warn("Empty candidate from writer", "session_id", sess.ID, "revision", sess.RevisionCount)
				}
				if sess.RevisionCount >= c.maxRevisions {
					state = stateExhausted
					continue
				}
				sess.RevisionCount++
				continue
			}
			state = stateReviewing

		case stateReviewing:
			accepted, issues := c.reviewer.Review(ctx, sess.CandidateSQL, schemaText, sess.Question, sess.CallerContext)
			sess.Issues = append(sess.Issues, issues...)
			if accepted {
				state = stateAccepted
				continue
			}
			if sess.RevisionCount >= c.maxRevisions {
				state = stateExhausted
				continue
			}
			instruction := c.critic.Critique(ctx, sess.CandidateSQL, sess.Question, issues)
			sess.Critiques = append(sess.Critiques, instruction)
			state = stateRevising

		case stateRevising:
			sess.RevisionCount++
			state = stateDrafting

		case stateAccepted:
			sess.Accepted = true
			if c.logger != nil {
				c.logger.Info("Candidate accepted", "session_id", sess.ID, "revisions", sess.RevisionCount)
			}
			return nil

		case stateExhausted:
			sess.Accepted = false
			if c.logger != nil {
				c.logger.Warn("Revision ceiling reached", "session_id", sess.ID, "revisions", sess.RevisionCount)
			}
			if sess.CandidateSQL == "" {
				return ErrGenerationFailure
			}
			// Proceed with the last draft; Guard and Sanitizer still run.
			return nil
		}
	}
}

// CorrectiveDraft re-invokes the Writer exactly once after a failed
// execution, folding the corrective hint and the accumulated critiques into
// the prompt. No review loop runs; the deterministic stages still apply to
// whatever comes back.
func (c *Controller) CorrectiveDraft(ctx context.Context, sess *Session, correctionHint string) error {
	sess.Accepted = false
	sess.CandidateSQL = c.writer.Write(ctx, WriteRequest{
		Question:       sess.Question,
		SchemaText:     sess.Schema.Format(),
		CallerContext:  sess.CallerContext,
		Critiques:      sess.Critiques,
		CorrectionHint: correctionHint,
	})
	if sess.CandidateSQL == "" {
		return ErrGenerationFailure
	}
	return nil
}
