package nlsql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couy-victor/portal-academico-ai/internal/schema"
)

func newTestController(gen *fakeGenerator, maxRevisions int) *Controller {
	return NewController(
		NewWriter(gen, nil),
		NewReviewer(gen, nil),
		NewCritic(gen, nil),
		maxRevisions,
		nil,
	)
}

func newTestSession() *Session {
	sess := NewSession("Quais são minhas notas?", map[string]string{"RA": "12345"}, "consultar_notas")
	sess.Schema = schema.BuiltinSnapshot()
	return sess
}

func TestControllerAcceptsFirstDraft(t *testing.T) {
	gen := &fakeGenerator{
		writerResponses:   []string{"SELECT valor FROM nota"},
		reviewerResponses: []string{"ACEITO"},
	}
	sess := newTestSession()

	err := newTestController(gen, 2).Draft(context.Background(), sess)
	require.NoError(t, err)

	assert.True(t, sess.Accepted)
	assert.Equal(t, "SELECT valor FROM nota", sess.CandidateSQL)
	assert.Equal(t, 0, sess.RevisionCount)
	assert.Equal(t, 1, gen.writerCalls)
	assert.Equal(t, 1, gen.reviewerCalls)
	assert.Equal(t, 0, gen.criticCalls, "accepted drafts never reach the critic")
}

func TestControllerRevisesOnceThenAccepts(t *testing.T) {
	gen := &fakeGenerator{
		writerResponses: []string{
			"SELECT valor FROM notas",
			"SELECT valor FROM nota",
		},
		reviewerResponses: []string{
			"REJEITADO\nPROBLEMA [esquema]: tabela notas não existe | use nota",
			"ACEITO",
		},
		criticResponses: []string{"Use a tabela nota em vez de notas."},
	}
	sess := newTestSession()

	err := newTestController(gen, 2).Draft(context.Background(), sess)
	require.NoError(t, err)

	assert.True(t, sess.Accepted)
	assert.Equal(t, "SELECT valor FROM nota", sess.CandidateSQL)
	assert.Equal(t, 1, sess.RevisionCount)
	require.Len(t, sess.Critiques, 1)
	assert.Equal(t, "Use a tabela nota em vez de notas.", sess.Critiques[0])
}

func TestControllerExhaustionKeepsLastCandidate(t *testing.T) {
	gen := &fakeGenerator{
		writerResponses:   []string{"SELECT valor FROM notas"},
		reviewerResponses: []string{"REJEITADO\nPROBLEMA [esquema]: tabela não existe"},
		criticResponses:   []string{"Use a tabela nota."},
	}
	sess := newTestSession()

	err := newTestController(gen, 2).Draft(context.Background(), sess)
	require.NoError(t, err, "an exhausted session with a candidate still proceeds")

	assert.False(t, sess.Accepted)
	assert.Equal(t, "SELECT valor FROM notas", sess.CandidateSQL)
	assert.Equal(t, 2, sess.RevisionCount)
	assert.Equal(t, 3, gen.writerCalls)
	assert.Equal(t, 3, gen.reviewerCalls)
}

func TestControllerAllDraftsEmpty(t *testing.T) {
	gen := &fakeGenerator{writerResponses: []string{"não sei responder"}}
	sess := newTestSession()

	err := newTestController(gen, 2).Draft(context.Background(), sess)
	require.ErrorIs(t, err, ErrGenerationFailure)

	assert.False(t, sess.Accepted)
	assert.Empty(t, sess.CandidateSQL)
	assert.Equal(t, 0, gen.reviewerCalls, "empty drafts never reach the reviewer")
}

func TestControllerEmptyDraftConsumesRevision(t *testing.T) {
	gen := &fakeGenerator{
		writerResponses:   []string{"sem consulta aqui", "SELECT valor FROM nota"},
		reviewerResponses: []string{"ACEITO"},
	}
	sess := newTestSession()

	err := newTestController(gen, 2).Draft(context.Background(), sess)
	require.NoError(t, err)

	assert.True(t, sess.Accepted)
	assert.Equal(t, 1, sess.RevisionCount)
	assert.Equal(t, 1, gen.reviewerCalls)
}

func TestControllerCorrectiveDraftSkipsReviewer(t *testing.T) {
	gen := &fakeGenerator{
		writerResponses: []string{"SELECT valor FROM nota WHERE ra = {{RA}}"},
	}
	sess := newTestSession()
	sess.Accepted = true

	err := newTestController(gen, 2).CorrectiveDraft(context.Background(), sess, "a coluna semestre não existe no esquema.")
	require.NoError(t, err)

	assert.Equal(t, "SELECT valor FROM nota WHERE ra = {{RA}}", sess.CandidateSQL)
	assert.False(t, sess.Accepted)
	assert.Equal(t, 1, gen.writerCalls)
	assert.Equal(t, 0, gen.reviewerCalls)
	assert.Contains(t, gen.writerPrompts[0], "IMPORTANTE: a coluna semestre não existe no esquema.")
}

func TestControllerCorrectiveDraftEmptyIsFailure(t *testing.T) {
	gen := &fakeGenerator{
		writerResponses: []string{"não consigo ajudar com isso"},
	}
	sess := newTestSession()

	err := newTestController(gen, 2).CorrectiveDraft(context.Background(), sess, "revise a consulta.")
	require.ErrorIs(t, err, ErrGenerationFailure)
	assert.Equal(t, 1, gen.writerCalls)
}
