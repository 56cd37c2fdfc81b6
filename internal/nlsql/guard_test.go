package nlsql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardAppendsRowCap(t *testing.T) {
	g := NewGuard(100, nil, nil)
	sess := newTestSession()
	sess.CandidateSQL = "SELECT nome FROM disciplina WHERE curso_id = 1"

	require.NoError(t, g.Apply(sess))
	assert.Equal(t, "SELECT nome FROM disciplina WHERE curso_id = 1 LIMIT 100", sess.CandidateSQL)
}

func TestGuardKeepsExistingLimit(t *testing.T) {
	g := NewGuard(100, nil, nil)
	sess := newTestSession()
	sess.CandidateSQL = "SELECT nome FROM disciplina LIMIT 5"

	require.NoError(t, g.Apply(sess))
	assert.Equal(t, "SELECT nome FROM disciplina LIMIT 5", sess.CandidateSQL)
}

func TestGuardSkipsLimitForAggregates(t *testing.T) {
	g := NewGuard(100, nil, nil)
	sess := newTestSession()
	sess.CandidateSQL = "SELECT COUNT(*) FROM matricula WHERE ra = {{RA}}"

	require.NoError(t, g.Apply(sess))
	assert.NotContains(t, sess.CandidateSQL, "LIMIT")
}

func TestGuardRejectsUnscopedWildcard(t *testing.T) {
	g := NewGuard(100, nil, nil)
	sess := newTestSession()
	sess.CandidateSQL = "SELECT * FROM aluno"

	err := g.Apply(sess)
	require.ErrorIs(t, err, ErrGuardRejection)
	require.Len(t, sess.Issues, 1)
	assert.Equal(t, IssueSecurity, sess.Issues[0].Kind)
}

func TestGuardAllowsScopedWildcard(t *testing.T) {
	g := NewGuard(100, nil, nil)
	sess := newTestSession()
	sess.CandidateSQL = "SELECT * FROM aluno WHERE ra = {{RA}}"

	require.NoError(t, g.Apply(sess))
}

func TestGuardStripsCommentsAndTrailingSemicolon(t *testing.T) {
	g := NewGuard(100, nil, nil)
	sess := newTestSession()
	sess.CandidateSQL = "SELECT nome FROM curso WHERE id = 1 -- comentário\n;"

	require.NoError(t, g.Apply(sess))
	assert.Equal(t, "SELECT nome FROM curso WHERE id = 1 LIMIT 100", sess.CandidateSQL)
}

func TestGuardStripsTrailingConjunction(t *testing.T) {
	g := NewGuard(100, nil, nil)
	sess := newTestSession()
	sess.CandidateSQL = "SELECT nome FROM curso WHERE id = 1 AND"

	require.NoError(t, g.Apply(sess))
	assert.Equal(t, "SELECT nome FROM curso WHERE id = 1 LIMIT 100", sess.CandidateSQL)
}

func TestGuardWarnsOnLargeTableScan(t *testing.T) {
	g := NewGuard(100, []string{"nota", "falta"}, nil)
	sess := newTestSession()
	sess.CandidateSQL = "SELECT valor FROM nota"

	require.NoError(t, g.Apply(sess), "large table scans warn but do not reject")
	require.Len(t, sess.Issues, 1)
	assert.Equal(t, IssuePerformance, sess.Issues[0].Kind)
	assert.Contains(t, sess.Issues[0].Description, "nota")
}
