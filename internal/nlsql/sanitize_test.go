package nlsql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeBracePlaceholders(t *testing.T) {
	s := NewSanitizer(nil)
	ctx := map[string]string{"RA": "12345", "periodo_atual": "2026-2"}

	out, params, err := s.Sanitize(
		"SELECT valor FROM nota JOIN matricula ON nota.matricula_id = matricula.id WHERE matricula.ra = {{RA}} AND matricula.periodo = {{periodo_atual}}",
		ctx,
	)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT valor FROM nota JOIN matricula ON nota.matricula_id = matricula.id WHERE matricula.ra = $1 AND matricula.periodo = $2",
		out,
	)
	assert.Equal(t, []any{"12345", "2026-2"}, params)
}

func TestSanitizeColonPlaceholders(t *testing.T) {
	s := NewSanitizer(nil)

	out, params, err := s.Sanitize("SELECT nome FROM disciplina JOIN matricula ON disciplina.id = matricula.disciplina_id WHERE matricula.ra = :ra", map[string]string{"RA": "12345"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT nome FROM disciplina JOIN matricula ON disciplina.id = matricula.disciplina_id WHERE matricula.ra = $1", out)
	assert.Equal(t, []any{"12345"}, params)
}

func TestSanitizePreservesTypeCasts(t *testing.T) {
	s := NewSanitizer(nil)

	out, params, err := s.Sanitize("SELECT vencimento::date FROM financeiro WHERE ra = {{RA}}", map[string]string{"RA": "12345"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT vencimento::date FROM financeiro WHERE ra = $1", out)
	assert.Len(t, params, 1)
}

func TestSanitizeIdentitySynonyms(t *testing.T) {
	s := NewSanitizer(nil)
	ctx := map[string]string{"RA": "12345"}

	for _, sql := range []string{
		"SELECT 1 FROM aluno WHERE ra = {{user_id}}",
		"SELECT 1 FROM aluno WHERE ra = {{aluno_id}}",
		"SELECT 1 FROM aluno WHERE ra = :user_id",
	} {
		out, params, err := s.Sanitize(sql, ctx)
		require.NoError(t, err, sql)
		assert.Equal(t, "SELECT 1 FROM aluno WHERE ra = $1", out)
		assert.Equal(t, []any{"12345"}, params)
	}
}

func TestSanitizeBareIdentityQuestionMark(t *testing.T) {
	s := NewSanitizer(nil)

	out, params, err := s.Sanitize("SELECT 1 FROM matricula WHERE ra = ?", map[string]string{"RA": "12345"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 FROM matricula WHERE ra = $1", out)
	assert.Equal(t, []any{"12345"}, params)
}

func TestSanitizeUnresolvedPlaceholder(t *testing.T) {
	s := NewSanitizer(nil)

	_, _, err := s.Sanitize("SELECT 1 FROM nota WHERE semestre = {{semestre}}", map[string]string{"RA": "12345"})
	require.ErrorIs(t, err, ErrUnresolvedPlaceholder)
}

func TestSanitizeIdempotent(t *testing.T) {
	s := NewSanitizer(nil)
	ctx := map[string]string{"RA": "12345"}

	first, params, err := s.Sanitize("SELECT 1 FROM matricula WHERE ra = {{RA}}", ctx)
	require.NoError(t, err)
	require.Len(t, params, 1)

	second, params2, err := s.Sanitize(first, ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Empty(t, params2, "already-bound SQL must not gain new parameters")
}

func TestSanitizeValueWithQuotes(t *testing.T) {
	s := NewSanitizer(nil)
	ctx := map[string]string{"RA": "12345'; DROP TABLE aluno; --"}

	out, params, err := s.Sanitize("SELECT 1 FROM matricula WHERE ra = {{RA}}", ctx)
	require.NoError(t, err)

	// The hostile value travels only as a bound parameter.
	assert.Equal(t, "SELECT 1 FROM matricula WHERE ra = $1", out)
	assert.Equal(t, []any{"12345'; DROP TABLE aluno; --"}, params)
	assert.NotContains(t, out, "DROP TABLE")
}
