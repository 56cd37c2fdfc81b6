package nlsql

// Canned queries per caller intent, used when dynamic generation has failed
// repeatedly. They carry the same :ra placeholder grammar as generated SQL
// and go through the Sanitizer like any other candidate.
var fallbackTemplates = map[string]string{
	"consultar_disciplinas": `SELECT disciplina.nome
		FROM disciplina
		JOIN matricula ON disciplina.id = matricula.disciplina_id
		WHERE matricula.ra = :ra`,

	"consultar_notas": `SELECT disciplina.nome, nota.valor
		FROM nota
		JOIN matricula ON nota.matricula_id = matricula.id
		JOIN disciplina ON matricula.disciplina_id = disciplina.id
		WHERE matricula.ra = :ra`,

	"consultar_faltas": `SELECT disciplina.nome, falta.quantidade
		FROM falta
		JOIN matricula ON falta.matricula_id = matricula.id
		JOIN disciplina ON matricula.disciplina_id = disciplina.id
		WHERE matricula.ra = :ra`,

	"consultar_boletos": `SELECT financeiro.valor, financeiro.vencimento
		FROM financeiro
		WHERE financeiro.ra = :ra AND LOWER(financeiro.status) = LOWER('Pendente')`,

	"consultar_coordenador": `SELECT pessoa.nome, curso.nome AS curso
		FROM coordenador
		JOIN pessoa ON coordenador.pessoa_id = pessoa.id
		JOIN curso ON coordenador.curso_id = curso.id
		JOIN aluno ON curso.id = aluno.curso_id
		WHERE aluno.ra = :ra`,

	"consultar_optativas": `SELECT disciplina.nome
		FROM disciplina
		JOIN curso ON disciplina.curso_id = curso.id
		JOIN aluno ON curso.id = aluno.curso_id
		WHERE disciplina.optativa = true AND aluno.ra = :ra`,
}

// FallbackTemplate returns the canned query for an intent, if one exists.
func FallbackTemplate(intent string) (string, bool) {
	sql, ok := fallbackTemplates[intent]
	return sql, ok
}
