package schema

import "time"

// BuiltinSnapshot returns the minimal schema the rest of the pipeline assumes
// exists. It is served when introspection fails and no cached snapshot is
// available, so downstream stages never see an empty schema.
func BuiltinSnapshot() *Snapshot {
	return &Snapshot{
		Builtin:   true,
		FetchedAt: time.Now(),
		Tables: []Table{
			{
				Name: "pessoa",
				Columns: []Column{
					{Name: "id", Type: "integer"},
					{Name: "nome", Type: "text"},
					{Name: "email", Type: "text", Nullable: true},
					{Name: "cpf", Type: "text", Nullable: true},
					{Name: "telefone", Type: "text", Nullable: true},
					{Name: "data_nascimento", Type: "date", Nullable: true},
				},
				PrimaryKeys: []string{"id"},
			},
			{
				Name: "curso",
				Columns: []Column{
					{Name: "id", Type: "integer"},
					{Name: "nome", Type: "text"},
					{Name: "carga_horaria", Type: "integer"},
					{Name: "grau", Type: "text"},
					{Name: "mensalidade", Type: "numeric"},
					{Name: "coordenador_id", Type: "integer", Nullable: true},
				},
				PrimaryKeys: []string{"id"},
				ForeignKeys: []ForeignKey{
					{Column: "coordenador_id", RefTable: "coordenador", RefColumn: "id"},
				},
			},
			{
				Name: "aluno",
				Columns: []Column{
					{Name: "ra", Type: "text"},
					{Name: "pessoa_id", Type: "integer"},
					{Name: "curso_id", Type: "integer"},
					{Name: "status", Type: "text"},
					{Name: "data_ingresso", Type: "date", Nullable: true},
				},
				PrimaryKeys: []string{"ra"},
				ForeignKeys: []ForeignKey{
					{Column: "pessoa_id", RefTable: "pessoa", RefColumn: "id"},
					{Column: "curso_id", RefTable: "curso", RefColumn: "id"},
				},
			},
			{
				Name: "professor",
				Columns: []Column{
					{Name: "id", Type: "integer"},
					{Name: "pessoa_id", Type: "integer"},
				},
				PrimaryKeys: []string{"id"},
				ForeignKeys: []ForeignKey{
					{Column: "pessoa_id", RefTable: "pessoa", RefColumn: "id"},
				},
			},
			{
				Name: "coordenador",
				Columns: []Column{
					{Name: "id", Type: "integer"},
					{Name: "pessoa_id", Type: "integer"},
					{Name: "curso_id", Type: "integer"},
				},
				PrimaryKeys: []string{"id"},
				ForeignKeys: []ForeignKey{
					{Column: "pessoa_id", RefTable: "pessoa", RefColumn: "id"},
					{Column: "curso_id", RefTable: "curso", RefColumn: "id"},
				},
			},
			{
				Name: "periodo_letivo",
				Columns: []Column{
					{Name: "id", Type: "integer"},
					{Name: "ano", Type: "integer"},
					{Name: "semestre", Type: "integer"},
					{Name: "data_inicio", Type: "date"},
					{Name: "data_fim", Type: "date"},
				},
				PrimaryKeys: []string{"id"},
			},
			{
				Name: "disciplina",
				Columns: []Column{
					{Name: "id", Type: "integer"},
					{Name: "nome", Type: "text"},
					{Name: "carga_horaria", Type: "integer"},
					{Name: "curso_id", Type: "integer"},
					{Name: "optativa", Type: "boolean", Nullable: true},
				},
				PrimaryKeys: []string{"id"},
				ForeignKeys: []ForeignKey{
					{Column: "curso_id", RefTable: "curso", RefColumn: "id"},
				},
			},
			{
				Name: "disciplina_professor",
				Columns: []Column{
					{Name: "disciplina_id", Type: "integer"},
					{Name: "professor_id", Type: "integer"},
				},
				ForeignKeys: []ForeignKey{
					{Column: "disciplina_id", RefTable: "disciplina", RefColumn: "id"},
					{Column: "professor_id", RefTable: "professor", RefColumn: "id"},
				},
			},
			{
				Name: "matricula",
				Columns: []Column{
					{Name: "id", Type: "integer"},
					{Name: "ra", Type: "text"},
					{Name: "disciplina_id", Type: "integer"},
					{Name: "periodo_letivo_id", Type: "integer"},
					{Name: "status", Type: "text"},
				},
				PrimaryKeys: []string{"id"},
				ForeignKeys: []ForeignKey{
					{Column: "ra", RefTable: "aluno", RefColumn: "ra"},
					{Column: "disciplina_id", RefTable: "disciplina", RefColumn: "id"},
					{Column: "periodo_letivo_id", RefTable: "periodo_letivo", RefColumn: "id"},
				},
			},
			{
				Name: "nota",
				Columns: []Column{
					{Name: "id", Type: "integer"},
					{Name: "matricula_id", Type: "integer"},
					{Name: "valor", Type: "numeric"},
					{Name: "descricao", Type: "text", Nullable: true},
				},
				PrimaryKeys: []string{"id"},
				ForeignKeys: []ForeignKey{
					{Column: "matricula_id", RefTable: "matricula", RefColumn: "id"},
				},
			},
			{
				Name: "falta",
				Columns: []Column{
					{Name: "id", Type: "integer"},
					{Name: "matricula_id", Type: "integer"},
					{Name: "quantidade", Type: "integer"},
					{Name: "data_registro", Type: "date", Nullable: true},
				},
				PrimaryKeys: []string{"id"},
				ForeignKeys: []ForeignKey{
					{Column: "matricula_id", RefTable: "matricula", RefColumn: "id"},
				},
			},
			{
				Name: "financeiro",
				Columns: []Column{
					{Name: "id", Type: "integer"},
					{Name: "ra", Type: "text"},
					{Name: "valor", Type: "numeric"},
					{Name: "vencimento", Type: "date"},
					{Name: "status", Type: "text"},
					{Name: "codigo_boleto", Type: "text", Nullable: true},
					{Name: "metodo_pagamento", Type: "text", Nullable: true},
				},
				PrimaryKeys: []string{"id"},
				ForeignKeys: []ForeignKey{
					{Column: "ra", RefTable: "aluno", RefColumn: "ra"},
				},
			},
		},
	}
}
