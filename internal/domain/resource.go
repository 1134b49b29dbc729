package domain

import (
	"context"
	"fmt"
	"time"
)

// FieldKind enumera os tipos de valor aceitos em um campo de registro.
// O modelo de dados do recurso genérico só conhece strings, números e
// listas ordenadas de strings.
type FieldKind string

const (
	FieldString     FieldKind = "string"
	FieldNumber     FieldKind = "number"
	FieldStringList FieldKind = "string_list"
)

// FieldSpec declara as restrições de um único campo do recurso.
// Min/Max se aplicam apenas a campos numéricos (nil = sem limite).
type FieldSpec struct {
	Name     string
	Kind     FieldKind
	Required bool
	Min      *float64
	Max      *float64
}

// Schema descreve um tipo de recurso: o nome lógico, a tabela física
// onde os registros vivem e a lista declarativa de campos.
// Os limites numéricos são declarados aqui, nunca codificados na lógica.
type Schema struct {
	Name   string
	Table  string
	Fields []FieldSpec
}

// Field retorna a especificação de um campo pelo nome.
func (s Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Validate verifica um payload contra o schema.
// Com partial=true (update), campos ausentes não são exigidos; os campos
// presentes continuam sendo checados contra tipo e limites declarados.
// Retorna um erro simples; a camada de serviço o traduz para ValidationError.
func (s Schema) Validate(fields map[string]interface{}, partial bool) error {
	// 1. Campos obrigatórios (apenas em create)
	if !partial {
		for _, spec := range s.Fields {
			if !spec.Required {
				continue
			}
			if _, ok := fields[spec.Name]; !ok {
				return fmt.Errorf("o campo '%s' é obrigatório", spec.Name)
			}
		}
	}

	// 2. Campos presentes: tipo e limites
	for name, value := range fields {
		spec, known := s.Field(name)
		if !known {
			return fmt.Errorf("o campo '%s' não existe no recurso '%s'", name, s.Name)
		}

		switch spec.Kind {
		case FieldString:
			str, ok := value.(string)
			if !ok {
				return fmt.Errorf("o campo '%s' deve ser uma string", name)
			}
			if spec.Required && str == "" {
				return fmt.Errorf("o campo '%s' não pode ser vazio", name)
			}

		case FieldNumber:
			// json.Unmarshal entrega números como float64
			num, ok := value.(float64)
			if !ok {
				return fmt.Errorf("o campo '%s' deve ser numérico", name)
			}
			if spec.Min != nil && num < *spec.Min {
				return fmt.Errorf("o campo '%s' deve ser no mínimo %g", name, *spec.Min)
			}
			if spec.Max != nil && num > *spec.Max {
				return fmt.Errorf("o campo '%s' deve ser no máximo %g", name, *spec.Max)
			}

		case FieldStringList:
			list, ok := value.([]interface{})
			if !ok {
				return fmt.Errorf("o campo '%s' deve ser uma lista de strings", name)
			}
			for _, item := range list {
				if _, ok := item.(string); !ok {
					return fmt.Errorf("o campo '%s' deve conter apenas strings", name)
				}
			}

		default:
			return fmt.Errorf("tipo de campo desconhecido no schema: %s", spec.Kind)
		}
	}

	return nil
}

// Record é um registro persistido de um recurso genérico.
// O ID é atribuído pelo repositório na criação e imutável depois disso.
type Record struct {
	ID        string                 `json:"id"`
	Fields    map[string]interface{} `json:"fields"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// RecordRepository define o contrato de persistência do recurso genérico.
type RecordRepository interface {
	Save(ctx context.Context, schema Schema, record Record) (Record, error)
	FindByID(ctx context.Context, schema Schema, id string) (Record, error)
	FindAll(ctx context.Context, schema Schema, limit int) ([]Record, error)
	Update(ctx context.Context, schema Schema, record Record) error
	Delete(ctx context.Context, schema Schema, id string) error
}

// bound é um helper para declarar limites numéricos nos schemas.
func bound(v float64) *float64 { return &v }
