package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gohub/internal/domain"
)

// TestValidate_PartialSkipsRequired verifica que no modo parcial os campos
// obrigatórios ausentes não são exigidos, mas os presentes continuam checados.
func TestValidate_PartialSkipsRequired(t *testing.T) {
	err := domain.RecipeSchema.Validate(map[string]interface{}{
		"description": "só a descrição",
	}, true)
	assert.NoError(t, err)

	err = domain.RecipeSchema.Validate(map[string]interface{}{
		"time": float64(99999),
	}, true)
	assert.Error(t, err)
}

// TestValidate_TypeMismatch verifica a checagem de tipo campo a campo.
func TestValidate_TypeMismatch(t *testing.T) {
	cases := map[string]map[string]interface{}{
		"string com número":  {"name": float64(7)},
		"número com string":  {"name": "Bolo", "time": "sessenta"},
		"lista com não-lista": {"name": "Bolo", "ingredients": "farinha"},
		"lista com número":   {"name": "Bolo", "ingredients": []interface{}{"farinha", float64(2)}},
	}

	for label, fields := range cases {
		assert.Error(t, domain.RecipeSchema.Validate(fields, false), label)
	}
}

// TestValidate_NumberBounds verifica os limites declarados (inclusive nas bordas).
func TestValidate_NumberBounds(t *testing.T) {
	base := map[string]interface{}{"name": "Bolo"}

	for _, ok := range []float64{1, 720, 1440} {
		base["time"] = ok
		assert.NoError(t, domain.RecipeSchema.Validate(base, false))
	}
	for _, bad := range []float64{0, 1441, -5} {
		base["time"] = bad
		assert.Error(t, domain.RecipeSchema.Validate(base, false))
	}
}

// TestValidate_ThyroidIndicators verifica que indicadores só aceitam 0 ou 1.
func TestValidate_ThyroidIndicators(t *testing.T) {
	err := domain.ThyroidSchema.Validate(map[string]interface{}{"Smoking": float64(2)}, true)
	assert.Error(t, err)

	err = domain.ThyroidSchema.Validate(map[string]interface{}{"Smoking": float64(1)}, true)
	assert.NoError(t, err)
}

// TestField verifica a busca de especificação por nome.
func TestField(t *testing.T) {
	spec, ok := domain.RecipeSchema.Field("time")
	assert.True(t, ok)
	assert.Equal(t, domain.FieldNumber, spec.Kind)

	_, ok = domain.RecipeSchema.Field("inexistente")
	assert.False(t, ok)
}
