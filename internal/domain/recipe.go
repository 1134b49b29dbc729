package domain

// RecipeSchema declara o recurso de receitas exposto em /api/recipes.
// Tempo de preparo em minutos, entre 1 e 1440 (um dia).
var RecipeSchema = Schema{
	Name:  "recipe",
	Table: "recipes",
	Fields: []FieldSpec{
		{Name: "name", Kind: FieldString, Required: true},
		{Name: "description", Kind: FieldString},
		{Name: "image", Kind: FieldString},
		{Name: "category", Kind: FieldString},
		{Name: "ingredients", Kind: FieldStringList},
		{Name: "time", Kind: FieldNumber, Min: bound(1), Max: bound(1440)},
	},
}
