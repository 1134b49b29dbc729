package domain

import (
	"context"
	"time"
)

// ThyroidSchema declara os campos clínicos aceitos pelo proxy de predição.
// O serviço de modelo é uma caixa-preta externa; aqui validamos apenas o
// payload plano contra os intervalos declarados antes de encaminhá-lo.
// Campos de indicador (histórico familiar, fumo, etc.) são 0 ou 1.
var ThyroidSchema = Schema{
	Name:  "thyroid_input",
	Table: "predictions",
	Fields: []FieldSpec{
		{Name: "Age", Kind: FieldNumber, Required: true, Min: bound(0), Max: bound(120)},
		{Name: "Family_History", Kind: FieldNumber, Required: true, Min: bound(0), Max: bound(1)},
		{Name: "Radiation_Exposure", Kind: FieldNumber, Required: true, Min: bound(0), Max: bound(1)},
		{Name: "Iodine_Deficiency", Kind: FieldNumber, Required: true, Min: bound(0), Max: bound(1)},
		{Name: "Smoking", Kind: FieldNumber, Required: true, Min: bound(0), Max: bound(1)},
		{Name: "Obesity", Kind: FieldNumber, Required: true, Min: bound(0), Max: bound(1)},
		{Name: "Diabetes", Kind: FieldNumber, Required: true, Min: bound(0), Max: bound(1)},
		{Name: "TSH_Level", Kind: FieldNumber, Required: true, Min: bound(0), Max: bound(100)},
		{Name: "T3_Level", Kind: FieldNumber, Required: true, Min: bound(0), Max: bound(100)},
		{Name: "T4_Level", Kind: FieldNumber, Required: true, Min: bound(0), Max: bound(100)},
		{Name: "Nodule_Size", Kind: FieldNumber, Required: true, Min: bound(0), Max: bound(100)},
		{Name: "Thyroid_Cancer_Risk", Kind: FieldNumber, Required: true, Min: bound(0), Max: bound(100)},
		{Name: "Gender_Male", Kind: FieldNumber, Required: true, Min: bound(0), Max: bound(1)},
	},
}

// PredictionResult é a resposta do serviço externo de modelo, repassada
// ao cliente sem interpretação.
type PredictionResult struct {
	Prediction         string             `json:"prediction"`
	RiskPercentage     float64            `json:"risk_percentage"`
	Confidence         string             `json:"confidence"`
	FeaturesImportance map[string]float64 `json:"features_importance"`
	ChartData          string             `json:"chart_data,omitempty"`
}

// PredictionRecord é uma linha do histórico de predições.
type PredictionRecord struct {
	ID             string                 `json:"id"`
	Input          map[string]interface{} `json:"input"`
	Prediction     string                 `json:"prediction"`
	RiskPercentage float64                `json:"risk_percentage"`
	Confidence     string                 `json:"confidence"`
	CreatedAt      time.Time              `json:"created_at"`
}

// PredictionRepository define o contrato de persistência do histórico.
type PredictionRepository interface {
	Save(ctx context.Context, record PredictionRecord) (PredictionRecord, error)
	FindRecent(ctx context.Context, limit int) ([]PredictionRecord, error)
}
