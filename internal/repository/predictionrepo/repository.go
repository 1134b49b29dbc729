package predictionrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"gohub/internal/domain"
	apperror "gohub/internal/errors"
	"gohub/internal/pkg/logger"
)

// PredictionRepository implementa domain.PredictionRepository sobre o PostgreSQL.
// Guarda o histórico de chamadas ao serviço externo de modelo: o payload de
// entrada (JSONB) e o resumo da resposta.
type PredictionRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewPredictionRepository cria uma nova instância do repositório de histórico.
func NewPredictionRepository(db *sql.DB, dbTimeout time.Duration, log logger.Logger) *PredictionRepository {
	return &PredictionRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    log,
	}
}

// Save grava uma linha de histórico após uma predição bem-sucedida.
func (r *PredictionRepository) Save(ctx context.Context, record domain.PredictionRecord) (domain.PredictionRecord, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	record.ID = uuid.NewString()
	record.CreatedAt = time.Now().UTC()

	inputJSON, err := json.Marshal(record.Input)
	if err != nil {
		return domain.PredictionRecord{}, apperror.NewInternalError("Falha ao serializar entrada da predição.", err)
	}

	const insertSQL = `INSERT INTO predictions (id, input, prediction, risk_percentage, confidence, created_at)
	                   VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.DB.ExecContext(
		ctxTimeout,
		insertSQL,
		record.ID,
		inputJSON,
		record.Prediction,
		record.RiskPercentage,
		record.Confidence,
		record.CreatedAt,
	)

	if err != nil {
		r.logger.Error("Falha ao gravar histórico de predição no DB.", err)
		return domain.PredictionRecord{}, apperror.NewDBError("failed to insert prediction", err)
	}

	return record, nil
}

// FindRecent lista as predições mais recentes, da mais nova para a mais antiga.
func (r *PredictionRepository) FindRecent(ctx context.Context, limit int) ([]domain.PredictionRecord, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `SELECT id, input, prediction, risk_percentage, confidence, created_at
	               FROM predictions ORDER BY created_at DESC LIMIT $1`

	rows, err := r.DB.QueryContext(ctxTimeout, query, limit)
	if err != nil {
		r.logger.Error("Falha ao listar histórico de predições no DB.", err)
		return nil, apperror.NewDBError("failed to list predictions", err)
	}
	defer rows.Close()

	records := []domain.PredictionRecord{}
	for rows.Next() {
		var record domain.PredictionRecord
		var inputJSON []byte
		if err := rows.Scan(
			&record.ID,
			&inputJSON,
			&record.Prediction,
			&record.RiskPercentage,
			&record.Confidence,
			&record.CreatedAt,
		); err != nil {
			return nil, apperror.NewDBError("failed to scan prediction row", err)
		}
		if err := json.Unmarshal(inputJSON, &record.Input); err != nil {
			return nil, apperror.NewInternalError("Falha ao desserializar entrada da predição.", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("failed to iterate prediction rows", err)
	}

	return records, nil
}
