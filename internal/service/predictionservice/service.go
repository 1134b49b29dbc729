package predictionservice

import (
	"context"

	"gohub/internal/domain"
	apperror "gohub/internal/errors"
	"gohub/internal/pkg/logger"
	"gohub/internal/pkg/predictor"
)

// Limite padrão e máximo do histórico retornado.
const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Service implementa o proxy de predição: valida o payload clínico contra o
// schema declarativo, repassa ao serviço externo de modelo (caixa-preta) e
// grava o resultado no histórico.
type Service struct {
	client predictor.Client
	repo   domain.PredictionRepository
	logger logger.Logger
}

// NewService cria o serviço de predição.
func NewService(client predictor.Client, repo domain.PredictionRepository, log logger.Logger) *Service {
	return &Service{
		client: client,
		repo:   repo,
		logger: log,
	}
}

// Predict valida a entrada, consulta o modelo e persiste o histórico.
// Uma única tentativa: falha do serviço externo vira InternalError e o
// cliente decide se refaz a chamada.
func (s *Service) Predict(ctx context.Context, input map[string]interface{}) (domain.PredictionResult, error) {
	if input == nil {
		return domain.PredictionResult{}, apperror.NewValidationError("O payload não pode ser vazio.")
	}

	// 1. Validação declarativa (intervalos clínicos: idade 0–120, etc.)
	if err := domain.ThyroidSchema.Validate(input, false); err != nil {
		return domain.PredictionResult{}, apperror.NewValidationError(err.Error())
	}

	// 2. Chamada ao modelo externo
	result, err := s.client.Predict(ctx, input)
	if err != nil {
		s.logger.Error("Falha na chamada ao serviço de predição.", err)
		return domain.PredictionResult{}, apperror.NewInternalError("O serviço de predição está indisponível.", err)
	}

	// 3. Histórico. Falha aqui não derruba a resposta: a predição já existe,
	// só avisamos no log que a linha de histórico se perdeu.
	if _, err := s.repo.Save(ctx, domain.PredictionRecord{
		Input:          input,
		Prediction:     result.Prediction,
		RiskPercentage: result.RiskPercentage,
		Confidence:     result.Confidence,
	}); err != nil {
		s.logger.Error("Falha ao gravar histórico de predição.", err)
	}

	return result, nil
}

// History lista as predições mais recentes, da mais nova para a mais antiga.
func (s *Service) History(ctx context.Context, limit int) ([]domain.PredictionRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.repo.FindRecent(ctx, limit)
}
