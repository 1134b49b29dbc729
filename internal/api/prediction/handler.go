package prediction

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"gohub/internal/domain"
	apperror "gohub/internal/errors"
	"gohub/internal/pkg/logger"
)

// PredictionService define o contrato do proxy de predição.
type PredictionService interface {
	Predict(ctx context.Context, input map[string]interface{}) (domain.PredictionResult, error)
	History(ctx context.Context, limit int) ([]domain.PredictionRecord, error)
}

// Handler agrupa os métodos de Handler do proxy de predição.
type Handler struct {
	Service PredictionService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc PredictionService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse padroniza o tratamento de erros e respostas HTTP.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
			}
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	})
}

// PredictHandler lida com a requisição POST /api/predict.
// @Summary Encaminha um payload clínico ao serviço de predição
// @Description Valida os campos contra os intervalos declarados e repassa ao modelo externo.
// @Tags prediction
// @Accept json
// @Produce json
// @Success 200 {object} domain.PredictionResult
// @Failure 400 {object} domain.ErrorResponse "Campo ausente ou fora do intervalo"
// @Failure 500 {object} domain.ErrorResponse "Serviço de predição indisponível"
// @Router /api/predict [post]
func (h *Handler) PredictHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	var input map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusOK)
		return
	}

	result, err := h.Service.Predict(r.Context(), input)
	h.handleServiceResponse(w, r, result, err, http.StatusOK)
}

// HistoryHandler lida com a requisição GET /api/predict/history.
// @Summary Lista as predições mais recentes
// @Tags prediction
// @Produce json
// @Param limit query int false "Quantidade máxima (padrão 20)"
// @Success 200 {array} domain.PredictionRecord
// @Router /api/predict/history [get]
func (h *Handler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("O parâmetro 'limit' deve ser um inteiro não negativo."), http.StatusOK)
			return
		}
		limit = parsed
	}

	records, err := h.Service.History(r.Context(), limit)
	h.handleServiceResponse(w, r, records, err, http.StatusOK)
}
