package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"gohub/internal/domain"
	apperror "gohub/internal/errors"
	"gohub/internal/pkg/logger"
)

// ResourceService define o contrato do controlador CRUD genérico.
type ResourceService interface {
	Schema() domain.Schema
	Create(ctx context.Context, fields map[string]interface{}) (domain.Record, error)
	Get(ctx context.Context, id string) (domain.Record, error)
	List(ctx context.Context, limit int) ([]domain.Record, error)
	Update(ctx context.Context, id string, partial map[string]interface{}) (domain.Record, error)
	Delete(ctx context.Context, id string) error
}

// Handler expõe um recurso genérico em duas rotas: a coleção (GET/POST) e
// o item com ID final (GET/PUT/DELETE). Uma instância por recurso
// registrado; receitas são o primeiro.
type Handler struct {
	Service  ResourceService
	BasePath string // e.g. "/api/recipes"
	Logger   logger.Logger
}

// NewHandler cria o Handler de um recurso, amarrado ao seu caminho base.
func NewHandler(svc ResourceService, basePath string, log logger.Logger) *Handler {
	return &Handler{
		Service:  svc,
		BasePath: basePath,
		Logger:   log,
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
	} else {
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d.", status), map[string]interface{}{"path": r.URL.Path})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	})
}

// CollectionHandler despacha GET (listar) e POST (criar) na rota da coleção.
// @Summary Lista ou cria registros do recurso
// @Description GET aceita ?limit=N; a ordem é a de inserção. POST valida o payload contra o schema declarativo.
// @Tags resources
// @Accept json
// @Produce json
// @Success 200 {array} domain.Record
// @Success 201 {object} domain.Record
// @Failure 400 {object} domain.ErrorResponse "Payload fora do schema"
// @Router /api/recipes [get]
func (h *Handler) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// list lida com GET na coleção, com limite numérico opcional.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("O parâmetro 'limit' deve ser um inteiro não negativo."), http.StatusOK)
			return
		}
		limit = parsed
	}

	records, err := h.Service.List(r.Context(), limit)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, records, nil, http.StatusOK)
}

// create lida com POST na coleção.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var fields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusCreated)
		return
	}

	record, err := h.Service.Create(r.Context(), fields)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	h.handleServiceResponse(w, r, record, nil, http.StatusCreated)
}

// ItemHandler despacha GET, PUT e DELETE em {basePath}/{id}.
// @Summary Busca, atualiza ou remove um registro pelo ID
// @Description PUT mescla apenas os campos enviados; o ID é imutável. DELETE de ID inexistente retorna 404.
// @Tags resources
// @Accept json
// @Produce json
// @Param id path string true "ID do registro"
// @Success 200 {object} domain.Record
// @Failure 400 {object} domain.ErrorResponse "ID ou payload inválido"
// @Failure 404 {object} domain.ErrorResponse "Registro não encontrado"
// @Router /api/recipes/{id} [get]
func (h *Handler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, h.BasePath+"/")
	if id == "" || strings.Contains(id, "/") {
		h.handleServiceResponse(w, r, nil, apperror.NewNotFoundError(fmt.Sprintf("Rota de %s inválida.", h.Service.Schema().Name)), http.StatusOK)
		return
	}

	switch r.Method {
	case http.MethodGet:
		record, err := h.Service.Get(r.Context(), id)
		h.handleServiceResponse(w, r, record, err, http.StatusOK)

	case http.MethodPut:
		var partial map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusOK)
			return
		}
		record, err := h.Service.Update(r.Context(), id, partial)
		h.handleServiceResponse(w, r, record, err, http.StatusOK)

	case http.MethodDelete:
		if err := h.Service.Delete(r.Context(), id); err != nil {
			h.handleServiceResponse(w, r, nil, err, http.StatusOK)
			return
		}
		h.handleServiceResponse(w, r, domain.MessageResponse{Message: "Registro removido com sucesso."}, nil, http.StatusOK)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}
