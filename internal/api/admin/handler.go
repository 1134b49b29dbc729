package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"gohub/internal/domain"
	apperror "gohub/internal/errors"
	"gohub/internal/pkg/logger"
)

// Prefixo das rotas de item (/api/admin/users/{id}).
const usersPathPrefix = "/api/admin/users/"

// AdminService define o contrato das operações de administração de usuários.
type AdminService interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUser(ctx context.Context, id string, update domain.UserUpdate) (domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// Handler agrupa os métodos de Handler das rotas de admin.
// Todas as rotas deste Handler são protegidas por Authentication + Permission(admin)
// no roteador; aqui só entra requisição de admin.
type Handler struct {
	Service AdminService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc AdminService, log logger.Logger) *Handler {
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

// ListUsersHandler lida com a requisição GET /api/admin/users.
// @Summary Lista todos os usuários
// @Description Retorna todos os usuários cadastrados. O hash de senha nunca é serializado.
// @Tags admin
// @Produce json
// @Success 200 {array} domain.User
// @Failure 401 {object} domain.ErrorResponse "Sessão ausente ou inválida"
// @Failure 403 {object} domain.ErrorResponse "Sessão válida sem papel de admin"
// @Router /api/admin/users [get]
func (h *Handler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	users, err := h.Service.ListUsers(r.Context())
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, users, nil, http.StatusOK)
}

// UserByIDHandler despacha PUT e DELETE em /api/admin/users/{id}.
// O roteamento é por segmento exato com um único parâmetro final de ID,
// extraído aqui do path.
func (h *Handler) UserByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, usersPathPrefix)
	if id == "" || strings.Contains(id, "/") {
		h.handleServiceResponse(w, r, nil, apperror.NewNotFoundError("Rota de usuário inválida."), http.StatusOK)
		return
	}

	switch r.Method {
	case http.MethodPut:
		h.updateUser(w, r, id)
	case http.MethodDelete:
		h.deleteUser(w, r, id)
	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// updateUser lida com PUT /api/admin/users/{id}.
// @Summary Atualiza um usuário (parcial)
// @Description Aplica apenas os campos enviados (nome, email, senha, papel). O ID é imutável.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "ID do usuário"
// @Param update body domain.UserUpdate true "Campos a atualizar"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 404 {object} domain.ErrorResponse "Usuário não encontrado"
// @Failure 409 {object} domain.ErrorResponse "Email em uso ou último admin"
// @Router /api/admin/users/{id} [put]
func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request, id string) {
	var update domain.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusOK)
		return
	}

	user, err := h.Service.UpdateUser(r.Context(), id, update)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	response := map[string]interface{}{
		"message": "Usuário atualizado com sucesso.",
		"user":    user,
	}
	h.handleServiceResponse(w, r, response, nil, http.StatusOK)
}

// deleteUser lida com DELETE /api/admin/users/{id}.
// @Summary Remove um usuário
// @Description Remoção permanente. Remover o último administrador é recusado.
// @Tags admin
// @Produce json
// @Param id path string true "ID do usuário"
// @Success 200 {object} domain.MessageResponse
// @Failure 404 {object} domain.ErrorResponse "Usuário não encontrado"
// @Failure 409 {object} domain.ErrorResponse "Último administrador"
// @Router /api/admin/users/{id} [delete]
func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.Service.DeleteUser(r.Context(), id); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, domain.MessageResponse{Message: "Usuário removido com sucesso."}, nil, http.StatusOK)
}
