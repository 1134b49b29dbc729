package user

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"gohub/internal/domain"
	apperror "gohub/internal/errors"
	"gohub/internal/pkg/logger"
	"gohub/internal/pkg/middleware"
	"gohub/internal/service/userservice"
)

// UserService define o contrato que o Handler espera da camada de identidade.
type UserService interface {
	Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error)
	Login(ctx context.Context, email string, password string) (userservice.LoginResult, error)
	Logout(ctx context.Context, sessionToken string) error
}

// LoginRequest representa o payload de entrada para o login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Handler agrupa os métodos de Handler de autenticação e do dashboard.
type Handler struct {
	Service    UserService
	SessionTTL time.Duration
	Logger     logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
// O TTL da sessão define o MaxAge do cookie.
func NewHandler(svc UserService, sessionTTL time.Duration, log logger.Logger) *Handler {
	return &Handler{
		Service:    svc,
		SessionTTL: sessionTTL,
		Logger:     log,
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

	// Mapeamento de Erros de Negócio para Status HTTP
	status, category, message := apperror.MapToHTTPStatus(err)

	// Log apenas de erros graves
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

// SignupHandler lida com a requisição POST /api/auth/signup.
// @Summary Registra um novo usuário
// @Description Cria um novo usuário com papel "user", hasheia a senha e salva no banco.
// @Tags auth
// @Accept json
// @Produce json
// @Param registration body domain.UserRegistration true "Credenciais de registro (nome, email e senha)"
// @Success 201 {object} domain.MessageResponse "Usuário criado com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 409 {object} domain.ErrorResponse "Email já cadastrado"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /api/auth/signup [post]
func (h *Handler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	var reg domain.UserRegistration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusCreated)
		return
	}

	if _, err := h.Service.Register(ctx, reg); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	h.handleServiceResponse(w, r, domain.MessageResponse{Message: "Usuário registrado com sucesso."}, nil, http.StatusCreated)
}

// LoginHandler lida com a requisição POST /api/auth/login.
// No sucesso, grava o cookie de sessão (HttpOnly) e devolve também o JWT
// para clientes programáticos.
// @Summary Autentica um usuário
// @Description Verifica as credenciais, abre uma sessão (cookie) e emite um JWT de API.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body LoginRequest true "Credenciais do usuário (email e senha)"
// @Success 200 {object} map[string]interface{} "Sessão aberta; cookie gravado"
// @Failure 401 {object} domain.ErrorResponse "Credenciais inválidas"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /api/auth/login [post]
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	var loginReq LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusOK)
		return
	}

	result, err := h.Service.Login(ctx, loginReq.Email, loginReq.Password)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	// Cookie de sessão: a credencial do navegador. HttpOnly para o script
	// da página não conseguir lê-la.
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    result.SessionToken,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.SessionTTL.Seconds()),
	})

	response := map[string]interface{}{
		"message": "Login realizado com sucesso.",
		"token":   result.APIToken,
		"user": map[string]interface{}{
			"name":  result.User.Name,
			"email": result.User.Email,
			"role":  result.User.Role,
		},
	}
	h.handleServiceResponse(w, r, response, nil, http.StatusOK)
}

// LogoutHandler lida com a requisição POST /api/auth/logout (autenticado).
// Invalida a sessão no Redis e expira o cookie. Idempotente.
// @Summary Encerra a sessão atual
// @Tags auth
// @Produce json
// @Success 200 {object} domain.MessageResponse "Sessão encerrada"
// @Failure 401 {object} domain.ErrorResponse "Sessão ausente ou inválida"
// @Router /api/auth/logout [post]
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		if err := h.Service.Logout(ctx, cookie.Value); err != nil {
			h.handleServiceResponse(w, r, nil, err, http.StatusOK)
			return
		}
	}

	// Expira o cookie no navegador.
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	h.handleServiceResponse(w, r, domain.MessageResponse{Message: "Logout realizado com sucesso."}, nil, http.StatusOK)
}

// DashboardHandler lida com a requisição GET /api/users/dashboard (autenticado).
// A identidade vem do contexto, anexada pelo guard de autenticação.
// @Summary Dashboard do usuário autenticado
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{} "Identidade da sessão atual"
// @Failure 401 {object} domain.ErrorResponse "Sessão ausente ou inválida"
// @Router /api/users/dashboard [get]
func (h *Handler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Sessão não processada."), http.StatusOK)
		return
	}

	response := map[string]interface{}{
		"message": "Bem-vindo ao seu dashboard.",
		"user": map[string]interface{}{
			"id":    claims.UserID,
			"name":  claims.Name,
			"email": claims.Email,
			"role":  claims.Role,
		},
	}
	h.handleServiceResponse(w, r, response, nil, http.StatusOK)
}
