package router

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"gohub/internal/api/admin"
	"gohub/internal/api/prediction"
	"gohub/internal/api/resource"
	"gohub/internal/api/user"
	"gohub/internal/domain"
	"gohub/internal/pkg/cache"
	"gohub/internal/pkg/middleware"
)

// RateLimitOptions agrupa os parâmetros do limitador global.
type RateLimitOptions struct {
	MaxRequests int
	Period      time.Duration
}

// NewRouter configura e retorna o roteador HTTP principal.
// A tabela de rotas é estática: (método, caminho) → cadeia de guards →
// operação do controlador. Os guards encadeiam da esquerda para a direita:
// auth roda antes de adminOnly, e qualquer um deles pode encerrar a
// requisição com seu próprio status e corpo JSON.
func NewRouter(
	userHandler *user.Handler,
	adminHandler *admin.Handler,
	recipeHandler *resource.Handler,
	predictionHandler *prediction.Handler,
	validator middleware.SessionValidator,
	cacheClient cache.Client,
	rateLimit RateLimitOptions,
) http.Handler {

	// Usamos o ServeMux padrão do net/http para roteamento
	mux := http.NewServeMux()

	auth := middleware.Authentication(validator)
	adminOnly := middleware.Permission(domain.RoleAdmin)

	// --- 1. Health Check ---
	mux.HandleFunc("/ping", PingHandler)

	// --- 2. Autenticação (públicas) ---
	mux.HandleFunc("/api/auth/signup", userHandler.SignupHandler)
	mux.HandleFunc("/api/auth/login", userHandler.LoginHandler)
	mux.HandleFunc("/api/auth/logout", auth(userHandler.LogoutHandler))

	// --- 3. Dashboard (requer sessão) ---
	mux.HandleFunc("/api/users/dashboard", auth(userHandler.DashboardHandler))

	// --- 4. Administração de usuários (requer sessão + papel admin) ---
	mux.HandleFunc("/api/admin/users", auth(adminOnly(adminHandler.ListUsersHandler)))
	mux.HandleFunc("/api/admin/users/", auth(adminOnly(adminHandler.UserByIDHandler)))

	// --- 5. Receitas (CRUD público) ---
	mux.HandleFunc("/api/recipes", recipeHandler.CollectionHandler)
	mux.HandleFunc("/api/recipes/", recipeHandler.ItemHandler)

	// --- 6. Proxy de predição ---
	mux.HandleFunc("/api/predict", predictionHandler.PredictHandler)
	mux.HandleFunc("/api/predict/history", predictionHandler.HistoryHandler)

	// --- 7. Documentação (Swagger UI) ---
	mux.Handle("/swagger/", httpSwagger.Handler())

	// Middleware global: rate limiting por IP sobre o mux inteiro.
	return middleware.RateLimiter(cacheClient, rateLimit.MaxRequests, rateLimit.Period)(mux)
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
