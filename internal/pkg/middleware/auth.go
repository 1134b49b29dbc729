package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"gohub/internal/domain"
	apperror "gohub/internal/errors"
)

// ContextKey é o tipo da chave usada para armazenar a identidade no contexto.
// Usamos um tipo próprio para garantir que esta chave seja única e não haja
// conflito com chaves string de outros pacotes.
type ContextKey int

const (
	// UserClaimsKey guarda a identidade resolvida da requisição.
	UserClaimsKey ContextKey = iota
)

// SessionCookieName é o nome do cookie que transporta o token de sessão.
const SessionCookieName = "gohub_session"

// UserClaims representa a identidade anexada ao contexto pelo guard de
// autenticação, para uso dos handlers seguintes.
type UserClaims struct {
	UserID string
	Name   string
	Email  string
	Role   domain.UserRole
}

// SessionValidator é o contrato que o guard exige da camada de identidade.
// Ambas as validações reconsultam o usuário no banco: sessões de usuários
// removidos após o login são inválidas.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (domain.User, error)
	ValidateAPIToken(ctx context.Context, tokenString string) (domain.User, error)
}

// Authentication cria o guard "requireAuthenticated": resolve a credencial
// da requisição (cookie de sessão; fallback: Authorization Bearer) e anexa
// a identidade ao contexto. Sem credencial válida, encerra com 401 JSON.
// O guard não tem nenhum outro efeito colateral.
func Authentication(validator SessionValidator) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {

			user, err := resolveIdentity(r, validator)
			if err != nil {
				WriteError(w, apperror.NewUnauthorizedError("Acesso negado. Faça login primeiro."))
				return
			}

			claims := UserClaims{
				UserID: user.ID,
				Name:   user.Name,
				Email:  user.Email,
				Role:   user.Role,
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	}
}

// resolveIdentity tenta o cookie de sessão primeiro e o Bearer token depois.
func resolveIdentity(r *http.Request, validator SessionValidator) (domain.User, error) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return validator.ValidateSession(r.Context(), cookie.Value)
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return validator.ValidateAPIToken(r.Context(), strings.TrimPrefix(authHeader, "Bearer "))
	}

	return domain.User{}, apperror.NewUnauthorizedError("Credencial ausente.")
}

// GetUserClaimsFromContext é uma função utilitária para extrair a identidade no handler.
func GetUserClaimsFromContext(ctx context.Context) (UserClaims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(UserClaims)
	return claims, ok
}

// Permission cria o guard "requireAdmin" (e variações): roda DEPOIS do
// Authentication e encerra com 403 se o papel anexado não estiver na lista.
// O switch sobre domain.UserRole é exaustivo de propósito: um papel novo
// que não for tratado aqui cai no default e é negado.
func Permission(requiredRoles ...domain.UserRole) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {

			claims, ok := GetUserClaimsFromContext(r.Context())
			if !ok {
				// O Authentication não rodou ou não anexou a identidade.
				WriteError(w, apperror.NewUnauthorizedError("Autorização necessária. Sessão não processada."))
				return
			}

			switch claims.Role {
			case domain.RoleAdmin, domain.RoleUser:
				for _, required := range requiredRoles {
					if claims.Role == required {
						next.ServeHTTP(w, r)
						return
					}
				}
			default:
				// Papel desconhecido: nega sempre.
			}

			WriteError(w, apperror.NewForbiddenError("Você não tem a permissão necessária."))
		}
	}
}

// WriteError serializa um AppError no corpo JSON padronizado da API.
// Os guards usam isto para que toda falha, inclusive 401/403, saia como JSON.
func WriteError(w http.ResponseWriter, err apperror.AppError) {
	status, category, message := apperror.MapToHTTPStatus(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	})
}
