package userservice

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"gohub/internal/domain"
	apperror "gohub/internal/errors"
	"gohub/internal/pkg/logger"
	"gohub/internal/pkg/token"
)

// Mensagem única para qualquer falha de login. Não distinguimos "e-mail
// desconhecido" de "senha errada" para não permitir enumeração de usuários.
const invalidCredentialsMsg = "Credenciais inválidas."

// SessionStore é o contrato que o serviço espera do armazenamento de sessões.
type SessionStore interface {
	Create(ctx context.Context, data domain.SessionData) (string, error)
	Get(ctx context.Context, token string) (domain.SessionData, error)
	Delete(ctx context.Context, token string) error
}

// TokenService é o contrato da camada de token (internal/pkg/token).
type TokenService interface {
	GenerateToken(userID string, userRole domain.UserRole) (string, error)
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// UserService define o serviço de lógica de negócio para identidade e sessões:
// registro, login/logout, validação de credenciais e as operações de admin
// sobre usuários.
type UserService struct {
	UserRepo domain.UserRepository
	Sessions SessionStore
	TokenSvc TokenService
	logger   logger.Logger
}

// NewService cria uma nova instância do UserService, injetando as dependências.
func NewService(repo domain.UserRepository, sessions SessionStore, tokenSvc TokenService, log logger.Logger) *UserService {
	return &UserService{
		UserRepo: repo,
		Sessions: sessions,
		TokenSvc: tokenSvc,
		logger:   log,
	}
}

// LoginResult agrupa o que o login bem-sucedido produz: o usuário, o token
// opaco da sessão (vira cookie) e o JWT para clientes de API.
type LoginResult struct {
	User         domain.User
	SessionToken string
	APIToken     string
}

// Register registra um novo usuário no sistema.
// A senha é guardada apenas como hash bcrypt; o papel inicial é sempre "user"
// e só uma ação explícita de admin pode escalá-lo.
func (s *UserService) Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error) {
	// 1. Validação Básica
	if registration.Name == "" || registration.Email == "" || registration.Password == "" {
		return domain.User{}, apperror.NewValidationError("Nome, email e senha são obrigatórios.")
	}
	if !strings.Contains(registration.Email, "@") {
		return domain.User{}, apperror.NewValidationError("O email informado não é válido.")
	}

	// 2. Hashing da Senha
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registration.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	// 3. Criação do Objeto User
	newUser := domain.User{
		Name:         registration.Name,
		Email:        registration.Email,
		PasswordHash: string(hashedPassword),
		Role:         domain.RoleUser,
	}

	// 4. Persistência. A unicidade do e-mail é o índice único do banco:
	// dois registros concorrentes com o mesmo e-mail resolvem lá, e o
	// perdedor recebe o ConflictError já tipado pelo repositório.
	user, err := s.UserRepo.Save(ctx, newUser)
	if err != nil {
		return domain.User{}, err
	}

	s.logger.Info("Novo usuário registrado.", map[string]interface{}{"user_id": user.ID})
	return user, nil
}

// Login autentica um usuário, abre uma sessão e emite o JWT de API.
func (s *UserService) Login(ctx context.Context, email string, password string) (LoginResult, error) {
	// 1. Validação Básica
	if email == "" || password == "" {
		return LoginResult{}, apperror.NewUnauthorizedError(invalidCredentialsMsg)
	}

	// 2. Buscar Usuário pelo Email
	user, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			// Mesma mensagem do caso "senha errada", de propósito.
			return LoginResult{}, apperror.NewUnauthorizedError(invalidCredentialsMsg)
		}
		return LoginResult{}, err
	}

	// 3. Comparar Senhas (Hashing)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, apperror.NewUnauthorizedError(invalidCredentialsMsg)
	}

	// 4. Abrir a sessão (token opaco no Redis, com TTL)
	sessionToken, err := s.Sessions.Create(ctx, domain.SessionData{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		return LoginResult{}, apperror.NewInternalError("Falha ao criar sessão.", err)
	}

	// 5. Emitir o JWT para clientes programáticos
	apiToken, err := s.TokenSvc.GenerateToken(user.ID, user.Role)
	if err != nil {
		return LoginResult{}, apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	s.logger.Info("Login realizado.", map[string]interface{}{"user_id": user.ID})
	return LoginResult{User: user, SessionToken: sessionToken, APIToken: apiToken}, nil
}

// Logout invalida o token de sessão. Idempotente: repetir não é erro.
func (s *UserService) Logout(ctx context.Context, sessionToken string) error {
	if err := s.Sessions.Delete(ctx, sessionToken); err != nil {
		return apperror.NewInternalError("Falha ao encerrar sessão.", err)
	}
	return nil
}

// ValidateSession resolve um token de sessão para o usuário atual.
// A reconsulta no banco garante que sessões de usuários removidos após o
// login deixam de valer imediatamente; a entrada órfã é descartada.
func (s *UserService) ValidateSession(ctx context.Context, sessionToken string) (domain.User, error) {
	data, err := s.Sessions.Get(ctx, sessionToken)
	if err != nil {
		return domain.User{}, apperror.NewUnauthorizedError("Sessão inválida ou expirada.")
	}

	user, err := s.UserRepo.FindByID(ctx, data.UserID)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			// Usuário sumiu depois do login: sessão órfã, limpa e nega.
			s.Sessions.Delete(ctx, sessionToken)
			return domain.User{}, apperror.NewUnauthorizedError("Sessão inválida ou expirada.")
		}
		return domain.User{}, err
	}

	return user, nil
}

// ValidateAPIToken resolve um Bearer JWT para o usuário atual, com a mesma
// garantia de existência do ValidateSession.
func (s *UserService) ValidateAPIToken(ctx context.Context, tokenString string) (domain.User, error) {
	claims, err := s.TokenSvc.ValidateToken(tokenString)
	if err != nil {
		return domain.User{}, apperror.NewUnauthorizedError("Token inválido ou expirado.")
	}

	user, err := s.UserRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			return domain.User{}, apperror.NewUnauthorizedError("Token inválido ou expirado.")
		}
		return domain.User{}, err
	}

	return user, nil
}

// ListUsers retorna todos os usuários (rota de admin).
// O hash de senha nunca sai daqui serializado: a struct usa `json:"-"`.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.UserRepo.FindAll(ctx)
}

// UpdateUser aplica um update parcial de admin sobre o usuário alvo.
// Apenas os campos presentes no payload mudam; o ID é imutável.
func (s *UserService) UpdateUser(ctx context.Context, id string, update domain.UserUpdate) (domain.User, error) {
	user, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if update.Name != nil {
		if *update.Name == "" {
			return domain.User{}, apperror.NewValidationError("O nome não pode ser vazio.")
		}
		user.Name = *update.Name
	}

	if update.Email != nil {
		if !strings.Contains(*update.Email, "@") {
			return domain.User{}, apperror.NewValidationError("O email informado não é válido.")
		}
		user.Email = *update.Email
	}

	if update.Password != nil {
		if *update.Password == "" {
			return domain.User{}, apperror.NewValidationError("A senha não pode ser vazia.")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*update.Password), bcrypt.DefaultCost)
		if err != nil {
			return domain.User{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
		}
		user.PasswordHash = string(hashed)
	}

	if update.Role != nil {
		if !update.Role.IsValid() {
			return domain.User{}, apperror.NewValidationError("Papel de usuário desconhecido.")
		}
		// Rebaixar o último admin deixaria o sistema sem administração.
		if user.Role == domain.RoleAdmin && *update.Role != domain.RoleAdmin {
			if err := s.ensureNotLastAdmin(ctx); err != nil {
				return domain.User{}, err
			}
		}
		user.Role = *update.Role
	}

	if err := s.UserRepo.Update(ctx, user); err != nil {
		return domain.User{}, err
	}

	s.logger.Info("Usuário atualizado por admin.", map[string]interface{}{"user_id": user.ID})
	return user, nil
}

// DeleteUser remove o usuário alvo permanentemente.
// Remover o último admin é recusado com 409: um sistema sem nenhum admin
// não tem como se recuperar pela própria API.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	user, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if user.Role == domain.RoleAdmin {
		if err := s.ensureNotLastAdmin(ctx); err != nil {
			return err
		}
	}

	if err := s.UserRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Usuário removido por admin.", map[string]interface{}{"user_id": id})
	return nil
}

// ensureNotLastAdmin falha com ConflictError se restar apenas um admin.
func (s *UserService) ensureNotLastAdmin(ctx context.Context) error {
	count, err := s.UserRepo.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if count <= 1 {
		return apperror.NewConflictError("Não é possível remover ou rebaixar o último administrador.")
	}
	return nil
}
