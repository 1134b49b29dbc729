package userservice_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"gohub/internal/domain"
	apperror "gohub/internal/errors"
	"gohub/internal/pkg/logger"
	"gohub/internal/pkg/token"
	"gohub/internal/service/userservice"
)

// MockUserRepository é uma implementação mock da interface domain.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) CountByRole(ctx context.Context, role domain.UserRole) (int, error) {
	args := m.Called(ctx, role)
	return args.Int(0), args.Error(1)
}

// MockSessionStore é uma implementação mock do armazenamento de sessões.
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Create(ctx context.Context, data domain.SessionData) (string, error) {
	args := m.Called(ctx, data)
	return args.String(0), args.Error(1)
}

func (m *MockSessionStore) Get(ctx context.Context, tok string) (domain.SessionData, error) {
	args := m.Called(ctx, tok)
	return args.Get(0).(domain.SessionData), args.Error(1)
}

func (m *MockSessionStore) Delete(ctx context.Context, tok string) error {
	args := m.Called(ctx, tok)
	return args.Error(0)
}

// MockTokenService é uma implementação mock do serviço de JWT.
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateToken(userID string, userRole domain.UserRole) (string, error) {
	args := m.Called(userID, userRole)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) ValidateToken(tokenString string) (*token.CustomClaims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*token.CustomClaims), args.Error(1)
}

func newService(repo *MockUserRepository, sessions *MockSessionStore, tokens *MockTokenService) *userservice.UserService {
	return userservice.NewService(repo, sessions, tokens, logger.NewLogger("error"))
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	assert.NoError(t, err)
	return string(hash)
}

// TestRegister_Success verifica que o usuário nasce com papel "user" e
// senha guardada apenas como hash.
func TestRegister_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo, new(MockSessionStore), new(MockTokenService))

	mockRepo.On("Save", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.Role == domain.RoleUser &&
			u.Email == "alina@x.com" &&
			u.PasswordHash != "pw123" &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("pw123")) == nil
	})).Return(domain.User{ID: "u1", Name: "Alina", Email: "alina@x.com", Role: domain.RoleUser}, nil)

	user, err := svc.Register(context.Background(), domain.UserRegistration{
		Name:     "Alina",
		Email:    "alina@x.com",
		Password: "pw123",
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
	mockRepo.AssertExpectations(t)
}

// TestRegister_MissingFields verifica a validação básica do payload.
func TestRegister_MissingFields(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo, new(MockSessionStore), new(MockTokenService))

	_, err := svc.Register(context.Background(), domain.UserRegistration{Email: "a@x.com"})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// TestRegister_DuplicateEmail verifica que o conflito do índice único do
// banco chega ao chamador como 409.
func TestRegister_DuplicateEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo, new(MockSessionStore), new(MockTokenService))

	mockRepo.On("Save", mock.Anything, mock.Anything).
		Return(domain.User{}, apperror.NewConflictError("O email 'a@x.com' já está em uso."))

	_, err := svc.Register(context.Background(), domain.UserRegistration{
		Name:     "Alina",
		Email:    "a@x.com",
		Password: "pw123",
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
}

// TestLogin_Success verifica a abertura de sessão e a emissão do JWT.
func TestLogin_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockSessions := new(MockSessionStore)
	mockTokens := new(MockTokenService)
	svc := newService(mockRepo, mockSessions, mockTokens)

	stored := domain.User{ID: "u1", Email: "a@x.com", PasswordHash: hashOf(t, "pw123"), Role: domain.RoleUser}
	mockRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(stored, nil)
	mockSessions.On("Create", mock.Anything, domain.SessionData{UserID: "u1", Role: domain.RoleUser}).
		Return("opaque-token", nil)
	mockTokens.On("GenerateToken", "u1", domain.RoleUser).Return("jwt-token", nil)

	result, err := svc.Login(context.Background(), "a@x.com", "pw123")

	assert.NoError(t, err)
	assert.Equal(t, "opaque-token", result.SessionToken)
	assert.Equal(t, "jwt-token", result.APIToken)
	assert.Equal(t, "u1", result.User.ID)
	mockSessions.AssertExpectations(t)
}

// TestLogin_GenericFailure verifica que e-mail desconhecido e senha errada
// produzem exatamente o mesmo erro (sem enumeração de usuários).
func TestLogin_GenericFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo, new(MockSessionStore), new(MockTokenService))

	mockRepo.On("FindByEmail", mock.Anything, "ghost@x.com").
		Return(domain.User{}, apperror.NewNotFoundError("não existe"))
	mockRepo.On("FindByEmail", mock.Anything, "a@x.com").
		Return(domain.User{ID: "u1", Email: "a@x.com", PasswordHash: hashOf(t, "certa")}, nil)

	_, errUnknown := svc.Login(context.Background(), "ghost@x.com", "qualquer")
	_, errWrongPw := svc.Login(context.Background(), "a@x.com", "errada")

	assert.Error(t, errUnknown)
	assert.Error(t, errWrongPw)
	assert.IsType(t, &apperror.UnauthorizedError{}, errUnknown)
	assert.IsType(t, &apperror.UnauthorizedError{}, errWrongPw)
	assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
}

// TestValidateSession_UserDeleted verifica que a sessão de um usuário
// removido após o login é inválida e descartada.
func TestValidateSession_UserDeleted(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockSessions := new(MockSessionStore)
	svc := newService(mockRepo, mockSessions, new(MockTokenService))

	mockSessions.On("Get", mock.Anything, "tok").
		Return(domain.SessionData{UserID: "u1", Role: domain.RoleUser}, nil)
	mockRepo.On("FindByID", mock.Anything, "u1").
		Return(domain.User{}, apperror.NewNotFoundError("não existe"))
	mockSessions.On("Delete", mock.Anything, "tok").Return(nil)

	_, err := svc.ValidateSession(context.Background(), "tok")

	assert.Error(t, err)
	assert.IsType(t, &apperror.UnauthorizedError{}, err)
	mockSessions.AssertCalled(t, "Delete", mock.Anything, "tok")
}

// TestValidateSession_Success verifica o caminho feliz.
func TestValidateSession_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockSessions := new(MockSessionStore)
	svc := newService(mockRepo, mockSessions, new(MockTokenService))

	mockSessions.On("Get", mock.Anything, "tok").
		Return(domain.SessionData{UserID: "u1", Role: domain.RoleAdmin}, nil)
	mockRepo.On("FindByID", mock.Anything, "u1").
		Return(domain.User{ID: "u1", Role: domain.RoleAdmin}, nil)

	user, err := svc.ValidateSession(context.Background(), "tok")

	assert.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)
}

// TestLogout_Idempotent verifica que encerrar duas vezes não é erro.
func TestLogout_Idempotent(t *testing.T) {
	mockSessions := new(MockSessionStore)
	svc := newService(new(MockUserRepository), mockSessions, new(MockTokenService))

	mockSessions.On("Delete", mock.Anything, "tok").Return(nil).Twice()

	assert.NoError(t, svc.Logout(context.Background(), "tok"))
	assert.NoError(t, svc.Logout(context.Background(), "tok"))
	mockSessions.AssertExpectations(t)
}

// TestDeleteUser_LastAdmin verifica a proteção contra remover o último admin.
func TestDeleteUser_LastAdmin(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo, new(MockSessionStore), new(MockTokenService))

	mockRepo.On("FindByID", mock.Anything, "u1").
		Return(domain.User{ID: "u1", Role: domain.RoleAdmin}, nil)
	mockRepo.On("CountByRole", mock.Anything, domain.RoleAdmin).Return(1, nil)

	err := svc.DeleteUser(context.Background(), "u1")

	assert.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
	mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// TestDeleteUser_Success verifica a remoção de um usuário comum.
func TestDeleteUser_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo, new(MockSessionStore), new(MockTokenService))

	mockRepo.On("FindByID", mock.Anything, "u2").
		Return(domain.User{ID: "u2", Role: domain.RoleUser}, nil)
	mockRepo.On("Delete", mock.Anything, "u2").Return(nil)

	assert.NoError(t, svc.DeleteUser(context.Background(), "u2"))
	mockRepo.AssertExpectations(t)
}

// TestUpdateUser_PartialFields verifica que só os campos enviados mudam.
func TestUpdateUser_PartialFields(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo, new(MockSessionStore), new(MockTokenService))

	stored := domain.User{ID: "u1", Name: "Antigo", Email: "a@x.com", Role: domain.RoleUser}
	mockRepo.On("FindByID", mock.Anything, "u1").Return(stored, nil)
	mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.Name == "Novo" && u.Email == "a@x.com" && u.Role == domain.RoleUser
	})).Return(nil)

	newName := "Novo"
	user, err := svc.UpdateUser(context.Background(), "u1", domain.UserUpdate{Name: &newName})

	assert.NoError(t, err)
	assert.Equal(t, "Novo", user.Name)
	assert.Equal(t, "a@x.com", user.Email)
	mockRepo.AssertExpectations(t)
}

// TestUpdateUser_DemoteLastAdmin verifica que rebaixar o último admin é recusado.
func TestUpdateUser_DemoteLastAdmin(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo, new(MockSessionStore), new(MockTokenService))

	mockRepo.On("FindByID", mock.Anything, "u1").
		Return(domain.User{ID: "u1", Role: domain.RoleAdmin}, nil)
	mockRepo.On("CountByRole", mock.Anything, domain.RoleAdmin).Return(1, nil)

	newRole := domain.RoleUser
	_, err := svc.UpdateUser(context.Background(), "u1", domain.UserUpdate{Role: &newRole})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
