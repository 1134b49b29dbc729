package resourceservice_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gohub/internal/domain"
	apperror "gohub/internal/errors"
	"gohub/internal/pkg/logger"
	"gohub/internal/service/resourceservice"
)

// MockRecordRepository é uma implementação mock de domain.RecordRepository.
type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) Save(ctx context.Context, schema domain.Schema, record domain.Record) (domain.Record, error) {
	args := m.Called(ctx, schema, record)
	return args.Get(0).(domain.Record), args.Error(1)
}

func (m *MockRecordRepository) FindByID(ctx context.Context, schema domain.Schema, id string) (domain.Record, error) {
	args := m.Called(ctx, schema, id)
	return args.Get(0).(domain.Record), args.Error(1)
}

func (m *MockRecordRepository) FindAll(ctx context.Context, schema domain.Schema, limit int) ([]domain.Record, error) {
	args := m.Called(ctx, schema, limit)
	return args.Get(0).([]domain.Record), args.Error(1)
}

func (m *MockRecordRepository) Update(ctx context.Context, schema domain.Schema, record domain.Record) error {
	args := m.Called(ctx, schema, record)
	return args.Error(0)
}

func (m *MockRecordRepository) Delete(ctx context.Context, schema domain.Schema, id string) error {
	args := m.Called(ctx, schema, id)
	return args.Error(0)
}

const recordID = "7f2c8a3e-1b4d-4e5f-9a6b-0c1d2e3f4a5b"

func newRecipeService(repo *MockRecordRepository) *resourceservice.Service {
	return resourceservice.NewService(domain.RecipeSchema, repo, logger.NewLogger("error"))
}

// TestCreate_Success verifica o caminho feliz de criação.
func TestCreate_Success(t *testing.T) {
	mockRepo := new(MockRecordRepository)
	svc := newRecipeService(mockRepo)

	fields := map[string]interface{}{
		"name":        "Feijoada",
		"ingredients": []interface{}{"feijão", "carne"},
		"time":        float64(120),
	}
	mockRepo.On("Save", mock.Anything, mock.Anything, mock.MatchedBy(func(r domain.Record) bool {
		return r.Fields["name"] == "Feijoada"
	})).Return(domain.Record{ID: recordID, Fields: fields}, nil)

	record, err := svc.Create(context.Background(), fields)

	assert.NoError(t, err)
	assert.Equal(t, recordID, record.ID)
	mockRepo.AssertExpectations(t)
}

// TestCreate_MissingRequired verifica que um payload sem o campo
// obrigatório é rejeitado antes de chegar ao repositório.
func TestCreate_MissingRequired(t *testing.T) {
	mockRepo := new(MockRecordRepository)
	svc := newRecipeService(mockRepo)

	_, err := svc.Create(context.Background(), map[string]interface{}{
		"description": "sem nome",
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

// TestCreate_NumberOutOfRange verifica os limites numéricos declarados
// no schema (tempo de preparo entre 1 e 1440 minutos).
func TestCreate_NumberOutOfRange(t *testing.T) {
	mockRepo := new(MockRecordRepository)
	svc := newRecipeService(mockRepo)

	for _, badTime := range []float64{0, 2000} {
		_, err := svc.Create(context.Background(), map[string]interface{}{
			"name": "Feijoada",
			"time": badTime,
		})

		assert.Error(t, err)
		assert.IsType(t, &apperror.ValidationError{}, err)
	}
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

// TestCreate_UnknownField verifica a rejeição de campo fora do schema.
func TestCreate_UnknownField(t *testing.T) {
	mockRepo := new(MockRecordRepository)
	svc := newRecipeService(mockRepo)

	_, err := svc.Create(context.Background(), map[string]interface{}{
		"name":    "Feijoada",
		"inédito": true,
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

// TestCreate_EmptyPayload verifica que payload nulo é 400, não pânico.
func TestCreate_EmptyPayload(t *testing.T) {
	svc := newRecipeService(new(MockRecordRepository))

	_, err := svc.Create(context.Background(), nil)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
}

// TestUpdate_MergesOnlyGivenFields verifica que o update parcial muda
// apenas os campos enviados e preserva o restante.
func TestUpdate_MergesOnlyGivenFields(t *testing.T) {
	mockRepo := new(MockRecordRepository)
	svc := newRecipeService(mockRepo)

	stored := domain.Record{ID: recordID, Fields: map[string]interface{}{
		"name":        "Feijoada",
		"description": "original",
		"time":        float64(120),
	}}
	mockRepo.On("FindByID", mock.Anything, mock.Anything, recordID).Return(stored, nil)
	mockRepo.On("Update", mock.Anything, mock.Anything, mock.MatchedBy(func(r domain.Record) bool {
		return r.Fields["description"] == "atualizada" &&
			r.Fields["name"] == "Feijoada" &&
			r.Fields["time"] == float64(120)
	})).Return(nil)

	record, err := svc.Update(context.Background(), recordID, map[string]interface{}{
		"description": "atualizada",
	})

	assert.NoError(t, err)
	assert.Equal(t, "atualizada", record.Fields["description"])
	assert.Equal(t, "Feijoada", record.Fields["name"])
	mockRepo.AssertExpectations(t)
}

// TestUpdate_IDImmutable verifica que trocar o "id" no payload é ignorado.
func TestUpdate_IDImmutable(t *testing.T) {
	mockRepo := new(MockRecordRepository)
	svc := newRecipeService(mockRepo)

	stored := domain.Record{ID: recordID, Fields: map[string]interface{}{"name": "Feijoada"}}
	mockRepo.On("FindByID", mock.Anything, mock.Anything, recordID).Return(stored, nil)
	mockRepo.On("Update", mock.Anything, mock.Anything, mock.MatchedBy(func(r domain.Record) bool {
		_, hasID := r.Fields["id"]
		return r.ID == recordID && !hasID
	})).Return(nil)

	record, err := svc.Update(context.Background(), recordID, map[string]interface{}{
		"id":   "outro-id",
		"name": "Moqueca",
	})

	assert.NoError(t, err)
	assert.Equal(t, recordID, record.ID)
	mockRepo.AssertExpectations(t)
}

// TestUpdate_NotFound verifica que o NotFound do repositório é propagado.
func TestUpdate_NotFound(t *testing.T) {
	mockRepo := new(MockRecordRepository)
	svc := newRecipeService(mockRepo)

	mockRepo.On("FindByID", mock.Anything, mock.Anything, recordID).
		Return(domain.Record{}, apperror.NewNotFoundError("Registro não encontrado."))

	_, err := svc.Update(context.Background(), recordID, map[string]interface{}{"name": "X"})

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

// TestGet_InvalidID verifica a checagem de formato do UUID.
func TestGet_InvalidID(t *testing.T) {
	mockRepo := new(MockRecordRepository)
	svc := newRecipeService(mockRepo)

	_, err := svc.Get(context.Background(), "não-é-uuid")

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything, mock.Anything)
}

// TestList_LimitSafeguard verifica que limites acima do teto são reduzidos.
func TestList_LimitSafeguard(t *testing.T) {
	mockRepo := new(MockRecordRepository)
	svc := newRecipeService(mockRepo)

	mockRepo.On("FindAll", mock.Anything, mock.Anything, 100).
		Return([]domain.Record{}, nil)

	_, err := svc.List(context.Background(), 500)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

// TestDelete_NotFound verifica que remover um ID inexistente é NotFound.
func TestDelete_NotFound(t *testing.T) {
	mockRepo := new(MockRecordRepository)
	svc := newRecipeService(mockRepo)

	mockRepo.On("Delete", mock.Anything, mock.Anything, recordID).
		Return(apperror.NewNotFoundError("Registro não encontrado."))

	err := svc.Delete(context.Background(), recordID)

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
}
