package predictionservice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gohub/internal/domain"
	apperror "gohub/internal/errors"
	"gohub/internal/pkg/logger"
	"gohub/internal/service/predictionservice"
)

// MockPredictorClient é uma implementação mock do cliente do modelo externo.
type MockPredictorClient struct {
	mock.Mock
}

func (m *MockPredictorClient) Predict(ctx context.Context, input map[string]interface{}) (domain.PredictionResult, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(domain.PredictionResult), args.Error(1)
}

// MockPredictionRepository é uma implementação mock do histórico.
type MockPredictionRepository struct {
	mock.Mock
}

func (m *MockPredictionRepository) Save(ctx context.Context, record domain.PredictionRecord) (domain.PredictionRecord, error) {
	args := m.Called(ctx, record)
	return args.Get(0).(domain.PredictionRecord), args.Error(1)
}

func (m *MockPredictionRepository) FindRecent(ctx context.Context, limit int) ([]domain.PredictionRecord, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.PredictionRecord), args.Error(1)
}

// validInput monta um payload clínico completo e dentro dos intervalos.
func validInput() map[string]interface{} {
	return map[string]interface{}{
		"Age":                 float64(45),
		"Family_History":      float64(1),
		"Radiation_Exposure":  float64(0),
		"Iodine_Deficiency":   float64(0),
		"Smoking":             float64(0),
		"Obesity":             float64(1),
		"Diabetes":            float64(0),
		"TSH_Level":           float64(2.5),
		"T3_Level":            float64(1.8),
		"T4_Level":            float64(8.0),
		"Nodule_Size":         float64(1.2),
		"Thyroid_Cancer_Risk": float64(30),
		"Gender_Male":         float64(0),
	}
}

// TestPredict_Success verifica o fluxo completo: validação, modelo e histórico.
func TestPredict_Success(t *testing.T) {
	mockClient := new(MockPredictorClient)
	mockRepo := new(MockPredictionRepository)
	svc := predictionservice.NewService(mockClient, mockRepo, logger.NewLogger("error"))

	input := validInput()
	want := domain.PredictionResult{Prediction: "Benign", RiskPercentage: 12.5, Confidence: "high"}
	mockClient.On("Predict", mock.Anything, input).Return(want, nil)
	mockRepo.On("Save", mock.Anything, mock.MatchedBy(func(r domain.PredictionRecord) bool {
		return r.Prediction == "Benign" && r.RiskPercentage == 12.5
	})).Return(domain.PredictionRecord{ID: "p1"}, nil)

	result, err := svc.Predict(context.Background(), input)

	assert.NoError(t, err)
	assert.Equal(t, want, result)
	mockClient.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

// TestPredict_OutOfRange verifica que idade fora do intervalo declarado
// nunca chega ao serviço externo.
func TestPredict_OutOfRange(t *testing.T) {
	mockClient := new(MockPredictorClient)
	svc := predictionservice.NewService(mockClient, new(MockPredictionRepository), logger.NewLogger("error"))

	input := validInput()
	input["Age"] = float64(200)

	_, err := svc.Predict(context.Background(), input)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockClient.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything)
}

// TestPredict_MissingField verifica a exigência de payload clínico completo.
func TestPredict_MissingField(t *testing.T) {
	mockClient := new(MockPredictorClient)
	svc := predictionservice.NewService(mockClient, new(MockPredictionRepository), logger.NewLogger("error"))

	input := validInput()
	delete(input, "TSH_Level")

	_, err := svc.Predict(context.Background(), input)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockClient.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything)
}

// TestPredict_ModelDown verifica que falha do modelo vira erro interno.
func TestPredict_ModelDown(t *testing.T) {
	mockClient := new(MockPredictorClient)
	mockRepo := new(MockPredictionRepository)
	svc := predictionservice.NewService(mockClient, mockRepo, logger.NewLogger("error"))

	mockClient.On("Predict", mock.Anything, mock.Anything).
		Return(domain.PredictionResult{}, errors.New("connection refused"))

	_, err := svc.Predict(context.Background(), validInput())

	assert.Error(t, err)
	assert.IsType(t, &apperror.InternalError{}, err)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// TestPredict_HistoryFailureDoesNotBlock verifica que perder a linha de
// histórico não derruba a resposta da predição.
func TestPredict_HistoryFailureDoesNotBlock(t *testing.T) {
	mockClient := new(MockPredictorClient)
	mockRepo := new(MockPredictionRepository)
	svc := predictionservice.NewService(mockClient, mockRepo, logger.NewLogger("error"))

	want := domain.PredictionResult{Prediction: "Malignant", RiskPercentage: 82}
	mockClient.On("Predict", mock.Anything, mock.Anything).Return(want, nil)
	mockRepo.On("Save", mock.Anything, mock.Anything).
		Return(domain.PredictionRecord{}, errors.New("db down"))

	result, err := svc.Predict(context.Background(), validInput())

	assert.NoError(t, err)
	assert.Equal(t, want, result)
}

// TestHistory_Limits verifica o limite padrão e o teto da listagem.
func TestHistory_Limits(t *testing.T) {
	mockRepo := new(MockPredictionRepository)
	svc := predictionservice.NewService(new(MockPredictorClient), mockRepo, logger.NewLogger("error"))

	mockRepo.On("FindRecent", mock.Anything, 20).Return([]domain.PredictionRecord{}, nil).Once()
	mockRepo.On("FindRecent", mock.Anything, 100).Return([]domain.PredictionRecord{}, nil).Once()

	_, err := svc.History(context.Background(), 0)
	assert.NoError(t, err)

	_, err = svc.History(context.Background(), 999)
	assert.NoError(t, err)

	mockRepo.AssertExpectations(t)
}
