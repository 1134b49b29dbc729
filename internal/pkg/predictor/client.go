package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"gohub/internal/domain"
)

// Client define o contrato do serviço externo de predição.
// O modelo é uma caixa-preta: mandamos um JSON plano de campos clínicos e
// recebemos a predição pronta. Nenhuma lógica de modelo vive deste lado.
type Client interface {
	Predict(ctx context.Context, input map[string]interface{}) (domain.PredictionResult, error)
}

// HTTPClient é a implementação concreta sobre HTTP.
type HTTPClient struct {
	endpoint string
	client   *http.Client
}

// NewHTTPClient cria o cliente apontando para o endpoint configurado.
// Uma única tentativa por chamada: falha transitória vira erro para o
// chamador, que decide se tenta de novo.
func NewHTTPClient(endpoint string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Predict envia o payload validado e decodifica a resposta do modelo.
func (c *HTTPClient) Predict(ctx context.Context, input map[string]interface{}) (domain.PredictionResult, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return domain.PredictionResult{}, fmt.Errorf("falha ao serializar payload de predição: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.PredictionResult{}, fmt.Errorf("falha ao montar requisição de predição: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.PredictionResult{}, fmt.Errorf("falha ao chamar o serviço de predição: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.PredictionResult{}, fmt.Errorf("serviço de predição respondeu com status %d", resp.StatusCode)
	}

	var result domain.PredictionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return domain.PredictionResult{}, fmt.Errorf("falha ao decodificar resposta de predição: %w", err)
	}

	return result, nil
}
