package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gohub/internal/domain"
	"gohub/internal/pkg/cache"
)

// ErrSessionNotFound é retornado quando o token não existe ou já expirou.
var ErrSessionNotFound = errors.New("sessão não encontrada ou expirada")

// Prefixo das chaves de sessão no Redis.
const sessionKeyPrefix = "session:"

// Tamanho do token em bytes antes da codificação base64 (256 bits).
const tokenBytes = 32

// Store define o contrato do armazenamento de sessões.
// O token é uma credencial opaca: não carrega informação nenhuma, é só a
// chave de uma entrada {user_id, role} com TTL.
type Store interface {
	Create(ctx context.Context, data domain.SessionData) (string, error)
	Get(ctx context.Context, token string) (domain.SessionData, error)
	Delete(ctx context.Context, token string) error
	TTL() time.Duration
}

// RedisStore implementa Store sobre o cache.Client compartilhado.
// O TTL do Redis é o ciclo de vida inteiro da sessão: nada de limpeza
// em background, a chave simplesmente expira.
type RedisStore struct {
	cache cache.Client
	ttl   time.Duration
}

// NewRedisStore cria o armazenamento de sessões com o TTL configurado.
func NewRedisStore(cacheClient cache.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		cache: cacheClient,
		ttl:   ttl,
	}
}

// Create gera um token opaco imprevisível e grava a sessão sob ele.
func (s *RedisStore) Create(ctx context.Context, data domain.SessionData) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", fmt.Errorf("falha ao gerar token de sessão: %w", err)
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("falha ao serializar dados da sessão: %w", err)
	}

	if err := s.cache.Set(ctx, sessionKeyPrefix+token, payload, s.ttl); err != nil {
		return "", fmt.Errorf("falha ao gravar sessão: %w", err)
	}

	return token, nil
}

// Get resolve um token para os dados de sessão gravados no login.
func (s *RedisStore) Get(ctx context.Context, token string) (domain.SessionData, error) {
	if token == "" {
		return domain.SessionData{}, ErrSessionNotFound
	}

	raw, err := s.cache.Get(ctx, sessionKeyPrefix+token)
	if err == cache.ErrCacheMiss {
		return domain.SessionData{}, ErrSessionNotFound
	}
	if err != nil {
		return domain.SessionData{}, fmt.Errorf("falha ao ler sessão: %w", err)
	}

	var data domain.SessionData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		// Entrada corrompida equivale a sessão inexistente.
		return domain.SessionData{}, ErrSessionNotFound
	}

	return data, nil
}

// Delete invalida o token. Idempotente: apagar duas vezes não é erro.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.cache.Delete(ctx, sessionKeyPrefix+token)
}

// TTL expõe a duração da sessão (usada para o MaxAge do cookie).
func (s *RedisStore) TTL() time.Duration {
	return s.ttl
}

// newToken gera um token aleatório com crypto/rand, codificado em base64 URL-safe.
func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
