package resourceservice

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"gohub/internal/domain"
	apperror "gohub/internal/errors"
	"gohub/internal/pkg/logger"
)

// Limite máximo de itens por listagem (salvaguarda contra limites absurdos).
const maxListLimit = 100

// Service implementa o controlador CRUD genérico de um recurso.
// Cada instância é parametrizada por um domain.Schema: a validação
// declarativa roda aqui, antes de qualquer toque no repositório.
type Service struct {
	schema domain.Schema
	repo   domain.RecordRepository
	logger logger.Logger
}

// NewService cria o serviço CRUD para um schema de recurso.
func NewService(schema domain.Schema, repo domain.RecordRepository, log logger.Logger) *Service {
	return &Service{
		schema: schema,
		repo:   repo,
		logger: log,
	}
}

// Schema expõe o schema atendido (usado pelo handler em mensagens e docs).
func (s *Service) Schema() domain.Schema {
	return s.schema
}

// Create valida o payload completo e persiste um novo registro.
// Payload fora do schema (campo desconhecido, tipo errado, número fora do
// intervalo declarado) nunca chega ao repositório.
func (s *Service) Create(ctx context.Context, fields map[string]interface{}) (domain.Record, error) {
	if fields == nil {
		return domain.Record{}, apperror.NewValidationError("O payload não pode ser vazio.")
	}

	if err := s.schema.Validate(fields, false); err != nil {
		return domain.Record{}, apperror.NewValidationError(err.Error())
	}

	record, err := s.repo.Save(ctx, s.schema, domain.Record{Fields: fields})
	if err != nil {
		return domain.Record{}, err
	}

	s.logger.Debug("Registro criado.", map[string]interface{}{"resource": s.schema.Name, "id": record.ID})
	return record, nil
}

// Get busca um registro pelo ID.
func (s *Service) Get(ctx context.Context, id string) (domain.Record, error) {
	if err := s.checkID(id); err != nil {
		return domain.Record{}, err
	}
	return s.repo.FindByID(ctx, s.schema, id)
}

// List retorna os registros em ordem de inserção.
// limit <= 0 significa "sem limite"; valores acima da salvaguarda são reduzidos.
func (s *Service) List(ctx context.Context, limit int) ([]domain.Record, error) {
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.repo.FindAll(ctx, s.schema, limit)
}

// Update mescla apenas os campos enviados sobre o registro existente e
// revalida o resultado. Uma tentativa de trocar o identificador no payload
// é ignorada: o ID é imutável.
func (s *Service) Update(ctx context.Context, id string, partial map[string]interface{}) (domain.Record, error) {
	if err := s.checkID(id); err != nil {
		return domain.Record{}, err
	}
	if len(partial) == 0 {
		return domain.Record{}, apperror.NewValidationError("O payload de atualização não pode ser vazio.")
	}

	// O payload parcial é validado sozinho (sem exigir obrigatórios)...
	delete(partial, "id")
	if err := s.schema.Validate(partial, true); err != nil {
		return domain.Record{}, apperror.NewValidationError(err.Error())
	}

	record, err := s.repo.FindByID(ctx, s.schema, id)
	if err != nil {
		return domain.Record{}, err
	}

	// ...e mesclado sobre os campos atuais: o que não veio, não muda.
	for name, value := range partial {
		record.Fields[name] = value
	}

	if err := s.repo.Update(ctx, s.schema, record); err != nil {
		return domain.Record{}, err
	}

	s.logger.Debug("Registro atualizado.", map[string]interface{}{"resource": s.schema.Name, "id": id})
	return record, nil
}

// Delete remove o registro permanentemente. ID inexistente é NotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.checkID(id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, s.schema, id); err != nil {
		return err
	}

	s.logger.Debug("Registro removido.", map[string]interface{}{"resource": s.schema.Name, "id": id})
	return nil
}

// checkID valida o formato do identificador antes de ir ao banco.
func (s *Service) checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError(fmt.Sprintf("O ID '%s' não é um UUID válido.", id))
	}
	return nil
}
