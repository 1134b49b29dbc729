package resourcerepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gohub/internal/domain"
	apperror "gohub/internal/errors"
	"gohub/internal/pkg/cache"
	"gohub/internal/pkg/logger"
)

// RecordRepository implementa domain.RecordRepository sobre o PostgreSQL,
// com leitura Cache-Aside no Redis. Ele é genérico: o schema do recurso
// (nome + tabela) chega por parâmetro em cada operação, e o mapa de campos
// é persistido como JSONB.
//
// O nome da tabela vem do Schema declarado na inicialização do processo,
// nunca de entrada do cliente, por isso a interpolação é segura.
type RecordRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewRecordRepository cria e retorna uma nova instância do Repositório.
func NewRecordRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, log logger.Logger) *RecordRepository {
	return &RecordRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    log,
	}
}

// cacheKey monta a chave de cache de um registro: "<recurso>:<id>".
func cacheKey(schema domain.Schema, id string) string {
	return fmt.Sprintf("%s:%s", schema.Name, id)
}

// Save persiste um novo registro. O ID é atribuído aqui e imutável depois.
func (r *RecordRepository) Save(ctx context.Context, schema domain.Schema, record domain.Record) (domain.Record, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	record.ID = uuid.NewString()
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now

	fieldsJSON, err := json.Marshal(record.Fields)
	if err != nil {
		return domain.Record{}, apperror.NewInternalError("Falha ao serializar campos do registro.", err)
	}

	insertSQL := fmt.Sprintf(
		`INSERT INTO %s (id, fields, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		schema.Table,
	)

	if _, err := r.DB.ExecContext(ctxTimeout, insertSQL, record.ID, fieldsJSON, record.CreatedAt, record.UpdatedAt); err != nil {
		r.logger.Error("Falha ao inserir registro no DB.", err)
		return domain.Record{}, apperror.NewDBError("failed to insert record", err)
	}

	return record, nil
}

// FindByID busca um registro pelo ID, utilizando a estratégia Cache-Aside.
func (r *RecordRepository) FindByID(ctx context.Context, schema domain.Schema, id string) (domain.Record, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := cacheKey(schema, id)
	var record domain.Record

	// 1. Tentar obter do Cache (Redis)
	cachedData, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		// Cache HIT: se a desserialização falhar, seguimos para o DB.
		if json.Unmarshal([]byte(cachedData), &record) == nil {
			return record, nil
		}
	} else if err != cache.ErrCacheMiss {
		// Erro real de cache (conexão perdida): avisa e segue para o DB.
		r.logger.Warn("Falha ao ler do cache, seguindo para o DB.", map[string]interface{}{"key": key})
	}

	// 2. Busca no Banco de Dados (PostgreSQL)
	query := fmt.Sprintf(`SELECT id, fields, created_at, updated_at FROM %s WHERE id = $1`, schema.Table)

	var fieldsJSON []byte
	err = r.DB.QueryRowContext(ctxTimeout, query, id).Scan(
		&record.ID,
		&fieldsJSON,
		&record.CreatedAt,
		&record.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return domain.Record{}, apperror.NewNotFoundError(fmt.Sprintf("Registro de %s com ID '%s' não existe.", schema.Name, id))
	}
	if err != nil {
		return domain.Record{}, apperror.NewDBError("failed to find record", err)
	}

	if err := json.Unmarshal(fieldsJSON, &record.Fields); err != nil {
		return domain.Record{}, apperror.NewInternalError("Falha ao desserializar campos do registro.", err)
	}

	// 3. Popular o cache para futuras requisições.
	if recordJSON, marshalErr := json.Marshal(record); marshalErr == nil {
		r.Cache.Set(ctxTimeout, key, recordJSON, r.CacheTTL)
	}

	return record, nil
}

// FindAll lista os registros em ordem de inserção, com limite opcional (>0).
func (r *RecordRepository) FindAll(ctx context.Context, schema domain.Schema, limit int) ([]domain.Record, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := fmt.Sprintf(`SELECT id, fields, created_at, updated_at FROM %s ORDER BY created_at`, schema.Table)

	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = r.DB.QueryContext(ctxTimeout, query+` LIMIT $1`, limit)
	} else {
		rows, err = r.DB.QueryContext(ctxTimeout, query)
	}
	if err != nil {
		r.logger.Error("Falha ao listar registros no DB.", err)
		return nil, apperror.NewDBError("failed to list records", err)
	}
	defer rows.Close()

	records := []domain.Record{}
	for rows.Next() {
		var record domain.Record
		var fieldsJSON []byte
		if err := rows.Scan(&record.ID, &fieldsJSON, &record.CreatedAt, &record.UpdatedAt); err != nil {
			return nil, apperror.NewDBError("failed to scan record row", err)
		}
		if err := json.Unmarshal(fieldsJSON, &record.Fields); err != nil {
			return nil, apperror.NewInternalError("Falha ao desserializar campos do registro.", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("failed to iterate record rows", err)
	}

	return records, nil
}

// Update grava os campos já mesclados pela camada de serviço e invalida o cache.
func (r *RecordRepository) Update(ctx context.Context, schema domain.Schema, record domain.Record) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	fieldsJSON, err := json.Marshal(record.Fields)
	if err != nil {
		return apperror.NewInternalError("Falha ao serializar campos do registro.", err)
	}

	updateSQL := fmt.Sprintf(`UPDATE %s SET fields = $1, updated_at = $2 WHERE id = $3`, schema.Table)

	result, err := r.DB.ExecContext(ctxTimeout, updateSQL, fieldsJSON, time.Now().UTC(), record.ID)
	if err != nil {
		r.logger.Error("Falha ao atualizar registro no DB.", err)
		return apperror.NewDBError("failed to update record", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("failed to read rows affected", err)
	}
	if affected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Registro de %s com ID '%s' não existe.", schema.Name, record.ID))
	}

	// Invalidação: a próxima leitura repopula o cache a partir do DB.
	r.Cache.Delete(ctxTimeout, cacheKey(schema, record.ID))

	return nil
}

// Delete remove o registro permanentemente e invalida o cache.
// Remoção de ID inexistente é 404, para o cliente saber o que aconteceu.
func (r *RecordRepository) Delete(ctx context.Context, schema domain.Schema, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	deleteSQL := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, schema.Table)

	result, err := r.DB.ExecContext(ctxTimeout, deleteSQL, id)
	if err != nil {
		r.logger.Error("Falha ao remover registro no DB.", err)
		return apperror.NewDBError("failed to delete record", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("failed to read rows affected", err)
	}
	if affected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Registro de %s com ID '%s' não existe.", schema.Name, id))
	}

	r.Cache.Delete(ctxTimeout, cacheKey(schema, id))

	return nil
}
