package userrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"gohub/internal/domain"
	apperror "gohub/internal/errors"
	"gohub/internal/pkg/logger"
)

// Código de erro do PostgreSQL para violação de chave única.
// É a restrição do banco, e não um check-then-insert da aplicação, que
// garante que de dois signups concorrentes com o mesmo e-mail só um vence.
const pqUniqueViolation = "23505"

// UserRepository implementa a interface domain.UserRepository sobre o PostgreSQL.
type UserRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewUserRepository cria uma nova instância do UserRepository, injetando o DB.
func NewUserRepository(db *sql.DB, dbTimeout time.Duration, log logger.Logger) *UserRepository {
	return &UserRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    log,
	}
}

// isDuplicateEmail verifica se o erro do driver é violação do índice único de e-mail.
func isDuplicateEmail(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

// Save insere um novo usuário no banco de dados.
// O ID e os timestamps são atribuídos aqui; o chamador não os controla.
func (r *UserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	user.ID = uuid.NewString()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	const insertSQL = `INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
	                   VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.DB.ExecContext(
		ctxTimeout,
		insertSQL,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isDuplicateEmail(err) {
			r.logger.Debug("Tentativa de cadastro com e-mail já existente.", map[string]interface{}{"email": user.Email})
			return domain.User{}, apperror.NewConflictError(fmt.Sprintf("O email '%s' já está em uso.", user.Email))
		}
		r.logger.Error("Falha ao inserir usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to insert user", err)
	}

	r.logger.Info("Usuário salvo com sucesso no repositório.", map[string]interface{}{"user_id": user.ID})
	return user, nil
}

// FindByEmail busca um usuário pelo endereço de e-mail.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `SELECT id, name, email, password_hash, role, created_at, updated_at
	               FROM users WHERE email = $1`

	return r.scanUser(r.DB.QueryRowContext(ctxTimeout, query, email),
		fmt.Sprintf("Usuário com email '%s' não encontrado.", email))
}

// FindByID busca um usuário pelo identificador.
func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `SELECT id, name, email, password_hash, role, created_at, updated_at
	               FROM users WHERE id = $1`

	return r.scanUser(r.DB.QueryRowContext(ctxTimeout, query, id),
		fmt.Sprintf("Usuário com ID '%s' não encontrado.", id))
}

// scanUser mapeia uma linha para a struct User, traduzindo sql.ErrNoRows para 404.
func (r *UserRepository) scanUser(row *sql.Row, notFoundMsg string) (domain.User, error) {
	var user domain.User

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, apperror.NewNotFoundError(notFoundMsg)
		}
		r.logger.Error("Falha ao buscar usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to find user", err)
	}

	return user, nil
}

// FindAll retorna todos os usuários, em ordem de criação.
func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `SELECT id, name, email, password_hash, role, created_at, updated_at
	               FROM users ORDER BY created_at`

	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		r.logger.Error("Falha ao listar usuários no DB.", err)
		return nil, apperror.NewDBError("failed to list users", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.PasswordHash,
			&user.Role,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, apperror.NewDBError("failed to scan user row", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("failed to iterate user rows", err)
	}

	return users, nil
}

// Update grava os campos mutáveis do usuário. O ID nunca muda.
func (r *UserRepository) Update(ctx context.Context, user domain.User) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const updateSQL = `UPDATE users
	                   SET name = $1, email = $2, password_hash = $3, role = $4, updated_at = $5
	                   WHERE id = $6`

	result, err := r.DB.ExecContext(
		ctxTimeout,
		updateSQL,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		time.Now().UTC(),
		user.ID,
	)

	if err != nil {
		if isDuplicateEmail(err) {
			return apperror.NewConflictError(fmt.Sprintf("O email '%s' já está em uso.", user.Email))
		}
		r.logger.Error("Falha ao atualizar usuário no DB.", err)
		return apperror.NewDBError("failed to update user", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("failed to read rows affected", err)
	}
	if affected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Usuário com ID '%s' não encontrado.", user.ID))
	}

	return nil
}

// Delete remove o usuário permanentemente. ID inexistente é 404, não silêncio.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao remover usuário no DB.", err)
		return apperror.NewDBError("failed to delete user", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("failed to read rows affected", err)
	}
	if affected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Usuário com ID '%s' não encontrado.", id))
	}

	r.logger.Info("Usuário removido do repositório.", map[string]interface{}{"user_id": id})
	return nil
}

// CountByRole conta usuários com um determinado papel (usado na proteção
// contra remoção do último admin).
func (r *UserRepository) CountByRole(ctx context.Context, role domain.UserRole) (int, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var count int
	err := r.DB.QueryRowContext(ctxTimeout, `SELECT COUNT(*) FROM users WHERE role = $1`, role).Scan(&count)
	if err != nil {
		return 0, apperror.NewDBError("failed to count users by role", err)
	}

	return count, nil
}
