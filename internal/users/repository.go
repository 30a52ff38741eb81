package users

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/joao-fontenele/plantnet-market/internal/domain"
)

const userColumns = `id, email, name, image, role, status, created_at`

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns nil, nil when the user does not exist.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create inserts user unless the email is taken. It reports whether a row
// was inserted.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (bool, error) {
	user.ID = uuid.New().String()

	result, err := r.db.NamedExecContext(ctx, `
		INSERT INTO users (id, email, name, image, role, status, created_at)
		VALUES (:id, :email, :name, :image, :role, :status, :created_at)
		ON CONFLICT (email) DO NOTHING
	`, user)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}

func (r *UserRepository) ListExcept(ctx context.Context, email string) ([]domain.User, error) {
	users := []domain.User{}
	err := r.db.SelectContext(ctx, &users, `
		SELECT `+userColumns+`
		FROM users
		WHERE email <> $1
		ORDER BY created_at DESC
	`, email)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// MarkRequested flips status to Requested unless it already is. It returns
// false when no row changed.
func (r *UserRepository) MarkRequested(ctx context.Context, email string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users SET status = $2
		WHERE email = $1 AND status <> $2
	`, email, domain.UserStatusRequested)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}

// SetRole assigns role and marks the user Verified. It returns false when the
// user does not exist.
func (r *UserRepository) SetRole(ctx context.Context, email string, role domain.Role) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users SET role = $2, status = $3
		WHERE email = $1
	`, email, role, domain.UserStatusVerified)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}
