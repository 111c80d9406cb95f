package repository

import (
	"context"
	"time"

	"github.com/staffdesk/staff-console/internal/domain"
)

// ListActiveUsers returns every user that has not been soft-deleted,
// most recently created first.
func (r *Repository) ListActiveUsers() ([]*domain.User, error) {
	query := `
		SELECT id, name, email, password_hash, role, department, created_at, updated_at
		FROM users
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user := &domain.User{}
		dst := []any{&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.Department, &user.CreatedAt, &user.UpdatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *Repository) GetUserByID(id int64) (*domain.User, error) {
	query := `
		SELECT name, email, password_hash, role, department, created_at, updated_at
		FROM users WHERE id = $1 AND deleted_at IS NULL
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	user := &domain.User{
		ID: id,
	}

	dst := []any{&user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.Department, &user.CreatedAt, &user.UpdatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return user, nil
}

func (r *Repository) GetUserByEmail(email string) (*domain.User, error) {
	query := `
		SELECT id, name, password_hash, role, department, created_at, updated_at
		FROM users WHERE email = $1 AND deleted_at IS NULL
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	user := &domain.User{
		Email: email,
	}

	dst := []any{&user.ID, &user.Name, &user.PasswordHash, &user.Role, &user.Department, &user.CreatedAt, &user.UpdatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, email).Scan(dst...); err != nil {
		return nil, err
	}

	return user, nil
}

// PatchUser merges the non-nil fields of patch into the stored record and
// advances updated_at. A missing or soft-deleted id surfaces sql.ErrNoRows.
func (r *Repository) PatchUser(id int64, patch *domain.UserPatch) (*domain.User, error) {
	query := `
		UPDATE users
		SET
			role = COALESCE($1, role),
			department = COALESCE($2, department),
			updated_at = now()
		WHERE id = $3 AND deleted_at IS NULL
		RETURNING id, name, email, password_hash, role, department, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	user := &domain.User{}

	args := []any{patch.Role, patch.Department, id}
	dst := []any{&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.Department, &user.CreatedAt, &user.UpdatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return nil, err
	}

	return user, nil
}

func (r *Repository) UpdateUserPassword(id int64, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $1, updated_at = now()
		WHERE id = $2 AND deleted_at IS NULL
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, passwordHash, id).Scan(&id); err != nil {
		return err
	}

	return nil
}

func (r *Repository) CreateUser(user *domain.User) error {
	if user.Department == "" {
		user.Department = domain.DefaultDepartment
	}

	query := `
		INSERT INTO users (name, email, password_hash, role, department)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{user.Name, user.Email, user.PasswordHash, user.Role, user.Department}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return err
	}

	return nil
}

// SoftDeleteUser marks the record as deleted; it keeps the row but excludes
// it from every listing. Deleting an already deleted or unknown id surfaces
// sql.ErrNoRows.
func (r *Repository) SoftDeleteUser(id int64) error {
	query := `
		UPDATE users
		SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&id); err != nil {
		return err
	}

	return nil
}

func (r *Repository) CheckEmailIfExists(email string) (bool, error) {
	isExists := false

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND deleted_at IS NULL)
	`
	if err := r.dbpool.QueryRowContext(ctx, query, email).Scan(&isExists); err != nil {
		return false, err
	}

	return isExists, nil
}
