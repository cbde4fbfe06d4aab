package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/safar/medstore/internal/database"
	"github.com/safar/medstore/internal/models"
)

type CreateUserParams struct {
	Username     string
	Email        string
	Mobile       string
	PasswordHash string
}

const userColumns = `id, username, email, mobile, password_hash, created_at`

func CreateUser(ctx context.Context, db DBTX, p CreateUserParams) (*models.User, error) {
	var mobile sql.NullString
	if p.Mobile != "" {
		mobile = sql.NullString{String: p.Mobile, Valid: true}
	}

	query := `
		INSERT INTO users (username, email, mobile, password_hash, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING ` + userColumns

	user, err := scanUser(db.QueryRowContext(ctx, query, p.Username, p.Email, mobile, p.PasswordHash))
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// GetUserByEmail resolves a session identity to its user by exact match.
func GetUserByEmail(ctx context.Context, db DBTX, email string) (*models.User, error) {
	return getUserBy(ctx, db, "email = $1", email)
}

// GetUserByLogin matches username, mobile or email.
func GetUserByLogin(ctx context.Context, db DBTX, login string) (*models.User, error) {
	return getUserBy(ctx, db, "username = $1 OR mobile = $1 OR email = $1", login)
}

func getUserBy(ctx context.Context, db DBTX, where string, arg any) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where + ` LIMIT 1`

	user, err := scanUser(db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

func CountUsers(ctx context.Context, db DBTX) (int64, error) {
	var total int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return total, nil
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var mobile sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&mobile,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if mobile.Valid {
		user.Mobile = &mobile.String
	}

	return user, nil
}
