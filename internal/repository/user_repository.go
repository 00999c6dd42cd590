package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"simple-chats/internal/domain/user"
	chats_errors "simple-chats/pkg/errors"

	sq "github.com/Masterminds/squirrel"
)

// filterableUserColumns is the whitelist of columns the REST layer may
// filter on. Email is filterable but never exposed in list payloads.
var filterableUserColumns = map[string]bool{
	"user_id":  true,
	"username": true,
	"email":    true,
	"name":     true,
}

type SQLUserRepository struct {
	db     DBTX
	driver string
}

func NewUserRepository(db DBTX, driver string) UserRepository {
	return &SQLUserRepository{db: db, driver: driver}
}

func (r *SQLUserRepository) Create(ctx context.Context, u *user.User) error {
	if u.DateJoined.IsZero() {
		u.DateJoined = time.Now().UTC()
	}
	query := rebind(r.driver,
		"INSERT INTO users (username, email, name, password_hash, date_joined) VALUES (?, ?, ?, ?, ?) RETURNING user_id")
	err := r.db.QueryRowContext(ctx, query,
		u.Username, u.Email, u.Name, u.PasswordHash, u.DateJoined).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return chats_errors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *SQLUserRepository) GetByID(ctx context.Context, id int64) (user.User, error) {
	return r.getOne(ctx, "user_id = ?", id)
}

func (r *SQLUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, "email = ?", email)
}

func (r *SQLUserRepository) GetByUsername(ctx context.Context, username string) (user.User, error) {
	return r.getOne(ctx, "username = ?", username)
}

func (r *SQLUserRepository) getOne(ctx context.Context, where string, arg interface{}) (user.User, error) {
	var u user.User
	query := rebind(r.driver,
		"SELECT user_id, username, email, name, password_hash, date_joined FROM users WHERE "+where)
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.Name, &u.PasswordHash, &u.DateJoined)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, chats_errors.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *SQLUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := rebind(r.driver, "UPDATE users SET password_hash = ? WHERE user_id = ?")
	res, err := r.db.ExecContext(ctx, query, passwordHash, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return chats_errors.ErrNotFound
	}
	return nil
}

// List returns users matching the given column filters. Unknown filter
// keys are ignored rather than rejected, matching the REST contract of
// arbitrary query params.
func (r *SQLUserRepository) List(ctx context.Context, filters map[string]string) ([]user.User, error) {
	builder := sq.Select("user_id", "username", "email", "name", "date_joined").
		From("users").
		OrderBy("user_id")
	for column, value := range filters {
		if filterableUserColumns[column] {
			builder = builder.Where(sq.Eq{column: value})
		}
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, rebind(r.driver, query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Name, &u.DateJoined); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *SQLUserRepository) Search(ctx context.Context, query string) ([]user.User, error) {
	stmt := rebind(r.driver,
		"SELECT user_id, username, email, name, date_joined FROM users WHERE username LIKE ? OR name LIKE ? ORDER BY username LIMIT 10")
	pattern := "%" + query + "%"
	rows, err := r.db.QueryContext(ctx, stmt, pattern, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Name, &u.DateJoined); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
