package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"socialnet/internal/app/db"
	"socialnet/internal/app/user"
	"socialnet/internal/pkg/errs"
	"socialnet/internal/pkg/logx"
)

// UserStore reads and updates the user directory in Postgres. It implements
// chat.UserDirectory. Status updates are last-writer-wins; there is no
// read-modify-write atomicity against concurrent writers.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore returns a UserStore over the given pool.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

// ListAll returns every user in the directory.
func (s *UserStore) ListAll(ctx context.Context) ([]user.User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, first_name, last_name, status, new_messages, picture
		FROM users
	`)
	if err != nil {
		logx.Error(err, "User list failed")
		return nil, errs.NewError(errs.ErrStorage)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Status, &u.NewMessages, &u.Picture); err != nil {
			logx.Error(err, "User row scan failed")
			return nil, errs.NewError(errs.ErrStorage)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		logx.Error(err, "User rows iteration failed")
		return nil, errs.NewError(errs.ErrStorage)
	}

	return users, nil
}

// GetByID returns the user with the given identifier.
func (s *UserStore) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User

	err := s.pool.QueryRow(ctx, `
		SELECT id, first_name, last_name, status, new_messages, picture
		FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Status, &u.NewMessages, &u.Picture)

	if err != nil {
		if db.IsNoRows(err) {
			return user.User{}, errs.NewError(errs.ErrUserNotFound)
		}

		logx.Error(err, "User lookup failed", "user_id", id)
		return user.User{}, errs.NewError(errs.ErrStorage)
	}

	return u, nil
}

// UpdateStatus sets the presence status and unread counter of a user.
func (s *UserStore) UpdateStatus(ctx context.Context, id string, status user.Status, newMessages int) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET status = $2, new_messages = $3 WHERE id = $1
	`, id, status, newMessages)

	if err != nil {
		logx.Error(err, "User status update failed", "user_id", id)
		return errs.NewError(errs.ErrStorage)
	}

	if tag.RowsAffected() == 0 {
		return errs.NewError(errs.ErrUserNotFound)
	}

	return nil
}
