package storage

import (
	"database/sql"
	"fmt"
	"time"

	"chartdesk/internal/domain"
)

// UserStore implements domain.UserStore using SQLite.
type UserStore struct {
	db *DB
}

func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) CreateUser(u *domain.User) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	_, err := s.db.conn.Exec(
		`INSERT INTO users (id, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
	)
	return err
}

func (s *UserStore) GetUser(id string) (*domain.User, error) {
	u := &domain.User{}
	err := s.db.conn.QueryRow(
		`SELECT id, email, password_hash, created_at, updated_at FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetUserByEmail(email string) (*domain.User, error) {
	u := &domain.User{}
	err := s.db.conn.QueryRow(
		`SELECT id, email, password_hash, created_at, updated_at FROM users WHERE email = ?`, email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *UserStore) DeleteUser(id string) error {
	_, err := s.db.conn.Exec(`DELETE FROM users WHERE id = ?`, id)
	return err
}
