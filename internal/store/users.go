package store

import (
	"context"

	"shop-service/internal/models"
)

// CreateUser inserts a user and fills in its ID
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return s.get(ctx, &user.ID,
		"INSERT INTO users (username, password) VALUES (?, ?) RETURNING id",
		user.Username, user.Password)
}

// GetUserByID retrieves a user by ID
func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := s.get(ctx, &user, "SELECT id, username, password FROM users WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.get(ctx, &user, "SELECT id, username, password FROM users WHERE username = ?", username); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes a user row. Carts and orders owned by the user are left in place.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	return s.execOne(ctx, "DELETE FROM users WHERE id = ?", id)
}
