// Package repository implements durable storage over PostgreSQL.
package repository

import (
	"context"
	"fmt"

	"gitlab.com/yelinaung/tally-bot/internal/database"
	"gitlab.com/yelinaung/tally-bot/internal/models"
)

// UserRepository handles user database operations.
type UserRepository struct {
	db database.PGXDB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db database.PGXDB) *UserRepository {
	return &UserRepository{db: db}
}

// EnsureUser creates the user row if it does not exist yet. Idempotent;
// an existing row keeps its role.
func (r *UserRepository) EnsureUser(ctx context.Context, chatID int64, role string) error {
	if role == "" {
		role = models.RoleUser
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (chat_id, role) VALUES ($1, $2)
		ON CONFLICT (chat_id) DO NOTHING
	`, chatID, role)
	if err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}
	return nil
}

// GetByChatID retrieves a user by chat ID.
func (r *UserRepository) GetByChatID(ctx context.Context, chatID int64) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(ctx, `
		SELECT chat_id, role, created_at FROM users WHERE chat_id = $1
	`, chatID).Scan(&user.ChatID, &user.Role, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// ListChatIDs returns every known chat ID, ordered for deterministic
// broadcast delivery.
func (r *UserRepository) ListChatIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT chat_id FROM users ORDER BY chat_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan chat id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat ids: %w", err)
	}
	return ids, nil
}

// ListUsers returns all users ordered by chat ID.
func (r *UserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.Query(ctx, `SELECT chat_id, role, created_at FROM users ORDER BY chat_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ChatID, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}
