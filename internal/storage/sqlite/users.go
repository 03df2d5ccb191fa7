package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/behalfbot/behalf/internal/models"
)

// CreateUser inserts a new user into the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, chat_id, name, band_id, band_joined_at, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		user.ID, user.ChatID, user.Name, nullString(user.BandID), nullableJoinTime(user.BandID), user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByChatID retrieves a user by their Telegram chat ID.
// Returns (nil, nil) when the user is not registered yet.
func (s *SQLiteStore) GetUserByChatID(ctx context.Context, chatID int64) (*models.User, error) {
	user := &models.User{}
	var bandID sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT id, chat_id, name, band_id, created_at FROM users WHERE chat_id = ?",
		chatID,
	).Scan(&user.ID, &user.ChatID, &user.Name, &bandID, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by chat ID: %w", err)
	}
	user.BandID = bandID.String

	return user, nil
}

// UpdateUser updates the mutable fields of an existing user. Joining a band
// stamps band_joined_at so members can be listed in join order; leaving
// clears it.
func (s *SQLiteStore) UpdateUser(ctx context.Context, user *models.User) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET name = ?, band_id = ?,
			band_joined_at = CASE
				WHEN ? = '' THEN NULL
				WHEN band_id IS ? THEN band_joined_at
				ELSE ?
			END
		 WHERE id = ?`,
		user.Name, nullString(user.BandID),
		user.BandID, nullString(user.BandID), time.Now().UnixNano(),
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user not found: %s", user.ID)
	}

	return nil
}

// CountUsers returns the total number of registered users.
func (s *SQLiteStore) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// nullString maps an empty string to SQL NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullableJoinTime stamps the join time only when the user is created
// already inside a band (test fixtures do this, the bot itself does not).
func nullableJoinTime(bandID string) any {
	if bandID == "" {
		return nil
	}
	return time.Now().UnixNano()
}
