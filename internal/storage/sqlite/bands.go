package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/behalfbot/behalf/internal/models"
)

// createBandAttempts bounds the retry loop on join-code collisions.
const createBandAttempts = 5

// CreateBand inserts a new band. When the band has no ID yet a fresh join
// code is generated; generation retries on the unlikely code collision.
func (s *SQLiteStore) CreateBand(ctx context.Context, band *models.Band) error {
	if band.CreatedAt == 0 {
		band.CreatedAt = time.Now().Unix()
	}

	if band.ID != "" {
		if _, err := s.db.ExecContext(ctx,
			"INSERT INTO bands (id, created_at) VALUES (?, ?)",
			band.ID, band.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to create band: %w", err)
		}
		return nil
	}

	var lastErr error
	for i := 0; i < createBandAttempts; i++ {
		code := newBandCode()
		_, err := s.db.ExecContext(ctx,
			"INSERT INTO bands (id, created_at) VALUES (?, ?)",
			code, band.CreatedAt,
		)
		if err == nil {
			band.ID = code
			return nil
		}
		if !strings.Contains(err.Error(), "UNIQUE") && !strings.Contains(err.Error(), "PRIMARY") {
			return fmt.Errorf("failed to create band: %w", err)
		}
		lastErr = err
	}

	return fmt.Errorf("failed to generate band code after %d attempts: %w", createBandAttempts, lastErr)
}

// GetBand retrieves a band by its join code.
// Returns (nil, nil) when no band has that code.
func (s *SQLiteStore) GetBand(ctx context.Context, bandID string) (*models.Band, error) {
	band := &models.Band{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, created_at FROM bands WHERE id = ?",
		bandID,
	).Scan(&band.ID, &band.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil // Band not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get band: %w", err)
	}

	return band, nil
}

// BandMembers returns the band's members in join order, creator first.
func (s *SQLiteStore) BandMembers(ctx context.Context, bandID string) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, chat_id, name, band_id, created_at FROM users WHERE band_id = ? ORDER BY band_joined_at",
		bandID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get band members: %w", err)
	}
	defer rows.Close()

	var members []*models.User
	for rows.Next() {
		user := &models.User{}
		var memberBandID sql.NullString
		if err := rows.Scan(&user.ID, &user.ChatID, &user.Name, &memberBandID, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan band member: %w", err)
		}
		user.BandID = memberBandID.String
		members = append(members, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate band members: %w", err)
	}

	return members, nil
}
