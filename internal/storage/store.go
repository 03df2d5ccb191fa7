// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/behalfbot/behalf/internal/models"
)

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the band manager or the dispatcher.
type Store interface {
	// CreateUser persists a new user. The ID and CreatedAt fields are
	// populated by the store when empty.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByChatID retrieves a user by their transport chat handle.
	// Returns (nil, nil) when no such user exists.
	GetUserByChatID(ctx context.Context, chatID int64) (*models.User, error)

	// UpdateUser updates the mutable fields of an existing user
	// (Name, BandID).
	UpdateUser(ctx context.Context, user *models.User) error

	// CountUsers returns the total number of registered users.
	CountUsers(ctx context.Context) (int, error)

	// CreateBand persists a new band. The ID (join code) and CreatedAt are
	// populated by the store when empty.
	CreateBand(ctx context.Context, band *models.Band) error

	// GetBand retrieves a band by its join code.
	// Returns (nil, nil) when no such band exists.
	GetBand(ctx context.Context, bandID string) (*models.Band, error)

	// BandMembers returns the band's members ordered by join time,
	// creator first. An empty slice means the band is orphaned.
	BandMembers(ctx context.Context, bandID string) ([]*models.User, error)

	// CreateTransaction persists a new transaction. The ID and CreatedAt
	// fields are populated by the store when empty.
	CreateTransaction(ctx context.Context, tx *models.Transaction) error

	// LastTransactionsByBand returns up to limit transactions of the band,
	// newest first.
	LastTransactionsByBand(ctx context.Context, bandID string, limit int) ([]*models.Transaction, error)

	// BandBalance returns the signed balance of the given user inside the
	// band: the sum of amounts credited to them minus the sum credited to
	// anyone else. Positive means the partner owes them.
	BandBalance(ctx context.Context, bandID, userID string) (float64, error)

	// Close releases any resources held by the store.
	Close() error
}
