package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/behalfbot/behalf/internal/models"
)

// CreateTransaction persists a new transaction to the database.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.CreatedAt == 0 {
		tx.CreatedAt = time.Now().UnixNano()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO transactions (id, band_id, user_id, amount, comment, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		tx.ID, tx.BandID, tx.UserID, tx.Amount, tx.Comment, tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// LastTransactionsByBand returns up to limit transactions of the band,
// newest first.
func (s *SQLiteStore) LastTransactionsByBand(ctx context.Context, bandID string, limit int) ([]*models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, band_id, user_id, amount, comment, created_at FROM transactions WHERE band_id = ? ORDER BY created_at DESC LIMIT ?",
		bandID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	defer rows.Close()

	var txs []*models.Transaction
	for rows.Next() {
		tx := &models.Transaction{}
		if err := rows.Scan(&tx.ID, &tx.BandID, &tx.UserID, &tx.Amount, &tx.Comment, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txs, nil
}

// BandBalance computes the signed balance of userID inside the band:
// credited amounts count positive, the partner's count negative. The sum
// nets to zero across the two members for every transaction.
func (s *SQLiteStore) BandBalance(ctx context.Context, bandID, userID string) (float64, error) {
	var balance float64
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(CASE WHEN user_id = ? THEN amount ELSE -amount END), 0) FROM transactions WHERE band_id = ?",
		userID, bandID,
	).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("failed to compute balance: %w", err)
	}

	return balance, nil
}
