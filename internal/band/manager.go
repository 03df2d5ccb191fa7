// Package band enforces the pairing and bookkeeping rules of a two-person
// expense band: create/join/leave and transaction creation, over a
// storage.Store injected at construction.
package band

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/behalfbot/behalf/internal/models"
	"github.com/behalfbot/behalf/internal/storage"
)

// maxMembers is the hard cap on band size.
const maxMembers = 2

// Manager owns the band membership rules and the ledger bookkeeping.
type Manager struct {
	store storage.Store

	// mu serializes membership mutations so two concurrent joins cannot
	// both pass the full-band check before either writes. Single-process
	// scope is enough: the bot handles updates from one polling loop.
	mu sync.Mutex
}

// NewManager creates a Manager with the given storage backend.
func NewManager(store storage.Store) *Manager {
	return &Manager{store: store}
}

// CreateBand creates a new band with user as its sole member.
// Returns AlreadyInBandError carrying the existing band when the user is in
// one already.
func (m *Manager) CreateBand(ctx context.Context, user *models.User) (*models.Band, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user.InBand() {
		existing, err := m.store.GetBand(ctx, user.BandID)
		if err != nil {
			return nil, fmt.Errorf("load existing band: %w", err)
		}
		if existing != nil {
			return nil, &AlreadyInBandError{Band: existing}
		}
		// Dangling band reference, fall through and repair by creating
		// a fresh band.
		slog.Warn("User references missing band", "user_id", user.ID, "band_id", user.BandID)
	}

	band := &models.Band{}
	if err := m.store.CreateBand(ctx, band); err != nil {
		return nil, fmt.Errorf("create band: %w", err)
	}

	user.BandID = band.ID
	if err := m.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("attach creator to band: %w", err)
	}

	slog.Info("Band created", "band_id", band.ID, "user_id", user.ID)
	return band, nil
}

// JoinBand adds user as the second member of the band with the given join
// code. Fails with ErrBandNotExist, AlreadyInBandError or ErrBandFull.
func (m *Manager) JoinBand(ctx context.Context, code string, user *models.User) (*models.Band, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user.InBand() {
		existing, err := m.store.GetBand(ctx, user.BandID)
		if err != nil {
			return nil, fmt.Errorf("load existing band: %w", err)
		}
		if existing != nil {
			return nil, &AlreadyInBandError{Band: existing}
		}
		slog.Warn("User references missing band", "user_id", user.ID, "band_id", user.BandID)
	}

	band, err := m.store.GetBand(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("load band: %w", err)
	}
	if band == nil {
		return nil, ErrBandNotExist
	}

	members, err := m.store.BandMembers(ctx, band.ID)
	if err != nil {
		return nil, fmt.Errorf("load band members: %w", err)
	}
	if len(members) >= maxMembers {
		return nil, ErrBandFull
	}

	user.BandID = band.ID
	if err := m.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("attach member to band: %w", err)
	}

	slog.Info("User joined band", "band_id", band.ID, "user_id", user.ID)
	return band, nil
}

// LeaveBand removes user from their band and returns the updated user.
// The band row is kept even when it ends up empty: its code stays valid and
// a future join can revive it. Fails with ErrNotInBand.
func (m *Manager) LeaveBand(ctx context.Context, user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !user.InBand() {
		return nil, ErrNotInBand
	}

	bandID := user.BandID
	user.BandID = ""
	if err := m.store.UpdateUser(ctx, user); err != nil {
		user.BandID = bandID
		return nil, fmt.Errorf("detach user from band: %w", err)
	}

	slog.Info("User left band", "band_id", bandID, "user_id", user.ID)
	return user, nil
}

// CreateTransaction records a halved expense credited to user. The caller is
// responsible for halving the raw amount before calling. Fails with
// ErrNotInBand or ErrNoPartner.
func (m *Manager) CreateTransaction(ctx context.Context, user *models.User, halfAmount float64, comment string) (*models.Transaction, error) {
	if !user.InBand() {
		return nil, ErrNotInBand
	}

	partner, err := m.Partner(ctx, user)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, ErrNoPartner
	}

	tx := &models.Transaction{
		BandID:  user.BandID,
		UserID:  user.ID,
		Amount:  halfAmount,
		Comment: comment,
	}
	if err := m.store.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	slog.Info("Transaction created",
		"band_id", tx.BandID,
		"user_id", tx.UserID,
		"amount", tx.Amount,
	)
	return tx, nil
}

// Partner resolves the other member of the user's band. Returns (nil, nil)
// when the user is solo and ErrNotInBand when they have no band at all.
func (m *Manager) Partner(ctx context.Context, user *models.User) (*models.User, error) {
	if !user.InBand() {
		return nil, ErrNotInBand
	}

	members, err := m.store.BandMembers(ctx, user.BandID)
	if err != nil {
		return nil, fmt.Errorf("load band members: %w", err)
	}
	for _, member := range members {
		if member.ID != user.ID {
			return member, nil
		}
	}
	return nil, nil
}

// Balance returns the user's signed balance: positive means the partner
// owes them, negative means they owe the partner. Fails with ErrNotInBand.
func (m *Manager) Balance(ctx context.Context, user *models.User) (float64, error) {
	if !user.InBand() {
		return 0, ErrNotInBand
	}

	balance, err := m.store.BandBalance(ctx, user.BandID, user.ID)
	if err != nil {
		return 0, fmt.Errorf("compute balance: %w", err)
	}
	return balance, nil
}

// History returns up to limit transactions of the user's band, newest
// first. Fails with ErrNotInBand.
func (m *Manager) History(ctx context.Context, user *models.User, limit int) ([]*models.Transaction, error) {
	if !user.InBand() {
		return nil, ErrNotInBand
	}

	txs, err := m.store.LastTransactionsByBand(ctx, user.BandID, limit)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return txs, nil
}
