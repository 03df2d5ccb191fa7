package band

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/behalfbot/behalf/internal/models"
	"github.com/behalfbot/behalf/internal/storage"
	"github.com/behalfbot/behalf/internal/storage/sqlite"
)

func setupManager(t *testing.T) (*Manager, storage.Store) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return NewManager(store), store
}

func newUser(t *testing.T, store storage.Store, chatID int64, name string) *models.User {
	t.Helper()

	user := &models.User{ChatID: chatID, Name: name}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("Failed to create user %s: %v", name, err)
	}
	return user
}

func TestCreateBand(t *testing.T) {
	m, store := setupManager(t)
	ctx := context.Background()
	alice := newUser(t, store, 1, "alice")

	band, err := m.CreateBand(ctx, alice)
	if err != nil {
		t.Fatalf("CreateBand failed: %v", err)
	}
	if band.ID == "" {
		t.Fatal("Expected a join code to be generated")
	}
	if alice.BandID != band.ID {
		t.Errorf("Creator BandID = %q, want %q", alice.BandID, band.ID)
	}

	members, err := store.BandMembers(ctx, band.ID)
	if err != nil {
		t.Fatalf("BandMembers failed: %v", err)
	}
	if len(members) != 1 || members[0].ID != alice.ID {
		t.Errorf("Expected alice as sole member, got %v", members)
	}

	t.Run("second create fails with the existing band attached", func(t *testing.T) {
		_, err := m.CreateBand(ctx, alice)
		var already *AlreadyInBandError
		if !errors.As(err, &already) {
			t.Fatalf("Expected AlreadyInBandError, got %v", err)
		}
		if already.Band.ID != band.ID {
			t.Errorf("Carried band = %q, want %q", already.Band.ID, band.ID)
		}
	})
}

func TestJoinBand(t *testing.T) {
	ctx := context.Background()

	t.Run("second member joins", func(t *testing.T) {
		m, store := setupManager(t)
		alice := newUser(t, store, 1, "alice")
		bob := newUser(t, store, 2, "bob")
		band, _ := m.CreateBand(ctx, alice)

		got, err := m.JoinBand(ctx, band.ID, bob)
		if err != nil {
			t.Fatalf("JoinBand failed: %v", err)
		}
		if got.ID != band.ID {
			t.Errorf("Joined band = %q, want %q", got.ID, band.ID)
		}

		members, err := store.BandMembers(ctx, band.ID)
		if err != nil {
			t.Fatalf("BandMembers failed: %v", err)
		}
		if len(members) != 2 {
			t.Fatalf("Expected 2 members, got %d", len(members))
		}
		// Creator first, joiner second.
		if members[0].ID != alice.ID || members[1].ID != bob.ID {
			t.Errorf("Members out of join order: %s, %s", members[0].Name, members[1].Name)
		}
	})

	t.Run("unknown code", func(t *testing.T) {
		m, store := setupManager(t)
		bob := newUser(t, store, 2, "bob")

		if _, err := m.JoinBand(ctx, "NOPE1234", bob); !errors.Is(err, ErrBandNotExist) {
			t.Errorf("Expected ErrBandNotExist, got %v", err)
		}
	})

	t.Run("full band", func(t *testing.T) {
		m, store := setupManager(t)
		alice := newUser(t, store, 1, "alice")
		bob := newUser(t, store, 2, "bob")
		carol := newUser(t, store, 3, "carol")
		band, _ := m.CreateBand(ctx, alice)
		if _, err := m.JoinBand(ctx, band.ID, bob); err != nil {
			t.Fatalf("JoinBand failed: %v", err)
		}

		if _, err := m.JoinBand(ctx, band.ID, carol); !errors.Is(err, ErrBandFull) {
			t.Errorf("Expected ErrBandFull, got %v", err)
		}
		members, _ := store.BandMembers(ctx, band.ID)
		if len(members) != 2 {
			t.Errorf("Full band mutated: %d members", len(members))
		}
	})

	t.Run("joiner already in a band", func(t *testing.T) {
		m, store := setupManager(t)
		alice := newUser(t, store, 1, "alice")
		bob := newUser(t, store, 2, "bob")
		m.CreateBand(ctx, alice)
		other, _ := m.CreateBand(ctx, bob)

		_, err := m.JoinBand(ctx, alice.BandID, bob)
		var already *AlreadyInBandError
		if !errors.As(err, &already) {
			t.Fatalf("Expected AlreadyInBandError, got %v", err)
		}
		if already.Band.ID != other.ID {
			t.Errorf("Carried band = %q, want %q", already.Band.ID, other.ID)
		}
	})
}

func TestLeaveBand(t *testing.T) {
	ctx := context.Background()

	t.Run("leaving keeps the band joinable", func(t *testing.T) {
		m, store := setupManager(t)
		alice := newUser(t, store, 1, "alice")
		bob := newUser(t, store, 2, "bob")
		band, _ := m.CreateBand(ctx, alice)

		updated, err := m.LeaveBand(ctx, alice)
		if err != nil {
			t.Fatalf("LeaveBand failed: %v", err)
		}
		if updated.InBand() {
			t.Error("User should no longer be in a band")
		}

		// The orphaned band is not reaped; its code can be joined again.
		if _, err := m.JoinBand(ctx, band.ID, bob); err != nil {
			t.Errorf("Join into orphaned band failed: %v", err)
		}
	})

	t.Run("not in a band", func(t *testing.T) {
		m, store := setupManager(t)
		alice := newUser(t, store, 1, "alice")

		if _, err := m.LeaveBand(ctx, alice); !errors.Is(err, ErrNotInBand) {
			t.Errorf("Expected ErrNotInBand, got %v", err)
		}
	})
}

func TestCreateTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("records the halved amount for the credited user", func(t *testing.T) {
		m, store := setupManager(t)
		alice := newUser(t, store, 1, "alice")
		bob := newUser(t, store, 2, "bob")
		band, _ := m.CreateBand(ctx, alice)
		m.JoinBand(ctx, band.ID, bob)

		tx, err := m.CreateTransaction(ctx, alice, 100, "lunch")
		if err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}
		if tx.Amount != 100 {
			t.Errorf("Amount = %v, want the value passed in (caller halves)", tx.Amount)
		}
		if tx.UserID != alice.ID || tx.BandID != band.ID {
			t.Errorf("Transaction attribution wrong: user=%s band=%s", tx.UserID, tx.BandID)
		}
		if tx.Comment != "lunch" {
			t.Errorf("Comment = %q, want lunch", tx.Comment)
		}
	})

	t.Run("without a band", func(t *testing.T) {
		m, store := setupManager(t)
		alice := newUser(t, store, 1, "alice")

		if _, err := m.CreateTransaction(ctx, alice, 50, ""); !errors.Is(err, ErrNotInBand) {
			t.Errorf("Expected ErrNotInBand, got %v", err)
		}
	})

	t.Run("without a partner", func(t *testing.T) {
		m, store := setupManager(t)
		alice := newUser(t, store, 1, "alice")
		m.CreateBand(ctx, alice)

		if _, err := m.CreateTransaction(ctx, alice, 50, ""); !errors.Is(err, ErrNoPartner) {
			t.Errorf("Expected ErrNoPartner, got %v", err)
		}
	})
}

func TestBalance(t *testing.T) {
	m, store := setupManager(t)
	ctx := context.Background()
	alice := newUser(t, store, 1, "alice")
	bob := newUser(t, store, 2, "bob")
	band, _ := m.CreateBand(ctx, alice)
	m.JoinBand(ctx, band.ID, bob)

	check := func(t *testing.T, user *models.User, want float64) {
		t.Helper()
		got, err := m.Balance(ctx, user)
		if err != nil {
			t.Fatalf("Balance failed: %v", err)
		}
		if got != want {
			t.Errorf("Balance(%s) = %v, want %v", user.Name, got, want)
		}
	}

	// Fresh band: everyone at zero.
	check(t, alice, 0)
	check(t, bob, 0)

	// Alice gets credited 50: the views are mirror images.
	m.CreateTransaction(ctx, alice, 50, "")
	check(t, alice, 50)
	check(t, bob, -50)

	// Bob gets credited 20: nets against alice's credit.
	m.CreateTransaction(ctx, bob, 20, "")
	check(t, alice, 30)
	check(t, bob, -30)

	// Matching credit brings both back to even.
	m.CreateTransaction(ctx, bob, 30, "")
	check(t, alice, 0)
	check(t, bob, 0)
}

func TestPartner(t *testing.T) {
	m, store := setupManager(t)
	ctx := context.Background()
	alice := newUser(t, store, 1, "alice")
	band, _ := m.CreateBand(ctx, alice)

	partner, err := m.Partner(ctx, alice)
	if err != nil {
		t.Fatalf("Partner failed: %v", err)
	}
	if partner != nil {
		t.Errorf("Solo member should have no partner, got %v", partner)
	}

	bob := newUser(t, store, 2, "bob")
	m.JoinBand(ctx, band.ID, bob)

	partner, err = m.Partner(ctx, alice)
	if err != nil {
		t.Fatalf("Partner failed: %v", err)
	}
	if partner == nil || partner.ID != bob.ID {
		t.Errorf("Partner = %v, want bob", partner)
	}

	carol := newUser(t, store, 3, "carol")
	if _, err := m.Partner(ctx, carol); !errors.Is(err, ErrNotInBand) {
		t.Errorf("Expected ErrNotInBand, got %v", err)
	}
}

func TestHistoryLimit(t *testing.T) {
	m, store := setupManager(t)
	ctx := context.Background()
	alice := newUser(t, store, 1, "alice")
	bob := newUser(t, store, 2, "bob")
	band, _ := m.CreateBand(ctx, alice)
	m.JoinBand(ctx, band.ID, bob)

	for i := 0; i < 5; i++ {
		if _, err := m.CreateTransaction(ctx, alice, float64(i+1), ""); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}
	}

	txs, err := m.History(ctx, alice, 3)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("Expected 3 transactions, got %d", len(txs))
	}
	// Newest first.
	if txs[0].Amount != 5 || txs[2].Amount != 3 {
		t.Errorf("History out of order: %v, %v, %v", txs[0].Amount, txs[1].Amount, txs[2].Amount)
	}
}
