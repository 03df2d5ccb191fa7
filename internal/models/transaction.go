package models

// Transaction represents one halved expense inside a band.
//
// Amount is already the half owed by the partner: the dispatcher divides the
// raw user-entered sum by two before the transaction is created. A positive
// balance for the credited user means the partner owes them. Transactions
// are immutable and ordered by CreatedAt for history queries.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string

	// BandID is the band this transaction belongs to.
	BandID string

	// UserID is the user credited with the amount (the one who paid).
	UserID string

	// Amount is half of the raw expense, credited to UserID.
	Amount float64

	// Comment is an optional free-text note, e.g. "lunch".
	Comment string

	// CreatedAt is the Unix timestamp when the transaction was recorded.
	CreatedAt int64
}
