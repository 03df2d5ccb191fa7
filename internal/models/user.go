package models

// User represents a Telegram user known to the bot.
//
// A user is created on first contact and never hard-deleted. Joining or
// leaving a band only mutates BandID.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// ChatID is the Telegram chat identifier used to deliver messages.
	// It is opaque to the core: nothing except the transport interprets it.
	ChatID int64

	// Name is the display name shown to the partner (Telegram first name,
	// falling back to the username).
	Name string

	// BandID is the band this user belongs to. Empty means the user is not
	// in a band.
	BandID string

	// CreatedAt is the Unix timestamp of the user's first contact.
	CreatedAt int64
}

// InBand reports whether the user currently belongs to a band.
func (u *User) InBand() bool {
	return u.BandID != ""
}
