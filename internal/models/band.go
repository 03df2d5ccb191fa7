package models

// Band represents a pair of users tracking shared expenses together.
//
// The ID doubles as the human-shareable join code: it is short enough to be
// typed into a chat message. A band holds one member right after creation
// and at most two ever. Membership itself lives on the User side (BandID),
// so the struct stays free of circular references.
type Band struct {
	// ID is the unique identifier and join code of the band (short
	// uppercase token derived from a UUID).
	ID string

	// CreatedAt is the Unix timestamp when the band was created.
	CreatedAt int64
}
