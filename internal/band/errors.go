package band

import (
	"errors"
	"fmt"

	"github.com/behalfbot/behalf/internal/models"
)

// Domain errors returned by Manager operations. All of them describe
// expected business outcomes: the dispatcher converts each into a reply
// string and none of them should ever crash the bot.
var (
	// ErrBandNotExist is returned when a join code resolves to no band.
	ErrBandNotExist = errors.New("band does not exist")

	// ErrBandFull is returned when a band already has two members.
	ErrBandFull = errors.New("band is full")

	// ErrNotInBand is returned when an operation requires band membership
	// and the user has none.
	ErrNotInBand = errors.New("user is not in a band")

	// ErrNoPartner is returned when a transaction is recorded in a band
	// that has only one member.
	ErrNoPartner = errors.New("user does not have a partner yet")
)

// AlreadyInBandError is returned when a user who is already in a band tries
// to create or join one. It carries the existing band so the caller can
// report its join code instead of failing the interaction.
type AlreadyInBandError struct {
	Band *models.Band
}

func (e *AlreadyInBandError) Error() string {
	return fmt.Sprintf("user is already in band %s", e.Band.ID)
}
