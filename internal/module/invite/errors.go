package invite

import (
	"errors"
	"fmt"
)

var (
	ErrInviteNotFound  = errors.New("invite not found")
	ErrInviteExpired   = errors.New("invite has expired")
	ErrAlreadyAccepted = errors.New("invite already accepted")
	ErrValidation      = errors.New("validation failed")

	ErrEmailRequired   = fmt.Errorf("%w: email required", ErrValidation)
	ErrBoardIDRequired = fmt.Errorf("%w: board id required", ErrValidation)
	ErrInvalidBoardID  = fmt.Errorf("%w: invalid board id", ErrValidation)
	ErrInvalidEmail    = fmt.Errorf("%w: invalid email", ErrValidation)
	ErrInvalidRole     = fmt.Errorf("%w: role must be editor or viewer", ErrValidation)
	ErrTokenRequired   = fmt.Errorf("%w: token required", ErrValidation)

	// Repository signals for unique violations on create.
	ErrTokenTaken    = errors.New("invite token already in use")
	ErrPendingExists = errors.New("pending invite already exists")
)
