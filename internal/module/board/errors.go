package board

import (
	"errors"

	"github.com/flowspace/server/internal/module/access"
)

var (
	// ErrBoardNotFound is the gate's error so one mapping serves both.
	ErrBoardNotFound = access.ErrBoardNotFound

	ErrMemberNotFound    = errors.New("member not found")
	ErrCannotModifyOwner = errors.New("cannot change the board owner's membership")
)
