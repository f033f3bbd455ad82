package access

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrBoardNotFound   = errors.New("board not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidRole     = errors.New("invalid role")

	// Both refine ErrForbidden; errors.Is(err, ErrForbidden) matches either.
	ErrNotMember        = fmt.Errorf("%w: not a member", ErrForbidden)
	ErrInsufficientRole = fmt.Errorf("%w: insufficient role", ErrForbidden)
)
