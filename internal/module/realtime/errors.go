package realtime

import (
	"errors"

	"github.com/flowspace/server/internal/module/access"
	"github.com/flowspace/server/internal/module/card"
)

var (
	errUnknownEvent   = errors.New("unknown event")
	errInvalidPayload = errors.New("invalid payload")
	errInvalidBoardID = errors.New("invalid board id")
	errInvalidCardID  = errors.New("invalid card id")
	errMissingContent = errors.New("content is required")
	errClientClosed   = errors.New("client closed")
)

// errorMessages is checked in order; the first match wins.
var errorMessages = []struct {
	err     error
	message string
}{
	{errUnknownEvent, "Unknown event"},
	{errInvalidPayload, "Invalid payload"},
	{errInvalidBoardID, "Invalid board id"},
	{errInvalidCardID, "Invalid card id"},
	{errMissingContent, "Content is required"},
	{access.ErrUnauthenticated, "Not authenticated"},
	{access.ErrBoardNotFound, "Board not found"},
	{access.ErrNotMember, "Not a member of this board"},
	{access.ErrInsufficientRole, "Insufficient role"},
	{access.ErrForbidden, "Forbidden"},
	{card.ErrCardNotFound, "Card not found"},
}

// messageFor returns the text sent to the client for err. Unclassified
// errors are reported as fallback.
func messageFor(err error, fallback string) string {
	for _, m := range errorMessages {
		if errors.Is(err, m.err) {
			return m.message
		}
	}
	return fallback
}
