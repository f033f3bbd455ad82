package access

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Member is one entry of a board's member list.
type Member struct {
	UserID uuid.UUID
	Role   Role
}

// Subject is the part of a board that access decisions read.
type Subject struct {
	OwnerID uuid.UUID
	Members []Member
}

// ResolveRole returns userID's effective role on a board. The owner is
// matched by identity and needs no member entry.
func ResolveRole(s Subject, userID uuid.UUID) Role {
	if userID == uuid.Nil {
		return RoleNone
	}
	if s.OwnerID == userID {
		return RoleOwner
	}
	for _, m := range s.Members {
		if m.UserID == userID {
			return m.Role
		}
	}
	return RoleNone
}

// Directory answers the two questions the gate asks storage.
type Directory interface {
	// BoardOwner returns ErrBoardNotFound when the board does not exist.
	BoardOwner(ctx context.Context, boardID uuid.UUID) (uuid.UUID, error)
	// MemberRole returns RoleNone when userID has no member entry.
	MemberRole(ctx context.Context, boardID, userID uuid.UUID) (Role, error)
}

// Authorizer is what services depend on.
type Authorizer interface {
	RequireMinRole(ctx context.Context, boardID, userID uuid.UUID, min Role) (Role, error)
}

// Gate enforces minimum board roles.
type Gate struct {
	dir Directory
}

// NewGate creates a Gate backed by dir.
func NewGate(dir Directory) *Gate {
	return &Gate{dir: dir}
}

// RoleOf resolves userID's role on boardID. The member list is only read
// when userID is not the owner.
func (g *Gate) RoleOf(ctx context.Context, boardID, userID uuid.UUID) (Role, error) {
	ownerID, err := g.dir.BoardOwner(ctx, boardID)
	if err != nil {
		return RoleNone, err
	}
	if ownerID == userID {
		return RoleOwner, nil
	}
	role, err := g.dir.MemberRole(ctx, boardID, userID)
	if err != nil {
		return RoleNone, fmt.Errorf("resolve member role: %w", err)
	}
	return role, nil
}

// RequireMinRole fails with ErrUnauthenticated when userID is nil,
// ErrBoardNotFound when the board is missing, ErrNotMember when userID has
// no role and ErrInsufficientRole when the role ranks below min.
func (g *Gate) RequireMinRole(ctx context.Context, boardID, userID uuid.UUID, min Role) (Role, error) {
	if userID == uuid.Nil {
		return RoleNone, ErrUnauthenticated
	}
	role, err := g.RoleOf(ctx, boardID, userID)
	if err != nil {
		return RoleNone, err
	}
	if role == RoleNone {
		return RoleNone, ErrNotMember
	}
	if !role.AtLeast(min) {
		return role, ErrInsufficientRole
	}
	return role, nil
}

var _ Authorizer = (*Gate)(nil)
