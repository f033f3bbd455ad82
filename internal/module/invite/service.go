package invite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flowspace/server/internal/module/access"
	"github.com/flowspace/server/internal/module/board"
	"github.com/flowspace/server/internal/module/user"
	"github.com/flowspace/server/internal/shared/email"
	"github.com/flowspace/server/internal/shared/events"
	"github.com/flowspace/server/internal/utils/metrics"
	"github.com/flowspace/server/internal/utils/random"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxTokenAttempts = 3

const notifyWarning = "Email could not be sent. Share this link manually."

// Config holds invite settings.
type Config struct {
	Expiry      time.Duration
	TokenBytes  int
	FrontendURL string
}

// DefaultConfig returns the default invite settings.
func DefaultConfig() *Config {
	return &Config{
		Expiry:      7 * 24 * time.Hour,
		TokenBytes:  32,
		FrontendURL: "http://localhost:3000",
	}
}

// Boards is the board lookup the service needs.
type Boards interface {
	GetByID(ctx context.Context, id uuid.UUID) (*board.Board, error)
	BoardOwner(ctx context.Context, boardID uuid.UUID) (uuid.UUID, error)
}

// Service implements the invite lifecycle:
// pending -> accepted and pending -> expired.
type Service struct {
	repo      Repository
	boards    Boards
	users     user.Repository
	gate      access.Authorizer
	sender    email.Sender
	publisher events.Publisher
	metrics   *metrics.Metrics
	config    *Config
	validate  *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new invite service.
func NewService(
	repo Repository,
	boards Boards,
	users user.Repository,
	gate access.Authorizer,
	sender email.Sender,
	publisher events.Publisher,
	m *metrics.Metrics,
	config *Config,
	logger *zap.Logger,
) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	validate := validator.New()
	// Only fails on a malformed tag name.
	_ = access.RegisterValidations(validate)

	return &Service{
		repo:      repo,
		boards:    boards,
		users:     users,
		gate:      gate,
		sender:    sender,
		publisher: publisher,
		metrics:   m,
		config:    config,
		validate:  validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Link returns the frontend URL at which token can be accepted.
func (s *Service) Link(token string) string {
	return strings.TrimRight(s.config.FrontendURL, "/") + "/invite/" + token
}

// CreateInvite returns the pending invite for (board, email), creating it
// when none exists. The inviter must be at least editor on the board.
func (s *Service) CreateInvite(ctx context.Context, invitedBy uuid.UUID, req *CreateInviteRequest) (inv *Invite, err error) {
	defer func() { s.metrics.RecordInvite("create", err) }()

	if invitedBy == uuid.Nil {
		return nil, access.ErrUnauthenticated
	}
	boardID, addr, role, err := s.parseCreate(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.gate.RequireMinRole(ctx, boardID, invitedBy, access.RoleEditor); err != nil {
		return nil, err
	}

	// A stored-pending invite is returned as is, even past its expiry:
	// the pending to expired transition only happens on acceptance.
	existing, err := s.repo.GetPending(ctx, boardID, addr)
	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, ErrInviteNotFound):
		return nil, fmt.Errorf("find pending invite: %w", err)
	}

	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token, err := random.Hex(s.config.TokenBytes)
		if err != nil {
			return nil, err
		}

		now := s.now()
		inv = &Invite{
			ID:        uuid.New(),
			BoardID:   boardID,
			InvitedBy: invitedBy,
			Email:     addr,
			Token:     token,
			Role:      role,
			Status:    StatusPending,
			ExpiresAt: now.Add(s.config.Expiry),
			CreatedAt: now,
			UpdatedAt: now,
		}

		err = s.repo.Create(ctx, inv)
		switch {
		case err == nil:
			s.logger.Info("invite created",
				zap.String("invite_id", inv.ID.String()),
				zap.String("board_id", boardID.String()),
				zap.String("invited_by", invitedBy.String()),
				zap.Stringer("role", role),
			)
			return inv, nil
		case errors.Is(err, ErrTokenTaken):
			s.logger.Warn("invite token collision, regenerating", zap.Int("attempt", attempt+1))
			continue
		case errors.Is(err, ErrPendingExists):
			// A concurrent request created it first.
			return s.repo.GetPending(ctx, boardID, addr)
		default:
			return nil, fmt.Errorf("create invite: %w", err)
		}
	}
	return nil, fmt.Errorf("create invite: %w", ErrTokenTaken)
}

// Notify emails the invitation for inv to its invitee.
func (s *Service) Notify(ctx context.Context, inv *Invite) error {
	b, err := s.boards.GetByID(ctx, inv.BoardID)
	if err != nil {
		return fmt.Errorf("load board: %w", err)
	}

	var inviterName string
	if inviter, err := s.users.GetByID(ctx, inv.InvitedBy); err == nil {
		inviterName = inviter.Name
	}

	return notify(ctx, s.sender, inv.Email, inv.Role, b.Title, inviterName, s.Link(inv.Token), inv.ExpiresAt.Sub(inv.CreatedAt))
}

// SendInvite creates (or reuses) the invite and notifies the invitee. Only
// CreateInvite failures are returned; a notification failure is attached to
// the result as a warning.
func (s *Service) SendInvite(ctx context.Context, invitedBy uuid.UUID, req *CreateInviteRequest) (*SendResult, error) {
	inv, err := s.CreateInvite(ctx, invitedBy, req)
	if err != nil {
		return nil, err
	}

	result := &SendResult{Invite: inv, Link: s.Link(inv.Token)}
	if err := s.Notify(ctx, inv); err != nil {
		s.logger.Warn("invite notification failed",
			zap.String("invite_id", inv.ID.String()),
			zap.Error(err),
		)
		result.Warning = notifyWarning
	} else {
		result.Notified = true
	}
	s.metrics.RecordNotification(result.Notified)
	return result, nil
}

// GetInviteDetails returns the public view of the invite identified by
// token. It never changes state, so a pending invite past its expiry still
// reads as pending until someone tries to accept it.
func (s *Service) GetInviteDetails(ctx context.Context, token string) (*Details, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrTokenRequired
	}
	inv, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	b, err := s.boards.GetByID(ctx, inv.BoardID)
	if err != nil {
		return nil, err
	}

	var inviter *user.User
	if u, err := s.users.GetByID(ctx, inv.InvitedBy); err == nil {
		inviter = u
	} else if !errors.Is(err, user.ErrUserNotFound) {
		return nil, fmt.Errorf("load inviter: %w", err)
	}

	return &Details{
		Email:     inv.Email,
		Role:      inv.Role,
		Status:    inv.Status,
		ExpiresAt: inv.ExpiresAt,
		InvitedBy: inviter.ToSummary(),
		Board:     b.ToSummary(),
	}, nil
}

// AcceptInvite accepts the invite identified by token on behalf of userID.
// The member entry and the status change commit together; the room is told
// afterwards. An existing membership keeps its role.
func (s *Service) AcceptInvite(ctx context.Context, token string, userID uuid.UUID) (summary *board.Summary, err error) {
	defer func() { s.metrics.RecordInvite("accept", err) }()

	if userID == uuid.Nil {
		return nil, access.ErrUnauthenticated
	}
	if strings.TrimSpace(token) == "" {
		return nil, ErrTokenRequired
	}

	inv, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	switch inv.Status {
	case StatusAccepted:
		return nil, ErrAlreadyAccepted
	case StatusExpired:
		return nil, ErrInviteExpired
	}

	now := s.now()
	if inv.IsExpired(now) {
		if err := s.repo.MarkExpired(ctx, inv.ID); err != nil {
			s.logger.Error("failed to persist invite expiry",
				zap.String("invite_id", inv.ID.String()),
				zap.Error(err),
			)
		}
		return nil, ErrInviteExpired
	}

	b, err := s.boards.GetByID(ctx, inv.BoardID)
	if err != nil {
		return nil, err
	}

	added, err := s.repo.Accept(ctx, AcceptParams{
		InviteID:  inv.ID,
		UserID:    userID,
		At:        now,
		AddMember: b.OwnerID != userID,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invite accepted",
		zap.String("invite_id", inv.ID.String()),
		zap.String("board_id", b.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Bool("member_added", added),
	)
	s.publisher.Publish(events.NewMemberJoinedEvent(b.ID, userID))

	sum := b.ToSummary()
	return &sum, nil
}

// ListInvites returns every invite of the board, newest first. Only the
// board's owner may list; a member entry with role owner does not qualify.
func (s *Service) ListInvites(ctx context.Context, boardID, requester uuid.UUID) ([]*ListItem, error) {
	if requester == uuid.Nil {
		return nil, access.ErrUnauthenticated
	}
	ownerID, err := s.boards.BoardOwner(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if ownerID != requester {
		return nil, access.ErrInsufficientRole
	}

	invites, err := s.repo.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(invites))
	seen := make(map[uuid.UUID]struct{}, len(invites))
	for _, inv := range invites {
		if _, ok := seen[inv.InvitedBy]; !ok {
			seen[inv.InvitedBy] = struct{}{}
			ids = append(ids, inv.InvitedBy)
		}
	}
	inviters, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve inviters: %w", err)
	}

	out := make([]*ListItem, 0, len(invites))
	for _, inv := range invites {
		out = append(out, &ListItem{
			ID:         inv.ID,
			Email:      inv.Email,
			Role:       inv.Role,
			Status:     inv.Status,
			Token:      inv.Token,
			ExpiresAt:  inv.ExpiresAt,
			InvitedBy:  inviters[inv.InvitedBy].ToSummary(),
			AcceptedBy: inv.AcceptedBy,
			AcceptedAt: inv.AcceptedAt,
			CreatedAt:  inv.CreatedAt,
		})
	}
	return out, nil
}

func (s *Service) parseCreate(req *CreateInviteRequest) (uuid.UUID, string, access.Role, error) {
	addr := strings.ToLower(strings.TrimSpace(req.Email))
	if addr == "" {
		return uuid.Nil, "", access.RoleNone, ErrEmailRequired
	}
	if strings.TrimSpace(req.BoardID) == "" {
		return uuid.Nil, "", access.RoleNone, ErrBoardIDRequired
	}
	boardID, err := uuid.Parse(strings.TrimSpace(req.BoardID))
	if err != nil {
		return uuid.Nil, "", access.RoleNone, ErrInvalidBoardID
	}
	if err := s.validate.Var(addr, "email"); err != nil {
		return uuid.Nil, "", access.RoleNone, ErrInvalidEmail
	}

	role := access.RoleEditor
	if req.Role != "" {
		if err := s.validate.Var(req.Role, "inviterole"); err != nil {
			return uuid.Nil, "", access.RoleNone, ErrInvalidRole
		}
		if role, err = access.ParseRole(req.Role); err != nil {
			return uuid.Nil, "", access.RoleNone, ErrInvalidRole
		}
	}
	return boardID, addr, role, nil
}
