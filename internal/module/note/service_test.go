package note

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/flowspace/server/internal/module/access"
	"github.com/flowspace/server/internal/shared/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memoryRepository keeps one note per board, mirroring the unique index.
type memoryRepository struct {
	notes map[uuid.UUID]*Note
	err   error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{notes: make(map[uuid.UUID]*Note)}
}

func (r *memoryRepository) GetByBoard(_ context.Context, boardID uuid.UUID) (*Note, error) {
	n, ok := r.notes[boardID]
	if !ok {
		return nil, ErrNoteNotFound
	}
	cp := *n
	return &cp, nil
}

func (r *memoryRepository) Upsert(_ context.Context, note *Note) error {
	if r.err != nil {
		return r.err
	}
	if existing, ok := r.notes[note.BoardID]; ok {
		existing.Content = note.Content
		existing.UpdatedBy = note.UpdatedBy
		existing.UpdatedAt = note.UpdatedAt
		*note = *existing
		return nil
	}
	note.CreatedAt = note.UpdatedAt
	stored := *note
	r.notes[note.BoardID] = &stored
	return nil
}

type mockAuthorizer struct {
	mock.Mock
}

func (m *mockAuthorizer) RequireMinRole(ctx context.Context, boardID, userID uuid.UUID, min access.Role) (access.Role, error) {
	args := m.Called(ctx, boardID, userID, min)
	return args.Get(0).(access.Role), args.Error(1)
}

type recordingPublisher struct {
	events []*events.RoomEvent
}

func (p *recordingPublisher) Publish(e events.Event) {
	p.events = append(p.events, e.(*events.RoomEvent))
}

func TestService_Update_SingleNotePerBoard(t *testing.T) {
	ctx := context.Background()
	boardID, alice, bob := uuid.New(), uuid.New(), uuid.New()

	repo := newMemoryRepository()
	gate := new(mockAuthorizer)
	gate.On("RequireMinRole", ctx, boardID, mock.Anything, access.RoleEditor).Return(access.RoleEditor, nil)
	pub := &recordingPublisher{}

	svc := NewService(repo, gate, pub, zap.NewNop())
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	first, err := svc.Update(ctx, boardID, alice, "hello", "conn-a")
	require.NoError(t, err)

	clock = clock.Add(time.Minute)
	second, err := svc.Update(ctx, boardID, bob, "hello world", "")
	require.NoError(t, err)

	assert.Len(t, repo.notes, 1)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "hello world", second.Content)
	assert.Equal(t, bob, *second.UpdatedBy)
	assert.Equal(t, clock, second.UpdatedAt)

	require.Len(t, pub.events, 2)
	assert.Equal(t, events.NoteUpdatedType, pub.events[0].EventType())
	assert.Equal(t, "conn-a", pub.events[0].Origin)
	assert.Empty(t, pub.events[1].Origin)
	assert.Same(t, second, pub.events[1].Body)
}

func TestService_Update_ViewerForbidden(t *testing.T) {
	ctx := context.Background()
	boardID, viewer := uuid.New(), uuid.New()

	repo := newMemoryRepository()
	gate := new(mockAuthorizer)
	gate.On("RequireMinRole", ctx, boardID, viewer, access.RoleEditor).Return(access.RoleViewer, access.ErrInsufficientRole)
	pub := &recordingPublisher{}

	_, err := NewService(repo, gate, pub, zap.NewNop()).Update(ctx, boardID, viewer, "x", "conn")
	assert.ErrorIs(t, err, access.ErrForbidden)
	assert.Empty(t, repo.notes)
	assert.Empty(t, pub.events)
}

func TestService_Update_StorageFailure(t *testing.T) {
	ctx := context.Background()
	boardID, editor := uuid.New(), uuid.New()

	repo := newMemoryRepository()
	repo.err = errors.New("conn reset")
	gate := new(mockAuthorizer)
	gate.On("RequireMinRole", ctx, boardID, editor, access.RoleEditor).Return(access.RoleEditor, nil)
	pub := &recordingPublisher{}

	_, err := NewService(repo, gate, pub, zap.NewNop()).Update(ctx, boardID, editor, "x", "")
	assert.Error(t, err)
	assert.Empty(t, pub.events)
}

func TestService_Get_EmptyWhenMissing(t *testing.T) {
	boardID := uuid.New()
	svc := NewService(newMemoryRepository(), new(mockAuthorizer), &recordingPublisher{}, zap.NewNop())

	note, err := svc.Get(context.Background(), boardID)
	require.NoError(t, err)
	assert.Equal(t, boardID, note.BoardID)
	assert.Empty(t, note.Content)
	assert.Nil(t, note.UpdatedBy)
}
