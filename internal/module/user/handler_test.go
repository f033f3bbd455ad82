package user

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flowspace/server/internal/utils/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *mockRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *mockRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*User, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[uuid.UUID]*User), args.Error(1)
}

func TestHandler_GetCurrentUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	known, missing := uuid.New(), uuid.New()

	repo := new(mockRepository)
	repo.On("GetByID", mock.Anything, known).Return(&User{ID: known, Email: "ada@example.com", Name: "Ada"}, nil)
	repo.On("GetByID", mock.Anything, missing).Return(nil, ErrUserNotFound)

	newRouter := func(caller uuid.UUID) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			if caller != uuid.Nil {
				c.Set(middleware.UserIDKey, caller)
			}
		})
		NewHandler(repo).RegisterProtectedRoutes(r.Group(""))
		return r
	}

	tests := []struct {
		name       string
		caller     uuid.UUID
		wantStatus int
		wantBody   string
	}{
		{"known", known, http.StatusOK, `"email":"ada@example.com"`},
		{"missing", missing, http.StatusNotFound, `"code":"user_not_found"`},
		{"anonymous", uuid.Nil, http.StatusUnauthorized, `"code":"unauthenticated"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newRouter(tt.caller).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/me", nil))
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestUser_ToSummary(t *testing.T) {
	var nilUser *User
	assert.Equal(t, Summary{}, nilUser.ToSummary())

	id := uuid.New()
	u := &User{ID: id, Name: "Ada", Email: "ada@example.com", AvatarURL: "x"}
	assert.Equal(t, Summary{ID: id, Name: "Ada", Email: "ada@example.com"}, u.ToSummary())
}
