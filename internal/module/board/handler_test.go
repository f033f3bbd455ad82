package board

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/flowspace/server/internal/module/access"
	"github.com/flowspace/server/internal/module/user"
	"github.com/flowspace/server/internal/utils/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = access.RegisterValidations(v)
	}
}

func newTestRouter(svc *Service, repo *mockRepository, caller uuid.UUID) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, caller)
	})
	NewHandler(svc, access.NewGate(repo)).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestHandler_Routes(t *testing.T) {
	boardID, owner, viewer, target := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	base := "/api/v1/boards/" + boardID.String()

	tests := []struct {
		name       string
		caller     uuid.UUID
		method     string
		path       string
		body       string
		setup      func(repo *mockRepository, users *mockUsers)
		wantStatus int
		wantCode   string
	}{
		{
			name: "viewer cannot delete", caller: viewer,
			method: http.MethodDelete, path: base,
			wantStatus: http.StatusForbidden, wantCode: "insufficient_role",
		},
		{
			name: "owner deletes", caller: owner,
			method: http.MethodDelete, path: base,
			setup: func(repo *mockRepository, _ *mockUsers) {
				repo.On("Delete", mock.Anything, boardID).Return(nil)
			},
			wantStatus: http.StatusNoContent,
		},
		{
			name: "set member rejects unknown role", caller: owner,
			method: http.MethodPut, path: base + "/members/" + target.String(),
			body:       `{"role":"admin"}`,
			wantStatus: http.StatusBadRequest, wantCode: "validation_error",
		},
		{
			name: "set member unknown user", caller: owner,
			method: http.MethodPut, path: base + "/members/" + target.String(),
			body: `{"role":"editor"}`,
			setup: func(_ *mockRepository, users *mockUsers) {
				users.On("GetByID", mock.Anything, target).Return(nil, user.ErrUserNotFound)
			},
			wantStatus: http.StatusNotFound, wantCode: "user_not_found",
		},
		{
			name: "remove owner", caller: owner,
			method: http.MethodDelete, path: base + "/members/" + owner.String(),
			wantStatus: http.StatusBadRequest, wantCode: "cannot_modify_owner",
		},
		{
			name: "create requires title", caller: owner,
			method: http.MethodPost, path: "/api/v1/boards",
			body:       `{"description":"x"}`,
			wantStatus: http.StatusBadRequest, wantCode: "validation_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, users, _ := newTestService()
			repo.On("BoardOwner", mock.Anything, boardID).Return(owner, nil)
			repo.On("MemberRole", mock.Anything, boardID, viewer).Return(access.RoleViewer, nil)
			if tt.setup != nil {
				tt.setup(repo, users)
			}

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			newTestRouter(svc, repo, tt.caller).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Contains(t, w.Body.String(), `"code":"`+tt.wantCode+`"`)
			}
		})
	}
}
