package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vivenda/marketplace-backend/internal/accounts"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*accounts.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*accounts.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*accounts.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*accounts.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetBySlug(ctx context.Context, slug string) (*accounts.User, error) {
	args := m.Called(ctx, slug)
	if u := args.Get(0); u != nil {
		return u.(*accounts.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) Create(ctx context.Context, user *accounts.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) Update(ctx context.Context, user *accounts.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) ListAgents(ctx context.Context, filter accounts.AgentFilter) ([]accounts.User, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]accounts.User), args.Get(1).(int64), args.Error(2)
}

// profileRouter mounts the profile handler behind a stand-in for
// Authenticate that injects the given user as the principal.
func profileRouter(repo *mockUserRepo, user *accounts.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(accounts.NewService(repo, zap.NewNop()), zap.NewNop())

	router := gin.New()
	authed := router.Group("", func(c *gin.Context) {
		c.Set(principalKey, FromUser(user))
		c.Next()
	})
	handler.RegisterMyRoutes(authed)
	return router
}

func TestMeReturnsOwnRecord(t *testing.T) {
	user := &accounts.User{ID: uuid.New(), Email: "ana@example.com", FirstName: "Ana"}
	repo := new(mockUserRepo)
	repo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	profileRouter(repo, user).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Success bool          `json:"success"`
		Data    accounts.User `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, user.Email, body.Data.Email)
	repo.AssertExpectations(t)
}

func TestUpdateProfileAppliesPatch(t *testing.T) {
	user := &accounts.User{ID: uuid.New(), Email: "ana@example.com", FirstName: "Ana"}
	repo := new(mockUserRepo)
	repo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(u *accounts.User) bool {
		return u.ID == user.ID && u.FirstName == "Anabel" && u.Phone == "+506 8888 0000"
	})).Return(nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/me",
		strings.NewReader(`{"first_name": "Anabel", "phone": "+506 8888 0000"}`))
	req.Header.Set("Content-Type", "application/json")
	profileRouter(repo, user).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}
