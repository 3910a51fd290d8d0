package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthrec/record-api/internal/model"
	"github.com/healthrec/record-api/internal/policy"
	"github.com/healthrec/record-api/pkg/auth"
	apperrors "github.com/healthrec/record-api/pkg/errors"
)

type fakeAccountService struct {
	actors map[uuid.UUID]policy.Actor
}

func (f *fakeAccountService) Register(context.Context, *model.RegisterRequest) (*model.AuthResponse, error) {
	return nil, nil
}

func (f *fakeAccountService) Login(context.Context, *model.LoginRequest) (*model.AuthResponse, error) {
	return nil, nil
}

func (f *fakeAccountService) Refresh(context.Context, string) (*model.TokenResponse, error) {
	return nil, nil
}

func (f *fakeAccountService) LoadActor(_ context.Context, accountID uuid.UUID) (policy.Actor, error) {
	actor, ok := f.actors[accountID]
	if !ok {
		return policy.Actor{}, apperrors.NotFound("account", nil)
	}
	return actor, nil
}

func (f *fakeAccountService) GetProfile(context.Context, policy.Actor) (*model.ProfileView, error) {
	return nil, nil
}

func (f *fakeAccountService) UpdateProfile(context.Context, policy.Actor, *model.UpdateProfileRequest) (*model.ProfileView, error) {
	return nil, nil
}

func setupAuthTest(t *testing.T) (*gin.Engine, auth.JWTService, *fakeAccountService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:        "test-secret",
		RefreshSecret: "test-refresh",
		Expiry:        time.Hour,
	})
	accountSvc := &fakeAccountService{actors: make(map[uuid.UUID]policy.Actor)}

	engine := gin.New()
	engine.Use(NewAuthMiddleware(jwtSvc, accountSvc).Authenticate())
	engine.GET("/whoami", func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"account_id": actor.Account.ID})
	})

	return engine, jwtSvc, accountSvc
}

func request(engine *gin.Engine, header string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	engine.ServeHTTP(w, req)
	return w
}

func TestAuthenticateValidToken(t *testing.T) {
	engine, jwtSvc, accountSvc := setupAuthTest(t)

	account := &model.Account{ID: uuid.New(), Email: "alice@example.com", Role: model.RolePatient}
	accountSvc.actors[account.ID] = policy.Actor{
		Account: account,
		Patient: &model.PatientProfile{ID: uuid.New(), AccountID: account.ID},
	}

	token, err := jwtSvc.GenerateAccessToken(account)
	require.NoError(t, err)

	w := request(engine, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticateRejectsBadHeaders(t *testing.T) {
	engine, jwtSvc, _ := setupAuthTest(t)

	token, err := jwtSvc.GenerateAccessToken(&model.Account{ID: uuid.New()})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic " + token},
		{"no token", "Bearer"},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := request(engine, tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthenticateRejectsDeletedAccount(t *testing.T) {
	engine, jwtSvc, _ := setupAuthTest(t)

	// Token is valid but the account is gone; the fresh per-request load
	// refuses it.
	token, err := jwtSvc.GenerateAccessToken(&model.Account{ID: uuid.New()})
	require.NoError(t, err)

	w := request(engine, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestIDEchoed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	engine.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
