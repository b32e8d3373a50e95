package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tirs/dashboard/internal/models"
	"github.com/tirs/dashboard/internal/service"
)

type stubUserRepo struct {
	user *models.User
}

func (s *stubUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.user, nil
}

func (s *stubUserRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return s.user, nil
}

func (s *stubUserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	return false, nil
}

func (s *stubUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	return false, nil
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	return nil
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error { return nil }

func (s *stubUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return nil
}

type stubAudit struct{}

func (stubAudit) Record(ctx context.Context, actorID int64, action, table string, recordID *int64, oldValues, newValues string) {
}

func newTestAuth(role models.Role) (*service.AuthService, string) {
	user := &models.User{
		ID:           1,
		Username:     "tester",
		PasswordHash: service.HashPassword("Password1"),
		Role:         role,
		IsActive:     true,
	}
	svc := service.NewAuthService(&stubUserRepo{user: user}, stubAudit{}, nil, nil, nil, service.AuthConfig{
		TokenSecret: "secret",
		TokenExpiry: time.Hour,
	})
	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "tester", Password: "Password1"})
	if err != nil {
		panic(err)
	}
	return svc, res.AccessToken
}

func newTestRouter(svc *service.AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/private", JWT(svc), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/admin", JWT(svc), RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestJWTRejectsMissingAndMalformedHeaders(t *testing.T) {
	svc, _ := newTestAuth(models.RoleUser)
	r := newTestRouter(svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Token abc")
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAcceptsValidToken(t *testing.T) {
	svc, token := newTestAuth(models.RoleUser)
	r := newTestRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRolesBlocksOtherTiers(t *testing.T) {
	svc, userToken := newTestAuth(models.RoleUser)
	r := newTestRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	adminSvc, adminToken := newTestAuth(models.RoleAdmin)
	r = newTestRouter(adminSvc)
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
