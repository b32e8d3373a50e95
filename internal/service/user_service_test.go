package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tirs/dashboard/internal/models"
	appErrors "github.com/tirs/dashboard/pkg/errors"
)

type mockUserRepo struct {
	user            *models.User
	users           []models.User
	total           int
	findErr         error
	listErr         error
	updateRoleErr   error
	updateStatusErr error
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.users, m.total, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.user, nil
}

func (m *mockUserRepo) UpdateRole(ctx context.Context, id int64, role models.Role) error {
	return m.updateRoleErr
}

func (m *mockUserRepo) UpdateStatus(ctx context.Context, id int64, isActive bool) error {
	return m.updateStatusErr
}

func adminCtx() models.AuthContext {
	return models.AuthContext{UserID: 1, Username: "root", Role: models.RoleAdmin}
}

func TestUserServiceUpdateRoleWritesOneAuditEntry(t *testing.T) {
	repo := &mockUserRepo{user: &models.User{ID: 5, Username: "bob", Role: models.RoleUser, IsActive: true}}
	audit := &mockAudit{}
	svc := NewUserService(repo, audit, NewValidator(), zap.NewNop())

	user, err := svc.UpdateRole(context.Background(), adminCtx(), 5, models.UpdateRoleRequest{Role: models.RoleManager})
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, user.Role)

	require.Len(t, audit.entries, 1)
	entry := audit.entries[0]
	assert.Equal(t, models.AuditActionUpdateRole, entry.action)
	assert.Equal(t, int64(1), entry.actorID)
	assert.Equal(t, "role=user", entry.oldValues)
	assert.Equal(t, "role=manager", entry.newValues)
}

func TestUserServiceUpdateRoleRejectsUnknownRole(t *testing.T) {
	repo := &mockUserRepo{user: &models.User{ID: 5, Role: models.RoleUser}}
	audit := &mockAudit{}
	svc := NewUserService(repo, audit, NewValidator(), zap.NewNop())

	_, err := svc.UpdateRole(context.Background(), adminCtx(), 5, models.UpdateRoleRequest{Role: "superuser"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, audit.entries)
}

func TestUserServiceUpdateRoleNotFound(t *testing.T) {
	repo := &mockUserRepo{findErr: sql.ErrNoRows}
	svc := NewUserService(repo, &mockAudit{}, NewValidator(), zap.NewNop())

	_, err := svc.UpdateRole(context.Background(), adminCtx(), 99, models.UpdateRoleRequest{Role: models.RoleUser})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestUserServiceUpdateRoleFailureSkipsAudit(t *testing.T) {
	repo := &mockUserRepo{
		user:          &models.User{ID: 5, Role: models.RoleUser},
		updateRoleErr: assert.AnError,
	}
	audit := &mockAudit{}
	svc := NewUserService(repo, audit, NewValidator(), zap.NewNop())

	_, err := svc.UpdateRole(context.Background(), adminCtx(), 5, models.UpdateRoleRequest{Role: models.RoleAdmin})
	require.Error(t, err)
	assert.Empty(t, audit.entries)
}

func TestUserServiceUpdateStatusWritesOneAuditEntry(t *testing.T) {
	repo := &mockUserRepo{user: &models.User{ID: 5, Username: "bob", Role: models.RoleUser, IsActive: true}}
	audit := &mockAudit{}
	svc := NewUserService(repo, audit, NewValidator(), zap.NewNop())

	inactive := false
	user, err := svc.UpdateStatus(context.Background(), adminCtx(), 5, models.UpdateStatusRequest{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, user.IsActive)

	require.Len(t, audit.entries, 1)
	entry := audit.entries[0]
	assert.Equal(t, models.AuditActionUpdateStatus, entry.action)
	assert.Equal(t, "is_active=true", entry.oldValues)
	assert.Equal(t, "is_active=false", entry.newValues)
}

func TestUserServiceListPaginationDefaults(t *testing.T) {
	repo := &mockUserRepo{users: []models.User{{ID: 1}, {ID: 2}}, total: 2}
	svc := NewUserService(repo, &mockAudit{}, NewValidator(), zap.NewNop())

	users, pagination, err := svc.List(context.Background(), models.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 2, pagination.TotalCount)
}
