package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tirs/dashboard/internal/models"
	appErrors "github.com/tirs/dashboard/pkg/errors"
)

type mockImportSaleRepo struct {
	inserted  []models.Sale
	insertErr error
}

func (m *mockImportSaleRepo) Insert(ctx context.Context, sale *models.Sale) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	sale.ID = int64(len(m.inserted) + 1)
	m.inserted = append(m.inserted, *sale)
	return nil
}

type mockImportUserRepo struct {
	existing       map[string]bool
	existingEmails map[string]bool
	created        []models.User
}

func (m *mockImportUserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	return m.existing[username], nil
}

func (m *mockImportUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	return m.existingEmails[strings.ToLower(email)], nil
}

func (m *mockImportUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.existing == nil {
		m.existing = make(map[string]bool)
	}
	if m.existingEmails == nil {
		m.existingEmails = make(map[string]bool)
	}
	user.ID = int64(len(m.created) + 1)
	m.created = append(m.created, *user)
	m.existing[user.Username] = true
	m.existingEmails[strings.ToLower(user.Email)] = true
	return nil
}

type mockImportMetrics struct {
	rows map[string]int
}

func (m *mockImportMetrics) AddImportRows(kind, outcome string, n int) {
	if m.rows == nil {
		m.rows = make(map[string]int)
	}
	m.rows[kind+"/"+outcome] += n
}

func importer(sales *mockImportSaleRepo, users *mockImportUserRepo) (*ImportService, *mockAudit, *mockImportMetrics) {
	audit := &mockAudit{}
	metrics := &mockImportMetrics{}
	return NewImportService(sales, users, audit, metrics, zap.NewNop()), audit, metrics
}

const salesCSV = `date,user_id,product_name,quantity,unit_price,total_amount,region
2026-08-01,1,Laptop Pro 15,2,1299.00,2598.00,North
2026-08-02,2,Desk Lamp,1,39.95,39.95,South
2026-08-03,1,Desk Lamp,0,39.95,0.00,East
2026-08-04,2,Desk Lamp,3,39.95,100.00,West
`

func TestImportSalesCSVSkipsInvalidRows(t *testing.T) {
	sales := &mockImportSaleRepo{}
	svc, audit, metrics := importer(sales, &mockImportUserRepo{})

	result, err := svc.ImportSalesCSV(context.Background(), adminCtx(), strings.NewReader(salesCSV))
	require.NoError(t, err)

	// Row 3 has a zero quantity, row 4 a total that does not match.
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 2, result.Skipped)
	assert.Len(t, sales.inserted, 2)
	assert.Len(t, result.Errors, 2)

	assert.Equal(t, 2, metrics.rows["sales/imported"])
	assert.Equal(t, 2, metrics.rows["sales/skipped"])
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionImportSales, audit.entries[0].action)
	assert.Contains(t, audit.entries[0].newValues, "imported=2")
}

func TestImportSalesCSVRejectsMissingColumns(t *testing.T) {
	svc, _, _ := importer(&mockImportSaleRepo{}, &mockImportUserRepo{})

	_, err := svc.ImportSalesCSV(context.Background(), adminCtx(), strings.NewReader("date,user_id\n2026-08-01,1\n"))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestImportSalesCSVInsertFailureDoesNotAbort(t *testing.T) {
	sales := &mockImportSaleRepo{insertErr: assert.AnError}
	svc, _, _ := importer(sales, &mockImportUserRepo{})

	result, err := svc.ImportSalesCSV(context.Background(), adminCtx(), strings.NewReader(salesCSV))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 4, result.Skipped)
}

const usersCSV = `username,email,role,initial_password
carol,carol@example.com,manager,Carol123
dave,dave@example.com,wizard,Dave1234
erin,erin@example.com,user,Erin1234
`

func TestImportUsersCSV(t *testing.T) {
	users := &mockImportUserRepo{}
	svc, audit, _ := importer(&mockImportSaleRepo{}, users)

	result, err := svc.ImportUsersCSV(context.Background(), adminCtx(), strings.NewReader(usersCSV))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, 0, result.Skipped)

	// Unknown roles land in the least-privileged tier.
	assert.Equal(t, models.RoleManager, users.created[0].Role)
	assert.Equal(t, models.RoleUser, users.created[1].Role)

	for _, u := range users.created {
		assert.True(t, u.IsActive)
		assert.NotContains(t, u.PasswordHash, "1234")
	}
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionImportUsers, audit.entries[0].action)
}

func TestImportUsersCSVSkipsTakenEmails(t *testing.T) {
	users := &mockImportUserRepo{existingEmails: map[string]bool{"dave@example.com": true}}
	svc, _, _ := importer(&mockImportSaleRepo{}, users)

	result, err := svc.ImportUsersCSV(context.Background(), adminCtx(), strings.NewReader(usersCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "email already registered")
}

func TestImportUsersCSVIsIdempotent(t *testing.T) {
	users := &mockImportUserRepo{}
	svc, _, _ := importer(&mockImportSaleRepo{}, users)

	first, err := svc.ImportUsersCSV(context.Background(), adminCtx(), strings.NewReader(usersCSV))
	require.NoError(t, err)
	assert.Equal(t, 3, first.Imported)

	second, err := svc.ImportUsersCSV(context.Background(), adminCtx(), strings.NewReader(usersCSV))
	require.NoError(t, err)
	assert.Equal(t, 0, second.Imported)
	assert.Equal(t, 3, second.Skipped)
	assert.Len(t, users.created, 3)
}
