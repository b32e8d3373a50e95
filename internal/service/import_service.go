package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tirs/dashboard/internal/models"
	appErrors "github.com/tirs/dashboard/pkg/errors"
)

type importSaleRepository interface {
	Insert(ctx context.Context, sale *models.Sale) error
}

type importUserRepository interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
}

type importMetrics interface {
	AddImportRows(kind, outcome string, n int)
}

var salesImportColumns = []string{"date", "user_id", "product_name", "quantity", "unit_price", "total_amount", "region"}

var usersImportColumns = []string{"username", "email", "role", "initial_password"}

// ImportService loads CSV batches into the sales and users tables. Each row
// commits independently, so a malformed row is skipped and counted without
// unwinding the rows that came before it.
type ImportService struct {
	sales   importSaleRepository
	users   importUserRepository
	audit   auditRecorder
	metrics importMetrics
	logger  *zap.Logger
}

// NewImportService creates an instance of ImportService.
func NewImportService(sales importSaleRepository, users importUserRepository, audit auditRecorder, metrics importMetrics, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{
		sales:   sales,
		users:   users,
		audit:   audit,
		metrics: metrics,
		logger:  logger,
	}
}

// ImportSalesCSV reads sales rows from r and inserts each valid one. The
// header must carry the expected columns; extra columns are ignored.
func (s *ImportService) ImportSalesCSV(ctx context.Context, authCtx models.AuthContext, r io.Reader) (*models.ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	columns, err := readHeader(reader, salesImportColumns)
	if err != nil {
		return nil, err
	}

	result := &models.ImportResult{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Skipped++
			result.Errors = appendRowError(result.Errors, line, "malformed csv record")
			continue
		}

		sale, err := parseSaleRow(columns, record)
		if err != nil {
			result.Skipped++
			result.Errors = appendRowError(result.Errors, line, err.Error())
			continue
		}

		if err := s.sales.Insert(ctx, sale); err != nil {
			s.logger.Warn("sales import row insert failed", zap.Int("line", line), zap.Error(err))
			result.Skipped++
			result.Errors = appendRowError(result.Errors, line, "insert failed")
			continue
		}
		result.Imported++
	}

	if s.metrics != nil {
		s.metrics.AddImportRows("sales", "imported", result.Imported)
		s.metrics.AddImportRows("sales", "skipped", result.Skipped)
	}
	s.audit.Record(ctx, authCtx.UserID, models.AuditActionImportSales, "sales", nil,
		"",
		fmt.Sprintf("imported=%d,skipped=%d", result.Imported, result.Skipped))

	return result, nil
}

// ImportUsersCSV reads user rows from r and creates the accounts that do not
// exist yet. Re-running the same file is safe: rows whose username or email
// is already registered are skipped.
func (s *ImportService) ImportUsersCSV(ctx context.Context, authCtx models.AuthContext, r io.Reader) (*models.ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	columns, err := readHeader(reader, usersImportColumns)
	if err != nil {
		return nil, err
	}

	result := &models.ImportResult{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Skipped++
			result.Errors = appendRowError(result.Errors, line, "malformed csv record")
			continue
		}

		user, err := parseUserRow(columns, record)
		if err != nil {
			result.Skipped++
			result.Errors = appendRowError(result.Errors, line, err.Error())
			continue
		}

		exists, err := s.users.UsernameExists(ctx, user.Username)
		if err != nil {
			s.logger.Warn("users import lookup failed", zap.Int("line", line), zap.Error(err))
			result.Skipped++
			result.Errors = appendRowError(result.Errors, line, "lookup failed")
			continue
		}
		if exists {
			result.Skipped++
			continue
		}

		taken, err := s.users.EmailExists(ctx, user.Email)
		if err != nil {
			s.logger.Warn("users import lookup failed", zap.Int("line", line), zap.Error(err))
			result.Skipped++
			result.Errors = appendRowError(result.Errors, line, "lookup failed")
			continue
		}
		if taken {
			result.Skipped++
			result.Errors = appendRowError(result.Errors, line, "email already registered")
			continue
		}

		if err := s.users.Create(ctx, user); err != nil {
			s.logger.Warn("users import row insert failed", zap.Int("line", line), zap.Error(err))
			result.Skipped++
			result.Errors = appendRowError(result.Errors, line, "insert failed")
			continue
		}
		result.Imported++
	}

	if s.metrics != nil {
		s.metrics.AddImportRows("users", "imported", result.Imported)
		s.metrics.AddImportRows("users", "skipped", result.Skipped)
	}
	s.audit.Record(ctx, authCtx.UserID, models.AuditActionImportUsers, "users", nil,
		"",
		fmt.Sprintf("imported=%d,skipped=%d", result.Imported, result.Skipped))

	return result, nil
}

// readHeader maps the required column names to their positions in the header
// row. Column order in the file does not matter.
func readHeader(reader *csv.Reader, required []string) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "csv file is empty or unreadable")
	}
	reader.FieldsPerRecord = len(header)

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("csv is missing required column %q", name))
		}
	}
	return columns, nil
}

func parseSaleRow(columns map[string]int, record []string) (*models.Sale, error) {
	field := func(name string) string {
		return strings.TrimSpace(record[columns[name]])
	}

	date, err := parseImportDate(field("date"))
	if err != nil {
		return nil, err
	}
	userID, err := strconv.ParseInt(field("user_id"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid user_id %q", field("user_id"))
	}
	quantity, err := strconv.Atoi(field("quantity"))
	if err != nil {
		return nil, fmt.Errorf("invalid quantity %q", field("quantity"))
	}
	unitPrice, err := decimal.NewFromString(field("unit_price"))
	if err != nil {
		return nil, fmt.Errorf("invalid unit_price %q", field("unit_price"))
	}
	totalAmount, err := decimal.NewFromString(field("total_amount"))
	if err != nil {
		return nil, fmt.Errorf("invalid total_amount %q", field("total_amount"))
	}

	sale := &models.Sale{
		Date:        date,
		UserID:      userID,
		ProductName: field("product_name"),
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TotalAmount: totalAmount,
		Region:      field("region"),
	}
	if sale.ProductName == "" {
		return nil, fmt.Errorf("product_name is required")
	}
	if err := sale.Validate(); err != nil {
		return nil, err
	}
	return sale, nil
}

func parseUserRow(columns map[string]int, record []string) (*models.User, error) {
	field := func(name string) string {
		return strings.TrimSpace(record[columns[name]])
	}

	username := field("username")
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	password := field("initial_password")
	if password == "" {
		return nil, fmt.Errorf("initial_password is required")
	}

	// Unknown roles degrade to the least-privileged tier rather than
	// rejecting the row.
	role := models.Role(strings.ToLower(field("role")))
	if !role.Valid() {
		role = models.RoleUser
	}

	return &models.User{
		Username:     username,
		Email:        field("email"),
		PasswordHash: HashPassword(password),
		Role:         role,
		IsActive:     true,
	}, nil
}

func parseImportDate(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}

func appendRowError(errs []string, line int, msg string) []string {
	// Cap the error detail so a pathological file cannot balloon the response.
	if len(errs) >= 20 {
		return errs
	}
	return append(errs, fmt.Sprintf("line %d: %s", line, msg))
}
