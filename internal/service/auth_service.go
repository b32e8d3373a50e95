package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/tirs/dashboard/internal/models"
	appErrors "github.com/tirs/dashboard/pkg/errors"
)

type authUserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}

type auditRecorder interface {
	Record(ctx context.Context, actorID int64, action, table string, recordID *int64, oldValues, newValues string)
}

type loginCounter interface {
	IncLogin(outcome string)
}

// AuthConfig defines configuration for session token issuance.
type AuthConfig struct {
	TokenSecret string
	TokenExpiry time.Duration
	Issuer      string
}

// AuthService provides authentication and account lifecycle use cases.
type AuthService struct {
	repo      authUserRepository
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
	metrics   loginCounter
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, audit auditRecorder, validate *validator.Validate, logger *zap.Logger, metrics loginCounter, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &AuthService{repo: repo, audit: audit, validator: validate, logger: logger, metrics: metrics, config: config}
}

// Login verifies credentials and establishes a session token. A missing
// user, a wrong password and a deactivated account all fail with the same
// generic error so that account state cannot be enumerated.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.failLogin()
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to fetch user")
	}

	if !VerifyPassword(req.Password, user.PasswordHash) || !user.IsActive {
		return nil, s.failLogin()
	}

	token, issuedAt, err := s.generateToken(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session token")
	}

	if s.metrics != nil {
		s.metrics.IncLogin("success")
	}

	// Best-effort: a failed stamp must not turn a valid login away.
	if err := s.repo.UpdateLastLogin(ctx, user.ID, issuedAt); err != nil {
		s.logger.Warn("failed to update last login",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
	}

	s.audit.Record(ctx, user.ID, models.AuditActionLogin, "users", &user.ID, "", "status=success")

	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.TokenExpiry.Seconds()),
		IssuedAt:    issuedAt,
		User: models.UserInfo{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
		},
	}, nil
}

func (s *AuthService) failLogin() error {
	if s.metrics != nil {
		s.metrics.IncLogin("failure")
	}
	return appErrors.Clone(appErrors.ErrInvalidCredentials, "")
}

// Register creates a self-service account. New registrations always get the
// user tier; escalation only happens through the admin role-update path.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, registerValidationMessage(err))
	}

	exists, err := s.repo.UsernameExists(ctx, req.Username)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to check username uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateUsername, "")
	}

	taken, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to check email uniqueness")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrDuplicateEmail, "")
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: HashPassword(req.Password),
		Role:         models.RoleUser,
		IsActive:     true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to create user")
	}

	s.audit.Record(ctx, user.ID, models.AuditActionCreateUser, "users", &user.ID,
		"",
		fmt.Sprintf("username=%s,role=%s,is_active=true", user.Username, user.Role),
	)

	return user, nil
}

// ChangePassword rotates the caller's password after re-verifying the old
// one. The new password only has to clear the length-6 bar.
func (s *AuthService) ChangePassword(ctx context.Context, authCtx models.AuthContext, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "new password must be at least 6 characters")
	}

	user, err := s.repo.FindByID(ctx, authCtx.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load user")
	}

	if !VerifyPassword(req.OldPassword, user.PasswordHash) {
		return appErrors.Clone(appErrors.ErrValidation, "current password is incorrect")
	}

	if req.NewPassword == req.OldPassword {
		return appErrors.Clone(appErrors.ErrValidation, "new password must be different from current password")
	}

	if err := s.repo.UpdatePassword(ctx, user.ID, HashPassword(req.NewPassword)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to update password")
	}

	// Snapshots carry a marker only; hashes are never written to the trail.
	s.audit.Record(ctx, authCtx.UserID, models.AuditActionUpdatePassword, "users", &user.ID,
		"password_hash=[redacted]",
		"password_hash=[redacted]",
	)

	return nil
}

// ValidateToken parses and validates a session token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.TokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) generateToken(user *models.User) (string, time.Time, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.TokenExpiry)
	claims := &models.JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   fmt.Sprintf("%d", user.ID),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.TokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, issuedAt, nil
}

// registerValidationMessage maps the first failed rule to a user-facing
// message naming the check.
func registerValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid registration payload"
	}
	f := verrs[0]
	switch f.Field() {
	case "Username":
		return "username must be 3-20 characters"
	case "Email":
		return "email address is not valid"
	case "Password":
		return "password must be at least 8 characters with an uppercase letter and a digit"
	default:
		return "invalid registration payload"
	}
}
