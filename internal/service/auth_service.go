package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/lostid-api/internal/models"
	"github.com/noah-isme/lostid-api/internal/repository"
	appErrors "github.com/noah-isme/lostid-api/pkg/errors"
)

type studentAccounts interface {
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByNumberOrEmail(ctx context.Context, number, email string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
}

type adminAccounts interface {
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	FindByID(ctx context.Context, id string) (*models.Admin, error)
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	Create(ctx context.Context, admin *models.Admin) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
}

// AuthService provides signup, login and token validation for students and admins.
type AuthService struct {
	students  studentAccounts
	admins    adminAccounts
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(students studentAccounts, admins adminAccounts, audit auditWriter, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 24 * time.Hour
	}
	RegisterAccountValidators(validate)
	return &AuthService{students: students, admins: admins, audit: audit, validator: validate, logger: logger, config: config, now: time.Now}
}

// RegisterAccountValidators adds the digits_min and alpha_name rules used by signup.
func RegisterAccountValidators(v *validator.Validate) {
	_ = v.RegisterValidation("digits_min", func(fl validator.FieldLevel) bool {
		min, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		value := fl.Field().String()
		if len(value) < min {
			return false
		}
		for _, r := range value {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	})
	_ = v.RegisterValidation("alpha_name", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return false
		}
		for _, r := range value {
			if !unicode.IsLetter(r) {
				return false
			}
		}
		return true
	})
}

// Signup registers a student and returns a session for them.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.LoginResponse, error) {
	req.StudentID = strings.TrimSpace(req.StudentID)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, signupMessage(err))
	}

	exists, err := s.students.ExistsByNumberOrEmail(ctx, req.StudentID, req.Email)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to check existing accounts")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student ID or email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	student := &models.Student{
		StudentNumber: req.StudentID,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Phone:         req.Phone,
		PasswordHash:  string(hash),
	}
	if err := s.students.Create(ctx, student); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student ID or email already registered")
		}
		return nil, appErrors.Storage(err, "failed to create student")
	}

	return s.issue(studentInfo(student))
}

// LoginStudent authenticates a student by email and password.
func (s *AuthService) LoginStudent(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid login payload")
	}

	student, err := s.students.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.Storage(err, "failed to fetch student")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.ErrInvalidCredentials
	}

	info := studentInfo(student)
	s.recordLogin(ctx, info, req)
	return s.issue(info)
}

// LoginAdmin authenticates staff. Inactive accounts are refused after the password check.
func (s *AuthService) LoginAdmin(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid login payload")
	}

	admin, err := s.admins.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.Storage(err, "failed to fetch admin")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.ErrInvalidCredentials
	}
	if !admin.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}

	if err := s.admins.UpdateLastLogin(ctx, admin.ID, s.now().UTC()); err != nil {
		s.logger.Warn("failed to update last login", zap.String("admin_id", admin.ID), zap.Error(err))
	}
	info := adminInfo(admin)
	s.recordLogin(ctx, info, req)
	return s.issue(info)
}

// Me resolves the principal behind verified claims.
func (s *AuthService) Me(ctx context.Context, claims *models.JWTClaims) (*models.UserInfo, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	var info models.UserInfo
	switch {
	case claims.Role == models.RoleStudent:
		student, err := s.students.FindByID(ctx, claims.UserID)
		if err != nil {
			return nil, principalGone(err)
		}
		info = studentInfo(student)
	case claims.Role.IsAdmin():
		admin, err := s.admins.FindByID(ctx, claims.UserID)
		if err != nil {
			return nil, principalGone(err)
		}
		if !admin.Active {
			return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
		}
		info = adminInfo(admin)
	default:
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unknown role")
	}
	return &info, nil
}

// CreateAdmin provisions a staff account; used by the create-admin command.
func (s *AuthService) CreateAdmin(ctx context.Context, fullName, email, password string, role models.UserRole) (*models.Admin, error) {
	if !role.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("role must be %s or %s", models.RoleAdmin, models.RoleSuperAdmin))
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.validator.Var(email, "required,email"); err != nil {
		return nil, validationError(err, "invalid email")
	}
	if len(password) < 8 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	admin := &models.Admin{FullName: strings.TrimSpace(fullName), Email: email, PasswordHash: string(hash), Role: role, Active: true}
	if err := s.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "admin email already registered")
		}
		return nil, appErrors.Storage(err, "failed to create admin")
	}
	return admin, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// TokenTTL reports how long issued tokens stay valid.
func (s *AuthService) TokenTTL() time.Duration {
	return s.config.AccessTokenExpiry
}

func (s *AuthService) issue(info models.UserInfo) (*models.LoginResponse, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.config.AccessTokenExpiry)
	claims := &models.JWTClaims{
		UserID:   info.ID,
		Role:     info.Role,
		Email:    info.Email,
		FullName: info.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   info.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.AccessTokenSecret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}
	return &models.LoginResponse{
		AccessToken: signed,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		User:        info,
		IssuedAt:    issuedAt,
	}, nil
}

func (s *AuthService) recordLogin(ctx context.Context, info models.UserInfo, req models.LoginRequest) {
	if s.audit == nil {
		return
	}
	userID := info.ID
	if err := s.audit.Create(ctx, &models.AuditLog{
		UserID:     &userID,
		Action:     models.AuditActionLogin,
		Resource:   models.AuditResourceAuthenticate,
		ResourceID: &userID,
		NewValues:  []byte(fmt.Sprintf(`{"status":"success","role":%q}`, info.Role)),
		IPAddress:  req.IP,
		UserAgent:  req.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record login audit log", zap.Error(err))
	}
}

func studentInfo(student *models.Student) models.UserInfo {
	return models.UserInfo{
		ID:            student.ID,
		Email:         student.Email,
		FullName:      student.FullName(),
		Role:          models.RoleStudent,
		StudentNumber: student.StudentNumber,
	}
}

func adminInfo(admin *models.Admin) models.UserInfo {
	return models.UserInfo{ID: admin.ID, Email: admin.Email, FullName: admin.FullName, Role: admin.Role}
}

func principalGone(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrUnauthorized, "account no longer exists")
	}
	return appErrors.Storage(err, "failed to load account")
}

var signupFieldMessages = map[string]string{
	"StudentID": "student ID must be at least 10 digits",
	"FirstName": "first name must contain only letters",
	"LastName":  "last name must contain only letters",
	"Email":     "a valid email address is required",
	"Phone":     "phone number must be at least 10 digits",
	"Password":  "password must be between 8 and 72 characters",
}

func signupMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "invalid signup payload"
	}
	if msg, ok := signupFieldMessages[fieldErrs[0].Field()]; ok {
		return msg
	}
	return "invalid signup payload"
}
