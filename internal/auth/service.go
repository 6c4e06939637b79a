package auth

import (
	"context"
	"strings"
	"time"

	"github.com/The-WildNuts/The-Wild-Nuts/internal/otp"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/users"
	pkgauth "github.com/The-WildNuts/The-Wild-Nuts/pkg/auth"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/config"
	pkgerrors "github.com/The-WildNuts/The-Wild-Nuts/pkg/errors"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/logger"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/mailer"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/security"
)

// adminEmail is the principal admin tokens are minted for.
const adminEmail = "admin@thewildnuts.com"

// Session is the result of a successful authentication.
type Session struct {
	Token           string     `json:"token"`
	Email           string     `json:"email"`
	Username        string     `json:"username"`
	Role            string     `json:"role"`
	ProfileComplete bool       `json:"profile_complete"`
	User            users.User `json:"user"`
}

// ServiceParams groups dependencies for the auth service.
type ServiceParams struct {
	Users  users.Service
	OTP    otp.Service
	Mailer mailer.Mailer
	JWT    config.JWTConfig
	Admin  config.AdminConfig
	Logger *logger.Logger
	Clock  func() time.Time
}

// Service orchestrates registration, login and the password-reset flow.
type Service interface {
	Register(ctx context.Context, email, password string) (Session, error)
	Login(ctx context.Context, identifier, password string) (Session, error)
	AdminLogin(ctx context.Context, identifier, securityKey string) (Session, error)
	Logout(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

type service struct {
	users users.Service
	otp   otp.Service
	mail  mailer.Mailer
	jwt   config.JWTConfig
	admin config.AdminConfig
	logg  *logger.Logger
	clock func() time.Time
}

// NewService builds an auth service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user service is required")
	}
	if params.OTP == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "otp service is required")
	}
	if params.Mailer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mailer is required")
	}
	if params.JWT.Secret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "jwt secret is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	if params.Clock == nil {
		params.Clock = time.Now
	}
	return &service{
		users: params.Users,
		otp:   params.OTP,
		mail:  params.Mailer,
		jwt:   params.JWT,
		admin: params.Admin,
		logg:  params.Logger,
		clock: params.Clock,
	}, nil
}

// Register creates the account and returns a ready session. The welcome
// mail is best effort.
func (s *service) Register(ctx context.Context, email, password string) (Session, error) {
	hash, err := security.HashPassword(password)
	if err != nil {
		return Session{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, email, hash)
	if err != nil {
		return Session{}, err
	}

	name := email
	if at := strings.Index(email, "@"); at > 0 {
		name = email[:at]
	}
	if err := s.mail.SendWelcome(ctx, email, name); err != nil {
		s.logg.Error(s.logg.WithUserEmail(ctx, email), "welcome mail failed", err)
	}

	token, err := pkgauth.MintAccessToken(s.jwt, s.clock(), pkgauth.AccessTokenPayload{Email: user.Email})
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, Email: user.Email, Role: pkgauth.RoleUser, User: user}, nil
}

// Login authenticates by email or username. The configured admin
// identity short-circuits the sheet entirely, so the dashboard stays
// reachable even when the store is down.
func (s *service) Login(ctx context.Context, identifier, password string) (Session, error) {
	if identifier == "" || password == "" {
		return Session{}, pkgerrors.New(pkgerrors.CodeValidation, "identifier and password are required")
	}

	if s.admin.Enabled() && identifier == s.admin.Email && password == s.admin.SecurityKey {
		return s.adminSession(ctx, s.admin.Email)
	}

	var user users.User
	var err error
	if strings.Contains(identifier, "@") {
		user, err = s.users.ByEmail(ctx, identifier)
	} else {
		user, err = s.users.ByUsername(ctx, identifier)
	}
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return Session{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return Session{}, err
	}
	if !security.VerifyPassword(password, user.PasswordHash) {
		return Session{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	sessionToken, err := security.GenerateSessionToken()
	if err != nil {
		return Session{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate session token")
	}
	if err := s.users.RecordLogin(ctx, user.Email, sessionToken); err != nil {
		return Session{}, err
	}

	token, err := pkgauth.MintAccessToken(s.jwt, s.clock(), pkgauth.AccessTokenPayload{
		Email:    user.Email,
		Username: user.Username,
	})
	if err != nil {
		return Session{}, err
	}
	s.logg.Info(s.logg.WithUserEmail(ctx, user.Email), "user logged in")
	return Session{
		Token:           token,
		Email:           user.Email,
		Username:        user.Username,
		Role:            pkgauth.RoleUser,
		ProfileComplete: user.ProfileComplete,
		User:            user,
	}, nil
}

// AdminLogin checks the configured identifier and security key. The
// rejection is deliberately generic to prevent enumeration.
func (s *service) AdminLogin(ctx context.Context, identifier, securityKey string) (Session, error) {
	if !s.admin.Enabled() || identifier != s.admin.Email || securityKey != s.admin.SecurityKey {
		return Session{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid security credentials")
	}
	return s.adminSession(ctx, adminEmail)
}

func (s *service) adminSession(ctx context.Context, email string) (Session, error) {
	token, err := pkgauth.MintAccessToken(s.jwt, s.clock(), pkgauth.AccessTokenPayload{
		Email:    email,
		Username: "admin",
		Role:     pkgauth.RoleAdmin,
	})
	if err != nil {
		return Session{}, err
	}
	s.logg.Info(s.logg.WithUserEmail(ctx, email), "admin logged in")
	return Session{
		Token:           token,
		Email:           email,
		Username:        "Admin",
		Role:            pkgauth.RoleAdmin,
		ProfileComplete: true,
		User:            users.User{Email: email, Username: "Admin", FullName: "Administrator"},
	}, nil
}

// Logout clears the stored session token.
func (s *service) Logout(ctx context.Context, email string) error {
	err := s.users.ClearSession(ctx, email)
	if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		// Admin sessions have no sheet row to clear.
		return nil
	}
	return err
}

// ForgotPassword issues and mails a reset code. An unknown email is
// reported as success so the endpoint cannot be used to probe accounts.
func (s *service) ForgotPassword(ctx context.Context, email string) error {
	if _, err := s.users.ByEmail(ctx, email); err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil
		}
		return err
	}

	code, err := security.GenerateOTP()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate otp")
	}
	if err := s.otp.Store(ctx, email, code); err != nil {
		return err
	}
	if err := s.mail.SendOTP(ctx, email, code); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send otp mail")
	}
	return nil
}

// VerifyOTP redeems the code without changing the password; the client
// uses it to gate the reset form.
func (s *service) VerifyOTP(ctx context.Context, email, code string) error {
	return s.otp.Verify(ctx, email, code)
}

// ResetPassword redeems the code and replaces the stored hash.
func (s *service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if err := s.otp.Verify(ctx, email, code); err != nil {
		return err
	}
	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	return s.users.UpdatePasswordHash(ctx, email, hash)
}
