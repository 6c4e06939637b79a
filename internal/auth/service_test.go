package auth

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/The-WildNuts/The-Wild-Nuts/internal/otp"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/sheets"
	"github.com/The-WildNuts/The-Wild-Nuts/internal/users"
	pkgauth "github.com/The-WildNuts/The-Wild-Nuts/pkg/auth"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/config"
	pkgerrors "github.com/The-WildNuts/The-Wild-Nuts/pkg/errors"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/logger"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/security"
)

type mailRecord struct {
	kind string
	to   string
	code string
}

type fakeMailer struct {
	sent []mailRecord
}

func (m *fakeMailer) SendOTP(_ context.Context, to, code string) error {
	m.sent = append(m.sent, mailRecord{kind: "otp", to: to, code: code})
	return nil
}

func (m *fakeMailer) SendWelcome(_ context.Context, to, _ string) error {
	m.sent = append(m.sent, mailRecord{kind: "welcome", to: to})
	return nil
}

func (m *fakeMailer) SendOrderStatus(_ context.Context, to, _, _, _ string) error {
	m.sent = append(m.sent, mailRecord{kind: "status", to: to})
	return nil
}

func (m *fakeMailer) SendOrderCancelled(_ context.Context, to, _, _ string) error {
	m.sent = append(m.sent, mailRecord{kind: "cancelled", to: to})
	return nil
}

func (m *fakeMailer) SendMarketing(_ context.Context, to, _, _ string) error {
	m.sent = append(m.sent, mailRecord{kind: "marketing", to: to})
	return nil
}

var testJWT = config.JWTConfig{Secret: "test-secret", Issuer: "the-wild-nuts", ExpirationHours: 24}

func newTestService(t *testing.T, admin config.AdminConfig) (Service, *sheets.Memory, *fakeMailer) {
	t.Helper()
	store := sheets.NewMemory()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	cache := sheets.NewCache(sheets.CacheParams{Clock: clock})
	logg := logger.New(logger.Options{ServiceName: "auth-test", Output: io.Discard})
	mail := &fakeMailer{}

	userSvc, err := users.NewService(users.ServiceParams{Store: store, Cache: cache, Logger: logg, Clock: clock})
	if err != nil {
		t.Fatalf("users.NewService: %v", err)
	}
	otpSvc, err := otp.NewService(otp.ServiceParams{Store: store, Logger: logg, Clock: clock})
	if err != nil {
		t.Fatalf("otp.NewService: %v", err)
	}
	svc, err := NewService(ServiceParams{
		Users:  userSvc,
		OTP:    otpSvc,
		Mailer: mail,
		JWT:    testJWT,
		Admin:  admin,
		Logger: logg,
		Clock:  clock,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, store, mail
}

func seedUser(t *testing.T, store *sheets.Memory, email, username, password string) {
	t.Helper()
	hash, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	store.Seed("Users", []string{
		"Email", "Username", "Password_Hash", "Full_Name", "Phone",
		"Address", "City", "State", "Pincode", "Created_At",
		"Last_Login", "Session_Token", "Profile_Complete",
	}, [][]string{
		{email, username, hash, "", "", "", "", "", "", "2025-01-01 09:00:00", "", "", "true"},
	})
}

func TestRegisterIssuesToken(t *testing.T) {
	svc, _, mail := newTestService(t, config.AdminConfig{})

	session, err := svc.Register(context.Background(), "new@example.com", "Str0ngPass")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if session.Email != "new@example.com" || session.Role != pkgauth.RoleUser {
		t.Fatalf("unexpected session: %+v", session)
	}

	claims, err := pkgauth.ParseAccessToken(testJWT, session.Token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Email != "new@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if len(mail.sent) != 1 || mail.sent[0].kind != "welcome" {
		t.Fatalf("welcome mail expected, got %+v", mail.sent)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc, store, _ := newTestService(t, config.AdminConfig{})
	seedUser(t, store, "taken@example.com", "taken", "Str0ngPass")

	if _, err := svc.Register(context.Background(), "Taken@example.com", "Str0ngPass"); !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLoginByEmailAndUsername(t *testing.T) {
	svc, store, _ := newTestService(t, config.AdminConfig{})
	seedUser(t, store, "ravi@example.com", "ravi_k", "Str0ngPass")

	session, err := svc.Login(context.Background(), "ravi@example.com", "Str0ngPass")
	if err != nil {
		t.Fatalf("Login by email: %v", err)
	}
	if !session.ProfileComplete || session.Username != "ravi_k" {
		t.Fatalf("unexpected session: %+v", session)
	}

	if _, err := svc.Login(context.Background(), "ravi_k", "Str0ngPass"); err != nil {
		t.Fatalf("Login by username: %v", err)
	}

	user, err := store.Rows(context.Background(), "Users")
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if user[0]["Session_Token"] == "" || user[0]["Last_Login"] != "2025-06-01 12:00:00" {
		t.Fatalf("login must record session and timestamp: %v", user[0])
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, store, _ := newTestService(t, config.AdminConfig{})
	seedUser(t, store, "ravi@example.com", "ravi_k", "Str0ngPass")

	if _, err := svc.Login(context.Background(), "ravi@example.com", "wrong"); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("wrong password: expected unauthorized, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "ghost@example.com", "Str0ngPass"); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("unknown user must read as invalid credentials, got %v", err)
	}
}

func TestAdminOverrideLogin(t *testing.T) {
	admin := config.AdminConfig{Email: "boss@thewildnuts.com", SecurityKey: "sesame"}
	svc, _, _ := newTestService(t, admin)

	session, err := svc.Login(context.Background(), "boss@thewildnuts.com", "sesame")
	if err != nil {
		t.Fatalf("admin override login: %v", err)
	}
	if session.Role != pkgauth.RoleAdmin || !session.ProfileComplete {
		t.Fatalf("unexpected admin session: %+v", session)
	}

	claims, err := pkgauth.ParseAccessToken(testJWT, session.Token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Role != pkgauth.RoleAdmin {
		t.Fatalf("token must carry the admin role: %+v", claims)
	}
}

func TestAdminLogin(t *testing.T) {
	admin := config.AdminConfig{Email: "boss@thewildnuts.com", SecurityKey: "sesame"}
	svc, _, _ := newTestService(t, admin)

	session, err := svc.AdminLogin(context.Background(), "boss@thewildnuts.com", "sesame")
	if err != nil {
		t.Fatalf("AdminLogin: %v", err)
	}
	if session.Email != "admin@thewildnuts.com" {
		t.Fatalf("admin tokens mint for the canonical principal, got %q", session.Email)
	}

	if _, err := svc.AdminLogin(context.Background(), "boss@thewildnuts.com", "wrong"); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAdminLoginDisabledWithoutConfig(t *testing.T) {
	svc, _, _ := newTestService(t, config.AdminConfig{})
	if _, err := svc.AdminLogin(context.Background(), "", ""); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("unconfigured admin must reject everything, got %v", err)
	}
}

func TestForgotPasswordFlow(t *testing.T) {
	svc, store, mail := newTestService(t, config.AdminConfig{})
	seedUser(t, store, "ravi@example.com", "ravi_k", "Str0ngPass")

	if err := svc.ForgotPassword(context.Background(), "ravi@example.com"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	if len(mail.sent) != 1 || mail.sent[0].kind != "otp" || len(mail.sent[0].code) != 6 {
		t.Fatalf("expected six digit otp mail, got %+v", mail.sent)
	}
	code := mail.sent[0].code

	if err := svc.ResetPassword(context.Background(), "ravi@example.com", code, "N3wStrongPass"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if _, err := svc.Login(context.Background(), "ravi@example.com", "N3wStrongPass"); err != nil {
		t.Fatalf("new password must authenticate: %v", err)
	}
	if _, err := svc.Login(context.Background(), "ravi@example.com", "Str0ngPass"); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("old password must be rejected, got %v", err)
	}

	if err := svc.ResetPassword(context.Background(), "ravi@example.com", code, "An0therPass"); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("otp reuse must fail, got %v", err)
	}
}

func TestForgotPasswordDoesNotRevealAccounts(t *testing.T) {
	svc, _, mail := newTestService(t, config.AdminConfig{})

	if err := svc.ForgotPassword(context.Background(), "ghost@example.com"); err != nil {
		t.Fatalf("unknown email must report success, got %v", err)
	}
	if len(mail.sent) != 0 {
		t.Fatalf("no mail should be sent for unknown emails, got %+v", mail.sent)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	svc, store, _ := newTestService(t, config.AdminConfig{})
	seedUser(t, store, "ravi@example.com", "ravi_k", "Str0ngPass")

	if _, err := svc.Login(context.Background(), "ravi@example.com", "Str0ngPass"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := svc.Logout(context.Background(), "ravi@example.com"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	rows, _ := store.Rows(context.Background(), "Users")
	if rows[0]["Session_Token"] != "" {
		t.Fatalf("session token should be cleared: %v", rows[0])
	}

	// Admin principals have no sheet row; logout is still a success.
	if err := svc.Logout(context.Background(), "admin@thewildnuts.com"); err != nil {
		t.Fatalf("admin logout: %v", err)
	}
}
