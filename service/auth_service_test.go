package application

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/authorization"
	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/domain"
	apperrors "github.com/jeffrin-samuel/RoyalRetreats-FullStack/errors"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserStore, *fakeTokenCache, *fakeMailer) {
	t.Helper()
	users := newFakeUserStore()
	cache := newFakeTokenCache()
	mailer := newFakeMailer()
	tokens, err := authorization.NewTokenManager("auth_test_secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	service := NewAuthService(users, tokens, cache, mailer, testLogger(), testTracer())
	return service, users, cache, mailer
}

func TestSignupAndLogin(t *testing.T) {
	service, _, _, mailer := newAuthFixture(t)

	user, err := service.Signup(context.Background(), domain.SignupPayload{
		Username: "mina",
		Email:    "mina@example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if user.Password == "hunter22" {
		t.Fatal("password stored in plaintext")
	}
	if len(mailer.welcomes) != 1 || mailer.welcomes[0] != "mina@example.com" {
		t.Errorf("welcome mails = %v", mailer.welcomes)
	}

	token, err := service.Login(context.Background(), domain.LoginPayload{Username: "mina", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	service, users, _, _ := newAuthFixture(t)
	users.add(&domain.User{Username: "mina", Email: "mina@example.com"})

	_, err := service.Signup(context.Background(), domain.SignupPayload{
		Username: "other",
		Email:    "mina@example.com",
		Password: "hunter22",
	})
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if err.Error() != apperrors.EmailAlreadyRegistered {
		t.Errorf("message = %q, want %q", err.Error(), apperrors.EmailAlreadyRegistered)
	}
}

func TestSignupWelcomeMailFailureSwallowed(t *testing.T) {
	service, _, _, mailer := newAuthFixture(t)
	mailer.fail = errors.New("smtp down")

	if _, err := service.Signup(context.Background(), domain.SignupPayload{
		Username: "mina",
		Email:    "mina@example.com",
		Password: "hunter22",
	}); err != nil {
		t.Fatalf("Signup must not fail on a mail error, got %v", err)
	}
}

func TestLoginBadCredentialsReadTheSame(t *testing.T) {
	service, users, _, _ := newAuthFixture(t)
	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	users.add(&domain.User{Username: "mina", Email: "mina@example.com", Password: string(hash)})

	_, errNoUser := service.Login(context.Background(), domain.LoginPayload{Username: "ghost", Password: "hunter22"})
	_, errBadPass := service.Login(context.Background(), domain.LoginPayload{Username: "mina", Password: "wrong"})

	for _, err := range []error{errNoUser, errBadPass} {
		if !errors.Is(err, apperrors.ErrUnauthorized) {
			t.Fatalf("err = %v, want unauthorized", err)
		}
	}
	if errNoUser.Error() != errBadPass.Error() {
		t.Errorf("messages differ: %q vs %q", errNoUser.Error(), errBadPass.Error())
	}
}

func TestLogoutBlocksToken(t *testing.T) {
	service, users, cache, _ := newAuthFixture(t)
	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	users.add(&domain.User{Username: "mina", Email: "mina@example.com", Password: string(hash)})

	token, err := service.Login(context.Background(), domain.LoginPayload{Username: "mina", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := service.Logout(context.Background(), token); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	blocked, err := cache.IsTokenBlocked(context.Background(), token)
	if err != nil {
		t.Fatalf("IsTokenBlocked: %v", err)
	}
	if !blocked {
		t.Fatal("token not blocklisted after logout")
	}
}

func TestSendResetCodeIssuesSixDigits(t *testing.T) {
	service, users, _, mailer := newAuthFixture(t)
	user := users.add(&domain.User{Username: "mina", Email: "mina@example.com"})

	before := time.Now()
	if err := service.SendResetCode(context.Background(), domain.ResetRequestPayload{Email: "mina@example.com"}); err != nil {
		t.Fatalf("SendResetCode: %v", err)
	}

	if !regexp.MustCompile(`^[1-9]\d{5}$`).MatchString(user.ResetCode) {
		t.Errorf("code = %q, want six digits", user.ResetCode)
	}
	if mailer.codes["mina@example.com"] != user.ResetCode {
		t.Errorf("mailed code %q differs from stored %q", mailer.codes["mina@example.com"], user.ResetCode)
	}

	wantExpiry := before.Add(time.Hour).UnixMilli()
	if user.ResetCodeExpiry < wantExpiry || user.ResetCodeExpiry > wantExpiry+int64(time.Minute/time.Millisecond) {
		t.Errorf("expiry = %d, want about one hour out", user.ResetCodeExpiry)
	}
}

func TestSendResetCodeUnknownEmail(t *testing.T) {
	service, _, _, _ := newAuthFixture(t)

	err := service.SendResetCode(context.Background(), domain.ResetRequestPayload{Email: "ghost@example.com"})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if err.Error() != apperrors.UserNotFound {
		t.Errorf("message = %q, want %q", err.Error(), apperrors.UserNotFound)
	}
}

func TestSendResetCodeMailFailure(t *testing.T) {
	service, users, _, mailer := newAuthFixture(t)
	users.add(&domain.User{Username: "mina", Email: "mina@example.com"})
	mailer.fail = errors.New("smtp down")

	err := service.SendResetCode(context.Background(), domain.ResetRequestPayload{Email: "mina@example.com"})
	if !errors.Is(err, apperrors.ErrUpstream) {
		t.Fatalf("err = %v, want upstream", err)
	}
}

func TestVerifyResetCodeWindowAndReuse(t *testing.T) {
	service, users, _, _ := newAuthFixture(t)
	user := users.add(&domain.User{Username: "mina", Email: "mina@example.com"})

	// A code issued an hour ago with a minute left still verifies, and
	// verifying does not consume it.
	user.ResetCode = "123456"
	user.ResetCodeExpiry = time.Now().Add(time.Minute).UnixMilli()

	for i := 0; i < 2; i++ {
		if err := service.VerifyResetCode(context.Background(), domain.ResetVerifyPayload{Code: "123456"}); err != nil {
			t.Fatalf("verify attempt %d: %v", i+1, err)
		}
	}

	// Past expiry the same code is dead.
	user.ResetCodeExpiry = time.Now().Add(-time.Minute).UnixMilli()
	err := service.VerifyResetCode(context.Background(), domain.ResetVerifyPayload{Code: "123456"})
	if !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expired code: err = %v, want unauthorized", err)
	}
	if err.Error() != apperrors.InvalidOrExpiredCode {
		t.Errorf("message = %q, want %q", err.Error(), apperrors.InvalidOrExpiredCode)
	}

	// Wrong code reads identically.
	err = service.VerifyResetCode(context.Background(), domain.ResetVerifyPayload{Code: "654321"})
	if !errors.Is(err, apperrors.ErrUnauthorized) || err.Error() != apperrors.InvalidOrExpiredCode {
		t.Errorf("wrong code: err = %v", err)
	}
}

func TestResetPasswordClearsCode(t *testing.T) {
	service, users, _, _ := newAuthFixture(t)
	user := users.add(&domain.User{Username: "mina", Email: "mina@example.com"})
	user.ResetCode = "123456"
	user.ResetCodeExpiry = time.Now().Add(time.Hour).UnixMilli()

	err := service.ResetPassword(context.Background(), domain.ResetPasswordPayload{
		Email:           "mina@example.com",
		NewPassword:     "newpass99",
		ConfirmPassword: "newpass99",
	})
	if err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("newpass99")) != nil {
		t.Error("new password does not verify")
	}
	if user.ResetCode != "" || user.ResetCodeExpiry != 0 {
		t.Errorf("reset code not cleared: %q / %d", user.ResetCode, user.ResetCodeExpiry)
	}
}

func TestResetPasswordMismatch(t *testing.T) {
	service, users, _, _ := newAuthFixture(t)
	users.add(&domain.User{Username: "mina", Email: "mina@example.com"})

	err := service.ResetPassword(context.Background(), domain.ResetPasswordPayload{
		Email:           "mina@example.com",
		NewPassword:     "newpass99",
		ConfirmPassword: "different",
	})

	var validation *domain.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if len(validation.Fields) != 1 || validation.Fields[0].Message != apperrors.PasswordsDoNotMatch {
		t.Errorf("fields = %+v, want a single %q", validation.Fields, apperrors.PasswordsDoNotMatch)
	}
}
