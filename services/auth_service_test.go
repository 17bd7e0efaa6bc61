package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"quizsite/models"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

func newTestAuth(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(newTestDB(t), "test-secret", time.Hour, nil)
}

func registerRequest(username, email string) *RegisterRequest {
	return &RegisterRequest{
		Username:        username,
		Email:           email,
		Password:        "correct-horse",
		PasswordConfirm: "correct-horse",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	auth := newTestAuth(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, registerRequest("alice", "alice@example.com"))
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.PasswordHash == "correct-horse" || user.PasswordHash == "" {
		t.Fatalf("password was not hashed")
	}

	token, loggedIn, err := auth.Login(ctx, &LoginRequest{Username: "alice", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Fatalf("Login user = (%d), want (%d)", loggedIn.ID, user.ID)
	}

	claims, err := ParseToken("test-secret", token)
	if err != nil {
		t.Fatalf("ParseToken returned error: %v", err)
	}
	id, err := claims.UserID()
	if err != nil || id != user.ID || claims.Username != "alice" || claims.IsStaff {
		t.Fatalf("claims = (%d, %q, staff %t, %v)", id, claims.Username, claims.IsStaff, err)
	}

	if _, _, err := auth.Login(ctx, &LoginRequest{Username: "alice", Password: "wrong-password"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Login wrong password err = (%v), want (%v)", err, ErrInvalidCredentials)
	}
	if _, _, err := auth.Login(ctx, &LoginRequest{Username: "nobody", Password: "correct-horse"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Login unknown user err = (%v), want (%v)", err, ErrInvalidCredentials)
	}
}

func TestRegisterValidation(t *testing.T) {
	auth := newTestAuth(t)
	ctx := context.Background()

	mismatch := registerRequest("bob", "bob@example.com")
	mismatch.PasswordConfirm = "something-else"
	if _, err := auth.Register(ctx, mismatch); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Register mismatch err = (%v), want (%v)", err, ErrInvalidInput)
	}

	if _, err := auth.Register(ctx, registerRequest("bob", "bob@example.com")); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if _, err := auth.Register(ctx, registerRequest("bob", "other@example.com")); !errors.Is(err, ErrConflict) {
		t.Fatalf("Register duplicate username err = (%v), want (%v)", err, ErrConflict)
	}
	if _, err := auth.Register(ctx, registerRequest("robert", "BOB@example.com")); !errors.Is(err, ErrConflict) {
		t.Fatalf("Register duplicate email err = (%v), want (%v)", err, ErrConflict)
	}
}

func TestRegisterLosingInsertRaceIsConflict(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db, "test-secret", time.Hour, nil)

	// Another registration claims the username after the uniqueness check has passed.
	fired := false
	err := db.Callback().Create().Before("gorm:create").Register("test:concurrent_signup", func(tx *gorm.DB) {
		if tx.Statement.Table != "users" || fired {
			return
		}
		fired = true
		tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO users (username, email, password_hash, is_staff, is_superuser) VALUES (?, ?, ?, ?, ?)",
			"racer", "racer@example.com", "x", false, false)
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	_, err = auth.Register(context.Background(), registerRequest("racer", "racer2@example.com"))
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("Register err = (%v), want (%v)", err, ErrConflict)
	}
	if !fired {
		t.Fatalf("concurrent insert never ran")
	}
}

func TestDuplicateKeyMapsToConflict(t *testing.T) {
	db := newTestDB(t)
	createUser(t, db, "alice", false, false)

	err := db.Create(&models.User{Username: "alice", Email: "elsewhere@example.com", PasswordHash: "x"}).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("duplicate insert err = (%v), want (%v)", err, gorm.ErrDuplicatedKey)
	}
	if got := conflict(err, "taken"); !errors.Is(got, ErrConflict) {
		t.Fatalf("conflict(%v) = (%v), want (%v)", err, got, ErrConflict)
	}
	if got := conflict(ErrNotFound, "taken"); got != ErrNotFound {
		t.Fatalf("conflict passthrough = (%v), want (%v)", got, ErrNotFound)
	}
}

func TestParseTokenRejectsBadTokens(t *testing.T) {
	auth := newTestAuth(t)
	user, err := auth.Register(context.Background(), registerRequest("carol", "carol@example.com"))
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	token, err := auth.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}
	if _, err := ParseToken("other-secret", token); err == nil {
		t.Fatalf("expected error for token signed with another secret")
	}

	expired := NewAuthService(nil, "test-secret", -time.Minute, nil)
	old, err := expired.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}
	if _, err := ParseToken("test-secret", old); err == nil {
		t.Fatalf("expected error for expired token")
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}
	if _, err := ParseToken("test-secret", unsigned); err == nil {
		t.Fatalf("expected error for unsigned token")
	}
}

func TestProfile(t *testing.T) {
	auth := newTestAuth(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, registerRequest("dave", "dave@example.com"))
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if _, err := auth.Register(ctx, registerRequest("erin", "erin@example.com")); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	profile, err := auth.GetProfile(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetProfile returned error: %v", err)
	}
	if profile.User.Username != "dave" || profile.TotalQuizzesAttempted != 0 || profile.CreatedAt.IsZero() {
		t.Fatalf("profile = (%+v)", profile)
	}

	updated, err := auth.UpdateProfile(ctx, user.ID, &UpdateProfileRequest{Email: "dave@new.example.com", FirstName: "Dave", LastName: "D"})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if updated.User.Email != "dave@new.example.com" || updated.User.FirstName != "Dave" {
		t.Fatalf("updated profile = (%+v)", updated.User)
	}

	if _, err := auth.UpdateProfile(ctx, user.ID, &UpdateProfileRequest{Email: "ERIN@example.com"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("UpdateProfile taken email err = (%v), want (%v)", err, ErrConflict)
	}
	if _, err := auth.GetProfile(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetProfile missing err = (%v), want (%v)", err, ErrNotFound)
	}
}
