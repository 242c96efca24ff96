package cmapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ranswife/cmapi/password"
)

func TestCreateAccountSuccess(t *testing.T) {
	store := newMemoryUserStore()
	engine, _ := newTestEngine(t, testConfig(), store)

	res, err := engine.CreateAccount(context.Background(), CreateAccountRequest{
		Username: "alice_01",
		Password: "correct horse",
		Nickname: "Alice",
	})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if res.UserID == "" {
		t.Fatal("expected created user id")
	}
	if res.Username != "alice_01" || res.Nickname != "Alice" {
		t.Fatalf("unexpected result: %+v", res)
	}

	created := store.users[res.UserID]
	if created.PasswordHash == "" || created.PasswordHash == "correct horse" {
		t.Fatal("expected stored password to be hashed")
	}
	if !password.Verify("correct horse", created.PasswordHash) {
		t.Fatal("expected stored hash to verify")
	}
}

func TestCreateAccountDuplicateRejected(t *testing.T) {
	store := newMemoryUserStore()
	seedUser(t, store, "alice", "first password")

	engine, _ := newTestEngine(t, testConfig(), store)

	_, err := engine.CreateAccount(context.Background(), CreateAccountRequest{
		Username: "alice",
		Password: "second password",
		Nickname: "Alice",
	})
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestCreateAccountValidation(t *testing.T) {
	store := newMemoryUserStore()
	engine, _ := newTestEngine(t, testConfig(), store)

	cases := []struct {
		name string
		req  CreateAccountRequest
	}{
		{"username too short", CreateAccountRequest{Username: "ab", Password: "password1", Nickname: "n"}},
		{"username too long", CreateAccountRequest{Username: strings.Repeat("a", 33), Password: "password1", Nickname: "n"}},
		{"username bad characters", CreateAccountRequest{Username: "al ice", Password: "password1", Nickname: "n"}},
		{"username reserved", CreateAccountRequest{Username: "me", Password: "password1", Nickname: "n"}},
		{"password too short", CreateAccountRequest{Username: "alice", Password: "short", Nickname: "n"}},
		{"password too long", CreateAccountRequest{Username: "alice", Password: strings.Repeat("p", 65), Nickname: "n"}},
		{"nickname empty", CreateAccountRequest{Username: "alice", Password: "password1", Nickname: ""}},
		{"nickname too long", CreateAccountRequest{Username: "alice", Password: "password1", Nickname: strings.Repeat("n", 17)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.CreateAccount(context.Background(), tc.req)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}

	if len(store.users) != 0 {
		t.Fatalf("expected no accounts created, got %d", len(store.users))
	}
}

func TestCreateAccountReservedUsername(t *testing.T) {
	// "me" is reserved in any casing, but longer names containing it
	// like "me_too" are fine
	engine, _ := newTestEngine(t, testConfig(), newMemoryUserStore())
	ctx := context.Background()

	for _, username := range []string{"me", "Me", "ME", "mE"} {
		_, err := engine.CreateAccount(ctx, CreateAccountRequest{
			Username: username,
			Password: "password1",
			Nickname: "Me",
		})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("username %q: expected ErrValidation, got %v", username, err)
		}
	}

	if _, err := engine.CreateAccount(ctx, CreateAccountRequest{
		Username: "me_too",
		Password: "password1",
		Nickname: "Me Too",
	}); err != nil {
		t.Fatalf("expected me_too to be allowed, got %v", err)
	}
}

func TestCreateAccountInviteCode(t *testing.T) {
	cfg := testConfig()
	cfg.Account.InviteCodes = []string{"golden-ticket"}

	engine, _ := newTestEngine(t, cfg, newMemoryUserStore())
	ctx := context.Background()

	_, err := engine.CreateAccount(ctx, CreateAccountRequest{
		Username: "alice",
		Password: "password1",
		Nickname: "Alice",
	})
	if !errors.Is(err, ErrInviteCode) {
		t.Fatalf("expected ErrInviteCode without a code, got %v", err)
	}

	_, err = engine.CreateAccount(ctx, CreateAccountRequest{
		Username:   "alice",
		Password:   "password1",
		Nickname:   "Alice",
		InviteCode: "wrong",
	})
	if !errors.Is(err, ErrInviteCode) {
		t.Fatalf("expected ErrInviteCode with a wrong code, got %v", err)
	}

	if _, err := engine.CreateAccount(ctx, CreateAccountRequest{
		Username:   "alice",
		Password:   "password1",
		Nickname:   "Alice",
		InviteCode: "golden-ticket",
	}); err != nil {
		t.Fatalf("expected signup with valid invite code to succeed, got %v", err)
	}
}

func TestCreateAccountRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Signup = RateRule{Limit: 2, Window: time.Hour}

	engine, _ := newTestEngine(t, cfg, newMemoryUserStore())
	ctx := WithClientIP(context.Background(), "192.0.2.10")

	// the rate check runs before validation, so invalid requests burn
	// budget too
	for i := 0; i < 2; i++ {
		_, err := engine.CreateAccount(ctx, CreateAccountRequest{Username: "x"})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("attempt %d: expected ErrValidation, got %v", i+1, err)
		}
	}

	_, err := engine.CreateAccount(ctx, CreateAccountRequest{
		Username: "alice",
		Password: "password1",
		Nickname: "Alice",
	})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited on attempt over limit, got %v", err)
	}
}

func TestCreateAccountUnidentifiedClientsSelfLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Signup = RateRule{Limit: 1, Window: time.Hour}

	store := newMemoryUserStore()
	engine, _ := newTestEngine(t, cfg, store)

	// no client IP in the context: each attempt gets a random identity
	// and never accumulates against the others
	for i := 0; i < 5; i++ {
		_, err := engine.CreateAccount(context.Background(), CreateAccountRequest{
			Username: fmt.Sprintf("user_%d", i),
			Password: "password1",
			Nickname: "User",
		})
		if err != nil {
			t.Fatalf("attempt %d unexpectedly failed: %v", i+1, err)
		}
	}
}
