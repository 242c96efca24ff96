package cmapi

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ranswife/cmapi/base32"
	"github.com/ranswife/cmapi/otp"
)

func TestTOTPEnrollmentFlow(t *testing.T) {
	store := newMemoryUserStore()
	user := seedUser(t, store, "alice", "correct horse")

	engine, _ := newTestEngine(t, testConfig(), store)
	ctx := context.Background()

	enabled, err := engine.TOTPStatus(ctx, user.ID)
	if err != nil || enabled {
		t.Fatalf("expected totp disabled initially, enabled=%v err=%v", enabled, err)
	}

	setup, err := engine.SetupTOTP(ctx, user.ID)
	if err != nil {
		t.Fatalf("SetupTOTP failed: %v", err)
	}
	if setup.Secret == "" {
		t.Fatal("expected a secret")
	}
	if !strings.HasPrefix(setup.URI, "otpauth://totp/cmapi:alice?secret="+setup.Secret) {
		t.Fatalf("unexpected provisioning URI: %s", setup.URI)
	}

	// pending secrets do not affect login
	if _, err := engine.Login(ctx, LoginRequest{Username: "alice", Password: "correct horse"}); err != nil {
		t.Fatalf("login during pending setup failed: %v", err)
	}

	code := otp.TOTP(base32.Decode(setup.Secret), time.Now())
	if err := engine.EnableTOTP(ctx, user.ID, code); err != nil {
		t.Fatalf("EnableTOTP failed: %v", err)
	}

	enabled, err = engine.TOTPStatus(ctx, user.ID)
	if err != nil || !enabled {
		t.Fatalf("expected totp enabled after EnableTOTP, enabled=%v err=%v", enabled, err)
	}

	// login now requires a code
	_, err = engine.Login(ctx, LoginRequest{Username: "alice", Password: "correct horse"})
	if !errors.Is(err, ErrTOTPRequired) {
		t.Fatalf("expected ErrTOTPRequired after enrollment, got %v", err)
	}

	code = otp.TOTP(base32.Decode(setup.Secret), time.Now())
	if err := engine.DisableTOTP(ctx, user.ID, code); err != nil {
		t.Fatalf("DisableTOTP failed: %v", err)
	}

	enabled, err = engine.TOTPStatus(ctx, user.ID)
	if err != nil || enabled {
		t.Fatalf("expected totp disabled after DisableTOTP, enabled=%v err=%v", enabled, err)
	}
	if _, err := engine.Login(ctx, LoginRequest{Username: "alice", Password: "correct horse"}); err != nil {
		t.Fatalf("login after disable failed: %v", err)
	}
}

func TestSetupTOTPAlreadyEnabled(t *testing.T) {
	store := newMemoryUserStore()
	user, _ := seedTOTPUser(t, store, "alice", "correct horse")

	engine, _ := newTestEngine(t, testConfig(), store)

	_, err := engine.SetupTOTP(context.Background(), user.ID)
	if !errors.Is(err, ErrTOTPAlreadyEnabled) {
		t.Fatalf("expected ErrTOTPAlreadyEnabled, got %v", err)
	}
}

func TestEnableTOTPWithoutSetup(t *testing.T) {
	store := newMemoryUserStore()
	user := seedUser(t, store, "alice", "correct horse")

	engine, _ := newTestEngine(t, testConfig(), store)

	err := engine.EnableTOTP(context.Background(), user.ID, "123456")
	if !errors.Is(err, ErrTOTPSetupNotFound) {
		t.Fatalf("expected ErrTOTPSetupNotFound, got %v", err)
	}
}

func TestEnableTOTPSetupWindowExpires(t *testing.T) {
	store := newMemoryUserStore()
	user := seedUser(t, store, "alice", "correct horse")

	engine, mr := newTestEngine(t, testConfig(), store)
	ctx := context.Background()

	setup, err := engine.SetupTOTP(ctx, user.ID)
	if err != nil {
		t.Fatalf("SetupTOTP failed: %v", err)
	}

	mr.FastForward(5*time.Minute + time.Second)

	code := otp.TOTP(base32.Decode(setup.Secret), time.Now())
	err = engine.EnableTOTP(ctx, user.ID, code)
	if !errors.Is(err, ErrTOTPSetupNotFound) {
		t.Fatalf("expected ErrTOTPSetupNotFound after the window, got %v", err)
	}
}

func TestEnableTOTPWrongCodeKeepsPendingSecret(t *testing.T) {
	store := newMemoryUserStore()
	user := seedUser(t, store, "alice", "correct horse")

	engine, _ := newTestEngine(t, testConfig(), store)
	ctx := context.Background()

	setup, err := engine.SetupTOTP(ctx, user.ID)
	if err != nil {
		t.Fatalf("SetupTOTP failed: %v", err)
	}

	if err := engine.EnableTOTP(ctx, user.ID, "000000"); !errors.Is(err, ErrTOTPInvalid) {
		t.Fatalf("expected ErrTOTPInvalid, got %v", err)
	}

	// the pending entry survives a failed attempt
	code := otp.TOTP(base32.Decode(setup.Secret), time.Now())
	if err := engine.EnableTOTP(ctx, user.ID, code); err != nil {
		t.Fatalf("EnableTOTP retry failed: %v", err)
	}
}

func TestDisableTOTPNotEnabled(t *testing.T) {
	store := newMemoryUserStore()
	user := seedUser(t, store, "alice", "correct horse")

	engine, _ := newTestEngine(t, testConfig(), store)

	err := engine.DisableTOTP(context.Background(), user.ID, "123456")
	if !errors.Is(err, ErrTOTPNotEnabled) {
		t.Fatalf("expected ErrTOTPNotEnabled, got %v", err)
	}
}

func TestDisableTOTPWrongCode(t *testing.T) {
	store := newMemoryUserStore()
	user, _ := seedTOTPUser(t, store, "alice", "correct horse")

	engine, _ := newTestEngine(t, testConfig(), store)

	err := engine.DisableTOTP(context.Background(), user.ID, "000000")
	if !errors.Is(err, ErrTOTPInvalid) {
		t.Fatalf("expected ErrTOTPInvalid, got %v", err)
	}

	enabled, err := engine.TOTPStatus(context.Background(), user.ID)
	if err != nil || !enabled {
		t.Fatalf("totp must stay enabled after a failed disable, enabled=%v err=%v", enabled, err)
	}
}

func TestSetupTOTPUnknownUser(t *testing.T) {
	engine, _ := newTestEngine(t, testConfig(), newMemoryUserStore())

	_, err := engine.SetupTOTP(context.Background(), "no-such-user")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
