package cmapi

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ranswife/cmapi/password"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return mr, rdb
}

// memoryUserStore is the in-memory UserStore used across engine tests.
type memoryUserStore struct {
	mu         sync.Mutex
	users      map[string]UserRecord
	byUsername map[string]string
	nextID     int
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{
		users:      map[string]UserRecord{},
		byUsername: map[string]string{},
	}
}

func (s *memoryUserStore) GetUserByUsername(_ context.Context, username string) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byUsername[username]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return s.users[id], nil
}

func (s *memoryUserStore) GetUserByID(_ context.Context, id string) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return user, nil
}

func (s *memoryUserStore) CreateUser(_ context.Context, input CreateUserInput) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[input.Username]; exists {
		return UserRecord{}, ErrDuplicateUsername
	}

	s.nextID++
	user := UserRecord{
		ID:           fmt.Sprintf("u%d", s.nextID),
		Username:     input.Username,
		Nickname:     input.Nickname,
		PasswordHash: input.PasswordHash,
		CreatedAt:    time.Now(),
	}
	s.users[user.ID] = user
	s.byUsername[user.Username] = user.ID
	return user, nil
}

func (s *memoryUserStore) SetTOTPSecret(_ context.Context, userID, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.TOTPSecret = secret
	s.users[userID] = user
	return nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Audit.Enabled = false
	return cfg
}

func newTestEngine(t *testing.T, cfg Config, store UserStore) (*Engine, *miniredis.Miniredis) {
	t.Helper()

	mr, rdb := newTestRedis(t)

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserStore(store).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, mr
}

// seedUser inserts an account with a real password hash, bypassing signup
// validation and rate limiting.
func seedUser(t *testing.T, store *memoryUserStore, username, plaintext string) UserRecord {
	t.Helper()

	hash, err := password.Hash(plaintext)
	if err != nil {
		t.Fatalf("password hash failed: %v", err)
	}
	user, err := store.CreateUser(context.Background(), CreateUserInput{
		Username:     username,
		Nickname:     username,
		PasswordHash: hash,
	})
	if err != nil {
		t.Fatalf("seed user failed: %v", err)
	}
	return user
}

func TestBuilderRequiresRedisAndUserStore(t *testing.T) {
	if _, err := New().WithUserStore(newMemoryUserStore()).Build(); err == nil {
		t.Fatal("expected error when redis client is missing")
	}

	_, rdb := newTestRedis(t)
	if _, err := New().WithRedis(rdb).Build(); err == nil {
		t.Fatal("expected error when user store is missing")
	}
}

func TestBuilderRejectsReuse(t *testing.T) {
	_, rdb := newTestRedis(t)

	builder := New().WithRedis(rdb).WithUserStore(newMemoryUserStore())
	engine, err := builder.Build()
	if err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	if _, err := builder.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}

func TestBuilderRejectsInvalidConfig(t *testing.T) {
	_, rdb := newTestRedis(t)

	cfg := testConfig()
	cfg.Token.AccessTTL = 0

	_, err := New().WithConfig(cfg).WithRedis(rdb).WithUserStore(newMemoryUserStore()).Build()
	if err == nil {
		t.Fatal("expected Build to reject zero AccessTTL")
	}
}

func TestCheckRateEnforcesConfiguredPaths(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Paths = map[string]RateRule{
		"/v1/upload": {Limit: 2, Window: time.Minute},
	}

	engine, _ := newTestEngine(t, cfg, newMemoryUserStore())
	ctx := WithClientIP(context.Background(), "198.51.100.7")

	for i := 0; i < 2; i++ {
		if err := engine.CheckRate(ctx, "198.51.100.7", "/v1/upload"); err != nil {
			t.Fatalf("attempt %d unexpectedly denied: %v", i+1, err)
		}
	}
	if err := engine.CheckRate(ctx, "198.51.100.7", "/v1/upload"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited on attempt over limit, got %v", err)
	}
}

func TestCheckRateAllowsUnconfiguredPaths(t *testing.T) {
	engine, _ := newTestEngine(t, testConfig(), newMemoryUserStore())

	for i := 0; i < 50; i++ {
		if err := engine.CheckRate(context.Background(), "203.0.113.1", "/v1/posts"); err != nil {
			t.Fatalf("unconfigured path should never be limited, got %v", err)
		}
	}
}

func TestNilEngineMethodsReturnNotReady(t *testing.T) {
	var engine *Engine

	if _, err := engine.Login(context.Background(), LoginRequest{}); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady, got %v", err)
	}
	if _, err := engine.Validate(context.Background(), "tok"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady, got %v", err)
	}
	engine.Close()
	if got := engine.AuditDropped(); got != 0 {
		t.Fatalf("expected 0 dropped on nil engine, got %d", got)
	}
}
