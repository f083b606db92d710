package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"
)

func newTestRepo(t *testing.T) (*RateLimitRepository, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	repo := NewRateLimitRepository(client, SlidingWindowConfig{
		KeyPrefix: "irs:rate_limit",
		TTL:       5 * time.Minute,
	})
	return repo, server
}

func TestRateLimitRepository_Reserve_AllowsUpToLimit(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 3; i++ {
		reservation, err := repo.Reserve(ctx, "login:192.0.2.1", 3, time.Minute, now.Add(time.Duration(i)*time.Second))
		if err != nil {
			t.Fatalf("attempt %d: Reserve returned error: %v", i, err)
		}
		if !reservation.Allowed {
			t.Fatalf("attempt %d: expected allowed", i)
		}
		if reservation.Remaining != 3-i-1 {
			t.Fatalf("attempt %d: expected remaining %d, got %d", i, 3-i-1, reservation.Remaining)
		}
	}

	reservation, err := repo.Reserve(ctx, "login:192.0.2.1", 3, time.Minute, now.Add(3*time.Second))
	if err != nil {
		t.Fatalf("Reserve returned error: %v", err)
	}
	if reservation.Allowed {
		t.Fatalf("expected fourth attempt to be blocked")
	}
	if reservation.Remaining != 0 {
		t.Fatalf("expected remaining 0, got %d", reservation.Remaining)
	}
	if reservation.RetryAfter <= 0 || reservation.RetryAfter > time.Minute {
		t.Fatalf("expected retry-after within the window, got %v", reservation.RetryAfter)
	}
}

func TestRateLimitRepository_Reserve_CountsSameInstantAttempts(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	now := time.Now()

	// A burst can land several attempts on the identical timestamp; each
	// one must still consume capacity.
	for i := 0; i < 2; i++ {
		reservation, err := repo.Reserve(ctx, "login:192.0.2.7", 2, time.Minute, now)
		if err != nil {
			t.Fatalf("attempt %d: Reserve returned error: %v", i, err)
		}
		if !reservation.Allowed {
			t.Fatalf("attempt %d: expected allowed", i)
		}
	}

	blocked, err := repo.Reserve(ctx, "login:192.0.2.7", 2, time.Minute, now)
	if err != nil {
		t.Fatalf("Reserve returned error: %v", err)
	}
	if blocked.Allowed {
		t.Fatalf("expected third same-instant attempt to be blocked")
	}
	if blocked.RetryAfter <= 0 || blocked.RetryAfter > time.Minute {
		t.Fatalf("expected retry-after within the window, got %v", blocked.RetryAfter)
	}
}

func TestRateLimitRepository_Reserve_WindowSlides(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 2; i++ {
		if _, err := repo.Reserve(ctx, "login:192.0.2.2", 2, time.Minute, now); err != nil {
			t.Fatalf("Reserve returned error: %v", err)
		}
	}

	blocked, err := repo.Reserve(ctx, "login:192.0.2.2", 2, time.Minute, now.Add(time.Second))
	if err != nil {
		t.Fatalf("Reserve returned error: %v", err)
	}
	if blocked.Allowed {
		t.Fatalf("expected block inside the window")
	}

	// Past the window the old attempts no longer count.
	later, err := repo.Reserve(ctx, "login:192.0.2.2", 2, time.Minute, now.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("Reserve returned error: %v", err)
	}
	if !later.Allowed {
		t.Fatalf("expected allowance after the window slid")
	}
	if later.Remaining != 1 {
		t.Fatalf("expected remaining 1, got %d", later.Remaining)
	}
}

func TestRateLimitRepository_Reserve_IsolatesIdentifiers(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	now := time.Now()

	if _, err := repo.Reserve(ctx, "login:192.0.2.3", 1, time.Minute, now); err != nil {
		t.Fatalf("Reserve returned error: %v", err)
	}

	blocked, err := repo.Reserve(ctx, "login:192.0.2.3", 1, time.Minute, now)
	if err != nil {
		t.Fatalf("Reserve returned error: %v", err)
	}
	if blocked.Allowed {
		t.Fatalf("expected second attempt on same identifier to be blocked")
	}

	other, err := repo.Reserve(ctx, "login:198.51.100.9", 1, time.Minute, now)
	if err != nil {
		t.Fatalf("Reserve returned error: %v", err)
	}
	if !other.Allowed {
		t.Fatalf("expected unrelated identifier to be allowed")
	}
}

func TestRateLimitRepository_Reserve_SetsTTL(t *testing.T) {
	repo, server := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.Reserve(ctx, "login:192.0.2.4", 5, time.Minute, time.Now()); err != nil {
		t.Fatalf("Reserve returned error: %v", err)
	}

	remaining := server.TTL("irs:rate_limit:login:192.0.2.4")
	if remaining <= 0 || remaining > 5*time.Minute {
		t.Fatalf("expected ttl within (0, 5m], got %v", remaining)
	}
}

func TestRateLimitRepository_Reserve_ValidatesInputs(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.Reserve(ctx, "login:x", 0, time.Minute, time.Now()); err == nil {
		t.Fatalf("expected error for non-positive limit")
	}
	if _, err := repo.Reserve(ctx, "login:x", 5, 0, time.Now()); err == nil {
		t.Fatalf("expected error for non-positive window")
	}
}
