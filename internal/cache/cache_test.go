package cache

import (
	"context"
	"testing"
	"time"
)

func TestNew_SelectsImplementation(t *testing.T) {
	if _, ok := New(Options{}).(Noop); !ok {
		t.Fatalf("expected Noop when Addr is empty")
	}
	if _, ok := New(Options{Addr: "  "}).(Noop); !ok {
		t.Fatalf("expected Noop when Addr is blank")
	}
	c, ok := New(Options{Addr: "127.0.0.1:6379", DB: 2}).(*Redis)
	if !ok {
		t.Fatalf("expected *Redis when Addr is set")
	}
	t.Cleanup(func() { _ = c.Close() })
	if got := c.Client.Options().DB; got != 2 {
		t.Fatalf("expected DB=2, got %d", got)
	}
}

func TestNoop_AlwaysMisses(t *testing.T) {
	ctx := context.Background()
	var c Cache = Noop{}
	if err := c.Set(ctx, KeyTopRated, []string{"a"}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var dst []string
	hit, err := c.Get(ctx, KeyTopRated, &dst)
	if hit || err != nil || dst != nil {
		t.Fatalf("expected miss, got hit=%v err=%v dst=%v", hit, err, dst)
	}
	if err := c.Delete(ctx, KeyTopRated, KeyRecentlyAdded); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestRedis_UnreachableSurfacesErrors(t *testing.T) {
	// Port 1 is reserved and refuses connections.
	r := NewRedis(Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = r.Close() })
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := r.Ping(ctx); err == nil {
		t.Fatalf("expected ping error")
	}
	var dst []string
	if hit, err := r.Get(ctx, KeyTopRated, &dst); hit || err == nil {
		t.Fatalf("expected error miss, got hit=%v err=%v", hit, err)
	}
	if err := r.Set(ctx, KeyTopRated, []string{"x"}, time.Minute); err == nil {
		t.Fatalf("expected set error")
	}
	if err := r.Delete(ctx); err != nil {
		t.Fatalf("Delete with no keys must be a no-op, got %v", err)
	}
}

func TestRedis_SetRejectsUnencodable(t *testing.T) {
	r := NewRedis(Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = r.Close() })
	if err := r.Set(context.Background(), "k", make(chan int), time.Minute); err == nil {
		t.Fatalf("expected encode error")
	}
}
