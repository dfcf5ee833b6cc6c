package redis

import (
	"context"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestNewClientAppliesPoolSize(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(context.Background(), "redis://"+mr.Addr()+"/0", ClientOptions{PoolSize: 7})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if got := client.Options().PoolSize; got != 7 {
		t.Fatalf("pool size = %d, want 7", got)
	}
	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, _ := mr.Get("k"); got != "v" {
		t.Fatalf("server holds %q, want v", got)
	}
}

func TestNewClientKeepsURLDefaults(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(context.Background(), "redis://"+mr.Addr()+"/2", ClientOptions{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if db := client.Options().DB; db != 2 {
		t.Fatalf("db = %d, want 2 from url", db)
	}
}

func TestNewClientRejectsMalformedURL(t *testing.T) {
	_, err := NewClient(context.Background(), "://bad-url", ClientOptions{})
	if err == nil || !strings.Contains(err.Error(), "parse redis url") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestNewClientFailsWhenServerIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewClient(context.Background(), "redis://"+addr, ClientOptions{PingTimeout: 200 * time.Millisecond})
	if err == nil || !strings.Contains(err.Error(), addr) {
		t.Fatalf("expected ping error naming %s, got %v", addr, err)
	}
}
