package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/contentqc/internal/model"
)

func TestCacheKey(t *testing.T) {
	a := CacheKey("search", "DeepSeek R1", "5")
	b := CacheKey("search", "DeepSeek R1", "5")
	c := CacheKey("search", "DeepSeek R1", "3")

	if a != b {
		t.Error("Expected identical keys for identical parts")
	}
	if a == c {
		t.Error("Expected different keys for different parts")
	}
	if !strings.HasPrefix(a, KeyPrefix) {
		t.Errorf("Expected key prefix %q, got %q", KeyPrefix, a)
	}
	// Parts are separated, so shifting text between parts changes the key
	if CacheKey("ab", "c") == CacheKey("a", "bc") {
		t.Error("Expected part boundaries to affect the key")
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Error("Expected miss")
	}
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if v, ok := c.Get(ctx, "k"); !ok || string(v) != "v" {
		t.Errorf("Get = %q, %v", v, ok)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("Expected miss after delete")
	}

	_ = c.Set(ctx, "short", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get(ctx, "short"); ok {
		t.Error("Expected entry to expire")
	}
}

func TestDiskCache(t *testing.T) {
	ctx := context.Background()
	c := NewDiskCache(t.TempDir(), time.Hour)

	key := CacheKey("search", "q")
	if err := c.Set(ctx, key, []byte(`[{"title":"x"}]`), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if v, ok := c.Get(ctx, key); !ok || string(v) != `[{"title":"x"}]` {
		t.Errorf("Get = %q, %v", v, ok)
	}

	if err := c.Set(ctx, "expired", []byte("v"), -time.Second); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get(ctx, "expired"); ok {
		t.Error("Expected expired entry to miss")
	}

	if err := c.Delete(ctx, "never-stored"); err != nil {
		t.Errorf("Delete of missing key should succeed, got %v", err)
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get(ctx, key); ok {
		t.Error("Expected miss after clear")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	// Seed the disk layer directly
	disk := NewDiskCache(dir, time.Hour)
	_ = disk.Set(ctx, "k", []byte("from-disk"), 0)

	c := NewLayeredCache(time.Hour, dir, time.Hour)
	if v, ok := c.Get(ctx, "k"); !ok || string(v) != "from-disk" {
		t.Fatalf("Get = %q, %v", v, ok)
	}
	if v, ok := c.memory.Get(ctx, "k"); !ok || string(v) != "from-disk" {
		t.Error("Expected disk hit to be promoted to memory")
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("Expected miss after delete")
	}
}

func TestNew(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		cfg     model.CacheConfig
		wantNil bool
		wantErr bool
	}{
		{"disabled", model.CacheConfig{Enabled: false}, true, false},
		{"memory", model.CacheConfig{Enabled: true, Backend: "memory"}, false, false},
		{"disk", model.CacheConfig{Enabled: true, Backend: "disk", Dir: dir}, false, false},
		{"layered", model.CacheConfig{Enabled: true, Backend: "layered", Dir: dir}, false, false},
		{"redis without url", model.CacheConfig{Enabled: true, Backend: "redis"}, true, true},
		{"redis bad url", model.CacheConfig{Enabled: true, Backend: "redis", RedisURL: "http://nope"}, true, true},
		{"unknown", model.CacheConfig{Enabled: true, Backend: "memcached"}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if (c == nil) != tt.wantNil {
				t.Fatalf("cache nil = %v, want %v", c == nil, tt.wantNil)
			}
		})
	}
}

func TestNewRedisCache_ParsesURL(t *testing.T) {
	c, err := NewRedisCache("redis://:secret@localhost:6379/2", time.Hour)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer func() { _ = c.Close() }()

	opts := c.client.Options()
	if opts.Addr != "localhost:6379" || opts.DB != 2 || opts.Password != "secret" {
		t.Errorf("Unexpected options: addr=%s db=%d", opts.Addr, opts.DB)
	}
}

func TestExpandHome(t *testing.T) {
	got, err := ExpandHome("/tmp/x")
	if err != nil || got != "/tmp/x" {
		t.Errorf("ExpandHome(/tmp/x) = %q, %v", got, err)
	}
	got, err = ExpandHome("~/cache")
	if err != nil {
		t.Fatal(err)
	}
	if strings.HasPrefix(got, "~") {
		t.Errorf("Expected ~ to be expanded, got %q", got)
	}
}
