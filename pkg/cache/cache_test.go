package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	k := NewDefaultKeyer()
	keys := map[string]string{
		"label": k.ArtifactKey("schema", ArtifactKeyOpts{WidthMM: 50, HeightMM: 30, DPI: 300}),
		"asset": k.AssetKey("https://cdn.example.com/logo.png"),
	}

	for kind, key := range keys {
		t.Run(kind, func(t *testing.T) {
			if err := c.Set(ctx, key, []byte("png"), ArtifactTTL); err != nil {
				t.Fatalf("Set: %v", err)
			}
			data, hit, err := c.Get(ctx, key)
			if err != nil || hit || data != nil {
				t.Errorf("Get(%s) = %q, %v, %v; want a miss", kind, data, hit, err)
			}
			if err := c.Delete(ctx, key); err != nil {
				t.Errorf("Delete: %v", err)
			}
		})
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = hit %v, err %v; want miss", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("png bytes"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "png bytes" {
		t.Errorf("Get(k) = %q, %v, %v; want png bytes, true, nil", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete(missing) = %v, want nil", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if err := c.Set(ctx, "old", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry should miss")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	path := c.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("Get(corrupt) = hit %v, err %v; want clean miss", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCacheConcurrentSet(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Set(ctx, "shared", []byte("same"), time.Hour)
		}()
	}
	wg.Wait()

	data, hit, err := c.Get(ctx, "shared")
	if err != nil || !hit || string(data) != "same" {
		t.Errorf("Get(shared) = %q, %v, %v", data, hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "cache")
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	entries, err := os.ReadDir(c.Dir())
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Clear left %d entries", len(entries))
	}
}

func TestHash(t *testing.T) {
	tests := []struct {
		data string
		want string
	}{
		{"hello", "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"},
		{"", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
	}
	for _, tt := range tests {
		if got := Hash([]byte(tt.data)); got != tt.want {
			t.Errorf("Hash(%q) = %s, want %s", tt.data, got, tt.want)
		}
	}
}

func TestLabelKey(t *testing.T) {
	opts := ArtifactKeyOpts{WidthMM: 50, HeightMM: 30, DPI: 300, Font: "embedded"}
	key := labelKey("abc", opts)
	if !strings.HasPrefix(key, "label:") || len(key) != len("label:")+64 {
		t.Errorf("labelKey = %s, want label:<sha256>", key)
	}

	noFont := opts
	noFont.Font = ""
	if labelKey("abc", noFont) == key {
		t.Error("font change should change the label key")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if a, b := k.AssetKey("https://x/a.png"), k.AssetKey("https://x/b.png"); a == b {
		t.Error("Different refs should produce different asset keys")
	}
	if key := k.AssetKey("logo.png"); len(key) != len("asset:")+64 || key[:6] != "asset:" {
		t.Errorf("AssetKey unexpected: %s", key)
	}

	base := ArtifactKeyOpts{WidthMM: 50, HeightMM: 30, DPI: 300, Data: map[string]string{"sku": "1", "name": "a"}}
	same := ArtifactKeyOpts{WidthMM: 50, HeightMM: 30, DPI: 300, Data: map[string]string{"name": "a", "sku": "1"}}
	if k.ArtifactKey("h", base) != k.ArtifactKey("h", same) {
		t.Error("Equal data in different insertion order should produce equal keys")
	}

	other := base
	other.DPI = 203
	if k.ArtifactKey("h", base) == k.ArtifactKey("h", other) {
		t.Error("Different DPI should produce different keys")
	}
	if k.ArtifactKey("h1", base) == k.ArtifactKey("h2", base) {
		t.Error("Different schema hashes should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "staging:")

	if got, want := scoped.AssetKey("logo.png"), "staging:"+inner.AssetKey("logo.png"); got != want {
		t.Errorf("ScopedKeyer AssetKey = %s, want %s", got, want)
	}

	key := scoped.ArtifactKey("h", ArtifactKeyOpts{})
	if len(key) < 15 || key[:8] != "staging:" {
		t.Errorf("ScopedKeyer ArtifactKey should be prefixed: %s", key)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	if key := scoped.AssetKey("x"); key != "prefix:"+NewDefaultKeyer().AssetKey("x") {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}
