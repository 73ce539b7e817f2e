package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	lperrors "github.com/matzehuels/labelpress/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Render.FetchTimeout != 5*time.Second {
		t.Errorf("FetchTimeout = %v, want 5s", cfg.Render.FetchTimeout)
	}
	if cfg.Server.Listen != DefaultListen {
		t.Errorf("Listen = %q, want %q", cfg.Server.Listen, DefaultListen)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv(EnvFont, "")
	t.Setenv(EnvRedisAddr, "")
	t.Setenv(EnvMongoURI, "")
	t.Setenv(EnvListen, "")

	path := writeConfig(t, `
output_dir = "out"
concurrency = 8

[render]
font = "/fonts/a.ttf"
fetch_timeout = "2s"
asset_root = "assets"

[cache]
namespace = "staging"

[redis]
addr = "localhost:6379"
db = 2

[mongo]
uri = "mongodb://localhost:27017"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := Default()
	want.OutputDir = "out"
	want.Concurrency = 8
	want.Render.Font = "/fonts/a.ttf"
	want.Render.FetchTimeout = 2 * time.Second
	want.Render.AssetRoot = "assets"
	want.Cache.Namespace = "staging"
	want.Redis.Addr = "localhost:6379"
	want.Redis.DB = 2
	want.Mongo.URI = "mongodb://localhost:27017"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "[server]\nlisten = \":9000\"\n")
	t.Setenv(EnvListen, ":7000")
	t.Setenv(EnvFont, "/env/font.ttf")
	t.Setenv(EnvRedisAddr, "redis:6379")
	t.Setenv(EnvMongoURI, "mongodb://db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Listen != ":7000" {
		t.Errorf("Listen = %q, want :7000", cfg.Server.Listen)
	}
	if cfg.Render.Font != "/env/font.ttf" || cfg.Redis.Addr != "redis:6379" || cfg.Mongo.URI != "mongodb://db" {
		t.Errorf("env not applied: %+v", cfg)
	}
}

func TestLoadMissingDefaultIsFine(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if _, err := Load(""); err != nil {
		t.Errorf("Load(\"\") = %v, want nil for missing default file", err)
	}
}

func TestLoadMissingExplicitFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !os.IsNotExist(err) {
		t.Errorf("Load(missing) error = %v, want not-exist", err)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "colour = \"red\"\n"},
		{"unknown section key", "[render]\nfnt = \"x\"\n"},
		{"bad syntax", "output_dir = \n"},
		{"zero concurrency", "concurrency = 0\n"},
		{"negative timeout", "[render]\nfetch_timeout = \"-1s\"\n"},
		{"negative redis db", "[redis]\ndb = -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !lperrors.Is(err, lperrors.ErrCodeInvalidInput) {
				t.Errorf("Load() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	got, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath: %v", err)
	}
	if want := filepath.Join("/xdg", "labelpress", "config.toml"); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/xdg-cache")
	got, err := CacheDir()
	if err != nil {
		t.Fatalf("CacheDir: %v", err)
	}
	if want := filepath.Join("/xdg-cache", "labelpress"); got != want {
		t.Errorf("CacheDir() = %q, want %q", got, want)
	}
}

func TestStringMasksSecrets(t *testing.T) {
	cfg := Default()
	cfg.Redis.Password = "hunter2"
	cfg.Mongo.URI = "mongodb://app:s3cret@db:27017"

	s := cfg.String()
	if strings.Contains(s, "hunter2") || strings.Contains(s, "s3cret") {
		t.Errorf("String() leaked a secret:\n%s", s)
	}
	if !strings.Contains(s, "mongodb://app:****@db:27017") {
		t.Errorf("String() = %s, want masked mongo uri", s)
	}
}
