package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Port != "5175" || c.Addr() != ":5175" {
		t.Fatalf("port = %q addr = %q", c.Port, c.Addr())
	}
	if c.TileCount != 16 {
		t.Fatalf("tile count = %d, want 16", c.TileCount)
	}
	if c.FadeDelay != 130*time.Millisecond {
		t.Fatalf("fade delay = %v, want 130ms", c.FadeDelay)
	}
	if c.Production() {
		t.Fatal("default env should not be production")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("TILE_COUNT", "9")
	t.Setenv("FADE_DELAY", "250ms")
	t.Setenv("APP_ENV", "production")

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Addr() != ":8080" || c.TileCount != 9 || c.FadeDelay != 250*time.Millisecond {
		t.Fatalf("unexpected config: %+v", c)
	}
	if !c.Production() {
		t.Fatal("expected production")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"tile count too small", "TILE_COUNT", "1"},
		{"tile count not a number", "TILE_COUNT", "many"},
		{"bad duration", "FADE_DELAY", "soon"},
		{"negative fade", "FADE_DELAY", "-1s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}
