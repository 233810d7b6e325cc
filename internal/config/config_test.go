package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("DIALOGRT_DEBUG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RenderWidth != 100 {
		t.Errorf("RenderWidth = %d, want 100", cfg.RenderWidth)
	}
	if cfg.ReplayDB != "dialogrt.db" {
		t.Errorf("ReplayDB = %q, want dialogrt.db", cfg.ReplayDB)
	}
	if cfg.Debug {
		t.Error("Debug should default to false")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("DIALOGRT_DEBUG", "true")
	t.Setenv("DIALOGRT_REPLAY_DB", "custom.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug {
		t.Error("expected DIALOGRT_DEBUG=true to set Debug")
	}
	if cfg.ReplayDB != "custom.db" {
		t.Errorf("ReplayDB = %q, want custom.db", cfg.ReplayDB)
	}
}
