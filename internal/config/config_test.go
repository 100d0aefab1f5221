package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"coros-export/internal/coros"
)

func TestLoadMissingConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, err := Load()
	if !errors.Is(err, ErrNoConfig) {
		t.Errorf("Load() error = %v, want ErrNoConfig", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Coros.Account = "runner@example.com"
	cfg.Coros.Password = "hunter2"
	cfg.Extract.Limit = 25
	cfg.Extract.Types = []int{100, 200}

	if err := Save(&cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Coros.Account != "runner@example.com" {
		t.Errorf("Account = %q", loaded.Coros.Account)
	}
	if loaded.Extract.Limit != 25 {
		t.Errorf("Limit = %d, want 25", loaded.Extract.Limit)
	}
	if len(loaded.Extract.Types) != 2 {
		t.Errorf("Types = %v, want [100 200]", loaded.Extract.Types)
	}
}

func TestSavePermissions(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := DefaultConfig()
	if err := Save(&cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(filepath.Join(home, ".coros-export", "config.json"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file mode = %o, want 0600", perm)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".coros-export")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	raw := `{"coros":{"account":"runner@example.com","password":"hunter2"}}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(raw), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Export.Dir != "exports" {
		t.Errorf("Export.Dir = %q, want %q", cfg.Export.Dir, "exports")
	}
	if cfg.Export.JSONPath != "activities.json" {
		t.Errorf("Export.JSONPath = %q, want %q", cfg.Export.JSONPath, "activities.json")
	}
	if cfg.Export.FileType != "fit" {
		t.Errorf("Export.FileType = %q, want %q", cfg.Export.FileType, "fit")
	}
}

func TestCreateExampleDoesNotOverwrite(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Coros.Account = "runner@example.com"
	cfg.Coros.Password = "hunter2"
	if err := Save(&cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := CreateExample(); err != nil {
		t.Fatalf("CreateExample: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Coros.Account != "runner@example.com" {
		t.Error("CreateExample overwrote an existing config")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := DefaultConfig()
		cfg.Coros.Account = "runner@example.com"
		cfg.Coros.Password = "hunter2"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing account", func(c *Config) { c.Coros.Account = "" }, true},
		{"placeholder account", func(c *Config) { c.Coros.Account = "YOUR_EMAIL" }, true},
		{"missing password", func(c *Config) { c.Coros.Password = "" }, true},
		{"placeholder password", func(c *Config) { c.Coros.Password = "YOUR_PASSWORD" }, true},
		{"bad file type", func(c *Config) { c.Export.FileType = "mp3" }, true},
		{"empty file type ok", func(c *Config) { c.Export.FileType = "" }, false},
		{"negative limit", func(c *Config) { c.Extract.Limit = -1 }, true},
		{"unknown sport code", func(c *Config) { c.Extract.Types = []int{42} }, true},
		{"known sport codes", func(c *Config) { c.Extract.Types = []int{100, 904} }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFileTypeHelper(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.FileType(); got != coros.FileFIT {
		t.Errorf("FileType() = %v, want fit", got)
	}
	cfg.Export.FileType = "gpx"
	if got := cfg.FileType(); got != coros.FileGPX {
		t.Errorf("FileType() = %v, want gpx", got)
	}
}

func TestFilterHelper(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Extract.Limit = 10
	cfg.Extract.Types = []int{100, 200}

	f := cfg.Filter()
	if f.Limit != 10 {
		t.Errorf("Limit = %d, want 10", f.Limit)
	}
	if len(f.Types) != 2 || f.Types[0] != coros.SportOutdoorRun || f.Types[1] != coros.SportRoadBike {
		t.Errorf("Types = %v, want [100 200]", f.Types)
	}
}
