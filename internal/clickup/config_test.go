package clickup

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestLoadConfigMissing(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	if !errors.Is(err, ErrNoToken) {
		t.Fatalf("want ErrNoToken, got %v", err)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	root := t.TempDir()
	in := Config{Token: "pk_abc", DefaultWorkspace: "w1", DefaultList: "l1"}
	if err := SaveConfig(root, in); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	out, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if out.Token != "pk_abc" || out.DefaultWorkspace != "w1" || out.DefaultList != "l1" {
		t.Fatalf("got %+v", out)
	}
	if out.CreatedAt == "" {
		t.Fatal("CreatedAt not stamped")
	}
}

func TestSaveConfigRequiresToken(t *testing.T) {
	if err := SaveConfig(t.TempDir(), Config{}); err == nil {
		t.Fatal("want error for empty token")
	}
}

// The file carries an API token, so nobody else gets read access.
func TestSaveConfigPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix permissions")
	}
	root := t.TempDir()
	if err := SaveConfig(root, Config{Token: "pk_abc"}); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	fi, err := os.Stat(filepath.Join(root, "config.yaml"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := fi.Mode().Perm(); perm != 0o600 {
		t.Fatalf("perm = %o, want 600", perm)
	}
}

func TestLoadConfigEmptyToken(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "config.yaml"), []byte("default_list: l1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(root)
	if !errors.Is(err, ErrNoToken) {
		t.Fatalf("want ErrNoToken, got %v", err)
	}
	// Defaults still come back so setup can preserve them.
	if cfg.DefaultList != "l1" {
		t.Fatalf("got %+v", cfg)
	}
}
