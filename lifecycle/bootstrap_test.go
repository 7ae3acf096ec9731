package lifecycle

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureConfigDir_WritesDefaultsWhenAbsent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "config")
	defaults := map[string][]byte{"settings.yml": []byte("engines: []\n")}

	if err := EnsureConfigDir(dir, defaults); err != nil {
		t.Fatalf("EnsureConfigDir() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "settings.yml"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "engines: []\n" {
		t.Errorf("content = %q, want default content", data)
	}
}

func TestEnsureConfigDir_DoesNotOverwriteExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yml")
	if err := os.WriteFile(path, []byte("custom"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	err := EnsureConfigDir(dir, map[string][]byte{"settings.yml": []byte("default")})
	if err != nil {
		t.Fatalf("EnsureConfigDir() error = %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "custom" {
		t.Errorf("content = %q, want existing content preserved", data)
	}
}

func TestEnsureSecret_GeneratesAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".secret")

	secret, err := EnsureSecret(path)
	if err != nil {
		t.Fatalf("EnsureSecret() error = %v", err)
	}
	if len(secret) < 2*SecretByteLength {
		t.Errorf("len(secret) = %d, want >= %d", len(secret), 2*SecretByteLength)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("mode = %o, want 0600", perm)
	}
}

func TestEnsureSecret_ReusesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".secret")

	first, err := EnsureSecret(path)
	if err != nil {
		t.Fatalf("first EnsureSecret() error = %v", err)
	}
	second, err := EnsureSecret(path)
	if err != nil {
		t.Fatalf("second EnsureSecret() error = %v", err)
	}
	if first != second {
		t.Error("EnsureSecret() generated a new secret instead of reusing the existing one")
	}
}
