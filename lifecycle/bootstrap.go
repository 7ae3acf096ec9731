package lifecycle

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// SecretByteLength is the amount of random data read for a bootstrap secret,
// producing a hex string of twice this length (>= 32 hex chars as required).
const SecretByteLength = 32

// EnsureConfigDir materializes the per-user config directory for a
// subprocess-managed service, copying defaults into it the first time it is
// needed. defaults maps a relative file name to its bundled content; files
// that already exist on disk are left untouched.
func EnsureConfigDir(configDir string, defaults map[string][]byte) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("lifecycle: create config dir: %w", err)
	}
	for name, content := range defaults {
		path := filepath.Join(configDir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return fmt.Errorf("lifecycle: write default %s: %w", name, err)
		}
	}
	return nil
}

// EnsureSecret returns the persistent per-install secret at secretPath,
// generating and persisting a new one (mode 0600) on first run.
func EnsureSecret(secretPath string) (string, error) {
	existing, err := os.ReadFile(secretPath)
	if err == nil {
		return string(existing), nil
	}
	if !os.IsNotExist(err) {
		return "", fmt.Errorf("lifecycle: read secret: %w", err)
	}

	buf := make([]byte, SecretByteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("lifecycle: generate secret: %w", err)
	}
	secret := hex.EncodeToString(buf)

	if err := os.MkdirAll(filepath.Dir(secretPath), 0o755); err != nil {
		return "", fmt.Errorf("lifecycle: create secret dir: %w", err)
	}
	if err := os.WriteFile(secretPath, []byte(secret), 0o600); err != nil {
		return "", fmt.Errorf("lifecycle: write secret: %w", err)
	}
	return secret, nil
}
