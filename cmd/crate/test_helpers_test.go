package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestConfig creates a minimal valid config file rooted in a temp dir
// with every network-backed enrichment source disabled.
func writeTestConfig(t *testing.T) string {
	t.Helper()

	base := t.TempDir()
	content := fmt.Sprintf(`[paths]
cache_dir = %q
site_dir = %q
log_dir = %q
backup_dir = %q

[discogs]
token = "test-token"
username = "tester"
delay_seconds = 0.0

[apple_music]
enabled = false

[spotify]
enabled = false

[wikipedia]
enabled = false
`,
		filepath.Join(base, "cache"),
		filepath.Join(base, "site"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "backups"))

	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("output missing %q:\n%s", want, output)
	}
}
