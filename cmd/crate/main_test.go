package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	// A second init must refuse to clobber the file.
	if _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("config init should refuse to overwrite an existing file")
	}
}

func TestConfigShowRedactsSecrets(t *testing.T) {
	configPath := writeTestConfig(t)

	out, err := runCLI(t, configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "username = 'tester'")
	requireContains(t, out, "token = '(set)'")
	if strings.Contains(out, "test-token") {
		t.Fatal("config show leaked the token")
	}
}

func TestSkipCommandsRoundTrip(t *testing.T) {
	configPath := writeTestConfig(t)

	out, err := runCLI(t, configPath, "skip", "add", "42")
	if err != nil {
		t.Fatalf("skip add: %v", err)
	}
	requireContains(t, out, "Release 42 added")

	out, err = runCLI(t, configPath, "skip", "list")
	if err != nil {
		t.Fatalf("skip list: %v", err)
	}
	requireContains(t, out, "42")

	out, err = runCLI(t, configPath, "skip", "remove", "42")
	if err != nil {
		t.Fatalf("skip remove: %v", err)
	}
	requireContains(t, out, "Release 42 removed")

	if _, err = runCLI(t, configPath, "skip", "remove", "42"); err == nil {
		t.Fatal("removing an absent skip should fail")
	}
}

func TestSkipAddRejectsBadID(t *testing.T) {
	configPath := writeTestConfig(t)

	if _, err := runCLI(t, configPath, "skip", "add", "zero"); err == nil {
		t.Fatal("non-numeric release id should be rejected")
	}
}

func TestStatusShowsCounts(t *testing.T) {
	configPath := writeTestConfig(t)

	out, err := runCLI(t, configPath, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	// go-pretty uppercases header cells.
	requireContains(t, out, "RELEASES")
	requireContains(t, out, "COMPLETED")
}

func TestStatusHealthReportsDatabase(t *testing.T) {
	configPath := writeTestConfig(t)

	out, err := runCLI(t, configPath, "status", "--health")
	if err != nil {
		t.Fatalf("status --health: %v", err)
	}
	requireContains(t, out, "Database exists: yes")
	requireContains(t, out, "Readable: yes")
	requireContains(t, out, "Missing tables: none")
	requireContains(t, out, "Integrity check: yes")
}

func TestRenderWithEmptyCache(t *testing.T) {
	configPath := writeTestConfig(t)

	out, err := runCLI(t, configPath, "render")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	requireContains(t, out, "Rendered 0 releases and 0 artists")
}
