package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(func() { viper.Reset() })
}

func TestLoadDefaultsWithNoConfigFile(t *testing.T) {
	resetViper(t)
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(cwd) })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.ListenAddress != ":8808" {
		t.Errorf("ListenAddress: got %q", cfg.Server.ListenAddress)
	}
	if cfg.Client.RemoteAddress != "127.0.0.1:8808" {
		t.Errorf("RemoteAddress: got %q", cfg.Client.RemoteAddress)
	}
	if cfg.Store.DSN != "jt808.sqlite" {
		t.Errorf("Store.DSN: got %q", cfg.Store.DSN)
	}
	if cfg.Dashboard.Enabled {
		t.Error("Dashboard.Enabled default: got true, want false")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level: got %q", cfg.Logging.Level)
	}
}

func TestLoadReadsExplicitConfigFile(t *testing.T) {
	resetViper(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "jt808.yaml")
	contents := []byte("server:\n  listen_address: \":9000\"\nclient:\n  phone: \"13800000000\"\ndashboard:\n  enabled: true\n")
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.ListenAddress != ":9000" {
		t.Errorf("ListenAddress: got %q, want :9000", cfg.Server.ListenAddress)
	}
	if cfg.Client.Phone != "13800000000" {
		t.Errorf("Client.Phone: got %q", cfg.Client.Phone)
	}
	if !cfg.Dashboard.Enabled {
		t.Error("Dashboard.Enabled: got false, want true")
	}
	if cfg.Server.HeartbeatInterval != 30 {
		t.Errorf("HeartbeatInterval default should survive partial file: got %d", cfg.Server.HeartbeatInterval)
	}
}

func TestLoadEnvOverridesConfigFile(t *testing.T) {
	resetViper(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "jt808.yaml")
	contents := []byte("server:\n  listen_address: \":9000\"\n")
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	os.Setenv("JT808_SERVER_LISTEN_ADDRESS", ":7000")
	t.Cleanup(func() { os.Unsetenv("JT808_SERVER_LISTEN_ADDRESS") })

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.ListenAddress != ":7000" {
		t.Errorf("ListenAddress: got %q, want env override :7000", cfg.Server.ListenAddress)
	}
}

func TestLoadRejectsMissingExplicitFile(t *testing.T) {
	resetViper(t)
	if _, err := Load("/nonexistent/path/jt808.yaml"); err == nil {
		t.Error("expected an error for a missing explicit config file")
	}
}
