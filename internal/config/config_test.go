package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ENVIRONMENT", "PORT", "TABLE_PREFIX", "DATABASE_URL", "STORAGE_BACKEND", "DOWNLOAD_URL_TTL", "MAX_UPLOAD_BYTES", "PUBLIC_URL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.TablePrefix != "dev_" {
		t.Errorf("TablePrefix = %q", cfg.TablePrefix)
	}
	if cfg.StorageBackend != "memory" {
		t.Errorf("StorageBackend = %q", cfg.StorageBackend)
	}
	if cfg.DownloadURLTTL != 15*time.Minute {
		t.Errorf("DownloadURLTTL = %v", cfg.DownloadURLTTL)
	}
	if cfg.MaxUploadBytes != DefaultMaxUploadBytes {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if cfg.PublicURL != "http://localhost:8080" {
		t.Errorf("PublicURL = %q", cfg.PublicURL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("TABLE_PREFIX", "")
	t.Setenv("DOWNLOAD_URL_TTL", "90s")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("S3_PATH_STYLE", "true")
	t.Setenv("PUBLIC_URL", "https://files.example.com/")

	cfg := Load()
	if !cfg.IsProduction() {
		t.Error("expected production")
	}
	if cfg.TablePrefix != "prod_" {
		t.Errorf("TablePrefix = %q", cfg.TablePrefix)
	}
	if cfg.DownloadURLTTL != 90*time.Second {
		t.Errorf("DownloadURLTTL = %v", cfg.DownloadURLTTL)
	}
	if cfg.MaxUploadBytes != 1024 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if !cfg.S3PathStyle {
		t.Error("S3PathStyle not set")
	}
	if cfg.PublicURL != "https://files.example.com" {
		t.Errorf("PublicURL = %q", cfg.PublicURL)
	}
}

func TestSetupLogFile_RotatesOldFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"server-2020-01-01T00-00-00.000.log", "server-2020-01-02T00-00-00.000.log", "other.log"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	f, err := SetupLogFile(dir, "server", 2)
	if err != nil {
		t.Fatalf("SetupLogFile: %v", err)
	}
	f.Close()

	matches, _ := filepath.Glob(filepath.Join(dir, "server-*.log"))
	if len(matches) != 2 {
		t.Fatalf("kept %d log files, want 2: %v", len(matches), matches)
	}
	if _, err := os.Stat(filepath.Join(dir, "server-2020-01-01T00-00-00.000.log")); !os.IsNotExist(err) {
		t.Error("oldest log file was not removed")
	}
	if _, err := os.Stat(filepath.Join(dir, "other.log")); err != nil {
		t.Error("unrelated file was removed")
	}
}
