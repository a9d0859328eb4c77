package postgres

import (
	"io/fs"
	"strings"
	"testing"
)

func TestRenderMigrations(t *testing.T) {
	tables := NewTableNames("test_")

	rendered, err := renderMigrations(migrationFiles, tables)
	if err != nil {
		t.Fatalf("renderMigrations: %v", err)
	}

	data, err := fs.ReadFile(rendered, "00001_workspace.sql")
	if err != nil {
		t.Fatalf("read rendered migration: %v", err)
	}
	sql := string(data)

	if strings.Contains(sql, "{{") {
		t.Error("rendered migration still contains placeholders")
	}
	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS test_folders",
		"CREATE TABLE IF NOT EXISTS test_files",
		"test_folders_live_name_key",
		"-- +goose Up",
		"-- +goose Down",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("rendered migration missing %q", want)
		}
	}
}

func TestNewTableNames(t *testing.T) {
	tables := NewTableNames("dev_")
	if tables.Folders != "dev_folders" || tables.Files != "dev_files" || tables.Migrations != "dev_goose_db_version" {
		t.Errorf("tables = %+v", tables)
	}
}
