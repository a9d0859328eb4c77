package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"testing/fstest"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// RunMigrations applies the embedded schema migrations with goose.
// Table prefixes are substituted into the SQL before goose sees it.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	rendered, err := renderMigrations(migrationFiles, tables)
	if err != nil {
		return err
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(rendered)
	goose.SetTableName(tables.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// renderMigrations replaces {{folders}} and {{files}} placeholders with the
// prefixed table names and returns the result as a flat filesystem.
func renderMigrations(src fs.FS, tables *TableNames) (fs.FS, error) {
	entries, err := fs.Glob(src, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	replacer := strings.NewReplacer(
		"{{folders}}", tables.Folders,
		"{{files}}", tables.Files,
	)

	out := fstest.MapFS{}
	for _, name := range entries {
		data, err := fs.ReadFile(src, name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		out[strings.TrimPrefix(name, "migrations/")] = &fstest.MapFile{
			Data: []byte(replacer.Replace(string(data))),
			Mode: 0o644,
		}
	}
	return out, nil
}
