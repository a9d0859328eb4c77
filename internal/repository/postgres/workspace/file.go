package workspace

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cirrus/internal/domain"
	models "cirrus/internal/domain/models/workspace"
	wsRepo "cirrus/internal/domain/repositories/workspace"
	"cirrus/internal/repository/postgres"
)

const fileColumns = `id, name, folder_id, mime, size, content_ref, owner, created_at, updated_at, deleted_at`

// PostgresFileRepository implements the FileRepository interface
type PostgresFileRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *postgres.RepositoryConfig) wsRepo.FileRepository {
	return &PostgresFileRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func scanFile(row pgx.Row) (*models.File, error) {
	var file models.File
	err := row.Scan(
		&file.ID,
		&file.Name,
		&file.FolderID,
		&file.Mime,
		&file.Size,
		&file.ContentRef,
		&file.Owner,
		&file.CreatedAt,
		&file.UpdatedAt,
		&file.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// Create creates a new file record
func (r *PostgresFileRepository) Create(ctx context.Context, file *models.File) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (owner, folder_id, name, mime, size, content_ref)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		file.Owner,
		file.FolderID,
		file.Name,
		file.Mime,
		file.Size,
		file.ContentRef,
	).Scan(&file.ID, &file.CreatedAt, &file.UpdatedAt)

	if err != nil {
		if postgres.IsPgForeignKeyError(err) || postgres.IsPgInvalidIDError(err) {
			return fmt.Errorf("folder: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create file: %w", err)
	}

	return nil
}

// GetByID retrieves a file by ID
func (r *PostgresFileRepository) GetByID(ctx context.Context, owner, id string) (*models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND owner = $2
	`, fileColumns, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	file, err := scanFile(executor.QueryRow(ctx, query, id, owner))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidIDError(err) {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}

	return file, nil
}

// Update updates a file record
func (r *PostgresFileRepository) Update(ctx context.Context, file *models.File) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = $1, name = $2, deleted_at = $3, updated_at = now()
		WHERE id = $4 AND owner = $5
		RETURNING updated_at
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		file.FolderID,
		file.Name,
		file.DeletedAt,
		file.ID,
		file.Owner,
	).Scan(&file.UpdatedAt)

	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidIDError(err) {
			return fmt.Errorf("file %s: %w", file.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update file: %w", err)
	}

	return nil
}

// Delete deletes a file record
func (r *PostgresFileRepository) Delete(ctx context.Context, owner, id string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND owner = $2
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, owner)
	if err != nil {
		if postgres.IsPgInvalidIDError(err) {
			return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("delete file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListByFolder lists files in a folder
func (r *PostgresFileRepository) ListByFolder(ctx context.Context, owner string, folderID *string, includeTrashed bool) ([]models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE owner = $1
		  AND folder_id IS NOT DISTINCT FROM $2
		  AND ($3 OR deleted_at IS NULL)
		ORDER BY lower(name), name, id
	`, fileColumns, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	return r.queryFiles(ctx, executor, query, owner, folderID, includeTrashed)
}

// FindByName returns the oldest live file named name in the folder, or nil
func (r *PostgresFileRepository) FindByName(ctx context.Context, owner string, folderID *string, name string) (*models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE owner = $1
		  AND folder_id IS NOT DISTINCT FROM $2
		  AND name = $3
		  AND deleted_at IS NULL
		ORDER BY created_at
		LIMIT 1
	`, fileColumns, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	file, err := scanFile(executor.QueryRow(ctx, query, owner, folderID, name))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, nil
		}
		if postgres.IsPgInvalidIDError(err) {
			return nil, fmt.Errorf("folder: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find file by name: %w", err)
	}

	return file, nil
}

// ListTrashed lists explicitly trashed files
func (r *PostgresFileRepository) ListTrashed(ctx context.Context, owner string) ([]models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE owner = $1 AND deleted_at IS NOT NULL
		ORDER BY lower(name), name, id
	`, fileColumns, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	return r.queryFiles(ctx, executor, query, owner)
}

// LockFolder takes a transaction-scoped advisory lock on file names within one folder
func (r *PostgresFileRepository) LockFolder(ctx context.Context, owner string, folderID *string) error {
	key := "files:" + owner + ":"
	if folderID != nil {
		key += *folderID
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("lock folder files: %w", err)
	}
	return nil
}

func (r *PostgresFileRepository) queryFiles(ctx context.Context, executor postgres.DBTX, query string, args ...any) ([]models.File, error) {
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		if postgres.IsPgInvalidIDError(err) {
			return nil, fmt.Errorf("folder: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	files := make([]models.File, 0)
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, *file)
	}

	if err := rows.Err(); err != nil {
		if postgres.IsPgInvalidIDError(err) {
			return nil, fmt.Errorf("folder: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("iterate files: %w", err)
	}

	return files, nil
}
