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

const folderColumns = `id, name, parent_id, owner, created_at, updated_at, deleted_at`

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *postgres.RepositoryConfig) wsRepo.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func scanFolder(row pgx.Row) (*models.Folder, error) {
	var folder models.Folder
	err := row.Scan(
		&folder.ID,
		&folder.Name,
		&folder.ParentID,
		&folder.Owner,
		&folder.CreatedAt,
		&folder.UpdatedAt,
		&folder.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	// Guard at the application level so the conflict can name the existing folder
	existing, err := r.FindChildByName(ctx, folder.Owner, folder.ParentID, folder.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.NewNameCollision(domain.ResourceFolder, folder.Name, existing.ID)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (owner, parent_id, name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		folder.Owner,
		folder.ParentID,
		folder.Name,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		switch {
		case postgres.IsPgDuplicateError(err):
			// Lost the race against a concurrent insert; the index is authoritative
			return domain.NewNameCollision(domain.ResourceFolder, folder.Name, "")
		case postgres.IsPgForeignKeyError(err), postgres.IsPgInvalidIDError(err):
			return fmt.Errorf("parent folder: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, owner, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND owner = $2
	`, folderColumns, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, id, owner))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidIDError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return folder, nil
}

// Update updates a folder
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, name = $2, deleted_at = $3, updated_at = now()
		WHERE id = $4 AND owner = $5
		RETURNING updated_at
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		folder.ParentID,
		folder.Name,
		folder.DeletedAt,
		folder.ID,
		folder.Owner,
	).Scan(&folder.UpdatedAt)

	if err != nil {
		switch {
		case postgres.IsPgDuplicateError(err):
			return domain.NewNameCollision(domain.ResourceFolder, folder.Name, "")
		case postgres.IsPgNoRowsError(err), postgres.IsPgInvalidIDError(err):
			return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update folder: %w", err)
	}

	return nil
}

// Delete deletes a folder
func (r *PostgresFolderRepository) Delete(ctx context.Context, owner, id string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND owner = $2
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, owner)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("cannot delete folder %s with children: %w", id, err)
		}
		if postgres.IsPgInvalidIDError(err) {
			return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("delete folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListChildren lists immediate child folders
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, owner string, parentID *string, includeTrashed bool) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE owner = $1
		  AND parent_id IS NOT DISTINCT FROM $2
		  AND ($3 OR deleted_at IS NULL)
		ORDER BY lower(name), name, id
	`, folderColumns, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	return r.queryFolders(ctx, executor, query, owner, parentID, includeTrashed)
}

// FindChildByName returns the live child folder named name, or nil
func (r *PostgresFolderRepository) FindChildByName(ctx context.Context, owner string, parentID *string, name string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE owner = $1
		  AND parent_id IS NOT DISTINCT FROM $2
		  AND name = $3
		  AND deleted_at IS NULL
	`, folderColumns, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, owner, parentID, name))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, nil
		}
		if postgres.IsPgInvalidIDError(err) {
			return nil, fmt.Errorf("parent folder: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find folder by name: %w", err)
	}

	return folder, nil
}

// ListTrashed lists explicitly trashed folders
func (r *PostgresFolderRepository) ListTrashed(ctx context.Context, owner string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE owner = $1 AND deleted_at IS NOT NULL
		ORDER BY lower(name), name, id
	`, folderColumns, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	return r.queryFolders(ctx, executor, query, owner)
}

// LockTree takes a transaction-scoped advisory lock on the owner's tree.
// Two crossing moves serialize here, so neither can observe a stale ancestor chain.
func (r *PostgresFolderRepository) LockTree(ctx context.Context, owner string) error {
	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "tree:"+owner); err != nil {
		return fmt.Errorf("lock folder tree: %w", err)
	}
	return nil
}

func (r *PostgresFolderRepository) queryFolders(ctx context.Context, executor postgres.DBTX, query string, args ...any) ([]models.Folder, error) {
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		if postgres.IsPgInvalidIDError(err) {
			return nil, fmt.Errorf("folder: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	folders := make([]models.Folder, 0)
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *folder)
	}

	if err := rows.Err(); err != nil {
		if postgres.IsPgInvalidIDError(err) {
			return nil, fmt.Errorf("folder: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}
