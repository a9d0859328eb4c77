package workspace

import (
	"context"
	"io"

	models "cirrus/internal/domain/models/workspace"
)

// TreeService browses and edits one owner's folder/file tree.
// Trashed entities, and everything beneath a trashed folder, are invisible here.
type TreeService interface {
	// ListFolders lists live child folders of parentID (nil = root)
	ListFolders(ctx context.Context, owner string, parentID *string) ([]models.Folder, error)

	// ListFiles lists live files in folderID (nil = root)
	ListFiles(ctx context.Context, owner string, folderID *string) ([]models.File, error)

	// GetFolder returns a visible folder
	GetFolder(ctx context.Context, owner, id string) (*models.Folder, error)

	// GetFile returns a visible file
	GetFile(ctx context.Context, owner, id string) (*models.File, error)

	// FindChildFolderByName returns the live child folder with exactly this name, or nil
	FindChildFolderByName(ctx context.Context, owner string, parentID *string, name string) (*models.Folder, error)

	// FindFileByName returns the oldest live file with exactly this name, or nil
	FindFileByName(ctx context.Context, owner string, folderID *string, name string) (*models.File, error)

	// CreateFolder creates a folder under a live parent
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error)

	// RenameFolder renames a folder in place
	RenameFolder(ctx context.Context, owner, id, name string) (*models.Folder, error)

	// RenameFile renames a file in place
	RenameFile(ctx context.Context, owner, id, name string) (*models.File, error)

	// UploadFile stores the bytes and records the file
	UploadFile(ctx context.Context, req *UploadFileRequest) (*models.File, error)

	// DownloadURL returns a time-limited URL for a visible file
	DownloadURL(ctx context.Context, owner, fileID string) (string, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Owner    string  `json:"-"`
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"` // null for root
}

// UploadFileRequest represents a single file upload
type UploadFileRequest struct {
	Owner    string
	FolderID *string // nil for root
	Name     string
	Mime     string // declared content type, may be empty
	Size     int64
	Content  io.Reader
}
