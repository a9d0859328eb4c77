package workspace

import (
	"context"
	"io"

	models "cirrus/internal/domain/models/workspace"
)

// FolderSource is the folder lookup/creation surface the path resolver needs.
// Implementations are already scoped to one owner.
type FolderSource interface {
	FindChildFolderByName(ctx context.Context, parentID *string, name string) (*models.Folder, error)
	CreateFolder(ctx context.Context, parentID *string, name string) (*models.Folder, error)
}

// FileUploader is the per-file surface the ingestion coordinator needs
type FileUploader interface {
	FindFileByName(ctx context.Context, folderID *string, name string) (*models.File, error)
	UploadFile(ctx context.Context, folderID *string, name string, file IngestFile) (*models.File, error)
}

// IngestFile is one file of a client-side directory tree
type IngestFile struct {
	RelativePath string // slash separated, e.g. "A/B/y.txt"
	Size         int64
	ContentType  string
	Open         func() (io.ReadCloser, error)
}

// DuplicatePolicy decides what happens when the target folder already holds a
// live file with the same name
type DuplicatePolicy string

const (
	DuplicateKeep DuplicatePolicy = "keep" // upload anyway, names may repeat
	DuplicateSkip DuplicatePolicy = "skip" // leave the existing file alone
)

// ProgressFunc is called after each file with done in 1..total
type ProgressFunc func(done, total int)

// IngestRequest is one batch upload
type IngestRequest struct {
	DestinationID *string // nil for root
	Files         []IngestFile
	OnDuplicate   DuplicatePolicy
	Progress      ProgressFunc
}

// FileStatus is the outcome for one file of a batch
type FileStatus string

const (
	StatusUploaded FileStatus = "uploaded"
	StatusSkipped  FileStatus = "skipped"
	StatusFailed   FileStatus = "failed"
)

// IngestResult represents the result of a batch upload
type IngestResult struct {
	Summary        IngestSummary      `json:"summary"`
	Files          []IngestFileResult `json:"files"`
	TopFolders     map[string]string  `json:"top_folders"` // top directory name -> folder id
	FoldersCreated int                `json:"folders_created"`
	Canceled       bool               `json:"canceled,omitempty"`
}

// IngestSummary contains aggregate statistics for a batch
type IngestSummary struct {
	Total    int `json:"total"`
	Uploaded int `json:"uploaded"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// IngestFileResult is the outcome for one input file, in input order
type IngestFileResult struct {
	Path     string     `json:"path"`
	Status   FileStatus `json:"status"`
	FileID   string     `json:"file_id,omitempty"`
	FolderID *string    `json:"folder_id,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// IngestService runs server-side batch uploads for an owner
type IngestService interface {
	Ingest(ctx context.Context, owner string, req *IngestRequest) (*IngestResult, error)
}
