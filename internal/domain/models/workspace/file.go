package workspace

import (
	"time"
)

// File is a stored blob placed in a folder (or at root when FolderID is nil).
type File struct {
	ID         string     `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	FolderID   *string    `json:"folder_id" db:"folder_id"`
	Mime       string     `json:"mime" db:"mime"`
	Size       int64      `json:"size" db:"size"`
	ContentRef string     `json:"-" db:"content_ref"` // object store key, never exposed
	Owner      string     `json:"owner" db:"owner"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at" db:"deleted_at"`
}

// IsInRoot returns true if the file is at the root level (not in any folder).
func (f *File) IsInRoot() bool {
	return f.FolderID == nil
}

// IsTrashed reports whether the file itself was soft-deleted.
func (f *File) IsTrashed() bool {
	return f.DeletedAt != nil
}
