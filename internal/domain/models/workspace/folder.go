package workspace

import (
	"time"
)

// Folder is a node in a user's folder forest. A nil ParentID means the folder
// lives at the root scope; there is no synthetic root record.
type Folder struct {
	ID        string     `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	ParentID  *string    `json:"parent_id" db:"parent_id"`
	Owner     string     `json:"owner" db:"owner"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" db:"deleted_at"` // set only on the explicitly trashed folder
}

// IsRoot returns true if the folder is at the root level.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}

// IsTrashed reports whether the folder itself was soft-deleted.
// A folder below a trashed ancestor is hidden but not trashed.
func (f *Folder) IsTrashed() bool {
	return f.DeletedAt != nil
}
