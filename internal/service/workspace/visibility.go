package workspace

import (
	"context"
	"fmt"

	"cirrus/internal/domain"
	models "cirrus/internal/domain/models/workspace"
	wsRepo "cirrus/internal/domain/repositories/workspace"
)

// visibility computes trash visibility by walking parent links. It memoizes
// per folder for the lifetime of one service call only.
type visibility struct {
	folders wsRepo.FolderRepository
	owner   string
	hidden  map[string]bool // folder id -> the folder or an ancestor is trashed
}

func newVisibility(folders wsRepo.FolderRepository, owner string) *visibility {
	return &visibility{
		folders: folders,
		owner:   owner,
		hidden:  make(map[string]bool),
	}
}

// folderHidden reports whether folder id or any of its ancestors is trashed.
// The root scope (nil) is never hidden.
func (v *visibility) folderHidden(ctx context.Context, id *string) (bool, error) {
	if id == nil {
		return false, nil
	}

	var chain []string
	seen := make(map[string]bool)
	current := *id
	hidden := false

	for {
		if h, ok := v.hidden[current]; ok {
			hidden = h
			break
		}
		if seen[current] {
			return false, fmt.Errorf("folder %s: parent chain loops", current)
		}
		seen[current] = true

		folder, err := v.folders.GetByID(ctx, v.owner, current)
		if err != nil {
			return false, err
		}
		chain = append(chain, current)

		if folder.IsTrashed() {
			hidden = true
			break
		}
		if folder.ParentID == nil {
			break
		}
		current = *folder.ParentID
	}

	for _, folderID := range chain {
		v.hidden[folderID] = hidden
	}
	return hidden, nil
}

// ancestry returns the folder and all of its ancestors, nearest first
func (v *visibility) ancestry(ctx context.Context, id string) ([]models.Folder, error) {
	var chain []models.Folder
	seen := make(map[string]bool)
	current := id

	for {
		if seen[current] {
			return nil, fmt.Errorf("folder %s: parent chain loops", current)
		}
		seen[current] = true

		folder, err := v.folders.GetByID(ctx, v.owner, current)
		if err != nil {
			return nil, err
		}
		chain = append(chain, *folder)

		if folder.ParentID == nil {
			return chain, nil
		}
		current = *folder.ParentID
	}
}

// liveFolder returns a folder that is neither trashed nor beneath a trashed ancestor
func (v *visibility) liveFolder(ctx context.Context, op, id string) (*models.Folder, error) {
	folder, err := v.folders.GetByID(ctx, v.owner, id)
	if err != nil {
		return nil, err
	}
	hidden, err := v.folderHidden(ctx, &folder.ID)
	if err != nil {
		return nil, err
	}
	if hidden {
		return nil, domain.NewOperationError(domain.ErrNotFound, op, domain.ResourceFolder, id)
	}
	return folder, nil
}

// fileVisible reports whether a file is live and not beneath a trashed folder
func (v *visibility) fileVisible(ctx context.Context, file *models.File) (bool, error) {
	if file.IsTrashed() {
		return false, nil
	}
	hidden, err := v.folderHidden(ctx, file.FolderID)
	if err != nil {
		return false, err
	}
	return !hidden, nil
}
