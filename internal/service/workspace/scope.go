package workspace

import (
	"context"
	"fmt"

	models "cirrus/internal/domain/models/workspace"
	wsSvc "cirrus/internal/domain/services/workspace"
)

// OwnerScope binds a TreeService to one owner so it can serve as the
// coordinator's FolderSource and FileUploader
type OwnerScope struct {
	tree  wsSvc.TreeService
	owner string
}

// NewOwnerScope creates an owner-bound view of tree
func NewOwnerScope(tree wsSvc.TreeService, owner string) *OwnerScope {
	return &OwnerScope{tree: tree, owner: owner}
}

// FindChildFolderByName implements FolderSource
func (o *OwnerScope) FindChildFolderByName(ctx context.Context, parentID *string, name string) (*models.Folder, error) {
	return o.tree.FindChildFolderByName(ctx, o.owner, parentID, name)
}

// CreateFolder implements FolderSource
func (o *OwnerScope) CreateFolder(ctx context.Context, parentID *string, name string) (*models.Folder, error) {
	return o.tree.CreateFolder(ctx, &wsSvc.CreateFolderRequest{
		Owner:    o.owner,
		Name:     name,
		ParentID: parentID,
	})
}

// FindFileByName implements FileUploader
func (o *OwnerScope) FindFileByName(ctx context.Context, folderID *string, name string) (*models.File, error) {
	return o.tree.FindFileByName(ctx, o.owner, folderID, name)
}

// UploadFile implements FileUploader
func (o *OwnerScope) UploadFile(ctx context.Context, folderID *string, name string, file wsSvc.IngestFile) (*models.File, error) {
	content, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file.RelativePath, err)
	}
	defer content.Close()

	return o.tree.UploadFile(ctx, &wsSvc.UploadFileRequest{
		Owner:    o.owner,
		FolderID: folderID,
		Name:     name,
		Mime:     file.ContentType,
		Size:     file.Size,
		Content:  content,
	})
}
