package workspace

import (
	"context"
	"log/slog"
	"time"

	"cirrus/internal/domain"
	models "cirrus/internal/domain/models/workspace"
	"cirrus/internal/domain/repositories"
	wsRepo "cirrus/internal/domain/repositories/workspace"
	wsSvc "cirrus/internal/domain/services/workspace"
	"cirrus/internal/storage"
)

type trashService struct {
	folderRepo wsRepo.FolderRepository
	fileRepo   wsRepo.FileRepository
	objects    storage.ObjectStore
	txManager  repositories.TransactionManager
	now        func() time.Time
	logger     *slog.Logger
}

// NewTrashService creates a new trash service
func NewTrashService(
	folderRepo wsRepo.FolderRepository,
	fileRepo wsRepo.FileRepository,
	objects storage.ObjectStore,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) wsSvc.TrashService {
	return &trashService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		objects:    objects,
		txManager:  txManager,
		now:        time.Now,
		logger:     logger,
	}
}

// SoftDeleteFolder marks the folder trashed. Already trashed folders are left as they are.
func (s *trashService) SoftDeleteFolder(ctx context.Context, owner, id string) error {
	trashed := false
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		folder, err := s.folderRepo.GetByID(txCtx, owner, id)
		if err != nil {
			return err
		}
		if folder.IsTrashed() {
			return nil
		}

		now := s.now()
		folder.DeletedAt = &now
		trashed = true
		return s.folderRepo.Update(txCtx, folder)
	})
	if err != nil {
		return err
	}

	if trashed {
		s.logger.Info("folder moved to trash", "id", id, "owner", owner)
	}
	return nil
}

// SoftDeleteFile marks the file trashed. Already trashed files are left as they are.
func (s *trashService) SoftDeleteFile(ctx context.Context, owner, id string) error {
	trashed := false
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		file, err := s.fileRepo.GetByID(txCtx, owner, id)
		if err != nil {
			return err
		}
		if file.IsTrashed() {
			return nil
		}

		now := s.now()
		file.DeletedAt = &now
		trashed = true
		return s.fileRepo.Update(txCtx, file)
	})
	if err != nil {
		return err
	}

	if trashed {
		s.logger.Info("file moved to trash", "id", id, "owner", owner)
	}
	return nil
}

// RestoreFolder clears deleted_at. Independently trashed descendants stay trashed.
func (s *trashService) RestoreFolder(ctx context.Context, owner, id string) (*models.Folder, error) {
	var folder *models.Folder
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		folder, err = s.folderRepo.GetByID(txCtx, owner, id)
		if err != nil {
			return err
		}
		if !folder.IsTrashed() {
			return domain.NewOperationError(domain.ErrNotTrashed, "restore", domain.ResourceFolder, id)
		}

		folder.DeletedAt = nil
		// Update rejects the restore if a live sibling took the name meanwhile
		return s.folderRepo.Update(txCtx, folder)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder restored", "id", id, "owner", owner)
	return folder, nil
}

// RestoreFile clears deleted_at unless a live sibling took the name meanwhile
func (s *trashService) RestoreFile(ctx context.Context, owner, id string) (*models.File, error) {
	var file *models.File
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		file, err = s.fileRepo.GetByID(txCtx, owner, id)
		if err != nil {
			return err
		}
		if !file.IsTrashed() {
			return domain.NewOperationError(domain.ErrNotTrashed, "restore", domain.ResourceFile, id)
		}

		if err := requireFreeFileName(txCtx, s.fileRepo, owner, file.FolderID, file.Name, file.ID); err != nil {
			return err
		}

		file.DeletedAt = nil
		return s.fileRepo.Update(txCtx, file)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("file restored", "id", id, "owner", owner)
	return file, nil
}

// HardDeleteFolder removes a trashed folder and its whole subtree. The subtree
// is collected breadth first with an explicit worklist; files go first, then
// folders deepest first. Content is released after the records are gone.
func (s *trashService) HardDeleteFolder(ctx context.Context, owner, id string) error {
	var contentRefs []string
	var folderCount int

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		root, err := s.folderRepo.GetByID(txCtx, owner, id)
		if err != nil {
			return err
		}
		if !root.IsTrashed() {
			return domain.NewOperationError(domain.ErrNotTrashed, "hard delete", domain.ResourceFolder, id)
		}

		order := []string{root.ID}
		var files []models.File
		for i := 0; i < len(order); i++ {
			folderID := order[i]

			children, err := s.folderRepo.ListChildren(txCtx, owner, &folderID, true)
			if err != nil {
				return err
			}
			for _, child := range children {
				order = append(order, child.ID)
			}

			folderFiles, err := s.fileRepo.ListByFolder(txCtx, owner, &folderID, true)
			if err != nil {
				return err
			}
			files = append(files, folderFiles...)
		}

		for _, file := range files {
			if err := s.fileRepo.Delete(txCtx, owner, file.ID); err != nil {
				return err
			}
			contentRefs = append(contentRefs, file.ContentRef)
		}
		for i := len(order) - 1; i >= 0; i-- {
			if err := s.folderRepo.Delete(txCtx, owner, order[i]); err != nil {
				return err
			}
		}
		folderCount = len(order)
		return nil
	})
	if err != nil {
		return err
	}

	s.releaseContent(ctx, contentRefs)

	s.logger.Info("folder permanently deleted",
		"id", id,
		"owner", owner,
		"folders", folderCount,
		"files", len(contentRefs),
	)
	return nil
}

// HardDeleteFile removes a trashed file and releases its content
func (s *trashService) HardDeleteFile(ctx context.Context, owner, id string) error {
	var contentRef string
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		file, err := s.fileRepo.GetByID(txCtx, owner, id)
		if err != nil {
			return err
		}
		if !file.IsTrashed() {
			return domain.NewOperationError(domain.ErrNotTrashed, "hard delete", domain.ResourceFile, id)
		}
		contentRef = file.ContentRef
		return s.fileRepo.Delete(txCtx, owner, id)
	})
	if err != nil {
		return err
	}

	s.releaseContent(ctx, []string{contentRef})

	s.logger.Info("file permanently deleted", "id", id, "owner", owner)
	return nil
}

// releaseContent deletes objects whose records are already gone. Failures
// leave orphaned objects behind and are only logged.
func (s *trashService) releaseContent(ctx context.Context, refs []string) {
	ctx = context.WithoutCancel(ctx)
	for _, ref := range refs {
		if err := s.objects.Delete(ctx, ref); err != nil {
			s.logger.Warn("failed to release object", "content_ref", ref, "error", err)
		}
	}
}

// ListTrash lists trashed entities whose ancestors are all live
func (s *trashService) ListTrash(ctx context.Context, owner string) (*models.Listing, error) {
	vis := newVisibility(s.folderRepo, owner)

	folders, err := s.folderRepo.ListTrashed(ctx, owner)
	if err != nil {
		return nil, err
	}
	files, err := s.fileRepo.ListTrashed(ctx, owner)
	if err != nil {
		return nil, err
	}

	listing := &models.Listing{
		Folders: make([]models.Folder, 0, len(folders)),
		Files:   make([]models.File, 0, len(files)),
	}
	for _, folder := range folders {
		underTrash, err := vis.folderHidden(ctx, folder.ParentID)
		if err != nil {
			return nil, err
		}
		if !underTrash {
			listing.Folders = append(listing.Folders, folder)
		}
	}
	for _, file := range files {
		underTrash, err := vis.folderHidden(ctx, file.FolderID)
		if err != nil {
			return nil, err
		}
		if !underTrash {
			listing.Files = append(listing.Files, file)
		}
	}

	return listing, nil
}

// TrashContents lists the direct children of a folder that is trashed or
// beneath a trashed folder, regardless of the children's own state
func (s *trashService) TrashContents(ctx context.Context, owner, folderID string) (*models.Listing, error) {
	hidden, err := newVisibility(s.folderRepo, owner).folderHidden(ctx, &folderID)
	if err != nil {
		return nil, err
	}
	if !hidden {
		return nil, domain.NewOperationError(domain.ErrNotTrashed, "browse trash", domain.ResourceFolder, folderID)
	}

	folders, err := s.folderRepo.ListChildren(ctx, owner, &folderID, true)
	if err != nil {
		return nil, err
	}
	files, err := s.fileRepo.ListByFolder(ctx, owner, &folderID, true)
	if err != nil {
		return nil, err
	}

	return &models.Listing{Folders: folders, Files: files}, nil
}
