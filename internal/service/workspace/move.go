package workspace

import (
	"context"
	"errors"
	"log/slog"

	"cirrus/internal/domain"
	models "cirrus/internal/domain/models/workspace"
	"cirrus/internal/domain/repositories"
	wsRepo "cirrus/internal/domain/repositories/workspace"
	wsSvc "cirrus/internal/domain/services/workspace"
)

type moveService struct {
	folderRepo wsRepo.FolderRepository
	fileRepo   wsRepo.FileRepository
	txManager  repositories.TransactionManager
	logger     *slog.Logger
}

// NewMoveService creates a new move service
func NewMoveService(
	folderRepo wsRepo.FolderRepository,
	fileRepo wsRepo.FileRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) wsSvc.MoveService {
	return &moveService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		txManager:  txManager,
		logger:     logger,
	}
}

// MoveFile moves a file to another folder (nil = root)
func (s *moveService) MoveFile(ctx context.Context, owner, fileID string, newFolderID *string) (*models.File, error) {
	newFolderID = NormalizeID(newFolderID)

	var file *models.File
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		vis := newVisibility(s.folderRepo, owner)

		var err error
		file, err = s.fileRepo.GetByID(txCtx, owner, fileID)
		if err != nil {
			return err
		}
		visible, err := vis.fileVisible(txCtx, file)
		if err != nil {
			return err
		}
		if !visible {
			return domain.NewOperationError(domain.ErrNotFound, "move", domain.ResourceFile, fileID)
		}

		if err := s.requireLiveDestination(txCtx, vis, owner, newFolderID); err != nil {
			return err
		}
		if sameFolder(file.FolderID, newFolderID) {
			return nil
		}

		if err := requireFreeFileName(txCtx, s.fileRepo, owner, newFolderID, file.Name, file.ID); err != nil {
			return err
		}

		file.FolderID = newFolderID
		return s.fileRepo.Update(txCtx, file)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("file moved", "id", fileID, "owner", owner, "folder_id", newFolderID)
	return file, nil
}

// requireLiveDestination checks a destination exists (NotFound) and is not
// trashed or beneath a trashed folder (DestinationTrashed)
func (s *moveService) requireLiveDestination(ctx context.Context, vis *visibility, owner string, destID *string) error {
	if destID == nil {
		return nil
	}

	if _, err := s.folderRepo.GetByID(ctx, owner, *destID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewOperationError(domain.ErrNotFound, "move", domain.ResourceFolder, *destID)
		}
		return err
	}

	hidden, err := vis.folderHidden(ctx, destID)
	if err != nil {
		return err
	}
	if hidden {
		return domain.NewOperationError(domain.ErrDestinationTrashed, "move", domain.ResourceFolder, *destID)
	}
	return nil
}

// MoveFolder reparents a folder. Only the moved folder's parent_id changes.
func (s *moveService) MoveFolder(ctx context.Context, owner, folderID string, newParentID *string) (*models.Folder, error) {
	newParentID = NormalizeID(newParentID)

	var folder *models.Folder
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		// Serializes concurrent moves so two crossing moves cannot close a cycle
		if err := s.folderRepo.LockTree(txCtx, owner); err != nil {
			return err
		}

		vis := newVisibility(s.folderRepo, owner)

		var err error
		folder, err = vis.liveFolder(txCtx, "move", folderID)
		if err != nil {
			return err
		}

		if newParentID != nil {
			if *newParentID == folder.ID {
				return domain.NewOperationError(domain.ErrCyclicMove, "move", domain.ResourceFolder, folderID)
			}

			chain, err := vis.ancestry(txCtx, *newParentID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return domain.NewOperationError(domain.ErrNotFound, "move", domain.ResourceFolder, *newParentID)
				}
				return err
			}

			trashed := false
			for _, ancestor := range chain {
				if ancestor.ID == folder.ID {
					return domain.NewOperationError(domain.ErrCyclicMove, "move", domain.ResourceFolder, folderID)
				}
				if ancestor.IsTrashed() {
					trashed = true
				}
			}
			if trashed {
				return domain.NewOperationError(domain.ErrDestinationTrashed, "move", domain.ResourceFolder, *newParentID)
			}
		}

		if sameFolder(folder.ParentID, newParentID) {
			return nil
		}

		folder.ParentID = newParentID
		return s.folderRepo.Update(txCtx, folder)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder moved", "id", folderID, "owner", owner, "parent_id", newParentID)
	return folder, nil
}

func sameFolder(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
