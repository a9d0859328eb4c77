package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cirrus/internal/config"
	"cirrus/internal/domain"
	models "cirrus/internal/domain/models/workspace"
	"cirrus/internal/domain/repositories"
	wsRepo "cirrus/internal/domain/repositories/workspace"
	wsSvc "cirrus/internal/domain/services/workspace"
	"cirrus/internal/mimetypes"
	"cirrus/internal/storage"
)

type treeService struct {
	folderRepo  wsRepo.FolderRepository
	fileRepo    wsRepo.FileRepository
	objects     storage.ObjectStore
	mimes       *mimetypes.Registry
	txManager   repositories.TransactionManager
	downloadTTL time.Duration
	logger      *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(
	folderRepo wsRepo.FolderRepository,
	fileRepo wsRepo.FileRepository,
	objects storage.ObjectStore,
	mimes *mimetypes.Registry,
	txManager repositories.TransactionManager,
	downloadTTL time.Duration,
	logger *slog.Logger,
) wsSvc.TreeService {
	return &treeService{
		folderRepo:  folderRepo,
		fileRepo:    fileRepo,
		objects:     objects,
		mimes:       mimes,
		txManager:   txManager,
		downloadTTL: downloadTTL,
		logger:      logger,
	}
}

// ListFolders lists live child folders. A parent hidden by trash has no visible children.
func (s *treeService) ListFolders(ctx context.Context, owner string, parentID *string) ([]models.Folder, error) {
	parentID = NormalizeID(parentID)

	hidden, err := newVisibility(s.folderRepo, owner).folderHidden(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if hidden {
		return []models.Folder{}, nil
	}

	return s.folderRepo.ListChildren(ctx, owner, parentID, false)
}

// ListFiles lists live files. A folder hidden by trash has no visible files.
func (s *treeService) ListFiles(ctx context.Context, owner string, folderID *string) ([]models.File, error) {
	folderID = NormalizeID(folderID)

	hidden, err := newVisibility(s.folderRepo, owner).folderHidden(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if hidden {
		return []models.File{}, nil
	}

	return s.fileRepo.ListByFolder(ctx, owner, folderID, false)
}

// GetFolder returns a visible folder
func (s *treeService) GetFolder(ctx context.Context, owner, id string) (*models.Folder, error) {
	return newVisibility(s.folderRepo, owner).liveFolder(ctx, "get", id)
}

// GetFile returns a visible file
func (s *treeService) GetFile(ctx context.Context, owner, id string) (*models.File, error) {
	return s.liveFile(ctx, newVisibility(s.folderRepo, owner), "get", owner, id)
}

func (s *treeService) liveFile(ctx context.Context, vis *visibility, op, owner, id string) (*models.File, error) {
	file, err := s.fileRepo.GetByID(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	visible, err := vis.fileVisible(ctx, file)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, domain.NewOperationError(domain.ErrNotFound, op, domain.ResourceFile, id)
	}
	return file, nil
}

// FindChildFolderByName returns the live child folder with exactly this name, or nil
func (s *treeService) FindChildFolderByName(ctx context.Context, owner string, parentID *string, name string) (*models.Folder, error) {
	return s.folderRepo.FindChildByName(ctx, owner, NormalizeID(parentID), name)
}

// FindFileByName returns the oldest live file with exactly this name, or nil
func (s *treeService) FindFileByName(ctx context.Context, owner string, folderID *string, name string) (*models.File, error) {
	return s.fileRepo.FindByName(ctx, owner, NormalizeID(folderID), name)
}

// CreateFolder creates a folder under a live parent
func (s *treeService) CreateFolder(ctx context.Context, req *wsSvc.CreateFolderRequest) (*models.Folder, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.ParentID = NormalizeID(req.ParentID)

	if err := validateCreateFolder(req); err != nil {
		return nil, err
	}

	folder := &models.Folder{
		Owner:    req.Owner,
		ParentID: req.ParentID,
		Name:     req.Name,
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.requireLiveParent(txCtx, req.Owner, req.ParentID); err != nil {
			return err
		}
		return s.folderRepo.Create(txCtx, folder)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"owner", folder.Owner,
		"parent_id", folder.ParentID,
	)

	return folder, nil
}

// requireLiveParent fails with ParentNotFound unless parentID is root or a visible folder
func (s *treeService) requireLiveParent(ctx context.Context, owner string, parentID *string) error {
	if parentID == nil {
		return nil
	}

	_, err := newVisibility(s.folderRepo, owner).liveFolder(ctx, "create", *parentID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewOperationError(domain.ErrParentNotFound, "create", domain.ResourceFolder, *parentID)
	}
	return err
}

// RenameFolder renames a folder in place
func (s *treeService) RenameFolder(ctx context.Context, owner, id, name string) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if err := ValidateName(name, config.MaxFolderNameLength); err != nil {
		return nil, err
	}

	var folder *models.Folder
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		folder, err = newVisibility(s.folderRepo, owner).liveFolder(txCtx, "rename", id)
		if err != nil {
			return err
		}
		if folder.Name == name {
			return nil
		}

		folder.Name = name
		return s.folderRepo.Update(txCtx, folder)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder renamed", "id", id, "name", name, "owner", owner)
	return folder, nil
}

// RenameFile renames a file in place
func (s *treeService) RenameFile(ctx context.Context, owner, id, name string) (*models.File, error) {
	name = strings.TrimSpace(name)
	if err := ValidateName(name, config.MaxFileNameLength); err != nil {
		return nil, err
	}

	var file *models.File
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		file, err = s.liveFile(txCtx, newVisibility(s.folderRepo, owner), "rename", owner, id)
		if err != nil {
			return err
		}
		if file.Name == name {
			return nil
		}

		if err := requireFreeFileName(txCtx, s.fileRepo, owner, file.FolderID, name, file.ID); err != nil {
			return err
		}

		file.Name = name
		return s.fileRepo.Update(txCtx, file)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("file renamed", "id", id, "name", name, "owner", owner)
	return file, nil
}

// requireFreeFileName locks the folder's file names and fails with a
// NameCollision if a different live file already uses name
func requireFreeFileName(ctx context.Context, fileRepo wsRepo.FileRepository, owner string, folderID *string, name, selfID string) error {
	if err := fileRepo.LockFolder(ctx, owner, folderID); err != nil {
		return err
	}
	existing, err := fileRepo.FindByName(ctx, owner, folderID, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return domain.NewNameCollision(domain.ResourceFile, name, existing.ID)
	}
	return nil
}

// UploadFile writes the bytes to the object store, then records the file.
// The object is released again if the record cannot be written.
func (s *treeService) UploadFile(ctx context.Context, req *wsSvc.UploadFileRequest) (*models.File, error) {
	req.FolderID = NormalizeID(req.FolderID)
	if err := validateUpload(req); err != nil {
		return nil, err
	}

	if err := s.requireLiveParent(ctx, req.Owner, req.FolderID); err != nil {
		return nil, err
	}

	contentRef := storage.NewContentRef(req.Owner)
	mime := s.mimes.Detect(req.Name, req.Mime)

	if err := s.objects.Put(ctx, contentRef, req.Content, req.Size, mime); err != nil {
		s.logger.Error("failed to store object", "name", req.Name, "owner", req.Owner, "error", err)
		return nil, &domain.TransportError{Op: "store file content", Err: err}
	}

	file := &models.File{
		Owner:      req.Owner,
		FolderID:   req.FolderID,
		Name:       req.Name,
		Mime:       mime,
		Size:       req.Size,
		ContentRef: contentRef,
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		// The folder may have been trashed while the bytes were in flight
		if err := s.requireLiveParent(txCtx, req.Owner, req.FolderID); err != nil {
			return err
		}
		return s.fileRepo.Create(txCtx, file)
	})
	if err != nil {
		if delErr := s.objects.Delete(context.WithoutCancel(ctx), contentRef); delErr != nil {
			s.logger.Warn("failed to release orphaned object", "content_ref", contentRef, "error", delErr)
		}
		return nil, err
	}

	s.logger.Info("file uploaded",
		"id", file.ID,
		"name", file.Name,
		"owner", file.Owner,
		"folder_id", file.FolderID,
		"size", file.Size,
		"mime", file.Mime,
	)

	return file, nil
}

// DownloadURL returns a presigned URL for a visible file
func (s *treeService) DownloadURL(ctx context.Context, owner, fileID string) (string, error) {
	file, err := s.liveFile(ctx, newVisibility(s.folderRepo, owner), "download", owner, fileID)
	if err != nil {
		return "", err
	}

	url, err := s.objects.PresignGet(ctx, file.ContentRef, file.Name, s.downloadTTL)
	if err != nil {
		return "", &domain.TransportError{Op: "presign download", Err: fmt.Errorf("file %s: %w", fileID, err)}
	}
	return url, nil
}
