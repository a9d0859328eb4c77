package workspace

import (
	"context"
	"errors"
	"log/slog"

	"cirrus/internal/domain"
	wsSvc "cirrus/internal/domain/services/workspace"
)

// Coordinator drives one batch upload of a client-side directory tree:
// one top folder per distinct top directory under the destination, leaf
// folder resolution per file, then sequential uploads in input order.
type Coordinator struct {
	folders wsSvc.FolderSource
	files   wsSvc.FileUploader
	logger  *slog.Logger
}

// NewCoordinator creates a coordinator over a folder source and an uploader
func NewCoordinator(folders wsSvc.FolderSource, files wsSvc.FileUploader, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		folders: folders,
		files:   files,
		logger:  logger,
	}
}

// Ingest uploads every file of req. Per-file failures never roll back or stop
// the batch. Cancelling ctx stops before the next file; entities created so
// far remain and the partial result is returned with ctx's error.
func (c *Coordinator) Ingest(ctx context.Context, req *wsSvc.IngestRequest) (*wsSvc.IngestResult, error) {
	destination := NormalizeID(req.DestinationID)
	policy := req.OnDuplicate
	if policy == "" {
		policy = wsSvc.DuplicateKeep
	}

	resolver := NewPathResolver(c.folders, c.logger)
	total := len(req.Files)
	result := &wsSvc.IngestResult{
		Summary:    wsSvc.IngestSummary{Total: total},
		Files:      make([]wsSvc.IngestFileResult, 0, total),
		TopFolders: make(map[string]string),
	}

	for i, file := range req.Files {
		if err := ctx.Err(); err != nil {
			result.Canceled = true
			result.FoldersCreated = resolver.Created()
			c.logger.Warn("ingestion canceled",
				"processed", i,
				"total", total,
				"error", err,
			)
			return result, err
		}

		entry := c.ingestOne(ctx, resolver, destination, policy, file, result)
		result.Files = append(result.Files, entry)
		switch entry.Status {
		case wsSvc.StatusUploaded:
			result.Summary.Uploaded++
		case wsSvc.StatusSkipped:
			result.Summary.Skipped++
		case wsSvc.StatusFailed:
			result.Summary.Failed++
		}

		if req.Progress != nil {
			req.Progress(i+1, total)
		}
	}

	result.FoldersCreated = resolver.Created()

	c.logger.Info("ingestion complete",
		"destination_id", destination,
		"total", total,
		"uploaded", result.Summary.Uploaded,
		"skipped", result.Summary.Skipped,
		"failed", result.Summary.Failed,
		"folders_created", result.FoldersCreated,
	)

	return result, nil
}

func (c *Coordinator) ingestOne(
	ctx context.Context,
	resolver *PathResolver,
	destination *string,
	policy wsSvc.DuplicatePolicy,
	file wsSvc.IngestFile,
	result *wsSvc.IngestResult,
) wsSvc.IngestFileResult {
	entry := wsSvc.IngestFileResult{Path: file.RelativePath}

	dirs, name, err := SplitRelativePath(file.RelativePath)
	if err != nil {
		return failed(entry, err)
	}

	folderID := destination
	if len(dirs) > 0 {
		top, err := resolver.Resolve(ctx, destination, dirs[:1])
		if err != nil {
			return c.resolveFailure(entry, err)
		}
		result.TopFolders[dirs[0]] = *top

		folderID, err = resolver.Resolve(ctx, top, dirs[1:])
		if err != nil {
			return c.resolveFailure(entry, err)
		}
	}
	entry.FolderID = folderID

	if policy == wsSvc.DuplicateSkip {
		existing, err := c.files.FindFileByName(ctx, folderID, name)
		if err != nil {
			return failed(entry, err)
		}
		if existing != nil {
			entry.Status = wsSvc.StatusSkipped
			entry.FileID = existing.ID
			entry.Error = "a file with this name already exists"
			return entry
		}
	}

	uploaded, err := c.files.UploadFile(ctx, folderID, name, file)
	if err != nil {
		c.logger.Warn("file upload failed", "path", file.RelativePath, "error", err)
		return failed(entry, err)
	}

	entry.Status = wsSvc.StatusUploaded
	entry.FileID = uploaded.ID
	return entry
}

// resolveFailure marks files of a prefix that lost a creation race as
// skipped; any other resolution error fails the file
func (c *Coordinator) resolveFailure(entry wsSvc.IngestFileResult, err error) wsSvc.IngestFileResult {
	if errors.Is(err, domain.ErrFolderCreationRace) {
		entry.Status = wsSvc.StatusSkipped
		entry.Error = err.Error()
		return entry
	}
	c.logger.Warn("folder resolution failed", "path", entry.Path, "error", err)
	return failed(entry, err)
}

func failed(entry wsSvc.IngestFileResult, err error) wsSvc.IngestFileResult {
	entry.Status = wsSvc.StatusFailed
	entry.Error = err.Error()
	return entry
}

type ingestService struct {
	tree   wsSvc.TreeService
	logger *slog.Logger
}

// NewIngestService creates the server-side batch upload service
func NewIngestService(tree wsSvc.TreeService, logger *slog.Logger) wsSvc.IngestService {
	return &ingestService{
		tree:   tree,
		logger: logger,
	}
}

// Ingest runs a coordinator against the owner's tree
func (s *ingestService) Ingest(ctx context.Context, owner string, req *wsSvc.IngestRequest) (*wsSvc.IngestResult, error) {
	if req.DestinationID = NormalizeID(req.DestinationID); req.DestinationID != nil {
		if _, err := s.tree.GetFolder(ctx, owner, *req.DestinationID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.NewOperationError(domain.ErrParentNotFound, "ingest", domain.ResourceFolder, *req.DestinationID)
			}
			return nil, err
		}
	}

	scope := NewOwnerScope(s.tree, owner)
	return NewCoordinator(scope, scope, s.logger.With("owner", owner)).Ingest(ctx, req)
}
