package handler

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	wsSvc "cirrus/internal/domain/services/workspace"
	"cirrus/internal/httputil"
)

// multipartMemory is how much of a multipart body is buffered in memory;
// the rest spills to temporary files
const multipartMemory = 32 << 20

// FileHandler handles file HTTP requests
type FileHandler struct {
	tree           wsSvc.TreeService
	move           wsSvc.MoveService
	trash          wsSvc.TrashService
	ingest         wsSvc.IngestService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(
	tree wsSvc.TreeService,
	move wsSvc.MoveService,
	trash wsSvc.TrashService,
	ingest wsSvc.IngestService,
	maxUploadBytes int64,
	logger *slog.Logger,
) *FileHandler {
	return &FileHandler{
		tree:           tree,
		move:           move,
		trash:          trash,
		ingest:         ingest,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// moveFileRequest is the body of PATCH /files/{id}/move.
// folder_id must be present; null moves to root.
type moveFileRequest struct {
	FolderID httputil.OptionalString `json:"folder_id"`
}

// parseMultipart caps the body at maxUploadBytes and parses the form
func (h *FileHandler) parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	if r.ContentLength > h.maxUploadBytes {
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, "upload exceeds maximum size")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge, "upload exceeds maximum size")
			return false
		}
		httputil.RespondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return false
	}
	return true
}

// Upload stores one file
// POST /files/upload (multipart: file, folder_id)
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	if !h.parseMultipart(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	content, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer content.Close()

	folderID := r.FormValue("folder_id")
	file, err := h.tree.UploadFile(r.Context(), &wsSvc.UploadFileRequest{
		Owner:    owner,
		FolderID: &folderID,
		Name:     header.Filename,
		Mime:     header.Header.Get("Content-Type"),
		Size:     header.Size,
		Content:  content,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, FileResponse{File: file})
}

// UploadTree ingests a client-side directory tree in one request.
// POST /files/upload-tree
//
// Multipart fields:
//   - files: one part per file
//   - paths: relative path of each file, in the same order as files
//     (falls back to the part's filename)
//   - parent_id: optional destination folder
//   - on_duplicate: "keep" (default) or "skip"
func (h *FileHandler) UploadTree(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	if !h.parseMultipart(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		httputil.RespondError(w, http.StatusBadRequest, "no files provided")
		return
	}
	paths := r.MultipartForm.Value["paths"]
	if len(paths) > 0 && len(paths) != len(headers) {
		httputil.RespondError(w, http.StatusBadRequest, "paths must match files one to one")
		return
	}

	policy := wsSvc.DuplicatePolicy(r.FormValue("on_duplicate"))
	switch policy {
	case "", wsSvc.DuplicateKeep, wsSvc.DuplicateSkip:
	default:
		httputil.RespondError(w, http.StatusBadRequest, "on_duplicate must be keep or skip")
		return
	}

	files := make([]wsSvc.IngestFile, len(headers))
	for i, header := range headers {
		path := header.Filename
		if len(paths) > 0 {
			path = paths[i]
		}
		files[i] = wsSvc.IngestFile{
			RelativePath: path,
			Size:         header.Size,
			ContentType:  header.Header.Get("Content-Type"),
			Open:         openPart(header),
		}
	}

	parentID := r.FormValue("parent_id")
	h.logger.Info("starting tree upload",
		"owner", owner,
		"parent_id", parentID,
		"file_count", len(files),
		"on_duplicate", policy,
	)

	result, err := h.ingest.Ingest(r.Context(), owner, &wsSvc.IngestRequest{
		DestinationID: &parentID,
		Files:         files,
		OnDuplicate:   policy,
	})
	if err != nil && result == nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

func openPart(header *multipart.FileHeader) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		return header.Open()
	}
}

// RenameFile renames a file
// PATCH /files/{id}
func (h *FileHandler) RenameFile(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req renameRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	file, err := h.tree.RenameFile(r.Context(), owner, r.PathValue("id"), req.Name)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, FileResponse{File: file})
}

// MoveFile moves a file to another folder
// PATCH /files/{id}/move
func (h *FileHandler) MoveFile(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req moveFileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.FolderID.Present {
		httputil.RespondError(w, http.StatusBadRequest, "folder_id is required (null for root)")
		return
	}

	file, err := h.move.MoveFile(r.Context(), owner, r.PathValue("id"), req.FolderID.Value)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, FileResponse{File: file})
}

// DeleteFile moves a file to trash
// DELETE /files/{id}
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	if err := h.trash.SoftDeleteFile(r.Context(), owner, r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HardDeleteFile permanently removes a trashed file
// DELETE /files/{id}/hard
func (h *FileHandler) HardDeleteFile(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	if err := h.trash.HardDeleteFile(r.Context(), owner, r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Download returns a time-limited download URL
// GET /files/{id}/download
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	url, err := h.tree.DownloadURL(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, DownloadResponse{URL: url})
}
