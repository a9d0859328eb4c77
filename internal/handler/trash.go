package handler

import (
	"log/slog"
	"net/http"

	wsSvc "cirrus/internal/domain/services/workspace"
	"cirrus/internal/httputil"
)

// TrashHandler handles trash browsing and restore requests
type TrashHandler struct {
	trash  wsSvc.TrashService
	logger *slog.Logger
}

// NewTrashHandler creates a new trash handler
func NewTrashHandler(trash wsSvc.TrashService, logger *slog.Logger) *TrashHandler {
	return &TrashHandler{
		trash:  trash,
		logger: logger,
	}
}

// ListTrash lists the topmost trashed folders and files
// GET /trash
func (h *TrashHandler) ListTrash(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	listing, err := h.trash.ListTrash(r.Context(), owner)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, listing)
}

// TrashContents lists the children of a folder inside a trashed subtree
// GET /trash/folders/{id}
func (h *TrashHandler) TrashContents(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	listing, err := h.trash.TrashContents(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, listing)
}

// RestoreFolder takes a folder out of trash
// POST /restore/folder/{id}
func (h *TrashHandler) RestoreFolder(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	folder, err := h.trash.RestoreFolder(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, FolderResponse{Folder: folder})
}

// RestoreFile takes a file out of trash
// POST /restore/file/{id}
func (h *TrashHandler) RestoreFile(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	file, err := h.trash.RestoreFile(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, FileResponse{File: file})
}
