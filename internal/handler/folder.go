package handler

import (
	"log/slog"
	"net/http"

	wsSvc "cirrus/internal/domain/services/workspace"
	"cirrus/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	tree   wsSvc.TreeService
	move   wsSvc.MoveService
	trash  wsSvc.TrashService
	logger *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(tree wsSvc.TreeService, move wsSvc.MoveService, trash wsSvc.TrashService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		tree:   tree,
		move:   move,
		trash:  trash,
		logger: logger,
	}
}

// moveFolderRequest is the body of PATCH /folders/{id}/move.
// parent_id must be present; null moves to root.
type moveFolderRequest struct {
	ParentID httputil.OptionalString `json:"parent_id"`
}

// ListFolders lists live child folders
// GET /folders?parent_id=
func (h *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	folders, err := h.tree.ListFolders(r.Context(), owner, httputil.OptionalID(r, "parent_id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, FoldersResponse{Folders: folders})
}

// GetFolder retrieves a visible folder
// GET /folders/{id}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	folder, err := h.tree.GetFolder(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, FolderResponse{Folder: folder})
}

// ListFiles lists live files in a folder
// GET /folders/{id|root}/files
func (h *FolderHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	files, err := h.tree.ListFiles(r.Context(), owner, pathID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, FilesResponse{Files: files})
}

// CreateFolder creates a folder
// POST /folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req wsSvc.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Owner = owner

	folder, err := h.tree.CreateFolder(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, FolderResponse{Folder: folder})
}

// RenameFolder renames a folder
// PATCH /folders/{id}
func (h *FolderHandler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req renameRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	folder, err := h.tree.RenameFolder(r.Context(), owner, r.PathValue("id"), req.Name)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, FolderResponse{Folder: folder})
}

// MoveFolder reparents a folder
// PATCH /folders/{id}/move
func (h *FolderHandler) MoveFolder(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req moveFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.ParentID.Present {
		httputil.RespondError(w, http.StatusBadRequest, "parent_id is required (null for root)")
		return
	}

	folder, err := h.move.MoveFolder(r.Context(), owner, r.PathValue("id"), req.ParentID.Value)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, FolderResponse{Folder: folder})
}

// DeleteFolder moves a folder to trash
// DELETE /folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	if err := h.trash.SoftDeleteFolder(r.Context(), owner, r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HardDeleteFolder permanently removes a trashed folder and its subtree
// DELETE /folders/{id}/hard
func (h *FolderHandler) HardDeleteFolder(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	if err := h.trash.HardDeleteFolder(r.Context(), owner, r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
