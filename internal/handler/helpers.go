package handler

import (
	"errors"
	"net/http"

	"cirrus/internal/domain"
	models "cirrus/internal/domain/models/workspace"
	"cirrus/internal/httputil"
	wsService "cirrus/internal/service/workspace"
)

// handleError converts domain errors to {"error": ...} responses
func handleError(w http.ResponseWriter, err error) {
	var httpErr domain.HTTPError

	switch {
	case errors.As(err, &httpErr):
		httputil.RespondError(w, httpErr.StatusCode(), err.Error())
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrParentNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrNameCollision),
		errors.Is(err, domain.ErrCyclicMove),
		errors.Is(err, domain.ErrDestinationTrashed),
		errors.Is(err, domain.ErrNotTrashed),
		errors.Is(err, domain.ErrFolderCreationRace):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// pathID returns the {id} path value, mapping "root" to nil
func pathID(r *http.Request) *string {
	id := r.PathValue("id")
	return wsService.NormalizeID(&id)
}

// requireOwner returns the authenticated owner or writes a 401
func requireOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	owner := httputil.GetOwner(r)
	if owner == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	return owner, true
}

// Response envelopes
type (
	FolderResponse struct {
		Folder *models.Folder `json:"folder"`
	}
	FoldersResponse struct {
		Folders []models.Folder `json:"folders"`
	}
	FileResponse struct {
		File *models.File `json:"file"`
	}
	FilesResponse struct {
		Files []models.File `json:"files"`
	}
	DownloadResponse struct {
		URL string `json:"url"`
	}
)

// renameRequest is the body of PATCH /folders/{id} and PATCH /files/{id}
type renameRequest struct {
	Name string `json:"name"`
}
