package handler

import (
	"net/http"
)

// RegisterRoutes mounts the workspace API on mux. Every route expects an
// authenticated owner in the request context.
func RegisterRoutes(mux *http.ServeMux, folders *FolderHandler, files *FileHandler, trash *TrashHandler) {
	// Folder routes
	mux.HandleFunc("GET /folders", folders.ListFolders)
	mux.HandleFunc("POST /folders", folders.CreateFolder)
	mux.HandleFunc("GET /folders/{id}", folders.GetFolder)
	mux.HandleFunc("GET /folders/{id}/files", folders.ListFiles)
	mux.HandleFunc("PATCH /folders/{id}", folders.RenameFolder)
	mux.HandleFunc("PATCH /folders/{id}/move", folders.MoveFolder)
	mux.HandleFunc("DELETE /folders/{id}", folders.DeleteFolder)
	mux.HandleFunc("DELETE /folders/{id}/hard", folders.HardDeleteFolder)

	// File routes
	mux.HandleFunc("POST /files/upload", files.Upload)
	mux.HandleFunc("POST /files/upload-tree", files.UploadTree)
	mux.HandleFunc("PATCH /files/{id}", files.RenameFile)
	mux.HandleFunc("PATCH /files/{id}/move", files.MoveFile)
	mux.HandleFunc("DELETE /files/{id}", files.DeleteFile)
	mux.HandleFunc("DELETE /files/{id}/hard", files.HardDeleteFile)
	mux.HandleFunc("GET /files/{id}/download", files.Download)

	// Trash routes
	mux.HandleFunc("GET /trash", trash.ListTrash)
	mux.HandleFunc("GET /trash/folders/{id}", trash.TrashContents)
	mux.HandleFunc("POST /restore/folder/{id}", trash.RestoreFolder)
	mux.HandleFunc("POST /restore/file/{id}", trash.RestoreFile)
}
