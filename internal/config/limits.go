package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to match common filesystem limits so trees can be
	// downloaded back to disk unchanged.
	MaxFolderNameLength = 255

	// MaxFileNameLength is the maximum length for file names.
	MaxFileNameLength = 255

	// MaxRelativePathLength bounds a relative path inside an ingestion batch.
	MaxRelativePathLength = 1024

	// MaxIngestFiles is the maximum number of files in one upload-tree request.
	MaxIngestFiles = 1000

	// DefaultMaxUploadBytes caps a single upload request body (1 GiB).
	DefaultMaxUploadBytes = 1 << 30
)
