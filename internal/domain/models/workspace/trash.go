package workspace

// Listing is a flat view of folders and files, used for browsing and trash views.
type Listing struct {
	Folders []Folder `json:"folders"`
	Files   []File   `json:"files"`
}
