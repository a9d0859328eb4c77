package cli

import (
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"

	wsSvc "cirrus/internal/domain/services/workspace"
)

// CollectFiles lists the regular files under root as ingest entries. Paths
// are slash separated and start with root's own name, so uploading "photos"
// recreates a "photos" folder at the destination.
func CollectFiles(root string) ([]wsSvc.IngestFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	top := filepath.Base(abs)
	if top == string(filepath.Separator) || top == "." {
		return nil, fmt.Errorf("%s has no folder name to upload under", root)
	}
	var files []wsSvc.IngestFile

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}

		localPath := p
		files = append(files, wsSvc.IngestFile{
			RelativePath: path.Join(top, filepath.ToSlash(rel)),
			Size:         info.Size(),
			ContentType:  mime.TypeByExtension(filepath.Ext(p)),
			Open: func() (io.ReadCloser, error) {
				return os.Open(localPath)
			},
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}
