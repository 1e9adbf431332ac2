package routes

import (
	"net/http"
	"os"
	"path"
	"strings"
)

// fileOnlyFS serves regular files by exact name. Directories and dot-prefixed
// names (including in-flight .upload-* temp files) report not found.
type fileOnlyFS struct {
	fs http.FileSystem
}

func (f fileOnlyFS) Open(name string) (http.File, error) {
	for _, segment := range strings.Split(path.Clean("/"+name), "/") {
		if strings.HasPrefix(segment, ".") {
			return nil, os.ErrNotExist
		}
	}
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}

func uploadsHandler(dir, prefix string) http.Handler {
	return http.StripPrefix(prefix+"/", http.FileServer(fileOnlyFS{fs: http.Dir(dir)}))
}
