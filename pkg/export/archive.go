package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"time"
)

// File is one entry of a zip bundle.
type File struct {
	Name string
	Body []byte
}

// Bundle packs files into a single zip archive. Names must be unique.
func Bundle(files []File, modified time.Time) ([]byte, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("zip requires at least one file")
	}
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		if _, dup := seen[f.Name]; dup {
			return nil, fmt.Errorf("duplicate zip entry %q", f.Name)
		}
		seen[f.Name] = struct{}{}

		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: zip.Deflate, Modified: modified})
		if err != nil {
			return nil, fmt.Errorf("create zip entry %s: %w", f.Name, err)
		}
		if _, err := w.Write(f.Body); err != nil {
			return nil, fmt.Errorf("write zip entry %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}
