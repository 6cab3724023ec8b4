// Package storage writes uploaded attachment files to the local uploads
// directory. The entities only keep the resulting name/path pair; serving
// the bytes back is the static file route's job.
package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/tracklite-dev/tracklite/internal/models"
)

var ErrFileTypeNotAllowed = errors.New("file type not allowed")

var allowedMimeTypes = map[string]bool{
	"image/png":       true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"application/pdf": true,
}

var uploadsDir string

// Init creates the uploads directory if needed and points the store at it.
func Init(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	uploadsDir = dir
	return nil
}

// Dir returns the directory the store writes into.
func Dir() string {
	return uploadsDir
}

// Save writes one uploaded file under the uploads directory using a
// timestamp-prefixed copy of the original name, and returns the record to
// append to the owning entity's attachment history.
func Save(file *multipart.FileHeader) (models.Attachment, error) {
	if !allowedMimeTypes[file.Header.Get("Content-Type")] {
		return models.Attachment{}, ErrFileTypeNotAllowed
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(file.Filename))
	path := filepath.Join(uploadsDir, name)

	src, err := file.Open()

	if err != nil {
		return models.Attachment{}, err
	}
	defer src.Close()

	dst, err := os.Create(path)

	if err != nil {
		return models.Attachment{}, err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return models.Attachment{}, err
	}

	return models.Attachment{FileName: name, FilePath: filepath.ToSlash(path)}, nil
}
