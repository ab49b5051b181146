package utils

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// UploadDir is the local badge icon directory, used when R2 is not
// configured. main.go serves it under the /uploads route.
const UploadDir = "uploads"

// EnsureUploadDir creates the local icon directory if it doesn't exist.
func EnsureUploadDir() error {
	return os.MkdirAll(UploadDir, os.ModePerm)
}

// SaveIcon writes an uploaded icon to destPath, creating parent
// directories as needed.
func SaveIcon(fileHeader *multipart.FileHeader, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), os.ModePerm); err != nil {
		return err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, file)
	return err
}

// UploadPath returns the local path for an icon object key.
func UploadPath(key string) string {
	return filepath.Join(UploadDir, key)
}
