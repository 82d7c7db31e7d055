package util

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

var (
	AllowedUploadExtensions = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
		".pdf": true, ".txt": true, ".md": true,
	}
	AllowedImageExtensions = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	}
	AllowedUploadMimeTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "application/pdf", "text/plain"}
	AllowedImageMimeTypes  = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
)

// ValidateMimeType sniffs the first 512 bytes of reader.
func ValidateMimeType(reader io.Reader, allowedTypes []string) (string, error) {
	buffer := make([]byte, 512)
	n, err := reader.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	mimeType := http.DetectContentType(buffer[:n])

	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) {
			return mimeType, nil
		}
	}

	return mimeType, errors.New("invalid file type: " + mimeType)
}

func FileExtension(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

func IsImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}
