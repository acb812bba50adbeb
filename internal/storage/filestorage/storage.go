package storage

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"imager/internal/storage"

	"github.com/google/uuid"
)

// FileStorage stores uploaded assets under a media root.
type FileStorage interface {
	Save(ctx context.Context, file *multipart.FileHeader, subPath string) (filePath string, fileSize int64, err error)
	Delete(ctx context.Context, filePath string) error
	ValidateImage(file *multipart.FileHeader) (format string, err error)
	URL(relativePath string) string
	GetFullPath(relativePath string) string
	GetBaseDir() string
}

// LocalFileStorage keeps files on the local filesystem.
type LocalFileStorage struct {
	baseDir string // e.g. "./media"
	baseURL string // e.g. "/media" or "https://cdn.example.com/media"
	maxSize int64
}

func NewLocalFileStorage(baseDir, baseURL string, maxSize int64) (*LocalFileStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &LocalFileStorage{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
		maxSize: maxSize,
	}, nil
}

// Save writes the upload under subPath with a generated name and returns
// the slash-separated path relative to the media root.
func (s *LocalFileStorage) Save(ctx context.Context, file *multipart.FileHeader, subPath string) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	if s.maxSize > 0 && file.Size > s.maxSize {
		return "", 0, storage.ErrFileTooLarge
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	relPath := path.Join(filepath.ToSlash(subPath), name)
	fullPath := s.GetFullPath(relPath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create directories: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return "", 0, fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	var reader io.Reader = src
	if s.maxSize > 0 {
		reader = io.LimitReader(src, s.maxSize+1)
	}

	size, err := io.Copy(dst, reader)
	if err != nil {
		_ = os.Remove(fullPath)
		return "", 0, fmt.Errorf("failed to copy file: %w", err)
	}

	if s.maxSize > 0 && size > s.maxSize {
		_ = os.Remove(fullPath)
		return "", 0, storage.ErrFileTooLarge
	}

	if err := ctx.Err(); err != nil {
		_ = os.Remove(fullPath)
		return "", 0, err
	}

	return relPath, size, nil
}

// Delete removes a file by its media-root relative path.
func (s *LocalFileStorage) Delete(ctx context.Context, filePath string) error {
	err := os.Remove(s.GetFullPath(filePath))
	if errors.Is(err, os.ErrNotExist) {
		return storage.ErrFileNotFound
	}
	return err
}

// ValidateImage checks that the upload decodes as a supported image.
func (s *LocalFileStorage) ValidateImage(file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", storage.ErrInvalidFileType
	}

	if s.maxSize > 0 && file.Size > s.maxSize {
		return "", storage.ErrFileTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	_, format, err := image.DecodeConfig(src)
	if err != nil {
		return "", storage.ErrInvalidFileType
	}

	return format, nil
}

// URL returns the public URL of a stored file.
func (s *LocalFileStorage) URL(relativePath string) string {
	if relativePath == "" {
		return ""
	}
	return s.baseURL + "/" + strings.TrimLeft(relativePath, "/")
}

// GetFullPath returns the on-disk location of a stored file.
func (s *LocalFileStorage) GetFullPath(relativePath string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(relativePath))
}

func (s *LocalFileStorage) GetBaseDir() string {
	return s.baseDir
}
