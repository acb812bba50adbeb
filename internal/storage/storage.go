package storage

import "errors"

var (
	ErrUserExists    = errors.New("user already exists")
	ErrUserNotFound  = errors.New("user not found")
	ErrPhotoNotFound = errors.New("photo not found")
	ErrAlbumNotFound = errors.New("album not found")
	ErrNoSuchKey     = errors.New("no such key")
)

var (
	ErrFileTooLarge    = errors.New("file size exceeds limit")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileNotFound    = errors.New("file not found")
)
