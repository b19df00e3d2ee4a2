package port

import "errors"

// ErrDuplicate is returned by repositories when a write violates a uniqueness rule
var ErrDuplicate = errors.New("duplicate record")

// ErrFileTooLarge is returned by FileStorage when content exceeds the upload limit
var ErrFileTooLarge = errors.New("file exceeds maximum upload size")
