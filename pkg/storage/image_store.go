package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrFileNotFound is returned when a reference points at nothing on disk.
	ErrFileNotFound = errors.New("stored file not found")
	// ErrInvalidReference is returned for empty references or ones escaping the base dir.
	ErrInvalidReference = errors.New("invalid file reference")
)

// ImageStore keeps uploaded lost-ID images in a flat local directory.
// References are bare file names relative to the base dir.
type ImageStore struct {
	baseDir string
}

// NewImageStore ensures the base directory exists and returns a handle.
func NewImageStore(baseDir string) (*ImageStore, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &ImageStore{baseDir: baseDir}, nil
}

// Store writes data under name and returns the reference to persist.
// The write goes through a temp file so a crash never leaves a half-written image.
func (s *ImageStore) Store(name string, data []byte) (string, error) {
	path, err := s.safeJoin(name)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.baseDir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp image: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("close image: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("finalise image: %w", err)
	}
	return name, nil
}

// Open returns a read-only handle for the referenced file.
func (s *ImageStore) Open(ref string) (*os.File, error) {
	path, err := s.safeJoin(ref)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("open image: %w", err)
	}
	return file, nil
}

// Exists reports whether the referenced file is present.
func (s *ImageStore) Exists(ref string) bool {
	path, err := s.safeJoin(ref)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Delete removes the referenced file. A file that is already gone is not an error.
func (s *ImageStore) Delete(ref string) error {
	path, err := s.safeJoin(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}

func (s *ImageStore) safeJoin(ref string) (string, error) {
	if ref == "" || strings.ContainsAny(ref, `/\`) {
		return "", ErrInvalidReference
	}
	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", fmt.Errorf("resolve uploads dir: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(absBase, ref))
	if err != nil {
		return "", fmt.Errorf("resolve image path: %w", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", ErrInvalidReference
	}
	return absPath, nil
}
