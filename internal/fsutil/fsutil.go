// Package fsutil holds the filesystem primitives the transformation engine
// needs: mode-preserving file copies, recursive tree copies, directory merges
// and moves. Everything goes through an afero.Fs so the engine can run against
// the OS or an in-memory filesystem.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const defaultDirMode os.FileMode = 0755

// Exists checks if a file or directory exists at the given path.
func Exists(fs afero.Fs, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	return err == nil && info.IsDir()
}

// CopyFile copies src to dst and gives dst the permission bits of src.
// Parent directories of dst are created as needed and an existing dst file
// is truncated.
func CopyFile(fs afero.Fs, src, dst string) error {
	info, err := fs.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("source is a directory: %s", src)
	}

	srcFile, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer func() { _ = srcFile.Close() }()

	if err := fs.MkdirAll(filepath.Dir(dst), defaultDirMode); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	mode := info.Mode().Perm()
	dstFile, err := fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return fmt.Errorf("failed to copy file content: %w", err)
	}
	if err := dstFile.Close(); err != nil {
		return fmt.Errorf("failed to close destination file: %w", err)
	}

	// OpenFile is subject to the umask and does not touch an existing file's mode.
	if err := fs.Chmod(dst, mode); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	return nil
}

// ReplaceFile deletes path and writes content in its place with the given
// permission bits.
func ReplaceFile(fs afero.Fs, path string, content []byte, mode os.FileMode) error {
	if err := fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	if err := afero.WriteFile(fs, path, content, mode.Perm()); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := fs.Chmod(path, mode.Perm()); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	return nil
}

// CopyTree copies src (file or directory) to dst recursively, preserving
// permission bits. dst must not be inside src.
func CopyTree(fs afero.Fs, src, dst string) error {
	info, err := fs.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}
	if !info.IsDir() {
		return CopyFile(fs, src, dst)
	}

	if err := fs.MkdirAll(dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dst, err)
	}
	if err := fs.Chmod(dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to set directory mode %s: %w", dst, err)
	}

	entries, err := afero.ReadDir(fs, src)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", src, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if err := CopyTree(fs, filepath.Join(src, name), filepath.Join(dst, name)); err != nil {
			return err
		}
	}
	return nil
}

// MergeDir copies the contents of src into dst, creating dst if needed.
// Entries already in dst that src does not have are kept; files present in
// both are overwritten by src. A directory in dst where src has a file (or
// the other way around) is replaced.
func MergeDir(fs afero.Fs, src, dst string) error {
	info, err := fs.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("merge source is not a directory: %s", src)
	}

	if dstInfo, err := fs.Stat(dst); err == nil && !dstInfo.IsDir() {
		if err := fs.Remove(dst); err != nil {
			return fmt.Errorf("failed to remove %s: %w", dst, err)
		}
	}
	if err := fs.MkdirAll(dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dst, err)
	}

	entries, err := afero.ReadDir(fs, src)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", src, err)
	}
	for _, entry := range entries {
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := MergeDir(fs, from, to); err != nil {
				return err
			}
			continue
		}

		if IsDir(fs, to) {
			if err := fs.RemoveAll(to); err != nil {
				return fmt.Errorf("failed to remove %s: %w", to, err)
			}
		}
		if err := CopyFile(fs, from, to); err != nil {
			return err
		}
	}
	return nil
}

// Move relocates src to dst. Directories are merged into an existing dst so
// children already written there survive; files are copied then the source
// is removed.
func Move(fs afero.Fs, src, dst string) error {
	if filepath.Clean(src) == filepath.Clean(dst) {
		return nil
	}

	info, err := fs.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}

	if info.IsDir() {
		if err := MergeDir(fs, src, dst); err != nil {
			return err
		}
	} else {
		if IsDir(fs, dst) {
			if err := fs.RemoveAll(dst); err != nil {
				return fmt.Errorf("failed to remove %s: %w", dst, err)
			}
		}
		if err := CopyFile(fs, src, dst); err != nil {
			return err
		}
	}

	if err := fs.RemoveAll(src); err != nil {
		return fmt.Errorf("failed to remove %s: %w", src, err)
	}
	return nil
}

// IsWithin reports whether path equals root or lies below it.
func IsWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !startsWithParent(rel))
}

func startsWithParent(rel string) bool {
	prefix := ".." + string(filepath.Separator)
	return len(rel) >= len(prefix) && rel[:len(prefix)] == prefix
}
