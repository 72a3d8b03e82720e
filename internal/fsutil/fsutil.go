// Package fsutil holds the filesystem primitives used when publishing build artifacts.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Exists reports whether path exists (following symlinks).
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ResetDir removes dir recursively and recreates it empty.
func ResetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}

// Within reports whether path equals parent or lies below it. Both are made absolute
// and cleaned first; symlinks are not resolved.
func Within(parent, path string) bool {
	parentAbs, err := filepath.Abs(parent)
	if err != nil {
		return false
	}
	pathAbs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(parentAbs, pathAbs)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// CopyDir copies the tree rooted at src into dst, preserving file modes.
// Symlinks are recreated as symlinks, never followed. Absolute link targets inside src
// are rewritten relative to their new location so the copy does not depend on src.
func CopyDir(src, dst string) error {
	srcRoot, err := filepath.Abs(src)
	if err != nil {
		return err
	}
	dstRoot, err := filepath.Abs(dst)
	if err != nil {
		return err
	}
	if Within(srcRoot, dstRoot) {
		return fmt.Errorf("cannot copy %s into itself (%s)", srcRoot, dstRoot)
	}
	return copyTree(srcRoot, dstRoot, srcRoot, dstRoot)
}

func copyTree(srcRoot, dstRoot, src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !srcInfo.IsDir() {
		return fmt.Errorf("%s is not a directory", src)
	}

	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		switch {
		case entry.Type()&fs.ModeSymlink != 0:
			if err := copySymlink(srcRoot, dstRoot, srcPath, dstPath); err != nil {
				return err
			}
		case entry.IsDir():
			if err := copyTree(srcRoot, dstRoot, srcPath, dstPath); err != nil {
				return err
			}
		case entry.Type().IsRegular():
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		default:
			// Sockets, devices and pipes have no place in a docs build.
		}
	}

	return nil
}

func copySymlink(srcRoot, dstRoot, src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return err
	}
	if filepath.IsAbs(target) && Within(srcRoot, target) {
		rel, err := filepath.Rel(srcRoot, target)
		if err != nil {
			return err
		}
		if target, err = filepath.Rel(filepath.Dir(dst), filepath.Join(dstRoot, rel)); err != nil {
			return err
		}
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.Symlink(target, dst)
}

// copyFile copies a single file from src to dst
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = srcFile.Close()
	}()

	info, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return err
	}
	if err := dstFile.Close(); err != nil {
		return err
	}
	return os.Chmod(dst, info.Mode().Perm())
}
