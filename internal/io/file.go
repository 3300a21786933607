package ioutils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// ErrExists is returned when a destination file already exists.
var ErrExists = errors.New("destination already exists")

// Move moves src to dst, creating the parent directories of dst.
//
// A plain rename is tried first. When src and dst live on different
// devices the file is copied and the source removed afterwards. An
// existing dst is only replaced when overwrite is true.
//
// Example:
//
//	err := Move(ctx, "/in/01.mp3", "/music/Queen/01.mp3", false)
func Move(ctx context.Context, src, dst string, overwrite bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkDestination(dst, overwrite); err != nil {
		return err
	}
	if err := EnsureDir(filepath.Dir(dst)); err != nil {
		return err
	}

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}

	if err := CopyFile(ctx, src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// Copy copies src to dst, creating the parent directories of dst. An
// existing dst is only replaced when overwrite is true.
func Copy(ctx context.Context, src, dst string, overwrite bool) error {
	if err := checkDestination(dst, overwrite); err != nil {
		return err
	}
	if err := EnsureDir(filepath.Dir(dst)); err != nil {
		return err
	}
	return CopyFile(ctx, src, dst)
}

func checkDestination(dst string, overwrite bool) error {
	if overwrite {
		return nil
	}
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("%s: %w", dst, ErrExists)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// CopyFile copies a file from source to destination.
//
// The destination file is created with the source's permission bits if it
// doesn't exist, or truncated if it does. The source file must exist and
// be readable.
func CopyFile(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	info, err := sourceFile.Stat()
	if err != nil {
		return err
	}

	destFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		destFile.Close()
		return err
	}
	return destFile.Close()
}

// CopyTree recursively copies the directory src to dst, even if it has
// contents. Files that already exist below dst cause ErrExists.
func CopyTree(ctx context.Context, src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			return EnsureDir(target)
		case d.Type().IsRegular():
			return Copy(ctx, path, target, false)
		default:
			// Symlinks and devices are not part of a media library.
			return nil
		}
	})
}

// RemoveTree recursively deletes the directory, even if it has contents.
// Removing a path that does not exist is not an error.
func RemoveTree(path string) error {
	return os.RemoveAll(path)
}

// TreeSize returns the total size in bytes of the regular files below path.
func TreeSize(path string) (int64, error) {
	var size int64
	err := filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		size += info.Size()
		return nil
	})
	return size, err
}

// Attributes describes path as a string of flags:
//
//	E exists, F regular file, D directory, R readable, W writable,
//	X executable, H hidden, L symbolic link
//
// A path that does not exist yields "".
//
// Example:
//
//	Attributes("/music/song.mp3") // "EFRW"
func Attributes(path string) string {
	linfo, err := os.Lstat(path)
	if err != nil {
		return ""
	}
	info, err := os.Stat(path)
	if err != nil {
		// Dangling symlink.
		info = linfo
	}

	var b strings.Builder
	b.WriteString("E")
	if info.Mode().IsRegular() {
		b.WriteString("F")
	}
	if info.IsDir() {
		b.WriteString("D")
	}
	if readable(path, info) {
		b.WriteString("R")
	}
	if writable(path, info) {
		b.WriteString("W")
	}
	if info.Mode().Perm()&0o111 != 0 {
		b.WriteString("X")
	}
	if strings.HasPrefix(filepath.Base(path), ".") {
		b.WriteString("H")
	}
	if linfo.Mode()&fs.ModeSymlink != 0 {
		b.WriteString("L")
	}
	return b.String()
}

func readable(path string, info fs.FileInfo) bool {
	if info.IsDir() {
		_, err := os.ReadDir(path)
		return err == nil
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

func writable(path string, info fs.FileInfo) bool {
	if info.IsDir() {
		return info.Mode().Perm()&0o222 != 0
	}
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// PruneEmptyDirs removes directories below root (root included) that hold
// no regular files, deepest first. It returns the removed directories.
func PruneEmptyDirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var removed []string
	for i := len(dirs) - 1; i >= 0; i-- {
		dir := dirs[i]
		size, err := TreeSize(dir)
		if err != nil {
			return removed, err
		}
		if size > 0 || hasFiles(dir) {
			continue
		}
		if err := RemoveTree(dir); err != nil {
			return removed, err
		}
		removed = append(removed, dir)
	}
	return removed, nil
}

// hasFiles reports whether dir contains any non-directory entry, including
// empty files.
func hasFiles(dir string) bool {
	found := false
	filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable content counts as content.
			found = true
			return fs.SkipAll
		}
		if !d.IsDir() {
			found = true
			return fs.SkipAll
		}
		return nil
	})
	return found
}
