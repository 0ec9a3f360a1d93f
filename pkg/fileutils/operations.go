package fileutils

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// DuplicateSuffix is appended before the extension when a rename target is
// already taken.
const DuplicateSuffix = "-KOPIE"

const maxDuplicateAttempts = 20

// RenameInPlace renames the file at currentPath to newName within the same
// directory. If the target exists, DuplicateSuffix is appended (repeatedly)
// until a free name is found; duplicate reports that this happened. If the
// file already carries the resolved name, nothing is touched.
func RenameInPlace(currentPath, newName string) (newPath string, duplicate bool, err error) {
	target := filepath.Join(filepath.Dir(currentPath), newName)
	if target == currentPath {
		return currentPath, false, nil
	}

	candidate := target
	for i := 0; ; i++ {
		if candidate == currentPath {
			return currentPath, i > 0, nil
		}
		if !Exists(candidate) {
			break
		}
		if i == maxDuplicateAttempts {
			return currentPath, false, errors.Errorf("no free name for %s", target)
		}
		candidate = withDuplicateSuffix(candidate)
	}

	if err := moveFile(currentPath, candidate); err != nil {
		return currentPath, false, err
	}
	return candidate, candidate != target, nil
}

// ChangeExtension renames path so that it ends in .ext, following the same
// collision rules as RenameInPlace.
func ChangeExtension(path, ext string) (string, bool, error) {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return RenameInPlace(path, stem+"."+strings.TrimPrefix(ext, "."))
}

// Exists reports whether something is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func withDuplicateSuffix(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + DuplicateSuffix + ext
}

// moveFile renames src to dst, falling back to copy and delete across
// filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	if err := copyFile(src, dst); err != nil {
		return errors.WithStack(err)
	}

	if err := os.Remove(src); err != nil {
		os.Remove(dst)
		return errors.WithStack(err)
	}

	return nil
}

// MoveFile exposes moveFile for callers that undo a rename.
func MoveFile(src, dst string) error {
	return moveFile(src, dst)
}

func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return errors.WithStack(err)
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return errors.WithStack(err)
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return errors.WithStack(err)
	}

	sourceInfo, err := sourceFile.Stat()
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(destFile.Chmod(sourceInfo.Mode()))
}
