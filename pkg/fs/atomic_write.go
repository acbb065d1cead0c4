package fs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
)

// ErrAtomicWriteDirSync indicates the parent directory could not be synced after rename.
//
// When returned, the new file is in place but durability is not guaranteed.
// Callers can detect this with errors.Is(err, ErrAtomicWriteDirSync).
var ErrAtomicWriteDirSync = errors.New("dir sync")

// cacheFilePerm is the mode applied to every file an AtomicWriter produces.
// Every file this repository writes atomically (the result cache) is
// regenerable, non-secret data, so one fixed mode covers it; nothing here
// has needed a second one.
const cacheFilePerm os.FileMode = 0o644

// AtomicWriter writes files atomically using rename: a temp file in the
// same directory, synced, renamed over the destination, then the parent
// directory itself synced so the rename survives a crash.
type AtomicWriter struct {
	fs FS
}

// NewAtomicWriter creates an AtomicWriter that uses the given filesystem.
// Panics if fs is nil.
func NewAtomicWriter(fs FS) *AtomicWriter {
	if fs == nil {
		panic("fs is nil")
	}

	return &AtomicWriter{fs: fs}
}

// Write writes all of r to path atomically and durably, at cacheFilePerm.
//
// If the directory sync step fails, the returned error satisfies
// errors.Is(err, ErrAtomicWriteDirSync); the rename itself has already
// landed by that point.
func (w *AtomicWriter) Write(path string, r io.Reader) error {
	if r == nil {
		panic("reader is nil")
	}

	if path == "" {
		return errors.New("path is empty")
	}

	dir, base := filepath.Split(path)
	if base == "" || base == string(os.PathSeparator) || base == "." {
		return fmt.Errorf("path is invalid: %q", path)
	}

	if dir == "" {
		dir = "."
	}

	dir = filepath.Clean(dir)

	tmpFile, tmpPath, err := createAtomicTempFile(w.fs, dir, base, cacheFilePerm)
	if err != nil {
		return err
	}

	cleanup := func() error {
		closeErr := closeTmpFile(tmpPath, tmpFile)
		removeErr := removeTempFile(w.fs, tmpPath)

		return errors.Join(closeErr, removeErr)
	}

	chmodErr := tmpFile.Chmod(cacheFilePerm)
	if chmodErr != nil {
		return errors.Join(
			fmt.Errorf("chmod temp file %q: %w", tmpPath, chmodErr),
			cleanup(),
		)
	}

	writeErr := writeAndSyncTempFile(tmpFile, tmpPath, r)
	if writeErr != nil {
		return errors.Join(
			writeErr,
			cleanup(),
		)
	}

	renameErr := w.fs.Rename(tmpPath, path)
	if renameErr != nil {
		return errors.Join(
			fmt.Errorf("rename: %w", renameErr),
			cleanup(),
		)
	}

	cleanupErr := cleanup()

	if err := fsyncDir(w.fs, dir); err != nil {
		return errors.Join(err, cleanupErr)
	}

	// Don't surface cleanup errors if all main operations worked.
	return nil
}

func writeAndSyncTempFile(file File, path string, r io.Reader) error {
	_, copyErr := io.Copy(file, r)
	if copyErr != nil {
		return fmt.Errorf("write temp file %q: %w", path, copyErr)
	}

	err := file.Sync()
	if err != nil {
		return fmt.Errorf("sync temp file %q: %w", path, err)
	}

	return nil
}

const atomicWriteMaxAttempts = 10000

var atomicWriteCounter atomic.Uint64

func createAtomicTempFile(fs FS, dir, base string, perm os.FileMode) (File, string, error) {
	for range atomicWriteMaxAttempts {
		seq := atomicWriteCounter.Add(1)
		path := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d", base, seq))

		file, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
		if err == nil {
			return file, path, nil
		}

		if os.IsExist(err) {
			continue
		}

		return nil, "", fmt.Errorf("create temp file: %w", err)
	}

	return nil, "", fmt.Errorf("exhausted temp file attempts in %q", dir)
}

func fsyncDir(fs FS, dirPath string) error {
	dirFd, err := fs.Open(dirPath)
	if err != nil {
		return errors.Join(ErrAtomicWriteDirSync, fmt.Errorf("open dir %q: %w", dirPath, err))
	}

	syncErr := dirFd.Sync()
	if syncErr == nil {
		return closeDir(dirPath, dirFd)
	}

	return errors.Join(
		ErrAtomicWriteDirSync,
		fmt.Errorf("%q: %w", dirPath, syncErr),
		closeDir(dirPath, dirFd),
	)
}

func closeDir(dir string, file File) error {
	err := file.Close()
	if err == nil {
		return nil
	}

	return fmt.Errorf("close dir %q: %w", dir, err)
}

func closeTmpFile(path string, file File) error {
	err := file.Close()
	if err == nil {
		return nil
	}

	return fmt.Errorf("close temp file %q: %w", path, err)
}

func removeTempFile(fs FS, path string) error {
	err := fs.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove temp file %q: %w", path, err)
	}

	return nil
}
