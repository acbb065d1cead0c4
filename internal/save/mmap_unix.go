//go:build !windows

package save

import (
	"os"

	"golang.org/x/sys/unix"
)

// tryMmap maps path read-only for large-file decode, mirroring the
// teacher's mmap-first strategy for read-only binary blobs
// (cache_binary.go's LoadBinaryCache). It returns ok=false on any failure
// so the caller falls back to a plain read — mmap is an optimization, not
// a correctness requirement.
func tryMmap(path string) (data []byte, ok bool) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, false
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil || info.Size() == 0 {
		return nil, false
	}

	mapped, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, false
	}

	// Copy out of the mapping so the caller doesn't need to track an
	// unmap lifetime; save blobs are capped at 16 MiB, so
	// this copy is cheap relative to the syscall savings on cold reads.
	out := make([]byte, len(mapped))
	copy(out, mapped)

	_ = unix.Munmap(mapped)

	return out, true
}
