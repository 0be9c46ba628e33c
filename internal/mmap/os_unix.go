//go:build unix

package mmap

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

var madvise = map[AccessPattern]int{
	AccessDefault:    unix.MADV_NORMAL,
	AccessSequential: unix.MADV_SEQUENTIAL,
	AccessRandom:     unix.MADV_RANDOM,
	AccessWillNeed:   unix.MADV_WILLNEED,
	AccessDontNeed:   unix.MADV_DONTNEED,
}

// osMap maps f read-only and shared. Snapshot blobs are never written in
// place, so a shared mapping always sees the final bytes.
func osMap(f *os.File, size int) ([]byte, func([]byte) error, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED) //nolint:gosec // fd fits int
	if err != nil {
		return nil, nil, err
	}
	return data, unix.Munmap, nil
}

func osAdvise(data []byte, pattern AccessPattern) error {
	advice, ok := madvise[pattern]
	if !ok {
		advice = unix.MADV_NORMAL
	}
	// EINVAL only means the kernel rejected the hint.
	if err := unix.Madvise(data, advice); err != nil && !errors.Is(err, unix.EINVAL) {
		return err
	}
	return nil
}
