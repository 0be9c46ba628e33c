// Package mmap maps snapshot files read-only so blob reads avoid a copy
// through kernel buffers.
//
//	m, err := mmap.Open("snapshots/000001.cvec")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	n, err := m.ReadAt(buf, off)
//
// Unix systems use mmap(2) and madvise(2). Elsewhere the file is read into
// memory and Advise is a no-op.
//
// A Mapping is safe for concurrent reads. Close is idempotent; slices from
// Bytes must not be used after it.
package mmap
