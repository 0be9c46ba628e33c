package snapshot

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/hupe1980/chunkvec"
	"github.com/hupe1980/chunkvec/blobstore"
)

// CurrentName is the base name of the pointer blob written by Commit.
const CurrentName = "CURRENT"

const bufferSize = 1 << 20

// Save encodes v into the blob name.
func Save[T any](ctx context.Context, store blobstore.BlobStore, name string, v *chunkvec.Vector[T], optFns ...Option) (err error) {
	o := applyOptions(optFns)
	var n int64
	defer func() { o.logger.LogSnapshot(ctx, name, v.Len(), n, err) }()

	w, err := store.Create(ctx, name)
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(w, bufferSize)
	n, err = Encode(ctx, bw, v, optFns...)
	if err == nil {
		err = bw.Flush()
	}
	if err == nil {
		err = w.Sync()
	}
	if err != nil {
		discard(ctx, store, name, w)
		return err
	}
	return w.Close()
}

// discard drops a partially written blob.
func discard(ctx context.Context, store blobstore.BlobStore, name string, w blobstore.WritableBlob) {
	if a, ok := w.(blobstore.Aborter); ok {
		_ = a.Abort()
		return
	}
	_ = w.Close()
	_ = store.Delete(ctx, name)
}

// Load decodes the blob name.
func Load[T any](ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (v *chunkvec.Vector[T], err error) {
	o := applyOptions(optFns)
	defer func() {
		elements := 0
		if v != nil {
			elements = v.Len()
		}
		o.logger.LogRestore(ctx, name, elements, err)
	}()

	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	rc, err := blob.ReadRange(ctx, 0, blob.Size())
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return Decode[T](ctx, bufio.NewReaderSize(rc, bufferSize), optFns...)
}

// Info returns the header of the blob name without decoding pages.
func Info(ctx context.Context, store blobstore.BlobStore, name string) (Header, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return Header{}, err
	}
	defer blob.Close()

	rc, err := blob.ReadRange(ctx, 0, blob.Size())
	if err != nil {
		return Header{}, err
	}
	defer rc.Close()

	return readHeader(bufio.NewReader(rc))
}

// Commit saves v as the next numbered snapshot below prefix and then points
// prefix/CURRENT at it. It returns the new snapshot's name.
//
// The pointer update is the commit point: a crash before it leaves the
// previous snapshot current. Stores with a conditional CURRENT update (like
// s3.DDBCommitStore) reject concurrent committers.
func Commit[T any](ctx context.Context, store blobstore.BlobStore, prefix string, v *chunkvec.Vector[T], optFns ...Option) (name string, err error) {
	o := applyOptions(optFns)
	current := path.Join(prefix, CurrentName)
	defer func() { o.logger.LogCommit(ctx, name, err) }()

	seqs, err := List(ctx, store, prefix)
	if err != nil {
		return "", err
	}
	var next uint64 = 1
	if len(seqs) > 0 {
		next = seqs[len(seqs)-1] + 1
	}
	name = SnapshotName(prefix, next)

	if err := Save(ctx, store, name, v, optFns...); err != nil {
		return name, err
	}
	if err := store.Put(ctx, current, []byte(name)); err != nil {
		return name, fmt.Errorf("snapshot: update %s: %w", current, err)
	}
	return name, nil
}

// Current returns the snapshot name prefix/CURRENT points at.
func Current(ctx context.Context, store blobstore.BlobStore, prefix string) (string, error) {
	data, err := blobstore.ReadFile(ctx, store, path.Join(prefix, CurrentName))
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return "", ErrNoCurrent
		}
		return "", err
	}
	name := strings.TrimSpace(string(data))
	if name == "" {
		return "", fmt.Errorf("%w: empty %s", ErrCorrupt, CurrentName)
	}
	return name, nil
}

// LoadCurrent loads the snapshot prefix/CURRENT points at and returns it with
// its name. It returns ErrNoCurrent if nothing was committed.
func LoadCurrent[T any](ctx context.Context, store blobstore.BlobStore, prefix string, optFns ...Option) (*chunkvec.Vector[T], string, error) {
	name, err := Current(ctx, store, prefix)
	if err != nil {
		return nil, "", err
	}
	v, err := Load[T](ctx, store, name, optFns...)
	if err != nil {
		return nil, name, err
	}
	return v, name, nil
}

// SnapshotName returns the name Commit uses for sequence number seq.
func SnapshotName(prefix string, seq uint64) string {
	return path.Join(prefix, fmt.Sprintf("%012d%s", seq, Extension))
}

// List returns the sequence numbers of committed snapshots below prefix in
// ascending order. Other blobs are ignored.
func List(ctx context.Context, store blobstore.BlobStore, prefix string) ([]uint64, error) {
	dir := ""
	if prefix != "" {
		dir = strings.TrimSuffix(prefix, "/") + "/"
	}
	names, err := store.List(ctx, dir)
	if err != nil {
		return nil, err
	}

	var seqs []uint64
	for _, name := range names {
		base, ok := strings.CutPrefix(name, dir)
		if !ok || strings.Contains(base, "/") {
			continue
		}
		digits, ok := strings.CutSuffix(base, Extension)
		if !ok {
			continue
		}
		seq, err := strconv.ParseUint(digits, 10, 64)
		if err != nil {
			continue
		}
		seqs = append(seqs, seq)
	}
	slices.Sort(seqs)
	return seqs, nil
}

// Prune deletes committed snapshots below prefix except the newest keep and
// the current one. It returns the names it deleted.
func Prune(ctx context.Context, store blobstore.BlobStore, prefix string, keep int) ([]string, error) {
	seqs, err := List(ctx, store, prefix)
	if err != nil {
		return nil, err
	}
	current, err := Current(ctx, store, prefix)
	if err != nil && !errors.Is(err, ErrNoCurrent) {
		return nil, err
	}

	keep = max(keep, 0)
	var deleted []string
	for _, seq := range seqs[:max(len(seqs)-keep, 0)] {
		name := SnapshotName(prefix, seq)
		if name == current {
			continue
		}
		if err := store.Delete(ctx, name); err != nil {
			return deleted, err
		}
		deleted = append(deleted, name)
	}
	return deleted, nil
}
