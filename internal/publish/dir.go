package publish

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"
	"github.com/vk/buildgridgo/internal/ctxlog"
)

// Dir lays artifacts out under a local root directory: the generic channel
// writes <root>/<qualifier>/<name>, the pages channel writes <root>/<name>.
// Every published file gets a <name>.digest sidecar carrying its canonical
// content digest.
//
// Writes go to a temporary name in the destination directory and are renamed
// into place, so a concurrent reader never observes a partially written
// artifact at its final name.
type Dir struct {
	Root string
}

// Put implements Store.
func (d *Dir) Put(ctx context.Context, qualifier, name, path string) error {
	if qualifier == "" {
		return fmt.Errorf("qualifier must not be empty")
	}
	return d.place(ctx, filepath.Join(d.Root, qualifier), name, path)
}

// Publish implements PagesStore. The destination is overwritten.
func (d *Dir) Publish(ctx context.Context, name, path string) error {
	return d.place(ctx, d.Root, name, path)
}

// place copies the staged file into dir/name with a digest sidecar.
func (d *Dir) place(ctx context.Context, dir, name, path string) error {
	logger := ctxlog.FromContext(ctx)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating store directory %s: %w", dir, err)
	}

	dgst, err := copyWithDigest(path, filepath.Join(dir, name))
	if err != nil {
		return err
	}

	sidecar := filepath.Join(dir, name+".digest")
	if err := os.WriteFile(sidecar, []byte(dgst.String()+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing digest sidecar: %w", err)
	}

	logger.Debug("Artifact stored.", "path", filepath.Join(dir, name), "digest", dgst.String())
	return nil
}

// copyWithDigest streams src into dst (via a temporary name) while computing
// the canonical digest of the content.
func copyWithDigest(src, dst string) (digest.Digest, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("opening staged artifact %s: %w", src, err)
	}
	defer in.Close()

	tmp := dst + ".partial"
	out, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", tmp, err)
	}

	digester := digest.Canonical.Digester()
	if _, err := io.Copy(io.MultiWriter(out, digester.Hash()), in); err != nil {
		out.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("copying %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("closing %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("renaming %s into place: %w", tmp, err)
	}
	return digester.Digest(), nil
}
