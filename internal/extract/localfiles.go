package extract

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vk/buildgridgo/internal/ctxlog"
)

// LocalFiles implements FileSource for artifacts the build left directly on
// the execution host's filesystem.
type LocalFiles struct{}

// Move relocates src to dst. A plain rename is attempted first; when src and
// dst live on different filesystems the file is copied and the source
// removed.
func (LocalFiles) Move(ctx context.Context, src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("source file %s: %w", src, err)
	}

	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	ctxlog.FromContext(ctx).Debug("Rename failed, falling back to copy.", "src", src, "dst", dst)

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", dst, err)
	}

	return os.Remove(src)
}
