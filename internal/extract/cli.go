package extract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/vk/buildgridgo/internal/ctxlog"
)

// CLI implements ImageSource over the container command-line tool. A build
// handle is an image reference known to the local container store.
type CLI struct {
	// Binary is the container tool to invoke. Defaults to "docker".
	Binary string
}

// binary returns the configured tool name.
func (c *CLI) binary() string {
	if c.Binary == "" {
		return "docker"
	}
	return c.Binary
}

// CopyOut creates a stopped container from the image, copies src out of its
// filesystem to dst, and removes the container again.
func (c *CLI) CopyOut(ctx context.Context, handle, src, dst string) error {
	logger := ctxlog.FromContext(ctx).With("image", handle)

	id, err := c.run(ctx, "create", handle)
	if err != nil {
		return fmt.Errorf("creating container from %s: %w", handle, err)
	}
	id = strings.TrimSpace(id)
	defer func() {
		// Removal failure leaves a stopped container behind but does not
		// affect the extracted artifact.
		if _, rmErr := c.run(context.WithoutCancel(ctx), "rm", id); rmErr != nil {
			logger.Warn("Failed to remove extraction container.", "container", id, "error", rmErr)
		}
	}()

	logger.Debug("Copying path out of image.", "src", src, "dst", dst)
	if _, err := c.run(ctx, "cp", id+":"+src, dst); err != nil {
		return fmt.Errorf("copying %s out of %s: %w", src, handle, err)
	}
	return nil
}

// Save serializes the whole image to a single local archive file.
func (c *CLI) Save(ctx context.Context, handle, dst string) error {
	ctxlog.FromContext(ctx).Debug("Saving image to file.", "image", handle, "dst", dst)
	if _, err := c.run(ctx, "save", "-o", dst, handle); err != nil {
		return fmt.Errorf("saving image %s: %w", handle, err)
	}
	return nil
}

// run invokes the container tool and returns its stdout. Stderr is folded
// into the error on a non-zero exit.
func (c *CLI) run(ctx context.Context, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.binary(), args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("%s %s: %w", c.binary(), args[0], err)
		}
		return "", fmt.Errorf("%s %s: %w (%s)", c.binary(), args[0], err, msg)
	}
	return stdout.String(), nil
}
