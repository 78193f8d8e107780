package publish

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/vk/buildgridgo/internal/ctxlog"
)

// HTTP uploads artifacts with PUT requests, the way a pre-signed object
// store endpoint expects them. The generic channel targets
// <base>/<qualifier>/<name>, the pages channel <base>/<name>.
type HTTP struct {
	BaseURL string
	// Client is shared across uploads to reuse TCP connections. Defaults
	// to http.DefaultClient.
	Client *http.Client
}

// Put implements Store.
func (h *HTTP) Put(ctx context.Context, qualifier, name, path string) error {
	if qualifier == "" {
		return fmt.Errorf("qualifier must not be empty")
	}
	return h.upload(ctx, qualifier+"/"+name, path)
}

// Publish implements PagesStore.
func (h *HTTP) Publish(ctx context.Context, name, path string) error {
	return h.upload(ctx, name, path)
}

// upload PUTs the file at path to the store under key.
func (h *HTTP) upload(ctx context.Context, key, path string) error {
	logger := ctxlog.FromContext(ctx)

	target, err := url.JoinPath(h.BaseURL, key)
	if err != nil {
		return fmt.Errorf("building upload URL for %s: %w", key, err)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening artifact %s: %w", path, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stating artifact %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, file)
	if err != nil {
		return fmt.Errorf("creating upload request: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = stat.Size()

	logger.Info("Uploading artifact.", "key", key, "size", stat.Size(), "contentType", contentType)

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("uploading %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("upload of %s failed with status: %s", key, resp.Status)
	}

	logger.Info("Artifact uploaded.", "key", key, "status", resp.Status)
	return nil
}
