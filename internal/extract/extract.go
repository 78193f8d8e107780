package extract

import "context"

// ImageSource reads artifacts out of a built image addressed by its opaque
// handle.
type ImageSource interface {
	// CopyOut instantiates the handle as a filesystem-like root and copies
	// the path src from inside it to the local destination dst.
	CopyOut(ctx context.Context, handle, src, dst string) error
	// Save serializes the entire image behind the handle to the single
	// local file dst.
	Save(ctx context.Context, handle, dst string) error
}

// FileSource moves artifacts that are already plain files on the execution
// host.
type FileSource interface {
	// Move relocates the local file src to dst.
	Move(ctx context.Context, src, dst string) error
}
