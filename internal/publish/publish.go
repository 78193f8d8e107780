package publish

import "context"

// Store is the generic artifact channel. Artifacts from different matrix
// cells for the same target are kept apart by the qualifier.
type Store interface {
	Put(ctx context.Context, qualifier, name, path string) error
}

// PagesStore is the site-oriented channel. Only one "latest" site artifact
// per name is meaningful, so publishing overwrites any previous content.
type PagesStore interface {
	Publish(ctx context.Context, name, path string) error
}
