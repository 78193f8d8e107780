package artifact

import "fmt"

// ExtractionError reports that an artifact could not be taken out of a
// successful build: the source path was absent from the image, the local
// file was missing, or the copy itself failed. It is terminal for that job's
// artifact and never escalates to abort sibling jobs.
type ExtractionError struct {
	Job    string
	Source string
	Err    error
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %s for job %s: %v", e.Source, e.Job, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// PublicationError reports that an extracted artifact could not be pushed
// through a publication channel. Like extraction failures it is recorded per
// job and never cancels siblings.
type PublicationError struct {
	Job     string
	Channel string
	Err     error
}

// Error implements the error interface.
func (e *PublicationError) Error() string {
	return fmt.Sprintf("publishing %s artifact for job %s: %v", e.Channel, e.Job, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *PublicationError) Unwrap() error {
	return e.Err
}
