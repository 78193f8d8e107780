// Package artifact decides, per completed job, whether and how a build
// output is extracted and where it is published.
//
// An artifact spec selects exactly one of three extraction strategies
// (copy a file out of the built image, save the whole image, or move a
// runner-local file), modeled as a single enumerated field so an invalid
// multi-strategy spec cannot be represented. Publication always goes through
// the generic channel, qualified by the cell's profile and feature-set
// values; the pages flag additionally publishes through the site channel
// under the bare destination name.
package artifact
