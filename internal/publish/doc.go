// Package publish defines the two publication channels an extracted artifact
// can flow through: the generic store addressed by (qualifier, name), and
// the site store addressed by name alone, where each publish overwrites the
// previous content.
//
// Two backends are provided for each channel: a local directory layout and
// an HTTP PUT uploader.
package publish
