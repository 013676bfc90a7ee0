// Package publisher uploads a finished merge artifact to durable storage and
// returns its public URL.
//
// Two backends implement Publisher:
//   - Cloudinary uploads through the Cloudinary upload API as a video resource
//   - Local copies into an output directory served by the HTTP static routes
//
// Both write under the caller-supplied public ID with overwrite semantics, so
// publishing the same job twice leaves a single artifact. Failures are
// returned as publish-kind *job.Error values carrying the store's diagnostic.
// Nothing is retried here.
package publisher
