// Package storage defines the Storage interface and common types for the
// image blob backends.
//
// New backends are added by implementing the Storage interface and registering
// with the factory via an init() function in the backend's own package:
//
//	func init() {
//	    storage.Register("mybackend", func(cfg *config.Config) (Storage, error) {
//	        return NewMyBackend(cfg)
//	    })
//	}
//
// The router package imports each backend with a blank import to trigger
// init(). Adding a new backend requires no changes to the factory, only a
// blank import where the router is built.
package storage

import (
	"context"
	"io"
)

// Storage is the interface every image backend implements. Objects are
// publicly readable once uploaded; the returned URL is embedded verbatim in
// recipe documents served to anonymous clients.
type Storage interface {
	// Upload stores an object under the given name and returns its public
	// descriptor. An existing object with the same name is overwritten.
	Upload(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (*Object, error)

	// Open retrieves an object for reading. The caller closes the reader.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, name string) error

	// Exists reports whether an object is present under the given name.
	Exists(ctx context.Context, name string) (bool, error)
}

// Object describes a stored image blob.
type Object struct {
	// Name is the backend object name (key within the bucket or directory)
	Name string

	// URL is the public address clients fetch the image from
	URL string

	// ContentType is the MIME type recorded at upload time
	ContentType string

	// Size is the object size in bytes
	Size int64
}
