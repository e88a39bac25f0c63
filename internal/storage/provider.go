// Package storage defines the document store abstraction over the content directory.
package storage

import "github.com/starford/folio/internal/models"

// Provider is the interface for content document operations. Names are plain
// file names (no directories) including the document extension.
type Provider interface {
	// List returns the names of every document carrying the recognized
	// extension, in directory-listing order. A missing directory yields nil.
	List() ([]string, error)
	// Info returns checksum and modification time for one document.
	Info(name string) (models.DocumentInfo, error)
	// Read returns the raw bytes of the document.
	Read(name string) ([]byte, error)
	// Write atomically creates or overwrites the document.
	Write(name string, content []byte) error
	// Delete removes the document.
	Delete(name string) error
	// Ext returns the recognized document extension, e.g. ".mdx".
	Ext() string
}
