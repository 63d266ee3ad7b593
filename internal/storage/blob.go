package storage

import "io"

// BlobStore holds uploaded resource files (PDFs, notes, papers).
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
}
