package filestore

import (
	"io"
	"time"
)

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	// Key is the full object path within the bucket, e.g. "shop/2026-10-15/schema.json".
	Key string `json:"key"`

	// Size in bytes, -1 if unknown.
	Size int64 `json:"size"`

	ContentType  string    `json:"contentType,omitempty"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"lastModified"`

	// IsDir marks a common prefix rather than a stored object.
	IsDir bool `json:"isDir,omitempty"`
}

// Object is a streaming handle to an object's content. Callers must Close it.
type Object interface {
	io.ReadCloser
	Info() *ObjectInfo
}

// ListOptions filters ListObjects.
type ListOptions struct {
	// Prefix restricts results to keys starting with it.
	Prefix string

	// Recursive lists every object under Prefix. Otherwise common prefixes
	// come back as IsDir entries.
	Recursive bool

	// Limit caps the number of results. 0 means no cap.
	Limit int
}

// PutOptions describes an object being written.
type PutOptions struct {
	ContentType string

	// Metadata is stored as user metadata on the object.
	Metadata map[string]string
}
