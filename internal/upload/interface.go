package upload

import (
	"context"
	"io"
)

// Remote is the file-transfer capability the driver needs from a server.
// Implementations are used by one goroutine at a time.
type Remote interface {
	// Exists reports whether path exists on the server. A missing path is
	// not an error.
	Exists(path string) (bool, error)

	// MkdirAll creates path and any missing parents
	MkdirAll(path string) error

	// Put streams r to path and returns once the server has answered
	Put(path string, r io.Reader, size int64) error
}

// Uploader defines the upload operations of a run.
// This allows for dependency injection in tests.
type Uploader interface {
	// EnsureDirectory makes sure remotePath exists, creating it recursively
	EnsureDirectory(remotePath string) error

	// UploadAll uploads each local file into remoteDir, isolating failures
	UploadAll(ctx context.Context, localFiles []string, remoteDir string) *Report
}

// Ensure Driver implements the Uploader interface
var _ Uploader = (*Driver)(nil)
