package types

import "time"

// UploadResult holds the outcome of an upload attempt for a single file
type UploadResult struct {
	LocalPath   string        `json:"local_path"`
	RemotePath  string        `json:"remote_path"`
	Size        int64         `json:"size"`
	ContentType string        `json:"content_type,omitempty"`
	Uploaded    bool          `json:"uploaded"`
	Duration    time.Duration `json:"duration"`
	Error       error         `json:"error,omitempty"`
}

// Failed reports whether the upload was attempted and did not succeed
func (r UploadResult) Failed() bool {
	return !r.Uploaded
}
