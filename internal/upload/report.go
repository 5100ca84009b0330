package upload

import (
	"fmt"
	"time"

	"github.com/Lokeren12/action-upload-webdav/internal/errors"
	"github.com/Lokeren12/action-upload-webdav/pkg/types"
)

// Report is the ordered per-file outcome of UploadAll
type Report struct {
	Results []types.UploadResult
}

// Attempted returns the number of files the report covers
func (r *Report) Attempted() int {
	return len(r.Results)
}

// Succeeded returns the results of uploaded files
func (r *Report) Succeeded() []types.UploadResult {
	var out []types.UploadResult
	for _, res := range r.Results {
		if res.Uploaded {
			out = append(out, res)
		}
	}
	return out
}

// Failed returns the results of files that were not uploaded
func (r *Report) Failed() []types.UploadResult {
	var out []types.UploadResult
	for _, res := range r.Results {
		if res.Failed() {
			out = append(out, res)
		}
	}
	return out
}

// Bytes returns the total size of the uploaded files
func (r *Report) Bytes() uint64 {
	var total uint64
	for _, res := range r.Succeeded() {
		total += uint64(res.Size)
	}
	return total
}

// Duration returns the time spent across all attempts
func (r *Report) Duration() time.Duration {
	var total time.Duration
	for _, res := range r.Results {
		total += res.Duration
	}
	return total
}

// Err summarizes failed uploads as one error, nil when all succeeded
func (r *Report) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	return errors.NewRemoteError(
		fmt.Sprintf("%d of %d files failed to upload", len(failed), r.Attempted()),
		failed[0].Error,
	)
}
