// Package upload drives the transfer of resolved local files to a remote
// directory: it ensures the directory exists, then uploads every file one
// at a time, recording a result per file.
package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/Lokeren12/action-upload-webdav/internal/errors"
	"github.com/Lokeren12/action-upload-webdav/internal/log"
	"github.com/Lokeren12/action-upload-webdav/internal/report"
	"github.com/Lokeren12/action-upload-webdav/pkg/types"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
)

// Driver uploads files through a Remote
type Driver struct {
	remote   Remote
	reporter report.Reporter
	logger   *log.Logger
}

// Option configures a Driver
type Option func(*Driver)

// WithLogger sets the logger used for debug output
func WithLogger(l *log.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// New creates a Driver
func New(remote Remote, reporter report.Reporter, opts ...Option) *Driver {
	d := &Driver{
		remote:   remote,
		reporter: reporter,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// EnsureDirectory checks remotePath and creates it, with any missing
// parents, when absent. Any failure is fatal for the run.
func (d *Driver) EnsureDirectory(remotePath string) error {
	exists, err := d.remote.Exists(remotePath)
	if err != nil {
		return errors.NewRemoteError("failed to check remote directory", err).
			WithOperation("exists").
			WithPath(remotePath).
			WithKind(errors.RemoteDirectoryFailed)
	}
	if exists {
		d.logger.With(log.F("remote_path", remotePath)).Debug("remote directory exists")
		return nil
	}

	d.reporter.Info(fmt.Sprintf("📁 Creating remote directory %s", remotePath))
	if err := d.remote.MkdirAll(remotePath); err != nil {
		return errors.NewRemoteError("failed to create remote directory", err).
			WithOperation("mkdir").
			WithPath(remotePath).
			WithKind(errors.RemoteDirectoryFailed)
	}
	return nil
}

// UploadAll uploads every file to remoteDir/<base name>, in order. A
// failed file is reported and recorded; the loop always moves on to the
// next one. Once ctx is done the remaining files are reported as skipped
// and recorded as failed without being attempted.
func (d *Driver) UploadAll(ctx context.Context, localFiles []string, remoteDir string) *Report {
	rep := &Report{Results: make([]types.UploadResult, 0, len(localFiles))}

	for _, file := range localFiles {
		target := RemotePath(remoteDir, file)

		if err := ctx.Err(); err != nil {
			d.reporter.Warning(fmt.Sprintf("⛔ Skipped file '%s': %v", file, err))
			rep.Results = append(rep.Results, types.UploadResult{
				LocalPath:  file,
				RemotePath: target,
				Error:      err,
			})
			continue
		}

		result := d.uploadFile(file, target)
		if result.Error != nil {
			d.logger.WithError(result.Error).Debug("upload failed")
			d.reporter.Info(fmt.Sprintf("error: %v", result.Error))
			d.reporter.Warning(fmt.Sprintf("⛔ Failed to upload file '%s' to '%s'", file, target))
		} else {
			d.reporter.Notice(fmt.Sprintf("🎉 Uploaded %s", target))
		}
		rep.Results = append(rep.Results, result)
	}

	return rep
}

func (d *Driver) uploadFile(file, target string) types.UploadResult {
	result := types.UploadResult{LocalPath: file, RemotePath: target}
	start := time.Now()

	f, err := os.Open(file)
	if err != nil {
		kind := errors.FileAccessDenied
		if os.IsNotExist(err) {
			kind = errors.FileNotFound
		}
		result.Error = errors.NewFileError("cannot open file", file, kind, err)
		result.Duration = time.Since(start)
		return result
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil {
		result.Size = info.Size()
	}

	// mimetype reads the file header, so rewind before streaming
	if mtype, err := mimetype.DetectReader(f); err == nil {
		result.ContentType = mtype.String()
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		result.Error = errors.NewFileError("cannot rewind file", file, errors.FileAccessDenied, err)
		result.Duration = time.Since(start)
		return result
	}

	d.reporter.Info(fmt.Sprintf("📦 Uploading %s (%s) to %s", file, humanize.Bytes(uint64(result.Size)), target))
	d.logger.With(
		log.F("file", file),
		log.F("remote_path", target),
		log.F("content_type", result.ContentType),
	).Debug("starting upload")

	if err := d.remote.Put(target, f, result.Size); err != nil {
		result.Error = errors.NewRemoteError("upload failed", err).
			WithOperation("put").
			WithPath(target)
		result.Duration = time.Since(start)
		return result
	}

	result.Uploaded = true
	result.Duration = time.Since(start)
	return result
}

// RemotePath builds the remote target for a local file: the remote
// directory joined with the file's base name.
func RemotePath(remoteDir, localFile string) string {
	return path.Join(remoteDir, filepath.Base(localFile))
}
