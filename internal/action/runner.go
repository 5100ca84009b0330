// Package action runs one upload step: it resolves the configured patterns,
// decides whether unmatched patterns abort the run, prepares the remote
// directory and uploads every resolved file.
package action

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Lokeren12/action-upload-webdav/internal/config"
	"github.com/Lokeren12/action-upload-webdav/internal/errors"
	"github.com/Lokeren12/action-upload-webdav/internal/log"
	"github.com/Lokeren12/action-upload-webdav/internal/match"
	"github.com/Lokeren12/action-upload-webdav/internal/report"
	"github.com/Lokeren12/action-upload-webdav/internal/upload"
	"github.com/Lokeren12/action-upload-webdav/internal/webdav"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// UserAgent is sent with every WebDAV request
const UserAgent = "webdav-upload"

// PatternMatcher resolves glob patterns to local files
type PatternMatcher interface {
	UnmatchedPatterns(patterns []string) ([]string, error)
	FilePaths(patterns []string) ([]string, error)
}

var _ PatternMatcher = (*match.Matcher)(nil)

// RemoteFactory builds the remote for a run. It is only called once the
// pattern checks passed.
type RemoteFactory func(cfg *config.Config) (upload.Remote, error)

// Runner executes upload runs
type Runner struct {
	matcher   PatternMatcher
	newRemote RemoteFactory
	reporter  report.Reporter
	logger    *log.Logger
}

// Option configures a Runner
type Option func(*Runner)

// WithMatcher replaces the filesystem matcher
func WithMatcher(m PatternMatcher) Option {
	return func(r *Runner) { r.matcher = m }
}

// WithRemoteFactory replaces the WebDAV remote factory
func WithRemoteFactory(f RemoteFactory) Option {
	return func(r *Runner) { r.newRemote = f }
}

// WithLogger sets the logger used for run diagnostics
func WithLogger(l *log.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// NewRunner creates a Runner reporting through reporter
func NewRunner(reporter report.Reporter, opts ...Option) *Runner {
	r := &Runner{
		matcher:   match.New(),
		newRemote: NewWebDAVRemote,
		reporter:  reporter,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewWebDAVRemote connects the run configuration to a WebDAV client
func NewWebDAVRemote(cfg *config.Config) (upload.Remote, error) {
	log.LogWithFields(log.F("address", cfg.WebDAVAddress), log.F("tls", cfg.HasTLS())).Debug("creating WebDAV client")
	return webdav.NewClient(webdav.Options{
		Address:  cfg.WebDAVAddress,
		Username: cfg.WebDAVUsername,
		Password: cfg.WebDAVPassword,
		TLS: webdav.TLSMaterial{
			Cert:               cfg.WebDAVCert,
			Key:                cfg.WebDAVKey,
			CA:                 cfg.WebDAVCA,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		},
		Timeout:   cfg.Timeout,
		UserAgent: UserAgent,
	})
}

// Run performs one upload run. The returned error is fatal for the step;
// per-file failures only show up in the report unless FailOnUploadError
// is set. The report is nil when the run stopped before uploading.
func (r *Runner) Run(ctx context.Context, cfg *config.Config) (*upload.Report, error) {
	logger := r.logger.With(log.F("run_id", uuid.NewString()))
	if cfg.WebDAVPassword != "" {
		r.reporter.Mask(cfg.WebDAVPassword)
	}
	logger.With(log.F("patterns", len(cfg.Files)), log.F("upload_path", cfg.WebDAVUploadPath)).Debug("starting run")

	unmatched, err := r.matcher.UnmatchedPatterns(cfg.Files)
	if err != nil {
		return nil, err
	}
	for _, pattern := range unmatched {
		r.reporter.Notice(fmt.Sprintf("🤔 Pattern '%s' does not match any files.", pattern))
	}
	if len(unmatched) > 0 && cfg.FailOnUnmatchedFiles {
		return nil, errors.NewPatternError("⛔ There were unmatched files", "", errors.UnmatchedPattern, nil)
	}

	files, err := r.matcher.FilePaths(cfg.Files)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		r.reporter.Notice(fmt.Sprintf("🤔 %s not include valid file.", strings.Join(cfg.Files, ",")))
	}
	logger.Debugf("resolved %d file(s)", len(files))

	remote, err := r.newRemote(cfg)
	if err != nil {
		return nil, err
	}

	driver := upload.New(remote, r.reporter, upload.WithLogger(logger))
	if err := driver.EnsureDirectory(cfg.WebDAVUploadPath); err != nil {
		return nil, err
	}

	rep := driver.UploadAll(ctx, files, cfg.WebDAVUploadPath)
	r.reporter.Info(fmt.Sprintf("uploaded %d/%d files (%s in %s)",
		len(rep.Succeeded()), rep.Attempted(), humanize.Bytes(rep.Bytes()), rep.Duration().Round(time.Millisecond)))

	if err := ctx.Err(); err != nil {
		return rep, errors.Wrapf(err, "run interrupted after %d of %d files", len(rep.Succeeded()), rep.Attempted())
	}
	if cfg.FailOnUploadError {
		if err := rep.Err(); err != nil {
			return rep, err
		}
	}
	return rep, nil
}
