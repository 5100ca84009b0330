// Package webdav adapts a gowebdav client to the upload driver's Remote
// capability and builds the HTTP transport carrying optional client TLS
// material.
package webdav

import (
	"io"
	"io/fs"
	"net/url"
	"os"
	"time"

	"github.com/Lokeren12/action-upload-webdav/internal/errors"
	"github.com/Lokeren12/action-upload-webdav/internal/log"
	"github.com/Lokeren12/action-upload-webdav/internal/upload"

	"github.com/studio-b12/gowebdav"
)

const (
	dirMode  os.FileMode = 0755
	fileMode os.FileMode = 0644
)

// Options configures a Client
type Options struct {
	Address  string
	Username string
	Password string
	TLS      TLSMaterial
	// Timeout bounds every HTTP request; zero keeps the transport default
	Timeout   time.Duration
	UserAgent string
}

// Client talks to one WebDAV endpoint. It is not safe for concurrent use.
type Client struct {
	dav     *gowebdav.Client
	address string
}

// Ensure Client implements the upload Remote capability
var _ upload.Remote = (*Client)(nil)

// NewClient builds a client for opts.Address. No request is sent.
func NewClient(opts Options) (*Client, error) {
	u, err := url.Parse(opts.Address)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.NewConfigError("webdav address must be an absolute http(s) URL", "webdavAddress", errors.InvalidConfig, err)
	}

	tlsCfg, err := BuildTLSConfig(opts.TLS)
	if err != nil {
		return nil, err
	}

	dav := gowebdav.NewClient(opts.Address, opts.Username, opts.Password)
	if tlsCfg != nil {
		log.LogWithFields(
			log.F("client_cert", len(tlsCfg.Certificates) > 0),
			log.F("custom_ca", tlsCfg.RootCAs != nil),
		).Debug("using custom TLS transport")
		dav.SetTransport(NewTransport(tlsCfg))
	}
	if opts.Timeout > 0 {
		dav.SetTimeout(opts.Timeout)
	}
	if opts.UserAgent != "" {
		dav.SetHeader("User-Agent", opts.UserAgent)
	}

	return &Client{dav: dav, address: opts.Address}, nil
}

// Exists reports whether path exists on the server
func (c *Client) Exists(path string) (bool, error) {
	_, err := c.dav.Stat(path)
	if err == nil {
		return true, nil
	}
	if gowebdav.IsErrNotFound(err) || errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, errors.Wrap(err, "PROPFIND "+path)
}

// MkdirAll creates path and its missing parents
func (c *Client) MkdirAll(path string) error {
	return c.dav.MkdirAll(path, dirMode)
}

// Put streams r to path. The call returns after the server answered.
func (c *Client) Put(path string, r io.Reader, size int64) error {
	log.LogWithFields(log.F("address", c.address), log.F("path", path), log.F("size", size)).Debug("PUT")
	return c.dav.WriteStream(path, r, fileMode)
}
