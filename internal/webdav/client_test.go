package webdav

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/Lokeren12/action-upload-webdav/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/webdav"
)

const (
	testUser     = "ci"
	testPassword = "s3cret"
)

// newDAVServer starts an in-memory WebDAV server guarded by basic auth
func newDAVServer(t *testing.T, tls bool) (*httptest.Server, webdav.FileSystem) {
	t.Helper()
	fsys := webdav.NewMemFS()
	handler := &webdav.Handler{
		FileSystem: fsys,
		LockSystem: webdav.NewMemLS(),
	}
	guarded := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != testUser || pass != testPassword {
			w.Header().Set("WWW-Authenticate", `Basic realm="test"`)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})

	var srv *httptest.Server
	if tls {
		srv = httptest.NewTLSServer(guarded)
	} else {
		srv = httptest.NewServer(guarded)
	}
	t.Cleanup(srv.Close)
	return srv, fsys
}

func readRemote(t *testing.T, fsys webdav.FileSystem, name string) string {
	t.Helper()
	f, err := fsys.OpenFile(context.Background(), name, os.O_RDONLY, 0)
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	return string(data)
}

func TestClientDirectoryLifecycle(t *testing.T) {
	srv, fsys := newDAVServer(t, false)
	c, err := NewClient(Options{Address: srv.URL, Username: testUser, Password: testPassword})
	require.NoError(t, err)

	exists, err := c.Exists("/uploads/nightly")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, c.MkdirAll("/uploads/nightly"))

	exists, err = c.Exists("/uploads/nightly")
	require.NoError(t, err)
	assert.True(t, exists)

	info, err := fsys.Stat(context.Background(), "/uploads")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestClientPut(t *testing.T) {
	srv, fsys := newDAVServer(t, false)
	c, err := NewClient(Options{Address: srv.URL, Username: testUser, Password: testPassword, UserAgent: "webdav-upload/test"})
	require.NoError(t, err)

	require.NoError(t, c.MkdirAll("/uploads"))
	content := "binary content"
	require.NoError(t, c.Put("/uploads/app.bin", strings.NewReader(content), int64(len(content))))

	assert.Equal(t, content, readRemote(t, fsys, "/uploads/app.bin"))
}

func TestClientWrongCredentials(t *testing.T) {
	srv, _ := newDAVServer(t, false)
	c, err := NewClient(Options{Address: srv.URL, Username: testUser, Password: "wrong"})
	require.NoError(t, err)

	exists, err := c.Exists("/uploads")
	require.Error(t, err, "an auth failure must not look like a missing directory")
	assert.Contains(t, err.Error(), "PROPFIND /uploads")
	assert.False(t, exists)
}

func TestClientInvalidAddress(t *testing.T) {
	for _, addr := range []string{"", "ftp://example.com", "not a url", "/relative/path"} {
		_, err := NewClient(Options{Address: addr})
		require.Error(t, err, addr)
		assert.True(t, errors.IsInvalidConfig(err), addr)
	}
}

func TestClientTLS(t *testing.T) {
	srv, _ := newDAVServer(t, true)
	caPEM := certPEM(srv.Certificate().Raw)

	t.Run("trusted through configured CA", func(t *testing.T) {
		c, err := NewClient(Options{
			Address:  srv.URL,
			Username: testUser,
			Password: testPassword,
			TLS:      TLSMaterial{CA: caPEM},
		})
		require.NoError(t, err)
		require.NoError(t, c.MkdirAll("/secure"))

		exists, err := c.Exists("/secure")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("unknown authority fails the existence check", func(t *testing.T) {
		c, err := NewClient(Options{Address: srv.URL, Username: testUser, Password: testPassword})
		require.NoError(t, err)

		_, err = c.Exists("/secure")
		assert.Error(t, err)
	})

	t.Run("insecure skip verify", func(t *testing.T) {
		c, err := NewClient(Options{
			Address:  srv.URL,
			Username: testUser,
			Password: testPassword,
			TLS:      TLSMaterial{InsecureSkipVerify: true},
		})
		require.NoError(t, err)

		_, err = c.Exists("/")
		assert.NoError(t, err)
	})
}
