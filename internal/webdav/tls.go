package webdav

import (
	"crypto/tls"
	"crypto/x509"
	"net/http"
	"os"
	"strings"

	"github.com/Lokeren12/action-upload-webdav/internal/errors"
)

// TLSMaterial holds optional client TLS settings. Each PEM value is either
// the PEM text itself or a path to a PEM file.
type TLSMaterial struct {
	Cert               string
	Key                string
	CA                 string
	InsecureSkipVerify bool
}

// Empty reports whether no TLS customization was requested
func (m TLSMaterial) Empty() bool {
	return m.Cert == "" && m.Key == "" && m.CA == "" && !m.InsecureSkipVerify
}

// BuildTLSConfig turns TLS material into a tls.Config. It returns nil
// when the material is empty so the default transport is used unchanged.
func BuildTLSConfig(m TLSMaterial) (*tls.Config, error) {
	if m.Empty() {
		return nil, nil
	}

	cfg := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: m.InsecureSkipVerify, //nolint:gosec // opt-in for self-signed test servers
	}

	if m.Cert != "" || m.Key != "" {
		if m.Cert == "" || m.Key == "" {
			return nil, errors.NewConfigError("client certificate and key must be set together", "webdavCert", errors.InvalidTLSMaterial, nil)
		}
		certPEM, err := loadPEM(m.Cert)
		if err != nil {
			return nil, errors.NewConfigError("cannot read client certificate", "webdavCert", errors.InvalidTLSMaterial, err)
		}
		keyPEM, err := loadPEM(m.Key)
		if err != nil {
			return nil, errors.NewConfigError("cannot read client key", "webdavKey", errors.InvalidTLSMaterial, err)
		}
		pair, err := tls.X509KeyPair(certPEM, keyPEM)
		if err != nil {
			return nil, errors.NewConfigError("failed to load client cert/key", "webdavCert", errors.InvalidTLSMaterial, err)
		}
		cfg.Certificates = []tls.Certificate{pair}
	}

	if m.CA != "" {
		caPEM, err := loadPEM(m.CA)
		if err != nil {
			return nil, errors.NewConfigError("cannot read CA certificate", "webdavCa", errors.InvalidTLSMaterial, err)
		}
		pool := x509.NewCertPool()
		if ok := pool.AppendCertsFromPEM(caPEM); !ok {
			return nil, errors.NewConfigError("failed to add CA certificate to pool", "webdavCa", errors.InvalidTLSMaterial, nil)
		}
		cfg.RootCAs = pool
	}

	return cfg, nil
}

// NewTransport returns a copy of the default HTTP transport using tlsCfg.
// A nil tlsCfg yields a plain copy.
func NewTransport(tlsCfg *tls.Config) *http.Transport {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if tlsCfg != nil {
		tr.TLSClientConfig = tlsCfg
	}
	return tr
}

// loadPEM returns value itself when it holds PEM text, otherwise the
// content of the file it names.
func loadPEM(value string) ([]byte, error) {
	if strings.Contains(value, "-----BEGIN") {
		return []byte(value), nil
	}
	return os.ReadFile(value)
}
