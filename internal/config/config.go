package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Lokeren12/action-upload-webdav/internal/errors"
	"github.com/Lokeren12/action-upload-webdav/internal/log"

	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the environment variable holding a config file path
const ConfigFileEnv = "WEBDAV_UPLOAD_CONFIG"

// Config represents the upload run configuration.
// It is built once at startup and not mutated once the run begins.
type Config struct {
	Files                []string      `yaml:"files"`                // Glob patterns, in order
	FailOnUnmatchedFiles bool          `yaml:"failOnUnmatchedFiles"` // Abort when a pattern matches nothing
	WebDAVAddress        string        `yaml:"webdavAddress"`        // Absolute http(s) URL of the server
	WebDAVUsername       string        `yaml:"webdavUsername"`
	WebDAVPassword       string        `yaml:"webdavPassword"`
	WebDAVUploadPath     string        `yaml:"webdavUploadPath"` // Remote directory receiving the files
	WebDAVCert           string        `yaml:"webdavCert"`       // Client certificate, PEM text or file path
	WebDAVKey            string        `yaml:"webdavKey"`        // Client key, PEM text or file path
	WebDAVCA             string        `yaml:"webdavCa"`         // CA certificate, PEM text or file path
	FailOnUploadError    bool          `yaml:"failOnUploadError"`
	Timeout              time.Duration `yaml:"timeout"` // Per-request timeout, 0 keeps the transport default
	InsecureSkipVerify   bool          `yaml:"insecureSkipVerify"`
	Logging              struct {
		Level  string `yaml:"level"`  // debug, info, warn or error
		Format string `yaml:"format"` // text or json
	} `yaml:"logging"`
}

// envVars lists the environment variables read for each option, in
// increasing priority. INPUT_* names are what the Actions runner exports
// for step inputs.
var envVars = map[string][]string{
	"files":                {"WEBDAV_FILES", "INPUT_FILES"},
	"failOnUnmatchedFiles": {"WEBDAV_FAIL_ON_UNMATCHED_FILES", "INPUT_FAILONUNMATCHEDFILES", "INPUT_FAIL_ON_UNMATCHED_FILES"},
	"webdavAddress":        {"WEBDAV_ADDRESS", "INPUT_WEBDAVADDRESS", "INPUT_WEBDAV_ADDRESS"},
	"webdavUsername":       {"WEBDAV_USERNAME", "INPUT_WEBDAVUSERNAME", "INPUT_WEBDAV_USERNAME"},
	"webdavPassword":       {"WEBDAV_PASSWORD", "INPUT_WEBDAVPASSWORD", "INPUT_WEBDAV_PASSWORD"},
	"webdavUploadPath":     {"WEBDAV_UPLOAD_PATH", "INPUT_WEBDAVUPLOADPATH", "INPUT_WEBDAV_UPLOAD_PATH"},
	"webdavCert":           {"WEBDAV_CERT", "INPUT_WEBDAVCERT", "INPUT_WEBDAV_CERT"},
	"webdavKey":            {"WEBDAV_KEY", "INPUT_WEBDAVKEY", "INPUT_WEBDAV_KEY"},
	"webdavCa":             {"WEBDAV_CA", "INPUT_WEBDAVCA", "INPUT_WEBDAV_CA"},
	"failOnUploadError":    {"WEBDAV_FAIL_ON_UPLOAD_ERROR", "INPUT_FAILONUPLOADERROR", "INPUT_FAIL_ON_UPLOAD_ERROR"},
	"timeout":              {"WEBDAV_TIMEOUT", "INPUT_TIMEOUT"},
	"insecureSkipVerify":   {"WEBDAV_INSECURE_SKIP_VERIFY", "INPUT_INSECURESKIPVERIFY", "INPUT_INSECURE_SKIP_VERIFY"},
	"logging.level":        {"WEBDAV_LOG_LEVEL", "INPUT_LOGLEVEL", "INPUT_LOG_LEVEL"},
	"logging.format":       {"WEBDAV_LOG_FORMAT", "INPUT_LOGFORMAT", "INPUT_LOG_FORMAT"},
}

// Load builds the configuration from defaults, the optional config file
// and the environment. Flags are applied by the caller before Validate.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	if path == "" {
		path, _ = lookup(ConfigFileEnv)
	}

	cfg := defaultConfig()
	if path != "" {
		var err error
		if cfg, err = LoadConfigFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadFromEnv(lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration.
func LoadConfigFile(path string) (*Config, error) {
	// Start with default configuration
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debugf("config file %s not found, using defaults", path)
			return cfg, nil
		}
		return nil, errors.NewConfigError("error reading config file", path, errors.InvalidConfig, err)
	}

	// Unmarshal into a temporary config to preserve defaults for unset fields
	var tempCfg Config
	if err := yaml.Unmarshal(data, &tempCfg); err != nil {
		return nil, errors.NewConfigError("error parsing config file", path, errors.InvalidConfig, err)
	}

	// Merge the loaded config with defaults
	if len(tempCfg.Files) > 0 {
		cfg.Files = tempCfg.Files
	}
	cfg.FailOnUnmatchedFiles = tempCfg.FailOnUnmatchedFiles
	cfg.FailOnUploadError = tempCfg.FailOnUploadError
	cfg.InsecureSkipVerify = tempCfg.InsecureSkipVerify
	mergeString(&cfg.WebDAVAddress, tempCfg.WebDAVAddress)
	mergeString(&cfg.WebDAVUsername, tempCfg.WebDAVUsername)
	mergeString(&cfg.WebDAVPassword, tempCfg.WebDAVPassword)
	mergeString(&cfg.WebDAVUploadPath, tempCfg.WebDAVUploadPath)
	mergeString(&cfg.WebDAVCert, tempCfg.WebDAVCert)
	mergeString(&cfg.WebDAVKey, tempCfg.WebDAVKey)
	mergeString(&cfg.WebDAVCA, tempCfg.WebDAVCA)
	if tempCfg.Timeout > 0 {
		cfg.Timeout = tempCfg.Timeout
	}
	mergeString(&cfg.Logging.Level, tempCfg.Logging.Level)
	mergeString(&cfg.Logging.Format, tempCfg.Logging.Format)

	return cfg, nil
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// loadFromEnv overrides fields with the environment variables that are set
func (c *Config) loadFromEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		var (
			value string
			found bool
		)
		for _, name := range envVars[key] {
			if v, ok := lookup(name); ok && v != "" {
				value, found = v, true
			}
		}
		return value, found
	}

	if v, ok := get("files"); ok {
		c.Files = SplitPatterns(v)
	}
	for key, dst := range map[string]*string{
		"webdavAddress":    &c.WebDAVAddress,
		"webdavUsername":   &c.WebDAVUsername,
		"webdavPassword":   &c.WebDAVPassword,
		"webdavUploadPath": &c.WebDAVUploadPath,
		"webdavCert":       &c.WebDAVCert,
		"webdavKey":        &c.WebDAVKey,
		"webdavCa":         &c.WebDAVCA,
		"logging.level":    &c.Logging.Level,
		"logging.format":   &c.Logging.Format,
	} {
		if v, ok := get(key); ok {
			*dst = v
		}
	}
	for key, dst := range map[string]*bool{
		"failOnUnmatchedFiles": &c.FailOnUnmatchedFiles,
		"failOnUploadError":    &c.FailOnUploadError,
		"insecureSkipVerify":   &c.InsecureSkipVerify,
	} {
		if v, ok := get(key); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return errors.NewConfigError(fmt.Sprintf("invalid boolean %q", v), key, errors.InvalidConfig, err)
			}
			*dst = b
		}
	}
	if v, ok := get("timeout"); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return errors.NewConfigError(fmt.Sprintf("invalid duration %q", v), "timeout", errors.InvalidConfig, err)
		}
		c.Timeout = d
	}
	return nil
}

// SplitPatterns splits a newline separated pattern list, dropping blank
// lines. Commas are kept since they appear inside {a,b} alternatives.
func SplitPatterns(value string) []string {
	var patterns []string
	for _, line := range strings.Split(value, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			patterns = append(patterns, line)
		}
	}
	return patterns
}

// defaultConfig returns the default configuration.
func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Files = []string{}
	cfg.FailOnUnmatchedFiles = false
	cfg.FailOnUploadError = false // Per-file failures are warnings by default
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"
	return cfg
}

// New creates a new configuration instance with default values.
func New() *Config {
	return defaultConfig()
}

// Validate checks if the configuration is complete and consistent.
// All problems are collected into one error.
func (c *Config) Validate() error {
	if c == nil {
		return errors.NewConfigError("nil config", "", errors.InvalidConfig, nil)
	}

	var (
		problems  []string
		firstKey  string
		firstKind errors.ErrorKind
	)
	fail := func(param string, kind errors.ErrorKind, msg string) {
		if len(problems) == 0 {
			firstKey, firstKind = param, kind
		}
		problems = append(problems, msg)
	}

	if len(c.Files) == 0 {
		fail("files", errors.ConfigNotSet, "files is required")
	}
	for i, p := range c.Files {
		if strings.TrimSpace(p) == "" {
			fail("files", errors.InvalidConfig, fmt.Sprintf("files[%d] is blank", i))
		}
	}
	if c.WebDAVAddress == "" {
		fail("webdavAddress", errors.ConfigNotSet, "webdavAddress is required")
	} else if !validAddress(c.WebDAVAddress) {
		fail("webdavAddress", errors.InvalidConfig, fmt.Sprintf("webdavAddress %q must be an absolute http(s) URL", c.WebDAVAddress))
	}
	if c.WebDAVUsername == "" {
		fail("webdavUsername", errors.ConfigNotSet, "webdavUsername is required")
	}
	if c.WebDAVPassword == "" {
		fail("webdavPassword", errors.ConfigNotSet, "webdavPassword is required")
	}
	if c.WebDAVUploadPath == "" {
		fail("webdavUploadPath", errors.ConfigNotSet, "webdavUploadPath is required")
	}
	if (c.WebDAVCert == "") != (c.WebDAVKey == "") {
		fail("webdavCert", errors.InvalidTLSMaterial, "webdavCert and webdavKey must be set together")
	}
	if c.Timeout < 0 {
		fail("timeout", errors.InvalidConfig, "timeout must be >= 0")
	}
	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		fail("logging.level", errors.InvalidConfig, fmt.Sprintf("invalid logging level %q", c.Logging.Level))
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		fail("logging.format", errors.InvalidConfig, fmt.Sprintf("invalid logging format %q", c.Logging.Format))
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.NewConfigError("invalid configuration: "+strings.Join(problems, "; "), firstKey, firstKind, nil)
}

// HasTLS reports whether any TLS option was given
func (c *Config) HasTLS() bool {
	return c.WebDAVCert != "" || c.WebDAVKey != "" || c.WebDAVCA != "" || c.InsecureSkipVerify
}

// Redacted returns a copy safe to log, with secrets and key material hidden
func (c Config) Redacted() Config {
	hide := func(s string) string {
		if s == "" {
			return ""
		}
		return "***"
	}
	c.Files = append([]string(nil), c.Files...)
	c.WebDAVPassword = hide(c.WebDAVPassword)
	c.WebDAVKey = hide(c.WebDAVKey)
	return c
}

func validAddress(addr string) bool {
	u, err := url.Parse(addr)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// String renders the redacted configuration as YAML
func (c Config) String() string {
	data, err := yaml.Marshal(c.Redacted())
	if err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return string(data)
}
