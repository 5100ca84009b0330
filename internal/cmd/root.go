package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Lokeren12/action-upload-webdav/internal/action"
	"github.com/Lokeren12/action-upload-webdav/internal/config"
	"github.com/Lokeren12/action-upload-webdav/internal/errors"
	"github.com/Lokeren12/action-upload-webdav/internal/log"
	"github.com/Lokeren12/action-upload-webdav/internal/match"
	"github.com/Lokeren12/action-upload-webdav/internal/report"

	"github.com/spf13/cobra"
)

var version = "dev"

// flagValues holds the command line overrides
type flagValues struct {
	cfgFile              string
	workDir              string
	files                []string
	failOnUnmatchedFiles bool
	failOnUploadError    bool
	timeout              time.Duration
	insecureSkipVerify   bool
	logLevel             string
	logFormat            string
	debug                bool
}

// NewRootCmd creates the root command. Runner options are passed through
// to every run, which lets tests swap the remote.
func NewRootCmd(runnerOpts ...action.Option) *cobra.Command {
	var fv flagValues

	rootCmd := &cobra.Command{
		Use:   "webdav-upload",
		Short: "Upload files matching glob patterns to a WebDAV server",
		Long: `webdav-upload resolves file glob patterns and uploads every matched file
to a directory on a WebDAV server, creating the directory when needed.

Options come from a YAML config file, the environment (INPUT_* as set by
GitHub Actions, or WEBDAV_*) and flags, with flags taking precedence.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rep := report.New(cmd.OutOrStdout())

			cfg, err := loadConfig(cmd, &fv)
			if err == nil {
				err = cfg.Validate()
			}
			if err != nil {
				return fail(rep, err)
			}

			configureLogging(cmd, cfg, fv.debug)
			// Rebuild so the log-backed reporter picks up the configured logger
			rep = report.New(cmd.OutOrStdout())
			log.LogWithFields(log.F("version", version)).Debugf("configuration:\n%s", cfg)

			opts := append([]action.Option{action.WithLogger(log.Default())}, runnerOpts...)
			if fv.workDir != "" {
				opts = append(opts, action.WithMatcher(match.New(match.WithWorkDir(fv.workDir))))
			}

			if _, err := action.NewRunner(rep, opts...).Run(cmd.Context(), cfg); err != nil {
				return fail(rep, err)
			}
			return nil
		},
	}

	flags := rootCmd.Flags()
	rootCmd.PersistentFlags().StringVar(&fv.cfgFile, "config", "", "config file (default is $"+config.ConfigFileEnv+")")
	rootCmd.PersistentFlags().StringVar(&fv.workDir, "work-dir", "", "resolve relative patterns against this directory")
	rootCmd.PersistentFlags().StringArrayVarP(&fv.files, "files", "f", nil, "glob pattern of files to upload (repeatable)")
	flags.BoolVar(&fv.failOnUnmatchedFiles, "fail-on-unmatched-files", false, "fail when a pattern matches no file")
	flags.String("address", "", "WebDAV server URL")
	flags.StringP("username", "u", "", "WebDAV username")
	flags.StringP("password", "p", "", "WebDAV password")
	flags.String("upload-path", "", "remote directory receiving the files")
	flags.String("cert", "", "client certificate (PEM text or file)")
	flags.String("key", "", "client key (PEM text or file)")
	flags.String("ca", "", "CA certificate (PEM text or file)")
	flags.BoolVar(&fv.failOnUploadError, "fail-on-upload-error", false, "fail when any file could not be uploaded")
	flags.DurationVar(&fv.timeout, "timeout", 0, "timeout of each WebDAV request (0 = none)")
	flags.BoolVar(&fv.insecureSkipVerify, "insecure-skip-verify", false, "do not verify the server certificate")
	rootCmd.PersistentFlags().StringVar(&fv.logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&fv.logFormat, "log-format", "", "log format: text or json")
	rootCmd.PersistentFlags().BoolVar(&fv.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(newResolveCmd(&fv))

	return rootCmd
}

// loadConfig layers flags that were set on top of file and environment
func loadConfig(cmd *cobra.Command, fv *flagValues) (*config.Config, error) {
	cfg, err := config.Load(fv.cfgFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("files") {
		cfg.Files = fv.files
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = fv.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = fv.logFormat
	}
	if cmd.Flags().Lookup("address") == nil {
		// Subcommands only share the persistent flags
		return cfg, nil
	}

	for name, dst := range map[string]*string{
		"address":     &cfg.WebDAVAddress,
		"username":    &cfg.WebDAVUsername,
		"password":    &cfg.WebDAVPassword,
		"upload-path": &cfg.WebDAVUploadPath,
		"cert":        &cfg.WebDAVCert,
		"key":         &cfg.WebDAVKey,
		"ca":          &cfg.WebDAVCA,
	} {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	if flags.Changed("fail-on-unmatched-files") {
		cfg.FailOnUnmatchedFiles = fv.failOnUnmatchedFiles
	}
	if flags.Changed("fail-on-upload-error") {
		cfg.FailOnUploadError = fv.failOnUploadError
	}
	if flags.Changed("insecure-skip-verify") {
		cfg.InsecureSkipVerify = fv.insecureSkipVerify
	}
	if flags.Changed("timeout") {
		cfg.Timeout = fv.timeout
	}
	return cfg, nil
}

func configureLogging(cmd *cobra.Command, cfg *config.Config, debug bool) {
	opts := []log.Option{log.WithOutput(cmd.ErrOrStderr()), log.WithLevel(cfg.Logging.Level)}
	if cfg.Logging.Format == "json" {
		opts = append(opts, log.WithJSON())
	}
	log.Configure(opts...)
	log.SetDebug(debug)
}

// newResolveCmd lists what the patterns resolve to without uploading
func newResolveCmd(fv *flagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Show the files the configured patterns resolve to",
		Long:  `Expand the configured glob patterns and print the matched files and any pattern that matches nothing. No server is contacted.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rep := report.New(cmd.OutOrStdout())

			cfg, err := loadConfig(cmd, fv)
			if err != nil {
				return fail(rep, err)
			}
			if len(cfg.Files) == 0 {
				return fail(rep, errors.NewConfigError("no patterns given: use --files or set files in the config", "files", errors.ConfigNotSet, nil))
			}
			configureLogging(cmd, cfg, fv.debug)

			m := match.New(match.WithWorkDir(fv.workDir))
			unmatched, err := m.UnmatchedPatterns(cfg.Files)
			if err != nil {
				return fail(rep, err)
			}
			files, err := m.FilePaths(cfg.Files)
			if err != nil {
				return fail(rep, err)
			}

			out := cmd.OutOrStdout()
			for _, f := range files {
				fmt.Fprintln(out, f)
			}
			for _, p := range unmatched {
				fmt.Fprintf(out, "unmatched: %s\n", p)
			}
			return nil
		},
	}
}

// fail reports err as the step's error annotation and returns it
func fail(rep report.Reporter, err error) error {
	rep.Error(err.Error())
	return err
}

// Execute runs the root command with ctx
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
