package main

import (
	"os"
	"path/filepath"

	"cull/internal/config"
	"cull/internal/errors"
	"cull/internal/log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// options holds the command line flags
type options struct {
	configFile string
	debug      bool
	jsonLogs   bool
	workers    int
	exts       []string
	rawExts    []string
	dryRun     bool
	noProgress bool
	fullscreen bool
}

// NewRootCmd creates the cull command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&options{})
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cull <folder>",
		Short: "Triage a folder of photos",
		Long: `cull shows every JPEG in a folder one at a time, full screen.

Mark a shot bad to move it and its raw files into a bad/ subfolder,
drop just the raw file, or keep it and move on.

Keys: Left/Right navigate, Space quick-looks, B bad, R remove raw,
K keep, U undo, Q quit.`,
		Args:         folderArg,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings(cmd, opts)
			if err != nil {
				return err
			}

			dir, err := resolveFolder(args[0])
			if err != nil {
				return err
			}

			interactive := !opts.noProgress && isTerminal(cmd.OutOrStdout())
			entries, err := prepare(cmd.Context(), cfg, dir, cmd.OutOrStdout(), interactive)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return nil
			}

			return launch(cfg, dir, entries)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "config file (default is $HOME/.config/cull/config.yaml)")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flags.BoolVar(&opts.jsonLogs, "json-logs", false, "log as JSON")
	flags.IntVarP(&opts.workers, "workers", "w", 0, "concurrent decodes (0 = one per CPU)")
	flags.StringSliceVar(&opts.exts, "exts", nil, "extensions moved by mark-bad (default JPG,ARW)")
	flags.StringSliceVar(&opts.rawExts, "raw-exts", nil, "extensions moved by remove-raw (default ARW)")
	flags.BoolVarP(&opts.dryRun, "dry-run", "n", false, "log moves instead of performing them")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "print plain progress lines instead of a progress bar")
	flags.BoolVar(&opts.fullscreen, "fullscreen", false, "open the window full screen (--fullscreen=false for a resizable window)")

	return cmd
}

// folderArg requires exactly one argument and prints usage otherwise
func folderArg(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		_ = cmd.Usage()
		return err
	}
	return nil
}

// loadSettings merges the config file, environment and flags, in increasing
// order of precedence, and configures logging.
func loadSettings(cmd *cobra.Command, opts *options) (*config.Config, error) {
	// Load .env file if present (ignore errors)
	_ = godotenv.Load()

	var cfg *config.Config
	var err error
	if opts.configFile != "" {
		cfg, err = config.LoadConfigFile(opts.configFile)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("debug") {
		cfg.Log.Debug = opts.debug
	}
	if flags.Changed("json-logs") {
		cfg.Log.JSON = opts.jsonLogs
	}
	if flags.Changed("workers") {
		cfg.Loader.Workers = opts.workers
	}
	if flags.Changed("exts") {
		cfg.Triage.SidecarExtensions = config.NormalizeExtensions(opts.exts)
	}
	if flags.Changed("raw-exts") {
		cfg.Triage.RawExtensions = config.NormalizeExtensions(opts.rawExts)
	}
	if flags.Changed("dry-run") {
		cfg.Triage.DryRun = opts.dryRun
	}
	if flags.Changed("fullscreen") {
		cfg.Display.Fullscreen = opts.fullscreen
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logOpts := []log.Option{log.WithOutput(cmd.ErrOrStderr())}
	if cfg.Log.JSON {
		logOpts = append(logOpts, log.WithJSON())
	}
	log.Configure(logOpts...)
	log.SetDebug(cfg.Log.Debug)

	return cfg, nil
}

// resolveFolder returns folder as an absolute path, failing unless it is
// a directory
func resolveFolder(folder string) (string, error) {
	abs, err := filepath.Abs(folder)
	if err != nil {
		return "", errors.NewFileError("invalid folder", folder, errors.InvalidPath, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewFileError("folder does not exist", abs, errors.FileNotFound, err)
		}
		return "", errors.NewFileError("cannot access folder", abs, errors.FileAccessDenied, err)
	}
	if !info.IsDir() {
		return "", errors.NewFileError("not a folder", abs, errors.InvalidPath, nil)
	}
	return abs, nil
}
