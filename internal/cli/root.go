// Package cli implements the dcrvault command-line interface.
//
// Commands share process state initialized in PersistentPreRunE and
// released in PersistentPostRun, the usual Cobra layout.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/spf13/cobra"

	"github.com/mrz1836/dcrvault/internal/config"
	"github.com/mrz1836/dcrvault/internal/metrics"
	"github.com/mrz1836/dcrvault/internal/output"
	"github.com/mrz1836/dcrvault/internal/wallet"
	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

var (
	// Global flags
	homeDir      string
	networkFlag  string
	outputFormat string
	verbose      bool

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    *config.Logger
	formatter *output.Formatter
	recorder  *metrics.Metrics

	// walletLocks is shared by every engine in the process.
	walletLocks = wallet.NewLocks()

	// appClock stamps new wallets and stored snapshots.
	appClock clock.Clock = clock.NewDefaultClock()

	buildInfo BuildInfo

	enrichHelp sync.Once
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// SetBuildInfo records version metadata injected at link time.
func SetBuildInfo(info BuildInfo) {
	buildInfo = info
}

// FormatVersion renders info with placeholders for missing fields.
func FormatVersion(info BuildInfo) string {
	v, c, d := info.Version, info.Commit, info.Date
	if v == "" {
		v = "dev"
	}
	if c == "" {
		c = "unknown"
	}
	if d == "" {
		d = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "dcrvault",
	Short: "A deterministic Decred wallet",
	Long: `dcrvault manages deterministic Decred wallets from the terminal.

It creates and imports mnemonic wallets, discovers their addresses from a
chain snapshot, estimates fees, and builds signed transactions.

Example:
  dcrvault wallet create
  dcrvault sync --snapshot chain.json
  dcrvault send --to TsXYZ... --amount 0.5`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initGlobals(cmd)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		cleanup()
	},
}

// versionCmd prints build metadata.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		outln(cmd.OutOrStdout(), "dcrvault "+FormatVersion(buildInfo))
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	enrichHelp.Do(func() { walkCommands(rootCmd, enrichParentLong) })

	err := rootCmd.Execute()
	if err != nil {
		format := output.FormatText
		if formatter != nil {
			format = formatter.Format()
		}
		_ = output.FormatError(os.Stderr, err, format)
		return err
	}
	return nil
}

// ExitCode returns the process exit code for an error.
func ExitCode(err error) int {
	return vaulterr.ExitCode(err)
}

// initGlobals loads configuration and builds the logger, formatter and
// metrics recorder. Flags override environment, which overrides the file.
func initGlobals(cmd *cobra.Command) error {
	home := homeDir
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}
	if home == "" {
		home = config.DefaultHome()
	}

	var err error
	cfg, err = config.LoadOrDefault(config.Path(home))
	if err != nil {
		return err
	}
	if cfg.Logging.File == config.Defaults().Logging.File {
		cfg.Logging.File = filepath.Join(home, "dcrvault.log")
	}
	cfg.Home = home

	config.ApplyEnvironment(cfg)

	if homeDir != "" {
		cfg.Home = homeDir
	}
	if networkFlag != "" {
		cfg.Network = networkFlag
	}
	if verbose {
		cfg.Output.Verbose = true
		cfg.Logging.Level = "debug"
	}
	if outputFormat != "" && outputFormat != string(output.FormatAuto) {
		cfg.Output.DefaultFormat = outputFormat
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err = config.NewLogger(config.ParseLogLevel(cfg.Logging.Level), cfg.Logging.File)
	if err != nil {
		logger = config.NullLogger()
	}

	w := cmd.OutOrStdout()
	formatter = output.NewFormatter(output.DetectFormat(w, output.ParseFormat(cfg.Output.DefaultFormat)), w)
	recorder = metrics.New()

	logger.Debug("command %s starting (home %s, network %s)", cmd.CommandPath(), cfg.Home, cfg.Network)
	return nil
}

// cleanup flushes metrics and releases the log file.
func cleanup() {
	if recorder != nil && cfg != nil && cfg.Metrics.Textfile != "" {
		path, err := config.ExpandHome(cfg.Metrics.Textfile)
		if err == nil {
			err = recorder.WriteTextfile(path)
		}
		if err != nil && logger != nil {
			logger.Error("writing metrics textfile: %v", err)
		}
	}
	if logger != nil {
		_ = logger.Close()
	}
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "dcrvault data directory (default: ~/.dcrvault)")
	rootCmd.PersistentFlags().StringVar(&networkFlag, "network", "", "network: mainnet, testnet, simnet")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(versionCmd)
}
