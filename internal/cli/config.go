package cli

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/dcrvault/internal/config"
	"github.com/mrz1836/dcrvault/internal/output"
	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View and modify dcrvault configuration settings.`,
	}

	configInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration",
		Long: `Create a default configuration file at ~/.dcrvault/config.yaml.

An existing file is only replaced with --force.

Example:
  dcrvault config init
  dcrvault --home /tmp/vault config init --force`,
		Args: cobra.NoArgs,
		RunE: runConfigInit,
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long: `Display the effective configuration after environment and flag
overrides.

Example:
  dcrvault config show
  dcrvault config show -o json`,
		Args: cobra.NoArgs,
		RunE: runConfigShow,
	}

	configGetCmd = &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get a configuration value by its dotted key.

Example:
  dcrvault config get fees.default_rate
  dcrvault config get storage.driver`,
		Args: cobra.ExactArgs(1),
		RunE: runConfigGet,
	}

	configSetCmd = &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value by its dotted key and save the file. The
updated file must still validate.

Example:
  dcrvault config set network mainnet
  dcrvault config set sync.indices 50
  dcrvault config set storage.driver badger`,
		Args: cobra.ExactArgs(2),
		RunE: runConfigSet,
	}
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var configForce bool

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd, configGetCmd, configSetCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite existing configuration")
}

// ErrUnknownConfigKey indicates a key that is not part of the configuration.
var ErrUnknownConfigKey = &vaulterr.VaultError{
	Code:     "UNKNOWN_CONFIG_KEY",
	Message:  "unknown configuration key",
	ExitCode: vaulterr.ExitInput,
}

// configField reads and writes one dotted configuration key.
type configField struct {
	get func(*config.Config) string
	set func(*config.Config, string) error
}

func stringField(ptr func(*config.Config) *string) configField {
	return configField{
		get: func(c *config.Config) string { return *ptr(c) },
		set: func(c *config.Config, v string) error { *ptr(c) = v; return nil },
	}
}

func int64Field(ptr func(*config.Config) *int64) configField {
	return configField{
		get: func(c *config.Config) string { return strconv.FormatInt(*ptr(c), 10) },
		set: func(c *config.Config, v string) error {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return vaulterr.WithDetails(vaulterr.ErrValidation, map[string]string{"value": v, "expected": "integer"})
			}
			*ptr(c) = n
			return nil
		},
	}
}

func intField(ptr func(*config.Config) *int) configField {
	return configField{
		get: func(c *config.Config) string { return strconv.Itoa(*ptr(c)) },
		set: func(c *config.Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return vaulterr.WithDetails(vaulterr.ErrValidation, map[string]string{"value": v, "expected": "integer"})
			}
			*ptr(c) = n
			return nil
		},
	}
}

func boolField(ptr func(*config.Config) *bool) configField {
	return configField{
		get: func(c *config.Config) string { return strconv.FormatBool(*ptr(c)) },
		set: func(c *config.Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return vaulterr.WithDetails(vaulterr.ErrValidation, map[string]string{"value": v, "expected": "true or false"})
			}
			*ptr(c) = b
			return nil
		},
	}
}

//nolint:gochecknoglobals // static key table
var configFields = map[string]configField{
	"network":                stringField(func(c *config.Config) *string { return &c.Network }),
	"fees.default_rate":      int64Field(func(c *config.Config) *int64 { return &c.Fees.DefaultRate }),
	"fees.min_rate":          int64Field(func(c *config.Config) *int64 { return &c.Fees.MinRate }),
	"fees.dust_limit":        int64Field(func(c *config.Config) *int64 { return &c.Fees.DustLimit }),
	"sync.accounts":          intField(func(c *config.Config) *int { return &c.Sync.Accounts }),
	"sync.changes":           intField(func(c *config.Config) *int { return &c.Sync.Changes }),
	"sync.indices":           intField(func(c *config.Config) *int { return &c.Sync.Indices }),
	"sync.new_address_limit": intField(func(c *config.Config) *int { return &c.Sync.NewAddressLimit }),
	"sync.fetch_attempts":    intField(func(c *config.Config) *int { return &c.Sync.FetchAttempts }),
	"storage.driver":         stringField(func(c *config.Config) *string { return &c.Storage.Driver }),
	"storage.path":           stringField(func(c *config.Config) *string { return &c.Storage.Path }),
	"storage.encrypt":        boolField(func(c *config.Config) *bool { return &c.Storage.Encrypt }),
	"storage.passphrase_env": stringField(func(c *config.Config) *string { return &c.Storage.PassphraseEnv }),
	"metrics.textfile":       stringField(func(c *config.Config) *string { return &c.Metrics.Textfile }),
	"output.default_format":  stringField(func(c *config.Config) *string { return &c.Output.DefaultFormat }),
	"output.verbose":         boolField(func(c *config.Config) *bool { return &c.Output.Verbose }),
	"logging.level":          stringField(func(c *config.Config) *string { return &c.Logging.Level }),
	"logging.file":           stringField(func(c *config.Config) *string { return &c.Logging.File }),
	"logging.json":           boolField(func(c *config.Config) *bool { return &c.Logging.JSON }),
}

// configKeys returns the known keys in sorted order.
func configKeys() []string {
	keys := make([]string, 0, len(configFields))
	for k := range configFields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func lookupField(key string) (configField, error) {
	f, ok := configFields[key]
	if !ok {
		return configField{}, vaulterr.WithSuggestion(
			vaulterr.WithDetails(ErrUnknownConfigKey, map[string]string{"key": key}),
			"known keys: "+strings.Join(configKeys(), ", "))
	}
	return f, nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	configPath := config.Path(cfg.Home)

	if _, err := os.Stat(configPath); err == nil && !configForce {
		return vaulterr.WithSuggestion(vaulterr.ErrGeneral,
			fmt.Sprintf("configuration already exists at %s. Use --force to overwrite.", configPath))
	}
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return fmt.Errorf("creating home directory: %w", err)
	}

	defaults := config.Defaults()
	defaults.Home = cfg.Home
	if err := config.Save(defaults, configPath); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	w := cmd.OutOrStdout()
	out(w, "Configuration initialized at %s\n", configPath)
	outln(w)
	outln(w, "Edit this file to configure:")
	outln(w, "  - network: mainnet, testnet or simnet")
	outln(w, "  - fees.default_rate: fee rate in atoms per kB")
	outln(w, "  - sync: scan grid used by the first sync")
	outln(w, "  - storage.driver: file or badger, optionally encrypted")
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	if formatter.Format() == output.FormatJSON {
		values := make(map[string]string, len(configFields)+1)
		values["home"] = cfg.Home
		for k, f := range configFields {
			values[k] = f.get(cfg)
		}
		return output.WriteJSON(w, values)
	}
	return displayConfigText(w, cfg)
}

func displayConfigText(w io.Writer, c *config.Config) error {
	tbl := output.NewTable("KEY", "VALUE")
	tbl.AddRow("home", c.Home)
	for _, k := range configKeys() {
		v := configFields[k].get(c)
		if v == "" {
			v = "(not set)"
		}
		tbl.AddRow(k, v)
	}
	return tbl.Render(w)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if args[0] == "home" {
		outln(cmd.OutOrStdout(), cfg.Home)
		return nil
	}
	f, err := lookupField(args[0])
	if err != nil {
		return err
	}
	outln(cmd.OutOrStdout(), f.get(cfg))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], strings.TrimSpace(args[1])
	f, err := lookupField(key)
	if err != nil {
		return err
	}

	configPath := config.Path(cfg.Home)
	current, err := config.Load(configPath)
	if err != nil {
		if !vaulterr.Is(err, vaulterr.ErrConfigNotFound) {
			return err
		}
		current = config.Defaults()
		current.Home = cfg.Home
	}

	if err = f.set(current, value); err != nil {
		return err
	}
	if err = current.Validate(); err != nil {
		return err
	}
	if err = config.Save(current, configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	out(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
	return nil
}
