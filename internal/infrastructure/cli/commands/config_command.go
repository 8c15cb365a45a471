package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/nhscreen/internal/app"
	configapp "github.com/doeshing/nhscreen/internal/application/config"
	"github.com/doeshing/nhscreen/internal/domain"
	"github.com/doeshing/nhscreen/internal/infrastructure/cli/helpers"
	configinfra "github.com/doeshing/nhscreen/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with all subcommands
func NewConfigCommand(container *app.Container) *cobra.Command {
	var format string

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and change nhscreen configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfiguration(cmd, container, format)
		},
	}
	configCmd.Flags().StringVar(&format, "format", "yaml", "Print as yaml or toml")

	configCmd.AddCommand(
		newConfigShowCommand(container),
		newConfigPathCommand(container),
		newConfigGetCommand(container),
		newConfigSetCommand(container),
		newConfigEditCommand(container),
		newConfigValidateCommand(container),
		newConfigResetCommand(container),
		newConfigDiffCommand(container),
		newCheckToggleCommand(container, "disable-check", "Skip a check by name (the citation check cannot be disabled)", "Disabled",
			func(cfg *domain.Config, name string) error { return cfg.DisableCheck(name) }),
		newCheckToggleCommand(container, "enable-check", "Re-enable a previously disabled check", "Enabled",
			func(cfg *domain.Config, name string) error { cfg.EnableCheck(name); return nil }),
	)

	return configCmd
}

func newConfigShowCommand(container *app.Container) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration, environment overrides included",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfiguration(cmd, container, format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "Print as yaml or toml")
	return cmd
}

func newConfigPathCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := helpers.GetConfigLoader(container)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), loader.Path())
			return nil
		},
	}
}

func newConfigGetCommand(container *app.Container) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "get [key]",
		Short: "Print one value, e.g. screening.recency_years",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				key = args[0]
			}
			if key == "" {
				return fmt.Errorf(ErrKeyRequired)
			}
			cfgMap, err := loadConfigMap(cmd.Context(), container)
			if err != nil {
				return err
			}
			value, found := helpers.TraverseNestedMap(cfgMap, strings.Split(key, "."))
			if !found {
				return fmt.Errorf("key %s not found in configuration", key)
			}
			switch value.(type) {
			case map[string]interface{}, []interface{}:
				data, err := yaml.Marshal(value)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), string(data))
			default:
				fmt.Fprintln(cmd.OutOrStdout(), value)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Key path (e.g., screening.recency_years)")
	return cmd
}

func newConfigSetCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set an existing key (value accepts YAML syntax)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			keys := strings.Split(key, ".")
			cfgMap, err := loadConfigMap(cmd.Context(), container)
			if err != nil {
				return err
			}
			if _, found := helpers.TraverseNestedMap(cfgMap, keys); !found {
				return fmt.Errorf("key %s not found in configuration", key)
			}
			value, err := helpers.ParseYAMLValue(strings.Join(args[1:], " "))
			if err != nil {
				return fmt.Errorf("parse value: %w", err)
			}
			if !helpers.SetNestedMapValue(cfgMap, keys, value) {
				return fmt.Errorf("unable to set key %s", key)
			}
			cfg, err := helpers.MapToConfig(cfgMap)
			if err != nil {
				return err
			}
			if err := helpers.SaveConfigWithValidation(container, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", key)
			return nil
		},
	}
}

// newConfigEditCommand opens the file in $EDITOR and validates the result.
func newConfigEditCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit the configuration file in $EDITOR",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := helpers.GetConfigLoader(container)
			if err != nil {
				return err
			}
			editor := strings.Fields(os.Getenv(envKeyEditor))
			if len(editor) == 0 {
				editor = []string{defaultEditor}
			}
			run := exec.CommandContext(cmd.Context(), editor[0], append(editor[1:], loader.Path())...)
			run.Stdin = os.Stdin
			run.Stdout = cmd.OutOrStdout()
			run.Stderr = cmd.ErrOrStderr()
			if err := run.Run(); err != nil {
				return fmt.Errorf("run editor %s: %w", editor[0], err)
			}
			return validateConfiguration(cmd, container)
		},
	}
}

func newConfigValidateCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfiguration(cmd, container)
		},
	}
}

// newConfigResetCommand keeps a timestamped copy of the old file before
// writing defaults.
func newConfigResetCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Back up the configuration file and restore defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := helpers.GetConfigLoader(container)
			if err != nil {
				return err
			}
			if _, err := os.Stat(loader.Path()); err == nil {
				backup, err := loader.Backup()
				if err != nil {
					return fmt.Errorf("back up configuration: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Previous configuration saved to %s\n", backup)
			}
			if _, err := loader.Reset(); err != nil {
				return fmt.Errorf("reset configuration: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration reset at %s\n", loader.Path())
			return nil
		},
	}
}

func newConfigDiffCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "Show how the effective configuration differs from defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := container.ConfigProvider.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			// an empty disabled list and an absent one mean the same thing
			diff := cmp.Diff(configinfra.DefaultConfig(), current, cmpopts.EquateEmpty())
			if diff == "" {
				fmt.Fprintln(cmd.OutOrStdout(), MsgNoDifferencesFromDefault)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), diff)
			return nil
		},
	}
}

func newCheckToggleCommand(container *app.Container, use, short, verb string, apply func(*domain.Config, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <name>",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			cfg, err := container.ConfigProvider.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if err := apply(&cfg, name); err != nil {
				return err
			}
			if err := helpers.SaveConfigWithValidation(container, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %q\n", verb, name)
			return nil
		},
	}
}

func showConfiguration(cmd *cobra.Command, container *app.Container, format string) error {
	cfg, err := container.ConfigProvider.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	var data []byte
	switch strings.ToLower(format) {
	case "", "yaml", "yml":
		data, err = yaml.Marshal(cfg)
	case "toml":
		data, err = toml.Marshal(cfg)
	default:
		return fmt.Errorf("format: unsupported value %q", format)
	}
	if err != nil {
		return fmt.Errorf("encode configuration: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func validateConfiguration(cmd *cobra.Command, container *app.Container) error {
	cfg, err := container.ConfigProvider.Load(cmd.Context())
	if err == nil {
		err = configapp.Validate(cfg, helpers.HasCustomRules(cfg))
	}
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), MsgConfigurationValid)
	return nil
}

func loadConfigMap(ctx context.Context, container *app.Container) (map[string]interface{}, error) {
	cfg, err := container.ConfigProvider.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return helpers.ConfigToMap(cfg)
}
